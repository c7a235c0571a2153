package domain

import (
	"strings"
	"time"
)

// StaffRole enumerates directory roles.
type StaffRole string

const (
	StaffRoleAdmin StaffRole = "admin"
	StaffRoleUser  StaffRole = "user"
)

// Valid reports whether the role belongs to the closed enumeration.
func (r StaffRole) Valid() bool {
	return r == StaffRoleAdmin || r == StaffRoleUser
}

// StaffMember models a directory entry. PasswordHash is never serialized.
type StaffMember struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Team          string
	ProfileImages []string
	PasswordHash  string
	Role          StaffRole
	Active        bool
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins first and last name, dropping blanks.
func (s *StaffMember) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}
