package dto

import (
	"time"

	"github.com/spec-kit/staff-service/internal/domain"
)

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	FirstName     string           `json:"firstname"`
	LastName      string           `json:"lastname"`
	Email         string           `json:"email"`
	Team          string           `json:"team"`
	ProfileImages []string         `json:"profile_images"`
	Password      string           `json:"password"`
	Role          domain.StaffRole `json:"role"`
	IsActive      *bool            `json:"is_active"`
}

// UpdateStaffRequest is a partial update; nil fields are left untouched.
type UpdateStaffRequest struct {
	FirstName     *string           `json:"firstname"`
	LastName      *string           `json:"lastname"`
	Email         *string           `json:"email"`
	Team          *string           `json:"team"`
	ProfileImages *[]string         `json:"profile_images"`
	Password      *string           `json:"password"`
	Role          *domain.StaffRole `json:"role"`
	IsActive      *bool             `json:"is_active"`
}

// StaffListQuery is the decoded `filter` query parameter plus paging.
type StaffListQuery struct {
	Role      *domain.StaffRole `json:"role"`
	Team      *string           `json:"team"`
	Email     *string           `json:"email"`
	FirstName *string           `json:"firstname"`
	LastName  *string           `json:"lastname"`
	IsActive  *bool             `json:"is_active"`
	Page      int               `json:"-"`
	PageSize  int               `json:"-"`
}

// StaffResponse is the public view of a staff member.
type StaffResponse struct {
	ID            string           `json:"id"`
	FirstName     string           `json:"firstname"`
	LastName      string           `json:"lastname"`
	Email         string           `json:"email"`
	Team          string           `json:"team"`
	ProfileImages []string         `json:"profile_images"`
	Role          domain.StaffRole `json:"role"`
	IsActive      bool             `json:"is_active"`
	LastLogin     *time.Time       `json:"last_login"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewStaffResponse maps a domain record, dropping the password hash.
func NewStaffResponse(s *domain.StaffMember) StaffResponse {
	images := s.ProfileImages
	if images == nil {
		images = []string{}
	}
	return StaffResponse{
		ID:            s.ID,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		Email:         s.Email,
		Team:          s.Team,
		ProfileImages: images,
		Role:          s.Role,
		IsActive:      s.Active,
		LastLogin:     s.LastLogin,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// NewStaffList maps a slice of domain records.
func NewStaffList(staff []domain.StaffMember) []StaffResponse {
	out := make([]StaffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, NewStaffResponse(&staff[i]))
	}
	return out
}
