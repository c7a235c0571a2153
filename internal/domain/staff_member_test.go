package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaffMember_FullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Grace", "Hopper", "Grace Hopper"},
		{" Grace ", "  Hopper", "Grace Hopper"},
		{"Grace", "", "Grace"},
		{"", "Hopper", "Hopper"},
		{"", "", ""},
	}
	for _, tt := range tests {
		s := &StaffMember{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.want, s.FullName())
	}
}

func TestStaffRole_Valid(t *testing.T) {
	assert.True(t, StaffRoleAdmin.Valid())
	assert.True(t, StaffRoleUser.Valid())
	assert.False(t, StaffRole("owner").Valid())
	assert.False(t, StaffRole("").Valid())
}
