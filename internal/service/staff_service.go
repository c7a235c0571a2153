package service

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/auth"
	"github.com/spec-kit/staff-service/internal/config"
	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/repository"
)

const maxPageSize = 100

// StaffService manages the staff directory.
type StaffService struct {
	store      repository.Store
	validate   *validator.Validate
	logger     *zap.Logger
	bcryptCost int
}

// CreateStaffInput carries a new staff member. Password is plaintext and is
// hashed before it reaches the store.
type CreateStaffInput struct {
	FirstName     string           `json:"firstname" validate:"required"`
	LastName      string           `json:"lastname" validate:"required"`
	Email         string           `json:"email" validate:"required,email"`
	Team          string           `json:"team" validate:"required"`
	ProfileImages []string         `json:"profile_images" validate:"omitempty,dive,required"`
	Password      string           `json:"password" validate:"required,min=8,max=72"`
	Role          domain.StaffRole `json:"role" validate:"omitempty,oneof=admin user"`
	Active        *bool            `json:"is_active"`
}

// UpdateStaffInput is a partial update; nil fields are left untouched.
type UpdateStaffInput struct {
	FirstName     *string           `json:"firstname" validate:"omitempty,min=1"`
	LastName      *string           `json:"lastname" validate:"omitempty,min=1"`
	Email         *string           `json:"email" validate:"omitempty,email"`
	Team          *string           `json:"team" validate:"omitempty,min=1"`
	ProfileImages *[]string         `json:"profile_images" validate:"omitempty,dive,required"`
	Password      *string           `json:"password" validate:"omitempty,min=8,max=72"`
	Role          *domain.StaffRole `json:"role" validate:"omitempty,oneof=admin user"`
	Active        *bool             `json:"is_active"`
}

// StaffListFilters define listing parameters. PageSize zero lists everyone.
type StaffListFilters struct {
	Role      *domain.StaffRole `json:"role" validate:"omitempty,oneof=admin user"`
	Team      *string           `json:"team"`
	Email     *string           `json:"email"`
	FirstName *string           `json:"firstname"`
	LastName  *string           `json:"lastname"`
	Active    *bool             `json:"is_active"`
	Page      int               `json:"page" validate:"gte=0"`
	PageSize  int               `json:"page_size" validate:"gte=0"`
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.AuthConfig, store repository.Store, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		store:      store,
		validate:   newValidator(),
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CreateStaff validates, normalizes and inserts a staff member.
func (s *StaffService) CreateStaff(ctx context.Context, in CreateStaffInput) (*domain.StaffMember, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Team = strings.TrimSpace(in.Team)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.StaffRoleUser
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	staff := &domain.StaffMember{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Team:          in.Team,
		ProfileImages: in.ProfileImages,
		PasswordHash:  hash,
		Role:          role,
		Active:        active,
	}
	if err := s.store.Repositories().Staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	s.logger.Info("staff created", zap.String("staff_id", staff.ID), zap.String("role", string(staff.Role)))
	return staff, nil
}

// ListStaff returns staff matching the filters, newest first.
func (s *StaffService) ListStaff(ctx context.Context, filters StaffListFilters) ([]domain.StaffMember, error) {
	if err := s.validate.Struct(filters); err != nil {
		return nil, err
	}

	repoFilter := repository.StaffFilter{
		Role:      filters.Role,
		Team:      filters.Team,
		FirstName: filters.FirstName,
		LastName:  filters.LastName,
		Active:    filters.Active,
	}
	if filters.Email != nil {
		email := normalizeEmail(*filters.Email)
		repoFilter.Email = &email
	}
	if filters.PageSize > 0 {
		size := min(filters.PageSize, maxPageSize)
		page := max(filters.Page, 1)
		repoFilter.Limit = size
		repoFilter.Offset = (page - 1) * size
	}
	return s.store.Repositories().Staff.List(ctx, repoFilter)
}

// GetStaff fetches a staff member by id.
func (s *StaffService) GetStaff(ctx context.Context, id string) (*domain.StaffMember, error) {
	if err := validateStaffID(id); err != nil {
		return nil, err
	}
	return s.store.Repositories().Staff.GetByID(ctx, id)
}

// UpdateStaff applies a partial update. A new password is hashed before
// it is stored.
func (s *StaffService) UpdateStaff(ctx context.Context, id string, in UpdateStaffInput) (*domain.StaffMember, error) {
	if err := validateStaffID(id); err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	repo := s.store.Repositories().Staff
	staff, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		staff.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		staff.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		staff.Email = *in.Email
	}
	if in.Team != nil {
		staff.Team = strings.TrimSpace(*in.Team)
	}
	if in.ProfileImages != nil {
		staff.ProfileImages = *in.ProfileImages
	}
	if in.Role != nil {
		staff.Role = *in.Role
	}
	if in.Active != nil {
		staff.Active = *in.Active
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		staff.PasswordHash = hash
	}

	if err := repo.Update(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// DeleteStaff removes a staff member. Their tokens go with them.
func (s *StaffService) DeleteStaff(ctx context.Context, id string) error {
	if err := validateStaffID(id); err != nil {
		return err
	}
	if err := s.store.Repositories().Staff.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("staff deleted", zap.String("staff_id", id))
	return nil
}

func validateStaffID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidStaffID
	}
	return nil
}
