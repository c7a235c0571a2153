package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staff-service/internal/domain"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) (*domain.StaffMember, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role      *domain.StaffRole
	Team      *string
	Email     *string
	FirstName *string
	LastName  *string
	Active    *bool
	Limit     int
	Offset    int
}

const staffColumns = `id, first_name, last_name, email, team, profile_images, password_hash, role, active_flag, last_login_at, created_at, updated_at`

type staffRepository struct {
	db DBTX
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db DBTX) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (first_name, last_name, email, team, profile_images, password_hash, role, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Team,
		profileImages(staff.ProfileImages),
		staff.PasswordHash,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
	if isUniqueViolation(err) {
		return oops.Code("STAFF_EMAIL_TAKEN").With("email", staff.Email).Wrap(domain.ErrEmailTaken)
	}
	if err != nil {
		return oops.Code("STAFF_CREATE_FAILED").With("email", staff.Email).Wrap(err)
	}
	return nil
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff_members
        SET first_name=$1, last_name=$2, email=$3, team=$4, profile_images=$5, password_hash=$6, role=$7, active_flag=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.Team,
		profileImages(staff.ProfileImages),
		staff.PasswordHash,
		staff.Role,
		staff.Active,
		staff.ID,
	).Scan(&staff.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return oops.Code("STAFF_NOT_FOUND").With("id", staff.ID).Wrap(domain.ErrStaffNotFound)
	case isUniqueViolation(err):
		return oops.Code("STAFF_EMAIL_TAKEN").With("email", staff.Email).Wrap(domain.ErrEmailTaken)
	case err != nil:
		return oops.Code("STAFF_UPDATE_FAILED").With("id", staff.ID).Wrap(err)
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id=$1`

	staff, err := scanStaff(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STAFF_NOT_FOUND").With("id", id).Wrap(domain.ErrStaffNotFound)
	}
	if err != nil {
		return nil, oops.Code("STAFF_GET_FAILED").With("id", id).Wrap(err)
	}
	return staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE email=$1`

	staff, err := scanStaff(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STAFF_NOT_FOUND").With("email", email).Wrap(domain.ErrStaffNotFound)
	}
	if err != nil {
		return nil, oops.Code("STAFF_GET_FAILED").With("email", email).Wrap(err)
	}
	return staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Team != nil {
		args = append(args, *filter.Team)
		clauses = append(clauses, fmt.Sprintf("team=$%d", len(args)))
	}
	if filter.Email != nil {
		args = append(args, *filter.Email)
		clauses = append(clauses, fmt.Sprintf("email=$%d", len(args)))
	}
	if filter.FirstName != nil {
		args = append(args, *filter.FirstName)
		clauses = append(clauses, fmt.Sprintf("first_name=$%d", len(args)))
	}
	if filter.LastName != nil {
		args = append(args, *filter.LastName)
		clauses = append(clauses, fmt.Sprintf("last_name=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("STAFF_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	result := []domain.StaffMember{}
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, oops.Code("STAFF_LIST_FAILED").Wrap(err)
		}
		result = append(result, *staff)
	}
	return result, wrapQueryError("STAFF_LIST_FAILED", rows.Err())
}

func (r *staffRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM staff_members WHERE id=$1`, id)
	if err != nil {
		return oops.Code("STAFF_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if cmd.RowsAffected() == 0 {
		return oops.Code("STAFF_NOT_FOUND").With("id", id).Wrap(domain.ErrStaffNotFound)
	}
	return nil
}

func (r *staffRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) (*domain.StaffMember, error) {
	query := `UPDATE staff_members SET last_login_at=$1 WHERE id=$2 RETURNING ` + staffColumns

	staff, err := scanStaff(r.db.QueryRow(ctx, query, at, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STAFF_NOT_FOUND").With("id", id).Wrap(domain.ErrStaffNotFound)
	}
	if err != nil {
		return nil, oops.Code("STAFF_LAST_LOGIN_FAILED").With("id", id).Wrap(err)
	}
	return staff, nil
}

func (r *staffRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE staff_members SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return oops.Code("STAFF_PASSWORD_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	if cmd.RowsAffected() == 0 {
		return oops.Code("STAFF_NOT_FOUND").With("id", id).Wrap(domain.ErrStaffNotFound)
	}
	return nil
}

func scanStaff(row pgx.Row) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := row.Scan(
		&staff.ID,
		&staff.FirstName,
		&staff.LastName,
		&staff.Email,
		&staff.Team,
		&staff.ProfileImages,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Active,
		&staff.LastLogin,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

// profile_images is NOT NULL; a nil slice would be sent as NULL.
func profileImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
