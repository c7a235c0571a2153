package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-service/internal/domain"
)

var staffColumnNames = []string{
	"id", "first_name", "last_name", "email", "team", "profile_images", "password_hash",
	"role", "active_flag", "last_login_at", "created_at", "updated_at",
}

func staffRow(rows *pgxmock.Rows, id, email string, role domain.StaffRole, lastLogin *time.Time) *pgxmock.Rows {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return rows.AddRow(id, "Ada", "Lovelace", email, "platform", []string{"a.png"}, "hash", role, true, lastLogin, now, now)
}

func TestStaffRepository_Create(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "returns generated id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO staff_members`).
					WithArgs("Ada", "Lovelace", "ada@example.com", "platform", []string{}, "hash", domain.StaffRoleUser, true).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
						AddRow("0b5c1d8e-0000-4000-8000-000000000001", created, created))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO staff_members`).
					WithArgs("Ada", "Lovelace", "ada@example.com", "platform", []string{}, "hash", domain.StaffRoleUser, true).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "staff_members_email_key"})
			},
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			staff := &domain.StaffMember{
				FirstName:    "Ada",
				LastName:     "Lovelace",
				Email:        "ada@example.com",
				Team:         "platform",
				PasswordHash: "hash",
				Role:         domain.StaffRoleUser,
				Active:       true,
			}
			err = NewStaffRepository(mock).Create(context.Background(), staff)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "0b5c1d8e-0000-4000-8000-000000000001", staff.ID)
				assert.Equal(t, created, staff.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStaffRepository_GetByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .* FROM staff_members WHERE email=\$1`).
			WithArgs("ada@example.com").
			WillReturnRows(staffRow(pgxmock.NewRows(staffColumnNames), "id-1", "ada@example.com", domain.StaffRoleAdmin, (*time.Time)(nil)))

		staff, err := NewStaffRepository(mock).GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "id-1", staff.ID)
		assert.Equal(t, domain.StaffRoleAdmin, staff.Role)
		assert.Equal(t, []string{"a.png"}, staff.ProfileImages)
		assert.Nil(t, staff.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .* FROM staff_members WHERE email=\$1`).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(staffColumnNames))

		_, err = NewStaffRepository(mock).GetByEmail(context.Background(), "ghost@example.com")
		require.ErrorIs(t, err, domain.ErrStaffNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStaffRepository_ListAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	role := domain.StaffRoleUser
	team := "platform"
	active := true

	mock.ExpectQuery(`FROM staff_members WHERE role=\$1 AND team=\$2 AND active_flag=\$3 ORDER BY created_at DESC LIMIT 10 OFFSET 20`).
		WithArgs(role, team, active).
		WillReturnRows(staffRow(pgxmock.NewRows(staffColumnNames), "id-1", "ada@example.com", role, (*time.Time)(nil)))

	got, err := NewStaffRepository(mock).List(context.Background(), StaffFilter{
		Role:   &role,
		Team:   &team,
		Active: &active,
		Limit:  10,
		Offset: 20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ada@example.com", got[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantErr: domain.ErrStaffNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM staff_members WHERE id=\$1`).
				WithArgs("id-1").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err = NewStaffRepository(mock).Delete(context.Background(), "id-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStaffRepository_TouchLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery(`UPDATE staff_members SET last_login_at=\$1 WHERE id=\$2 RETURNING`).
		WithArgs(at, "id-1").
		WillReturnRows(staffRow(pgxmock.NewRows(staffColumnNames), "id-1", "ada@example.com", domain.StaffRoleUser, &at))

	staff, err := NewStaffRepository(mock).TouchLastLogin(context.Background(), "id-1", at)
	require.NoError(t, err)
	require.NotNil(t, staff.LastLogin)
	assert.True(t, staff.LastLogin.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepository_UpdateErrors(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
		wantMsg string
	}{
		{name: "driver error", dbErr: errors.New("connection reset"), wantMsg: "connection reset"},
		{name: "duplicate email", dbErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantErr: domain.ErrEmailTaken},
		{name: "missing row", dbErr: pgx.ErrNoRows, wantErr: domain.ErrStaffNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`UPDATE staff_members`).
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "id-1").
				WillReturnError(tt.dbErr)

			err = NewStaffRepository(mock).Update(context.Background(), &domain.StaffMember{ID: "id-1", Email: "ada@example.com"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
