package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/persistence"
	"github.com/spec-kit/staff-service/internal/repository"
	"github.com/spec-kit/staff-service/internal/service"
)

// NewCreateAdminCmd creates the create-admin subcommand. Every directory
// route requires an admin, so the first one is bootstrapped here.
func NewCreateAdminCmd() *cobra.Command {
	var in service.CreateStaffInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin staff member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(false)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			staffService := service.NewStaffService(cfg.Auth, repository.NewPostgresStore(pg.PoolHandle()), logger)
			staff, err := createAdmin(ctx, staffService, in)
			if err != nil {
				return err
			}
			cmd.Printf("created admin %s (%s)\n", staff.Email, staff.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.FirstName, "firstname", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "lastname", "", "last name")
	cmd.Flags().StringVar(&in.Team, "team", "admin", "team")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("firstname")
	_ = cmd.MarkFlagRequired("lastname")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, staffService *service.StaffService, in service.CreateStaffInput) (*domain.StaffMember, error) {
	in.Role = domain.StaffRoleAdmin
	active := true
	in.Active = &active

	return staffService.CreateStaff(ctx, in)
}
