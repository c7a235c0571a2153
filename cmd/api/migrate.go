package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/spec-kit/staff-service/internal/persistence"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply pending migrations against POSTGRES_DSN. --down rolls everything back; --steps moves N migrations (negative for down).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(false)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.Postgres.DSN == "" {
				return oops.Code("CONFIG_INVALID").Errorf("POSTGRES_DSN environment variable is required")
			}
			migrator, err := persistence.NewMigrator(cfg.Postgres.DSN, logger)
			if err != nil {
				return err
			}
			defer migrator.Close() //nolint:errcheck

			switch {
			case down:
				err = migrator.Down()
			case steps != 0:
				err = migrator.Steps(steps)
			default:
				err = migrator.Up()
			}
			if err != nil {
				return err
			}

			version, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			cmd.Printf("schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	cmd.Flags().IntVar(&steps, "steps", 0, "apply N migrations; negative rolls back")
	cmd.MarkFlagsMutuallyExclusive("down", "steps")
	return cmd
}
