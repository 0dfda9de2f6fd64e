package main

import (
	"context"
	"errors"

	"github.com/MrEthical07/lmsAuth/store/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()
			if rt.db == nil {
				return errors.New("postgres.dsn is required")
			}
			return postgresMigrate(cmd.Context(), rt)
		},
	}
}

func postgresMigrate(ctx context.Context, rt *services) error {
	if err := postgres.Migrate(ctx, rt.db); err != nil {
		return err
	}
	rt.logger.Info("migrations applied")
	return nil
}
