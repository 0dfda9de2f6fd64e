package main

import (
	"fmt"

	"github.com/MrEthical07/lmsAuth/jobs"
	"github.com/spf13/cobra"
)

func cleanupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete read notifications past the retention window once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			cleaner := jobs.NewNotificationCleaner(rt.notifications, rt.settings.Jobs.NotificationRetention, rt.logger)
			n, err := cleaner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notifications\n", n)
			return nil
		},
	}
}
