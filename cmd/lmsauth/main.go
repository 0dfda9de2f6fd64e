// Command lmsauth runs the authentication service of the learning platform.
//
//	lmsauth serve   --config lmsauth.yaml
//	lmsauth migrate --config lmsauth.yaml
//	lmsauth cleanup --config lmsauth.yaml
//
// Every setting can be overridden with an LMSAUTH_ environment variable,
// e.g. LMSAUTH_JWT_ACCESS_SECRET.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "lmsauth",
		Short:         "Authentication service for the learning platform",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		cleanupCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
