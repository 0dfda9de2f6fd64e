// Package config loads process settings with viper from defaults, an
// optional config file and LMSAUTH_* environment variables, and converts
// them into an lmsAuth.Config.
package config
