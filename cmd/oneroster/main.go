package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/oneroster/cmd/oneroster/commands"
	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errorLabel = color.New(color.FgRed, color.Bold)

var rootCmd = &cobra.Command{
	Use:   "oneroster",
	Short: "OneRoster API CLI",
	Long: `A command-line interface for reading a OneRoster roster API.

It lists and fetches schools, tenants, students, teachers, classes and
enrollments, and can issue raw requests against the configured API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringP("config", "c", "", "config file (default is $HOME/.oneroster/config.yml)")
	flags.String("api-url", "", "roster API base URL")
	flags.String("app-id", "", "app id / consumer key")
	flags.String("app-secret", "", "app secret / consumer secret")
	flags.String("auth-scheme", "", "authentication scheme (oauth1, oauth2)")
	flags.String("token-url", "", "OAuth 2 token URL")
	flags.String("username-source", "", "username source (sourcedId, username or a field name)")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Int("retries", 0, "retries on gateway timeouts")
	flags.String("sentry-dsn", "", "report gateway timeouts to this Sentry DSN")
	flags.String("nats-url", "", "publish gateway timeouts to this NATS server")
	flags.String("nats-subject", constants.DefaultNATSSubject, "NATS subject for error events")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":          "config",
		"api_url":         "api-url",
		"app_id":          "app-id",
		"app_secret":      "app-secret",
		"auth_scheme":     "auth-scheme",
		"token_url":       "token-url",
		"username_source": "username-source",
		"output":          "output",
		"verbose":         "verbose",
		"retries":         "retries",
		"sentry_dsn":      "sentry-dsn",
		"nats_url":        "nats-url",
		"nats_subject":    "nats-subject",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewSchoolsCommand())
	rootCmd.AddCommand(commands.NewTenantsCommand())
	rootCmd.AddCommand(commands.NewStudentsCommand())
	rootCmd.AddCommand(commands.NewTeachersCommand())
	rootCmd.AddCommand(commands.NewClassesCommand())
	rootCmd.AddCommand(commands.NewEnrollmentsCommand())
	rootCmd.AddCommand(commands.NewRequestCommand())
	rootCmd.AddCommand(commands.NewRosterCommand())
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			_, _ = errorLabel.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

		// Search config in ~/.oneroster/config.yml
		viper.AddConfigPath(filepath.Join(home, constants.ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		_, _ = errorLabel.Fprint(os.Stderr, "Error: ")
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
