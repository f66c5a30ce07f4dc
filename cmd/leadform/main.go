package main

import (
	"fmt"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/octobees/leadform/internal/client"
	"github.com/octobees/leadform/internal/logger"
)

var (
	settings = viper.New()
	log      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "leadform",
	Short:         "Submit leads and fetch enriched company records",
	Long:          "Submits a lead to the lead form API, which triggers the enrichment workflow, then polls until the enriched company record is available.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(strings.ToLower(settings.GetString("log-level")), "console")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "http://localhost:5000", "lead form API base URL")
	flags.String("phone-region", "US", "default region for formatting phone numbers")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Int("max-attempts", client.DefaultMaxAttempts, "lookups before giving up")
	flags.Duration("interval", client.DefaultPollInterval, "wait between lookups")

	settings.SetEnvPrefix("LEADFORM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlags(flags)
}

func newAPIClient() *client.APIClient {
	return client.New(settings.GetString("api-url"), nil)
}

func pollOptions(cmd *cobra.Command) []client.PollOption {
	return []client.PollOption{
		client.WithMaxAttempts(settings.GetInt("max-attempts")),
		client.WithPollInterval(settings.GetDuration("interval")),
		client.WithStateHook(func(s client.State) {
			log.Debug("poll state", zap.Stringer("state", s))
			if s == client.StatePolling {
				fmt.Fprintln(cmd.ErrOrStderr(), "Fetching company data...")
			}
		}),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
