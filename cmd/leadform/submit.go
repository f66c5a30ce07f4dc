package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/leadform/internal/client"
	"github.com/octobees/leadform/internal/dto"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a lead and wait for the enriched company record",
	Long:  "Sends the lead form to the API, then polls for the company record written by the enrichment workflow. Ctrl-C abandons the wait.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		req := dto.SubmissionRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Email, _ = cmd.Flags().GetString("email")
		req.CompanyName, _ = cmd.Flags().GetString("company")
		req.CompanyURL, _ = cmd.Flags().GetString("url")
		if missing := req.MissingFields(); len(missing) > 0 {
			return eris.Errorf("submit: %s required", strings.Join(missing, ", "))
		}

		session := client.NewSession(newAPIClient(), pollOptions(cmd)...)
		outcome, err := session.Submit(ctx, req)
		log.Info("submit finished",
			zap.String("company", req.CompanyName),
			zap.Stringer("state", outcome.State),
			zap.Int("attempts", outcome.Attempts),
		)
		if err != nil {
			return err
		}
		return client.Render(cmd.OutOrStdout(), outcome.Record, settings.GetString("phone-region"))
	},
}

func init() {
	f := submitCmd.Flags()
	f.String("name", "", "your name")
	f.String("email", "", "your email")
	f.String("company", "", "company name")
	f.String("url", "", "company website")
	rootCmd.AddCommand(submitCmd)
}
