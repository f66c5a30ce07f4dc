package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/leadform/internal/client"
	"github.com/octobees/leadform/internal/entity"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <company name>",
	Short: "Fetch a company record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		api := newAPIClient()
		wait, _ := cmd.Flags().GetBool("wait")

		var record entity.CompanyRecord
		if wait {
			outcome, err := client.NewPoller(api, pollOptions(cmd)...).Poll(ctx, args[0])
			if err != nil {
				return err
			}
			record = outcome.Record
		} else {
			r, err := api.GetCompany(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "lookup")
			}
			record = r
		}
		return client.Render(cmd.OutOrStdout(), record, settings.GetString("phone-region"))
	},
}

func init() {
	lookupCmd.Flags().Bool("wait", false, "poll until the record appears")
	rootCmd.AddCommand(lookupCmd)
}
