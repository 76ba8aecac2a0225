package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/redline-leasing/driver-funnel/internal/funnel"
	"github.com/redline-leasing/driver-funnel/internal/gateway"
	"github.com/redline-leasing/driver-funnel/internal/model"
)

var applyCmd = &cobra.Command{
	Use:   "apply <application.json>",
	Short: "Submit a complete application from a JSON file",
	Long:  "Walks a full application through the form steps and submits it, exactly as the web funnel would.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read application file")
		}
		var draft model.ApplicationDraft
		if err := json.Unmarshal(data, &draft); err != nil {
			return eris.Wrap(err, "parse application file")
		}

		ledger, err := initStore(ctx)
		if err != nil {
			return err
		}
		if ledger != nil {
			defer ledger.Close()
			if err := ledger.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate ledger")
			}
		}

		client := initClient()
		gw := gateway.New(client, ledger)
		tracker := funnel.NewTracker(client, ledger)
		session := funnel.NewSession(gw, tracker)
		defer tracker.Wait()

		if err := session.SetDraft(draft); err != nil {
			return err
		}

		for session.Step() < model.StepReview {
			res, err := session.Next(ctx)
			if err != nil {
				return err
			}
			if res.Disqualified {
				fmt.Println("Not prequalified:")
				for _, reason := range res.Reasons {
					fmt.Printf("  - %s\n", reason)
				}
				os.Exit(1)
			}
			if !res.Advanced {
				fmt.Fprintf(os.Stderr, "Step %d has errors:\n", res.Step)
				for _, fe := range res.FieldErrors {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
				}
				os.Exit(1)
			}
		}

		outcome, err := session.Submit(ctx)
		if err != nil {
			return err
		}
		if !outcome.Success {
			return eris.Errorf("submission failed (%s): %s", outcome.Kind, outcome.Message)
		}

		fmt.Printf("Application submitted. Contact ID: %s, prequalified: %t\n",
			outcome.ContactID, outcome.IsPrequalified)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
