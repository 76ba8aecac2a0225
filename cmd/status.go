package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/redline-leasing/driver-funnel/internal/gateway"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Look up an application status by email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		email, _ := cmd.Flags().GetString("email")
		last4, _ := cmd.Flags().GetString("phone-last4")
		if email == "" || len(last4) != 4 {
			return errors.New("--email and a 4-digit --phone-last4 are required")
		}

		gw := gateway.New(initClient(), nil)
		res, err := gw.ResolveStatus(ctx, email, last4)
		switch {
		case errors.Is(err, gateway.ErrApplicationNotFound),
			errors.Is(err, gateway.ErrVerificationFailed):
			fmt.Fprintln(os.Stderr, "No application found for that email and phone combination.")
			os.Exit(1)
		case err != nil:
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Name:\t%s\n", res.FirstName)
		_, _ = fmt.Fprintf(w, "Status:\t%s\n", res.Status.Status)
		_, _ = fmt.Fprintf(w, "Step:\t%d\n", res.Status.Step)
		_, _ = fmt.Fprintf(w, "Prequalified:\t%t\n", res.IsPrequalified)
		if !res.AppliedAt.IsZero() {
			_, _ = fmt.Fprintf(w, "Applied:\t%s\n", res.AppliedAt.Format(time.DateOnly))
		}
		_, _ = fmt.Fprintf(w, "Detail:\t%s\n", res.Status.Description)
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().String("email", "", "applicant email address")
	statusCmd.Flags().String("phone-last4", "", "last four digits of the applicant's phone number")
	rootCmd.AddCommand(statusCmd)
}
