package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/validate"
)

var prequalCmd = &cobra.Command{
	Use:   "prequal",
	Short: "Run the prequalification gate against a set of answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cdl, _ := cmd.Flags().GetBool("cdl")
		medical, _ := cmd.Flags().GetBool("medical-card")
		eligible, _ := cmd.Flags().GetBool("eligible")
		months, _ := cmd.Flags().GetInt("months")

		res := validate.Prequalify(model.QualificationSnapshot{
			HasCDL:           cdl,
			HasMedicalCard:   medical,
			USWorkEligible:   eligible,
			ExperienceMonths: months,
		})

		if res.Qualified {
			fmt.Println("Prequalified.")
			return nil
		}

		fmt.Println("Not prequalified:")
		for _, reason := range res.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	prequalCmd.Flags().Bool("cdl", false, "applicant holds a valid CDL")
	prequalCmd.Flags().Bool("medical-card", false, "applicant holds a current DOT medical card")
	prequalCmd.Flags().Bool("eligible", false, "applicant is eligible to work in the US")
	prequalCmd.Flags().Int("months", 0, "months of driving experience")
	rootCmd.AddCommand(prequalCmd)
}
