package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

func newHoursCmd(app *cli) *cobra.Command {
	var (
		credits  int
		category string
	)
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Show weekly session counts for a credit value and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := scheduler.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			if credits < 0 {
				return fmt.Errorf("credits must not be negative")
			}
			enc := json.NewEncoder(app.out)
			enc.SetIndent("", "  ")
			return enc.Encode(dto.HoursResponse{
				Credits:  credits,
				Category: string(parsed),
				Hours:    scheduler.ResolveHours(credits, parsed),
			})
		},
	}
	cmd.Flags().IntVar(&credits, "credits", 0, "course credits")
	cmd.Flags().StringVar(&category, "category", "", "Theory, Lab or LabIntegrated")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
