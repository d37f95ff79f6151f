package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/internal/workflow"
)

var (
	reviewStaleDays int
	reviewLimit     int
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().IntVar(&reviewStaleDays, "stale-days", 0, "age in days at which a record is stale (default from config)")
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 0, "maximum results (default from config)")
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List memories that deserve attention",
	Long: `List stale, low-confidence, superseded or deprecated memories.

Each flagged record reports every reason that applies, comma-joined,
checked in the order: stale, low-confidence, status.

Examples:
  # Default staleness window
  recall review

  # Anything untouched for a month
  recall review --stale-days 30`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	req := workflow.ReviewRequest{
		StaleDays: a.cfg.Review.StaleDays,
		Limit:     a.cfg.Review.Limit,
	}
	if cmd.Flags().Changed("stale-days") {
		req.StaleDays = reviewStaleDays
	}
	if cmd.Flags().Changed("limit") {
		req.Limit = reviewLimit
	}

	results, err := a.engine.Review(req)
	if err != nil {
		return err
	}
	for _, r := range results {
		cmd.Printf("%s | %s | %s\n",
			matchTitleStyle.Render(r.Title),
			matchPathStyle.Render(r.Path),
			strings.Join(r.Reasons, ", "),
		)
	}
	return nil
}
