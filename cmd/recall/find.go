package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/internal/workflow"
)

var (
	findQuery      string
	findTag        string
	findStatus     string
	findConfidence string
	findLimit      int
)

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVar(&findQuery, "query", "", "case-insensitive substring over title, memory and scope")
	findCmd.Flags().StringVar(&findTag, "tag", "", "filter by tag membership")
	findCmd.Flags().StringVar(&findStatus, "status", "", "filter by status")
	findCmd.Flags().StringVar(&findConfidence, "confidence", "", "filter by confidence")
	findCmd.Flags().IntVar(&findLimit, "limit", 0, "maximum results (default from config)")
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search stored memories",
	Long: `Search memories by substring and metadata filters.

Examples:
  # Everything mentioning tabs
  recall find --query tabs

  # Active, high-confidence tooling notes
  recall find --tag tooling --status active --confidence high`,
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	limit := a.cfg.Find.Limit
	if cmd.Flags().Changed("limit") {
		limit = findLimit
	}
	results, err := a.engine.Find(workflow.FindRequest{
		Query:      findQuery,
		Tag:        findTag,
		Status:     findStatus,
		Confidence: findConfidence,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		cmd.Printf("%s | %s | updated %s\n",
			matchTitleStyle.Render(r.Title),
			matchPathStyle.Render(r.Path),
			r.Updated,
		)
	}
	return nil
}
