package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/internal/workflow"
)

var (
	supersedeOld           string
	supersedeTitle         string
	supersedeCategory      string
	supersedeMemory        string
	supersedeMemoryFile    string
	supersedeScope         string
	supersedeScopeFile     string
	supersedeTags          string
	supersedeSource        string
	supersedeConfidence    string
	supersedeEvolutionNote string
)

func init() {
	rootCmd.AddCommand(supersedeCmd)
	supersedeCmd.Flags().StringVar(&supersedeOld, "old", "", "store-relative path of the record to supersede (required)")
	supersedeCmd.Flags().StringVar(&supersedeTitle, "title", "", "successor title (required)")
	supersedeCmd.Flags().StringVar(&supersedeCategory, "category", "", "successor category (required)")
	supersedeCmd.Flags().StringVar(&supersedeMemory, "memory", "", "successor memory text")
	supersedeCmd.Flags().StringVar(&supersedeMemoryFile, "memory-file", "", "read successor memory text from file")
	supersedeCmd.Flags().StringVar(&supersedeScope, "scope", "", "successor scope text")
	supersedeCmd.Flags().StringVar(&supersedeScopeFile, "scope-file", "", "read successor scope text from file")
	supersedeCmd.Flags().StringVar(&supersedeTags, "tags", "", "comma-separated tags")
	supersedeCmd.Flags().StringVar(&supersedeSource, "source", "agent", "who captured this memory (user, agent)")
	supersedeCmd.Flags().StringVar(&supersedeConfidence, "confidence", "medium", "confidence (high, medium, low)")
	supersedeCmd.Flags().StringVar(&supersedeEvolutionNote, "evolution-note", "", "evolution log entry for the retired record")
	_ = supersedeCmd.MarkFlagRequired("old")
	_ = supersedeCmd.MarkFlagRequired("title")
	_ = supersedeCmd.MarkFlagRequired("category")
}

var supersedeCmd = &cobra.Command{
	Use:   "supersede",
	Short: "Replace a named record with a new one",
	Long: `Create a successor record and retire the old one.

The old record keeps its evolution log, gains a pointer to the
successor, and loses its memory and scope sections: the successor is
authoritative from then on.

Examples:
  recall supersede --old preferences/use-tabs.md \
    --title "Use tabs everywhere" --category preferences \
    --memory "Tabs in all languages, including YAML via the formatter."`,
	RunE: runSupersede,
}

func runSupersede(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	memory, err := loadText(supersedeMemory, supersedeMemoryFile)
	if err != nil {
		return err
	}
	scope, err := loadText(supersedeScope, supersedeScopeFile)
	if err != nil {
		return err
	}

	result, err := a.engine.Supersede(workflow.SupersedeRequest{
		Old:           supersedeOld,
		Title:         supersedeTitle,
		Category:      supersedeCategory,
		Memory:        memory,
		Scope:         scope,
		Tags:          parseTags(supersedeTags),
		Source:        supersedeSource,
		Confidence:    supersedeConfidence,
		EvolutionNote: supersedeEvolutionNote,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Superseded %s -> %s\n", result.Superseded, result.Path)
	return nil
}
