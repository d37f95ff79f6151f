package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/internal/workflow"
)

// errMalformedInput flags a user-supplied override file that cannot be
// read.
var errMalformedInput = errors.New("cannot read override file")

var (
	addTitle         string
	addCategory      string
	addMemory        string
	addMemoryFile    string
	addScope         string
	addScopeFile     string
	addTags          string
	addSource        string
	addConfidence    string
	addStatus        string
	addIfSimilar     string
	addThreshold     float64
	addEvolutionNote string
	addNoIndex       bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addTitle, "title", "", "memory title (required)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "memory category (required)")
	addCmd.Flags().StringVar(&addMemory, "memory", "", "memory text")
	addCmd.Flags().StringVar(&addMemoryFile, "memory-file", "", "read memory text from file")
	addCmd.Flags().StringVar(&addScope, "scope", "", "scope text")
	addCmd.Flags().StringVar(&addScopeFile, "scope-file", "", "read scope text from file")
	addCmd.Flags().StringVar(&addTags, "tags", "", "comma-separated tags")
	addCmd.Flags().StringVar(&addSource, "source", "agent", "who captured this memory (user, agent)")
	addCmd.Flags().StringVar(&addConfidence, "confidence", "medium", "confidence (high, medium, low)")
	addCmd.Flags().StringVar(&addStatus, "status", "active", "status (active, superseded, deprecated)")
	addCmd.Flags().StringVar(&addIfSimilar, "if-similar", "prompt", "dedup policy when near-duplicates exist (prompt, update, supersede, create)")
	addCmd.Flags().Float64Var(&addThreshold, "similarity-threshold", 0, "similarity threshold (default from config)")
	addCmd.Flags().StringVar(&addEvolutionNote, "evolution-note", "", "evolution log entry for updates")
	addCmd.Flags().BoolVar(&addNoIndex, "no-index", false, "skip the index rebuild")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("category")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Capture a memory, deduplicating against existing records",
	Long: `Capture a memory as a markdown record.

The candidate is scored against every stored record; matches at or above
the similarity threshold trigger the dedup policy: prompt interactively,
force an update or supersede of the best match, or create regardless.

Examples:
  # Capture a preference, prompting when a near-duplicate exists
  recall add --title "Use tabs" --category preferences --memory "Team prefers tabs."

  # Update the best match without prompting
  recall add --title "Use tabs" --category preferences \
    --memory "Tabs, enforced by the formatter." --if-similar update

  # Read the memory body from a file and skip the index rebuild
  recall add --title "Deploy runbook" --category workflow \
    --memory-file runbook.md --no-index`,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	memory, err := loadText(addMemory, addMemoryFile)
	if err != nil {
		return err
	}
	scope, err := loadText(addScope, addScopeFile)
	if err != nil {
		return err
	}
	policy, err := workflow.ParsePolicy(addIfSimilar)
	if err != nil {
		return err
	}

	req := workflow.AddRequest{
		Title:         addTitle,
		Category:      addCategory,
		Memory:        memory,
		Scope:         scope,
		Tags:          parseTags(addTags),
		Source:        addSource,
		Confidence:    addConfidence,
		Status:        addStatus,
		Policy:        policy,
		EvolutionNote: addEvolutionNote,
		SkipIndex:     addNoIndex,
	}
	if cmd.Flags().Changed("similarity-threshold") {
		req.Threshold = addThreshold
	}

	result, err := a.engine.Add(req)
	if err != nil {
		return err
	}

	switch result.Action {
	case workflow.ActionQuit:
		cmd.Println("Aborted.")
	case workflow.ActionUpdate:
		cmd.Printf("Updated %s\n", result.Path)
	case workflow.ActionSupersede:
		cmd.Printf("Superseded %s -> %s\n", result.Superseded, result.Path)
	default:
		cmd.Printf("Created %s\n", result.Path)
	}
	return nil
}

// loadText returns the file's content when path is set, else the inline
// value, trimmed either way.
func loadText(inline, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errMalformedInput, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(inline), nil
}

// parseTags splits a comma-separated flag value, dropping empties.
func parseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
