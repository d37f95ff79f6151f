package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the memory index",
	Long: `Regenerate the index document from the record files.

The index is derived state: it is always rebuilt wholesale, never
patched. Run this after editing records by hand.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.store.EnsureLayout(); err != nil {
		return err
	}
	if err := a.index.Rebuild(); err != nil {
		return err
	}
	cmd.Printf("Updated %s\n", a.store.IndexPath())
	return nil
}
