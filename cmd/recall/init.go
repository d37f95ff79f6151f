package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the memory store",
	Long: `Create the store directory, one subdirectory per recognized
category, and the index document. Safe to run repeatedly.

Examples:
  # Initialize under the auto-detected project root
  recall init

  # Initialize under an explicit root
  recall init --root ~/src/myproject`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.engine.Init(); err != nil {
		return err
	}
	cmd.Printf("Initialized %s\n", a.store.Root())
	return nil
}
