// Command fitai runs the normalizer, fallback responder, exercise
// taxonomy and FIT exporter locally, without the AI service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fitai/fitai-server/pkg/bootstrap"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "fitai",
		Short: "Offline tools for the FitAI server",
		Long: `fitai exercises the server's offline components.

Available commands:
  normalize - Turn raw AI output into a typed plan and show how it was read
  fallback  - Answer a chat message from the offline keyword table
  exercise  - Look up an exercise in the taxonomy
  fit       - Export a planned day to a FIT file, or inspect one`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bootstrap.InitLogger(bootstrap.ParseLevel(logLevel))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newNormalizeCmd(), newFallbackCmd(), newExerciseCmd(), newFitCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// readInput reads the named file, or the command's stdin for "" and "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
