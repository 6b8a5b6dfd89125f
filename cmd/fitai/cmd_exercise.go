package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitai/fitai-server/pkg/domain/exercise"
)

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise <name...>",
		Short: "Look up an exercise in the taxonomy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			res := exercise.Lookup(name)
			if !res.Matched {
				return fmt.Errorf("no exercise matches %q", name)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Name\t%s\n", res.CanonicalName)
			fmt.Fprintf(w, "Primary\t%s\n", res.Primary)
			secondary := make([]string, len(res.Secondary))
			for i, m := range res.Secondary {
				secondary[i] = string(m)
			}
			fmt.Fprintf(w, "Secondary\t%s\n", strings.Join(secondary, ", "))
			fmt.Fprintf(w, "FIT category\t%s\n", res.Category)
			fmt.Fprintf(w, "Confidence\t%.2f\n", res.Confidence)
			return w.Flush()
		},
	}
	return cmd
}
