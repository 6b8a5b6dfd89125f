package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/spf13/cobra"

	"github.com/fitai/fitai-server/pkg/domain/file_generators"
	"github.com/fitai/fitai-server/pkg/normalizer"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Export or inspect FIT activity files",
	}
	cmd.AddCommand(newFitExportCmd(), newFitInspectCmd())
	return cmd
}

func newFitExportCmd() *cobra.Command {
	var (
		day    string
		start  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [plan-file]",
		Short: "Write one day of a weekly plan as a FIT file",
		Long: `Export reads a weekly plan, as JSON or as raw model output, normalizes
it and writes the chosen day as a FIT activity file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			startTime := time.Now()
			if start != "" {
				if startTime, err = time.Parse(time.RFC3339, start); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}
			if day == "" {
				day = strings.ToLower(startTime.Weekday().String())
			}

			res := normalizer.NormalizeWeeklyPlan(string(data))
			workout := res.Value.Day(strings.ToLower(day))
			if workout == nil || len(workout.Exercises) == 0 {
				return fmt.Errorf("no exercises planned for %s", day)
			}

			fitData, err := file_generators.GenerateWorkoutFit(startTime, *workout)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s-%s.fit", day, uuid.NewString()[:8])
			}
			if err := os.WriteFile(output, fitData, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes, %s, strategy %s)\n", output, len(fitData), workout.WorkoutName, res.Strategy)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "weekday to export (default: weekday of --start)")
	cmd.Flags().StringVar(&start, "start", "", "workout start time, RFC3339 (default: now)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path")
	return cmd
}

func newFitInspectCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "inspect <fit-file>",
		Short: "Summarize the messages of a FIT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			fitData, err := decoder.New(bytes.NewReader(data)).Decode()
			if err != nil {
				return fmt.Errorf("decode FIT file: %w", err)
			}

			out := cmd.OutOrStdout()
			counts := map[string]int{}
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			if verbose {
				fmt.Fprintln(w, "Set\tStart\tCategory\tReps\tDuration")
				fmt.Fprintln(w, "---\t-----\t--------\t----\t--------")
			}

			for i := range fitData.Messages {
				msg := &fitData.Messages[i]
				counts[msg.Num.String()]++

				switch msg.Num {
				case typedef.MesgNumSet:
					if !verbose {
						continue
					}
					set := mesgdef.NewSet(msg)
					categories := make([]string, len(set.Category))
					for j, c := range set.Category {
						categories[j] = c.String()
					}
					reps := "-"
					if set.Repetitions != 0 && set.Repetitions != 0xFFFF {
						reps = fmt.Sprint(set.Repetitions)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						set.MessageIndex, set.StartTime.UTC().Format(time.TimeOnly),
						strings.Join(categories, ","), reps,
						time.Duration(set.Duration)*time.Millisecond)
				case typedef.MesgNumSession:
					session := mesgdef.NewSession(msg)
					fmt.Fprintf(out, "Session: sport=%s elapsed=%s calories=%d\n",
						session.Sport, time.Duration(session.TotalElapsedTime)*time.Millisecond, session.TotalCalories)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(out, "\nMessages:")
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %d\n", name, counts[name])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "detailed-dump", "v", false, "print every Set message")
	return cmd
}

