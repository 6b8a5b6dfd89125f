package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitai/fitai-server/pkg/fallback"
)

func newFallbackCmd() *cobra.Command {
	var showTopic bool

	cmd := &cobra.Command{
		Use:   "fallback <message...>",
		Short: "Answer a chat message from the offline keyword table",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if showTopic {
				topic := fallback.TopicDefault
				if rule, ok := fallback.Match(query); ok {
					topic = rule.Topic
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", topic)
			}
			fmt.Fprintln(cmd.OutOrStdout(), fallback.Respond(query).Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTopic, "topic", false, "print the matched rule topic first")
	return cmd
}
