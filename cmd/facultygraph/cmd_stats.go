package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge-base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("stats: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats: fetching statistics: %w", err)
			}

			fmt.Printf("Entities:      %d\n", stats.Entities)
			fmt.Printf("Relationships: %d\n", stats.Relationships)
			fmt.Printf("Documents:     %d\n\n", stats.Documents)

			fmt.Println("By entity type:")
			for t, c := range stats.ByEntityType {
				fmt.Printf("  %-14s %d\n", t, c)
			}

			fmt.Println("\nBy relation:")
			for r, c := range stats.ByRelation {
				fmt.Printf("  %-14s %d\n", r, c)
			}

			mirror, err := newMirror(ctx, logger)
			if err != nil {
				fmt.Printf("\nGraph mirror: unavailable (%v)\n", err)
				return nil
			}
			defer func() { _ = mirror.Close(ctx) }()

			nodes, edges, err := mirror.Stats(ctx)
			if err != nil {
				fmt.Printf("\nGraph mirror: unavailable (%v)\n", err)
				return nil
			}
			fmt.Printf("\nGraph mirror: %d nodes, %d edges\n", nodes, edges)
			return nil
		},
	}
}
