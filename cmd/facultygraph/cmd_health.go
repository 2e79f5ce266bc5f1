package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to required services",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			allOK := true

			// Check Postgres
			st, err := newStore(logger)
			if err != nil {
				fmt.Printf("Postgres: FAIL (%v)\n", err)
				allOK = false
			} else {
				defer func() { _ = st.Close() }()
				if err := st.EnsureSchema(ctx); err != nil {
					fmt.Printf("Postgres: FAIL (%v)\n", err)
					allOK = false
				} else {
					fmt.Println("Postgres: OK")
				}
			}

			// Check Neo4j
			mirror, err := newMirror(ctx, logger)
			if err != nil {
				fmt.Printf("Neo4j: FAIL (%v)\n", err)
				allOK = false
			} else {
				defer func() { _ = mirror.Close(ctx) }()
				if _, _, err := mirror.Stats(ctx); err != nil {
					fmt.Printf("Neo4j: FAIL (%v)\n", err)
					allOK = false
				} else {
					fmt.Println("Neo4j: OK")
				}
			}

			// Check Claude API key; extraction still works without it via
			// Ollama and the rule engine, so this is informational only.
			if cfg.Claude.APIKey == "" {
				fmt.Println("Claude API: not configured (rule fallback only after Ollama)")
			} else {
				fmt.Println("Claude API: OK")
			}

			if !allOK {
				return fmt.Errorf("one or more health checks failed")
			}
			return nil
		},
	}
}
