package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facultykb/facultygraph/internal/config"
	"github.com/facultykb/facultygraph/internal/extract"
	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/store"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "facultygraph",
		Short: "facultygraph — faculty knowledge base built from biography spreadsheets",
		Long:  "facultygraph ingests faculty biography spreadsheets, extracts structured facts with an LLM (rule-based fallback), and maintains them in Postgres with a Neo4j graph mirror.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		ingestCmd(),
		entitiesCmd(),
		statsCmd(),
		healthCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newStore(logger *slog.Logger) (store.Store, error) {
	return store.NewPostgresStore(cfg.Postgres.DSN, logger)
}

func newMirror(ctx context.Context, logger *slog.Logger) (graph.Mirror, error) {
	return graph.NewNeo4jMirror(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, logger)
}

// newChain builds the extraction fallback chain: Ollama first, Claude
// when an API key is configured, rules always last.
func newChain(logger *slog.Logger) *extract.Chain {
	strategies := []extract.Strategy{
		extract.NewOllamaStrategy(
			cfg.Ollama.BaseURL,
			cfg.Ollama.Model,
			cfg.Ollama.Temperature,
			cfg.Ollama.MaxTokens,
			time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second,
			logger,
		),
	}
	if cfg.Claude.APIKey != "" {
		strategies = append(strategies, extract.NewClaudeStrategy(
			cfg.Claude.APIKey,
			cfg.Claude.Model,
			cfg.Ollama.Temperature,
			cfg.Ollama.MaxTokens,
			logger,
		))
	}
	strategies = append(strategies, extract.NewRuleStrategy())
	return extract.NewChain(logger, strategies...)
}
