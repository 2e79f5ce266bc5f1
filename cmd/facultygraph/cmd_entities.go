package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facultykb/facultygraph/internal/media"
	"github.com/facultykb/facultygraph/internal/upsert"
)

func entitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Browse and manage knowledge-base entities",
	}

	cmd.AddCommand(
		entitiesListCmd(),
		entitiesGetCmd(),
		entitiesDeleteCmd(),
	)

	return cmd
}

func entitiesListCmd() *cobra.Command {
	var (
		outputJSON bool
		query      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities, optionally filtered by a name substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("entities list: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			entities, err := st.SearchEntities(ctx, query)
			if err != nil {
				return fmt.Errorf("entities list: %w", err)
			}

			if len(entities) == 0 {
				fmt.Println("No entities found.")
				return nil
			}

			if outputJSON {
				out, err := json.MarshalIndent(entities, "", "  ")
				if err != nil {
					return fmt.Errorf("entities list: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			for i := range entities {
				fmt.Printf("%-6d %-12s %s\n", entities[i].ID, entities[i].EntityType, entities[i].Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	cmd.Flags().StringVarP(&query, "query", "q", "", "name substring filter")
	return cmd
}

func entitiesGetCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show an entity and every relationship touching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("entities get: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			entity, err := st.GetEntityByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("entities get: %w", err)
			}
			rels, err := st.ListRelationships(ctx, entity.ID)
			if err != nil {
				return fmt.Errorf("entities get: %w", err)
			}

			if outputJSON {
				out, err := json.MarshalIndent(map[string]any{
					"entity":        entity,
					"relationships": rels,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("entities get: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("%s (%s)\n", entity.Name, entity.EntityType)
			if entity.Description != "" {
				fmt.Printf("  %s\n", entity.Description)
			}
			if entity.PhotoURL != "" {
				fmt.Printf("  photo: %s\n", entity.PhotoURL)
			}
			for i := range rels {
				source, target := "?", "?"
				if rels[i].Source != nil {
					source = rels[i].Source.Name
				}
				if rels[i].Target != nil {
					target = rels[i].Target.Name
				}
				fmt.Printf("  %s -[%s]-> %s\n", source, rels[i].RelationshipType, target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	return cmd
}

func entitiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an entity and its relationships from both stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("entities delete: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			mirror, err := newMirror(ctx, logger)
			if err != nil {
				return fmt.Errorf("entities delete: connecting to graph store: %w", err)
			}
			defer func() { _ = mirror.Close(ctx) }()

			up := upsert.New(st, mirror, media.NewDir(cfg.Media.Root), logger)
			if err := up.DeleteEntity(ctx, args[0]); err != nil {
				return fmt.Errorf("entities delete: %w", err)
			}

			fmt.Printf("Deleted %q from both stores.\n", args[0])
			return nil
		},
	}
}
