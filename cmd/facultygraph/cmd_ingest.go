package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facultykb/facultygraph/internal/ingest"
	"github.com/facultykb/facultygraph/internal/media"
	"github.com/facultykb/facultygraph/internal/upsert"
)

func ingestCmd() *cobra.Command {
	var (
		skipKnown bool
		noPhotos  bool
		photosDir string
	)

	cmd := &cobra.Command{
		Use:   "ingest <workbook.xlsx>",
		Short: "Ingest a faculty biography spreadsheet into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("ingest: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ingest: ensuring schema: %w", err)
			}

			mirror, err := newMirror(ctx, logger)
			if err != nil {
				return fmt.Errorf("ingest: connecting to graph store: %w", err)
			}
			defer func() { _ = mirror.Close(ctx) }()

			var mediaDir *media.Dir
			if !noPhotos {
				root := cfg.Media.Root
				if photosDir != "" {
					root = photosDir
				}
				mediaDir = media.NewDir(root)
			}

			up := upsert.New(st, mirror, mediaDir, logger)
			driver := ingest.NewDriver(st, up, newChain(logger), mirror, mediaDir, logger)

			result, err := driver.IngestFile(ctx, args[0], ingest.Options{
				SkipKnown:     skipKnown,
				MaxTextLength: cfg.Ingest.MaxTextLength,
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Println(result.Message)
			if result.SkippedCount > 0 {
				fmt.Printf("已跳过 %d 位已存在的导师。\n", result.SkippedCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipKnown, "skip-known", true, "skip rows whose subject already has a graph node")
	cmd.Flags().BoolVar(&noPhotos, "no-photos", false, "do not extract or store embedded photos")
	cmd.Flags().StringVar(&photosDir, "photos-dir", "", "override the media root for extracted photos")
	return cmd
}
