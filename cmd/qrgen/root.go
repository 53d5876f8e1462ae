package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/validate"
	"github.com/spf13/cobra"
)

// maxBatch matches the per-request cap of the admin generate endpoint.
const maxBatch = 500

type generator interface {
	Generate(ctx context.Context, req domain.GenerateTagsRequest) ([]domain.GeneratedTag, error)
}

type openFunc func(ctx context.Context, cfg *config.Config) (generator, func() error, error)

func newRootCmd(open openFunc) *cobra.Command {
	var (
		count      int
		createdFor string
		baseURL    string
		backend    string
	)

	cmd := &cobra.Command{
		Use:          "qrgen",
		Short:        "Generate inactive tags with QR images",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			cfg := config.Load()
			if baseURL != "" {
				cfg.PublicBaseURL = strings.TrimRight(baseURL, "/")
			}
			if backend != "" {
				cfg.PersistenceBackend = strings.ToLower(backend)
			}
			gen, closeFn, err := open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			out := cmd.OutOrStdout()
			for done := 0; done < count; {
				req := domain.GenerateTagsRequest{Count: min(maxBatch, count-done), CreatedFor: createdFor}
				if err := validate.Struct(req); err != nil {
					return err
				}
				tags, err := gen.Generate(cmd.Context(), req)
				for _, t := range tags {
					fmt.Fprintf(out, "%s\t%s\t%s\n", t.TagID, t.URL, t.ImageKey)
				}
				done += len(tags)
				if err != nil {
					return fmt.Errorf("generated %d of %d tags: %w", done, count, err)
				}
			}
			cmd.PrintErrf("generated %d tags\n", count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of tags to generate")
	cmd.Flags().StringVar(&createdFor, "created-for", "", "customer or batch label stored on each tag")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public origin encoded in the QR images (default: PUBLIC_BASE_URL)")
	cmd.Flags().StringVar(&backend, "backend", "", "persistence backend, dynamo or firestore (default: PERSISTENCE_BACKEND)")
	return cmd
}
