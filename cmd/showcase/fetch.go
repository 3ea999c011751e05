package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/config"
)

// newFetchCmd fetches and normalizes one collection and prints it as JSON.
// Useful for inspecting what the CMS actually returns before pointing the
// server at it.
func newFetchCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "fetch <collection>",
		Short: "Fetch a collection from the CMS and print normalized items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			name := args[0]
			col, ok := cfg.Collections[name]
			if !ok {
				return fmt.Errorf("unknown collection %q", name)
			}
			if lang == "" {
				lang = cfg.Languages.Primary
			}

			client, err := cms.NewClient(cfg.CMS.BaseURL, cms.Options{
				HTTPClient:  &http.Client{Timeout: cfg.CMS.Timeout},
				Logger:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
				MaxAttempts: cfg.CMS.MaxAttempts,
				PageCeiling: cfg.CMS.PageCeiling,
			})
			if err != nil {
				return err
			}

			raws, err := client.FetchAll(context.Background(), cms.PageQuery{
				Collection: col.Endpoint,
				PerPage:    col.FetchPerPage,
				Lang:       lang,
				OrderBy:    col.OrderBy,
				Order:      col.Order,
			})
			if err != nil {
				return err
			}

			items := cms.Normalize(raws, cms.Mapping{TaxonomyKey: col.Taxonomy, SlugPrefix: name}, lang)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "language to fetch (defaults to the primary language)")
	return cmd
}
