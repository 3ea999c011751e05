package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/infocus-dev/showcase/internal/api"
	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/config"
	"github.com/infocus-dev/showcase/internal/listing"
	"github.com/infocus-dev/showcase/internal/paginate"
	"github.com/infocus-dev/showcase/internal/search"
	"github.com/infocus-dev/showcase/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			slog.SetDefault(logger)

			client, err := cms.NewClient(cfg.CMS.BaseURL, cms.Options{
				HTTPClient:  &http.Client{Timeout: cfg.CMS.Timeout},
				Logger:      logger,
				MaxAttempts: cfg.CMS.MaxAttempts,
				PageCeiling: cfg.CMS.PageCeiling,
			})
			if err != nil {
				return err
			}

			items := store.NewCollectionStore()
			registry := listing.NewRegistry()
			langs := []string{cfg.Languages.Primary, cfg.Languages.Secondary}

			for name, col := range cfg.Collections {
				mapping := cms.Mapping{TaxonomyKey: col.Taxonomy, SlugPrefix: name}
				for _, lang := range langs {
					engine := search.NewEngine(client, col.Endpoint, mapping)
					ctrl := listing.NewController(listing.Config{
						Collection:   name,
						Endpoint:     col.Endpoint,
						Lang:         lang,
						Window:       paginate.Config{SkipCount: col.PickupCount, PerPage: col.PerPage},
						Mapping:      mapping,
						SearchMode:   listing.SearchMode(col.SearchMode),
						OrderBy:      col.OrderBy,
						Order:        col.Order,
						FetchPerPage: col.FetchPerPage,
						Logger:       logger,
					}, client, engine, items)
					registry.Register(ctrl)
				}
			}

			// Prime every corpus up front. A collection that fails to load
			// stays registered; it serves errors with a static-fallback hint
			// until the next boot, and /healthz reports it.
			ctx := context.Background()
			for _, ctrl := range registry.All() {
				if err := ctrl.Load(ctx); err != nil {
					logger.Error("initial_load_failed", slog.Any("error", err))
				}
			}

			router := api.NewRouter(api.Deps{
				Registry:    registry,
				PrimaryLang: cfg.Languages.Primary,
				Languages:   langs,
				Logger:      logger,
			})

			logger.Info("listening", slog.String("addr", cfg.HTTP.Addr))
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
