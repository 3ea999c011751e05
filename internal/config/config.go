package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Collection configures one listing collection (news, team, projects).
type Collection struct {
	// Endpoint is the upstream path segment.
	Endpoint string
	// PickupCount is the pinned prefix excluded from numbered pages.
	PickupCount int
	// PerPage is the numbered-page size.
	PerPage int
	// FetchPerPage is the page size used when priming the full corpus.
	FetchPerPage int
	// SearchMode is "server" or "local".
	SearchMode string
	// Taxonomy is the taxonomy bucket carrying the collection's categories.
	Taxonomy string
	OrderBy  string
	Order    string
}

type Config struct {
	HTTP struct {
		Addr string
	}
	CMS struct {
		BaseURL     string
		Timeout     time.Duration
		MaxAttempts int
		PageCeiling int
	}
	Languages struct {
		Primary   string
		Secondary string
	}
	Collections map[string]Collection
}

// collectionNames is the fixed set of listing collections the site serves.
var collectionNames = []string{"news", "team", "projects"}

// Load reads config from environment (SHOWCASE_ prefix) and optional
// showcase.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHOWCASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("showcase")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("cms.timeout", "15s")
	v.SetDefault("cms.max_attempts", 3)
	v.SetDefault("cms.page_ceiling", 20)
	v.SetDefault("languages.primary", "ja")
	v.SetDefault("languages.secondary", "en")

	// Defaults mirror the production site's three listings.
	v.SetDefault("collections.news.endpoint", "news")
	v.SetDefault("collections.news.pickup_count", 3)
	v.SetDefault("collections.news.per_page", 14)
	v.SetDefault("collections.news.fetch_per_page", 50)
	v.SetDefault("collections.news.search_mode", "server")
	v.SetDefault("collections.news.taxonomy", "news")
	v.SetDefault("collections.news.orderby", "date")
	v.SetDefault("collections.news.order", "desc")

	v.SetDefault("collections.team.endpoint", "team")
	v.SetDefault("collections.team.pickup_count", 0)
	v.SetDefault("collections.team.per_page", 50)
	v.SetDefault("collections.team.fetch_per_page", 50)
	v.SetDefault("collections.team.search_mode", "local")
	v.SetDefault("collections.team.taxonomy", "team")
	v.SetDefault("collections.team.orderby", "menu_order")
	v.SetDefault("collections.team.order", "asc")

	v.SetDefault("collections.projects.endpoint", "projects")
	v.SetDefault("collections.projects.pickup_count", 4)
	v.SetDefault("collections.projects.per_page", 12)
	v.SetDefault("collections.projects.fetch_per_page", 100)
	v.SetDefault("collections.projects.search_mode", "local")
	v.SetDefault("collections.projects.taxonomy", "projects")
	v.SetDefault("collections.projects.orderby", "menu_order")
	v.SetDefault("collections.projects.order", "asc")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.CMS.BaseURL = v.GetString("cms.base_url")
	cfg.CMS.MaxAttempts = v.GetInt("cms.max_attempts")
	cfg.CMS.PageCeiling = v.GetInt("cms.page_ceiling")
	cfg.Languages.Primary = v.GetString("languages.primary")
	cfg.Languages.Secondary = v.GetString("languages.secondary")

	timeout, err := time.ParseDuration(v.GetString("cms.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOWCASE_CMS_TIMEOUT: %w", err)
	}
	cfg.CMS.Timeout = timeout

	cfg.Collections = make(map[string]Collection, len(collectionNames))
	for _, name := range collectionNames {
		col, err := collectionFrom(v, name)
		if err != nil {
			return nil, err
		}
		cfg.Collections[name] = col
	}

	if cfg.CMS.BaseURL == "" {
		return nil, fmt.Errorf("SHOWCASE_CMS_BASE_URL is required (e.g. https://cms.example.com/wp-json/wp/v2)")
	}

	return cfg, nil
}

func collectionFrom(v *viper.Viper, name string) (Collection, error) {
	prefix := "collections." + name + "."
	col := Collection{
		Endpoint:     v.GetString(prefix + "endpoint"),
		PickupCount:  v.GetInt(prefix + "pickup_count"),
		PerPage:      v.GetInt(prefix + "per_page"),
		FetchPerPage: v.GetInt(prefix + "fetch_per_page"),
		SearchMode:   v.GetString(prefix + "search_mode"),
		Taxonomy:     v.GetString(prefix + "taxonomy"),
		OrderBy:      v.GetString(prefix + "orderby"),
		Order:        v.GetString(prefix + "order"),
	}

	if col.PerPage <= 0 {
		return Collection{}, fmt.Errorf("collections.%s.per_page must be positive", name)
	}
	if col.PickupCount < 0 {
		return Collection{}, fmt.Errorf("collections.%s.pickup_count must not be negative", name)
	}
	if col.SearchMode != "server" && col.SearchMode != "local" {
		return Collection{}, fmt.Errorf("collections.%s.search_mode must be server or local", name)
	}
	return col, nil
}
