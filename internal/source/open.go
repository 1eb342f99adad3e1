package source

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/api"
	"github.com/kouign-amann/picview/internal/config"
	"github.com/kouign-amann/picview/internal/db"
)

// Open builds the service described by conf. When the cache is enabled
// the sqlite database is opened too and returned so the caller can close
// it; otherwise the returned *db.DB is nil.
func Open(conf *config.Config, logger *log.Logger) (*Service, *db.DB, error) {
	client, err := api.NewClient(api.Config{
		BaseURL:   conf.API.URL,
		Timeout:   conf.API.Timeout,
		UserAgent: conf.API.UserAgent,
		Proxy:     conf.API.Proxy,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if !conf.Cache.Enabled {
		return New(client, nil, logger), nil, nil
	}

	database, err := db.New(conf.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return New(client, database, logger), database, nil
}
