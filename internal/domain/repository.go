package domain

import (
	"context"
	"encoding/json"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for interacting with the dataset catalog.
// ListFiles must never trigger a data download; only DownloadDataset does.
type CatalogClient interface {
	SearchDatasets(ctx context.Context, query string, limit int) ([]CatalogHit, error)
	ListFiles(ctx context.Context, ref string) ([]DatasetFile, *float64, error)
	DownloadDataset(ctx context.Context, ref, dest string) error
}

// ChatExtractor defines the interface for JSON-mode model extraction calls.
// Implementations log the prompt and raw response under the run's log dir.
type ChatExtractor interface {
	ChatJSON(ctx context.Context, system, prompt, logName string) (json.RawMessage, error)
}
