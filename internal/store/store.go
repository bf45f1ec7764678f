package store

import (
	"context"

	"github.com/sells-group/listing-loader/internal/model"
)

// Store defines the persistence interface for normalized business records.
type Store interface {
	// Write persists the tag vocabulary, the businesses and their tag links
	// in one transaction. Nothing is written if any step fails.
	Write(ctx context.Context, businesses []model.Business, tags model.TagSet) (*WriteResult, error)

	// Read-back
	Tags(ctx context.Context) ([]TagRow, error)
	Businesses(ctx context.Context) ([]BusinessRow, error)
	Links(ctx context.Context) ([]Link, error)
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// WriteResult holds the number of rows inserted by one Write.
type WriteResult struct {
	Tags       int `json:"tags"`
	Businesses int `json:"businesses"`
	Links      int `json:"links"`
}

// TagRow is a stored tag.
type TagRow struct {
	ID   int64  `json:"id_tag"`
	Name string `json:"name_tag"`
}

// BusinessRow is a stored business. Tags is not populated; see Links.
type BusinessRow struct {
	ID int64 `json:"id_b"`
	model.Business
}

// Link is one business_tag row.
type Link struct {
	TagID      int64 `json:"id_tag"`
	BusinessID int64 `json:"id_b"`
}

// Stats summarizes table contents. OrphanLinks counts business_tag rows whose
// tag or business does not exist.
type Stats struct {
	Tags        int64 `json:"tags"`
	Businesses  int64 `json:"businesses"`
	Links       int64 `json:"links"`
	OrphanLinks int64 `json:"orphan_links"`
}
