// Package pipeline runs the search → enrich → normalize → persist batch.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-loader/internal/config"
	"github.com/sells-group/listing-loader/internal/model"
	"github.com/sells-group/listing-loader/internal/normalize"
	"github.com/sells-group/listing-loader/internal/store"
	"github.com/sells-group/listing-loader/pkg/yelp"
)

// Enricher resolves supplementary data for one listing.
type Enricher interface {
	Enrich(ctx context.Context, name string, lat, lng float64) (model.Enrichment, error)
}

// Pipeline processes one search query end to end. Listings are handled one
// at a time in search order.
type Pipeline struct {
	query    config.SearchConfig
	search   yelp.Client
	enricher Enricher
	store    store.Store
}

// New creates a Pipeline with all dependencies.
func New(query config.SearchConfig, search yelp.Client, enricher Enricher, st store.Store) *Pipeline {
	return &Pipeline{
		query:    query,
		search:   search,
		enricher: enricher,
		store:    st,
	}
}

// Result summarizes one run.
type Result struct {
	RunID    string             `json:"run_id"`
	Listings int                `json:"listings"`
	Enriched int                `json:"enriched"`
	Tags     int                `json:"tags"`
	Write    *store.WriteResult `json:"write"`
}

// Run searches, enriches and normalizes every listing, then writes the batch.
// Nothing is written until every listing has been normalized.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run",
		zap.String("term", p.query.Term),
		zap.String("location", p.query.Location),
		zap.Int("limit", p.query.Limit),
	)

	resp, err := p.search.Search(ctx, yelp.SearchRequest{
		Term:     p.query.Term,
		Location: p.query.Location,
		Limit:    p.query.Limit,
	})
	if err != nil {
		if errors.Is(err, yelp.ErrMalformedResponse) {
			log.Error("pipeline: search response could not be parsed", zap.Error(err))
		}
		return nil, eris.Wrap(err, "pipeline: search")
	}

	businesses, tags, enriched, err := p.Normalize(ctx, resp.Businesses)
	if err != nil {
		return nil, err
	}

	if err := p.store.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "pipeline: migrate store")
	}

	written, err := p.store.Write(ctx, businesses, tags)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: write")
	}

	log.Info("pipeline: run complete",
		zap.Int("listings", len(businesses)),
		zap.Int("enriched", enriched),
		zap.Int("tags", written.Tags),
		zap.Int("links", written.Links),
	)

	return &Result{
		RunID:    runID,
		Listings: len(businesses),
		Enriched: enriched,
		Tags:     tags.Len(),
		Write:    written,
	}, nil
}

// Normalize enriches and merges each search result in order, threading the
// tag accumulator through every step. It also reports how many listings got
// a place match.
func (p *Pipeline) Normalize(ctx context.Context, results []yelp.Business) ([]model.Business, model.TagSet, int, error) {
	var (
		tags     model.TagSet
		enriched int
	)
	businesses := make([]model.Business, 0, len(results))

	for _, r := range results {
		listing := normalize.Listing(r)

		e, err := p.enricher.Enrich(ctx, listing.Name, listing.Coordinates.Latitude, listing.Coordinates.Longitude)
		if err != nil {
			return nil, model.TagSet{}, 0, eris.Wrapf(err, "pipeline: enrich %q", listing.Name)
		}
		if e.Found() {
			enriched++
		}

		var b model.Business
		b, tags = normalize.Normalize(listing, e, tags)
		businesses = append(businesses, b)
	}

	return businesses, tags, enriched, nil
}
