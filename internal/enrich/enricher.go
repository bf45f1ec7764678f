// Package enrich resolves supplementary website and rating data for a
// listing from the Google Places API.
package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-loader/internal/model"
	"github.com/sells-group/listing-loader/pkg/google"
)

var detailFields = []string{"website", "rating"}

// Enricher looks listings up by name near their coordinates.
type Enricher struct {
	places google.Client
}

// New creates an Enricher backed by the given Places client.
func New(places google.Client) *Enricher {
	return &Enricher{places: places}
}

// Enrich finds the best place match for name near (lat, lng) and returns its
// website and rating. No match yields an empty Enrichment and a nil error.
// Only the provider's top candidate is consulted.
func (e *Enricher) Enrich(ctx context.Context, name string, lat, lng float64) (model.Enrichment, error) {
	found, err := e.places.FindPlace(ctx, google.FindPlaceRequest{
		Input:  name,
		Fields: []string{"place_id"},
		Bias:   model.Coordinates{Latitude: lat, Longitude: lng}.Point(),
	})
	if err != nil {
		return model.Enrichment{}, eris.Wrapf(err, "enrich: find place %q", name)
	}

	if len(found.Candidates) == 0 {
		zap.L().Debug("no place candidate", zap.String("name", name))
		return model.Enrichment{}, nil
	}

	placeID := found.Candidates[0].PlaceID
	details, err := e.places.PlaceDetails(ctx, placeID, detailFields...)
	if err != nil {
		return model.Enrichment{}, eris.Wrapf(err, "enrich: details for %q", name)
	}

	return model.Enrichment{
		Website: details.Result.Website,
		Rating:  details.Result.Rating,
	}, nil
}
