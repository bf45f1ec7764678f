// Package normalize merges search listings with their enrichment into
// storage-ready business records.
package normalize

import (
	"github.com/sells-group/listing-loader/internal/model"
	"github.com/sells-group/listing-loader/pkg/yelp"
)

// Listing converts a search result into a Listing, flattening categories to
// their aliases in order.
func Listing(b yelp.Business) model.Listing {
	tags := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		tags = append(tags, c.Alias)
	}

	return model.Listing{
		Name:  b.Name,
		Phone: b.Phone,
		Coordinates: model.Coordinates{
			Latitude:  b.Coordinates.Latitude,
			Longitude: b.Coordinates.Longitude,
		},
		Address: model.Address{
			Street:  b.Location.Address1,
			City:    b.Location.City,
			ZipCode: b.Location.ZipCode,
		},
		Tags:   tags,
		Rating: b.Rating,
	}
}

// Normalize merges a listing with its enrichment. The returned TagSet is acc
// plus every tag of the listing; acc itself is not modified.
func Normalize(l model.Listing, e model.Enrichment, acc model.TagSet) (model.Business, model.TagSet) {
	tags := make([]string, len(l.Tags))
	copy(tags, l.Tags)

	b := model.Business{
		Name:         l.Name,
		Phone:        l.Phone,
		Website:      e.Website,
		Tags:         tags,
		Address:      l.Address.Street,
		City:         l.Address.City,
		ZipCode:      l.Address.ZipCode,
		Latitude:     l.Coordinates.Latitude,
		Longitude:    l.Coordinates.Longitude,
		Rating:       l.Rating,
		GoogleRating: e.Rating,
	}

	return b, acc.With(tags...)
}
