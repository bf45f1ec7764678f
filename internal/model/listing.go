package model

import "github.com/twpayne/go-geom"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the coordinates as an XY point (X = longitude, Y = latitude).
func (c Coordinates) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Longitude, c.Latitude})
}

// Address holds the street-level location of a listing. Nil fields were
// null at the provider.
type Address struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	ZipCode *string `json:"zip_code,omitempty"`
}

// Listing is one business as returned by the search provider.
type Listing struct {
	Name        string      `json:"name"`
	Phone       *string     `json:"phone,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Address     Address     `json:"address"`
	Tags        []string    `json:"tags"`
	Rating      float64     `json:"rating"`
}

// Enrichment holds the supplementary fields resolved from the places provider.
// A nil field means the provider had no value for it.
type Enrichment struct {
	Website *string  `json:"website,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
}

// Found reports whether any enrichment field was resolved.
func (e Enrichment) Found() bool {
	return e.Website != nil || e.Rating != nil
}
