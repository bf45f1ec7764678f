package model

// Business is the merged, storage-ready record for one listing. Nil pointer
// fields are stored as NULL.
type Business struct {
	Name         string   `json:"name"`
	Phone        *string  `json:"phone,omitempty"`
	Website      *string  `json:"website,omitempty"`
	Tags         []string `json:"tags"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	ZipCode      *string  `json:"zip_code,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Rating       float64  `json:"rating"`
	GoogleRating *float64 `json:"google_rating,omitempty"`
}
