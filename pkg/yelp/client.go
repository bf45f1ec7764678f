// Package yelp is a minimal client for the Yelp Fusion business search API.
package yelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.yelp.com"

const searchPath = "/v3/businesses/search"

// ErrMalformedResponse is returned when the search response body is not a
// valid JSON search result.
var ErrMalformedResponse = eris.New("yelp: malformed search response")

// Client performs Yelp Fusion API operations.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the business search query parameters.
type SearchRequest struct {
	Term     string
	Location string
	Limit    int
}

// SearchResponse is the response from business search.
type SearchResponse struct {
	Total      int        `json:"total"`
	Businesses []Business `json:"businesses"`
}

// searchPayload mirrors SearchResponse with a pointer so a missing
// businesses key can be told apart from an empty list.
type searchPayload struct {
	Total      int         `json:"total"`
	Businesses *[]Business `json:"businesses"`
}

// Business is one search result. Nullable provider fields are pointers.
type Business struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Phone       *string     `json:"phone"`
	Rating      float64     `json:"rating"`
	Coordinates Coordinates `json:"coordinates"`
	Location    Location    `json:"location"`
	Categories  []Category  `json:"categories"`
}

// Coordinates is the business position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is the business postal address.
type Location struct {
	Address1 *string `json:"address1"`
	City     *string `json:"city"`
	ZipCode  *string `json:"zip_code"`
}

// Category is a business classification.
type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Yelp Fusion API client authenticated with a bearer key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	params := url.Values{
		"term":     {sr.Term},
		"location": {sr.Location},
	}
	if sr.Limit > 0 {
		params.Set("limit", strconv.Itoa(sr.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("yelp: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "decode: %v", err)
	}
	if payload.Businesses == nil {
		return nil, eris.Wrap(ErrMalformedResponse, "missing businesses")
	}

	return &SearchResponse{Total: payload.Total, Businesses: *payload.Businesses}, nil
}
