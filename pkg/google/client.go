package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Provider status values that are not errors.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// Client performs Google Places API operations.
type Client interface {
	FindPlace(ctx context.Context, req FindPlaceRequest) (*FindPlaceResponse, error)
	PlaceDetails(ctx context.Context, placeID string, fields ...string) (*PlaceDetailsResponse, error)
}

// FindPlaceRequest is a free-text place lookup biased toward a point.
type FindPlaceRequest struct {
	Input  string
	Fields []string
	// Bias is optional. X is longitude, Y is latitude.
	Bias *geom.Point
}

// FindPlaceResponse is the response from Find Place. Candidates are in the
// provider's relevance order.
type FindPlaceResponse struct {
	Candidates   []Candidate `json:"candidates"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Candidate is one Find Place match.
type Candidate struct {
	PlaceID string `json:"place_id"`
}

// PlaceDetailsResponse is the response from Place Details.
type PlaceDetailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// PlaceDetails holds the requested detail fields. Fields the provider does
// not know about are left nil.
type PlaceDetails struct {
	Website *string  `json:"website,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
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

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LocationBias formats a point as a Places "point:lat,lng" bias.
func LocationBias(p *geom.Point) string {
	lat := strconv.FormatFloat(p.Y(), 'f', -1, 64)
	lng := strconv.FormatFloat(p.X(), 'f', -1, 64)
	return "point:" + lat + "," + lng
}

func (c *httpClient) FindPlace(ctx context.Context, req FindPlaceRequest) (*FindPlaceResponse, error) {
	fields := req.Fields
	if len(fields) == 0 {
		fields = []string{"place_id"}
	}

	params := url.Values{
		"input":     {req.Input},
		"inputtype": {"textquery"},
		"fields":    {strings.Join(fields, ",")},
		"key":       {c.apiKey},
	}
	if req.Bias != nil {
		params.Set("locationbias", LocationBias(req.Bias))
	}

	var result FindPlaceResponse
	if err := c.get(ctx, "/place/findplacefromtext/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "google: find place")
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, eris.Wrap(err, "google: find place")
	}

	return &result, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string, fields ...string) (*PlaceDetailsResponse, error) {
	params := url.Values{
		"place_id": {placeID},
		"key":      {c.apiKey},
	}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var result PlaceDetailsResponse
	if err := c.get(ctx, "/place/details/json", params, &result); err != nil {
		return nil, eris.Wrapf(err, "google: place details %s", placeID)
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return nil, eris.Wrapf(err, "google: place details %s", placeID)
	}

	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case StatusOK, StatusZeroResults:
		return nil
	case "":
		return eris.New("missing status")
	}
	if message != "" {
		return eris.Errorf("status %s: %s", status, message)
	}
	return eris.Errorf("status %s", status)
}
