package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/listing-loader/internal/config"
	"github.com/sells-group/listing-loader/internal/enrich"
	"github.com/sells-group/listing-loader/internal/model"
	"github.com/sells-group/listing-loader/internal/store"
	"github.com/sells-group/listing-loader/pkg/google"
	"github.com/sells-group/listing-loader/pkg/google/mocks"
	"github.com/sells-group/listing-loader/pkg/yelp"
)

var defaultQuery = config.SearchConfig{Term: "Vegan Cafe", Location: "San Francisco, CA", Limit: 50}

type stubSearch struct {
	resp *yelp.SearchResponse
	err  error
	got  yelp.SearchRequest
}

func (s *stubSearch) Search(_ context.Context, req yelp.SearchRequest) (*yelp.SearchResponse, error) {
	s.got = req
	return s.resp, s.err
}

func ptr(s string) *string { return &s }

func greenLeafResult() yelp.Business {
	return yelp.Business{
		Name:        "Green Leaf Cafe",
		Phone:       ptr("+14155550100"),
		Rating:      4.5,
		Coordinates: yelp.Coordinates{Latitude: 37.7749, Longitude: -122.4194},
		Location:    yelp.Location{Address1: ptr("1 Market St"), City: ptr("San Francisco"), ZipCode: ptr("94105")},
		Categories:  []yelp.Category{{Alias: "vegan"}, {Alias: "cafe"}},
	}
}

func newSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestRun_GreenLeafMatched(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{Businesses: []yelp.Business{greenLeafResult()}}}

	site := "https://greenleaf.example"
	rating := 4.7
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusOK, Candidates: []google.Candidate{{PlaceID: "gl"}}}, nil)
	places.On("PlaceDetails", mock.Anything, "gl", "website", "rating").
		Return(&google.PlaceDetailsResponse{Status: google.StatusOK, Result: google.PlaceDetails{Website: &site, Rating: &rating}}, nil)

	st := newSQLite(t)
	ctx := context.Background()

	res, err := New(defaultQuery, search, enrich.New(places), st).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, yelp.SearchRequest{Term: "Vegan Cafe", Location: "San Francisco, CA", Limit: 50}, search.got)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.Listings)
	assert.Equal(t, 1, res.Enriched)
	assert.Equal(t, 2, res.Tags)
	assert.Equal(t, &store.WriteResult{Tags: 2, Businesses: 1, Links: 2}, res.Write)

	businesses, err := st.Businesses(ctx)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	require.NotNil(t, businesses[0].Website)
	assert.Equal(t, site, *businesses[0].Website)
	require.NotNil(t, businesses[0].GoogleRating)
	assert.InDelta(t, 4.7, *businesses[0].GoogleRating, 0.001)

	tags, err := st.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.TagRow{{ID: 1, Name: "vegan"}, {ID: 2, Name: "cafe"}}, tags)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Links)
	assert.Zero(t, stats.OrphanLinks)
}

func TestRun_GreenLeafUnmatched(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{Businesses: []yelp.Business{greenLeafResult()}}}

	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusZeroResults}, nil)

	st := newSQLite(t)
	ctx := context.Background()

	res, err := New(defaultQuery, search, enrich.New(places), st).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Enriched)

	businesses, err := st.Businesses(ctx)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Nil(t, businesses[0].Website)
	assert.Nil(t, businesses[0].GoogleRating)

	tags, err := st.Tags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestRun_RerunDuplicates(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{Businesses: []yelp.Business{greenLeafResult()}}}

	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusZeroResults}, nil)

	st := newSQLite(t)
	ctx := context.Background()
	p := New(defaultQuery, search, enrich.New(places), st)

	first, err := p.Run(ctx)
	require.NoError(t, err)
	second, err := p.Run(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Businesses)
	assert.Equal(t, int64(4), stats.Tags)
	assert.Zero(t, stats.OrphanLinks)
}

func TestRun_MalformedSearch(t *testing.T) {
	search := &stubSearch{err: eris.Wrap(yelp.ErrMalformedResponse, "decode")}
	st := &recordingStore{}

	_, err := New(defaultQuery, search, nil, st).Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, yelp.ErrMalformedResponse))
	assert.False(t, st.migrated)
	assert.Nil(t, st.written)
}

func TestRun_EnrichFailureWritesNothing(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{Businesses: []yelp.Business{greenLeafResult()}}}

	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(nil, errors.New("status REQUEST_DENIED"))

	st := &recordingStore{}
	_, err := New(defaultQuery, search, enrich.New(places), st).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Green Leaf Cafe")
	assert.False(t, st.migrated)
	assert.Nil(t, st.written)
}

func TestRun_MigrateBeforeWrite(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{}}
	st := &recordingStore{}

	res, err := New(defaultQuery, search, nil, st).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"migrate", "write"}, st.calls)
	assert.Equal(t, 0, res.Listings)
}

func TestRun_WriteError(t *testing.T) {
	search := &stubSearch{resp: &yelp.SearchResponse{}}
	st := &recordingStore{writeErr: errors.New("disk full")}

	_, err := New(defaultQuery, search, nil, st).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: write")
}

func TestNormalize_TagUnionAcrossListings(t *testing.T) {
	results := []yelp.Business{
		{Name: "A", Categories: []yelp.Category{{Alias: "vegan"}, {Alias: "cafe"}}},
		{Name: "B", Categories: []yelp.Category{{Alias: "cafe"}, {Alias: "juicebars"}}},
		{Name: "C", Categories: []yelp.Category{{Alias: "vegan"}}},
	}

	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusZeroResults}, nil).Times(3)

	p := New(defaultQuery, nil, enrich.New(places), nil)
	businesses, tags, enriched, err := p.Normalize(context.Background(), results)

	require.NoError(t, err)
	require.Len(t, businesses, 3)
	assert.Equal(t, "A", businesses[0].Name)
	assert.Equal(t, "C", businesses[2].Name)
	assert.Equal(t, []string{"vegan", "cafe", "juicebars"}, tags.Names())
	assert.Zero(t, enriched)
}

// recordingStore is a Store that records calls without persisting anything.
type recordingStore struct {
	calls    []string
	migrated bool
	written  []model.Business
	writeErr error
}

func (r *recordingStore) Migrate(context.Context) error {
	r.calls = append(r.calls, "migrate")
	r.migrated = true
	return nil
}

func (r *recordingStore) Write(_ context.Context, businesses []model.Business, tags model.TagSet) (*store.WriteResult, error) {
	r.calls = append(r.calls, "write")
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	r.written = businesses
	return &store.WriteResult{Tags: tags.Len(), Businesses: len(businesses)}, nil
}

func (r *recordingStore) Tags(context.Context) ([]store.TagRow, error) { return nil, nil }
func (r *recordingStore) Businesses(context.Context) ([]store.BusinessRow, error) { return nil, nil }
func (r *recordingStore) Links(context.Context) ([]store.Link, error) { return nil, nil }
func (r *recordingStore) Stats(context.Context) (*store.Stats, error) { return &store.Stats{}, nil }
func (r *recordingStore) Close() error { return nil }
