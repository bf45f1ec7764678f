package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/listing-loader/pkg/google"
	"github.com/sells-group/listing-loader/pkg/google/mocks"
)

func strPtr(s string) *string { return &s }
func fltPtr(f float64) *float64 { return &f }

func biasedFor(name string, lat, lng float64) interface{} {
	return mock.MatchedBy(func(req google.FindPlaceRequest) bool {
		return req.Input == name &&
			req.Bias != nil &&
			req.Bias.Y() == lat &&
			req.Bias.X() == lng
	})
}

func TestEnrich_Match(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, biasedFor("Green Leaf Cafe", 37.7749, -122.4194)).
		Return(&google.FindPlaceResponse{
			Status:     google.StatusOK,
			Candidates: []google.Candidate{{PlaceID: "top"}, {PlaceID: "runner-up"}},
		}, nil)
	places.On("PlaceDetails", mock.Anything, "top", "website", "rating").
		Return(&google.PlaceDetailsResponse{
			Status: google.StatusOK,
			Result: google.PlaceDetails{Website: strPtr("https://greenleaf.example"), Rating: fltPtr(4.7)},
		}, nil)

	got, err := New(places).Enrich(context.Background(), "Green Leaf Cafe", 37.7749, -122.4194)

	require.NoError(t, err)
	require.NotNil(t, got.Website)
	require.NotNil(t, got.Rating)
	assert.Equal(t, "https://greenleaf.example", *got.Website)
	assert.InDelta(t, 4.7, *got.Rating, 0.001)
	places.AssertNotCalled(t, "PlaceDetails", mock.Anything, "runner-up", "website", "rating")
}

func TestEnrich_NoCandidates(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusZeroResults}, nil)

	got, err := New(places).Enrich(context.Background(), "Nowhere", 1, 2)

	require.NoError(t, err)
	assert.Nil(t, got.Website)
	assert.Nil(t, got.Rating)
	assert.False(t, got.Found())
	places.AssertNotCalled(t, "PlaceDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_PartialDetails(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Candidates: []google.Candidate{{PlaceID: "p1"}}}, nil)
	places.On("PlaceDetails", mock.Anything, "p1", "website", "rating").
		Return(&google.PlaceDetailsResponse{Result: google.PlaceDetails{Rating: fltPtr(3.9)}}, nil)

	got, err := New(places).Enrich(context.Background(), "Half Known", 0, 0)

	require.NoError(t, err)
	assert.Nil(t, got.Website)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 3.9, *got.Rating, 0.001)
}

func TestEnrich_FindPlaceError(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(nil, errors.New("status REQUEST_DENIED"))

	_, err := New(places).Enrich(context.Background(), "Any", 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "find place")
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestEnrich_DetailsError(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Candidates: []google.Candidate{{PlaceID: "p1"}}}, nil)
	places.On("PlaceDetails", mock.Anything, "p1", "website", "rating").
		Return(nil, errors.New("connection reset"))

	_, err := New(places).Enrich(context.Background(), "Any", 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "details")
}

func TestEnrich_NoCacheAcrossCalls(t *testing.T) {
	places := mocks.NewMockClient(t)
	places.On("FindPlace", mock.Anything, mock.Anything).
		Return(&google.FindPlaceResponse{Status: google.StatusZeroResults}, nil).Twice()

	e := New(places)
	for range 2 {
		_, err := e.Enrich(context.Background(), "Same Name", 1, 1)
		require.NoError(t, err)
	}
	places.AssertNumberOfCalls(t, "FindPlace", 2)
}
