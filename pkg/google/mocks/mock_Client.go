// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	google "github.com/sells-group/listing-loader/pkg/google"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// FindPlace provides a mock function with given fields: ctx, req
func (_m *MockClient) FindPlace(ctx context.Context, req google.FindPlaceRequest) (*google.FindPlaceResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for FindPlace")
	}

	var r0 *google.FindPlaceResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, google.FindPlaceRequest) (*google.FindPlaceResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, google.FindPlaceRequest) *google.FindPlaceResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.FindPlaceResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, google.FindPlaceRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PlaceDetails provides a mock function with given fields: ctx, placeID, fields
func (_m *MockClient) PlaceDetails(ctx context.Context, placeID string, fields ...string) (*google.PlaceDetailsResponse, error) {
	_va := make([]interface{}, len(fields))
	for _i := range fields {
		_va[_i] = fields[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, ctx, placeID)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	if len(ret) == 0 {
		panic("no return value specified for PlaceDetails")
	}

	var r0 *google.PlaceDetailsResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, ...string) (*google.PlaceDetailsResponse, error)); ok {
		return rf(ctx, placeID, fields...)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, ...string) *google.PlaceDetailsResponse); ok {
		r0 = rf(ctx, placeID, fields...)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.PlaceDetailsResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, ...string) error); ok {
		r1 = rf(ctx, placeID, fields...)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
