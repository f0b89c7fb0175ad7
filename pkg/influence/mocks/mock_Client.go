// Package mocks provides test doubles for the influence client.
package mocks

import (
	"context"

	influence "github.com/sells-group/poligraft/pkg/influence"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Contextualize provides a mock function with given fields: ctx, text
func (_m *MockClient) Contextualize(ctx context.Context, text string) ([]influence.Match, error) {
	ret := _m.Called(ctx, text)

	if len(ret) == 0 {
		panic("no return value specified for Contextualize")
	}

	var r0 []influence.Match
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]influence.Match, error)); ok {
		return rf(ctx, text)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []influence.Match); ok {
		r0 = rf(ctx, text)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]influence.Match)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, text)
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
	m := &MockClient{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
