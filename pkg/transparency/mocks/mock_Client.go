// Package mocks provides test doubles for the transparency client.
package mocks

import (
	"context"

	transparency "github.com/sells-group/poligraft/pkg/transparency"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// RecipientContributorSummary provides a mock function with given fields: ctx, recipientID, contributorID
func (_m *MockClient) RecipientContributorSummary(ctx context.Context, recipientID string, contributorID string) (*transparency.Summary, error) {
	ret := _m.Called(ctx, recipientID, contributorID)

	if len(ret) == 0 {
		panic("no return value specified for RecipientContributorSummary")
	}

	var r0 *transparency.Summary
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (*transparency.Summary, error)); ok {
		return rf(ctx, recipientID, contributorID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *transparency.Summary); ok {
		r0 = rf(ctx, recipientID, contributorID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*transparency.Summary)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, recipientID, contributorID)
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
