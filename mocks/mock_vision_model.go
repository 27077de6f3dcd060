package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cardenrich/internal/port"
)

// MockVisionModel is a mock implementation of port.VisionModel.
type MockVisionModel struct {
	mock.Mock
}

func (m *MockVisionModel) Describe(ctx context.Context, req port.VisionRequest) (*port.VisionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.VisionResponse), args.Error(1)
}
