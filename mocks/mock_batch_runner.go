package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cardenrich/internal/pipeline"
)

// MockBatchRunner is a mock implementation of service.BatchRunner.
type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) Run(ctx context.Context, src io.Reader) (*pipeline.Batch, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Batch), args.Error(1)
}
