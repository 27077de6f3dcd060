package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cardenrich/internal/domain"
	"cardenrich/internal/service"
)

// MockEnrichmentService is a mock implementation of service.EnrichmentService.
type MockEnrichmentService struct {
	mock.Mock
}

func (m *MockEnrichmentService) EnrichUpload(ctx context.Context, src io.Reader, format domain.OutputFormat) (*service.EnrichResult, error) {
	args := m.Called(ctx, src, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EnrichResult), args.Error(1)
}

func (m *MockEnrichmentService) EnrichObject(ctx context.Context, ref string, format domain.OutputFormat) (*service.EnrichResult, error) {
	args := m.Called(ctx, ref, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EnrichResult), args.Error(1)
}
