package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cardenrich/internal/domain"
	"cardenrich/internal/pipeline"
	"cardenrich/internal/records"
	"cardenrich/internal/service"
	"cardenrich/internal/xlsxexport"
	"cardenrich/mocks"
)

func acmeBatch() *pipeline.Batch {
	return &pipeline.Batch{
		Fields: domain.FieldSetContact,
		Records: []domain.EnrichedRecord{{
			InputRecord:     domain.InputRecord{ID: "1", CreatedAt: "2024-01-01", ImageURL: "http://x/img.png", Comment: "hello"},
			ExtractedFields: domain.ExtractedFields{Company: "Acme", Email: "a@acme.com"},
		}},
		Summary: pipeline.Summary{Total: 1, Decoded: 1},
	}
}

func TestEnrichmentService_EnrichUpload_CSV(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	svc := service.NewEnrichmentService(runner, nil, nil)
	src := strings.NewReader("ignored")
	runner.On("Run", mock.Anything, io.Reader(src)).Return(acmeBatch(), nil)

	res, err := svc.EnrichUpload(context.Background(), src, domain.OutputFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, "enriched.csv", res.Filename)
	assert.Equal(t, 1, res.Records)
	assert.Equal(t, 1, res.Summary.Decoded)
	assert.Equal(t,
		"id,created_at,image_url,comment,company,email\n\"1\",\"2024-01-01\",\"http://x/img.png\",\"hello\",\"Acme\",\"a@acme.com\"",
		string(res.Body))
}

func TestEnrichmentService_EnrichUpload_DefaultsToCSV(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	svc := service.NewEnrichmentService(runner, nil, nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(acmeBatch(), nil)

	res, err := svc.EnrichUpload(context.Background(), strings.NewReader(""), "")

	require.NoError(t, err)
	assert.Equal(t, "enriched.csv", res.Filename)
}

func TestEnrichmentService_EnrichUpload_XLSX(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	svc := service.NewEnrichmentService(runner, nil, nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(acmeBatch(), nil)

	res, err := svc.EnrichUpload(context.Background(), strings.NewReader(""), domain.OutputFormatXLSX)

	require.NoError(t, err)
	assert.Equal(t, xlsxexport.ContentType, res.ContentType)
	assert.Equal(t, "enriched.xlsx", res.Filename)
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(res.Body, []byte("PK")))
}

func TestEnrichmentService_EnrichUpload_UnsupportedFormat(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	svc := service.NewEnrichmentService(runner, nil, nil)

	_, err := svc.EnrichUpload(context.Background(), strings.NewReader(""), domain.OutputFormat("pdf"))

	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestEnrichmentService_EnrichUpload_PropagatesMalformedInput(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	svc := service.NewEnrichmentService(runner, nil, nil)
	runner.On("Run", mock.Anything, mock.Anything).
		Return(nil, &records.MalformedInputError{Missing: []string{"image_url"}})

	res, err := svc.EnrichUpload(context.Background(), strings.NewReader(""), domain.OutputFormatCSV)

	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestEnrichmentService_EnrichObject(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	objects := new(mocks.MockObjectStorage)
	svc := service.NewEnrichmentService(runner, objects, nil)
	objects.On("Download", mock.Anything, "uploads", "batch.csv").Return([]byte("id,created_at,image_url,comment\n"), nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(acmeBatch(), nil)

	res, err := svc.EnrichObject(context.Background(), "s3://uploads/batch.csv", domain.OutputFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Records)
	objects.AssertExpectations(t)
}

func TestEnrichmentService_EnrichObject_DownloadFailure(t *testing.T) {
	runner := new(mocks.MockBatchRunner)
	objects := new(mocks.MockObjectStorage)
	svc := service.NewEnrichmentService(runner, objects, nil)
	boom := errors.New("access denied")
	objects.On("Download", mock.Anything, "uploads", "batch.csv").Return(nil, boom)

	_, err := svc.EnrichObject(context.Background(), "s3://uploads/batch.csv", domain.OutputFormatCSV)

	assert.True(t, errors.Is(err, domain.ErrBatchFailure))
	assert.True(t, errors.Is(err, boom))
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestEnrichmentService_EnrichObject_NoStorage(t *testing.T) {
	svc := service.NewEnrichmentService(new(mocks.MockBatchRunner), nil, nil)

	_, err := svc.EnrichObject(context.Background(), "s3://uploads/batch.csv", domain.OutputFormatCSV)

	assert.Error(t, err)
}
