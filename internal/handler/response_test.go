package handler_test

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"cardenrich/internal/domain"
	"cardenrich/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"malformed", domain.ErrMalformedInput, http.StatusUnprocessableEntity, "MALFORMED_INPUT"},
		{"missing file", domain.ErrMissingFile, http.StatusBadRequest, "MISSING_FILE"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"format", errors.Wrap(domain.ErrUnsupportedFormat, "format=pdf"), http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"field set", domain.ErrUnknownFieldSet, http.StatusBadRequest, "UNKNOWN_FIELD_SET"},
		{"batch", errors.Wrap(domain.ErrBatchFailure, "reading rows"), http.StatusInternalServerError, "BATCH_FAILURE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
