package handler

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardenrich/internal/domain"
	"cardenrich/internal/service"
)

// multipartMemory is the in-memory threshold before multipart parts spill to disk.
const multipartMemory = 8 << 20

// ExtractHandler handles business-card sheet uploads.
type ExtractHandler struct {
	svc            service.EnrichmentService
	maxUploadBytes int64
	log            *zap.Logger
}

// NewExtractHandler creates a new ExtractHandler. maxUploadBytes caps the request body.
func NewExtractHandler(svc service.EnrichmentService, maxUploadBytes int64, logger *zap.Logger) *ExtractHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractHandler{svc: svc, maxUploadBytes: maxUploadBytes, log: logger.Named("handler.extract")}
}

// Extract handles POST /api/extract and POST /api/v1/extract
// @Summary Enrich a business-card sheet
// @Description Upload a CSV with id, created_at, image_url and comment columns. Each image is read by the
// @Description vision model and the extracted fields are appended to the row.
// @Tags extract
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "CSV file with id, created_at, image_url, comment columns"
// @Param format query string false "Output format: csv (default) or xlsx"
// @Success 200 {file} file "Enriched sheet as an attachment"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported format"
// @Failure 413 {object} ErrorResponseBody "Upload too large"
// @Failure 422 {object} ErrorResponseBody "Header lacks a required column"
// @Failure 500 {object} ErrorResponseBody "Upload could not be read"
// @Router /extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	format, err := domain.ParseOutputFormat(c.Query("format"))
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleError(c, h.log, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, h.log, domain.ErrMissingFile)
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, h.log, domain.ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	h.log.Info("handler.extract.received",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("format", string(format)),
	)

	res, err := h.svc.EnrichUpload(c.Request.Context(), file, format)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Header("X-Records", strconv.Itoa(res.Records))
	c.Header("X-Records-Degraded", strconv.Itoa(res.Summary.Degraded))
	c.Data(http.StatusOK, res.ContentType, res.Body)
}
