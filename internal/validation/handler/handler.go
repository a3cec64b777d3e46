package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler-mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"guardian/internal/validation"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/platform/httputil"
	"guardian/pkg/requestcontext"
)

// FormField is the multipart field carrying the uploaded table.
const FormField = "file"

// DefaultMaxUploadBytes caps the request body when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// Service defines the interface for upload validation.
type Service interface {
	ValidateUpload(ctx context.Context, raw []byte) ([]validation.ValidationResult, error)
}

// Handler wires the upload endpoint to the validation service.
type Handler struct {
	service        Service
	logger         *slog.Logger
	maxUploadBytes int64
	middlewares    []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithMiddleware wraps only the upload route, e.g. with a rate limiter.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.middlewares = append(h.middlewares, mw...)
	}
}

// New constructs an upload handler. A non-positive maxUploadBytes selects
// DefaultMaxUploadBytes.
func New(service Service, logger *slog.Logger, maxUploadBytes int64, opts ...Option) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	h := &Handler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the upload endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.middlewares...).Post("/upload", h.HandleUpload)
}

// HandleUpload handles POST /upload requests.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	raw, filename, err := h.readUpload(r)
	if err != nil {
		h.logger.InfoContext(ctx, "upload rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	results, err := h.service.ValidateUpload(ctx, raw)
	if err != nil {
		if de, ok := dErrors.As(err); ok && dErrors.HTTPStatus(de.Code) < http.StatusInternalServerError {
			h.logger.InfoContext(ctx, "upload rejected",
				"request_id", requestID,
				"filename", filename,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "upload validation failed",
				"request_id", requestID,
				"filename", filename,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "upload processed",
		"request_id", requestID,
		"filename", filename,
		"records", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, NewUploadResponse(results))
}

func (h *Handler) readUpload(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile(FormField)
	if err != nil {
		return nil, "", h.uploadError(err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", h.uploadError(err)
	}
	return raw, header.Filename, nil
}

func (h *Handler) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
	case errors.Is(err, http.ErrMissingFile):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("missing form field '%s'", FormField))
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart upload")
	}
}
