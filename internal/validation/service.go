package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"guardian/internal/decision"
	decisionmetrics "guardian/internal/decision/metrics"
	"guardian/internal/evidence/registry"
	"guardian/internal/ingest"
	"guardian/internal/validation/metrics"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/requestcontext"
)

// Resolver finds the authoritative record for one identifier.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (registry.Resolution, error)
}

// Evaluator turns a claimed record and its authoritative record into a verdict.
type Evaluator interface {
	Evaluate(input ingest.InputRecord, truth *registry.AuthoritativeRecord) decision.Verdict
}

// Service validates one uploaded table end to end.
type Service struct {
	resolver        Resolver
	evaluator       Evaluator
	logger          *slog.Logger
	metrics         *metrics.Metrics
	decisionMetrics *decisionmetrics.Metrics
	tracer          trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDecisionMetrics(m *decisionmetrics.Metrics) Option {
	return func(s *Service) {
		s.decisionMetrics = m
	}
}

// WithTracer overrides the global otel tracer, mainly for tests.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func NewService(resolver Resolver, evaluator Evaluator, opts ...Option) *Service {
	s := &Service{
		resolver:  resolver,
		evaluator: evaluator,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("guardian/internal/validation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateUpload ingests raw and validates every record in input order.
// Records are processed sequentially and a resolver failure aborts the batch.
func (s *Service) ValidateUpload(ctx context.Context, raw []byte) ([]ValidationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "validation.ValidateUpload",
		trace.WithAttributes(attribute.Int("upload.bytes", len(raw))))
	defer span.End()

	results, err := s.validate(ctx, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		s.metrics.ObserveUpload(outcome(err), 0, time.Since(start))
		return nil, err
	}

	summary := Summarize(results)
	span.SetAttributes(
		attribute.Int("upload.records", summary.Total),
		attribute.Int("upload.verified", summary.Verified),
		attribute.Int("upload.flagged", summary.Flagged),
		attribute.Int("upload.unknown", summary.Unknown),
	)
	s.metrics.ObserveUpload("success", summary.Total, time.Since(start))
	s.logger.InfoContext(ctx, "upload validated",
		"request_id", requestcontext.RequestID(ctx),
		"records", summary.Total,
		"verified", summary.Verified,
		"flagged", summary.Flagged,
		"unknown", summary.Unknown,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (s *Service) validate(ctx context.Context, raw []byte) ([]ValidationResult, error) {
	table, err := ingest.Parse(raw)
	if err != nil {
		return nil, classifyIngestError(err)
	}

	records := table.Records()
	results := make([]ValidationResult, 0, len(records))
	for _, record := range records {
		res, err := s.resolver.Resolve(ctx, record.Identifier())
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "registry lookup timed out")
			}
			return nil, fmt.Errorf("validate record %q: %w", record.Identifier(), err)
		}

		verdict := s.evaluator.Evaluate(record, res.Record)
		s.decisionMetrics.ObserveVerdict(string(verdict.Status), verdict.Confidence, verdict.Forced)
		results = append(results, Assemble(record, res, verdict))
	}
	return results, nil
}

func classifyIngestError(err error) error {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		return dErrors.Wrap(err, dErrors.CodeSchema, SchemaDetail(schemaErr))
	}
	var parseErr *ingest.ParseError
	if errors.As(err, &parseErr) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "could not parse CSV: "+parseErr.Err.Error())
	}
	return err
}

// SchemaDetail renders a schema failure for clients, e.g.
//
//	CSV missing 'reg_no' column (also accepted: 'npi'); found columns: [name, address]
func SchemaDetail(e *ingest.SchemaError) string {
	var alternatives []string
	for _, alias := range e.Accepted {
		if alias != e.Missing {
			alternatives = append(alternatives, "'"+alias+"'")
		}
	}
	return fmt.Sprintf("CSV missing '%s' column (also accepted: %s); found columns: [%s]",
		e.Missing, strings.Join(alternatives, ", "), strings.Join(e.Found, ", "))
}

func outcome(err error) string {
	if de, ok := dErrors.As(err); ok && dErrors.HTTPStatus(de.Code) < http.StatusInternalServerError {
		return "client_error"
	}
	return "server_error"
}
