// Package observability provides OpenTelemetry instrumentation for the
// message boundary.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lindoshq/lindos-go/domain/message"
)

const meterName = "github.com/lindoshq/lindos-go"

// Metrics records boundary-level measurements. A nil *Metrics is a valid
// no-op receiver so instrumentation can be wired unconditionally.
type Metrics struct {
	processed     metric.Int64Counter
	validationErr metric.Int64Counter
	liveEnvelopes metric.Int64UpDownCounter
}

// NewMetrics creates boundary metrics on the given meter provider. Passing
// nil uses the global provider, which is a no-op unless configured.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	processed, err := meter.Int64Counter("lindos.messages.processed",
		metric.WithDescription("Completed processing calls by outcome"))
	if err != nil {
		return nil, err
	}

	validationErr, err := meter.Int64Counter("lindos.validation.failures",
		metric.WithDescription("Validation pre-check failures by kind"))
	if err != nil {
		return nil, err
	}

	liveEnvelopes, err := meter.Int64UpDownCounter("lindos.envelopes.live",
		metric.WithDescription("Result envelopes acquired but not yet released"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		processed:     processed,
		validationErr: validationErr,
		liveEnvelopes: liveEnvelopes,
	}, nil
}

// RecordProcessed counts a completed processing call with its outcome kind.
func (m *Metrics) RecordProcessed(ctx context.Context, kind message.Kind) {
	if m == nil {
		return
	}
	m.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", kind.String()),
	))
}

// RecordValidationFailure counts a failed validation pre-check.
func (m *Metrics) RecordValidationFailure(ctx context.Context, kind message.Kind) {
	if m == nil {
		return
	}
	m.validationErr.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
	))
}

// EnvelopeAcquired records a new live envelope.
func (m *Metrics) EnvelopeAcquired(ctx context.Context) {
	if m == nil {
		return
	}
	m.liveEnvelopes.Add(ctx, 1)
}

// EnvelopeReleased records an envelope release.
func (m *Metrics) EnvelopeReleased(ctx context.Context) {
	if m == nil {
		return
	}
	m.liveEnvelopes.Add(ctx, -1)
}
