package handler

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/robobuild/internal/domain/quote"
)

type metrics struct {
	ops       metric.Int64Counter
	sessions  metric.Int64UpDownCounter
	quotes    metric.Int64Counter
	inquiries metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("github.com/xenking/robobuild/internal/handler")

	var (
		m   metrics
		err error
	)
	if m.ops, err = meter.Int64Counter("robobuild.configurator.operations",
		metric.WithDescription("Configurator operations by outcome"),
	); err != nil {
		return nil, err
	}
	if m.sessions, err = meter.Int64UpDownCounter("robobuild.configurator.sessions",
		metric.WithDescription("Build sessions opened minus closed through the API"),
	); err != nil {
		return nil, err
	}
	if m.quotes, err = meter.Int64Counter("robobuild.quotes.submitted",
		metric.WithDescription("Submitted builds by kind"),
	); err != nil {
		return nil, err
	}
	if m.inquiries, err = meter.Int64Counter("robobuild.inquiries.submitted",
		metric.WithDescription("Submitted service requests and contact messages"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// operation records a configurator call. Rejections are also added to the
// request span so they show up in traces.
func (m *metrics) operation(ctx context.Context, op string, n *notice) {
	outcome := "noop"
	if n != nil {
		outcome = n.kind
	}
	m.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
	if n != nil && n.kind == noticeRejected {
		trace.SpanFromContext(ctx).AddEvent("configurator.rejected", trace.WithAttributes(
			attribute.String("operation", op),
			attribute.String("reason", n.reason),
		))
	}
}

func (m *metrics) inquiry(ctx context.Context, kind string) {
	m.inquiries.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *metrics) submitted(ctx context.Context, kind quote.Kind) {
	m.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
