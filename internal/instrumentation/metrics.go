package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency
const (
	attrApp    = "app"
	attrMode   = "mode"
	attrStatus = "status"
	attrTool   = "tool"
)

// Status values recorded on metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response mode values recorded on prompt metrics.
const (
	ModeStream   = "stream"
	ModeComplete = "complete"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder.
type Metrics struct {
	promptRequestsTotal metric.Int64Counter
	promptDuration      metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.promptRequestsTotal, err = meter.Int64Counter(
		"prompt_requests_total",
		metric.WithDescription("Total number of prompt requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt_requests_total counter: %w", err)
	}

	m.promptDuration, err = meter.Float64Histogram(
		"prompt_duration_seconds",
		metric.WithDescription("Prompt handling duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordPromptRequest records one handled prompt request.
func (m *Metrics) RecordPromptRequest(ctx context.Context, app, mode, status string, duration time.Duration) {
	if m == nil || m.promptRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrApp, app),
		attribute.String(attrMode, mode),
		attribute.String(attrStatus, status),
	)
	m.promptRequestsTotal.Add(ctx, 1, attrs)
	m.promptDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records one MCP tool invocation.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
