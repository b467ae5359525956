package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/gqld/internal/deploy"
)

const deployScopeName = "github.com/steveyegge/gqld/deploy"

// DeployRecorder turns deployment events into one span per stage and
// gqld.deploy.* metrics.
type DeployRecorder struct {
	ctx    context.Context
	tracer trace.Tracer
	stages metric.Int64Counter
	dur    metric.Float64Histogram

	mu    sync.Mutex
	open  map[deploy.Stage]trace.Span
	start map[deploy.Stage]time.Time
}

// NewDeployRecorder creates a recorder whose spans are children of the span
// in ctx, if any.
func NewDeployRecorder(ctx context.Context) *DeployRecorder {
	m := Meter(deployScopeName)
	stages, _ := m.Int64Counter("gqld.deploy.stages",
		metric.WithDescription("Deployment stages by stage and result"),
	)
	dur, _ := m.Float64Histogram("gqld.deploy.stage.duration",
		metric.WithDescription("Deployment stage duration"),
		metric.WithUnit("ms"),
	)
	return &DeployRecorder{
		ctx:    ctx,
		tracer: Tracer(deployScopeName),
		stages: stages,
		dur:    dur,
		open:   map[deploy.Stage]trace.Span{},
		start:  map[deploy.Stage]time.Time{},
	}
}

// Handle is a deploy.Listener.
func (r *DeployRecorder) Handle(e deploy.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Kind == deploy.EventStarted {
		_, span := r.tracer.Start(r.ctx, "deploy."+string(e.Stage))
		r.open[e.Stage] = span
		r.start[e.Stage] = time.Now()
		return
	}

	span, ok := r.open[e.Stage]
	if !ok {
		return
	}
	delete(r.open, e.Stage)
	attrs := []attribute.KeyValue{
		attribute.String("gqld.stage", string(e.Stage)),
		attribute.String("gqld.result", e.Kind.String()),
	}
	if e.Kind == deploy.EventFailed && e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	if e.Detail != "" {
		span.SetAttributes(attribute.String("gqld.detail", e.Detail))
	}
	span.End()

	r.stages.Add(r.ctx, 1, metric.WithAttributes(attrs...))
	r.dur.Record(r.ctx, float64(time.Since(r.start[e.Stage]).Milliseconds()), metric.WithAttributes(attrs...))
	delete(r.start, e.Stage)
}
