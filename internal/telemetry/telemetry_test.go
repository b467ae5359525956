package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/steveyegge/gqld/internal/deploy"
)

func TestInitDisabledInstallsNoop(t *testing.T) {
	t.Setenv("GQLD_OTEL_ENABLED", "")
	if Enabled() {
		t.Fatal("Enabled() = true without GQLD_OTEL_ENABLED")
	}
	if err := Init(context.Background(), "gqld", "dev"); err != nil {
		t.Fatal(err)
	}
	if len(shutdownFns) != 0 {
		t.Errorf("shutdownFns = %d, want 0", len(shutdownFns))
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q", got)
	}
}

func TestDeployRecorder(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	r := NewDeployRecorder(context.Background())
	r.Handle(deploy.Event{Stage: deploy.StageValidate, Kind: deploy.EventStarted})
	r.Handle(deploy.Event{Stage: deploy.StageValidate, Kind: deploy.EventFinished})
	r.Handle(deploy.Event{Stage: deploy.StageMigrate, Kind: deploy.EventStarted})
	r.Handle(deploy.Event{Stage: deploy.StageMigrate, Kind: deploy.EventFailed, Err: errors.New("boom")})
	// A finish without a start is ignored.
	r.Handle(deploy.Event{Stage: deploy.StageRefresh, Kind: deploy.EventFinished})

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "deploy.validate" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[1].Status().Code != codes.Error {
		t.Errorf("failed stage status = %v, want Error", ended[1].Status().Code)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "gqld.deploy.stages" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 2 {
		t.Errorf("gqld.deploy.stages total = %d, want 2", total)
	}
}
