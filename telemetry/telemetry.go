// Package telemetry collects hierarchical timings for import runs.
//
// Collectors travel through context so call sites stay uninstrumented
// when telemetry is off:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("parse statement")
//	defer timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers operation timings.
type Collector interface {
	// Start begins timing an operation. End the returned Timer when
	// the operation completes.
	Start(name string) Timer

	// Report writes the collected timings.
	Report(w io.Writer)
}

// Timer tracks one operation. Child timers nest in the report.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector stores a collector on the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the context's collector, or a no-op collector
// when none is set.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noopCollector{}
}

type noopCollector struct{}

func (noopCollector) Start(name string) Timer { return noopTimer{} }
func (noopCollector) Report(w io.Writer)      {}

type noopTimer struct{}

func (noopTimer) End()                    {}
func (noopTimer) Child(name string) Timer { return noopTimer{} }
