package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFromContext(t *testing.T) {
	t.Run("missing collector falls back to no-op", func(t *testing.T) {
		collector := FromContext(context.Background())
		timer := collector.Start("anything")
		timer.Child("nested").End()
		timer.End()

		var buf bytes.Buffer
		collector.Report(&buf)
		assert.Equal(t, 0, buf.Len())
	})

	t.Run("round-trips a collector", func(t *testing.T) {
		collector := NewTimingCollector()
		ctx := WithCollector(context.Background(), collector)
		assert.Equal(t, Collector(collector), FromContext(ctx))
	})
}

func TestTimingCollector(t *testing.T) {
	collector := NewTimingCollector()

	run := collector.Start("import")
	parse := run.Child("parse")
	parse.End()
	apply := run.Child("apply")
	apply.End()
	run.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	report := buf.String()

	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "import: "))
	assert.Contains(t, lines[1], "parse")
	assert.Contains(t, lines[1], "├─")
	assert.Contains(t, lines[2], "apply")
	assert.Contains(t, lines[2], "└─")
}

func TestTimingCollectorNestsUnderRunningTimer(t *testing.T) {
	collector := NewTimingCollector()

	outer := collector.Start("outer")
	inner := collector.Start("inner")
	leaf := collector.Start("leaf")
	leaf.End()
	inner.End()
	outer.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	report := buf.String()

	assert.Contains(t, report, "└─ inner")
	assert.Contains(t, report, "   └─ leaf")
}

func TestEmptyCollectorReportsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf)
	assert.Equal(t, 0, buf.Len())
}
