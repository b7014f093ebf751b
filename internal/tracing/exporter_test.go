package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestFileExporter_ExportSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	stubs := tracetest.SpanStubs{
		{
			Name:       SpanApplyValue,
			StartTime:  start,
			EndTime:    start.Add(1500 * time.Microsecond),
			Attributes: []attribute.KeyValue{attribute.String(AttrValue, "09:30")},
			Events:     []sdktrace.Event{{Name: EventTruncated}},
			Status:     sdktrace.Status{Code: codes.Error, Description: "rejected by validation"},
		},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), stubs.Snapshots()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 1)
	r := records[0]
	require.Equal(t, SpanApplyValue, r.Name)
	require.Equal(t, 1.5, r.DurationMs)
	require.Equal(t, "ERROR", r.Status)
	require.Equal(t, "rejected by validation", r.StatusMsg)
	require.Equal(t, "09:30", r.Attributes[AttrValue])
	require.Equal(t, []string{EventTruncated}, r.Events)
	require.Empty(t, r.ParentSpanID)
}

func TestFileExporter_AfterShutdown(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))

	err = exporter.ExportSpans(context.Background(), tracetest.SpanStubs{{Name: "x"}}.Snapshots())
	require.EqualError(t, err, "exporter is shut down")
}
