package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/maskfield/internal/config"
	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/preset"
	"github.com/zjrosen/maskfield/internal/tracing"
)

func phoneMask(t *testing.T, validate string) (*mask.Mask, string) {
	t.Helper()
	reg, err := preset.New(nil)
	require.NoError(t, err)
	m, strip, err := reg.Mask(context.Background(), config.FieldConfig{Name: "apply", Preset: "phone", Validate: validate})
	require.NoError(t, err)
	return m, strip
}

func TestApplyOne(t *testing.T) {
	m, _ := phoneMask(t, "")

	res := applyOne(m, "9041487623")
	require.Equal(t, "+7 (904)-148-76-23", res.Value)
	require.True(t, res.Complete)
	require.False(t, res.Truncated)

	res = applyOne(m, "904148762399")
	require.Equal(t, "+7 (904)-148-76-23", res.Value)
	require.True(t, res.Truncated)

	res = applyOne(m, "904")
	require.Equal(t, "+7 (904)-", res.Value, "literals at the end of the value are added eagerly")
	require.False(t, res.Complete)

	res = applyOne(m, "")
	require.Equal(t, "", res.Value, "the empty baseline normalizes to nothing")
}

func TestApplyOne_Rejected(t *testing.T) {
	m, _ := phoneMask(t, `^\+7 \((9|$)`)

	res := applyOne(m, "5551234567")
	require.True(t, res.Rejected)
	require.Empty(t, res.Value)
}

func TestApplyAll_Spans(t *testing.T) {
	m, strip := phoneMask(t, "")

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	results := applyAll(context.Background(), tp.Tracer("test"), "phone", m, strip,
		[]string{"(904) 148-76-23", "904148762399"})
	require.Len(t, results, 2)
	require.Equal(t, "+7 (904)-148-76-23", results[0].Value, "paste_strip of the preset applies")
	require.Equal(t, "(904) 148-76-23", results[0].Raw)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	var batch, truncated int
	for _, s := range spans {
		switch s.Name() {
		case tracing.SpanApplyBatch:
			batch++
			for _, kv := range s.Attributes() {
				if string(kv.Key) == tracing.AttrValueCount {
					require.Equal(t, int64(2), kv.Value.AsInt64())
				}
			}
		case tracing.SpanApplyValue:
			require.Equal(t, spans[len(spans)-1].SpanContext().TraceID(), s.SpanContext().TraceID())
			for _, ev := range s.Events() {
				if ev.Name == tracing.EventTruncated {
					truncated++
				}
			}
		}
	}
	require.Equal(t, 1, batch)
	require.Equal(t, 1, truncated)
}

func TestPrintResults(t *testing.T) {
	noColor(t)

	var out, errOut bytes.Buffer
	rejected := printResults(&out, &errOut, []applyResult{
		{Raw: "0930", Value: "09:30", Complete: true},
		{Raw: "093099", Value: "09:30", Complete: true, Truncated: true},
		{Raw: "x", Rejected: true},
	}, false)

	require.Equal(t, 1, rejected)
	require.Equal(t, "09:30\n09:30\n", out.String())
	require.Equal(t, "truncated: 093099\nrejected: x\n", errOut.String())
}

func TestRenderDiff(t *testing.T) {
	noColor(t)

	require.Equal(t, "+7 (904)-148-76-23", renderDiff("9041487623", "+7 (904)-148-76-23"))
	require.Equal(t, "09:30", renderDiff("09:30", "09:30"))
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("0930\r\n\n1745\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"0930", "1745"}, lines)
}

func TestApplyCommand(t *testing.T) {
	noColor(t)
	t.Setenv("HOME", t.TempDir())

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(config.DefaultConfigTemplate()), 0o644))

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader("3112\n"))
	rootCmd.SetArgs([]string{"--config", configPath, "apply", "--template", "99/99/9999", "--placeholder", "dd/mm/yyyy"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, "31/12/\n", out.String())
}

func TestApplyAll_NoopTracer(t *testing.T) {
	m, strip := phoneMask(t, "")
	results := applyAll(context.Background(), noop.NewTracerProvider().Tracer("noop"), "phone", m, strip, nil)
	require.Empty(t, results)
}
