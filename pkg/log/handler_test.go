package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/reopenlab/reopenml/pkg/errors"
)

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Error("fit failed", ErrAttr(errors.New("boom")))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if record["msg"] != "fit failed" {
		t.Errorf("msg = %v, want 'fit failed'", record["msg"])
	}
	if _, ok := record[ErrAttrKey]; !ok {
		t.Error("error attribute missing from record")
	}
	if st, ok := record[StacktraceAttrKey].(string); !ok || st == "" {
		t.Error("stacktrace attribute missing for a cockroachdb error")
	}
}

func TestErrFmtHandlerPassesPlainRecords(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))

	logger := slog.New(handler)
	logger.Info("dataset loaded", slog.Int(SamplesKey, 120))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, ok := record[StacktraceAttrKey]; ok {
		t.Error("stacktrace attribute present without an error attribute")
	}
	if record[SamplesKey] != float64(120) {
		t.Errorf("%s = %v, want 120", SamplesKey, record[SamplesKey])
	}
}

func TestErrFmtHandlerEnabledDelegates(t *testing.T) {
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true with a warn-level handler")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false with a warn-level handler")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := ToLogLevel(tt.level); got != tt.want {
				t.Errorf("ToLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestToLogLevelPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ToLogLevel with an unknown level expected panic")
		}
	}()
	ToLogLevel("verbose")
}
