package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sheerbytes/batchsched/pkg/payload"
)

func TestWithPayload_AttachesCorrelationAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := payload.New(stubRequest{}, 0, 0, nil)
	p.BatchSize = 4

	WithPayload(logger, 2, p).Info("claimed")

	out := buf.String()
	if !strings.Contains(out, "payload_id="+p.ID) {
		t.Fatalf("expected log line to contain payload_id, got %q", out)
	}
	if !strings.Contains(out, "priority_level=2") {
		t.Fatalf("expected log line to contain priority_level, got %q", out)
	}
	if !strings.Contains(out, "batch_size=4") {
		t.Fatalf("expected log line to contain batch_size, got %q", out)
	}
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Fatalf("expected unrecognized level to default to info, got %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
}

type stubRequest struct{}

func (stubRequest) Inputs() []string                  { return nil }
func (stubRequest) InputShape(string) ([]int64, bool) { return nil, false }
func (stubRequest) TimeoutMs() uint32                 { return 0 }
func (stubRequest) BatchSize() uint32                 { return 1 }
