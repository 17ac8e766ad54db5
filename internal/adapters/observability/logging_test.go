package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_TagsService(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("prod").Output(&buf)
	l.Info().Msg("startup")

	out := buf.String()
	if !strings.Contains(out, `"service":"hotelos"`) {
		t.Fatalf("expected service field, got %s", out)
	}
	if !strings.Contains(out, `"time":`) {
		t.Fatalf("expected timestamp field, got %s", out)
	}
}
