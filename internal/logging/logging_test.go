package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}

	log.Info().Msg("hidden")
	log.Warn().Str("fen", "8/8").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info event written at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "8/8") {
		t.Errorf("warn event missing: %q", out)
	}
}

func TestBadLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
