package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Output: &buf, NoColor: true})

	log.Debug().Str("file", "words.csv").Msg("loading")
	got := buf.String()
	for _, want := range []string{"[DBG]", "loading", "file:", "words.csv"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, NoColor: true})

	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")
	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(got, "[WRN]") || !strings.Contains(got, "shown") {
		t.Errorf("warning missing from %q", got)
	}
}

func TestNewJSONAndInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "nonsense", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Error("invalid level should fall back to info")
	}
	if !strings.Contains(got, `"message":"shown"`) {
		t.Errorf("JSON output = %q", got)
	}
}

func TestLevel(t *testing.T) {
	if Level(true) != "debug" || Level(false) != "info" {
		t.Errorf("Level() = %q/%q, want debug/info", Level(true), Level(false))
	}
}
