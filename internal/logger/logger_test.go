package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Str("path", "/clients").Msg("request")
	log.Debug().Msg("hidden")

	if second.Len() != 0 {
		t.Fatalf("second Init should be ignored")
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(first.Bytes()), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", first.String(), err)
	}
	if entry["path"] != "/clients" || entry["message"] != "request" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestGet_BeforeInitIsNop(t *testing.T) {
	Reset()
	log := Get()
	log.Error().Msg("dropped")
}

func TestOpenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "nexo.log")
	f, err := OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestInit_PrettyWritesConsoleLines(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Pretty: true, Output: &buf})
	log := Get()
	log.Info().Str("user", "tech").Msg("logged in")

	line := buf.String()
	if strings.HasPrefix(line, "{") {
		t.Fatalf("expected console output, got json %q", line)
	}
	for _, want := range []string{"INF", "logged in", "user=tech"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}
