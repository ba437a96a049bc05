package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		name     string
		override string
		host     string
		scheme   string
		port     int
		want     string
	}{
		{name: "override wins", override: "https://crm.example.com/api/", host: "10.0.0.5", want: "https://crm.example.com/api"},
		{name: "empty host", want: DefaultBaseURL},
		{name: "localhost", host: "localhost", port: 9000, want: DefaultBaseURL},
		{name: "loopback ip", host: "127.0.0.1", want: DefaultBaseURL},
		{name: "lan host", host: "192.168.0.10", scheme: "http", port: 8000, want: "http://192.168.0.10:8000/api"},
		{name: "defaults filled", host: "crm.local", want: "http://crm.local:8000/api"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveBaseURL(tc.override, tc.host, tc.scheme, tc.port)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 8000 || cfg.APIScheme != "http" {
		t.Fatalf("unexpected api defaults: %+v", cfg)
	}
	if cfg.SessionBackend != "file" || cfg.Profile != "default" {
		t.Fatalf("unexpected session defaults: %+v", cfg)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %v", cfg.SearchDebounce)
	}
	if cfg.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.BaseURL())
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NEXO_HOST":            "10.1.1.2",
		"NEXO_API_PORT":        "9000",
		"NEXO_SESSION_BACKEND": "redis",
		"NEXO_REDIS_DB":        "3",
		"NEXO_HOME":            "/tmp/nexo-test",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL() != "http://10.1.1.2:9000/api" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL())
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if p, _ := cfg.LogPath(); p != "/tmp/nexo-test/nexo.log" {
		t.Fatalf("unexpected log path %q", p)
	}
}

func TestLogToStderr(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NEXO_LOG_FILE": "-",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.LogToStderr() {
		t.Fatalf("expected stderr logging for %q", cfg.LogFile)
	}
	cfg.LogFile = "/var/log/nexo.log"
	if cfg.LogToStderr() {
		t.Fatalf("file path treated as stderr")
	}
}

func TestLoadFrom_RejectsUnknownBackend(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NEXO_SESSION_BACKEND": "sqlite",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
