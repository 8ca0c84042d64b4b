package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadParsesTOMLFields(t *testing.T) {
	path := writeTempConfig(t, `
listening_port = 8080
geth_endpoints = ["https://rpc-a", "https://rpc-b"]
indexer_start_heights = [-1, 1000]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListeningPort != 8080 {
		t.Fatalf("ListeningPort = %d, want 8080", cfg.ListeningPort)
	}
	if len(cfg.GethEndpoints) != 2 || cfg.GethEndpoints[1] != "https://rpc-b" {
		t.Fatalf("GethEndpoints = %#v", cfg.GethEndpoints)
	}
	if len(cfg.IndexerStartHeights) != 2 || cfg.IndexerStartHeights[1] != 1000 {
		t.Fatalf("IndexerStartHeights = %#v", cfg.IndexerStartHeights)
	}
}

func TestLoadPortEnvOverridesListeningPort(t *testing.T) {
	path := writeTempConfig(t, `listening_port = 8080`)
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListeningPort != 9090 {
		t.Fatalf("ListeningPort = %d, want 9090", cfg.ListeningPort)
	}
}

func TestLoadSubstitutesPostgresCredentials(t *testing.T) {
	path := writeTempConfig(t, `listening_port = 1`)
	t.Setenv("DATABASE_URL", "postgres://$(POSTGRES_USER):$(POSTGRES_PASSWORD)@db/indexer")
	t.Setenv("POSTGRES_USER", "alice")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := "postgres://alice:s3cret@db/indexer"
	if cfg.DatabaseURL != want {
		t.Fatalf("DatabaseURL = %q, want %q", cfg.DatabaseURL, want)
	}
}

func TestLoadMaxPoolSizeDefault(t *testing.T) {
	path := writeTempConfig(t, `listening_port = 1`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxPoolSize != defaultMaxPoolSize {
		t.Fatalf("MaxPoolSize = %d, want %d", cfg.MaxPoolSize, defaultMaxPoolSize)
	}
}

func TestStartHeightForNegativeMeansResumeFromAnalytics(t *testing.T) {
	cfg := &Config{IndexerStartHeights: []int64{-1, 42}}
	if h := cfg.StartHeightFor(0); h != nil {
		t.Fatalf("StartHeightFor(0) = %v, want nil", h)
	}
	h := cfg.StartHeightFor(1)
	if h == nil || *h != 42 {
		t.Fatalf("StartHeightFor(1) = %v, want 42", h)
	}
	if h := cfg.StartHeightFor(5); h != nil {
		t.Fatalf("StartHeightFor(5) out of range = %v, want nil", h)
	}
}
