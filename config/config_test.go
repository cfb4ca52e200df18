package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupefinder/config"
)

func writeConfig(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	params := cfg.Params()
	if params.Threshold != 95 || params.HashDistance != 5 || params.Size != 64 || params.Tolerance != 10 {
		t.Fatalf("unexpected default params %+v", params)
	}
	if cfg.Index.FingerprintSize != 16 || cfg.Index.Buckets != 2048 {
		t.Fatalf("unexpected index defaults %+v", cfg.Index)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, resolved %s", resolved)
	}
	if *cfg != config.Default() {
		t.Fatalf("config = %+v, want defaults", *cfg)
	}
}

func TestLoadFindsUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, filepath.Join(home, ".config", "dupefinder", "config.toml"), `
[search]
threshold = 90.5
strategy = "Fingerprint"
`)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved %s (exists=%v), want %s", resolved, exists, path)
	}
	if cfg.Search.Threshold != 90.5 || cfg.Search.Strategy != "fingerprint" {
		t.Fatalf("search = %+v", cfg.Search)
	}
	if cfg.Search.Size != 64 {
		t.Fatalf("unset values should keep defaults, size = %d", cfg.Search.Size)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	path := writeConfig(t, filepath.Join(t.TempDir(), "custom.toml"), `
[search]
hash_distance = 8
tolerance = 0
filter = "lanczos"

[index]
fingerprint_size = 8
workers = 2

[logging]
level = "DEBUG"
format = "json"
file = "~/logs/dupefinder.log"

[report]
enabled = true
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected explicit config to exist")
	}
	if cfg.Search.HashDistance != 8 || cfg.Search.Tolerance != 0 || cfg.Search.Filter != "lanczos" {
		t.Fatalf("search = %+v", cfg.Search)
	}
	if cfg.Index.FingerprintSize != 8 || cfg.Index.Workers != 2 {
		t.Fatalf("index = %+v", cfg.Index)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != filepath.Join(home, "logs", "dupefinder.log") {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if want := filepath.Join(home, ".local", "share", "dupefinder", "reports.db"); cfg.Report.Database != want {
		t.Fatalf("report database = %q, want %q", cfg.Report.Database, want)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("resolved %s exists=%v", resolved, exists)
	}
	if *cfg != config.Default() {
		t.Fatal("expected defaults for a missing explicit config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"threshold":        "[search]\nthreshold = 120.0\n",
		"hash distance":    "[search]\nhash_distance = 65\n",
		"strategy":         "[search]\nstrategy = \"vibes\"\n",
		"filter":           "[search]\nfilter = \"sinc\"\n",
		"resampler":        "[search]\nresampler = \"magick\"\n",
		"fingerprint size": "[index]\nfingerprint_size = 12\n",
		"fingerprint big":  "[index]\nfingerprint_size = 72\n",
		"buckets":          "[index]\nbuckets = -1\n",
		"workers":          "[index]\nworkers = -3\n",
		"log level":        "[logging]\nlevel = \"loud\"\n",
		"log format":       "[logging]\nformat = \"xml\"\n",
		"unknown field":    "[search]\nthresold = 90.0\n",
		"syntax":           "[search\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, filepath.Join(t.TempDir(), "bad.toml"), content)
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %q", content)
			}
		})
	}
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if err := config.CreateSample(path, false); err == nil {
		t.Fatal("expected error when sample already exists")
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample not found")
	}
	if *cfg != config.Default() {
		t.Fatalf("sample config = %+v, want defaults %+v", *cfg, config.Default())
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Threshold = 88
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(data), "threshold = 88") {
		t.Fatalf("encoded config missing threshold:\n%s", data)
	}

	path := writeConfig(t, filepath.Join(t.TempDir(), "round.toml"), string(data))
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load encoded: %v", err)
	}
	if *loaded != cfg {
		t.Fatalf("round trip = %+v, want %+v", *loaded, cfg)
	}
}
