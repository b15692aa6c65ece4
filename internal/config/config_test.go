package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/infostats/internal/enrich"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.YearWindow != 3 {
		t.Errorf("YearWindow = %d, want 3", cfg.YearWindow)
	}
	if cfg.Limits.Threshold != 20 || cfg.Limits.MostPublishing != 10 ||
		cfg.Limits.CountryStats != 10 || cfg.Limits.Keywords != 100 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `bibtex_path: export.bib
block_size: 50
delete_previous: true
limits:
  keywords: 25
enrich:
  concurrency: 4
  timeout: 30s
  user_agent: lab-crawler/1.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BibtexPath != "export.bib" {
		t.Errorf("BibtexPath = %q, want export.bib", cfg.BibtexPath)
	}
	if cfg.BlockSize != 50 || !cfg.DeletePrevious {
		t.Errorf("BlockSize = %d, DeletePrevious = %v", cfg.BlockSize, cfg.DeletePrevious)
	}
	if cfg.Limits.Keywords != 25 {
		t.Errorf("Limits.Keywords = %d, want 25", cfg.Limits.Keywords)
	}
	// Unset keys keep their defaults.
	if cfg.Limits.Threshold != 20 {
		t.Errorf("Limits.Threshold = %d, want default 20", cfg.Limits.Threshold)
	}
	if cfg.Enrich.Concurrency != 4 || cfg.Enrich.Timeout != 30*time.Second {
		t.Errorf("Enrich = %+v", cfg.Enrich)
	}
	if cfg.Enrich.UserAgent != "lab-crawler/1.0" {
		t.Errorf("Enrich.UserAgent = %q, want lab-crawler/1.0", cfg.Enrich.UserAgent)
	}
	if cfg.Enrich.ArticleURL != enrich.DefaultArticleURL {
		t.Errorf("Enrich.ArticleURL = %q", cfg.Enrich.ArticleURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative block size", "block_size: -1\n"},
		{"negative window", "year_window: -2\n"},
		{"negative limit", "limits:\n  country_stats: -5\n"},
		{"zero concurrency", "enrich:\n  concurrency: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("block_size: [1, 2\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoadOrDefault_NotFound(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.RecordsPath != Default().RecordsPath {
		t.Errorf("RecordsPath = %q, want default", cfg.RecordsPath)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	want := Default()
	want.BlockSize = 7
	want.Enrich.RateLimit = 0.5

	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/other.db")
	t.Setenv(EnvRecords, "")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("DBPath = %q, want /tmp/other.db", cfg.DBPath)
	}
	if cfg.RecordsPath != Default().RecordsPath {
		t.Errorf("RecordsPath = %q, want unchanged", cfg.RecordsPath)
	}
}
