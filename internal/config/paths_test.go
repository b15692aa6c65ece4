package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	want := "/custom/config/infostats/config.yml"
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv(EnvConfig, "")

	if got := FindConfig("", dir); got != "/custom/config/infostats/config.yml" {
		t.Errorf("FindConfig() without local file = %q", got)
	}

	local := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(local, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if got := FindConfig("", dir); got != local {
		t.Errorf("FindConfig() = %q, want %q", got, local)
	}

	t.Setenv(EnvConfig, "/from/env.yml")
	if got := FindConfig("", dir); got != "/from/env.yml" {
		t.Errorf("FindConfig() with env = %q", got)
	}

	if got := FindConfig("/explicit.yml", dir); got != "/explicit.yml" {
		t.Errorf("FindConfig(explicit) = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/data/records.db", filepath.Join(home, "data/records.db")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
