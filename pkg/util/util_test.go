package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	type cfg struct {
		Name  string `yaml:"name"`
		Limit int    `yaml:"limit"`
	}

	t.Run("parses yaml into struct", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		if err := os.WriteFile(path, []byte("name: opensquawk\nlimit: 8\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadConfig[cfg](path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "opensquawk" || got.Limit != 8 {
			t.Fatalf("config mismatch: %+v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig[cfg]("does/not/exist.yaml"); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig[cfg](path); err == nil {
			t.Fatal("expected error for invalid yaml")
		}
	})
}
