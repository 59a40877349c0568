package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/tablecore/engine/internal/config"
)

func TestDefaultTableConfig(t *testing.T) {
	cfg := config.DefaultTableConfig()
	if cfg.Storage.TuplesPerRowGroup == 0 {
		t.Fatalf("expected a positive default tuples_per_row_group")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.yaml")
	contents := "storage:\n  tuples_per_row_group: 50\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.TuplesPerRowGroup != 50 {
		t.Fatalf("expected override to apply, got %d", cfg.Storage.TuplesPerRowGroup)
	}
	if cfg.Storage.PageSize != 4096 {
		t.Fatalf("expected default page size to survive partial override, got %d", cfg.Storage.PageSize)
	}
}

func TestLoadRejectsZeroTuplesPerRowGroup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.yaml")
	contents := "storage:\n  tuples_per_row_group: 0\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected an error for a zero tuples_per_row_group override")
	}
}
