package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	if cfg.StackSize != 16384 {
		t.Errorf("StackSize = %d, want 16384", cfg.StackSize)
	}
	if cfg.FrameCount != 64 {
		t.Errorf("FrameCount = %d, want 64", cfg.FrameCount)
	}
	if cfg.GCHeapGrowFactor != 2 {
		t.Errorf("GCHeapGrowFactor = %v, want 2", cfg.GCHeapGrowFactor)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nilan.yaml")
	if err := os.WriteFile(path, []byte("stackSize: 4096\ndisassembleOnCompile: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.StackSize != 4096 {
		t.Errorf("StackSize = %d, want 4096", cfg.StackSize)
	}
	if !cfg.DisassembleOnCompile {
		t.Errorf("DisassembleOnCompile = false, want true")
	}
	// Keys the file omits keep the spec-mandated default.
	if cfg.FrameCount != 64 {
		t.Errorf("FrameCount = %d, want 64 (unset key should keep default)", cfg.FrameCount)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load() on a missing file = nil error, want an error")
	}
}
