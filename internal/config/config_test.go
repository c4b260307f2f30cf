package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	cfg := Defaults()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("ollama_model: mixtral\nmin_bio_score: 0.7\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadFile(&cfg, path, true); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.OllamaModel != "mixtral" {
		t.Fatalf("got model %q, want mixtral", cfg.OllamaModel)
	}
	if cfg.MinBioScore != 0.7 {
		t.Fatalf("got min bio score %v, want 0.7", cfg.MinBioScore)
	}
	if cfg.OllamaHost != "http://localhost:11434" {
		t.Fatalf("expected untouched default to survive overlay, got %q", cfg.OllamaHost)
	}
}

func TestLoadFileMissingOptionalIsNotError(t *testing.T) {
	cfg := Defaults()
	if err := LoadFile(&cfg, "/nonexistent/path.yaml", false); err != nil {
		t.Fatalf("expected no error for missing optional file, got %v", err)
	}
}

func TestApplyEnvOverridesTakesPrecedenceOverDefaults(t *testing.T) {
	cfg := Defaults()
	t.Setenv("OLLAMA_MODEL", "llama3.3")
	t.Setenv("MIN_BIO_SCORE", "0.65")
	t.Setenv("DRY_RUN", "true")
	ApplyEnvOverrides(&cfg)
	if cfg.OllamaModel != "llama3.3" {
		t.Fatalf("got model %q, want llama3.3", cfg.OllamaModel)
	}
	if cfg.MinBioScore != 0.65 {
		t.Fatalf("got min bio score %v, want 0.65", cfg.MinBioScore)
	}
	if !cfg.DryRun {
		t.Fatalf("expected DryRun true")
	}
}
