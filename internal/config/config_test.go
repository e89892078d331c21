package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.MaxCharsPerBlock() != 499 {
		t.Errorf("MaxCharsPerBlock = %d, want 499", cfg.MaxCharsPerBlock())
	}
	if cfg.GapBetweenScenes() != 10 {
		t.Errorf("GapBetweenScenes = %v, want 10", cfg.GapBetweenScenes())
	}
	if cfg.FPS() != 24 || cfg.TransitionFrames() != 12 {
		t.Errorf("FPS/TransitionFrames = %d/%d, want 24/12", cfg.FPS(), cfg.TransitionFrames())
	}
	if cfg.Headless() {
		t.Error("Headless should default to false")
	}
}

func TestNew_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvHeadless, "true")
	t.Setenv(EnvWebhookURL, "https://n8n.example.com/webhook/")
	t.Setenv(EnvRenderCacheTTL, "30s")
	t.Setenv(EnvGapBetweenScenes, "0")
	t.Setenv(EnvFPS, "30")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port())
	}
	if cfg.DBPath() != filepath.Join(dir, DBFilename) {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
	if cfg.ExportsDir() != filepath.Join(dir, "exports") {
		t.Errorf("ExportsDir = %q", cfg.ExportsDir())
	}
	if !cfg.Headless() {
		t.Error("Headless = false, want true")
	}
	if cfg.WebhookURL() != "https://n8n.example.com/webhook" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL())
	}
	if cfg.RenderCacheTTL() != 30*time.Second {
		t.Errorf("RenderCacheTTL = %v", cfg.RenderCacheTTL())
	}
	if cfg.GapBetweenScenes() != 0 {
		t.Errorf("GapBetweenScenes = %v, want 0", cfg.GapBetweenScenes())
	}
	if cfg.FPS() != 30 {
		t.Errorf("FPS = %d, want 30", cfg.FPS())
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{EnvPort, "abc"},
		{EnvPort, "70000"},
		{EnvHeadless, "maybe"},
		{EnvFPS, "0"},
		{EnvMaxCharsPerBlock, "-3"},
		{EnvRenderCacheTTL, "soon"},
		{EnvGapBetweenScenes, "-1"},
		{EnvGapBetweenScenes, "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := New(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.env, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CASADARK_TRANSITION_FRAMES=6\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTransitionFrames, "")
	os.Unsetenv(EnvTransitionFrames)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error = %v", err)
	}
	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TransitionFrames() != 6 {
		t.Errorf("TransitionFrames = %d, want 6", cfg.TransitionFrames())
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}
