package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("OLLAMA_URL", "http://127.0.0.1:9999")
	os.Setenv("MODEL", "test_model")
	os.Setenv("ENABLE_FILE_LOGGING", "true")
	os.Setenv("HOTKEY", "Ctrl+Shift+T")
	os.Setenv("OCR_DEADLINE_SEC", "33")

	defer func() {
		os.Unsetenv("OLLAMA_URL")
		os.Unsetenv("MODEL")
		os.Unsetenv("ENABLE_FILE_LOGGING")
		os.Unsetenv("HOTKEY")
		os.Unsetenv("OCR_DEADLINE_SEC")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.OllamaURL != "http://127.0.0.1:9999" {
		t.Errorf("Expected OllamaURL override, got '%s'", cfg.OllamaURL)
	}
	if cfg.Model != "test_model" {
		t.Errorf("Expected Model to be 'test_model', got '%s'", cfg.Model)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.OCRDeadlineSec != 33 {
		t.Errorf("Expected OCRDeadlineSec to be 33, got %d", cfg.OCRDeadlineSec)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OLLAMA_URL", "MODEL", "ENABLE_FILE_LOGGING", "HOTKEY", "OCR_DEADLINE_SEC"} {
		os.Unsetenv(key)
	}
	// Point the state dir somewhere empty so no saved model leaks in.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.OllamaURL != "http://localhost:11434" {
		t.Errorf("Expected default OllamaURL, got '%s'", cfg.OllamaURL)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Expected default model %q, got %q", DefaultModel, cfg.Model)
	}
	if cfg.Hotkey != DefaultHotkey {
		t.Errorf("Expected default hotkey %q, got %q", DefaultHotkey, cfg.Hotkey)
	}
	if cfg.OCRDeadlineSec != 20 {
		t.Errorf("Expected default deadline 20, got %d", cfg.OCRDeadlineSec)
	}
}

func TestInvalidDeadlineIgnored(t *testing.T) {
	t.Setenv("OCR_DEADLINE_SEC", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.OCRDeadlineSec != 20 {
		t.Errorf("Expected fallback deadline 20, got %d", cfg.OCRDeadlineSec)
	}
}

func TestLastModelRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if got := LastModel(); got != "" {
		t.Errorf("Expected empty last model in fresh state dir, got %q", got)
	}

	if err := SaveLastModel("llava:13b"); err != nil {
		t.Fatalf("SaveLastModel failed: %v", err)
	}
	if got := LastModel(); got != "llava:13b" {
		t.Errorf("Expected saved model back, got %q", got)
	}

	// Saved model becomes the default when MODEL is unset.
	os.Unsetenv("MODEL")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "llava:13b" {
		t.Errorf("Expected saved model as default, got %q", cfg.Model)
	}
}

func TestLastModelIgnoresCorruptState(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	stateDir := filepath.Join(dir, stateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, stateFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LastModel(); got != "" {
		t.Errorf("Expected empty model for corrupt state, got %q", got)
	}
}
