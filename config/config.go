package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultModel is used when neither the environment nor the saved state
	// names a model.
	DefaultModel = "qwen3-vl:8b"

	DefaultHotkey = "Ctrl+Alt+Q"

	// EnvPathVar points at an alternate .env file when none sits next to the
	// executable.
	EnvPathVar = "NEOCR_ENV"

	stateDirName  = "neocr"
	stateFileName = "config.json"
)

type Config struct {
	OllamaURL         string
	Model             string
	Hotkey            string
	EnableFileLogging bool
	OCRDeadlineSec    int
}

func Load() (*Config, error) {
	// Configuration sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use NEOCR_ENV as a path to a config file
	// Environment variables already set always win over the .env file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	ocrDeadlineSec := 20
	if v := os.Getenv("OCR_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ocrDeadlineSec = n
		}
	}

	cfg := &Config{
		OllamaURL:         getEnvWithDefault("OLLAMA_URL", "http://localhost:11434"),
		Model:             resolveModel(),
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		OCRDeadlineSec:    ocrDeadlineSec,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveModel prefers the MODEL env var, then the model remembered from the
// last run, then the built-in default.
func resolveModel() string {
	if m := strings.TrimSpace(os.Getenv("MODEL")); m != "" {
		return m
	}
	if m := LastModel(); m != "" {
		return m
	}
	return DefaultModel
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// state is the persisted per-user state file (~/.config/neocr/config.json).
type state struct {
	LastModel string `json:"last_model"`
}

// LastModel returns the model used on the previous run, or "" when no state
// has been saved yet.
func LastModel() string {
	path, err := statePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return ""
	}
	return strings.TrimSpace(st.LastModel)
}

// SaveLastModel remembers the model for the next run. Best-effort: callers
// treat a write failure as non-fatal.
func SaveLastModel(model string) error {
	path, err := statePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(state{LastModel: model})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func statePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateDirName, stateFileName), nil
}
