// Package llm is a minimal client for a locally running Ollama server. It
// covers the three calls the tool needs: vision OCR via /api/generate, a
// reachability check, and vision-model discovery via /api/tags.
package llm

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

type Config struct {
	BaseURL string // e.g. http://localhost:11434
	Model   string
}

var config *Config

func Init(cfg *Config) {
	config = cfg
}

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// ocrPrompt asks the model for raw text only.
const ocrPrompt = "Extract the exact text in the image and output only the text."

// Ollama API structures
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []modelInfo `json:"models"`
}

type modelInfo struct {
	Name string `json:"name"`
}

var httpClient = &http.Client{Timeout: 120 * time.Second}

// QueryVision sends a PNG image to the configured vision model and returns
// the extracted text. One attempt, no retries: the server is local and the
// caller owns failure reporting.
func QueryVision(imageData []byte) (string, error) {
	if config == nil {
		return "", fmt.Errorf("LLM client not initialized")
	}
	if config.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	request := generateRequest{
		Model:  config.Model,
		Prompt: ocrPrompt,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
		Stream: false,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := httpClient.Post(baseURL()+"/api/generate", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("inference request failed: %v", err)
	}
	defer resp.Body.Close()

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	if response.Error != "" {
		return "", fmt.Errorf("inference error: %s", response.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(response.Response)
	if text == "" {
		return "", fmt.Errorf("no text detected in image")
	}
	return text, nil
}

// Ping verifies the inference server is reachable.
func Ping() error {
	if config == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL() + "/api/tags")
	if err != nil {
		return fmt.Errorf("inference server unreachable at %s: %v", baseURL(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}
	return nil
}

// DefaultVisionModels is the fallback list used when the server cannot be
// queried for its installed models.
func DefaultVisionModels() []string {
	return []string{
		"qwen3-vl:8b",
		"qwen2.5vl:7b",
		"llava:13b",
		"llava:7b",
		"minicpm-v:8b",
		"gemma3:12b",
	}
}

// Keywords that indicate vision capability in a model name, and families that
// are known text-only unless a vision keyword says otherwise.
var (
	visionKeywords  = []string{"vl", "vision", "llava", "multimodal", "image", "clip", "visual"}
	excludeKeywords = []string{"mistral", "phi", "codellama", "deepseek-coder", "starcoder", "wizardcoder", "neural-chat", "orca"}
)

// ListVisionModels fetches installed models from the server and filters the
// vision-capable ones by name. Falls back to DefaultVisionModels when the
// server is unreachable or nothing matches.
func ListVisionModels() []string {
	if config == nil {
		return DefaultVisionModels()
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL() + "/api/tags")
	if err != nil {
		return DefaultVisionModels()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return DefaultVisionModels()
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return DefaultVisionModels()
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	models := FilterVisionModels(names)
	if len(models) == 0 {
		return DefaultVisionModels()
	}
	return models
}

// FilterVisionModels keeps model names that look vision-capable, dropping
// known text-only families, deduplicated and sorted.
func FilterVisionModels(names []string) []string {
	seen := make(map[string]bool)
	var models []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if hasAnyKeyword(lower, excludeKeywords) && !hasAnyKeyword(lower, visionKeywords) {
			continue
		}
		if !hasAnyKeyword(lower, visionKeywords) {
			continue
		}
		if !seen[name] {
			seen[name] = true
			models = append(models, name)
		}
	}
	sort.Strings(models)
	return models
}

func hasAnyKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func baseURL() string {
	if config != nil && config.BaseURL != "" {
		return strings.TrimRight(config.BaseURL, "/")
	}
	return DefaultBaseURL
}
