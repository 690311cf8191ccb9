// cmd/dirlens/ollama.go
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultOllamaURL = "http://localhost:11434/api/generate"
	defaultTagsURL   = "http://localhost:11434/api/tags"
	defaultMaxTokens = 2048

	// vendorNamespacePrefix marks model names hidden from the selectable set.
	vendorNamespacePrefix = "hf.co"

	tagsRequestTimeout = 10 * time.Second
)

// OllamaClient issues completion requests against an Ollama-compatible
// endpoint and relays the incremental response stream.
type OllamaClient struct {
	generateURL string
	tagsURL     string
	maxTokens   int
	httpClient  *http.Client
}

// NewOllamaClient builds a client. Empty URLs and a non-positive maxTokens
// fall back to the defaults. The underlying HTTP client carries no overall
// timeout: generations stream for arbitrarily long; cancellation is the
// caller's cooperative flag.
func NewOllamaClient(generateURL, tagsURL string, maxTokens int) *OllamaClient {
	if generateURL == "" {
		generateURL = defaultOllamaURL
	}
	if tagsURL == "" {
		tagsURL = defaultTagsURL
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OllamaClient{
		generateURL: generateURL,
		tagsURL:     tagsURL,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{},
	}
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Stream    bool   `json:"stream"`
	MaxTokens int    `json:"max_tokens"`
}

type generateRecord struct {
	Response string `json:"response"`
}

// Generate posts a streaming completion request and relays each text chunk
// to onChunk as it arrives. The concatenation of everything emitted is
// returned once the stream completes, fails, or is cancelled.
//
// cancel is checked before each received record; once observed set, nothing
// further is emitted and the partial aggregate is returned. Setting it again
// later is a no-op. Transport failures and malformed records both terminate
// the stream with one final diagnostic chunk; content already emitted stays
// valid.
func (c *OllamaClient) Generate(model, prompt string, cancel *atomic.Bool, onChunk func(string)) string {
	emit := func(text string) {
		if onChunk != nil {
			onChunk(text)
		}
	}

	body, err := json.Marshal(generateRequest{
		Model:     model,
		Prompt:    prompt,
		Stream:    true,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		chunk := fmt.Sprintf("Error communicating with AI model: %v", err)
		emit(chunk)
		return chunk
	}

	req, err := http.NewRequest(http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		chunk := fmt.Sprintf("Error communicating with AI model: %v", err)
		emit(chunk)
		return chunk
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("AI request failed.", "url", c.generateURL, "error", err)
		chunk := fmt.Sprintf("Error communicating with AI model: %v", err)
		emit(chunk)
		return chunk
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("AI endpoint returned non-success status.", "url", c.generateURL, "status", resp.StatusCode)
		chunk := fmt.Sprintf("Error communicating with AI model: server returned status %d", resp.StatusCode)
		emit(chunk)
		return chunk
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if cancelled(cancel) {
			slog.Debug("AI stream cancelled by caller.")
			return full.String()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec generateRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// Hard stop: a malformed record poisons the rest of the stream.
			slog.Error("AI response record failed to decode.", "error", err)
			chunk := fmt.Sprintf("\nError decoding response: %v", err)
			full.WriteString(chunk)
			emit(chunk)
			return full.String()
		}
		full.WriteString(rec.Response)
		emit(rec.Response)
	}
	if err := scanner.Err(); err != nil && !cancelled(cancel) {
		slog.Error("AI stream read failed.", "error", err)
		chunk := fmt.Sprintf("\nError communicating with AI model: %v", err)
		full.WriteString(chunk)
		emit(chunk)
	}
	return full.String()
}

func cancelled(flag *atomic.Bool) bool {
	return flag != nil && flag.Load()
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels fetches the selectable model names from the tags endpoint,
// filtering out vendor-namespaced entries.
func (c *OllamaClient) ListModels() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tagsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tagsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building tags request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching models from %s: %w", c.tagsURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model listing returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding model listing: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if strings.HasPrefix(m.Name, vendorNamespacePrefix) {
			continue
		}
		names = append(names, m.Name)
	}
	return names, nil
}

// AI task presets: one prompt template per one-click task. The first verb
// slot takes the detected language label, the second the content.
var aiTaskPrompts = map[string]string{
	"quality":  "Analyze the code quality of the following %s code:\n\n%s",
	"improve":  "Suggest improvements for the following %s code:\n\n%s",
	"security": "Find any security issues in the following %s code:\n\n%s",
	"docs":     "Generate documentation for the following %s code:\n\n%s",
	"explain":  "Explain what the following %s code does:\n\n%s",
}

// buildTaskPrompt renders the preset prompt for task, or an error naming the
// known tasks when task is not one of them.
func buildTaskPrompt(task, language, content string) (string, error) {
	tpl, ok := aiTaskPrompts[task]
	if !ok {
		return "", fmt.Errorf("unknown AI task %q (known: %s)", task, strings.Join(knownAITasks(), ", "))
	}
	if language == "" {
		language = fallbackLanguage
	}
	return fmt.Sprintf(tpl, language, content), nil
}

func knownAITasks() []string {
	return mapsKeys(aiTaskPrompts)
}
