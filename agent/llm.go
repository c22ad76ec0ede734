package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Providers known to NewLLM. Every provider except anthropic speaks the
// OpenAI chat completions API.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderXAI       = "xai"
	ProviderLocal     = "local"
	ProviderCustom    = "custom"
)

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderXAI, ProviderLocal, ProviderCustom}
}

var providerDefaults = map[string]struct{ baseURL, model string }{
	ProviderOpenAI:    {"https://api.openai.com/v1", "gpt-4"},
	ProviderAnthropic: {"https://api.anthropic.com", "claude-3-5-sonnet-20241022"},
	ProviderXAI:       {"https://api.x.ai/v1", "grok-beta"},
	ProviderLocal:     {"http://localhost:11434/v1", "llama2"},
	ProviderCustom:    {},
}

const (
	anthropicVersion = "2023-06-01"
	maxHistory       = 40 // messages kept, oldest dropped first
)

// LLMConfig configures a model-backed agent. Empty BaseURL and Model take
// the provider's defaults.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLM is a player driven by a remote chat model. It keeps the conversation
// so the model remembers earlier rounds.
type LLM struct {
	name    string
	cfg     LLMConfig
	history []chatMessage
}

// NewLLM checks cfg and fills in the provider defaults. Only the local
// provider may go without an API key.
func NewLLM(name string, cfg LLMConfig) (*LLM, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	def, ok := providerDefaults[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q (want one of %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.baseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.model
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm provider %s: base url is required", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm provider %s: model is required", cfg.Provider)
	}
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.Provider != ProviderLocal {
		return nil, fmt.Errorf("llm provider %s: api key is required", cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &LLM{name: name, cfg: cfg}, nil
}

func (a *LLM) Name() string  { return a.name }
func (a *LLM) Model() string { return a.cfg.Provider + ":" + a.cfg.Model }

// GetResponse sends prompt with the conversation so far. A failed call
// leaves the history untouched and returns the error for the Selector to
// fall back on.
func (a *LLM) GetResponse(ctx context.Context, prompt string) (string, error) {
	messages := append(append([]chatMessage(nil), a.history...), chatMessage{Role: "user", Content: prompt})

	var (
		reply string
		err   error
	)
	if a.cfg.Provider == ProviderAnthropic {
		reply, err = a.messages(ctx, messages)
	} else {
		reply, err = a.chatCompletions(ctx, messages)
	}
	if err != nil {
		return "", err
	}

	a.history = append(messages, chatMessage{Role: "assistant", Content: reply})
	if n := len(a.history); n > maxHistory {
		a.history = append([]chatMessage(nil), a.history[n-maxHistory:]...)
	}
	return reply, nil
}

func (a *LLM) chatCompletions(ctx context.Context, messages []chatMessage) (string, error) {
	body := map[string]any{
		"model":       a.cfg.Model,
		"messages":    messages,
		"temperature": a.cfg.Temperature,
		"max_tokens":  a.cfg.MaxTokens,
	}
	header := http.Header{}
	if key := strings.TrimSpace(a.cfg.APIKey); key != "" {
		header.Set("Authorization", "Bearer "+key)
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := a.post(ctx, a.cfg.BaseURL+"/chat/completions", header, body, &payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(payload.Choices[0].Message.Content), nil
}

func (a *LLM) messages(ctx context.Context, messages []chatMessage) (string, error) {
	body := map[string]any{
		"model":       a.cfg.Model,
		"messages":    messages,
		"temperature": a.cfg.Temperature,
		"max_tokens":  a.cfg.MaxTokens,
	}
	header := http.Header{}
	header.Set("x-api-key", strings.TrimSpace(a.cfg.APIKey))
	header.Set("anthropic-version", anthropicVersion)

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := a.post(ctx, a.cfg.BaseURL+"/v1/messages", header, body, &payload); err != nil {
		return "", err
	}
	for _, c := range payload.Content {
		if c.Type == "text" {
			return strings.TrimSpace(c.Text), nil
		}
	}
	return "", fmt.Errorf("messages response has no text content")
}

// post sends body as JSON and decodes a 2xx response into out. The API key
// travels only in headers and never appears in errors.
func (a *LLM) post(ctx context.Context, url string, header http.Header, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal llm request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build llm request: %w", err)
	}
	req.Header = header
	req.Header.Set("Content-Type", "application/json")

	res, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return fmt.Errorf("read llm error body: %w", err)
		}
		return fmt.Errorf("llm request status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}
