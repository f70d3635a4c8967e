package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient implements ports.Oracle backed by OpenAI-compatible chat APIs.
type OpenAIClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Oracle = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAIClient{
		endpoint:     endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
	}
}

// Name identifies the provider in errors and logs.
func (c *OpenAIClient) Name() string { return config.ProviderOpenAI }

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the prompt as a user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts ports.CompletionOpts) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: openai client is nil", domain.ErrConfigurationMissing)
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("%w: openai client misconfigured", domain.ErrConfigurationMissing)
	}

	system := opts.System
	if strings.TrimSpace(system) == "" {
		system = c.systemPrompt
	}
	messages := make([]map[string]string, 0, 2)
	if s := strings.TrimSpace(system); s != "" {
		messages = append(messages, map[string]string{"role": "system", "content": s})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}

	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, map[string]string{"Authorization": "Bearer " + c.apiKey}, payload, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
