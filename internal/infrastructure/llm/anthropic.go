package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// AnthropicClient implements ports.Oracle over the Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	apiKey string
	system string
}

var _ ports.Oracle = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration. cfg.Endpoint, when
// set, replaces the API base URL. Failed calls are not retried; the run
// surfaces them and is safe to repeat.
func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}),
		option.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		system: strings.TrimSpace(cfg.SystemPrompt),
	}
}

// Name identifies the provider in errors and logs.
func (c *AnthropicClient) Name() string { return config.ProviderAnthropic }

// Complete sends prompt as a single user message and joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, opts ports.CompletionOpts) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", fmt.Errorf("%w: anthropic api key or model", domain.ErrConfigurationMissing)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	system := strings.TrimSpace(opts.System)
	if system == "" {
		system = c.system
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", domain.Upstream(err))
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Minute
	}
	return d
}
