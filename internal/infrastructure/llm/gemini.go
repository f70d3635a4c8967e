package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// GeminiClient implements ports.Oracle with the Gemini SDK. The SDK client is
// created on first use so a missing key only fails the call that needs it.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ ports.Oracle = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.LLMConfig) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{apiKey: cfg.APIKey, model: model, endpoint: cfg.Endpoint}
}

// Name identifies the provider in errors and logs.
func (c *GeminiClient) Name() string { return config.ProviderGemini }

func (c *GeminiClient) init(ctx context.Context) error {
	c.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
		if c.endpoint != "" {
			opts = append(opts, option.WithEndpoint(c.endpoint))
		}
		client, err := genai.NewClient(ctx, opts...)
		if err != nil {
			c.initErr = fmt.Errorf("create gemini client: %w", err)
			return
		}
		c.client = client
	})
	return c.initErr
}

// Complete runs one GenerateContent call.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts ports.CompletionOpts) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: gemini api key", domain.ErrConfigurationMissing)
	}
	if err := c.init(ctx); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}
	if s := strings.TrimSpace(opts.System); s != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", domain.Upstream(fmt.Errorf("gemini request failed: %w", err))
	}
	return responseText(resp), nil
}

// Close releases the SDK client.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
