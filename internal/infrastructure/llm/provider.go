package llm

import (
	"fmt"
	"strings"

	"TalentRadar/internal/config"
	"TalentRadar/internal/ports"
)

// NewOracle picks the provider named in cfg. A provider without credentials
// is still returned; its calls fail with domain.ErrConfigurationMissing.
func NewOracle(cfg config.LLMConfig) (ports.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
