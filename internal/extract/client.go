package extract

import (
	"context"
	"errors"
	"fmt"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// DefaultMaxTokens bounds the oracle's output for candidate extraction.
const DefaultMaxTokens = 4000

// Client sends one assembled context block plus the rubric to the oracle.
type Client struct {
	oracle ports.Oracle
	rubric *Rubric
	opts   ports.CompletionOpts
}

// NewClient wires the oracle with a rubric and fixed completion options.
func NewClient(oracle ports.Oracle, rubric *Rubric, opts ports.CompletionOpts) *Client {
	if rubric == nil {
		rubric = DefaultRubric()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Client{oracle: oracle, rubric: rubric, opts: opts}
}

// Ready reports domain.ErrConfigurationMissing when no oracle is wired.
func (c *Client) Ready() error {
	if c == nil || c.oracle == nil {
		return fmt.Errorf("%w: no oracle configured", domain.ErrConfigurationMissing)
	}
	return nil
}

// Extract renders the prompt and returns the oracle's raw text. Oracle
// failures are reported as domain.ErrExtractionFailed.
func (c *Client) Extract(ctx context.Context, contextBlock string, vars RubricVars) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}

	vars.Content = contextBlock
	prompt, err := c.rubric.Render(vars)
	if err != nil {
		return "", err
	}

	text, err := c.oracle.Complete(ctx, prompt, c.opts)
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationMissing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, c.oracle.Name(), domain.Upstream(err))
	}
	return text, nil
}
