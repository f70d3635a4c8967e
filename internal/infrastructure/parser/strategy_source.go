package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
	"TalentRadar/internal/scanner"
)

// StrategySource implements ports.ContentSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ContentSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchWindow runs every configured source for documents published at or
// after since. Documents keep source order, then the scanner's own order.
func (s *StrategySource) FetchWindow(ctx context.Context, since time.Time) ([]domain.SourceDocument, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch window", "sources", len(s.sources), "since", since.Format(time.RFC3339))

	var aggregated []domain.SourceDocument
	for _, src := range s.sources {
		if src.Collection == "" {
			return nil, fmt.Errorf("source %s: %w: collection id", src.Name, domain.ErrConfigurationMissing)
		}
		strategy, err := s.registry.Resolve(src.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := scanner.Request{
			Since:      since,
			SiteName:   src.Name,
			Collection: src.Collection,
			Category:   src.Category,
			Options:    src.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan source %s: %w", src.Name, err)
		}

		for i := range results {
			if results[i].Category == "" {
				results[i].Category = src.Category
			}
		}
		s.debug("source produced documents", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_documents", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
