package notion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// MaxProfileLength caps the profile text injected into the rubric.
const MaxProfileLength = 2000

// ProfileSource reads the scoring profile from a page and falls back to a
// fixed text when the page cannot be read.
type ProfileSource struct {
	client   *Client
	pageID   string
	fallback string
	cache    *expirable.LRU[string, string]
	logger   *slog.Logger
}

var _ ports.ProfileSource = (*ProfileSource)(nil)

// NewProfileSource builds the source. A ttl of zero disables caching.
func NewProfileSource(client *Client, pageID, fallback string, ttl time.Duration, logger *slog.Logger) *ProfileSource {
	s := &ProfileSource{
		client:   client,
		pageID:   strings.TrimSpace(pageID),
		fallback: strings.TrimSpace(fallback),
		logger:   logger,
	}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, string](1, nil, ttl)
	}
	return s
}

// Profile never fails: any read error yields the fallback text.
func (s *ProfileSource) Profile(ctx context.Context) (string, error) {
	if s.pageID == "" || s.client == nil {
		return s.fallback, nil
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(s.pageID); ok {
			return v, nil
		}
	}

	text, err := s.client.PageText(ctx, s.pageID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("profile page unavailable, using fallback", "page", s.pageID, "error", err)
		}
		return s.fallback, nil
	}
	text = domain.Truncate(strings.TrimSpace(text), MaxProfileLength)
	if text == "" {
		return s.fallback, nil
	}

	if s.cache != nil {
		s.cache.Add(s.pageID, text)
	}
	return text, nil
}
