package notion

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/pager"
	"TalentRadar/internal/ports"
)

// ClientSource lists active clients for the client feed and as lookalike seeds.
type ClientSource struct {
	client      *Client
	fetcher     *pager.Fetcher
	databaseID  string
	concurrency int
	logger      *slog.Logger
}

var (
	_ ports.LookalikeSource = (*ClientSource)(nil)
	_ ports.ClientDirectory = (*ClientSource)(nil)
)

// NewClientSource builds the source; concurrency bounds page-text reads (0 = unbounded).
func NewClientSource(client *Client, databaseID string, concurrency int, logger *slog.Logger) *ClientSource {
	return &ClientSource{
		client:      client,
		fetcher:     pager.NewFetcher(NewQuerier(client), logger),
		databaseID:  databaseID,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Lookalikes returns Active clients sorted by name, each with its page text as notes.
func (s *ClientSource) Lookalikes(ctx context.Context) ([]domain.EntityRef, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.EntityRef, len(clients))
	for i, c := range clients {
		refs[i] = c.Ref()
	}
	return refs, nil
}

// Clients returns Active client profiles sorted by name with their page text.
// A client whose page cannot be read is kept without page content.
func (s *ClientSource) Clients(ctx context.Context) ([]domain.ClientProfile, error) {
	if s.databaseID == "" {
		return nil, nil
	}

	raw, err := s.fetcher.FetchAll(ctx, pager.Query{
		Collection: s.databaseID,
		Filter: map[string]any{
			"property": "Status",
			"select":   map[string]string{"equals": "Active"},
		},
		Sort: []ports.SortKey{{Property: "Name", Direction: "ascending"}},
	})
	if err != nil {
		return nil, err
	}
	pages, err := decodePages(raw)
	if err != nil {
		return nil, fmt.Errorf("clients: %w", err)
	}

	clients := make([]domain.ClientProfile, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, p := range pages {
		clients[i] = domain.ClientProfile{
			ID:               p.ID,
			Name:             p.textOr("Name", "Unknown"),
			Handle:           p.text("Handle"),
			Platform:         p.names("Platform"),
			Followers:        p.text("Followers"),
			EngagementRate:   p.text("Engagement Rate"),
			Location:         p.text("Location"),
			Interests:        p.text("Interests"),
			BrandAffinity:    p.text("Brand Affinity"),
			AudienceGender:   p.text("Audience Gender Split"),
			TopLocations:     p.text("Top Audience Locations"),
			SimilarAudiences: p.text("Similar Audiences"),
		}
		if updated, ok := p.dateValue("Report Last Updated"); ok {
			clients[i].ReportUpdated = &updated
		}
		g.Go(func() error {
			content, err := s.client.PageText(gctx, p.ID)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("client page unavailable", "client", clients[i].Name, "error", err)
				}
				return nil
			}
			clients[i].PageContent = content
			return nil
		})
	}
	_ = g.Wait()
	return clients, nil
}
