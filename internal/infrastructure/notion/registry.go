package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/pager"
	"TalentRadar/internal/ports"
)

// Registry database property names.
const (
	propName        = "Name"
	propMatchScore  = "Match Score"
	propWhyFit      = "Why They're a Fit"
	propSource      = "Source"
	propSourceRef   = "Source Article/Episode"
	propLink        = "Link"
	propPlatform    = "Platform"
	propReach       = "Followers/Reach"
	propUpsideNotes = "Upside Notes"
	propStatus      = "Status"
	propAddedBy     = "Added By"
	propDateAdded   = "Date Added"
)

// Registry stores prospects as rows of a Notion database.
type Registry struct {
	client     *Client
	fetcher    *pager.Fetcher
	databaseID string
	now        func() time.Time
}

var _ ports.Registry = (*Registry)(nil)

// NewRegistry builds the registry over databaseID.
func NewRegistry(client *Client, databaseID string, logger *slog.Logger) *Registry {
	return &Registry{
		client:     client,
		fetcher:    pager.NewFetcher(NewQuerier(client), logger),
		databaseID: strings.TrimSpace(databaseID),
		now:        time.Now,
	}
}

// ListAll walks every row of the registry database.
func (r *Registry) ListAll(ctx context.Context) ([]domain.ProspectRecord, error) {
	if r.databaseID == "" {
		return nil, fmt.Errorf("%w: registry database id", domain.ErrConfigurationMissing)
	}
	raw, err := r.fetcher.FetchAll(ctx, pager.Query{Collection: r.databaseID})
	if err != nil {
		return nil, err
	}
	pages, err := decodePages(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	records := make([]domain.ProspectRecord, 0, len(pages))
	for _, p := range pages {
		records = append(records, toRecord(p))
	}
	return records, nil
}

// Append creates one row with status New.
func (r *Registry) Append(ctx context.Context, c domain.ProspectCandidate, addedBy domain.AddedBy) (domain.ProspectRecord, error) {
	if r.databaseID == "" {
		return domain.ProspectRecord{}, fmt.Errorf("%w: registry database id", domain.ErrConfigurationMissing)
	}

	platforms := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		platforms = append(platforms, string(p))
	}
	source := c.Source
	if source == "" {
		source = domain.DefaultSource
	}

	payload := map[string]any{
		"parent": map[string]string{"database_id": r.databaseID},
		"properties": map[string]any{
			propName:        titleValue(c.Name),
			propMatchScore:  scoreValue(c),
			propWhyFit:      richTextValue(c.WhyFit),
			propSource:      selectValue(string(source)),
			propSourceRef:   richTextValue(c.SourceReference),
			propLink:        urlValue(c.ProfileLink),
			propPlatform:    multiSelectValue(platforms),
			propReach:       richTextValue(c.ReachEstimate),
			propUpsideNotes: richTextValue(c.UpsideNotes),
			propStatus:      selectValue(string(domain.StatusNew)),
			propAddedBy:     selectValue(string(addedBy)),
			propDateAdded:   dateValueOf(r.now().UTC()),
		},
	}

	var created page
	if err := r.client.doJSON(ctx, http.MethodPost, "/pages", nil, payload, &created); err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("create prospect %q: %w", c.Name, err)
	}
	return toRecord(created), nil
}

// Get reads one row by page id.
func (r *Registry) Get(ctx context.Context, id string) (domain.ProspectRecord, error) {
	var p page
	if err := r.client.doJSON(ctx, http.MethodGet, "/pages/"+id, nil, nil, &p); err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("get prospect %s: %w", id, err)
	}
	return toRecord(p), nil
}

// UpdateStatus moves a row to status when the transition is allowed.
func (r *Registry) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.ProspectRecord, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.ProspectRecord{}, err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.ProspectRecord{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}
	if current.Status == status {
		return current, nil
	}

	payload := map[string]any{
		"properties": map[string]any{propStatus: selectValue(string(status))},
	}
	var updated page
	if err := r.client.doJSON(ctx, http.MethodPatch, "/pages/"+id, nil, payload, &updated); err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("update prospect %s: %w", id, err)
	}
	return toRecord(updated), nil
}

func toRecord(p page) domain.ProspectRecord {
	platforms := make([]domain.Platform, 0)
	for _, name := range p.names(propPlatform) {
		platforms = append(platforms, domain.Platform(name))
	}
	return domain.ProspectRecord{
		ID: p.ID,
		ProspectCandidate: domain.ProspectCandidate{
			Name:            p.text(propName),
			WhyFit:          p.text(propWhyFit),
			Source:          domain.Source(p.text(propSource)),
			SourceReference: p.text(propSourceRef),
			Platforms:       platforms,
			ReachEstimate:   p.text(propReach),
			UpsideNotes:     p.text(propUpsideNotes),
			MatchScore:      p.number(propMatchScore),
			ProfileLink:     p.text(propLink),
		},
		Status:    domain.Status(p.textOr(propStatus, string(domain.StatusNew))),
		AddedBy:   domain.AddedBy(p.textOr(propAddedBy, string(domain.AddedByAI))),
		DateAdded: p.date(propDateAdded),
	}
}
