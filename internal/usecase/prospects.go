package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/extract"
	"TalentRadar/internal/ports"
)

// Prospects serves the registry read, manual add and triage operations.
type Prospects struct {
	registry         ports.Registry
	source           ports.ContentSource
	clients          ports.ClientDirectory
	window           time.Duration
	rejectDuplicates bool
	logger           *slog.Logger
	now              func() time.Time
}

// ProspectsDeps wires the registry service.
type ProspectsDeps struct {
	Registry ports.Registry
	Source   ports.ContentSource
	Clients  ports.ClientDirectory
	Window   time.Duration
	// RejectDuplicates makes AddManual refuse names already in the registry.
	RejectDuplicates bool
	Logger           *slog.Logger
	Now              func() time.Time
}

// NewProspects constructs the registry service.
func NewProspects(deps ProspectsDeps) *Prospects {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	window := deps.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Prospects{
		registry:         deps.Registry,
		source:           deps.Source,
		clients:          deps.Clients,
		window:           window,
		rejectDuplicates: deps.RejectDuplicates,
		logger:           logger,
		now:              now,
	}
}

// List returns every registry record.
func (s *Prospects) List(ctx context.Context) ([]domain.ProspectRecord, error) {
	records, err := s.registry.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", domain.Upstream(err))
	}
	return records, nil
}

// AddManual stores a hand-entered prospect. The candidate goes through the
// same cleaning as oracle output; source and author are forced to Manual.
func (s *Prospects) AddManual(ctx context.Context, candidate domain.ProspectCandidate) (domain.ProspectRecord, error) {
	if strings.TrimSpace(candidate.Name) == "" {
		return domain.ProspectRecord{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	cleaned := extract.Clean(candidate)
	cleaned.Source = domain.SourceManual

	if s.rejectDuplicates {
		existing, err := s.registry.ListAll(ctx)
		if err != nil {
			return domain.ProspectRecord{}, fmt.Errorf("registry snapshot: %w", domain.Upstream(err))
		}
		if len(extract.Dedupe([]domain.ProspectCandidate{cleaned}, extract.Names(existing))) == 0 {
			return domain.ProspectRecord{}, fmt.Errorf("%w: %s", domain.ErrDuplicate, cleaned.Name)
		}
	}

	rec, err := s.registry.Append(ctx, cleaned, domain.AddedByManual)
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("add prospect: %w", err)
	}
	s.logger.Info("manual prospect added", "id", rec.ID, "name", rec.Name)
	return rec, nil
}

// UpdateStatus moves a record to a new triage status.
func (s *Prospects) UpdateStatus(ctx context.Context, id, status string) (domain.ProspectRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ProspectRecord{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	next, ok := domain.ParseStatus(status)
	if !ok {
		return domain.ProspectRecord{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	rec, err := s.registry.UpdateStatus(ctx, id, next)
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("update status: %w", err)
	}
	return rec, nil
}

// Documents lists the content window the radar would read right now.
func (s *Prospects) Documents(ctx context.Context, window time.Duration) ([]domain.SourceDocument, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: content source", domain.ErrConfigurationMissing)
	}
	if window <= 0 {
		window = s.window
	}
	docs, err := s.source.FetchWindow(ctx, s.now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", domain.Upstream(err))
	}
	return docs, nil
}

// Clients lists the active client profiles.
func (s *Prospects) Clients(ctx context.Context) ([]domain.ClientProfile, error) {
	if s.clients == nil {
		return nil, fmt.Errorf("%w: client directory", domain.ErrConfigurationMissing)
	}
	clients, err := s.clients.Clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch clients: %w", domain.Upstream(err))
	}
	if clients == nil {
		clients = []domain.ClientProfile{}
	}
	return clients, nil
}
