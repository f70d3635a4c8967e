package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/extract"
	"TalentRadar/internal/ports"
)

// RunLockKey guards the read-dedupe-append sequence across processes.
const RunLockKey = "talentradar:run"

// Extractor turns an assembled context block into raw oracle text.
type Extractor interface {
	Ready() error
	Extract(ctx context.Context, contextBlock string, vars extract.RubricVars) (string, error)
}

// PipelineSettings tune one radar run.
type PipelineSettings struct {
	Window            time.Duration
	PerItemCharCap    int
	MaxDocuments      int
	MinMatchScore     int
	DropBelowMinScore bool
	MinCandidates     int
	MaxCandidates     int
	EnrichConcurrency int
	AppendConcurrency int
	UseLookalikes     bool
}

// PipelineDeps wires all driven adapters into the radar pipeline.
type PipelineDeps struct {
	Registry   ports.Registry
	Source     ports.ContentSource
	Profile    ports.ProfileSource
	Lookalikes ports.LookalikeSource
	Enricher   ports.BodyFetcher
	Extractor  Extractor
	Locker     ports.RunLocker
	Notifier   ports.Notifier
	Logger     *slog.Logger
	Settings   PipelineSettings
	Now        func() time.Time
}

// RunRequest carries per-run inputs. Supplied seeds replace the lookalike source.
type RunRequest struct {
	LookalikeSeeds []domain.EntityRef
	Window         time.Duration
}

// RunResult is the registry after the run plus what this run changed.
type RunResult struct {
	Records    []domain.ProspectRecord
	Added      []domain.ProspectRecord
	NewlyAdded int
	Attempted  int
	Failed     int
	Documents  int
}

// Pipeline implements the extract, validate, dedupe and persist workflow.
type Pipeline struct {
	registry   ports.Registry
	source     ports.ContentSource
	profile    ports.ProfileSource
	lookalikes ports.LookalikeSource
	enricher   ports.BodyFetcher
	extractor  Extractor
	locker     ports.RunLocker
	notifier   ports.Notifier
	logger     *slog.Logger
	settings   PipelineSettings
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	settings := deps.Settings
	if settings.Window <= 0 {
		settings.Window = 24 * time.Hour
	}
	if settings.PerItemCharCap <= 0 {
		settings.PerItemCharCap = extract.DefaultPerItemCharCap
	}
	return &Pipeline{
		registry:   deps.Registry,
		source:     deps.Source,
		profile:    deps.Profile,
		lookalikes: deps.Lookalikes,
		enricher:   deps.Enricher,
		extractor:  deps.Extractor,
		locker:     deps.Locker,
		notifier:   deps.Notifier,
		logger:     logger,
		settings:   settings,
		now:        now,
	}
}

// Run executes one radar pass. Errors surface as domain.ErrConfigurationMissing,
// domain.ErrUpstreamUnavailable, domain.ErrNoStructuredOutput, or
// domain.ErrRunInProgress when a run lock is configured.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if p.extractor == nil {
		return RunResult{}, fmt.Errorf("%w: extractor", domain.ErrConfigurationMissing)
	}
	if err := p.extractor.Ready(); err != nil {
		return RunResult{}, err
	}
	if p.registry == nil || p.source == nil {
		return RunResult{}, fmt.Errorf("%w: registry or content source", domain.ErrConfigurationMissing)
	}

	if p.locker != nil {
		release, err := p.locker.Acquire(ctx, RunLockKey)
		if err != nil {
			return RunResult{}, err
		}
		defer release()
	}

	window := p.settings.Window
	if req.Window > 0 {
		window = req.Window
	}
	since := p.now().Add(-window)

	existing, docs, profile, seeds, err := p.gather(ctx, since, req.LookalikeSeeds)
	if err != nil {
		return RunResult{}, err
	}

	if limit := p.settings.MaxDocuments; limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	p.enrich(ctx, docs)

	raw, err := p.extractor.Extract(ctx, extract.Assemble(docs, p.settings.PerItemCharCap), extract.RubricVars{
		Profile:       profile,
		Lookalikes:    extract.FormatLookalikes(seeds, p.settings.PerItemCharCap),
		Window:        formatWindow(window),
		MinScore:      p.settings.MinMatchScore,
		MinCandidates: p.settings.MinCandidates,
		MaxCandidates: p.settings.MaxCandidates,
	})
	if err != nil {
		return RunResult{}, err
	}

	parsed, err := extract.ParseArray(raw)
	if err != nil {
		return RunResult{}, err
	}
	candidates := p.threshold(extract.SanitizeAll(parsed))
	fresh := extract.Dedupe(candidates, extract.Names(existing))

	added, failed := p.appendAll(ctx, fresh)

	records, err := p.registry.ListAll(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("registry re-read: %w", domain.Upstream(err))
	}

	result := RunResult{
		Records:    records,
		Added:      added,
		NewlyAdded: len(added),
		Attempted:  len(fresh),
		Failed:     failed,
		Documents:  len(docs),
	}
	p.logger.Info("radar run finished",
		"documents", result.Documents,
		"candidates", len(parsed),
		"fresh", result.Attempted,
		"added", result.NewlyAdded,
		"failed", result.Failed,
		"registry", len(records))

	p.notify(ctx, added)
	return result, nil
}

// gather reads the registry snapshot, the content window, the profile and
// the lookalike seeds concurrently.
func (p *Pipeline) gather(ctx context.Context, since time.Time, supplied []domain.EntityRef) (
	existing []domain.ProspectRecord, docs []domain.SourceDocument, profile string, seeds []domain.EntityRef, err error,
) {
	seeds = supplied
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := p.registry.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("registry snapshot: %w", domain.Upstream(err))
		}
		existing = records
		return nil
	})
	g.Go(func() error {
		fetched, err := p.source.FetchWindow(gctx, since)
		if err != nil {
			return fmt.Errorf("fetch content: %w", domain.Upstream(err))
		}
		docs = fetched
		return nil
	})
	if p.profile != nil {
		g.Go(func() error {
			text, err := p.profile.Profile(gctx)
			if err != nil {
				p.logger.Warn("profile unavailable", "error", err)
				return nil
			}
			profile = text
			return nil
		})
	}
	if supplied == nil && p.settings.UseLookalikes && p.lookalikes != nil {
		g.Go(func() error {
			refs, err := p.lookalikes.Lookalikes(gctx)
			if err != nil {
				p.logger.Warn("lookalike seeds unavailable", "error", err)
				return nil
			}
			seeds = refs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, "", nil, err
	}
	return existing, docs, profile, seeds, nil
}

// enrich fills missing bodies in place. Failures leave the summary in use.
func (p *Pipeline) enrich(ctx context.Context, docs []domain.SourceDocument) {
	if p.enricher == nil {
		return
	}
	var g errgroup.Group
	if n := p.settings.EnrichConcurrency; n > 0 {
		g.SetLimit(n)
	}
	for i := range docs {
		if strings.TrimSpace(docs[i].Body) != "" {
			continue
		}
		g.Go(func() error {
			body, err := p.enricher.FetchBody(ctx, docs[i])
			if err != nil {
				p.logger.Warn("document enrichment failed", "document", docs[i].ID, "error", err)
				return nil
			}
			docs[i].Body = body
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) threshold(candidates []domain.ProspectCandidate) []domain.ProspectCandidate {
	floor := float64(p.settings.MinMatchScore)
	if !p.settings.DropBelowMinScore || floor <= 0 {
		return candidates
	}
	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.MatchScore >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

// appendAll writes every candidate concurrently. One failed write never
// cancels the others; failures are logged and counted.
func (p *Pipeline) appendAll(ctx context.Context, candidates []domain.ProspectCandidate) ([]domain.ProspectRecord, int) {
	type outcome struct {
		record domain.ProspectRecord
		err    error
	}
	outcomes := make([]outcome, len(candidates))

	var g errgroup.Group
	if n := p.settings.AppendConcurrency; n > 0 {
		g.SetLimit(n)
	}
	for i, c := range candidates {
		g.Go(func() error {
			rec, err := p.registry.Append(ctx, c, domain.AddedByAI)
			outcomes[i] = outcome{record: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	added := make([]domain.ProspectRecord, 0, len(candidates))
	failed := 0
	for i, o := range outcomes {
		if o.err != nil {
			failed++
			p.logger.Warn("append prospect failed", "name", candidates[i].DisplayName(), "error", o.err)
			continue
		}
		added = append(added, o.record)
	}
	return added, failed
}

func (p *Pipeline) notify(ctx context.Context, added []domain.ProspectRecord) {
	if p.notifier == nil || len(added) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(added)); err != nil {
		p.logger.Warn("publish digest failed", "error", err)
	}
}

// markdownEscaper escapes the characters Telegram's legacy Markdown treats as
// entity delimiters, so names and links are sent as plain text.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func buildDigestMessage(added []domain.ProspectRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Talent Radar: %d new prospect(s)*\n", len(added))
	for _, rec := range added {
		fmt.Fprintf(&b, "- %s (%.1f)", markdownEscaper.Replace(rec.DisplayName()), rec.MatchScore)
		if len(rec.Platforms) > 0 {
			platforms := make([]string, 0, len(rec.Platforms))
			for _, pl := range rec.Platforms {
				platforms = append(platforms, string(pl))
			}
			fmt.Fprintf(&b, " %s", markdownEscaper.Replace(strings.Join(platforms, ", ")))
		}
		if rec.ProfileLink != "" {
			fmt.Fprintf(&b, "\n  %s", markdownEscaper.Replace(rec.ProfileLink))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}
