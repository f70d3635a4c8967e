package ports

import (
	"context"
	"encoding/json"
	"time"

	"TalentRadar/internal/domain"
)

// SortKey orders a paged query.
type SortKey struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// PageRequest is a single request against a paged remote collection.
type PageRequest struct {
	Collection  string
	Filter      map[string]any
	Sorts       []SortKey
	PageSize    int
	StartCursor string
}

// Page is one page of results. A nil Results slice means the service
// returned no result set at all, which differs from an empty page.
type Page struct {
	Results    []json.RawMessage
	HasMore    bool
	NextCursor string
}

// PageQuerier is the black-box paged fetch API of the content store.
// Service-level refusals are returned as *domain.QueryRejectedError.
type PageQuerier interface {
	QueryPage(ctx context.Context, req PageRequest) (Page, error)
}

// ContentSource pulls every document published inside a time window.
type ContentSource interface {
	FetchWindow(ctx context.Context, since time.Time) ([]domain.SourceDocument, error)
}

// BodyFetcher loads the extended body of a single document.
type BodyFetcher interface {
	FetchBody(ctx context.Context, doc domain.SourceDocument) (string, error)
}

// ProfileSource returns the scoring profile injected into the rubric.
type ProfileSource interface {
	Profile(ctx context.Context) (string, error)
}

// LookalikeSource returns existing clients to use as lookalike seeds.
type LookalikeSource interface {
	Lookalikes(ctx context.Context) ([]domain.EntityRef, error)
}

// ClientDirectory lists active client profiles in full.
type ClientDirectory interface {
	Clients(ctx context.Context) ([]domain.ClientProfile, error)
}

// Oracle is the untrusted text-in/text-out generative model.
type Oracle interface {
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
	Name() string
}

// CompletionOpts configures one oracle call.
type CompletionOpts struct {
	MaxTokens   int
	Temperature float64
	System      string
}

// Registry persists accepted prospects.
type Registry interface {
	ListAll(ctx context.Context) ([]domain.ProspectRecord, error)
	Append(ctx context.Context, candidate domain.ProspectCandidate, addedBy domain.AddedBy) (domain.ProspectRecord, error)
	Get(ctx context.Context, id string) (domain.ProspectRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.ProspectRecord, error)
}

// RunLocker guards the read-dedupe-append sequence across processes.
type RunLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
