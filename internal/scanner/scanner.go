package scanner

import (
	"context"
	"fmt"
	"time"

	"TalentRadar/internal/domain"
)

// Request carries all parameters required to scan one content collection.
type Request struct {
	Since      time.Time
	SiteName   string
	Collection string
	Category   string
	Options    map[string]string
}

// Option returns a request option or def when it is unset.
func (r Request) Option(key, def string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// Scanner captures a single strategy implementation (Notion database, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.SourceDocument, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
