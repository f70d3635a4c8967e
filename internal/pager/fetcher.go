// Package pager walks cursor-paginated collections to exhaustion.
package pager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// DefaultPageSize matches the content store's maximum page size.
const DefaultPageSize = 100

// Query describes a full collection walk.
type Query struct {
	Collection string
	Filter     map[string]any
	Sort       []ports.SortKey
	PageSize   int
}

// Fetcher retrieves every record matching a query, following continuation
// cursors until the service reports no further pages.
type Fetcher struct {
	querier ports.PageQuerier
	logger  *slog.Logger
}

// NewFetcher wraps a page querier.
func NewFetcher(querier ports.PageQuerier, logger *slog.Logger) *Fetcher {
	return &Fetcher{querier: querier, logger: logger}
}

// FetchAll walks the whole collection. When the sorted walk is rejected by the
// service, or a page comes back without a result set, the walk restarts once
// without sort. Only transport failures are returned.
func (f *Fetcher) FetchAll(ctx context.Context, q Query) ([]json.RawMessage, error) {
	if f.querier == nil {
		return nil, fmt.Errorf("page querier is not configured")
	}

	records, err := f.walk(ctx, q, q.Sort)
	if err == nil {
		return records, nil
	}
	if !isServiceRefusal(err) {
		return nil, err
	}

	f.warn("sorted query refused, retrying without sort", "collection", q.Collection, "error", err)
	records, err = f.walk(ctx, q, nil)
	if err == nil {
		return records, nil
	}
	if !isServiceRefusal(err) {
		return nil, err
	}

	f.warn("unsorted query refused, returning partial walk", "collection", q.Collection, "records", len(records), "error", err)
	return records, nil
}

var errNoResultSet = errors.New("no result set")

func isServiceRefusal(err error) bool {
	return errors.Is(err, domain.ErrQueryRejected) || errors.Is(err, errNoResultSet)
}

func (f *Fetcher) walk(ctx context.Context, q Query, sorts []ports.SortKey) ([]json.RawMessage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		all    []json.RawMessage
		cursor string
	)
	for {
		page, err := f.querier.QueryPage(ctx, ports.PageRequest{
			Collection:  q.Collection,
			Filter:      q.Filter,
			Sorts:       sorts,
			PageSize:    pageSize,
			StartCursor: cursor,
		})
		if err != nil {
			return all, fmt.Errorf("query %s: %w", q.Collection, err)
		}
		if page.Results == nil {
			return all, fmt.Errorf("query %s: %w", q.Collection, errNoResultSet)
		}
		all = append(all, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
