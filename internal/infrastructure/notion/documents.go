package notion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/pager"
	"TalentRadar/internal/ports"
	"TalentRadar/internal/scanner"
)

// layout maps a content database's property names onto document fields.
type layout struct {
	Title, Publisher, Summary, Date, URL string
	DefaultTitle, DefaultPublisher       string
}

var layouts = map[string]layout{
	"articles": {
		Title: "Title", Publisher: "Source", Summary: "Summary", Date: "Date", URL: "URL",
		DefaultTitle: "Untitled", DefaultPublisher: "Unknown",
	},
	"podcasts": {
		Title: "Episode", Publisher: "Podcast", Summary: "Summary", Date: "Date", URL: "URL",
		DefaultTitle: "Unknown Episode", DefaultPublisher: "Unknown Podcast",
	},
}

// layoutFor resolves the named preset and applies per-property overrides.
func layoutFor(req scanner.Request) layout {
	l, ok := layouts[req.Option("layout", "articles")]
	if !ok {
		l = layouts["articles"]
	}
	l.Title = req.Option("title", l.Title)
	l.Publisher = req.Option("publisher", l.Publisher)
	l.Summary = req.Option("summary", l.Summary)
	l.Date = req.Option("date", l.Date)
	l.URL = req.Option("url", l.URL)
	return l
}

// DocumentScanner reads dated content databases (articles, podcast episodes).
type DocumentScanner struct {
	fetcher *pager.Fetcher
	logger  *slog.Logger
}

var _ scanner.Scanner = (*DocumentScanner)(nil)

// NewDocumentScanner builds the scanner over a paged querier.
func NewDocumentScanner(querier ports.PageQuerier, logger *slog.Logger) *DocumentScanner {
	return &DocumentScanner{fetcher: pager.NewFetcher(querier, logger), logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *DocumentScanner) Name() string {
	return "notion"
}

// Scan returns every row dated on or after req.Since, newest first.
func (s *DocumentScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.SourceDocument, error) {
	l := layoutFor(req)

	raw, err := s.fetcher.FetchAll(ctx, pager.Query{
		Collection: req.Collection,
		Filter: map[string]any{
			"property": l.Date,
			"date":     map[string]string{"on_or_after": req.Since.UTC().Format(time.RFC3339)},
		},
		Sort:     []ports.SortKey{{Property: l.Date, Direction: "descending"}},
		PageSize: pager.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}

	pages, err := decodePages(raw)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", req.Collection, err)
	}

	docs := make([]domain.SourceDocument, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, domain.SourceDocument{
			ID:          p.ID,
			Category:    req.Category,
			Title:       p.textOr(l.Title, l.DefaultTitle),
			Publisher:   p.textOr(l.Publisher, l.DefaultPublisher),
			Summary:     p.text(l.Summary),
			URL:         p.text(l.URL),
			PublishedAt: p.date(l.Date),
		})
	}
	return docs, nil
}

// BlockBodyFetcher loads a document's body from its page blocks.
type BlockBodyFetcher struct {
	client *Client
}

var _ ports.BodyFetcher = (*BlockBodyFetcher)(nil)

// NewBlockBodyFetcher wraps a client.
func NewBlockBodyFetcher(client *Client) *BlockBodyFetcher {
	return &BlockBodyFetcher{client: client}
}

// FetchBody returns the page text of doc.
func (f *BlockBodyFetcher) FetchBody(ctx context.Context, doc domain.SourceDocument) (string, error) {
	return f.client.PageText(ctx, doc.ID)
}
