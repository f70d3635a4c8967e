package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// contentSelectors are tried in order; the first non-empty match is the body.
var contentSelectors = []string{"article", "main", "[role=main]", "body"}

// PageFetcher loads a document's linked web page and extracts its readable text.
type PageFetcher struct {
	client *http.Client
}

var _ ports.BodyFetcher = (*PageFetcher)(nil)

// NewPageFetcher wires an HTTP client; nil gets a 20s default.
func NewPageFetcher(client *http.Client) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PageFetcher{client: client}
}

// FetchBody returns the page text behind doc.URL, or "" when the document has no link.
func (p *PageFetcher) FetchBody(ctx context.Context, doc domain.SourceDocument) (string, error) {
	if strings.TrimSpace(doc.URL) == "" {
		return "", nil
	}

	page, err := p.fetchDocument(ctx, doc.URL)
	if err != nil {
		return "", fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return extractText(page), nil
}

func (p *PageFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TalentRadar/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	for _, sel := range contentSelectors {
		var parts []string
		doc.Find(sel).First().Find("h1, h2, h3, p, li, blockquote").Each(func(_ int, s *goquery.Selection) {
			if text := collapseSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) == 0 {
			if text := collapseSpace(doc.Find(sel).First().Text()); text != "" {
				return text
			}
			continue
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
