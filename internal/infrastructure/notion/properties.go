package notion

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"TalentRadar/internal/domain"
)

const dateLayout = "2006-01-02"

// page is a database row as returned by query and page endpoints.
type page struct {
	Object      string              `json:"object"`
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	URL         string              `json:"url"`
	Properties  map[string]property `json:"properties"`
}

type property struct {
	Type        string      `json:"type"`
	Title       []richText  `json:"title,omitempty"`
	RichText    []richText  `json:"rich_text,omitempty"`
	Select      *selectOpt  `json:"select,omitempty"`
	MultiSelect []selectOpt `json:"multi_select,omitempty"`
	Number      *float64    `json:"number,omitempty"`
	URL         *string     `json:"url,omitempty"`
	Date        *dateValue  `json:"date,omitempty"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectOpt struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

func decodePages(raw []json.RawMessage) ([]page, error) {
	pages := make([]page, 0, len(raw))
	for i, r := range raw {
		var p page
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("decode page %d: %w", i, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func joinRichText(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// text reads title, rich_text, select and url properties as plain text.
func (p page) text(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	switch {
	case len(prop.Title) > 0:
		return joinRichText(prop.Title)
	case len(prop.RichText) > 0:
		return joinRichText(prop.RichText)
	case prop.Select != nil:
		return strings.TrimSpace(prop.Select.Name)
	case prop.URL != nil:
		return strings.TrimSpace(*prop.URL)
	}
	return ""
}

func (p page) textOr(name, def string) string {
	if v := p.text(name); v != "" {
		return v
	}
	return def
}

func (p page) names(name string) []string {
	prop := p.Properties[name]
	out := make([]string, 0, len(prop.MultiSelect))
	for _, opt := range prop.MultiSelect {
		if v := strings.TrimSpace(opt.Name); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p page) number(name string) float64 {
	if prop, ok := p.Properties[name]; ok && prop.Number != nil {
		return *prop.Number
	}
	return 0
}

// date parses a date property start, falling back to the page creation time.
func (p page) date(name string) time.Time {
	if t, ok := p.dateValue(name); ok {
		return t
	}
	return p.CreatedTime
}

func (p page) dateValue(name string) (time.Time, bool) {
	prop, ok := p.Properties[name]
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, prop.Date.Start); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, prop.Date.Start); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Property value builders for page create and update.

func titleValue(s string) map[string]any {
	return map[string]any{"title": []map[string]any{textContent(s)}}
}

func richTextValue(s string) map[string]any {
	if s == "" {
		return map[string]any{"rich_text": []map[string]any{}}
	}
	return map[string]any{"rich_text": []map[string]any{textContent(s)}}
}

func textContent(s string) map[string]any {
	return map[string]any{"text": map[string]string{"content": s}}
}

func selectValue(name string) map[string]any {
	return map[string]any{"select": map[string]string{"name": name}}
}

func multiSelectValue(names []string) map[string]any {
	opts := make([]map[string]string, 0, len(names))
	for _, n := range names {
		opts = append(opts, map[string]string{"name": n})
	}
	return map[string]any{"multi_select": opts}
}

func urlValue(s string) map[string]any {
	if s == "" {
		return map[string]any{"url": nil}
	}
	return map[string]any{"url": s}
}

func numberValue(f float64) map[string]any {
	return map[string]any{"number": f}
}

// scoreValue writes an unscored candidate as an empty number.
func scoreValue(c domain.ProspectCandidate) map[string]any {
	if !c.Scored() {
		return map[string]any{"number": nil}
	}
	return numberValue(c.MatchScore)
}

func dateValueOf(t time.Time) map[string]any {
	return map[string]any{"date": map[string]string{"start": t.Format(dateLayout)}}
}
