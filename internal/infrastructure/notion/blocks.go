package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

type blockChildrenResponse struct {
	Results    []map[string]json.RawMessage `json:"results"`
	HasMore    bool                         `json:"has_more"`
	NextCursor string                       `json:"next_cursor"`
}

type blockText struct {
	RichText []richText `json:"rich_text"`
}

// PageText returns the plain text of a page's top-level blocks, one block per line.
func (c *Client) PageText(ctx context.Context, pageID string) (string, error) {
	var lines []string
	nextCursor := ""
	for {
		query := url.Values{}
		query.Set("page_size", "100")
		if nextCursor != "" {
			query.Set("start_cursor", nextCursor)
		}

		var resp blockChildrenResponse
		if err := c.doJSON(ctx, http.MethodGet, "/blocks/"+pageID+"/children", query, nil, &resp); err != nil {
			return "", err
		}
		for _, block := range resp.Results {
			if line := blockLine(block); line != "" {
				lines = append(lines, line)
			}
		}
		if !resp.HasMore || strings.TrimSpace(resp.NextCursor) == "" {
			break
		}
		nextCursor = resp.NextCursor
	}
	return strings.Join(lines, "\n"), nil
}

// blockLine reads the rich text of any block type that carries one.
func blockLine(block map[string]json.RawMessage) string {
	var kind string
	if err := json.Unmarshal(block["type"], &kind); err != nil || kind == "" {
		return ""
	}
	raw, ok := block[kind]
	if !ok {
		return ""
	}
	var body blockText
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var b strings.Builder
	for _, rt := range body.RichText {
		b.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(b.String())
}
