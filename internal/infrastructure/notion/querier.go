package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// Querier runs paged database queries.
type Querier struct {
	client *Client
}

var _ ports.PageQuerier = (*Querier)(nil)

// NewQuerier wraps a client.
func NewQuerier(client *Client) *Querier {
	return &Querier{client: client}
}

type queryResponse struct {
	Object     string            `json:"object"`
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor *string           `json:"next_cursor"`
	Status     int               `json:"status"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
}

// QueryPage fetches one page of a database query. An error object in a 2xx
// body is reported as a rejected query.
func (q *Querier) QueryPage(ctx context.Context, req ports.PageRequest) (ports.Page, error) {
	if req.Collection == "" {
		return ports.Page{}, fmt.Errorf("%w: database id", domain.ErrConfigurationMissing)
	}

	payload := map[string]any{}
	if req.PageSize > 0 {
		payload["page_size"] = req.PageSize
	}
	if len(req.Filter) > 0 {
		payload["filter"] = req.Filter
	}
	if len(req.Sorts) > 0 {
		payload["sorts"] = req.Sorts
	}
	if req.StartCursor != "" {
		payload["start_cursor"] = req.StartCursor
	}

	var resp queryResponse
	if err := q.client.doJSON(ctx, http.MethodPost, "/databases/"+req.Collection+"/query", nil, payload, &resp); err != nil {
		return ports.Page{}, err
	}
	if resp.Object == "error" {
		return ports.Page{}, &domain.QueryRejectedError{Status: resp.Status, Code: resp.Code, Message: resp.Message}
	}

	page := ports.Page{Results: resp.Results, HasMore: resp.HasMore}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	return page, nil
}
