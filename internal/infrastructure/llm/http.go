package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"TalentRadar/internal/domain"
)

const errorBodyLimit = 1024

// postJSON sends payload and decodes a 2xx answer into out. Transport
// failures and non-2xx statuses are upstream failures.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.Upstream(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return domain.Upstream(fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Upstream(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
