package notion

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"TalentRadar/internal/config"
)

// fakeNotion is an in-memory subset of the Notion API.
type fakeNotion struct {
	t *testing.T

	mu         sync.Mutex
	rows       map[string][]map[string]any
	blocks     map[string][]map[string]any
	failBlocks map[string]int
	rejectSort map[string]bool
	queries    []map[string]any
	created    int
	server     *httptest.Server
}

func newFakeNotion(t *testing.T) *fakeNotion {
	t.Helper()
	f := &fakeNotion{
		t:          t,
		rows:       map[string][]map[string]any{},
		blocks:     map[string][]map[string]any{},
		failBlocks: map[string]int{},
		rejectSort: map[string]bool{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeNotion) client() *Client {
	return NewClient(config.NotionConfig{Token: "ntn_test", BaseURL: f.server.URL}, f.server.Client())
}

func (f *fakeNotion) addRow(db, id string, props map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[db] = append(f.rows[db], map[string]any{
		"object":       "page",
		"id":           id,
		"created_time": "2026-03-01T08:00:00.000Z",
		"properties":   readProperties(props),
	})
}

func (f *fakeNotion) addParagraphs(pageID string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range lines {
		f.blocks[pageID] = append(f.blocks[pageID], map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []map[string]any{{"plain_text": line}},
			},
		})
	}
}

func (f *fakeNotion) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer ntn_test" || r.Header.Get("Notion-Version") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"object": "error", "status": 401, "code": "unauthorized", "message": "bad token"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "databases" && parts[2] == "query" && r.Method == http.MethodPost:
		f.query(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "blocks" && parts[2] == "children" && r.Method == http.MethodGet:
		f.children(w, r, parts[1])
	case len(parts) == 1 && parts[0] == "pages" && r.Method == http.MethodPost:
		f.createPage(w, r)
	case len(parts) == 2 && parts[0] == "pages" && r.Method == http.MethodGet:
		if row := f.findRow(parts[1]); row != nil {
			writeJSON(w, http.StatusOK, row)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"object": "error", "status": 404, "code": "object_not_found", "message": "no page"})
	case len(parts) == 2 && parts[0] == "pages" && r.Method == http.MethodPatch:
		f.patchPage(w, r, parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeNotion) query(w http.ResponseWriter, r *http.Request, db string) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("decode query: %v", err)
	}
	f.queries = append(f.queries, body)

	if _, sorted := body["sorts"]; sorted && f.rejectSort[db] {
		writeJSON(w, http.StatusBadRequest, map[string]any{"object": "error", "status": 400, "code": "validation_error", "message": "Could not find sort property"})
		return
	}

	size := 100
	if v, ok := body["page_size"].(float64); ok {
		size = int(v)
	}
	start := 0
	if c, ok := body["start_cursor"].(string); ok {
		start, _ = strconv.Atoi(c)
	}
	rows := f.rows[db]
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	results := append([]map[string]any{}, rows[start:end]...)
	resp := map[string]any{"object": "list", "results": results, "has_more": end < len(rows), "next_cursor": nil}
	if end < len(rows) {
		resp["next_cursor"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeNotion) children(w http.ResponseWriter, r *http.Request, pageID string) {
	if status, ok := f.failBlocks[pageID]; ok {
		writeJSON(w, status, map[string]any{"object": "error", "status": status, "code": "internal_server_error", "message": "boom"})
		return
	}
	blocks := f.blocks[pageID]
	start := 0
	if c := r.URL.Query().Get("start_cursor"); c != "" {
		start, _ = strconv.Atoi(c)
	}
	// Two blocks per page to exercise the cursor walk.
	end := start + 2
	if end > len(blocks) {
		end = len(blocks)
	}
	resp := map[string]any{"object": "list", "results": blocks[start:end], "has_more": end < len(blocks)}
	if end < len(blocks) {
		resp["next_cursor"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeNotion) createPage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Parent     map[string]string `json:"parent"`
		Properties map[string]any    `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("decode create: %v", err)
	}
	db := body.Parent["database_id"]
	f.created++
	row := map[string]any{
		"object":       "page",
		"id":           fmt.Sprintf("page-%d", f.created),
		"created_time": "2026-03-02T09:00:00.000Z",
		"properties":   readProperties(body.Properties),
	}
	f.rows[db] = append(f.rows[db], row)
	writeJSON(w, http.StatusOK, row)
}

func (f *fakeNotion) patchPage(w http.ResponseWriter, r *http.Request, id string) {
	row := f.findRow(id)
	if row == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"object": "error", "status": 404, "code": "object_not_found"})
		return
	}
	var body struct {
		Properties map[string]any `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("decode patch: %v", err)
	}
	props := row["properties"].(map[string]any)
	for k, v := range readProperties(body.Properties) {
		props[k] = v
	}
	writeJSON(w, http.StatusOK, row)
}

func (f *fakeNotion) findRow(id string) map[string]any {
	for _, rows := range f.rows {
		for _, row := range rows {
			if row["id"] == id {
				return row
			}
		}
	}
	return nil
}

// readProperties converts write-shaped property values into the read shape.
func readProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for name, raw := range props {
		var value map[string]any
		encoded, _ := json.Marshal(raw)
		_ = json.Unmarshal(encoded, &value)

		prop := map[string]any{}
		for kind, v := range value {
			prop["type"] = kind
			switch kind {
			case "title", "rich_text":
				items, _ := v.([]any)
				texts := make([]map[string]any, 0, len(items))
				for _, item := range items {
					m, _ := item.(map[string]any)
					if plain, ok := m["plain_text"]; ok {
						texts = append(texts, map[string]any{"plain_text": plain})
						continue
					}
					content, _ := m["text"].(map[string]any)
					texts = append(texts, map[string]any{"plain_text": content["content"]})
				}
				prop[kind] = texts
			default:
				prop[kind] = v
			}
		}
		out[name] = prop
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func propTitle(s string) map[string]any {
	return map[string]any{"title": []any{map[string]any{"plain_text": s}}}
}
func propText(s string) map[string]any {
	return map[string]any{"rich_text": []any{map[string]any{"plain_text": s}}}
}
func propDate(s string) map[string]any   { return map[string]any{"date": map[string]any{"start": s}} }
func propSelect(s string) map[string]any { return map[string]any{"select": map[string]any{"name": s}} }
