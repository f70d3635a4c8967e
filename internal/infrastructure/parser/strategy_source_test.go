package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/scanner"
)

type stubScanner struct {
	name     string
	requests []scanner.Request
	docs     map[string][]domain.SourceDocument
	err      error
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(_ context.Context, req scanner.Request) ([]domain.SourceDocument, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[req.Collection], nil
}

func TestStrategySourceAggregatesInOrder(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{name: "notion", docs: map[string][]domain.SourceDocument{
		"a": {{ID: "a1"}, {ID: "a2", Category: "REVIEW"}},
		"p": {{ID: "p1"}},
	}}
	reg := scanner.NewRegistry()
	reg.Register(stub)

	src := NewStrategySource(reg, []config.SourceConfig{
		{Name: "articles", Scanner: "notion", Collection: "a", Category: "ARTICLE"},
		{Name: "podcasts", Scanner: "notion", Collection: "p", Category: "PODCAST"},
	}, nil)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	docs, err := src.FetchWindow(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchWindow error: %v", err)
	}

	var got []string
	for _, d := range docs {
		got = append(got, d.ID+":"+d.Category)
	}
	want := []string{"a1:ARTICLE", "a2:REVIEW", "p1:PODCAST"}
	if len(got) != len(want) {
		t.Fatalf("unexpected documents: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected documents: %v", got)
		}
	}
	if !stub.requests[0].Since.Equal(since) {
		t.Fatalf("since not forwarded: %v", stub.requests[0].Since)
	}
}

func TestStrategySourceFailures(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&stubScanner{name: "notion", err: errors.New("boom")})

	_, err := NewStrategySource(reg, []config.SourceConfig{{Name: "x", Scanner: "rss", Collection: "c"}}, nil).
		FetchWindow(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected unknown scanner error")
	}

	_, err = NewStrategySource(reg, []config.SourceConfig{{Name: "x", Scanner: "notion"}}, nil).
		FetchWindow(context.Background(), time.Now())
	if !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing, got %v", err)
	}

	_, err = NewStrategySource(reg, []config.SourceConfig{{Name: "x", Scanner: "notion", Collection: "c"}}, nil).
		FetchWindow(context.Background(), time.Now())
	if err == nil || err.Error() != "scan source x: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}
