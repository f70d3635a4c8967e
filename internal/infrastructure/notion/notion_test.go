package notion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
	"TalentRadar/internal/scanner"
)

func TestClientRequiresToken(t *testing.T) {
	t.Parallel()

	c := NewClient(config.NotionConfig{}, nil)
	_, err := c.PageText(context.Background(), "p1")
	assert.True(t, errors.Is(err, domain.ErrConfigurationMissing))
}

func TestClientClassifiesFailures(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, domain.ErrUpstreamUnavailable},
		{http.StatusTooManyRequests, domain.ErrUpstreamUnavailable},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusBadRequest, domain.ErrQueryRejected},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]any{"object": "error", "status": tc.status, "code": "x", "message": "y"})
		}))
		c := NewClient(config.NotionConfig{Token: "ntn_test", BaseURL: server.URL}, server.Client())

		_, err := NewQuerier(c).QueryPage(context.Background(), ports.PageRequest{Collection: "db"})
		assert.True(t, errors.Is(err, tc.want), "status %d: %v", tc.status, err)
		server.Close()
	}
}

func TestClientTransportFailureIsUpstream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c := NewClient(config.NotionConfig{Token: "ntn_test", BaseURL: server.URL}, nil)
	_, err := c.PageText(context.Background(), "p1")
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestQuerierErrorObjectIsRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"object": "error", "status": 400, "code": "validation_error", "message": "bad sort"})
	}))
	defer server.Close()

	c := NewClient(config.NotionConfig{Token: "ntn_test", BaseURL: server.URL}, server.Client())
	_, err := NewQuerier(c).QueryPage(context.Background(), ports.PageRequest{Collection: "db"})

	var rejected *domain.QueryRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "validation_error", rejected.Code)
}

func TestThrottleSpacesRequests(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	c := NewClient(config.NotionConfig{Token: "ntn_test", BaseURL: f.server.URL, MinRequestGap: 40 * time.Millisecond}, f.server.Client())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.PageText(context.Background(), "p1")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestPageTextWalksAllBlocks(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addParagraphs("p1", "one", "", "two", "three")

	got, err := f.client().PageText(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", got)
}

func TestDocumentScannerArticles(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	for i, name := range []string{"Variety", "Deadline", "THR"} {
		f.addRow("articles", "a"+string(rune('1'+i)), map[string]any{
			"Source":  propTitle(name),
			"Title":   propText("Story " + name),
			"Summary": propText("Summary " + name),
			"Date":    propDate("2026-03-01T10:00:00.000Z"),
			"URL":     map[string]any{"url": "https://example.com/" + name},
		})
	}
	f.addRow("articles", "a4", map[string]any{})

	s := NewDocumentScanner(NewQuerier(f.client()), nil)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	docs, err := s.Scan(context.Background(), scanner.Request{
		Since:      since,
		Collection: "articles",
		Category:   "ARTICLE",
		Options:    map[string]string{"layout": "articles"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, domain.SourceDocument{
		ID:          "a1",
		Category:    "ARTICLE",
		Title:       "Story Variety",
		Publisher:   "Variety",
		Summary:     "Summary Variety",
		URL:         "https://example.com/Variety",
		PublishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, docs[0])
	assert.Equal(t, "Untitled", docs[3].Title)
	assert.Equal(t, "Unknown", docs[3].Publisher)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), docs[3].PublishedAt)

	require.NotEmpty(t, f.queries)
	filter := f.queries[0]["filter"].(map[string]any)
	assert.Equal(t, "Date", filter["property"])
	assert.Equal(t, map[string]any{"on_or_after": "2026-03-01T00:00:00Z"}, filter["date"])
	assert.Equal(t, float64(100), f.queries[0]["page_size"])
}

func TestDocumentScannerPodcastsSortFallback(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.rejectSort["pods"] = true
	f.addRow("pods", "e1", map[string]any{
		"Podcast": propTitle("The Town"),
		"Episode": propText("Breakouts of the year"),
		"Date":    propDate("2026-03-01"),
	})

	docs, err := NewDocumentScanner(NewQuerier(f.client()), nil).Scan(context.Background(), scanner.Request{
		Collection: "pods",
		Category:   "PODCAST",
		Options:    map[string]string{"layout": "podcasts"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Breakouts of the year", docs[0].Title)
	assert.Equal(t, "The Town", docs[0].Publisher)
	assert.Len(t, f.queries, 2)
}

func TestBlockBodyFetcher(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addParagraphs("a1", "Full transcript line.")

	body, err := NewBlockBodyFetcher(f.client()).FetchBody(context.Background(), domain.SourceDocument{ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "Full transcript line.", body)
}

func TestProfileSourceSlicesAndCaches(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addParagraphs("profile", strings.Repeat("x", MaxProfileLength+50))

	src := NewProfileSource(f.client(), "profile", "fallback", time.Minute, nil)
	got, err := src.Profile(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, MaxProfileLength)

	f.mu.Lock()
	f.blocks["profile"] = nil
	f.mu.Unlock()

	again, err := src.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestProfileSourceFallsBack(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.failBlocks["profile"] = http.StatusInternalServerError

	got, err := NewProfileSource(f.client(), "profile", "Inline profile", 0, nil).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Inline profile", got)

	got, err = NewProfileSource(f.client(), "", "Inline profile", 0, nil).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Inline profile", got)
}

func TestClientSourceLookalikes(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addRow("clients", "c1", map[string]any{
		"Name":              propTitle("Ava Stone"),
		"Handle":            propText("@ava"),
		"Brand Affinity":    propText("Nike"),
		"Similar Audiences": propText("Gen Z film fans"),
		"Status":            propSelect("Active"),
	})
	f.addRow("clients", "c2", map[string]any{"Name": propTitle("Ben Ray"), "Status": propSelect("Active")})
	f.addParagraphs("c1", "Actor and writer.")
	f.failBlocks["c2"] = http.StatusBadGateway

	refs, err := NewClientSource(f.client(), "clients", 2, nil).Lookalikes(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.EntityRef{
		Name:             "Ava Stone",
		Handle:           "@ava",
		BrandAffinity:    "Nike",
		SimilarAudiences: "Gen Z film fans",
		Notes:            "Actor and writer.",
	}, refs[0])
	assert.Equal(t, "Ben Ray", refs[1].Name)
	assert.Empty(t, refs[1].Notes)

	filter := f.queries[0]["filter"].(map[string]any)
	assert.Equal(t, "Status", filter["property"])
	assert.Equal(t, []any{map[string]any{"property": "Name", "direction": "ascending"}}, f.queries[0]["sorts"])
}

func TestClientSourceClients(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addRow("clients", "c1", map[string]any{
		"Name":                   propTitle("Ava Stone"),
		"Platform":               map[string]any{"multi_select": []any{map[string]any{"name": "TikTok"}, map[string]any{"name": "YouTube"}}},
		"Followers":              propText("1.2M"),
		"Engagement Rate":        propText("4.8%"),
		"Audience Gender Split":  propText("70% F / 30% M"),
		"Top Audience Locations": propText("Atlanta, Los Angeles"),
		"Report Last Updated":    propDate("2026-09-30"),
		"Status":                 propSelect("Active"),
	})
	f.addRow("clients", "c2", map[string]any{"Status": propSelect("Active")})
	f.addParagraphs("c1", "Actor and writer.")

	clients, err := NewClientSource(f.client(), "clients", 0, nil).Clients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)

	ava := clients[0]
	assert.Equal(t, "c1", ava.ID)
	assert.Equal(t, []string{"TikTok", "YouTube"}, ava.Platform)
	assert.Equal(t, "1.2M", ava.Followers)
	assert.Equal(t, "4.8%", ava.EngagementRate)
	assert.Equal(t, "70% F / 30% M", ava.AudienceGender)
	assert.Equal(t, "Atlanta, Los Angeles", ava.TopLocations)
	assert.Equal(t, "Actor and writer.", ava.PageContent)
	require.NotNil(t, ava.ReportUpdated)
	assert.Equal(t, "2026-09-30", ava.ReportUpdated.Format("2006-01-02"))

	assert.Equal(t, "Unknown", clients[1].Name)
	assert.Nil(t, clients[1].ReportUpdated)
	assert.Empty(t, clients[1].Platform)

	none, err := NewClientSource(f.client(), "", 0, nil).Clients(context.Background())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRegistryAppendListAndStatus(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	f.addRow("radar", "existing", map[string]any{
		"Name":   propTitle("Jane Doe"),
		"Status": propSelect("Reviewed"),
	})

	reg := NewRegistry(f.client(), "radar", nil)
	reg.now = func() time.Time { return time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC) }

	rec, err := reg.Append(context.Background(), domain.ProspectCandidate{
		Name:        "John Roe",
		WhyFit:      "Writes and stars in his own series.",
		Source:      domain.SourcePodcast,
		Platforms:   []domain.Platform{domain.PlatformTikTok, domain.PlatformFilmTV},
		MatchScore:  8,
		ProfileLink: "https://tiktok.com/@johnroe",
	}, domain.AddedByAI)
	require.NoError(t, err)
	assert.Equal(t, "page-1", rec.ID)
	assert.Equal(t, "John Roe", rec.Name)
	assert.Equal(t, domain.StatusNew, rec.Status)
	assert.Equal(t, domain.AddedByAI, rec.AddedBy)
	assert.Equal(t, 8.0, rec.MatchScore)
	assert.Equal(t, []domain.Platform{domain.PlatformTikTok, domain.PlatformFilmTV}, rec.Platforms)
	assert.Equal(t, "2026-03-02", rec.DateAdded.Format(dateLayout))

	all, err := reg.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Jane Doe", all[0].Name)
	assert.Equal(t, domain.StatusReviewed, all[0].Status)
	assert.Equal(t, domain.AddedByAI, all[0].AddedBy)

	updated, err := reg.UpdateStatus(context.Background(), rec.ID, domain.StatusOutreachSent)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOutreachSent, updated.Status)

	_, err = reg.UpdateStatus(context.Background(), "existing", domain.StatusSigned)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = reg.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRegistryWritesUnscoredAsEmptyNumber(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	reg := NewRegistry(f.client(), "radar", nil)

	rec, err := reg.Append(context.Background(), domain.ProspectCandidate{Name: "Kai", Source: domain.SourceManual}, domain.AddedByManual)
	require.NoError(t, err)
	assert.False(t, rec.Scored())

	score := f.findRow(rec.ID)["properties"].(map[string]any)["Match Score"].(map[string]any)
	v, present := score["number"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestRegistryRequiresDatabase(t *testing.T) {
	t.Parallel()

	f := newFakeNotion(t)
	_, err := NewRegistry(f.client(), "", nil).ListAll(context.Background())
	assert.True(t, errors.Is(err, domain.ErrConfigurationMissing))
}
