package extract

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TalentRadar/internal/domain"
)

func allowedPlatform(p domain.Platform) bool {
	for _, allowed := range domain.Platforms {
		if p == allowed {
			return true
		}
	}
	return false
}

func allowedSource(s domain.Source) bool {
	for _, allowed := range domain.Sources {
		if s == allowed {
			return true
		}
	}
	return false
}

func assertWithinSchema(t *testing.T, c domain.ProspectCandidate) {
	t.Helper()

	for _, p := range c.Platforms {
		assert.True(t, allowedPlatform(p), "platform %q", p)
	}
	assert.True(t, allowedSource(c.Source), "source %q", c.Source)
	for _, text := range []string{c.Name, c.WhyFit, c.SourceReference, c.ReachEstimate, c.UpsideNotes, c.ProfileLink} {
		assert.LessOrEqual(t, len([]rune(text)), MaxTextLength)
	}
	assert.False(t, math.IsNaN(c.MatchScore))
	assert.GreaterOrEqual(t, c.MatchScore, 1.0)
	assert.LessOrEqual(t, c.MatchScore, 10.0)
}

func TestSanitizeIsTotal(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("é", 5000)
	inputs := []domain.RawCandidate{
		nil,
		{},
		{"name": 42, "platform": "nonsense", "source": 7, "matchScore": "high"},
		{"name": huge, "whyFit": huge, "upsideNotes": huge, "followersReach": huge, "sourceArticle": huge, "link": huge},
		{"platform": []any{1, nil, map[string]any{"a": 1}}, "matchScore": math.Inf(1)},
		{"name": []any{"x"}, "matchScore": json.Number("nope"), "link": "javascript:alert(1)"},
	}

	for _, in := range inputs {
		got := Sanitize(in)
		assertWithinSchema(t, got)
	}
}

func TestSanitizeEmptyObjectDefaults(t *testing.T) {
	t.Parallel()

	got := Sanitize(domain.RawCandidate{})
	assert.Equal(t, "", got.Name)
	assert.Equal(t, "Unnamed prospect", got.DisplayName())
	assert.Equal(t, domain.DefaultSource, got.Source)
	assert.Equal(t, DefaultMatchScore, got.MatchScore)
	assert.NotNil(t, got.Platforms)
	assert.Empty(t, got.Platforms)
}

func TestSanitizeMapsFields(t *testing.T) {
	t.Parallel()

	var raw domain.RawCandidate
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "  Jane Doe ",
		"whyFit": "Actor-writer with her own web series",
		"source": "client lookalike",
		"sourceArticle": "Variety: Breakouts to watch",
		"platform": ["tiktok", "Netflix series", "TikTok creator", "Snapchat", "YouTube Shorts"],
		"followersReach": "1.2M",
		"upsideNotes": "Just signed a first-look deal",
		"matchScore": 8.5,
		"link": "https://www.tiktok.com/@janedoe"
	}`), &raw))

	got := Sanitize(raw)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, domain.SourceClientLookalike, got.Source)
	assert.Equal(t, "Variety: Breakouts to watch", got.SourceReference)
	assert.Equal(t, []domain.Platform{domain.PlatformTikTok, domain.PlatformFilmTV, domain.PlatformYouTube}, got.Platforms)
	assert.Equal(t, "1.2M", got.ReachEstimate)
	assert.Equal(t, 8.5, got.MatchScore)
	assert.Equal(t, "https://www.tiktok.com/@janedoe", got.ProfileLink)
}

func TestNormalizePlatformKeywords(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Platform{
		"TIKTOK":          domain.PlatformTikTok,
		"instagram reels": domain.PlatformInstagram,
		"film":            domain.PlatformFilmTV,
		"TV":              domain.PlatformFilmTV,
		"streaming":       domain.PlatformFilmTV,
		"Spotify":         domain.PlatformMusic,
		"YouTube":         domain.PlatformYouTube,
	}
	for in, want := range cases {
		assert.Equal(t, []domain.Platform{want}, NormalizePlatforms(in), in)
	}

	assert.Equal(t, []domain.Platform{domain.PlatformInstagram, domain.PlatformMusic}, NormalizePlatforms("Instagram, music"))
}

func TestNormalizeSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.SourcePodcast, NormalizeSource("PODCAST"))
	assert.Equal(t, domain.SourceClientLookalike, NormalizeSource("Client-Lookalike"))
	assert.Equal(t, domain.SourceManual, NormalizeSource("manual"))
	assert.Equal(t, domain.DefaultSource, NormalizeSource("newsletter"))
	assert.Equal(t, domain.DefaultSource, NormalizeSource(""))
}

func TestNormalizeScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7.0, NormalizeScore(7.0))
	assert.Equal(t, 6.0, NormalizeScore("6"))
	assert.Equal(t, 10.0, NormalizeScore(42))
	assert.Equal(t, 1.0, NormalizeScore(-3.0))
	assert.Equal(t, DefaultMatchScore, NormalizeScore(nil))
	assert.Equal(t, DefaultMatchScore, NormalizeScore("eight"))
	assert.Equal(t, DefaultMatchScore, NormalizeScore(math.NaN()))
}

func TestNormalizeLink(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://youtube.com/@x", NormalizeLink(" https://youtube.com/@x "))
	assert.Equal(t, "", NormalizeLink("null"))
	assert.Equal(t, "", NormalizeLink("@handle"))
	assert.Equal(t, "", NormalizeLink("ftp://example.com/file"))
}

func TestCleanManualCandidate(t *testing.T) {
	t.Parallel()

	got := Clean(domain.ProspectCandidate{
		Name:      "  Kai ",
		Source:    domain.SourceManual,
		Platforms: []domain.Platform{"Film/TV", "Music", "film/tv", "MySpace"},
	})
	assert.Equal(t, "Kai", got.Name)
	assert.Equal(t, domain.SourceManual, got.Source)
	assert.Equal(t, []domain.Platform{domain.PlatformFilmTV, domain.PlatformMusic}, got.Platforms)
	assert.Zero(t, got.MatchScore)
	assert.False(t, got.Scored())
}

func TestCleanClampsManualScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.0, Clean(domain.ProspectCandidate{Name: "A", MatchScore: 42}).MatchScore)
	assert.Equal(t, 1.0, Clean(domain.ProspectCandidate{Name: "A", MatchScore: -3}).MatchScore)
	assert.Equal(t, 7.5, Clean(domain.ProspectCandidate{Name: "A", MatchScore: 7.5}).MatchScore)
}
