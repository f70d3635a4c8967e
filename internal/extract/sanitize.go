package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"TalentRadar/internal/domain"
)

const (
	// MaxTextLength is the registry's rich-text limit per field.
	MaxTextLength = 2000
	// DefaultMatchScore replaces scores the oracle left out or garbled.
	DefaultMatchScore = 5.0

	minMatchScore = 1.0
	maxMatchScore = 10.0
)

// platformKeywords is checked in order; the first hit wins.
var platformKeywords = []struct {
	platform domain.Platform
	keywords []string
}{
	{domain.PlatformTikTok, []string{"tiktok"}},
	{domain.PlatformInstagram, []string{"instagram"}},
	{domain.PlatformYouTube, []string{"youtube"}},
	{domain.PlatformFilmTV, []string{"film", "tv", "netflix", "streaming"}},
	{domain.PlatformMusic, []string{"music", "spotify", "soundcloud"}},
}

// Sanitize maps an untrusted candidate onto the closed record schema. It
// never fails: invalid values are dropped or replaced by defaults. A missing
// name stays empty; Dedupe drops such candidates.
func Sanitize(raw domain.RawCandidate) domain.ProspectCandidate {
	return domain.ProspectCandidate{
		Name:            bounded(stringField(raw, "name")),
		WhyFit:          bounded(stringField(raw, "whyFit", "why_fit")),
		Source:          NormalizeSource(stringField(raw, "source")),
		SourceReference: bounded(stringField(raw, "sourceReference", "sourceArticle", "source_article")),
		Platforms:       NormalizePlatforms(firstValue(raw, "platforms", "platform")),
		ReachEstimate:   bounded(stringField(raw, "reachEstimate", "followersReach", "followers_reach")),
		UpsideNotes:     bounded(stringField(raw, "upsideNotes", "upside_notes")),
		MatchScore:      NormalizeScore(firstValue(raw, "matchScore", "match_score", "score")),
		ProfileLink:     NormalizeLink(stringField(raw, "profileLink", "link", "url")),
	}
}

// SanitizeAll sanitizes a batch in order.
func SanitizeAll(raw []domain.RawCandidate) []domain.ProspectCandidate {
	out := make([]domain.ProspectCandidate, 0, len(raw))
	for _, r := range raw {
		out = append(out, Sanitize(r))
	}
	return out
}

// Clean re-applies the sanitizer rules to an already typed candidate, used
// for manual additions that bypass the oracle. A zero score means unscored
// and stays zero; any other score is clamped.
func Clean(c domain.ProspectCandidate) domain.ProspectCandidate {
	score := c.MatchScore
	if score != 0 {
		score = NormalizeScore(score)
	}
	platforms := make([]any, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		platforms = append(platforms, string(p))
	}
	return domain.ProspectCandidate{
		Name:            bounded(strings.TrimSpace(c.Name)),
		WhyFit:          bounded(strings.TrimSpace(c.WhyFit)),
		Source:          NormalizeSource(string(c.Source)),
		SourceReference: bounded(strings.TrimSpace(c.SourceReference)),
		Platforms:       NormalizePlatforms(platforms),
		ReachEstimate:   bounded(strings.TrimSpace(c.ReachEstimate)),
		UpsideNotes:     bounded(strings.TrimSpace(c.UpsideNotes)),
		MatchScore:      score,
		ProfileLink:     NormalizeLink(c.ProfileLink),
	}
}

// NormalizeSource accepts an enumeration value regardless of case, spacing
// and punctuation; anything else becomes domain.DefaultSource.
func NormalizeSource(value string) domain.Source {
	key := letterKey(value)
	for _, s := range domain.Sources {
		if key == letterKey(string(s)) {
			return s
		}
	}
	return domain.DefaultSource
}

// NormalizePlatforms maps free-form platform values onto the fixed set.
// Values may be a string (comma separated) or a list. Unknown values are
// dropped and duplicates collapse to one.
func NormalizePlatforms(value any) []domain.Platform {
	var values []string
	switch v := value.(type) {
	case string:
		values = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, strings.Split(s, ",")...)
			}
		}
	case []string:
		for _, s := range v {
			values = append(values, strings.Split(s, ",")...)
		}
	}

	out := make([]domain.Platform, 0, len(values))
	seen := make(map[domain.Platform]bool, len(values))
	for _, raw := range values {
		p, ok := matchPlatform(raw)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func matchPlatform(value string) (domain.Platform, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return "", false
	}
	for _, entry := range platformKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.platform, true
			}
		}
	}
	return "", false
}

// NormalizeScore returns a finite score clamped to 1..10, or DefaultMatchScore
// when value is not numeric.
func NormalizeScore(value any) float64 {
	var (
		score float64
		ok    bool
	)
	switch v := value.(type) {
	case float64:
		score, ok = v, true
	case float32:
		score, ok = float64(v), true
	case int:
		score, ok = float64(v), true
	case int64:
		score, ok = float64(v), true
	case json.Number:
		f, err := v.Float64()
		score, ok = f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		score, ok = f, err == nil
	}
	if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
		return DefaultMatchScore
	}
	return math.Min(maxMatchScore, math.Max(minMatchScore, score))
}

// NormalizeLink keeps absolute http(s) URLs and drops everything else.
func NormalizeLink(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > MaxTextLength {
		return ""
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return value
}

func bounded(s string) string {
	return domain.Truncate(s, MaxTextLength)
}

func firstValue(raw domain.RawCandidate, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(raw domain.RawCandidate, keys ...string) string {
	switch v := firstValue(raw, keys...).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64, bool, json.Number:
		return fmt.Sprint(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func letterKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
