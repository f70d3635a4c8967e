package domain

import (
	"strings"
	"time"
)

// Platform is one of the fixed channels a prospect is known on.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
	PlatformFilmTV    Platform = "Film/TV"
	PlatformMusic     Platform = "Music"
)

// Platforms lists the allowed platform tags in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformFilmTV, PlatformMusic}

// Source describes where a prospect was discovered.
type Source string

const (
	SourceArticle         Source = "Article"
	SourcePodcast         Source = "Podcast"
	SourceClientLookalike Source = "Client Lookalike"
	SourceManual          Source = "Manual"
)

// DefaultSource is used when the oracle reports something outside the enumeration.
const DefaultSource = SourceArticle

// Sources lists the allowed source categories.
var Sources = []Source{SourceArticle, SourcePodcast, SourceClientLookalike, SourceManual}

// Status tracks the review state of a persisted prospect.
type Status string

const (
	StatusNew          Status = "New"
	StatusReviewed     Status = "Reviewed"
	StatusOutreachSent Status = "Outreach Sent"
	StatusPass         Status = "Pass"
	StatusSigned       Status = "Signed"
)

// Statuses lists every status value.
var Statuses = []Status{StatusNew, StatusReviewed, StatusOutreachSent, StatusPass, StatusSigned}

// ParseStatus matches a status case-insensitively.
func ParseStatus(value string) (Status, bool) {
	value = strings.TrimSpace(value)
	for _, s := range Statuses {
		if strings.EqualFold(string(s), value) {
			return s, true
		}
	}
	return "", false
}

// CanTransition reports whether a record may move from one status to another.
// Only New has outgoing transitions; later moves are managed outside the registry.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if from != StatusNew {
		return false
	}
	switch to {
	case StatusReviewed, StatusOutreachSent, StatusPass, StatusSigned:
		return true
	default:
		return false
	}
}

// AddedBy records who created a registry entry.
type AddedBy string

const (
	AddedByAI     AddedBy = "AI"
	AddedByManual AddedBy = "Manual"
)

// RawCandidate is an untyped object exactly as the oracle produced it.
type RawCandidate map[string]any

// ProspectCandidate is a sanitized candidate: enums are closed, text is bounded.
type ProspectCandidate struct {
	Name            string     `json:"name"`
	WhyFit          string     `json:"whyFit"`
	Source          Source     `json:"source"`
	SourceReference string     `json:"sourceArticle"`
	Platforms       []Platform `json:"platform"`
	ReachEstimate   string     `json:"followersReach"`
	UpsideNotes     string     `json:"upsideNotes"`
	MatchScore      float64    `json:"matchScore,omitempty"`
	ProfileLink     string     `json:"link"`
}

// Scored reports whether the candidate carries a match score. Manual
// additions may leave it unset, which is stored as zero.
func (c ProspectCandidate) Scored() bool { return c.MatchScore != 0 }

// DisplayName returns the name or a placeholder for nameless candidates.
func (c ProspectCandidate) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Unnamed prospect"
	}
	return c.Name
}

// ProspectRecord is a candidate accepted into the registry.
type ProspectRecord struct {
	ID string `json:"id"`
	ProspectCandidate
	Status    Status    `json:"status"`
	AddedBy   AddedBy   `json:"addedBy"`
	DateAdded time.Time `json:"dateAdded"`
}

// NormalizeName produces the deduplication key for a prospect name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
