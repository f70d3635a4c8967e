package domain

import "time"

// SourceDocument is a single item fetched from the content store for the
// current window. Documents are immutable once fetched.
type SourceDocument struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"date"`
}

// EntityRef is an existing client used as a lookalike seed.
type EntityRef struct {
	Name             string `json:"name"`
	Handle           string `json:"handle,omitempty"`
	BrandAffinity    string `json:"brandAffinity,omitempty"`
	SimilarAudiences string `json:"similarAudiences,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// ClientProfile is an active client row as shown in the client feed.
type ClientProfile struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Handle           string     `json:"handle"`
	Platform         []string   `json:"platform"`
	Followers        string     `json:"followers"`
	EngagementRate   string     `json:"engagementRate"`
	Location         string     `json:"location"`
	Interests        string     `json:"interests"`
	BrandAffinity    string     `json:"brandAffinity"`
	AudienceGender   string     `json:"audienceGender"`
	TopLocations     string     `json:"topLocations"`
	SimilarAudiences string     `json:"similarAudiences"`
	PageContent      string     `json:"pageContent"`
	ReportUpdated    *time.Time `json:"reportUpdated"`
}

// Ref reduces the profile to the fields used as a lookalike seed.
func (c ClientProfile) Ref() EntityRef {
	return EntityRef{
		Name:             c.Name,
		Handle:           c.Handle,
		BrandAffinity:    c.BrandAffinity,
		SimilarAudiences: c.SimilarAudiences,
		Notes:            c.PageContent,
	}
}
