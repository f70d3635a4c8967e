package extract

import (
	"fmt"
	"strings"

	"TalentRadar/internal/domain"
)

// DefaultPerItemCharCap bounds each document's text when the caller passes no cap.
const DefaultPerItemCharCap = 500

// Assemble renders documents into one text block for the oracle. Each
// document's body (or summary, when there is no body) is truncated to
// perItemCharCap before concatenation, so the payload grows with the number
// of documents but never with their length. Input order is preserved.
func Assemble(docs []domain.SourceDocument, perItemCharCap int) string {
	if len(docs) == 0 {
		return ""
	}
	if perItemCharCap <= 0 {
		perItemCharCap = DefaultPerItemCharCap
	}

	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(documentHeader(doc))

		text := strings.TrimSpace(doc.Body)
		if text == "" {
			text = strings.TrimSpace(doc.Summary)
		}
		if text = domain.Truncate(text, perItemCharCap); text != "" {
			sb.WriteString("\n")
			sb.WriteString(text)
		}
	}
	return sb.String()
}

func documentHeader(doc domain.SourceDocument) string {
	category := strings.ToUpper(strings.TrimSpace(doc.Category))
	if category == "" {
		category = "DOCUMENT"
	}
	header := fmt.Sprintf("[%s] %q", category, strings.TrimSpace(doc.Title))
	if publisher := strings.TrimSpace(doc.Publisher); publisher != "" {
		header += " (" + publisher + ")"
	}
	return header
}

// FormatLookalikes renders lookalike seeds one per line, truncating free-form
// notes to perItemCharCap.
func FormatLookalikes(seeds []domain.EntityRef, perItemCharCap int) string {
	if perItemCharCap <= 0 {
		perItemCharCap = DefaultPerItemCharCap
	}

	lines := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			continue
		}
		line := "CLIENT: " + name
		if seed.Handle != "" {
			line += " (" + strings.TrimSpace(seed.Handle) + ")"
		}
		if seed.BrandAffinity != "" {
			line += " | Brands: " + domain.Truncate(strings.TrimSpace(seed.BrandAffinity), perItemCharCap)
		}
		if seed.SimilarAudiences != "" {
			line += " | Similar audiences: " + domain.Truncate(strings.TrimSpace(seed.SimilarAudiences), perItemCharCap)
		}
		if notes := strings.TrimSpace(seed.Notes); notes != "" {
			line += " | Notes: " + domain.Truncate(strings.Join(strings.Fields(notes), " "), perItemCharCap)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
