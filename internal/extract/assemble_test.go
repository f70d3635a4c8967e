package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"TalentRadar/internal/domain"
)

func TestAssembleFormatsAndPrefersBody(t *testing.T) {
	t.Parallel()

	docs := []domain.SourceDocument{
		{Category: "article", Title: "Rising Star", Publisher: "Variety", Summary: "short summary", Body: "full body text"},
		{Category: "podcast", Title: "Episode 12", Publisher: "The Town", Summary: "episode summary"},
	}

	got := Assemble(docs, 100)
	want := "[ARTICLE] \"Rising Star\" (Variety)\nfull body text\n\n[PODCAST] \"Episode 12\" (The Town)\nepisode summary"
	assert.Equal(t, want, got)
}

func TestAssemblePreservesOrder(t *testing.T) {
	t.Parallel()

	docs := []domain.SourceDocument{
		{Category: "ARTICLE", Title: "b"},
		{Category: "ARTICLE", Title: "a"},
		{Category: "ARTICLE", Title: "c"},
	}

	got := Assemble(docs, 10)
	assert.Less(t, strings.Index(got, `"b"`), strings.Index(got, `"a"`))
	assert.Less(t, strings.Index(got, `"a"`), strings.Index(got, `"c"`))
}

func TestAssembleBoundsPayload(t *testing.T) {
	t.Parallel()

	const charCap = 50
	long := strings.Repeat("x", 5000)
	docs := make([]domain.SourceDocument, 0, 20)
	for i := 0; i < 20; i++ {
		docs = append(docs, domain.SourceDocument{Category: "ARTICLE", Title: "t", Publisher: "p", Body: long})
	}

	got := Assemble(docs, charCap)

	budget := 0
	for _, d := range docs {
		// header + newline before text + separator between blocks
		budget += len(documentHeader(d)) + 1 + 2 + charCap
	}
	assert.LessOrEqual(t, len(got), budget)
	assert.NotContains(t, got, strings.Repeat("x", charCap+1))
}

func TestAssembleEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Assemble(nil, 100))
}

func TestAssembleWithoutText(t *testing.T) {
	t.Parallel()

	got := Assemble([]domain.SourceDocument{{Title: "Only Title"}}, 100)
	assert.Equal(t, `[DOCUMENT] "Only Title"`, got)
}

func TestFormatLookalikes(t *testing.T) {
	t.Parallel()

	got := FormatLookalikes([]domain.EntityRef{
		{Name: "Ava", BrandAffinity: "Nike", SimilarAudiences: "@someone"},
		{Name: "  "},
		{Name: "Kai", Notes: "line one\n\nline two"},
	}, 100)

	assert.Equal(t, "CLIENT: Ava | Brands: Nike | Similar audiences: @someone\nCLIENT: Kai | Notes: line one line two", got)
}
