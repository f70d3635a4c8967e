package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"TalentRadar/internal/domain"
)

const excerptLength = 200

var codeFence = regexp.MustCompile("```[A-Za-z0-9_-]*")

// maxAsideLength bounds a bracketed scalar list in prose, such as "[2]",
// that may precede the real array.
const maxAsideLength = 64

// ParseArray pulls the first JSON array of objects out of raw oracle text.
// Markdown code fences are stripped first; the array is located by bracket
// matching so prose around it is ignored. Elements are returned untyped.
//
// The first array that is not a short list of scalars is the answer. When it
// is unbalanced, malformed or holds non-objects, parsing fails; nothing
// inside or after it is tried.
func ParseArray(raw string) ([]domain.RawCandidate, error) {
	text := codeFence.ReplaceAllString(raw, "")

	fail := func(err error) error {
		return &domain.StructuredOutputError{
			Excerpt: domain.Truncate(strings.TrimSpace(raw), excerptLength),
			Err:     err,
		}
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := matchingBracket(text, i)
		if end < 0 {
			return nil, fail(fmt.Errorf("unterminated array at offset %d", i))
		}
		span := text[i : end+1]
		var items []any
		if err := json.Unmarshal([]byte(span), &items); err != nil {
			return nil, fail(fmt.Errorf("decode array: %w", err))
		}
		if isAside(span, items) {
			i = end
			continue
		}
		candidates, err := toCandidates(items)
		if err != nil {
			return nil, fail(err)
		}
		return candidates, nil
	}

	return nil, fail(nil)
}

// isAside reports whether a decoded array is a short non-empty list of
// scalars, which is prose rather than output.
func isAside(span string, items []any) bool {
	if len(items) == 0 || len(span) > maxAsideLength {
		return false
	}
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

// matchingBracket returns the index of the ']' closing the '[' at open,
// ignoring brackets inside JSON strings, or -1 when unbalanced.
func matchingBracket(s string, open int) int {
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func toCandidates(items []any) ([]domain.RawCandidate, error) {
	out := make([]domain.RawCandidate, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not an object", i, item)
		}
		out = append(out, domain.RawCandidate(obj))
	}
	return out, nil
}
