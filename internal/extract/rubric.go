package extract

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed default_rubric.tmpl
var defaultRubric string

// RubricVars are the values substituted into a rubric template.
type RubricVars struct {
	Profile       string
	Lookalikes    string
	Content       string
	Window        string
	MinScore      int
	MinCandidates int
	MaxCandidates int
}

// Rubric is a scoring rubric template. The threshold policy lives in the
// template and its variables, not in code.
type Rubric struct {
	tmpl *template.Template
}

// DefaultRubric returns the built-in rubric.
func DefaultRubric() *Rubric {
	r, err := ParseRubric(defaultRubric)
	if err != nil {
		panic(fmt.Sprintf("default rubric: %v", err))
	}
	return r
}

// ParseRubric compiles a rubric template.
func ParseRubric(text string) (*Rubric, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("rubric template is empty")
	}
	tmpl, err := template.New("rubric").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}
	return &Rubric{tmpl: tmpl}, nil
}

// LoadRubric reads a rubric template from path, or returns the default when
// path is empty.
func LoadRubric(path string) (*Rubric, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRubric(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric %s: %w", path, err)
	}
	return ParseRubric(string(raw))
}

// Render produces the oracle prompt.
func (r *Rubric) Render(vars RubricVars) (string, error) {
	if vars.MinCandidates <= 0 {
		vars.MinCandidates = 8
	}
	if vars.MaxCandidates < vars.MinCandidates {
		vars.MaxCandidates = vars.MinCandidates + 4
	}
	if vars.Window == "" {
		vars.Window = "24h"
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render rubric: %w", err)
	}
	return sb.String(), nil
}
