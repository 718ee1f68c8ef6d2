package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/compozy/flowctl/internal/domain"
)

// ComposePRInput carries what the pull request template needs.
type ComposePRInput struct {
	Branch      string
	Kind        domain.WorkflowKind
	Base        string
	CommitCount int
}

// ComposePRUseCase renders the title and body for a new pull request.
type ComposePRUseCase struct {
}

// sanitize escapes a value for safe rendering inside the markdown body.
// Branch names are validated elsewhere, but the body must stay inert even
// if that validation changes.
func (uc *ComposePRUseCase) sanitize(value string) string {
	return html.EscapeString(value)
}

// Execute runs the use case.
func (uc *ComposePRUseCase) Execute(_ context.Context, input ComposePRInput) (string, string, error) {
	if input.Branch == "" {
		return "", "", fmt.Errorf("branch cannot be empty")
	}
	if input.Base == "" {
		return "", "", fmt.Errorf("base branch cannot be empty")
	}
	title := uc.buildTitle(input)
	safeData := struct {
		Title       string
		Branch      string
		Base        string
		CommitCount int
		CommitWord  string
	}{
		Title:       uc.sanitize(title),
		Branch:      uc.sanitize(input.Branch),
		Base:        uc.sanitize(input.Base),
		CommitCount: input.CommitCount,
		CommitWord:  pluralCommits(input.CommitCount),
	}
	tmpl := template.New("pr-body")
	tmpl = tmpl.Option("missingkey=error")
	parsedTmpl, err := tmpl.Parse(prBodyTemplate)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse PR body template: %w", err)
	}
	var buf bytes.Buffer
	if err := parsedTmpl.Execute(&buf, safeData); err != nil {
		return "", "", fmt.Errorf("failed to execute PR body template: %w", err)
	}
	body := strings.TrimSpace(buf.String()) + "\n"
	if strings.Contains(body, "{{") || strings.Contains(body, "}}") {
		return "", "", fmt.Errorf("potential injection detected in PR body output")
	}
	return title, body, nil
}

// buildTitle derives the title from the branch name, e.g. feature/login
// becomes "Feature: login".
func (uc *ComposePRUseCase) buildTitle(input ComposePRInput) string {
	kind := string(input.Kind)
	if kind == "" {
		return input.Branch
	}
	label := strings.ToUpper(kind[:1]) + kind[1:]
	suffix := input.Branch
	if idx := strings.Index(input.Branch, "/"); idx >= 0 {
		suffix = input.Branch[idx+1:]
	}
	return fmt.Sprintf("%s: %s", label, suffix)
}

func pluralCommits(n int) string {
	if n == 1 {
		return "commit"
	}
	return "commits"
}

const prBodyTemplate = `
## {{.Title}}

Merges ` + "`{{.Branch}}`" + ` into ` + "`{{.Base}}`" + ` ({{.CommitCount}} {{.CommitWord}}).

---
Opened with flowctl.
`
