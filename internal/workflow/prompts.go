package workflow

import (
	"fmt"
	"strings"
	"text/template"
)

var (
	reviewerTemplate = template.Must(template.New("reviewer").Parse(
		`You are a code reviewer specialized in {{.Specialization}}. ` +
			`Review the given code against the style guidelines of the language (PEP8 for Python) and look for potential bugs. ` +
			`Point out the issues as a bullet list.
Code:
{{.Code}}`))

	coderTemplate = template.Must(template.New("coder").Parse(
		`You are a coder specialized in {{.Specialization}}. ` +
			`Improve the given code following these guidelines.
Guidelines:
{{.Feedback}}
Code:
{{.Code}}
Output just the improved code and nothing else.`))

	resolutionTemplate = template.Must(template.New("resolution").Parse(
		`Are all feedback items mentioned resolved in the code? Output just Yes or No.
Code:
{{.Code}}
Feedback:
{{.Feedback}}`))

	ratingTemplate = template.Must(template.New("rating").Parse(
		`Rate the skills of the coder on a scale of 10 given the code review cycle, with a short reason.
Code review:
{{.History}}`))

	comparisonTemplate = template.Must(template.New("comparison").Parse(
		`Compare the two code snippets and rate both on a scale of 10. Do not output the code. ` +
			`Report the ratings as "Revised Code: N/10" and "Actual Code: N/10".
Revised Code:
{{.Code}}
Actual Code:
{{.Baseline}}`))
)

type promptData struct {
	Specialization string
	Code           string
	Feedback       string
	History        string
	Baseline       string
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	data.Specialization = strings.TrimSpace(data.Specialization)
	data.Code = strings.TrimSpace(data.Code)
	data.Feedback = strings.TrimSpace(data.Feedback)
	data.History = strings.TrimSpace(data.History)
	data.Baseline = strings.TrimSpace(data.Baseline)

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// Prompt markers identify each prompt kind. Scripted generators match on them.
const (
	ReviewerPromptMarker   = "You are a code reviewer specialized in"
	CoderPromptMarker      = "You are a coder specialized in"
	ResolutionPromptMarker = "Are all feedback items mentioned resolved in the code?"
	RatingPromptMarker     = "Rate the skills of the coder"
	ComparisonPromptMarker = "Compare the two code snippets"
)
