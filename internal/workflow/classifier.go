package workflow

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/logger"
)

// Classifier modes accepted by NewClassifier.
const (
	ClassifierKeyword = "keyword"
	ClassifierStrict  = "strict"
)

// ResolutionClassifier decides whether the feedback is addressed by the code.
type ResolutionClassifier interface {
	Resolved(ctx context.Context, code, feedback string) (bool, error)
}

// NewClassifier returns the classifier for mode. An empty mode selects keyword.
func NewClassifier(mode string, client llm.Client, temperature float64) (ResolutionClassifier, error) {
	if client == nil {
		return nil, fmt.Errorf("classifier requires a generator client")
	}
	g := generator{client: client, temperature: temperature}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ClassifierKeyword:
		return &KeywordClassifier{gen: g, Keyword: "yes"}, nil
	case ClassifierStrict:
		return &StrictClassifier{gen: g}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q (supported: %s, %s)", mode, ClassifierKeyword, ClassifierStrict)
	}
}

// KeywordClassifier asks the generator and approves when the answer contains
// Keyword anywhere, case-insensitively. "I don't think yes" approves.
type KeywordClassifier struct {
	gen     generator
	Keyword string
}

func (c *KeywordClassifier) Resolved(ctx context.Context, code, feedback string) (bool, error) {
	answer, err := askResolution(ctx, c.gen, code, feedback)
	if err != nil {
		return false, err
	}
	keyword := c.Keyword
	if keyword == "" {
		keyword = "yes"
	}
	return ContainsKeyword(answer, keyword), nil
}

// ContainsKeyword reports whether text contains keyword, ignoring case.
func ContainsKeyword(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// StrictClassifier approves only when the first word of the answer is "yes".
type StrictClassifier struct {
	gen generator
}

func (c *StrictClassifier) Resolved(ctx context.Context, code, feedback string) (bool, error) {
	answer, err := askResolution(ctx, c.gen, code, feedback)
	if err != nil {
		return false, err
	}

	switch leadingToken(answer) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		logger.Warn("Ambiguous resolution answer %q, treating as unresolved", truncate(answer, 80))
		return false, nil
	}
}

func leadingToken(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[0], func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func askResolution(ctx context.Context, gen generator, code, feedback string) (string, error) {
	prompt, err := renderPrompt(resolutionTemplate, promptData{Code: code, Feedback: feedback})
	if err != nil {
		return "", err
	}
	answer, err := gen.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("resolution check: %w", err)
	}
	return answer, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
