package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoRatings is returned when a summary does not carry two scores.
var ErrNoRatings = errors.New("no ratings found")

var scorePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:/|out\s+of)\s*10\b`)

var (
	revisedLabels  = []string{"revised", "improved", "final"}
	originalLabels = []string{"actual", "original", "baseline", "initial"}
)

// ParseRatings returns every "N/10" or "N out of 10" score in text, in order.
// Scores above 10 are skipped.
func ParseRatings(text string) []float64 {
	var scores []float64
	for _, m := range scorePattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > 10 {
			continue
		}
		scores = append(scores, v)
	}
	return scores
}

// Comparison holds the two scores of a comparison summary.
type Comparison struct {
	Revised  float64
	Original float64
}

// FormatComparison renders c in the format the comparison prompt asks for.
func FormatComparison(c Comparison) string {
	return fmt.Sprintf("Revised Code: %s/10\nActual Code: %s/10",
		strconv.FormatFloat(c.Revised, 'f', -1, 64),
		strconv.FormatFloat(c.Original, 'f', -1, 64))
}

// ParseComparison extracts the revised and original scores. A score is
// attributed to the closest preceding label ("revised", "actual", ...);
// unlabeled scores are taken in prompt order, revised first.
func ParseComparison(summary string) (Comparison, error) {
	var (
		c                     Comparison
		haveRevised, haveOrig bool
		unlabeled             []float64
	)

	prev := 0
	for _, m := range scorePattern.FindAllStringSubmatchIndex(summary, -1) {
		segment := strings.ToLower(summary[prev:m[0]])
		prev = m[1]

		v, err := strconv.ParseFloat(summary[m[2]:m[3]], 64)
		if err != nil || v > 10 {
			continue
		}

		switch closestLabel(segment) {
		case "revised":
			if !haveRevised {
				c.Revised, haveRevised = v, true
				continue
			}
		case "original":
			if !haveOrig {
				c.Original, haveOrig = v, true
				continue
			}
		}
		unlabeled = append(unlabeled, v)
	}

	for _, v := range unlabeled {
		switch {
		case !haveRevised:
			c.Revised, haveRevised = v, true
		case !haveOrig:
			c.Original, haveOrig = v, true
		}
	}

	if !haveRevised || !haveOrig {
		return Comparison{}, fmt.Errorf("%w: expected scores for both snippets in %q", ErrNoRatings, truncate(summary, 120))
	}
	return c, nil
}

func closestLabel(segment string) string {
	best, label := -1, ""
	for _, l := range revisedLabels {
		if idx := strings.LastIndex(segment, l); idx > best {
			best, label = idx, "revised"
		}
	}
	for _, l := range originalLabels {
		if idx := strings.LastIndex(segment, l); idx > best {
			best, label = idx, "original"
		}
	}
	return label
}
