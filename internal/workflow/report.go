package workflow

import (
	"io"
	"strings"
)

// Report is the process output of a finished run, in this order: final code,
// transcript, final feedback, rating, comparison summary.
type Report struct {
	Code              string
	History           string
	Feedback          string
	Rating            string
	ComparisonSummary string
}

// NewReport collects the output values from a state.
func NewReport(state *ConversationState) Report {
	return Report{
		Code:              state.Code(),
		History:           state.History(),
		Feedback:          state.Feedback(),
		Rating:            state.Rating(),
		ComparisonSummary: state.ComparisonSummary(),
	}
}

// Values returns the five output values in print order.
func (r Report) Values() []string {
	return []string{r.Code, r.History, r.Feedback, r.Rating, r.ComparisonSummary}
}

// WriteTo writes each value followed by a newline.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, v := range r.Values() {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
