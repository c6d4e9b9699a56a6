package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	tests := []struct {
		name           string
		code           string
		specialization string
		wantField      string
	}{
		{name: "empty code", code: "", specialization: "python", wantField: "code"},
		{name: "blank code", code: " \n\t", specialization: "python", wantField: "code"},
		{name: "empty specialization", code: "x = 1", specialization: "  ", wantField: "specialization"},
		{name: "valid", code: "x = 1", specialization: " go "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := NewConversationState(tt.code, tt.specialization, "")
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "go", state.Specialization())
				assert.Equal(t, tt.code, state.Baseline())
				assert.Equal(t, 0, state.Iterations())
				assert.Equal(t, tt.code, state.History())
				return
			}

			require.ErrorIs(t, err, ErrMalformedState)
			var malformed *MalformedStateError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantField, malformed.Field)
		})
	}
}

func TestConversationStateMutations(t *testing.T) {
	state, err := NewConversationState("v0", "python", "baseline")
	require.NoError(t, err)

	state.recordReview("")
	assert.Equal(t, 1, state.Iterations())
	assert.Equal(t, "", state.Feedback())

	state.recordRevision("v1")
	state.recordReview("fix names")
	assert.Equal(t, 2, state.Iterations())
	assert.Equal(t, "v1", state.Code())
	assert.Equal(t, "baseline", state.Baseline())
	assert.Equal(t, "v0\nREVIEWER:\n\nCODER:\nv1\nREVIEWER:\nfix names", state.History())

	require.NoError(t, state.finalize("7/10", "summary"))
	assert.ErrorIs(t, state.finalize("1/10", "other"), errAlreadyFinalized)
	assert.Equal(t, "7/10", state.Rating())
	assert.Equal(t, "summary", state.ComparisonSummary())
}

func TestConversationStateCloneIsIndependent(t *testing.T) {
	state, err := NewConversationState("v0", "python", "")
	require.NoError(t, err)
	state.recordReview("first")

	clone := state.Clone()
	state.recordReview("second")

	assert.Equal(t, 1, clone.Iterations())
	assert.Len(t, clone.Transcript(), 2)
	assert.Len(t, state.Transcript(), 3)
}

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name    string
		history string
		want    []Block
	}{
		{name: "empty", history: "", want: nil},
		{name: "seed only", history: "code", want: []Block{{RoleSeed, "code"}}},
		{
			name:    "full cycle",
			history: "seed\nREVIEWER:\n- a\n- b\nCODER:\nnew\nREVIEWER:\nok",
			want: []Block{
				{RoleSeed, "seed"},
				{RoleReviewer, "- a\n- b"},
				{RoleCoder, "new"},
				{RoleReviewer, "ok"},
			},
		},
		{
			name:    "empty feedback",
			history: "seed\nREVIEWER:\n\nCODER:\nx",
			want:    []Block{{RoleSeed, "seed"}, {RoleReviewer, ""}, {RoleCoder, "x"}},
		},
		{
			name:    "no seed",
			history: "\nREVIEWER:\nonly",
			want:    []Block{{RoleReviewer, "only"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTranscript(tt.history))
		})
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	blocks := []Block{
		{RoleSeed, "def f():\n    return 1\n"},
		{RoleReviewer, "* add docstring\n"},
		{RoleCoder, "def f():\n    \"\"\"One.\"\"\"\n    return 1"},
		{RoleReviewer, ""},
	}
	assert.Equal(t, blocks, ParseTranscript(renderTranscript(blocks)))
}

func TestTranscriptMarkerInContentSplits(t *testing.T) {
	blocks := []Block{
		{RoleSeed, "seed"},
		{RoleReviewer, "- rename the label\nCODER:\nshould not talk"},
		{RoleCoder, "fixed"},
	}

	assert.Equal(t, []Block{
		{RoleSeed, "seed"},
		{RoleReviewer, "- rename the label"},
		{RoleCoder, "should not talk"},
		{RoleCoder, "fixed"},
	}, ParseTranscript(renderTranscript(blocks)))
}
