package main

import (
	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/workflow"
)

const dryRunSeed = `import pandas as pd
from sklearn.linear_model import LinearRegression

df = pd.read_csv("data.csv")
model = LinearRegression().fit(df.drop(columns=["y"]), df["y"])
print(model.score(df.drop(columns=["y"]), df["y"]))`

const dryRunRevision = `import pandas as pd
from sklearn.linear_model import LinearRegression
from sklearn.model_selection import train_test_split


def main() -> None:
    df = pd.read_csv("data.csv").dropna()
    features, target = df.drop(columns=["y"]), df["y"]
    x_train, x_test, y_train, y_test = train_test_split(features, target, test_size=0.2, random_state=42)
    model = LinearRegression().fit(x_train, y_train)
    print(model.score(x_test, y_test))


if __name__ == "__main__":
    main()`

// newDryRunClient answers every prompt kind with canned text: one revision,
// then approval on the second resolution check.
func newDryRunClient() *llm.ScriptedClient {
	return &llm.ScriptedClient{
		Model: "dry-run",
		Rules: []llm.ScriptRule{
			{Contains: workflow.ResolutionPromptMarker, Responses: []string{"No", "Yes"}},
			{Contains: workflow.ReviewerPromptMarker, Responses: []string{
				"- Missing values are not handled\n- No train/test split, the score is measured on training data\n- Code runs at import time",
				"- Looks good",
			}},
			{Contains: workflow.CoderPromptMarker, Responses: []string{dryRunRevision}},
			{Contains: workflow.RatingPromptMarker, Responses: []string{"8/10: every review comment was addressed in one revision."}},
			{Contains: workflow.ComparisonPromptMarker, Responses: []string{
				workflow.FormatComparison(workflow.Comparison{Revised: 8, Original: 4}),
			}},
		},
		Fallback: dryRunSeed,
	}
}
