package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveSystemPromptDemands(t *testing.T) {
	// The tutor prompt mirrors what the solver asks of the model:
	// restated problem, numbered steps, reasoning, named formulas,
	// and a final answer line.
	for _, demand := range []string{
		"Restate what the problem asks",
		"Show every step of the work, numbered",
		"Explain why each step is taken",
		"Name the formulas and concepts used",
		"State the final answer clearly on its own line",
	} {
		assert.Contains(t, solveSystemPrompt, demand)
	}

	assert.True(t, strings.Contains(solveSystemPrompt, "plain notation"))
}
