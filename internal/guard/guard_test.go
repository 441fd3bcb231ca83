package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInputApprovesMathQuestions(t *testing.T) {
	v := New()

	cases := []string{
		"Solve the equation 2x + 5 = 13 for x",
		"Find the derivative of f(x) = x^2 + 3x + 2",
		"Calculate the area of a circle with radius 5",
		"What is 2+2?",
	}
	for _, question := range cases {
		result := v.ValidateInput(question)
		assert.True(t, result.Approved, question)
		assert.Equal(t, VerdictApproved, result.Verdict)
	}
}

func TestValidateInputBlocksInappropriateContent(t *testing.T) {
	v := New()

	cases := []string{
		"How to hack a computer",
		"Tell me celebrity gossip",
	}
	for _, question := range cases {
		result := v.ValidateInput(question)
		assert.False(t, result.Approved, question)
		assert.Equal(t, VerdictBlocked, result.Verdict)
		assert.Equal(t, "blocked_content", result.Reason)
	}
}

func TestValidateInputFlagsNonMathematical(t *testing.T) {
	v := New()

	result := v.ValidateInput("what happened yesterday")
	assert.False(t, result.Approved)
	assert.Equal(t, VerdictFlagged, result.Verdict)
	assert.Equal(t, "non_mathematical", result.Reason)
}

func TestValidateInputEmptyAndOversized(t *testing.T) {
	v := New()

	empty := v.ValidateInput("   ")
	assert.Equal(t, VerdictBlocked, empty.Verdict)
	assert.Equal(t, "empty_input", empty.Reason)

	long := v.ValidateInput(strings.Repeat("2+2 ", 2000))
	assert.Equal(t, VerdictBlocked, long.Verdict)
	assert.Equal(t, "length_limit", long.Reason)
}

func TestValidateOutput(t *testing.T) {
	v := New()

	good := v.ValidateOutput("Step 1: subtract 3 from both sides. Therefore x = 4 because the equation balances.")
	assert.True(t, good.Approved)

	weak := v.ValidateOutput("dunno")
	assert.False(t, weak.Approved)
	assert.Equal(t, VerdictFlagged, weak.Verdict)

	empty := v.ValidateOutput("")
	assert.Equal(t, VerdictBlocked, empty.Verdict)
}

func TestSuggestions(t *testing.T) {
	v := New()

	suggestions := v.Suggestions("short")
	assert.Contains(t, suggestions, "Provide more detailed explanation")
	assert.Contains(t, suggestions, "Consider breaking the solution into clear steps")

	none := v.Suggestions("Step 1: x = 4 because we subtract 3, therefore the solution checks out fine.")
	assert.Empty(t, none)
}
