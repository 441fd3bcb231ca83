package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityExactArithmeticQuestion(t *testing.T) {
	rec := Record{
		ID:       "basic-1",
		Question: "What is 2+2?",
		Solution: "2 + 2 = 4",
		Answer:   "4",
		Topic:    "arithmetic",
	}

	score := Similarity("what is 2+2?", rec)
	assert.GreaterOrEqual(t, score, 0.7, "identical question should clear the acceptance bar")
	assert.LessOrEqual(t, score, 1.0)
}

func TestSimilarityDomainTermBoost(t *testing.T) {
	rec := Record{
		Question: "Find the derivative of x^2",
		Solution: "The derivative of x^2 is 2x by the power rule",
		Topic:    "calculus",
	}

	withTerm := Similarity("derivative of x^2", rec)
	withoutTerm := Similarity("rate of change of x^2", rec)
	assert.Greater(t, withTerm, withoutTerm)
}

func TestSimilarityTopicBonus(t *testing.T) {
	base := Record{
		Question: "Solve the quadratic",
		Solution: "use the formula",
	}
	tagged := base
	tagged.Topic = "algebra"

	plain := Similarity("algebra quadratic help", base)
	boosted := Similarity("algebra quadratic help", tagged)
	assert.InDelta(t, 0.2, boosted-plain, 1e-9)
}

func TestSimilarityUnrelatedQuery(t *testing.T) {
	rec := Record{
		Question: "What is the integral of sin(x)?",
		Solution: "-cos(x) + C",
		Topic:    "calculus",
	}

	score := Similarity("capital of france", rec)
	assert.Less(t, score, 0.3)
}

func TestSimilarityClampedToOne(t *testing.T) {
	rec := Record{
		Question: "Find the derivative and the integral and the limit of the function",
		Solution: "Find the derivative and the integral and the limit of the function as explained",
		Topic:    "calculus",
	}

	score := Similarity("calculus find the derivative and the integral and the limit of the function", rec)
	assert.Equal(t, 1.0, score)
}

func TestSimilarityEmptyQuery(t *testing.T) {
	rec := Record{Question: "What is 2+2?", Solution: "4"}
	assert.Equal(t, 0.0, Similarity("", rec))
	assert.Equal(t, 0.0, Similarity("   ", rec))
}

func TestPhraseBonusRequiresLongQuery(t *testing.T) {
	// Ten characters or fewer skips phrase matching entirely.
	assert.Equal(t, 0.0, phraseBonus("solve x", "solve for x in the equation x = 1"))
	assert.Greater(t, phraseBonus("solve for x in the equation", "solve for x in the equation x = 1"), 0.0)
}

func TestPhraseBonusCountsUniqueWords(t *testing.T) {
	// Two distinct words repeated: not enough vocabulary for a
	// three-word phrase, however long the literal query runs.
	bonus := phraseBonus("two plus two plus two plus two", "two plus two plus two plus two equals eight")
	assert.Equal(t, 0.0, bonus)
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("What is 2+2?")
	assert.Equal(t, []string{"what", "is", "2", "2"}, toks)

	set := TokenSet("What is 2+2?")
	assert.Len(t, set, 3)
}
