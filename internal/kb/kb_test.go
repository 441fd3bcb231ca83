package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []Record {
	return []Record{
		{ID: "1", Question: "What is 2+2?", Solution: "2 + 2 = 4", Answer: "4", Topic: "arithmetic", Source: "seed"},
		{ID: "2", Question: "Solve x + 3 = 7", Solution: "Subtract 3 from both sides: x = 4", Answer: "x = 4", Topic: "algebra", Source: "seed"},
		{ID: "3", Question: "Find the derivative of x^2", Solution: "By the power rule, the derivative is 2x", Answer: "2x", Topic: "calculus", Source: "calculus-set"},
		{ID: "4", Question: "What is the area of a circle with radius 3?", Solution: "Area = pi * r^2 = 9pi", Answer: "9pi", Topic: "geometry", Source: "seed"},
	}
}

func TestNewDropsIncompleteRecords(t *testing.T) {
	records := append(testRecords(),
		Record{ID: "bad-1", Question: "", Solution: "orphan solution"},
		Record{ID: "bad-2", Question: "orphan question", Solution: "   "},
	)

	kb := New(records, 0.6)
	assert.Len(t, kb.Records(), 4)
	assert.Equal(t, 4, kb.Stats().TotalRecords)
}

func TestSearchFindsExactQuestion(t *testing.T) {
	kb := New(testRecords(), 0.6)

	matches := kb.Search("what is 2+2?", 0.5, 3)
	require.NotEmpty(t, matches)
	assert.Equal(t, "1", matches[0].Record.ID)
	assert.GreaterOrEqual(t, matches[0].Score, 0.7)
}

func TestSearchEmptyKnowledgeBase(t *testing.T) {
	kb := New(nil, 0.6)
	assert.Empty(t, kb.Search("what is 2+2?", 0.1, 5))
	assert.Nil(t, kb.Best("what is 2+2?"))
}

func TestSearchEmptyQuery(t *testing.T) {
	kb := New(testRecords(), 0.6)
	assert.Empty(t, kb.Search("", 0.1, 5))
	assert.Empty(t, kb.Search("   ", 0.1, 5))
}

func TestSearchIsIdempotent(t *testing.T) {
	kb := New(testRecords(), 0.6)

	first := kb.Search("find the derivative of x^2", 0.6, 5)
	second := kb.Search("find the derivative of x^2", 0.6, 5)
	assert.Equal(t, first, second)
}

func TestSearchThresholdMonotonicity(t *testing.T) {
	kb := New(testRecords(), 0.6)

	query := "solve the equation x + 3 = 7"
	looseMatches := kb.Search(query, 0.2, 0)
	strictMatches := kb.Search(query, 0.6, 0)

	assert.GreaterOrEqual(t, len(looseMatches), len(strictMatches))
	for _, m := range strictMatches {
		assert.GreaterOrEqual(t, m.Score, 0.6)
	}

	// Every strict match survives in the loose result, in the same order.
	i := 0
	for _, m := range looseMatches {
		if i < len(strictMatches) && m.Record.ID == strictMatches[i].Record.ID {
			i++
		}
	}
	assert.Equal(t, len(strictMatches), i)
}

func TestSearchOrderedByScore(t *testing.T) {
	kb := New(testRecords(), 0.1)

	matches := kb.Search("find the derivative of x^2", 0.1, 0)
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	assert.Equal(t, "3", matches[0].Record.ID)
}

func TestSearchRespectsLimit(t *testing.T) {
	kb := New(testRecords(), 0.0)
	matches := kb.Search("what is the solve derivative area", 0.0, 2)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestSearchByTopic(t *testing.T) {
	kb := New(testRecords(), 0.6)

	records := kb.SearchByTopic("Calculus", 10)
	require.Len(t, records, 1)
	assert.Equal(t, "3", records[0].ID)

	assert.Empty(t, kb.SearchByTopic("number theory", 10))
}

func TestHasKeyword(t *testing.T) {
	kb := New(testRecords(), 0.6)

	assert.True(t, kb.HasKeyword("derivative"))
	assert.False(t, kb.HasKeyword("is"), "short tokens are not indexed")
	assert.False(t, kb.HasKeyword("topology"))
}

func TestStats(t *testing.T) {
	kb := New(testRecords(), 0.6)

	stats := kb.Stats()
	assert.Equal(t, 4, stats.TotalRecords)
	assert.Equal(t, 0.6, stats.Threshold)
	assert.Equal(t, 1, stats.Topics["algebra"])
	assert.Equal(t, 3, stats.Sources["seed"])
	assert.Equal(t, 1, stats.Sources["calculus-set"])
	assert.Greater(t, stats.Keywords, 0)
}
