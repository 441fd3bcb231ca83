package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/router"
)

func benchmarkRouter(t *testing.T) *router.Router {
	t.Helper()
	knowledgeBase := kb.New([]kb.Record{
		{ID: "1", Question: "What is 2+2?", Solution: "2 + 2 = 4", Answer: "4", Topic: "arithmetic"},
		{ID: "2", Question: "Solve x + 3 = 7", Solution: "Subtract 3 from both sides: x = 4", Answer: "x = 4", Topic: "algebra"},
	}, 0.6)

	return router.New([]router.Stage{
		{Adapter: router.NewLocalKBAdapter(kb.NewHandle(knowledgeBase)), Acceptance: 0.7},
	}, nil, time.Second)
}

func TestRunScoresAccuracy(t *testing.T) {
	e := NewEvaluator(benchmarkRouter(t))

	report := e.Run(context.Background(), []Problem{
		{Question: "what is 2+2?", ExpectedAnswer: "4", Topic: "arithmetic", Difficulty: "easy"},
		{Question: "completely unknown question about philosophy of pancakes making breakfast", ExpectedAnswer: "42", Topic: "other", Difficulty: "hard"},
	})

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Correct)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-9)

	arithmetic, ok := report.ByTopic["arithmetic"]
	require.True(t, ok)
	assert.Equal(t, 1, arithmetic.Total)
	assert.InDelta(t, 1.0, arithmetic.Accuracy, 1e-9)

	assert.Equal(t, 1, report.ByRoute[router.RouteLocalKB])
	assert.Equal(t, 1, report.ByRoute[router.RouteFallback])
}

func TestRunEmptySet(t *testing.T) {
	e := NewEvaluator(benchmarkRouter(t))

	report := e.Run(context.Background(), nil)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0.0, report.Accuracy)
}

func TestAnswerMatches(t *testing.T) {
	assert.True(t, answerMatches("The answer is X = 4.", "x = 4"))
	assert.False(t, answerMatches("The answer is x = 5.", "x = 4"))
	assert.False(t, answerMatches("anything", ""))
}
