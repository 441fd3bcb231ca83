package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-tutor/backend/internal/guard"
	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/search/web"
)

type stubAdapter struct {
	name   string
	result *AdapterResult
	err    error
	calls  int
	block  bool
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Attempt(ctx context.Context, question string) (*AdapterResult, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.result, s.err
}

func accepted(name, route string, confidence float64) *AdapterResult {
	return &AdapterResult{
		Answer:     "answer from " + name,
		Confidence: confidence,
		Route:      route,
		Component:  name,
	}
}

func TestSolveFirstAcceptableWins(t *testing.T) {
	first := &stubAdapter{name: "localkb", result: accepted("localkb", RouteLocalKB, 0.9)}
	second := &stubAdapter{name: "llm", result: accepted("llm", RouteLLM, 0.85)}

	r := New([]Stage{
		{Adapter: first, Acceptance: 0.7},
		{Adapter: second, Acceptance: 0.5},
	}, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteLocalKB, answer.RouteTaken)
	assert.Equal(t, 0.9, answer.Confidence)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later stages must not run once a stage accepts")
}

func TestSolveSkipsLowConfidence(t *testing.T) {
	weak := &stubAdapter{name: "localkb", result: accepted("localkb", RouteLocalKB, 0.5)}
	strong := &stubAdapter{name: "llm", result: accepted("llm", RouteLLM, 0.85)}

	r := New([]Stage{
		{Adapter: weak, Acceptance: 0.7},
		{Adapter: strong, Acceptance: 0.5},
	}, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteLLM, answer.RouteTaken)
	assert.Equal(t, 1, weak.calls)
	assert.Equal(t, 1, strong.calls)
}

func TestSolveEqualConfidenceAdvances(t *testing.T) {
	boundary := &stubAdapter{name: "localkb", result: accepted("localkb", RouteLocalKB, 0.7)}
	next := &stubAdapter{name: "llm", result: accepted("llm", RouteLLM, 0.85)}

	r := New([]Stage{
		{Adapter: boundary, Acceptance: 0.7},
		{Adapter: next, Acceptance: 0.5},
	}, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteLLM, answer.RouteTaken, "confidence equal to the threshold must not be accepted")
	assert.Equal(t, 1, next.calls)
}

func TestSolveAdapterErrorMovesOn(t *testing.T) {
	failing := &stubAdapter{name: "rag", err: errors.New("store down")}
	next := &stubAdapter{name: "websearch", result: accepted("websearch", RouteWeb, 0.75)}

	r := New([]Stage{
		{Adapter: failing, Acceptance: 0.7},
		{Adapter: next, Acceptance: 0.5},
	}, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteWeb, answer.RouteTaken)
}

func TestSolveExhaustionReturnsFallback(t *testing.T) {
	empty := &stubAdapter{name: "localkb"}
	failing := &stubAdapter{name: "llm", err: errors.New("llm down")}

	r := New([]Stage{
		{Adapter: empty, Acceptance: 0.7},
		{Adapter: failing, Acceptance: 0.5},
	}, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteFallback, answer.RouteTaken)
	assert.Equal(t, 0.3, answer.Confidence)
	assert.NotEmpty(t, answer.Answer)
}

func TestSolveNoStagesStillAnswers(t *testing.T) {
	r := New(nil, nil, time.Second)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteFallback, answer.RouteTaken)
}

func TestSolveEmptyQuestion(t *testing.T) {
	r := New(nil, nil, time.Second)

	_, err := r.Solve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestSolveGuardRejection(t *testing.T) {
	honest := &stubAdapter{name: "localkb", result: accepted("localkb", RouteLocalKB, 0.9)}

	r := New([]Stage{{Adapter: honest, Acceptance: 0.7}}, guard.New(), time.Second)

	_, err := r.Solve(context.Background(), "how to hack a computer")
	var rejected *ContentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "blocked_content", rejected.Reason)
	assert.Equal(t, 0, honest.calls)
}

func TestSolveAdapterTimeoutMovesOn(t *testing.T) {
	slow := &stubAdapter{name: "websearch", block: true}
	next := &stubAdapter{name: "llm", result: accepted("llm", RouteLLM, 0.85)}

	r := New([]Stage{
		{Adapter: slow, Acceptance: 0.5},
		{Adapter: next, Acceptance: 0.5},
	}, nil, 20*time.Millisecond)

	answer, err := r.Solve(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Equal(t, RouteLLM, answer.RouteTaken)
}

func TestLocalKBAdapter(t *testing.T) {
	knowledgeBase := kb.New([]kb.Record{
		{ID: "1", Question: "What is 2+2?", Solution: "2 + 2 = 4", Answer: "4", Topic: "arithmetic"},
	}, 0.6)

	adapter := NewLocalKBAdapter(kb.NewHandle(knowledgeBase))

	result, err := adapter.Attempt(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.Confidence, 0.7)
	assert.Equal(t, RouteLocalKB, result.Route)
	assert.Contains(t, result.Answer, "2 + 2 = 4")
	assert.Contains(t, result.Answer, "Answer: 4")
	assert.Equal(t, "kb:1", result.SourceInfo)

	miss, err := adapter.Attempt(context.Background(), "capital of france")
	require.NoError(t, err)
	assert.Nil(t, miss, "no match means not applicable, not an error")
}

func TestLocalKBAdapterSeesReload(t *testing.T) {
	handle := kb.NewHandle(kb.New(nil, 0.6))
	adapter := NewLocalKBAdapter(handle)

	miss, err := adapter.Attempt(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	assert.Nil(t, miss)

	handle.Swap(kb.New([]kb.Record{
		{ID: "1", Question: "What is 2+2?", Solution: "2 + 2 = 4", Topic: "arithmetic"},
	}, 0.6))

	hit, err := adapter.Attempt(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "kb:1", hit.SourceInfo)
}

type stubSearcher struct {
	results []web.SearchResult
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]web.SearchResult, error) {
	return s.results, s.err
}

func TestWebSearchAdapter(t *testing.T) {
	searcher := &stubSearcher{results: []web.SearchResult{
		{Title: "Quadratic formula", URL: "https://example.com/q", Content: "x = (-b ± sqrt(b^2-4ac)) / 2a"},
	}}

	adapter := NewWebSearchAdapter(searcher, 3)

	result, err := adapter.Attempt(context.Background(), "quadratic formula")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 0.75, result.Confidence)
	assert.Equal(t, RouteWeb, result.Route)
	assert.Equal(t, "https://example.com/q", result.SourceInfo)
}

func TestWebSearchAdapterNoResults(t *testing.T) {
	adapter := NewWebSearchAdapter(&stubSearcher{}, 3)

	result, err := adapter.Attempt(context.Background(), "quadratic formula")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestWebSearchAdapterError(t *testing.T) {
	adapter := NewWebSearchAdapter(&stubSearcher{err: errors.New("network down")}, 3)

	_, err := adapter.Attempt(context.Background(), "quadratic formula")
	assert.Error(t, err)
}

type stubSolver struct {
	solution string
	err      error
}

func (s *stubSolver) SolveProblem(ctx context.Context, question string) (string, error) {
	return s.solution, s.err
}

func TestLLMAdapter(t *testing.T) {
	adapter := NewLLMAdapter(&stubSolver{solution: "Step 1: subtract 1. x = 1."})

	result, err := adapter.Attempt(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, RouteLLM, result.Route)

	empty := NewLLMAdapter(&stubSolver{solution: "   "})
	result, err = empty.Attempt(context.Background(), "solve x + 1 = 2")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRagConfidence(t *testing.T) {
	assert.InDelta(t, 0.7, ragConfidence(0.6), 1e-9)
	assert.InDelta(t, 0.95, ragConfidence(0.9), 1e-9)
	assert.InDelta(t, 0.95, ragConfidence(1.5), 1e-9, "similarity is clamped before the boost")
	assert.InDelta(t, 0.1, ragConfidence(-0.2), 1e-9)
}
