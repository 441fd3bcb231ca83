package router

import "context"

// Route tags recorded in answer envelopes and history.
const (
	RouteLocalKB  = "local_knowledge_base"
	RouteVectorKB = "vector_knowledge_base"
	RouteWeb      = "web_search"
	RouteLLM      = "llm_fallback"
	RouteFallback = "fallback"
)

// AdapterResult is a candidate answer produced by one backend.
type AdapterResult struct {
	Answer     string
	Confidence float64
	Route      string
	Component  string
	SourceInfo string
}

// Adapter is one backend in the cascade. Attempt returns (nil, nil)
// when the backend has nothing to offer for the question. An error
// means the backend itself failed; the caller moves on to the next
// stage either way.
type Adapter interface {
	Name() string
	Attempt(ctx context.Context, question string) (*AdapterResult, error)
}

// Stage pairs an adapter with the minimum confidence its results must
// reach to be accepted.
type Stage struct {
	Adapter    Adapter
	Acceptance float64
}
