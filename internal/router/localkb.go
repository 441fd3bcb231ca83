package router

import (
	"context"
	"fmt"

	"github.com/math-tutor/backend/internal/kb"
)

// LocalKBAdapter answers from the in-memory knowledge base. It is the
// first and cheapest stage of the cascade. Reading through the handle
// picks up knowledge base reloads without restarting the router.
type LocalKBAdapter struct {
	kb *kb.Handle
}

func NewLocalKBAdapter(handle *kb.Handle) *LocalKBAdapter {
	return &LocalKBAdapter{kb: handle}
}

func (a *LocalKBAdapter) Name() string { return "localkb" }

func (a *LocalKBAdapter) Attempt(ctx context.Context, question string) (*AdapterResult, error) {
	best := a.kb.Load().Best(question)
	if best == nil {
		return nil, nil
	}

	answer := best.Record.Solution
	if best.Record.Answer != "" {
		answer += "\n\nAnswer: " + best.Record.Answer
	}

	return &AdapterResult{
		Answer:     answer,
		Confidence: best.Score,
		Route:      RouteLocalKB,
		Component:  a.Name(),
		SourceInfo: fmt.Sprintf("kb:%s", best.Record.ID),
	}, nil
}
