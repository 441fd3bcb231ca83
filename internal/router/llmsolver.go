package router

import (
	"context"
	"fmt"
	"strings"
)

const llmConfidence = 0.85

// Solver produces a step-by-step solution. Satisfied by the LLM
// client.
type Solver interface {
	SolveProblem(ctx context.Context, question string) (string, error)
}

// LLMAdapter is the last real stage of the cascade: it asks the model
// directly when retrieval has nothing.
type LLMAdapter struct {
	solver Solver
}

func NewLLMAdapter(solver Solver) *LLMAdapter {
	return &LLMAdapter{solver: solver}
}

func (a *LLMAdapter) Name() string { return "llm" }

func (a *LLMAdapter) Attempt(ctx context.Context, question string) (*AdapterResult, error) {
	solution, err := a.solver.SolveProblem(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("llm solve failed: %w", err)
	}
	if strings.TrimSpace(solution) == "" {
		return nil, nil
	}

	return &AdapterResult{
		Answer:     solution,
		Confidence: llmConfidence,
		Route:      RouteLLM,
		Component:  a.Name(),
		SourceInfo: "llm:generated",
	}, nil
}
