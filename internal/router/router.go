package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/guard"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/pkg/logger"
)

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ContentRejectedError reports a question the content guard refused.
type ContentRejectedError struct {
	Reason  string
	Message string
}

func (e *ContentRejectedError) Error() string {
	return fmt.Sprintf("content rejected (%s): %s", e.Reason, e.Message)
}

// Answer is the envelope returned for every accepted question. The
// fallback envelope is used when no backend produces an acceptable
// answer, so Solve never returns an empty result for a valid question.
type Answer struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Confidence    float64   `json:"confidence"`
	RouteTaken    string    `json:"route_taken"`
	ComponentUsed string    `json:"component_used"`
	SourceInfo    string    `json:"source_info,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	VoiceURL      string    `json:"voice_url,omitempty"`
	Error         string    `json:"error,omitempty"`
}

const fallbackConfidence = 0.3

const fallbackMessage = "I could not find a reliable answer to this question. " +
	"Try rephrasing it, or break it into smaller steps and ask about each one."

// Router tries each stage in order and returns the first result whose
// confidence strictly exceeds that stage's acceptance threshold.
type Router struct {
	stages         []Stage
	validator      *guard.Validator
	attemptTimeout time.Duration
}

func New(stages []Stage, validator *guard.Validator, attemptTimeout time.Duration) *Router {
	if attemptTimeout <= 0 {
		attemptTimeout = 15 * time.Second
	}
	return &Router{
		stages:         stages,
		validator:      validator,
		attemptTimeout: attemptTimeout,
	}
}

// Solve routes a question through the cascade. It has no side effects
// beyond logging and metrics; persisting history is the caller's job.
func (r *Router) Solve(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	if r.validator != nil {
		result := r.validator.ValidateInput(question)
		if !result.Approved {
			logger.Info("question rejected by content guard",
				zap.String("reason", result.Reason))
			return nil, &ContentRejectedError{Reason: result.Reason, Message: result.Message}
		}
	}

	start := time.Now()

	for _, stage := range r.stages {
		name := stage.Adapter.Name()

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		result, err := stage.Adapter.Attempt(attemptCtx, question)
		cancel()

		switch {
		case err != nil:
			metrics.RecordAdapterAttempt(name, "error")
			logger.Warn("adapter failed, trying next stage",
				zap.String("adapter", name), zap.Error(err))
			continue
		case result == nil:
			metrics.RecordAdapterAttempt(name, "not_applicable")
			logger.Debug("adapter had no answer", zap.String("adapter", name))
			continue
		case result.Confidence <= stage.Acceptance:
			metrics.RecordAdapterAttempt(name, "rejected")
			logger.Debug("adapter answer did not exceed acceptance threshold",
				zap.String("adapter", name),
				zap.Float64("confidence", result.Confidence),
				zap.Float64("acceptance", stage.Acceptance))
			continue
		}

		metrics.RecordAdapterAttempt(name, "accepted")
		metrics.RecordSolve(result.Route, time.Since(start))
		metrics.RecordConfidence(result.Route, result.Confidence)

		// Advisory only: a weak answer is still served, but flagged.
		if r.validator != nil {
			if check := r.validator.ValidateOutput(result.Answer); !check.Approved {
				logger.Warn("answer failed output validation",
					zap.String("route", result.Route),
					zap.String("reason", check.Reason),
					zap.Strings("suggestions", r.validator.Suggestions(result.Answer)))
			}
		}

		logger.Info("question answered",
			zap.String("route", result.Route),
			zap.String("component", result.Component),
			zap.Float64("confidence", result.Confidence),
			zap.Duration("latency", time.Since(start)))

		return &Answer{
			Question:      question,
			Answer:        result.Answer,
			Confidence:    result.Confidence,
			RouteTaken:    result.Route,
			ComponentUsed: result.Component,
			SourceInfo:    result.SourceInfo,
			Timestamp:     time.Now().UTC(),
		}, nil
	}

	metrics.RecordSolve(RouteFallback, time.Since(start))
	metrics.RecordConfidence(RouteFallback, fallbackConfidence)

	logger.Info("all stages exhausted, returning fallback",
		zap.String("question", question))

	return &Answer{
		Question:      question,
		Answer:        fallbackMessage,
		Confidence:    fallbackConfidence,
		RouteTaken:    RouteFallback,
		ComponentUsed: RouteFallback,
		Timestamp:     time.Now().UTC(),
	}, nil
}
