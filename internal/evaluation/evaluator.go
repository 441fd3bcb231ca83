package evaluation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/router"
	"github.com/math-tutor/backend/pkg/logger"
)

// Problem is one labeled benchmark question.
type Problem struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
	Topic          string `json:"topic,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

// Outcome is the result of replaying one problem.
type Outcome struct {
	Problem    Problem       `json:"problem"`
	Answer     string        `json:"answer"`
	Route      string        `json:"route"`
	Confidence float64       `json:"confidence"`
	Correct    bool          `json:"correct"`
	Latency    time.Duration `json:"latency"`
	Err        string        `json:"error,omitempty"`
}

// GroupStats aggregates outcomes sharing a label (topic or
// difficulty).
type GroupStats struct {
	Total         int     `json:"total"`
	Correct       int     `json:"correct"`
	Accuracy      float64 `json:"accuracy"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
}

// Report summarizes a full benchmark run.
type Report struct {
	Total        int                   `json:"total"`
	Correct      int                   `json:"correct"`
	Accuracy     float64               `json:"accuracy"`
	ByTopic      map[string]GroupStats `json:"by_topic"`
	ByDifficulty map[string]GroupStats `json:"by_difficulty"`
	ByRoute      map[string]int        `json:"by_route"`
	Outcomes     []Outcome             `json:"outcomes"`
}

// Evaluator replays labeled problems through the router and measures
// accuracy, confidence and latency.
type Evaluator struct {
	router *router.Router
}

func NewEvaluator(r *router.Router) *Evaluator {
	return &Evaluator{router: r}
}

func (e *Evaluator) Run(ctx context.Context, problems []Problem) Report {
	report := Report{
		ByTopic:      make(map[string]GroupStats),
		ByDifficulty: make(map[string]GroupStats),
		ByRoute:      make(map[string]int),
	}

	for _, problem := range problems {
		start := time.Now()
		answer, err := e.router.Solve(ctx, problem.Question)
		latency := time.Since(start)

		outcome := Outcome{Problem: problem, Latency: latency}
		if err != nil {
			outcome.Err = err.Error()
		} else {
			outcome.Answer = answer.Answer
			outcome.Route = answer.RouteTaken
			outcome.Confidence = answer.Confidence
			outcome.Correct = answerMatches(answer.Answer, problem.ExpectedAnswer)
			report.ByRoute[answer.RouteTaken]++
		}

		report.Outcomes = append(report.Outcomes, outcome)
		report.Total++
		if outcome.Correct {
			report.Correct++
		}

		accumulate(report.ByTopic, problem.Topic, outcome)
		accumulate(report.ByDifficulty, problem.Difficulty, outcome)
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}
	finalize(report.ByTopic)
	finalize(report.ByDifficulty)

	logger.Info("Benchmark completed",
		zap.Int("total", report.Total),
		zap.Int("correct", report.Correct),
		zap.Float64("accuracy", report.Accuracy))

	return report
}

// answerMatches checks whether the expected answer appears in the
// produced answer, ignoring case and surrounding whitespace.
func answerMatches(answer, expected string) bool {
	expected = strings.TrimSpace(strings.ToLower(expected))
	if expected == "" {
		return false
	}
	return strings.Contains(strings.ToLower(answer), expected)
}

func accumulate(groups map[string]GroupStats, label string, outcome Outcome) {
	if label == "" {
		return
	}
	stats := groups[label]
	stats.Total++
	if outcome.Correct {
		stats.Correct++
	}
	stats.AvgConfidence += outcome.Confidence
	stats.AvgLatencyMS += float64(outcome.Latency.Milliseconds())
	groups[label] = stats
}

func finalize(groups map[string]GroupStats) {
	for label, stats := range groups {
		if stats.Total > 0 {
			stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
			stats.AvgConfidence /= float64(stats.Total)
			stats.AvgLatencyMS /= float64(stats.Total)
		}
		groups[label] = stats
	}
}
