package learning

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/storage/models"
	"github.com/math-tutor/backend/pkg/logger"
)

// ErrInvalidRating is returned for ratings outside 1 through 5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// FeedbackStore persists feedback records. Satisfied by the SQLite
// client.
type FeedbackStore interface {
	Append(record models.FeedbackRecord) error
	All() ([]models.FeedbackRecord, error)
}

// Learner accumulates answer ratings and learns which kinds of
// questions the system handles well. The pattern cache is rebuilt from
// the full store on every ingest and swapped in atomically.
type Learner struct {
	store FeedbackStore

	mu       sync.RWMutex
	patterns map[string]Pattern
}

func NewLearner(store FeedbackStore) (*Learner, error) {
	l := &Learner{
		store:    store,
		patterns: make(map[string]Pattern),
	}
	if err := l.rebuild(); err != nil {
		return nil, err
	}
	return l, nil
}

// Ingest validates and stores one feedback record, then recomputes the
// pattern cache. It returns improvement suggestions for the rated
// answer.
func (l *Learner) Ingest(record models.FeedbackRecord) ([]string, error) {
	if record.Rating < 1 || record.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if err := l.store.Append(record); err != nil {
		return nil, err
	}

	if err := l.rebuild(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	suggestions := improvementSuggestions(l.patterns, record.Question, record.Rating)
	l.mu.RUnlock()

	logger.Info("Feedback ingested",
		zap.Int("rating", record.Rating),
		zap.String("question", record.Question))

	return suggestions, nil
}

func (l *Learner) rebuild() error {
	records, err := l.store.All()
	if err != nil {
		return err
	}

	patterns := buildPatterns(records)

	l.mu.Lock()
	l.patterns = patterns
	l.mu.Unlock()

	logger.Debug("Pattern cache rebuilt",
		zap.Int("patterns", len(patterns)),
		zap.Int("records", len(records)))
	return nil
}

// PredictDifficulty estimates difficulty for a new question.
func (l *Learner) PredictDifficulty(question string) DifficultyPrediction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return predictDifficulty(l.patterns, question)
}

// Suggestions returns improvement advice for a rating without storing
// anything.
func (l *Learner) Suggestions(question string, rating int) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return improvementSuggestions(l.patterns, question, rating)
}

// PatternSummary is one entry in the insights report.
type PatternSummary struct {
	Pattern   string  `json:"pattern"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

// Insights summarizes what the learner has seen so far.
type Insights struct {
	TotalFeedback        int              `json:"total_feedback"`
	AvgRating            float64          `json:"avg_rating"`
	TopPatterns          []PatternSummary `json:"top_performing_patterns"`
	ImprovementAreas     []PatternSummary `json:"areas_for_improvement"`
	TotalPatternsLearned int              `json:"total_patterns_learned"`
}

// Insights reports overall rating statistics, the best-rated frequent
// patterns and the worst-rated ones.
func (l *Learner) Insights() (Insights, error) {
	records, err := l.store.All()
	if err != nil {
		return Insights{}, err
	}

	sum := 0
	for _, rec := range records {
		sum += rec.Rating
	}
	avg := 0.0
	if len(records) > 0 {
		avg = float64(sum) / float64(len(records))
	}

	l.mu.RLock()
	patterns := l.patterns
	l.mu.RUnlock()

	top := summarize(patterns, 5, func(a, b PatternSummary) bool {
		return a.AvgRating > b.AvgRating
	})
	if len(top) > 10 {
		top = top[:10]
	}

	weak := summarize(patterns, 3, func(a, b PatternSummary) bool {
		return a.AvgRating < b.AvgRating
	})
	if len(weak) > 5 {
		weak = weak[:5]
	}

	return Insights{
		TotalFeedback:        len(records),
		AvgRating:            avg,
		TopPatterns:          top,
		ImprovementAreas:     weak,
		TotalPatternsLearned: len(patterns),
	}, nil
}

func summarize(patterns map[string]Pattern, minCount int, less func(a, b PatternSummary) bool) []PatternSummary {
	var out []PatternSummary
	for name, p := range patterns {
		if p.Count > minCount {
			out = append(out, PatternSummary{Pattern: name, AvgRating: p.AvgRating, Count: p.Count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating == out[j].AvgRating {
			return out[i].Pattern < out[j].Pattern
		}
		return less(out[i], out[j])
	})
	return out
}
