package learning

import (
	"strings"

	"github.com/math-tutor/backend/internal/storage/models"
)

// mathTerms are the question features tracked by the pattern learner.
var mathTerms = []string{
	"algebra", "calculus", "geometry", "trigonometry", "statistics",
	"derivative", "integral", "equation", "function", "matrix",
	"probability", "limit", "theorem", "proof", "solve",
	"calculate", "find", "determine", "evaluate", "simplify",
	"linear", "quadratic", "polynomial", "exponential", "logarithm",
}

// Pattern aggregates ratings for one question feature.
type Pattern struct {
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

// DifficultyPrediction estimates how hard a question is from past
// ratings of similar questions.
type DifficultyPrediction struct {
	Level         string   `json:"predicted_level"`
	Score         float64  `json:"difficulty_score"`
	Confidence    float64  `json:"confidence"`
	MatchingTerms []string `json:"matching_terms"`
}

// extractKeyTerms lists the features of a question: the math terms it
// mentions plus a length bucket. Questions mentioning no recognized
// math term get a general bucket instead, so their ratings still
// aggregate somewhere.
func extractKeyTerms(question string) []string {
	lower := strings.ToLower(question)

	var terms []string
	for _, term := range mathTerms {
		if strings.Contains(lower, term) {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		terms = append(terms, "general_math")
	}

	switch {
	case len(question) < 50:
		terms = append(terms, "short_question")
	case len(question) > 150:
		terms = append(terms, "long_question")
	default:
		terms = append(terms, "medium_question")
	}

	return terms
}

func buildPatterns(records []models.FeedbackRecord) map[string]Pattern {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, rec := range records {
		for _, term := range extractKeyTerms(rec.Question) {
			sums[term] += float64(rec.Rating)
			counts[term]++
		}
	}

	patterns := make(map[string]Pattern, len(counts))
	for term, count := range counts {
		patterns[term] = Pattern{
			AvgRating: sums[term] / float64(count),
			Count:     count,
		}
	}
	return patterns
}

// predictDifficulty inverts ratings (low-rated patterns are treated as
// hard) and averages over the question's matched features.
func predictDifficulty(patterns map[string]Pattern, question string) DifficultyPrediction {
	keyTerms := extractKeyTerms(question)

	var scores []float64
	for _, term := range keyTerms {
		if p, ok := patterns[term]; ok {
			scores = append(scores, 5-p.AvgRating)
		}
	}

	if len(scores) == 0 {
		return DifficultyPrediction{
			Level:         "medium",
			Score:         2.5,
			Confidence:    0.1,
			MatchingTerms: []string{},
		}
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))

	confidence := float64(len(scores)) / float64(len(keyTerms))
	if confidence > 1 {
		confidence = 1
	}

	level := "hard"
	if avg < 1.5 {
		level = "easy"
	} else if avg < 3.0 {
		level = "medium"
	}

	return DifficultyPrediction{
		Level:         level,
		Score:         avg,
		Confidence:    confidence,
		MatchingTerms: keyTerms,
	}
}

func improvementSuggestions(patterns map[string]Pattern, question string, rating int) []string {
	if rating >= 4 {
		return []string{"Great job! The answer was well received."}
	}

	var suggestions []string
	for _, term := range extractKeyTerms(question) {
		if p, ok := patterns[term]; ok && p.AvgRating < 3.0 {
			suggestions = append(suggestions,
				"Questions involving '"+term+"' tend to get lower ratings. "+
					"Consider providing more detailed explanations for "+term+" problems.")
		}
	}

	switch {
	case rating <= 2:
		suggestions = append(suggestions,
			"Consider breaking down the solution into more detailed steps",
			"Add more context and explanation for each step",
			"Include verification or checking steps",
			"Provide alternative solution methods if applicable",
		)
	case rating == 3:
		suggestions = append(suggestions,
			"The answer is adequate but could be improved",
			"Consider adding more examples or analogies",
			"Explain the reasoning behind each step more clearly",
		)
	}

	if len(suggestions) == 0 {
		return []string{"Continue providing clear, step-by-step solutions"}
	}
	return suggestions
}
