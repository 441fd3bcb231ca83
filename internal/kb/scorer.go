package kb

import (
	"strings"
)

// domainTerms boost scores for queries that share mathematical
// vocabulary with a record, beyond plain token overlap.
var domainTerms = map[string]float64{
	"derivative":  0.3,
	"integral":    0.3,
	"limit":       0.3,
	"solve":       0.2,
	"equation":    0.2,
	"factor":      0.2,
	"simplify":    0.2,
	"expand":      0.2,
	"graph":       0.2,
	"domain":      0.2,
	"range":       0.2,
	"function":    0.2,
	"polynomial":  0.2,
	"quadratic":   0.2,
	"linear":      0.2,
	"exponential": 0.2,
	"logarithm":   0.2,
	"trig":        0.2,
	"sine":        0.2,
	"cosine":      0.2,
	"tangent":     0.2,
	"matrix":      0.2,
	"vector":      0.2,
	"probability": 0.2,
	"statistics":  0.2,
	"mean":        0.2,
	"median":      0.2,
	"variance":    0.2,
	"standard":    0.2,
	"deviation":   0.2,
	"find":        0.1,
	"calculate":   0.1,
}

// Similarity scores how closely a record matches a query. The result
// is always in [0, 1]. Token overlap carries most of the weight;
// shared domain vocabulary, literal phrase matches and topic hits add
// bonuses on top.
func Similarity(query string, rec Record) float64 {
	queryLower := strings.ToLower(query)
	recordText := strings.ToLower(rec.Question + " " + rec.Solution)

	queryTokens := TokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}
	recordTokens := TokenSet(recordText)

	overlap := 0
	for tok := range queryTokens {
		if _, ok := recordTokens[tok]; ok {
			overlap++
		}
	}
	score := float64(overlap) / float64(len(queryTokens)) * 0.6

	for term, weight := range domainTerms {
		if strings.Contains(queryLower, term) && strings.Contains(recordText, term) {
			score += weight
		}
	}

	score += phraseBonus(queryLower, recordText)

	if topic := strings.ToLower(strings.TrimSpace(rec.Topic)); topic != "" {
		if strings.Contains(queryLower, topic) {
			score += 0.2
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// phraseBonus rewards literal multi-word phrases from the query that
// appear verbatim in the record text. Each phrase length from 3 up to
// min(7, wordCount-1) contributes at most 0.3, regardless of how many
// windows of that length match.
func phraseBonus(queryLower, recordText string) float64 {
	if len(queryLower) <= 10 {
		return 0
	}
	wordCount := len(TokenSet(queryLower))
	maxLen := wordCount - 1
	if maxLen > 7 {
		maxLen = 7
	}
	if maxLen < 3 {
		return 0
	}

	words := strings.Fields(queryLower)
	bonus := 0.0
	for length := 3; length <= maxLen; length++ {
		for start := 0; start+length <= len(words); start++ {
			phrase := strings.Join(words[start:start+length], " ")
			if strings.Contains(recordText, phrase) {
				bonus += 0.3
				break
			}
		}
	}
	return bonus
}
