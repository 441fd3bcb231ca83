package kb

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

// KnowledgeBase holds solved problems and answers similarity queries
// against them. It is immutable after construction.
type KnowledgeBase struct {
	records   []Record
	idx       *index
	threshold float64
}

// New builds a knowledge base from records. Records with an empty
// question or solution are dropped at load time. threshold is the
// minimum similarity for Search to return a match.
func New(records []Record, threshold float64) *KnowledgeBase {
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Question) == "" || strings.TrimSpace(rec.Solution) == "" {
			logger.Debug("skipping incomplete knowledge base record", zap.String("id", rec.ID))
			continue
		}
		kept = append(kept, rec)
	}

	kb := &KnowledgeBase{
		records:   kept,
		idx:       buildIndex(kept),
		threshold: threshold,
	}
	logger.Info("knowledge base loaded",
		zap.Int("records", len(kept)),
		zap.Int("skipped", len(records)-len(kept)),
		zap.Float64("threshold", threshold))
	return kb
}

// Search scores every record against the query and returns matches at
// or above the threshold, best first. Ties keep load order.
func (kb *KnowledgeBase) Search(query string, threshold float64, limit int) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var matches []Match
	for _, rec := range kb.records {
		score := Similarity(query, rec)
		if score >= threshold {
			matches = append(matches, Match{Record: rec, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Best returns the single highest-scoring match at the configured
// retrieval threshold, or nil when nothing clears it.
func (kb *KnowledgeBase) Best(query string) *Match {
	matches := kb.Search(query, kb.threshold, 1)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// SearchByTopic returns up to limit records indexed under the topic.
func (kb *KnowledgeBase) SearchByTopic(topic string, limit int) []Record {
	positions := kb.idx.topics[strings.ToLower(strings.TrimSpace(topic))]
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}
	out := make([]Record, 0, len(positions))
	for _, pos := range positions {
		out = append(out, kb.records[pos])
	}
	return out
}

// HasKeyword reports whether any record contains the keyword.
func (kb *KnowledgeBase) HasKeyword(word string) bool {
	_, ok := kb.idx.keywords[strings.ToLower(word)]
	return ok
}

// Records returns all records in load order. The caller must not
// modify the returned slice.
func (kb *KnowledgeBase) Records() []Record {
	return kb.records
}

// Stats summarizes the knowledge base contents.
type Stats struct {
	TotalRecords int            `json:"total_records"`
	Topics       map[string]int `json:"topics"`
	Sources      map[string]int `json:"sources"`
	Keywords     int            `json:"keywords"`
	Threshold    float64        `json:"threshold"`
}

func (kb *KnowledgeBase) Stats() Stats {
	topics := make(map[string]int, len(kb.idx.topics))
	for topic, positions := range kb.idx.topics {
		topics[topic] = len(positions)
	}
	sources := make(map[string]int)
	for _, rec := range kb.records {
		sources[rec.Source]++
	}
	return Stats{
		TotalRecords: len(kb.records),
		Topics:       topics,
		Sources:      sources,
		Keywords:     len(kb.idx.keywords),
		Threshold:    kb.threshold,
	}
}
