package kb

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Tokenize lowercases the input and extracts word tokens. Duplicates
// are preserved; callers that need a set build one themselves.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// TokenSet returns the unique tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// index maps keywords and topics to record positions. It is built once
// when the knowledge base loads and never mutated afterwards, so reads
// need no locking.
type index struct {
	keywords map[string][]int
	topics   map[string][]int
}

func buildIndex(records []Record) *index {
	idx := &index{
		keywords: make(map[string][]int),
		topics:   make(map[string][]int),
	}
	for i, rec := range records {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(rec.Question + " " + rec.Solution) {
			if len(tok) <= 2 {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			idx.keywords[tok] = append(idx.keywords[tok], i)
		}
		if topic := strings.ToLower(strings.TrimSpace(rec.Topic)); topic != "" {
			idx.topics[topic] = append(idx.topics[topic], i)
		}
	}
	return idx
}
