package guard

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

// Verdict classifies validated content.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictBlocked  Verdict = "blocked"
	VerdictFlagged  Verdict = "flagged"
)

// Result is the outcome of a validation pass.
type Result struct {
	Approved bool    `json:"approved"`
	Verdict  Verdict `json:"result"`
	Message  string  `json:"message"`
	Reason   string  `json:"reason"`
}

const maxInputLength = 5000

var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(add|subtract|multiply|divide|sum|difference|product|quotient)\b`),
	regexp.MustCompile(`\b(solve|equation|variable|coefficient|polynomial|factor)\b`),
	regexp.MustCompile(`\b(derivative|integral|limit|function|graph|slope)\b`),
	regexp.MustCompile(`\b(triangle|circle|angle|area|perimeter|volume)\b`),
	regexp.MustCompile(`\b(mean|median|mode|probability|statistics|data)\b`),
	regexp.MustCompile(`\b(formula|theorem|proof|calculate|compute|evaluate)\b`),
}

// Symbols carry half the weight of keyword matches.
var mathSymbols = []*regexp.Regexp{
	regexp.MustCompile(`[+\-*/=<>]`),
	regexp.MustCompile(`\b[xyz]\b`),
	regexp.MustCompile(`\d+\.?\d*`),
	regexp.MustCompile(`\([^)]+\)`),
	regexp.MustCompile(`\^|\*\*`),
}

var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(violence|harm|hurt|damage|destroy|kill)\b`),
	regexp.MustCompile(`\b(sexual|adult|explicit|inappropriate)\b`),
	regexp.MustCompile(`\b(hack|cheat|steal|illegal|fraud)\b`),
	regexp.MustCompile(`\b(politics|religion|gossip|celebrity)\b`),
}

var educationalIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\b(step|solution|answer|explanation|because|therefore|thus|hence)\b`),
	regexp.MustCompile(`\b(first|second|third|next|finally)\b`),
	regexp.MustCompile(`\b(substitute|simplify|solve|calculate|evaluate)\b`),
}

var reasoningIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\b(given|let|assume|suppose|if|then|when|where)\b`),
	regexp.MustCompile(`\b(equation|formula|rule|property|theorem)\b`),
	regexp.MustCompile(`[=<>]`),
}

// Validator filters questions and answers for mathematical education
// appropriateness. It is stateless and safe for concurrent use.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateInput checks that a question is non-empty, within the length
// limit, free of blocked content and recognizably mathematical.
func (v *Validator) ValidateInput(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))

	if lower == "" {
		return Result{Verdict: VerdictBlocked, Message: "Empty input not allowed", Reason: "empty_input"}
	}
	if len(text) > maxInputLength {
		return Result{Verdict: VerdictBlocked, Message: "Input too long (max 5000 characters)", Reason: "length_limit"}
	}

	for _, pattern := range blockedPatterns {
		if pattern.MatchString(lower) {
			logger.Warn("blocked question content", zap.String("pattern", pattern.String()))
			return Result{Verdict: VerdictBlocked, Message: "Inappropriate content detected", Reason: "blocked_content"}
		}
	}

	score := 0.0
	for _, pattern := range mathPatterns {
		score += float64(len(pattern.FindAllString(lower, -1)))
	}
	for _, pattern := range mathSymbols {
		score += float64(len(pattern.FindAllString(text, -1))) * 0.5
	}

	switch {
	case score >= 2:
		return Result{Approved: true, Verdict: VerdictApproved, Message: "Mathematical content approved", Reason: "approved_math"}
	case score >= 1:
		return Result{Approved: true, Verdict: VerdictApproved, Message: "Educational content detected", Reason: "educational_content"}
	default:
		return Result{
			Verdict: VerdictFlagged,
			Message: "No clear mathematical content detected. Please ask a mathematics-related question.",
			Reason:  "non_mathematical",
		}
	}
}

// ValidateOutput checks that an answer carries educational structure.
// Weak answers are flagged, not blocked, so the caller can still serve
// them with a lower confidence.
func (v *Validator) ValidateOutput(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))

	if lower == "" {
		return Result{Verdict: VerdictBlocked, Message: "Empty output not allowed", Reason: "empty_output"}
	}

	score := 0
	for _, pattern := range educationalIndicators {
		score += len(pattern.FindAllString(lower, -1))
	}
	for _, pattern := range reasoningIndicators {
		score += len(pattern.FindAllString(lower, -1))
	}

	switch {
	case score >= 5:
		return Result{Approved: true, Verdict: VerdictApproved, Message: "Educational output approved", Reason: "educational_output"}
	case score >= 2:
		return Result{Approved: true, Verdict: VerdictApproved, Message: "Basic educational content", Reason: "basic_educational"}
	default:
		return Result{Verdict: VerdictFlagged, Message: "Output lacks clear educational structure", Reason: "weak_educational"}
	}
}

// Suggestions lists ways to improve a weak answer.
func (v *Validator) Suggestions(text string) []string {
	var out []string
	lower := strings.ToLower(text)

	if !strings.Contains(lower, "step") {
		out = append(out, "Consider breaking the solution into clear steps")
	}
	if !strings.Contains(lower, "because") && !strings.Contains(lower, "therefore") {
		out = append(out, "Add explanations for why each step is taken")
	}
	if !regexp.MustCompile(`[=<>]`).MatchString(text) {
		out = append(out, "Include mathematical equations or relationships")
	}
	if len(text) < 50 {
		out = append(out, "Provide more detailed explanation")
	}
	return out
}
