package models

import "time"

// SolveRecord is one answered question in the history log.
type SolveRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id,omitempty"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Confidence    float64   `json:"confidence"`
	RouteTaken    string    `json:"route_taken"`
	ComponentUsed string    `json:"component_used"`
	SourceInfo    string    `json:"source_info,omitempty"`
	LatencyMS     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedbackRecord is a user rating of an answer, 1 through 5.
type FeedbackRecord struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"question_id,omitempty"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer,omitempty"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment,omitempty"`
	CorrectedAnswer string    `json:"corrected_answer,omitempty"`
	Topic           string    `json:"topic,omitempty"`
	SessionID       string    `json:"session_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
