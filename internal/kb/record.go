package kb

// Record is a single solved problem in the knowledge base.
type Record struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Solution   string `json:"solution"`
	Answer     string `json:"answer,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Match pairs a record with its similarity score against a query.
type Match struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}
