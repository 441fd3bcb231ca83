package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/pkg/logger"
	"github.com/math-tutor/backend/pkg/utils"
)

// rawRecord tolerates the field aliases found across datasets:
// a question may arrive as "problem", and a solution as "explanation"
// or just "answer".
type rawRecord struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	Explanation string `json:"explanation"`
	Answer      string `json:"answer"`
	Topic       string `json:"topic"`
	Difficulty  string `json:"difficulty"`
	Source      string `json:"source"`
}

func (r rawRecord) normalize(source string) (kb.Record, bool) {
	question := strings.TrimSpace(r.Question)
	if question == "" {
		question = strings.TrimSpace(r.Problem)
	}
	solution := strings.TrimSpace(r.Solution)
	if solution == "" {
		solution = strings.TrimSpace(r.Explanation)
	}
	if solution == "" {
		solution = strings.TrimSpace(r.Answer)
	}
	if question == "" || solution == "" {
		return kb.Record{}, false
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = utils.ShortID(question)
	}
	if r.Source != "" {
		source = r.Source
	}
	return kb.Record{
		ID:         id,
		Question:   question,
		Solution:   solution,
		Answer:     strings.TrimSpace(r.Answer),
		Topic:      strings.ToLower(strings.TrimSpace(r.Topic)),
		Difficulty: strings.ToLower(strings.TrimSpace(r.Difficulty)),
		Source:     source,
	}, true
}

// LoadDir reads every .json file in dir. Each file holds either a JSON
// array of records or a single record object. Malformed files are
// logged and skipped rather than failing the load.
func LoadDir(dir string) ([]kb.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory %s: %w", dir, err)
	}

	var records []kb.Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		loaded, err := loadFile(path)
		if err != nil {
			logger.Warn("skipping malformed dataset file",
				zap.String("file", path), zap.Error(err))
			continue
		}
		records = append(records, loaded...)
	}

	logger.Info("datasets loaded", zap.String("dir", dir), zap.Int("records", len(records)))
	return records, nil
}

func loadFile(path string) ([]kb.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSuffix(filepath.Base(path), ".json")

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		var single rawRecord
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("not a record array or object: %w", err)
		}
		raws = []rawRecord{single}
	}

	records := make([]kb.Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := raw.normalize(source)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Seed returns the built-in basic math problems used when no dataset
// directory is configured. They flow through the same normalization as
// records loaded from disk.
func Seed() []kb.Record {
	records := make([]kb.Record, 0, len(seedRecords))
	for _, raw := range seedRecords {
		rec, ok := raw.normalize("builtin")
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

var seedRecords = []rawRecord{
	{Question: "What is 2+2?", Solution: "2 + 2 = 4", Answer: "4", Topic: "arithmetic", Difficulty: "easy"},
	{Question: "What is 10 - 4?", Solution: "10 - 4 = 6", Answer: "6", Topic: "arithmetic", Difficulty: "easy"},
	{Question: "What is 7 * 8?", Solution: "7 * 8 = 56", Answer: "56", Topic: "arithmetic", Difficulty: "easy"},
	{Question: "What is 100 / 4?", Solution: "100 / 4 = 25", Answer: "25", Topic: "arithmetic", Difficulty: "easy"},
	{Question: "Solve x + 3 = 7", Solution: "Subtract 3 from both sides: x = 7 - 3 = 4", Answer: "x = 4", Topic: "algebra", Difficulty: "easy"},
	{Question: "Solve 2x = 10", Solution: "Divide both sides by 2: x = 10 / 2 = 5", Answer: "x = 5", Topic: "algebra", Difficulty: "easy"},
	{Question: "Factor x^2 - 4", Solution: "x^2 - 4 is a difference of squares: (x - 2)(x + 2)", Answer: "(x - 2)(x + 2)", Topic: "algebra", Difficulty: "medium"},
	{Question: "Find the derivative of x^2", Solution: "By the power rule, d/dx x^2 = 2x", Answer: "2x", Topic: "calculus", Difficulty: "medium"},
	{Question: "Find the integral of 2x", Solution: "The integral of 2x dx is x^2 + C", Answer: "x^2 + C", Topic: "calculus", Difficulty: "medium"},
	{Question: "What is the area of a circle with radius 3?", Solution: "Area = pi * r^2 = pi * 9 = 9pi", Answer: "9pi", Topic: "geometry", Difficulty: "easy"},
	{Question: "What is the Pythagorean theorem?", Solution: "For a right triangle with legs a, b and hypotenuse c: a^2 + b^2 = c^2", Answer: "a^2 + b^2 = c^2", Topic: "geometry", Difficulty: "easy"},
	{Question: "What is the mean of 2, 4, 6, 8?", Solution: "Mean = (2 + 4 + 6 + 8) / 4 = 20 / 4 = 5", Answer: "5", Topic: "statistics", Difficulty: "easy"},
}
