package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/storage/models"
	"github.com/math-tutor/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS solve_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		question TEXT NOT NULL,
		answer TEXT,
		confidence REAL,
		route_taken TEXT,
		component_used TEXT,
		source_info TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_solve_user ON solve_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_solve_created ON solve_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_solve_route ON solve_history(route_taken);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		question_id TEXT,
		question TEXT NOT NULL,
		answer TEXT,
		rating INTEGER NOT NULL,
		comment TEXT,
		corrected_answer TEXT,
		topic TEXT,
		session_id TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_topic ON feedback(topic);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertSolveRecord(record *models.SolveRecord) error {
	query := `
		INSERT INTO solve_history (id, user_id, question, answer, confidence, route_taken,
			component_used, source_info, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.Question,
		record.Answer,
		record.Confidence,
		record.RouteTaken,
		record.ComponentUsed,
		record.SourceInfo,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert solve record: %w", err)
	}

	logger.Info("Solve recorded",
		zap.String("solve_id", record.ID),
		zap.String("route", record.RouteTaken),
		zap.Float64("confidence", record.Confidence),
	)

	return nil
}

func (c *Client) GetSolveHistory(userID string, limit int) ([]models.SolveRecord, error) {
	query := `
		SELECT id, question, answer, confidence, route_taken, component_used, created_at
		FROM solve_history
	`
	args := []interface{}{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get solve history: %w", err)
	}
	defer rows.Close()

	var records []models.SolveRecord
	for rows.Next() {
		var r models.SolveRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.Confidence, &r.RouteTaken, &r.ComponentUsed, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

// RouteCounts aggregates answered questions per route.
func (c *Client) RouteCounts() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT route_taken, COUNT(*) FROM solve_history GROUP BY route_taken`)
	if err != nil {
		return nil, fmt.Errorf("failed to count routes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var route string
		var count int
		if err := rows.Scan(&route, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[route] = count
	}
	return counts, rows.Err()
}

// Append stores a feedback record. Together with All it backs the
// feedback learner.
func (c *Client) Append(record models.FeedbackRecord) error {
	query := `
		INSERT INTO feedback (id, question_id, question, answer, rating, comment,
			corrected_answer, topic, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.QuestionID,
		record.Question,
		record.Answer,
		record.Rating,
		record.Comment,
		record.CorrectedAnswer,
		record.Topic,
		record.SessionID,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("feedback_id", record.ID),
		zap.Int("rating", record.Rating),
	)

	return nil
}

func (c *Client) All() ([]models.FeedbackRecord, error) {
	query := `
		SELECT id, question_id, question, answer, rating, comment, corrected_answer,
			topic, session_id, created_at
		FROM feedback
		ORDER BY created_at ASC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	defer rows.Close()

	var records []models.FeedbackRecord
	for rows.Next() {
		var r models.FeedbackRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.QuestionID, &r.Question, &r.Answer, &r.Rating,
			&r.Comment, &r.CorrectedAnswer, &r.Topic, &r.SessionID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
