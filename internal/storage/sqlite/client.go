package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/manovie/backend/internal/storage/models"
	"github.com/manovie/backend/pkg/logger"
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

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sentiment_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		sentiment_score REAL NOT NULL,
		toxicity TEXT NOT NULL,
		toxicity_score REAL NOT NULL,
		score_toxicity REAL NOT NULL DEFAULT 0,
		score_severe_toxicity REAL NOT NULL DEFAULT 0,
		score_insult REAL NOT NULL DEFAULT 0,
		score_threat REAL NOT NULL DEFAULT 0,
		score_profanity REAL NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		sentence_count INTEGER NOT NULL DEFAULT 0,
		analyzed_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_user ON sentiment_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_entries_user_analyzed ON sentiment_entries(user_id, analyzed_at);
	CREATE INDEX IF NOT EXISTS idx_entries_user_created ON sentiment_entries(user_id, created_at);

	CREATE TABLE IF NOT EXISTS login_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		user_agent TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT 'Unknown',
		login_count INTEGER NOT NULL DEFAULT 1,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_logins_user ON login_logs(user_id, timestamp);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertEntry(entry *models.SentimentEntry) error {
	query := `
		INSERT INTO sentiment_entries (id, user_id, text, sentiment, sentiment_score,
			toxicity, toxicity_score, score_toxicity, score_severe_toxicity,
			score_insult, score_threat, score_profanity, word_count, sentence_count,
			analyzed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		entry.ID,
		entry.UserID,
		entry.Text,
		entry.Sentiment,
		entry.SentimentScore,
		entry.Toxicity,
		entry.ToxicityScore,
		entry.CategoryScores.Toxicity,
		entry.CategoryScores.SevereToxicity,
		entry.CategoryScores.Insult,
		entry.CategoryScores.Threat,
		entry.CategoryScores.Profanity,
		entry.WordCount,
		entry.SentenceCount,
		entry.AnalyzedAt.Unix(),
		entry.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	logger.Debug("Entry inserted",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", entry.UserID),
		zap.String("sentiment", entry.Sentiment),
	)
	return nil
}

// EntriesSince returns a user's entries with analyzed_at at or after the
// cutoff, newest first.
func (c *Client) EntriesSince(userID string, since time.Time) ([]models.SentimentEntry, error) {
	query := `
		SELECT id, user_id, text, sentiment, sentiment_score, toxicity, toxicity_score,
			score_toxicity, score_severe_toxicity, score_insult, score_threat,
			score_profanity, word_count, sentence_count, analyzed_at, created_at
		FROM sentiment_entries
		WHERE user_id = ? AND analyzed_at >= ?
		ORDER BY analyzed_at DESC
	`

	rows, err := c.db.Query(query, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SentimentEntry
	for rows.Next() {
		var e models.SentimentEntry
		var analyzedAt, createdAt int64

		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Text,
			&e.Sentiment,
			&e.SentimentScore,
			&e.Toxicity,
			&e.ToxicityScore,
			&e.CategoryScores.Toxicity,
			&e.CategoryScores.SevereToxicity,
			&e.CategoryScores.Insult,
			&e.CategoryScores.Threat,
			&e.CategoryScores.Profanity,
			&e.WordCount,
			&e.SentenceCount,
			&analyzedAt,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		e.AnalyzedAt = time.Unix(analyzedAt, 0)
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (c *Client) CountEntries(userID string) (int, error) {
	var count int
	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM sentiment_entries WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// TrendBuckets groups a user's entries from the cutoff onward by calendar
// day and averages every score column per day. All ranges bucket by day,
// so a year window can return a long sparse series.
func (c *Client) TrendBuckets(userID string, since time.Time) ([]models.TrendBucket, error) {
	query := `
		SELECT strftime('%Y-%m-%d', analyzed_at, 'unixepoch') AS day,
			AVG(sentiment_score),
			AVG(toxicity_score),
			AVG(score_toxicity),
			AVG(score_severe_toxicity),
			AVG(score_insult),
			AVG(score_threat),
			AVG(score_profanity),
			COUNT(*)
		FROM sentiment_entries
		WHERE user_id = ? AND analyzed_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := c.db.Query(query, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get trend buckets: %w", err)
	}
	defer rows.Close()

	var buckets []models.TrendBucket
	for rows.Next() {
		var b models.TrendBucket

		err := rows.Scan(
			&b.Date,
			&b.AvgSentiment,
			&b.AvgToxicity,
			&b.CategoryScores.Toxicity,
			&b.CategoryScores.SevereToxicity,
			&b.CategoryScores.Insult,
			&b.CategoryScores.Threat,
			&b.CategoryScores.Profanity,
			&b.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

var moodEmojis = map[string]string{
	"positive": "🙂",
	"neutral":  "😐",
	"negative": "🙁",
}

// MoodSummary groups all of a user's entries by sentiment label. The label
// with the most entries wins; a tie resolves by label ascending. Averages
// are computed over the winning group only. Returns nil with no error when
// the user has no entries.
func (c *Client) MoodSummary(userID string) (*models.MoodSummary, error) {
	query := `
		SELECT sentiment,
			COUNT(*) AS cnt,
			AVG(sentiment_score),
			AVG(toxicity_score),
			AVG(score_toxicity),
			AVG(score_severe_toxicity),
			AVG(score_insult),
			AVG(score_threat),
			AVG(score_profanity)
		FROM sentiment_entries
		WHERE user_id = ?
		GROUP BY sentiment
		ORDER BY cnt DESC, sentiment ASC
	`

	rows, err := c.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood summary: %w", err)
	}
	defer rows.Close()

	var summary *models.MoodSummary
	counts := make(map[string]int)

	for rows.Next() {
		var sentiment string
		var cnt int
		var avgSentiment, avgToxicity float64
		var scores models.CategoryScores

		err := rows.Scan(
			&sentiment,
			&cnt,
			&avgSentiment,
			&avgToxicity,
			&scores.Toxicity,
			&scores.SevereToxicity,
			&scores.Insult,
			&scores.Threat,
			&scores.Profanity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		counts[sentiment] = cnt

		if summary == nil {
			emoji, ok := moodEmojis[sentiment]
			if !ok {
				emoji = "🤖"
			}
			summary = &models.MoodSummary{
				MostFrequentMood: sentiment,
				Emoji:            emoji,
				AvgSentiment:     avgSentiment,
				AvgToxicity:      avgToxicity,
				CategoryScores:   scores,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	if summary != nil {
		summary.Counts = counts
	}

	return summary, nil
}

// SentimentRange returns the entry count and min/max sentiment score for
// entries created at or after the cutoff.
func (c *Client) SentimentRange(userID string, since time.Time) (int, float64, float64, error) {
	query := `
		SELECT COUNT(*), MIN(sentiment_score), MAX(sentiment_score)
		FROM sentiment_entries
		WHERE user_id = ? AND created_at >= ?
	`

	var count int
	var min, max sql.NullFloat64

	err := c.db.QueryRow(query, userID, since.Unix()).Scan(&count, &min, &max)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get sentiment range: %w", err)
	}

	return count, min.Float64, max.Float64, nil
}

// RecordLogin upserts the user's login log for the calendar day of `at`:
// the first login of the day inserts a row, repeats increment its counter.
func (c *Client) RecordLogin(userID, ip, userAgent, location string, at time.Time) error {
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())

	var id int64
	err := c.db.QueryRow(
		`SELECT id FROM login_logs WHERE user_id = ? AND timestamp >= ? ORDER BY timestamp DESC LIMIT 1`,
		userID, dayStart.Unix(),
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		_, err = c.db.Exec(
			`INSERT INTO login_logs (user_id, ip_address, user_agent, location, login_count, timestamp)
			VALUES (?, ?, ?, ?, 1, ?)`,
			userID, ip, userAgent, location, at.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert login log: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up login log: %w", err)
	default:
		_, err = c.db.Exec(
			`UPDATE login_logs SET login_count = login_count + 1 WHERE id = ?`, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update login log: %w", err)
		}
	}

	return nil
}

func (c *Client) LoginLogs(userID string) ([]models.LoginLog, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, location, login_count, timestamp
		FROM login_logs
		WHERE user_id = ?
		ORDER BY timestamp DESC
	`

	rows, err := c.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get login logs: %w", err)
	}
	defer rows.Close()

	var logs []models.LoginLog
	for rows.Next() {
		var l models.LoginLog
		var ts int64

		err := rows.Scan(&l.ID, &l.UserID, &l.IPAddress, &l.UserAgent, &l.Location, &l.LoginCount, &ts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		l.Timestamp = time.Unix(ts, 0)
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
