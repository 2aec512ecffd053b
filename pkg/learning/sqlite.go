package learning

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"augur-hq/augur/pkg/analyzer"
)

// SQLiteStore persists learning records in a SQLite database. It is
// suitable for single-instance deployments; WAL mode keeps readers
// from blocking the single writer.
type SQLiteStore struct {
	db  *sql.DB
	cap int
	now func() time.Time
}

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxRecords caps the stored trace; adding past the cap deletes
	// the oldest records. <= 0 uses DefaultCapacity.
	MaxRecords int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if necessary) a learning database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("learning: db path cannot be empty")
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultCapacity
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("learning: open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db, cap: cfg.MaxRecords, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("learning: initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS learning_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		analysis_type TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL,
		success INTEGER NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		feedback TEXT,
		metadata TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_learning_user ON learning_records(user_id);
	CREATE INDEX IF NOT EXISTS idx_learning_created ON learning_records(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Add(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	var feedback any
	if rec.Feedback != nil {
		data, err := json.Marshal(rec.Feedback)
		if err != nil {
			return fmt.Errorf("learning: marshal feedback: %w", err)
		}
		feedback = string(data)
	}
	var metadata any
	if rec.Metadata != nil {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("learning: marshal metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_records
			(id, user_id, analysis_type, action, confidence, success, failure_reason, feedback, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.AnalysisType), string(rec.Action),
		rec.Confidence, boolToInt(rec.Success), rec.FailureReason,
		feedback, metadata, rec.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("learning: insert record: %w", err)
	}
	return s.enforceCap(ctx)
}

// enforceCap deletes the oldest records beyond the cap.
func (s *SQLiteStore) enforceCap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM learning_records WHERE id IN (
			SELECT id FROM learning_records
			ORDER BY created_at DESC, id DESC
			LIMIT -1 OFFSET ?
		)`, s.cap)
	if err != nil {
		return fmt.Errorf("learning: enforce record cap: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ByUser(ctx context.Context, userID string, limit int) ([]*Record, error) {
	query := `
		SELECT id, user_id, analysis_type, action, confidence, success, failure_reason, feedback, metadata, created_at
		FROM learning_records WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("learning: query by user: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteStore) All(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, analysis_type, action, confidence, success, failure_reason, feedback, metadata, created_at
		FROM learning_records
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("learning: query all: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("learning: count records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM learning_records WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("learning: prune records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("learning: prune rows affected: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		var (
			rec       Record
			atype     string
			action    string
			success   int
			feedback  sql.NullString
			metadata  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &atype, &action, &rec.Confidence,
			&success, &rec.FailureReason, &feedback, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("learning: scan record: %w", err)
		}
		rec.AnalysisType = analyzer.AnalysisType(atype)
		rec.Action = analyzer.ActionType(action)
		rec.Success = success != 0
		rec.Timestamp = time.Unix(0, createdAt)
		if feedback.Valid && feedback.String != "" {
			var fb Feedback
			if err := json.Unmarshal([]byte(feedback.String), &fb); err != nil {
				return nil, fmt.Errorf("learning: unmarshal feedback: %w", err)
			}
			rec.Feedback = &fb
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("learning: unmarshal metadata: %w", err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
