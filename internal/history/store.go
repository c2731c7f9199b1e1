// Package history provides the durable, append-only ledger of
// enhancement transactions and their feedback ratings. Records are
// indexed by a monotonically increasing integer id assigned at append
// time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Rating bounds for feedback.
const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrRecordNotFound is returned for an id the ledger has never issued.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRating is returned for a rating outside [MinRating, MaxRating].
	ErrInvalidRating = errors.New("invalid rating")
)

// Record is one processed enhancement transaction. Rating is the only
// field mutated after creation; re-rating overwrites.
type Record struct {
	ID             int64     `json:"id"`
	OriginalPrompt string    `json:"original_prompt"`
	PromptType     string    `json:"prompt_type"`
	EnhancedPrompt string    `json:"enhanced_prompt"`
	Provider       string    `json:"provider"`
	Response       string    `json:"response"`
	// Enhanced is false when the meta-prompt call failed or was bypassed
	// and the original prompt was sent downstream unmodified.
	Enhanced  bool      `json:"enhanced"`
	CreatedAt time.Time `json:"created_at"`
	Rating    *int      `json:"rating,omitempty"`
}

// Store is the SQLite-backed ledger. The append path is serialized by a
// mutex so concurrent appends receive distinct, contiguous ids; reads
// need no coordination.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) a ledger at the given database path.
// Prior records survive restarts; the next id continues from the
// durable maximum rather than restarting at one.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS enhancements (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		original_prompt TEXT NOT NULL,
		prompt_type     TEXT NOT NULL,
		enhanced_prompt TEXT NOT NULL,
		provider        TEXT NOT NULL,
		response        TEXT NOT NULL,
		enhanced        INTEGER NOT NULL,
		created_at      TEXT NOT NULL,
		rating          INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_enhancements_created ON enhancements(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append persists a record and returns its assigned id. The caller
// never supplies an id; identity belongs to the ledger.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO enhancements
			(original_prompt, prompt_type, enhanced_prompt, provider, response, enhanced, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.OriginalPrompt,
		rec.PromptType,
		rec.EnhancedPrompt,
		rec.Provider,
		rec.Response,
		rec.Enhanced,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read record id: %w", err)
	}
	return id, nil
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, original_prompt, prompt_type, enhanced_prompt, provider, response, enhanced, created_at, rating
		 FROM enhancements WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original_prompt, prompt_type, enhanced_prompt, provider, response, enhanced, created_at, rating
		 FROM enhancements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Rate sets the feedback rating on a record. Re-rating overwrites the
// previous value; an out-of-range rating mutates nothing.
func (s *Store) Rate(ctx context.Context, id int64, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidRating, rating, MinRating, MaxRating)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE enhancements SET rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rating update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var rec Record
	var createdAt string
	var rating sql.NullInt64

	err := sc.Scan(
		&rec.ID,
		&rec.OriginalPrompt,
		&rec.PromptType,
		&rec.EnhancedPrompt,
		&rec.Provider,
		&rec.Response,
		&rec.Enhanced,
		&createdAt,
		&rating,
	)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if rating.Valid {
		r := int(rating.Int64)
		rec.Rating = &r
	}
	return &rec, nil
}
