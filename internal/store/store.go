package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the database handle. It is constructed once at startup and
// injected into the services that need it.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to the database and tunes the connection pool.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing handle. Used by tests.
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema. Statements are idempotent
// (CREATE TABLE IF NOT EXISTS), so running at every startup is safe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection.
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// classifyErr maps low-level failures onto the domain taxonomy. Domain
// sentinels pass through untouched; everything that smells like transport,
// lock or transaction trouble becomes StoreUnavailable (retryable).
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, models.ErrInvalidCart),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrSettingNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone),
		errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected,
		// 55P03 lock_not_available, class 08 connection errors.
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return err
	}

	// Anything else is surfaced as-is and reported as an unknown failure
	// by the API layer. The transaction has been rolled back either way.
	return err
}
