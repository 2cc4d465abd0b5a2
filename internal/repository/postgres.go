package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrQueryFailed marks a property store failure the caller should degrade on
var ErrQueryFailed = errors.New("property query failed")

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewRepository wraps an existing connection pool
func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping verifies the database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindProperties executes a query built by BuildPropertyQuery
func (r *PostgresRepository) FindProperties(ctx context.Context, q PropertyQuery) ([]model.PropertySummary, error) {
	properties := []model.PropertySummary{}
	if err := r.db.SelectContext(ctx, &properties, q.SQL(), q.QueryArgs()...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return properties, nil
}

// GetPropertyByID retrieves a single verified property, or nil when none matches
func (r *PostgresRepository) GetPropertyByID(ctx context.Context, id string) (*model.PropertySummary, error) {
	var property model.PropertySummary
	query := fmt.Sprintf(`
		SELECT
			%s
		FROM properties
		WHERE id = $1 AND status = $2 AND is_verified = $3
	`, propertyColumns)
	err := r.db.GetContext(ctx, &property, query, id, StatusVerified, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return &property, nil
}
