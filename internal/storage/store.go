// Package storage persists the outcome of review runs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-gate/internal/core"
)

// ErrNoReview is returned when a pull request has no stored review run yet.
var ErrNoReview = errors.New("no review found")

// Store defines the interface for all database operations.
type Store interface {
	SaveReview(ctx context.Context, record *core.ReviewRecord) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error)
	ListRecoveryTierCounts(ctx context.Context, since time.Time) (map[string]int, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveReview inserts a new review record into the database.
func (s *postgresStore) SaveReview(ctx context.Context, record *core.ReviewRecord) error {
	query := `
		INSERT INTO reviews
			(repo_full_name, pr_number, head_sha, summary, comments_parsed, comments_published, recovery_tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		record.RepoFullName,
		record.PRNumber,
		record.HeadSHA,
		record.Summary,
		record.CommentsParsed,
		record.CommentsPublished,
		record.RecoveryTier,
		time.Now(),
	)
	return err
}

// GetLatestReviewForPR retrieves the most recent review run for a pull request.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, summary, comments_parsed, comments_published, recovery_tier, created_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, repoFullName, prNumber)

	var r core.ReviewRecord
	err := row.Scan(&r.ID, &r.RepoFullName, &r.PRNumber, &r.HeadSHA, &r.Summary,
		&r.CommentsParsed, &r.CommentsPublished, &r.RecoveryTier, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for PR %s#%d", ErrNoReview, repoFullName, prNumber)
		}
		return nil, err
	}
	return &r, nil
}

// ListRecoveryTierCounts aggregates how often each recovery tier was needed
// since the given time. Useful for spotting a model whose output quality is
// drifting.
func (s *postgresStore) ListRecoveryTierCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT recovery_tier, COUNT(*)
		FROM reviews
		WHERE created_at >= $1
		GROUP BY recovery_tier`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		counts[tier] = count
	}
	return counts, rows.Err()
}
