package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads force-push events from the Postgres event store. Only this
// package and the stars write-back touch *pgxpool.Pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool. Caller must close the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against the configured DSN and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("event store unreachable: %w", err)
	}
	return pool, nil
}

// Gather loads and validates all force-push events recorded for org.
func (s *Store) Gather(ctx context.Context, org string) ([]Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT repo_org, repo_name, before, timestamp FROM pushes WHERE repo_org = $1`, org)
	if err != nil {
		return nil, fmt.Errorf("failed querying event store: %w", err)
	}
	defer rows.Close()

	var records []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Org, &r.Repo, &r.Before, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed scanning event row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading event rows: %w", err)
	}

	return BuildTargets(org, records)
}

// DistinctRepos returns the unique (org, repo) pairs in the event store for
// org. Used by the star-count enrichment pass.
func (s *Store) DistinctRepos(ctx context.Context, org string) ([][2]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT repo_org, repo_name FROM pushes WHERE repo_org = $1`, org)
	if err != nil {
		return nil, fmt.Errorf("failed querying event store: %w", err)
	}
	defer rows.Close()

	var repos [][2]string
	for rows.Next() {
		var org, name string
		if err := rows.Scan(&org, &name); err != nil {
			return nil, fmt.Errorf("failed scanning repo row: %w", err)
		}
		repos = append(repos, [2]string{org, name})
	}
	return repos, rows.Err()
}

// UpdateStars writes a repository's star count back onto its event rows.
func (s *Store) UpdateStars(ctx context.Context, org, repo string, stars int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pushes SET stars = $1 WHERE repo_org = $2 AND repo_name = $3`, stars, org, repo)
	return err
}
