package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// ErrNotFound は指定した ID のプロジェクトが保存されていないことを示します。
var ErrNotFound = errors.New("project not found")

// Store はプロジェクトの永続化先です。
type Store interface {
	Save(ctx context.Context, s *State) error
	Load(ctx context.Context, id string) (*State, error)
}

const createProjectsTable = `CREATE TABLE IF NOT EXISTS previz_projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore はプロジェクトを JSONB として PostgreSQL に保存します。
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore は接続を確立し、テーブルがなければ作成します。
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	if connString == "" {
		return nil, fmt.Errorf("database url is required")
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createProjectsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create projects table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close は接続プールを閉じます。
func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Save は現在のスナップショットを保存します。
func (p *PostgresStore) Save(ctx context.Context, s *State) error {
	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO previz_projects (id, title, version, data, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, version = EXCLUDED.version, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		s.ID(), snap.Title, s.Version(), data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", s.ID(), err)
	}
	return nil
}

// Load は保存済みのプロジェクトを読み込みます。
func (p *PostgresStore) Load(ctx context.Context, id string) (*State, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, "SELECT data FROM previz_projects WHERE id = $1", id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}

	var analysis domain.ScriptAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return Restore(id, analysis), nil
}
