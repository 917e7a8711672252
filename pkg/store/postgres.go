package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wiki-api/pkg/models"
)

// PgxPool is the subset of *pgxpool.Pool the postgres store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const (
	pgCreateTable = `CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	doc JSONB NOT NULL DEFAULT '{}'::jsonb
)`
	pgFirstByTitle = `SELECT id FROM articles WHERE doc->>'title' = $1 ORDER BY id LIMIT 1`
	pgSelectAll    = `SELECT id, doc FROM articles ORDER BY id`
	pgSelectOne    = `SELECT id, doc FROM articles WHERE doc->>'title' = $1 ORDER BY id LIMIT 1`
	pgInsert       = `INSERT INTO articles (doc) VALUES ($1::jsonb)`
	pgReplace      = `UPDATE articles SET doc = $2::jsonb WHERE id = (` + pgFirstByTitle + `)`
	pgMerge        = `UPDATE articles SET doc = doc || $2::jsonb WHERE id = (` + pgFirstByTitle + `)`
	pgDeleteOne    = `DELETE FROM articles WHERE id = (` + pgFirstByTitle + `)`
	pgDeleteAll    = `DELETE FROM articles`
)

// PostgresStore keeps each article as a JSONB document in the articles table.
type PostgresStore struct {
	db PgxPool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	s, err := NewPostgresStoreFromPool(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromPool creates the articles table if needed.
func NewPostgresStoreFromPool(ctx context.Context, db PgxPool) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, pgCreateTable); err != nil {
		return nil, fmt.Errorf("create articles table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Find(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.Query(ctx, pgSelectAll)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a, err := decodeDoc(id, raw)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	return articles, nil
}

func (s *PostgresStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	var (
		id  int64
		raw []byte
	)
	err := s.db.QueryRow(ctx, pgSelectOne, title).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	a, err := decodeDoc(id, raw)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) Insert(ctx context.Context, article models.Article) error {
	doc, err := encodeDoc(article)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, pgInsert, doc); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, title string, article models.Article) error {
	doc, err := encodeDoc(article)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, pgReplace, title, doc); err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	doc, err := encodePatch(patch)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, pgMerge, title, doc); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteOne(ctx context.Context, title string) error {
	if _, err := s.db.Exec(ctx, pgDeleteOne, title); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgDeleteAll); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}
