package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"wiki-api/pkg/models"
)

const (
	sqliteCreateTable = `CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	doc TEXT NOT NULL DEFAULT '{}'
)`
	sqliteFirstByTitle = `SELECT id FROM articles WHERE json_extract(doc, '$.title') = ? ORDER BY id LIMIT 1`
	sqliteSelectAll    = `SELECT id, doc FROM articles ORDER BY id`
	sqliteSelectOne    = `SELECT id, doc FROM articles WHERE json_extract(doc, '$.title') = ? ORDER BY id LIMIT 1`
	sqliteInsert       = `INSERT INTO articles (doc) VALUES (json(?))`
	sqliteReplace      = `UPDATE articles SET doc = json(?) WHERE id = (` + sqliteFirstByTitle + `)`
	sqliteMerge        = `UPDATE articles SET doc = json_patch(doc, ?) WHERE id = (` + sqliteFirstByTitle + `)`
	sqliteDeleteOne    = `DELETE FROM articles WHERE id = (` + sqliteFirstByTitle + `)`
	sqliteDeleteAll    = `DELETE FROM articles`
)

// SQLiteStore keeps each article as a JSON document in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteCreateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create articles table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Find(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectAll)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a, err := decodeDoc(id, []byte(raw))
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

func (s *SQLiteStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	var (
		id  int64
		raw string
	)
	err := s.db.QueryRowContext(ctx, sqliteSelectOne, title).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	a, err := decodeDoc(id, []byte(raw))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, article models.Article) error {
	doc, err := encodeDoc(article)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteInsert, doc); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Replace(ctx context.Context, title string, article models.Article) error {
	doc, err := encodeDoc(article)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteReplace, doc, title); err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	doc, err := encodePatch(patch)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteMerge, doc, title); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteOne(ctx context.Context, title string) error {
	if _, err := s.db.ExecContext(ctx, sqliteDeleteOne, title); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteDeleteAll); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
