// Package store holds the document stores the article API can run on.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"wiki-api/pkg/models"
)

// ErrNotFound is returned by FindOne when no article has the requested title.
var ErrNotFound = errors.New("article not found")

// Collection is the name of the articles collection, table or key prefix.
const Collection = "articles"

// Store is the document store behind the article handlers. Titles are not
// unique: every title-scoped operation acts on the first match in the
// store's natural order, and a title without a match is not an error.
type Store interface {
	Find(ctx context.Context) ([]models.Article, error)
	FindOne(ctx context.Context, title string) (*models.Article, error)
	Insert(ctx context.Context, article models.Article) error
	// Replace overwrites the whole matched document.
	Replace(ctx context.Context, title string, article models.Article) error
	// Update merges only the fields present in the patch.
	Update(ctx context.Context, title string, patch models.ArticlePatch) error
	DeleteOne(ctx context.Context, title string) error
	DeleteAll(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options tune backends that need more than the connection string.
type Options struct {
	DynamoRegion   string
	DynamoEndpoint string
}

// Backend returns the backend name for a connection string.
func Backend(rawURL string) (string, error) {
	scheme, _, ok := strings.Cut(rawURL, ":")
	if !ok || scheme == "" {
		return "", fmt.Errorf("store url %q has no scheme", rawURL)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return "mongodb", nil
	case "redis", "rediss":
		return "redis", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "sqlite", "sqlite3", "file":
		return "sqlite", nil
	case "dynamodb":
		return "dynamodb", nil
	case "memory":
		return "memory", nil
	default:
		return "", fmt.Errorf("unsupported store scheme %q", scheme)
	}
}

// Open connects to the store named by rawURL.
func Open(ctx context.Context, rawURL string, opts Options) (Store, error) {
	backend, err := Backend(rawURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "mongodb":
		return NewMongoStore(ctx, rawURL)
	case "redis":
		return NewRedisStore(ctx, rawURL)
	case "postgres":
		return NewPostgresStore(ctx, rawURL)
	case "sqlite":
		return NewSQLiteStore(ctx, sqlitePath(rawURL))
	case "dynamodb":
		return NewDynamoStore(ctx, dynamoTable(rawURL), opts.DynamoRegion, opts.DynamoEndpoint)
	default:
		return NewMemoryStore(), nil
	}
}

// sqlitePath turns sqlite:///var/wiki.db or sqlite://wiki.db into a driver DSN.
func sqlitePath(rawURL string) string {
	if strings.HasPrefix(rawURL, "file:") {
		return rawURL
	}
	_, rest, _ := strings.Cut(rawURL, ":")
	rest = strings.TrimPrefix(rest, "//")
	if rest == "" {
		return ":memory:"
	}
	return rest
}

func dynamoTable(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Collection
	}
	return u.Host
}
