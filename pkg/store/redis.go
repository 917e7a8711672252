package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"wiki-api/pkg/models"
)

// RedisStore keeps each article in a hash at articles:<id> and the ids, in
// insertion order, in the list articles:ids.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreFromClient(rdb), nil
}

func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: Collection}
}

func (s *RedisStore) idsKey() string          { return s.prefix + ":ids" }
func (s *RedisStore) docKey(id string) string { return s.prefix + ":" + id }

func hashValues(id string, a models.Article) []any {
	values := []any{"_id", id}
	if a.Title != "" {
		values = append(values, "title", a.Title)
	}
	if a.Content != "" {
		values = append(values, "content", a.Content)
	}
	return values
}

func fromHash(h map[string]string) models.Article {
	return models.Article{ID: h["_id"], Title: h["title"], Content: h["content"]}
}

func (s *RedisStore) Find(ctx context.Context) ([]models.Article, error) {
	ids, err := s.rdb.LRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list article ids: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, s.docKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}

	articles := make([]models.Article, 0, len(ids))
	for _, cmd := range cmds {
		if h := cmd.Val(); len(h) > 0 {
			articles = append(articles, fromHash(h))
		}
	}
	return articles, nil
}

// firstID returns the id of the first article titled title, or "".
func (s *RedisStore) firstID(ctx context.Context, title string) (string, error) {
	ids, err := s.rdb.LRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("list article ids: %w", err)
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGet(ctx, s.docKey(id), "title")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("load article titles: %w", err)
	}

	for i, cmd := range cmds {
		if t, err := cmd.Result(); err == nil && t == title {
			return ids[i], nil
		}
	}
	return "", nil
}

func (s *RedisStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	id, err := s.firstID(ctx, title)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNotFound
	}
	h, err := s.rdb.HGetAll(ctx, s.docKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if len(h) == 0 {
		return nil, ErrNotFound
	}
	a := fromHash(h)
	return &a, nil
}

func (s *RedisStore) Insert(ctx context.Context, article models.Article) error {
	id := uuid.NewString()
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.docKey(id), hashValues(id, article)...)
		p.RPush(ctx, s.idsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *RedisStore) Replace(ctx context.Context, title string, article models.Article) error {
	id, err := s.firstID(ctx, title)
	if err != nil || id == "" {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.docKey(id))
		p.HSet(ctx, s.docKey(id), hashValues(id, article)...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	id, err := s.firstID(ctx, title)
	if err != nil || id == "" {
		return err
	}
	values := make([]any, 0, 4)
	for k, v := range patch.Fields() {
		values = append(values, k, v)
	}
	if err := s.rdb.HSet(ctx, s.docKey(id), values...).Err(); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteOne(ctx context.Context, title string) error {
	id, err := s.firstID(ctx, title)
	if err != nil || id == "" {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.docKey(id))
		p.LRem(ctx, s.idsKey(), 1, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	ids, err := s.rdb.LRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("list article ids: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.docKey(id))
	}
	keys = append(keys, s.idsKey())
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.rdb.Close()
}
