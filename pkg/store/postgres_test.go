package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-api/pkg/models"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec(regexp.QuoteMeta(pgCreateTable)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	s, err := NewPostgresStoreFromPool(context.Background(), mock)
	require.NoError(t, err)
	return s, mock
}

func TestPostgresStore_Find(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(pgSelectAll)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doc"}).
			AddRow(int64(1), []byte(`{"title":"Intro","content":"Hello"}`)).
			AddRow(int64(2), []byte(`{"title":"REST"}`)))

	articles, err := s.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Article{
		{ID: "1", Title: "Intro", Content: "Hello"},
		{ID: "2", Title: "REST"},
	}, articles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindEmpty(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(pgSelectAll)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doc"}))

	articles, err := s.Find(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestPostgresStore_FindOne(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, mock := newMockPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(pgSelectOne)).
			WithArgs("Intro").
			WillReturnRows(pgxmock.NewRows([]string{"id", "doc"}).
				AddRow(int64(7), []byte(`{"title":"Intro","content":"Hello"}`)))

		a, err := s.FindOne(ctx, "Intro")
		require.NoError(t, err)
		assert.Equal(t, &models.Article{ID: "7", Title: "Intro", Content: "Hello"}, a)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(pgSelectOne)).
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"id", "doc"}))

		_, err := s.FindOne(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(pgSelectOne)).
			WithArgs("Intro").
			WillReturnError(errors.New("connection reset"))

		_, err := s.FindOne(ctx, "Intro")
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresStore_Writes(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta(pgInsert)).
		WithArgs(`{"title":"Intro","content":"Hello"}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(pgReplace)).
		WithArgs("Intro", `{"title":"T2"}`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(pgMerge)).
		WithArgs("T2", `{"content":"Hi"}`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(pgDeleteOne)).
		WithArgs("T2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(pgDeleteAll)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, s.Insert(ctx, models.Article{Title: "Intro", Content: "Hello"}))
	require.NoError(t, s.Replace(ctx, "Intro", models.Article{Title: "T2"}))
	require.NoError(t, s.Update(ctx, "T2", models.ArticlePatch{Content: strPtr("Hi")}))
	require.NoError(t, s.Update(ctx, "T2", models.ArticlePatch{}))
	require.NoError(t, s.DeleteOne(ctx, "T2"))
	require.NoError(t, s.DeleteAll(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WriteError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta(pgInsert)).
		WithArgs(`{"title":"Intro"}`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	err := s.Insert(context.Background(), models.Article{Title: "Intro"})
	assert.ErrorContains(t, err, "insert article")
	assert.ErrorContains(t, err, "duplicate key")
}

func TestPostgresStore_CreateTableError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(pgCreateTable)).WillReturnError(errors.New("permission denied"))
	_, err = NewPostgresStoreFromPool(context.Background(), mock)
	assert.ErrorContains(t, err, "permission denied")
}
