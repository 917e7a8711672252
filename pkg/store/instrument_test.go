package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"wiki-api/pkg/metrics"
	"wiki-api/pkg/models"
)

type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Insert(ctx context.Context, a models.Article) error { return f.err }

func TestInstrumented(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		return Instrument(NewMemoryStore(), "memory", zaptest.NewLogger(t))
	})
}

func TestInstrumented_Metrics(t *testing.T) {
	ctx := context.Background()
	s := Instrument(NewMemoryStore(), "instrument-test", zaptest.NewLogger(t))

	require.NoError(t, s.Insert(ctx, models.Article{Title: "Intro"}))
	_, err := s.FindOne(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("instrument-test", "insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("instrument-test", "find_one", "not_found")))
}

func TestInstrumented_PassesErrorsThrough(t *testing.T) {
	boom := errors.New("write concern failed")
	s := Instrument(failingStore{MemoryStore: NewMemoryStore(), err: boom}, "failing-test", zaptest.NewLogger(t))

	err := s.Insert(context.Background(), models.Article{Title: "Intro"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("failing-test", "insert", "error")))
}

func TestInstrumented_LogsFailuresAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	boom := errors.New("connection reset")
	s := Instrument(failingStore{MemoryStore: NewMemoryStore(), err: boom}, "log-test", zap.New(core))

	require.ErrorIs(t, s.Insert(context.Background(), models.Article{Title: "Intro"}), boom)

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	entries := logs.FilterMessage("Store operation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "insert", entries[0].ContextMap()["operation"])
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}
