package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []interface{}
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, docs...)
	return &mongo.InsertManyResult{}, nil
}

func TestMongoSinkFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	sink := newMongoSink(col, slog.LevelInfo)

	log := slog.New(sink).With("request_id", "rid-1")
	log.Debug("dropped by level")
	log.Info("order placed", "order_id", 7)
	log.WithGroup("stock").Warn("low", "left", 1)

	sink.Close()

	require.Len(t, col.docs, 2)
	first := col.docs[0].(Entry)
	assert.Equal(t, "order placed", first.Msg)
	assert.Equal(t, "rid-1", first.RequestID)
	assert.EqualValues(t, 7, first.Attrs["order_id"])

	second := col.docs[1].(Entry)
	assert.EqualValues(t, 1, second.Attrs["stock.left"])
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(nil, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}
