package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueueSize = 4096
	sinkBatchSize = 50
	sinkFlushTick = 2 * time.Second
)

// Entry is the document shape stored in the log collection.
type Entry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoSink is an slog.Handler that batches records into a MongoDB
// collection from a single background goroutine. Records are dropped when
// the queue is full; logging never blocks a request.
type MongoSink struct {
	level  slog.Level
	attrs  []slog.Attr
	prefix string
	shared *sinkState
}

type sinkState struct {
	col    inserter
	client *mongo.Client
	queue  chan Entry
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// DialMongoSink connects to uri and writes into db.collection.
func DialMongoSink(ctx context.Context, uri, db, collection string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(4))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "time", Value: -1}}})

	s := newMongoSink(col, slog.LevelInfo)
	s.shared.client = client
	return s, nil
}

func newMongoSink(col inserter, level slog.Level) *MongoSink {
	st := &sinkState{
		col:   col,
		queue: make(chan Entry, sinkQueueSize),
		done:  make(chan struct{}),
	}
	st.wg.Add(1)
	go st.run()
	return &MongoSink{level: level, shared: st}
}

func (s *MongoSink) Enabled(_ context.Context, l slog.Level) bool { return l >= s.level }

func (s *MongoSink) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	add := func(a slog.Attr) bool {
		if a.Key == "request_id" {
			e.RequestID = a.Value.String()
			return true
		}
		e.Attrs[s.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	}
	for _, a := range s.attrs {
		add(a)
	}
	r.Attrs(add)

	select {
	case s.shared.queue <- e:
	default:
	}
	return nil
}

func (s *MongoSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *s
	next.attrs = append(append([]slog.Attr(nil), s.attrs...), attrs...)
	return &next
}

func (s *MongoSink) WithGroup(name string) slog.Handler {
	next := *s
	next.prefix = s.prefix + name + "."
	return &next
}

// Close flushes queued entries and disconnects.
func (s *MongoSink) Close() {
	st := s.shared
	st.once.Do(func() {
		close(st.done)
		st.wg.Wait()
		if st.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = st.client.Disconnect(ctx)
		}
	})
}

func (st *sinkState) run() {
	defer st.wg.Done()

	ticker := time.NewTicker(sinkFlushTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = st.col.InsertMany(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case e := <-st.queue:
			batch = append(batch, e)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-st.done:
			for len(st.queue) > 0 {
				batch = append(batch, <-st.queue)
			}
			flush()
			return
		}
	}
}
