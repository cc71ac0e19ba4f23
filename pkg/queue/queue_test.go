package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/database/dbtest"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

var handled atomic.Int32

type countJob struct {
	OrderID uint `json:"orderId"`
}

func (countJob) Name() string { return "test.count" }

func (j *countJob) Handle(context.Context) error {
	if j.OrderID == 0 {
		return errors.New("missing order id")
	}
	handled.Add(1)
	return nil
}

type failJob struct{}

func (failJob) Name() string { return "test.fail" }

func (*failJob) Handle(context.Context) error { return errors.New("always fails") }

func newManager(t *testing.T) *queue.Manager {
	t.Helper()
	m := queue.New(queue.NewMemoryDriver(16))
	m.SetRetry(2, time.Millisecond)
	m.Register("test.count", func() queue.Job { return &countJob{} })
	m.Register("test.fail", func() queue.Job { return &failJob{} })
	return m
}

func TestWorkersProcessDispatchedJobs(t *testing.T) {
	m := newManager(t)
	before := handled.Load()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 2)
		close(done)
	}()

	for i := 1; i <= 5; i++ {
		require.NoError(t, m.Dispatch(ctx, &countJob{OrderID: uint(i)}))
	}

	assert.Eventually(t, func() bool { return handled.Load()-before == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestExhaustedJobIsPersisted(t *testing.T) {
	db := dbtest.New(t, &queue.FailedJobRecord{})
	m := newManager(t)
	m.UseStore(queue.GormStore{DB: db})

	raw := []byte(`{"name":"test.fail","payload":{}}`)
	err := m.Process(context.Background(), raw)
	require.Error(t, err)

	failed := m.FailedJobs()
	require.Len(t, failed, 1)
	assert.Equal(t, "test.fail", failed[0].Name)
	assert.Equal(t, 2, failed[0].Attempts)

	var rec queue.FailedJobRecord
	require.NoError(t, db.First(&rec).Error)
	assert.Equal(t, "test.fail", rec.Name)
	assert.Equal(t, "always fails", rec.Error)
}

func TestUnknownJobIsRejected(t *testing.T) {
	m := newManager(t)
	err := m.Process(context.Background(), []byte(`{"name":"nope","payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnknownJob)
}

func TestMemoryDriverRejectsWhenFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))
	assert.ErrorIs(t, d.Push(context.Background(), []byte("b")), queue.ErrQueueFull)
	assert.Equal(t, 1, d.Len())
}
