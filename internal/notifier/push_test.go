package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type publishCall struct {
	channel string
	event   string
	data    interface{}
}

// fakePublisher 前 failFirst 次调用返回错误
type fakePublisher struct {
	mu        sync.Mutex
	calls     []publishCall
	attempts  int
	failFirst int
	block     chan struct{}
}

func (p *fakePublisher) Trigger(ctx context.Context, channel, event string, data interface{}) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.attempts <= p.failFirst {
		return errors.New("pusher unavailable")
	}
	p.calls = append(p.calls, publishCall{channel: channel, event: event, data: data})
	return nil
}

func (p *fakePublisher) snapshot() []publishCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishCall(nil), p.calls...)
}

func (p *fakePublisher) attemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func testJob(id string) PushJob {
	return PushJob{ID: "job-" + id, NotificationID: id, Channel: "private-user-u1", Event: "new-notification"}
}

func TestPushWorker_RetriesThenSucceeds(t *testing.T) {
	pub := &fakePublisher{failFirst: 2}
	store := newFakeStore()
	w := NewPushWorker(pub, store, PushWorkerConfig{
		Workers: 1, MaxRetries: 3, InitialBackoff: time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	require.True(t, w.Enqueue(testJob("n-1")))

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	w.Close()

	assert.Equal(t, 3, pub.attemptCount())
	assert.Equal(t, 1, store.deliveredCount())
}

func TestPushWorker_GivesUpButMarksDelivered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := &fakePublisher{failFirst: 100}
	store := newFakeStore()
	w := NewPushWorker(pub, store, PushWorkerConfig{
		Workers: 1, MaxRetries: 2, InitialBackoff: time.Millisecond,
	}, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	w.Enqueue(testJob("n-1"))

	require.Eventually(t, func() bool { return store.deliveredCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	w.Close()

	assert.Equal(t, 3, pub.attemptCount(), "首次 + 2 次重试")
	assert.Equal(t, 1, logs.FilterMessage("实时推送失败，等待客户端轮询补齐").Len())
}

func TestPushWorker_DropsWhenFull(t *testing.T) {
	w := NewPushWorker(&fakePublisher{}, nil, PushWorkerConfig{Workers: 1, QueueSize: 1}, zap.NewNop())

	assert.True(t, w.Enqueue(testJob("n-1")))
	assert.False(t, w.Enqueue(testJob("n-2")))
}

func TestPushWorker_BlockingWaitsInsteadOfDropping(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	store := newFakeStore()
	w := NewPushWorker(pub, store, PushWorkerConfig{Workers: 1, QueueSize: 1, Blocking: true}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, id := range []string{"n-1", "n-2", "n-3", "n-4", "n-5"} {
			assert.True(t, w.Enqueue(testJob(id)))
		}
	}()

	// 发布被阻塞时入队方应等待
	select {
	case <-done:
		t.Fatal("队列已满时入队不应立即返回")
	case <-time.After(50 * time.Millisecond):
	}

	close(pub.block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("放行后入队应完成")
	}
	cancel()
	w.Close()

	assert.Len(t, pub.snapshot(), 5)
	assert.Equal(t, 5, store.deliveredCount())
}

func TestPushWorker_DrainsOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	store := newFakeStore()
	w := NewPushWorker(pub, store, PushWorkerConfig{Workers: 1, QueueSize: 10}, zap.NewNop())

	for _, id := range []string{"n-1", "n-2", "n-3"} {
		require.True(t, w.Enqueue(testJob(id)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	w.Close()

	assert.Len(t, pub.snapshot(), 3)
	assert.Equal(t, 3, store.deliveredCount())
}

func TestPushWorker_GlobalJobSkipsDeliveryMark(t *testing.T) {
	pub := &fakePublisher{}
	store := newFakeStore()
	w := NewPushWorker(pub, store, PushWorkerConfig{Workers: 1}, zap.NewNop())

	w.Enqueue(PushJob{ID: "g", Channel: "global", Event: "global-notification"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	w.Close()

	assert.Len(t, pub.snapshot(), 1)
	assert.Equal(t, 0, store.deliveredCount())
}
