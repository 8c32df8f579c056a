package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/api"
)

func newTestLoop(t *testing.T, loops int) *EventLoop {
	t.Helper()
	el := NewEventLoop(EventLoopConfig{Name: t.Name(), Loops: loops})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, _ = el.Close(ctx)
	})
	return el
}

func TestEventLoop_RunsEveryTaskOnce(t *testing.T) {
	el := newTestLoop(t, 4)

	const n = 1000
	var (
		mu      sync.Mutex
		counter int
		wg      sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.True(t, el.Spawn(func() {
			defer wg.Done()
			mu.Lock()
			counter++
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, counter)
	assert.Eventually(t, func() bool { return el.Stats().Completed == n }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, n, el.Stats().Spawned)
}

func TestEventLoop_SpawnAfterCloseDropsTask(t *testing.T) {
	el := NewEventLoop(EventLoopConfig{Loops: 1})
	_, err := el.Close(context.Background())
	require.NoError(t, err)

	var ran atomic.Bool
	assert.NotPanics(t, func() {
		assert.False(t, el.Spawn(func() { ran.Store(true) }))
	})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())
	assert.EqualValues(t, 1, el.Stats().Dropped)
	assert.Zero(t, el.Stats().Live)
}

func TestEventLoop_NilTaskIsRefused(t *testing.T) {
	el := newTestLoop(t, 1)
	assert.False(t, el.Spawn(nil))
	assert.Zero(t, el.Stats().Spawned)
}

func TestEventLoop_CloseDiscardsQueuedTasks(t *testing.T) {
	el := NewEventLoop(EventLoopConfig{Loops: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	require.True(t, el.Spawn(func() {
		close(started)
		<-release
	}))
	<-started

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, el.Spawn(func() { ran.Add(1) }))
	}
	assert.Equal(t, 5, el.Pending())

	result := make(chan int, 1)
	go func() {
		n, _ := el.Close(context.Background())
		result <- n
	}()
	require.Eventually(t, func() bool { return el.Pending() == 0 }, time.Second, time.Millisecond)
	close(release)

	select {
	case n := <-result:
		assert.Equal(t, 5, n)
	case <-time.After(time.Second):
		t.Fatal("close did not return")
	}
	assert.Zero(t, ran.Load())
	assert.EqualValues(t, 5, el.Stats().Dropped)
}

func TestEventLoop_CloseTimesOutOnStuckTask(t *testing.T) {
	el := NewEventLoop(EventLoopConfig{Loops: 1})
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	require.True(t, el.Spawn(func() {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := el.Close(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrOperationTimeout)
}

func TestEventLoop_RecoversPanickingTask(t *testing.T) {
	el := newTestLoop(t, 1)

	require.True(t, el.Spawn(func() { panic("boom") }))
	done := make(chan struct{})
	require.True(t, el.Spawn(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
	assert.Eventually(t, func() bool { return el.Stats().Panicked == 1 }, time.Second, time.Millisecond)
}

func TestEventLoop_LoopsParkWhenIdle(t *testing.T) {
	el := newTestLoop(t, 3)
	assert.Eventually(t, func() bool {
		s := el.Stats()
		return s.Live == 3 && s.Idle == 3
	}, time.Second, time.Millisecond)
}

func TestEventLoop_PinnedLoopsStillRunTasks(t *testing.T) {
	el := NewEventLoop(EventLoopConfig{Loops: 2, PinCPUs: true})
	defer func() { _, _ = el.Close(context.Background()) }()

	done := make(chan struct{})
	require.True(t, el.Spawn(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinned loop did not run task")
	}
}

func TestEventLoop_RetriedCloseWaitsAndDiscardsNothing(t *testing.T) {
	el := NewEventLoop(EventLoopConfig{Loops: 1})
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	require.True(t, el.Spawn(func() {
		close(started)
		<-release
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	}))
	require.True(t, el.Spawn(func() {}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	discarded, err := el.Close(ctx)
	require.ErrorIs(t, err, api.ErrOperationTimeout)
	assert.Equal(t, 1, discarded)

	close(release)
	discarded, err = el.Close(context.Background())
	require.NoError(t, err)
	assert.Zero(t, discarded)
	assert.True(t, finished.Load())
	assert.EqualValues(t, 1, el.Stats().Dropped)
}
