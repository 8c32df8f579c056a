package delegate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/delegate"
	"github.com/momentics/hioload-exec/fake"
)

type recorder struct {
	mu      sync.Mutex
	results []delegate.Result[string]
	drops   int
}

func (r *recorder) OnNewDelivery(res delegate.Result[string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) DropPrefetched() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops++
}

func (r *recorder) snapshot() ([]delegate.Result[string], int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delegate.Result[string](nil), r.results...), r.drops
}

func TestDispatcher_BuffersUntilDelegateSet(t *testing.T) {
	exec := fake.NewInlineExecutor()
	d := delegate.NewDispatcher[string]("ctag", exec)

	d.Push("a")
	d.Push("b")
	assert.Equal(t, 2, d.Buffered())
	assert.False(t, d.HasDelegate())

	var rec recorder
	d.SetDelegate(&rec, delegate.Async)
	d.Push("c")

	got, _ := rec.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Item, got[1].Item, got[2].Item})
	assert.Zero(t, d.Buffered())

	spawned, blocking, _ := exec.Counts()
	assert.Equal(t, 3, spawned)
	assert.Zero(t, blocking)
}

func TestDispatcher_SyncModeUsesSpawnBlocking(t *testing.T) {
	exec := fake.NewInlineExecutor()
	d := delegate.NewDispatcher[string]("ctag", exec)
	var rec recorder
	d.SetDelegate(&rec, delegate.Sync)

	d.Push("x")
	d.DropPrefetched()

	spawned, blocking, _ := exec.Counts()
	assert.Zero(t, spawned)
	assert.Equal(t, 2, blocking)
	_, drops := rec.snapshot()
	assert.Equal(t, 1, drops)
}

func TestDispatcher_FailThenCancel(t *testing.T) {
	d := delegate.NewDispatcher[string]("ctag", fake.NewInlineExecutor())
	var rec recorder
	d.SetDelegate(&rec, delegate.Async)

	boom := errors.New("channel closed")
	d.Fail(boom)

	got, _ := rec.snapshot()
	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0].Err, boom)
	assert.True(t, got[1].Canceled)
}

func TestDispatcher_NextWithoutDelegate(t *testing.T) {
	d := delegate.NewDispatcher[int]("ctag", fake.NewInlineExecutor())

	_, ok := d.TryNext()
	assert.False(t, ok)

	go func() {
		time.Sleep(5 * time.Millisecond)
		d.Push(7)
		d.Cancel()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r, err := d.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, r.Item)
	r, err = d.Next(ctx)
	require.NoError(t, err)
	assert.True(t, r.Canceled)

	short, cancelShort := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancelShort()
	_, err = d.Next(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_DropPrefetchedClearsBuffer(t *testing.T) {
	d := delegate.NewDispatcher[int]("ctag", fake.NewInlineExecutor())
	d.Push(1)
	d.Push(2)
	d.DropPrefetched()
	assert.Zero(t, d.Buffered())
}

func TestDispatcher_ParallelDeliveryOnRealRuntime(t *testing.T) {
	rt := adapters.NewGoRuntime()
	exec := adapters.NewReactorBridge(rt)
	defer func() {
		_ = exec.Close(context.Background())
		_ = rt.Close(context.Background())
	}()

	d := delegate.NewDispatcher[string]("ctag", exec)
	var rec recorder
	d.SetDelegate(&rec, delegate.Sync)
	for i := 0; i < 100; i++ {
		d.Push("m")
	}
	require.Eventually(t, func() bool {
		got, _ := rec.snapshot()
		return len(got) == 100
	}, time.Second, time.Millisecond)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "async", delegate.Async.String())
	assert.Equal(t, "sync", delegate.Sync.String())
}
