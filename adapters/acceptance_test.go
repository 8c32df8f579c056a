package adapters_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// executorFactory builds a live executor and returns a function that shuts down
// everything behind it.
type executorFactory func(t *testing.T) (api.Executor, func())

type acceptanceTest struct {
	name string
	test func(t *testing.T, create executorFactory)
}

func runAcceptanceTests(t *testing.T, name string, factory executorFactory) {
	tests := []acceptanceTest{
		{"runs every spawned task exactly once", testSpawnCounter},
		{"runs blocking tasks", testSpawnBlockingRuns},
		{"blocking work does not starve spawned work", testNoStarvation},
		{"accepts concurrent submitters", testConcurrentSubmitters},
		{"drops tasks after shutdown without panicking", testDropAfterShutdown},
		{"ignores nil tasks", testNilTasks},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", name, tt.name), func(t *testing.T) {
			tt.test(t, factory)
		})
	}
}

func closeAll(closers ...func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, c := range closers {
			_ = c(ctx)
		}
	}
}

func TestExecutorImplementations(t *testing.T) {
	t.Run("ReactorBridge/EventLoop", func(t *testing.T) {
		runAcceptanceTests(t, "EventLoop", func(t *testing.T) (api.Executor, func()) {
			loop := concurrency.NewEventLoop(concurrency.EventLoopConfig{Loops: 2})
			b := adapters.NewReactorBridge(loop)
			return b, closeAll(b.Close, func(ctx context.Context) error {
				_, err := loop.Close(ctx)
				return err
			})
		})
	})

	t.Run("ReactorBridge/Runtime", func(t *testing.T) {
		runAcceptanceTests(t, "Runtime", func(t *testing.T) (api.Executor, func()) {
			rt := concurrency.NewRuntime(
				concurrency.EventLoopConfig{Loops: 2},
				concurrency.ThreadPoolConfig{MaxThreads: 8, LockOSThread: true},
			)
			b := adapters.NewReactorBridge(rt)
			require.True(t, b.UsesNativeBlocking())
			return b, closeAll(b.Close, rt.Close)
		})
	})

	t.Run("ReactorBridge/GoRuntime", func(t *testing.T) {
		runAcceptanceTests(t, "GoRuntime", func(t *testing.T) (api.Executor, func()) {
			rt := adapters.NewGoRuntime()
			pool := adapters.NewConcPool(8)
			b := adapters.NewReactorBridge(rt, adapters.WithFallbackPool(pool))
			return b, closeAll(b.Close, rt.Close, pool.Close)
		})
	})

	t.Run("BlockingBridge/ThreadPool", func(t *testing.T) {
		runAcceptanceTests(t, "ThreadPool", func(t *testing.T) (api.Executor, func()) {
			pool := concurrency.NewThreadPool(concurrency.ThreadPoolConfig{MaxThreads: 8, LockOSThread: true})
			b := adapters.NewBlockingBridge(pool)
			return b, closeAll(b.Close, pool.Close)
		})
	})

	t.Run("BlockingBridge/ConcPool", func(t *testing.T) {
		runAcceptanceTests(t, "ConcPool", func(t *testing.T) (api.Executor, func()) {
			loop := concurrency.NewEventLoop(concurrency.EventLoopConfig{Loops: 1})
			pool := adapters.NewConcPool(8, adapters.WithLockOSThread(true))
			b := adapters.NewBlockingBridge(pool, adapters.WithPairedReactor(loop))
			return b, closeAll(b.Close, pool.Close, func(ctx context.Context) error {
				_, err := loop.Close(ctx)
				return err
			})
		})
	})
}

func testSpawnCounter(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	defer shutdown()

	const n = 1000
	var (
		mu      sync.Mutex
		counter int
		wg      sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		exec.Spawn(func() {
			defer wg.Done()
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}
	waitOrFail(t, &wg, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, counter)
}

func testSpawnBlockingRuns(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	defer shutdown()

	const n = 20
	var (
		ran atomic.Int32
		wg  sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		exec.SpawnBlocking(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}
	waitOrFail(t, &wg, 2*time.Second)
	assert.EqualValues(t, n, ran.Load())
}

func testNoStarvation(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	defer shutdown()

	blockingDone := make(chan struct{})
	exec.SpawnBlocking(func() {
		time.Sleep(200 * time.Millisecond)
		close(blockingDone)
	})

	const n = 10
	var (
		mu     sync.Mutex
		delays []time.Duration
		wg     sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		submitted := time.Now()
		exec.Spawn(func() {
			defer wg.Done()
			d := time.Since(submitted)
			mu.Lock()
			delays = append(delays, d)
			mu.Unlock()
		})
	}
	waitOrFail(t, &wg, time.Second)

	mu.Lock()
	require.Len(t, delays, n)
	for _, d := range delays {
		assert.Less(t, d, 50*time.Millisecond)
	}
	mu.Unlock()
	<-blockingDone
}

func testConcurrentSubmitters(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	defer shutdown()

	const submitters, perSubmitter = 8, 100
	var (
		ran atomic.Int64
		wg  sync.WaitGroup
	)
	wg.Add(submitters * perSubmitter * 2)
	for s := 0; s < submitters; s++ {
		go func() {
			for i := 0; i < perSubmitter; i++ {
				exec.Spawn(func() { ran.Add(1); wg.Done() })
				exec.SpawnBlocking(func() { ran.Add(1); wg.Done() })
			}
		}()
	}
	waitOrFail(t, &wg, 5*time.Second)
	assert.EqualValues(t, submitters*perSubmitter*2, ran.Load())
}

func testDropAfterShutdown(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	shutdown()

	var ran atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		exec.Spawn(func() { ran.Store(true) })
		exec.SpawnBlocking(func() { ran.Store(true) })
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submission blocked after shutdown")
	}
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())
}

func testNilTasks(t *testing.T, create executorFactory) {
	exec, shutdown := create(t)
	defer shutdown()
	assert.NotPanics(t, func() {
		exec.Spawn(nil)
		exec.SpawnBlocking(nil)
	})
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("tasks did not finish within %s", timeout)
	}
}
