//go:build linux

package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSetAffinity_PinsCallingThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var before unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &before))
	defer func() { _ = unix.SchedSetaffinity(0, &before) }()

	// Pick a CPU the process is actually allowed to run on.
	cpu := -1
	for i := 0; i < 1024; i++ {
		if before.IsSet(i) {
			cpu = i
			break
		}
	}
	require.GreaterOrEqual(t, cpu, 0)

	require.NoError(t, SetAffinity(cpu))

	var after unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &after))
	assert.Equal(t, 1, after.Count())
	assert.True(t, after.IsSet(cpu))
}

func TestCPUFor_WrapsAround(t *testing.T) {
	n := runtime.NumCPU()
	assert.Equal(t, 0, CPUFor(0))
	assert.Equal(t, 0, CPUFor(n))
	assert.Equal(t, 1%n, CPUFor(n+1))
	assert.Equal(t, 1%n, CPUFor(-1))
}
