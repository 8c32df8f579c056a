// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity of event-loop threads. Platform-specific
// implementations live in affinity_linux.go and affinity_stub.go.

package affinity

import "runtime"

// SetAffinity pins the calling OS thread to a logical CPU. The caller must have locked
// its goroutine to the thread (runtime.LockOSThread) or the pin applies to whatever
// thread the goroutine happens to run on.
// On unsupported platforms it returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// CPUFor maps a loop index onto the available CPUs round-robin.
func CPUFor(index int) int {
	n := runtime.NumCPU()
	if index < 0 {
		index = -index
	}
	return index % n
}
