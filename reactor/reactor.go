// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event reactor interface for readiness multiplexing.

package reactor

import "time"

// Interest is a set of readiness conditions.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
	Closed // peer hang-up or socket error
)

// Has reports whether all bits of o are set in i.
func (i Interest) Has(o Interest) bool { return i&o == o }

func (i Interest) String() string {
	s := ""
	for _, p := range []struct {
		bit  Interest
		name string
	}{{Readable, "r"}, {Writable, "w"}, {Closed, "c"}} {
		if i&p.bit != 0 {
			s += p.name
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

// EventReactor defines basic reactor operations.
type EventReactor interface {
	// Register adds fd with the given interest. Notifications are edge-triggered.
	Register(fd uintptr, interest Interest) error

	// Deregister removes fd.
	Deregister(fd uintptr) error

	// Wait blocks until events are available, Wake is called, or timeout elapses
	// (timeout < 0 blocks indefinitely). It returns the number of events written.
	Wait(events []Event, timeout time.Duration) (n int, err error)

	// Wake interrupts a concurrent Wait.
	Wake() error

	// Close releases the reactor's descriptors.
	Close() error
}

// Event contains event information returned by Wait.
type Event struct {
	Fd    uintptr
	Ready Interest
}
