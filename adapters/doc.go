// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bridges between the api.Executor contract handed to the protocol layer and the
// concrete runtimes that actually run the work:
//
//   - ReactorBridge routes Spawn to an event-loop runtime and SpawnBlocking to the
//     runtime's own blocking facility, or to a fallback thread pool.
//   - BlockingBridge routes SpawnBlocking to a managed thread pool and Spawn to a
//     paired reactor runtime.
//   - GoRuntime uses the Go scheduler itself as the reactor runtime.
//   - ConcPool is a blocking pool backed by sourcegraph/conc.
//
// Bridges never surface errors: refused submissions are counted and logged.
package adapters
