// Package gate provides a single-flight exclusive task scheduler.
//
// A Gate guarantees that at most one unit of work runs at a time. Callers that
// arrive while a run is in progress wait in a FIFO queue and are handed the
// lock directly by the finishing run, so there is never an idle gap between
// a release and the next queued run.
//
// Every granted run receives its own context. That context is the run's
// cancellation token: it is cancelled when the per-run deadline elapses (with
// ErrTimeout as its cause) or when the caller's context ends. Cancellation is
// cooperative. Work must observe the context, typically by passing it to the
// network calls it makes; the gate never abandons a run and always waits for
// the work function to return before releasing.
//
// A run must not call Run on the same gate from inside its work function: it
// would queue behind itself and deadlock.
package gate
