// Package events carries gate lifecycle events from the task gate to the
// rest of the application. The gate reports transitions through its
// Observer interface; GateObserver turns them into GateEvent values and
// publishes them to registered handlers, such as the run log and the
// statistics shown by the status endpoint.
package events
