// Package task owns the lifecycle of asynchronous extraction tasks. The
// Registry is the canonical in-memory store of task state; a Tracker is the
// single-writer handle an extraction workflow uses to record progress,
// performance stats, optimization decisions and the final result. Callers
// poll the Registry for point-in-time snapshots.
package task
