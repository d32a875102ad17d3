// Package service contains the application use cases. It coordinates the task
// registry, the extraction workflow, and the input plumbing behind the HTTP
// layer: submitting a document creates a task and schedules its workflow;
// polling reads registry snapshots.
package service
