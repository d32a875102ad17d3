package domain

import "time"

// TaskStatus represents the lifecycle state of an extraction task.
type TaskStatus string

// Possible task status values. A task moves forward through the non-terminal
// states and ends in either completed or error. There is no transition out of
// a terminal state.
const (
	TaskStatusInitializing TaskStatus = "initializing"
	TaskStatusAnalyzing    TaskStatus = "analyzing"
	TaskStatusOptimizing   TaskStatus = "optimizing"
	TaskStatusProcessing   TaskStatus = "processing"
	TaskStatusFinalizing   TaskStatus = "finalizing"
	TaskStatusCompleted    TaskStatus = "completed"
	TaskStatusError        TaskStatus = "error"

	// TaskStatusNotFound is never stored; it is only reported to callers that
	// poll an unknown task id.
	TaskStatusNotFound TaskStatus = "not_found"
)

// Terminal reports whether the status is a final state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusError
}

// OptimizationLog is a single entry in a task's append-only optimization log.
type OptimizationLog struct {
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
	Category string    `json:"category"`
}

// TaskSnapshot is the full, self-consistent set of a task's fields as
// observed at one point in time. Snapshots are values: once returned to a
// caller they are never mutated by the registry.
type TaskSnapshot struct {
	TaskID          string             `json:"task_id"`
	Status          TaskStatus         `json:"status"`
	CurrentStep     int                `json:"current_step"`
	TotalSteps      int                `json:"total_steps"`
	Percentage      float64            `json:"percentage"`
	StepDescription string             `json:"step_description"`
	Message         string             `json:"message,omitempty"`
	StartTime       time.Time          `json:"start_time"`
	LastUpdateTime  time.Time          `json:"last_update_time"`
	ElapsedSeconds  float64            `json:"elapsed_time"`
	// EstimatedTimeRemaining is in seconds. It is nil until the task has made
	// progress and again once it reaches its final step.
	EstimatedTimeRemaining *float64           `json:"estimated_time_remaining"`
	PerformanceStats       map[string]float64 `json:"performance_stats"`
	OptimizationLogs       []OptimizationLog  `json:"optimization_logs"`
	ResultData             *ExtractionResult  `json:"result_data,omitempty"`
}

// Clone returns a copy whose maps and slices are independent of the
// receiver, so handing a snapshot to a caller can never expose shared state.
func (s TaskSnapshot) Clone() TaskSnapshot {
	out := s
	if s.PerformanceStats != nil {
		out.PerformanceStats = make(map[string]float64, len(s.PerformanceStats))
		for k, v := range s.PerformanceStats {
			out.PerformanceStats[k] = v
		}
	}
	if s.OptimizationLogs != nil {
		out.OptimizationLogs = make([]OptimizationLog, len(s.OptimizationLogs))
		copy(out.OptimizationLogs, s.OptimizationLogs)
	}
	if s.EstimatedTimeRemaining != nil {
		v := *s.EstimatedTimeRemaining
		out.EstimatedTimeRemaining = &v
	}
	return out
}
