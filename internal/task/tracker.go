package task

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/phrazzld/extract-api/internal/domain"
)

// Tracker is the single-writer handle for one task. The workflow goroutine
// that owns a task is the only caller of its mutating methods; the Tracker's
// own mutex additionally serializes them against each other so a stat
// addition can never race a status update on the shared snapshot.
type Tracker struct {
	registry *Registry
	taskID   string

	totalSteps       int
	stepDescriptions map[int]string

	mu          sync.Mutex
	currentStep int
	status      domain.TaskStatus
	message     string
	startTime   time.Time
	lastUpdate  time.Time
	eta         *float64
	stats       map[string]float64
	logs        []domain.OptimizationLog
	result      *domain.ExtractionResult
}

// TaskID returns the identifier of the tracked task.
func (t *Tracker) TaskID() string {
	return t.taskID
}

// Update advances the task to currentStep with the given status and message,
// and persists a full snapshot. The step is clamped into [0, totalSteps] and
// never moves backward: polling clients assume forward-only progress, so an
// out-of-order update keeps the previously recorded step. Updates after a
// terminal status are ignored.
func (t *Tracker) Update(currentStep int, status domain.TaskStatus, message string) domain.TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return t.snapshotLocked()
	}

	step := currentStep
	if step > t.totalSteps {
		step = t.totalSteps
	}
	if step < t.currentStep {
		step = t.currentStep
	}
	t.currentStep = step
	t.status = status
	t.message = message

	now := t.registry.now()
	t.lastUpdate = now
	elapsed := now.Sub(t.startTime).Seconds()

	// Remaining time is only estimable mid-flight.
	if t.currentStep > 0 && t.currentStep < t.totalSteps {
		perStep := elapsed / float64(t.currentStep)
		remaining := perStep * float64(t.totalSteps-t.currentStep)
		t.eta = &remaining
	} else {
		t.eta = nil
	}

	snap := t.snapshotLocked()
	t.registry.store(snap)

	if status.Terminal() {
		t.registry.scheduleActiveRemoval(t.taskID)
	}

	return snap
}

// Complete marks the task as successfully finished at its final step.
func (t *Tracker) Complete(message string) domain.TaskSnapshot {
	return t.Update(t.totalSteps, domain.TaskStatusCompleted, message)
}

// Error marks the task as failed, leaving the current step unchanged.
func (t *Tracker) Error(message string) domain.TaskSnapshot {
	t.mu.Lock()
	step := t.currentStep
	t.mu.Unlock()
	return t.Update(step, domain.TaskStatusError, message)
}

// AddPerformanceStat records a named numeric measurement. Stats accumulate
// for the life of the task; setting an existing name overwrites its value.
func (t *Tracker) AddPerformanceStat(name string, value float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats[name] = value
	t.registry.store(t.snapshotLocked())
}

// AddOptimizationLog appends an entry to the task's decision log.
func (t *Tracker) AddOptimizationLog(message, category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, domain.OptimizationLog{
		Time:     t.registry.now(),
		Message:  message,
		Category: category,
	})
	t.registry.store(t.snapshotLocked())
}

// SetResultData stores the final extraction payload. Later updates preserve
// it, so it may be set before the completing update.
func (t *Tracker) SetResultData(result *domain.ExtractionResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = result
	t.registry.store(t.snapshotLocked())
}

// snapshotLocked builds a self-consistent copy of the task's state. Maps and
// slices are copied so a returned snapshot is immune to later mutation.
// Callers must hold t.mu (or have exclusive access during construction).
func (t *Tracker) snapshotLocked() domain.TaskSnapshot {
	stats := make(map[string]float64, len(t.stats))
	for k, v := range t.stats {
		stats[k] = v
	}
	logs := make([]domain.OptimizationLog, len(t.logs))
	copy(logs, t.logs)

	var eta *float64
	if t.eta != nil {
		v := roundHundredth(*t.eta)
		eta = &v
	}

	return domain.TaskSnapshot{
		TaskID:                 t.taskID,
		Status:                 t.status,
		CurrentStep:            t.currentStep,
		TotalSteps:             t.totalSteps,
		Percentage:             roundTenth(float64(t.currentStep) / float64(t.totalSteps) * 100),
		StepDescription:        t.stepDescription(),
		Message:                t.message,
		StartTime:              t.startTime,
		LastUpdateTime:         t.lastUpdate,
		ElapsedSeconds:         roundHundredth(t.lastUpdate.Sub(t.startTime).Seconds()),
		EstimatedTimeRemaining: eta,
		PerformanceStats:       stats,
		OptimizationLogs:       logs,
		ResultData:             t.result,
	}
}

// stepDescription resolves the human text for the current step, falling back
// to a generic description when the step has no mapping.
func (t *Tracker) stepDescription() string {
	if desc, ok := t.stepDescriptions[t.currentStep]; ok {
		return desc
	}
	return fmt.Sprintf("Step %d of %d", t.currentStep, t.totalSteps)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundHundredth(v float64) float64 {
	return math.Round(v*100) / 100
}
