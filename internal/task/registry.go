package task

import (
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/extract-api/internal/domain"
)

// RegistryConfig holds configuration for the task registry.
type RegistryConfig struct {
	// ActiveRemovalDelay is how long a terminal task stays in the active set
	// before being dropped from active listings. The task itself remains
	// queryable until Retention expires.
	ActiveRemovalDelay time.Duration

	// Retention is how long a terminal task remains queryable before
	// SweepExpired removes it entirely.
	Retention time.Duration
}

// DefaultRegistryConfig returns a RegistryConfig with reasonable defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		ActiveRemovalDelay: 300 * time.Second,
		Retention:          time.Hour,
	}
}

// Registry is the canonical, process-local store of task state. All state is
// guarded by a single mutex: snapshot writes for one task may race stat or
// log additions from the same workflow, and distinct tasks mutate the map
// concurrently.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]domain.TaskSnapshot
	active map[string]struct{}
	timers map[string]*time.Timer
	closed bool

	cfg    RegistryConfig
	logger *slog.Logger

	// now is injectable so lifecycle timing can be tested deterministically.
	now func() time.Time
}

// NewRegistry creates a Registry. Zero config values fall back to defaults.
func NewRegistry(cfg RegistryConfig, logger *slog.Logger) *Registry {
	def := DefaultRegistryConfig()
	if cfg.ActiveRemovalDelay <= 0 {
		cfg.ActiveRemovalDelay = def.ActiveRemovalDelay
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	return &Registry{
		tasks:  make(map[string]domain.TaskSnapshot),
		active: make(map[string]struct{}),
		timers: make(map[string]*time.Timer),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers taskID as active in the initializing state and returns
// the Tracker that owns all subsequent writes for that id.
func (r *Registry) Create(taskID string, totalSteps int, stepDescriptions map[int]string) *Tracker {
	if totalSteps < 1 {
		totalSteps = 1
	}

	t := &Tracker{
		registry:         r,
		taskID:           taskID,
		totalSteps:       totalSteps,
		stepDescriptions: stepDescriptions,
		status:           domain.TaskStatusInitializing,
		startTime:        r.now(),
		stats:            make(map[string]float64),
	}
	t.lastUpdate = t.startTime

	r.mu.Lock()
	r.tasks[taskID] = t.snapshotLocked()
	r.active[taskID] = struct{}{}
	r.mu.Unlock()

	r.logger.Debug("task registered",
		"task_id", taskID,
		"total_steps", totalSteps)

	return t
}

// Get returns the latest snapshot for taskID.
func (r *Registry) Get(taskID string) (domain.TaskSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.tasks[taskID]
	if !ok {
		return domain.TaskSnapshot{}, false
	}
	return snap.Clone(), true
}

// ListActive returns snapshots for every task still in the active set.
func (r *Registry) ListActive() []domain.TaskSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.TaskSnapshot, 0, len(r.active))
	for taskID := range r.active {
		if snap, ok := r.tasks[taskID]; ok {
			out = append(out, snap.Clone())
		}
	}
	return out
}

// SweepExpired removes terminal tasks whose last update is older than the
// retention period and returns how many were removed. Intended to run on a
// periodic ticker owned by the caller.
func (r *Registry) SweepExpired() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for taskID, snap := range r.tasks {
		if !snap.Status.Terminal() {
			continue
		}
		if now.Sub(snap.LastUpdateTime) <= r.cfg.Retention {
			continue
		}
		delete(r.tasks, taskID)
		delete(r.active, taskID)
		if timer, ok := r.timers[taskID]; ok {
			timer.Stop()
			delete(r.timers, taskID)
		}
		removed++
	}

	if removed > 0 {
		r.logger.Info("swept expired tasks", "removed", removed)
	}
	return removed
}

// Close cancels all pending active-removal timers. Tasks remain queryable;
// Close only quiesces background activity for shutdown and tests.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for taskID, timer := range r.timers {
		timer.Stop()
		delete(r.timers, taskID)
	}
}

// store persists a full snapshot. Called by the task's Tracker.
func (r *Registry) store(snap domain.TaskSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[snap.TaskID] = snap
}

// scheduleActiveRemoval arms the delayed drop of taskID from the active set
// after it reaches a terminal state. Re-arming is a no-op.
func (r *Registry) scheduleActiveRemoval(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, armed := r.timers[taskID]; armed {
		return
	}
	r.timers[taskID] = time.AfterFunc(r.cfg.ActiveRemovalDelay, func() {
		r.removeActive(taskID)
	})
}

func (r *Registry) removeActive(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, taskID)
	delete(r.timers, taskID)
}
