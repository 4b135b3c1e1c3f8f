package setpoints

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Snapshot represents a saved set of comfort settings for rollback
type Snapshot struct {
	// Values are the setpoints captured from the appliance
	Values Setpoints

	// Read reports which fields the firmware actually answered for.
	// Unread fields are not restored on rollback.
	Read map[string]bool

	// Timestamp when this snapshot was created
	Timestamp time.Time

	// Description of what operation this snapshot was taken before
	Description string
}

// RollbackManager manages setpoint snapshots for rollback support
type RollbackManager struct {
	applier *Applier

	// snapshots stores setpoint snapshots.
	// Limited to the last 10 to prevent unbounded growth.
	snapshots []*Snapshot

	maxSnapshots int

	mutex sync.RWMutex
}

// NewRollbackManager creates a new rollback manager for an applier
func NewRollbackManager(a *Applier) *RollbackManager {
	return &RollbackManager{
		applier:      a,
		snapshots:    make([]*Snapshot, 0, 10),
		maxSnapshots: 10,
	}
}

// SaveSnapshot captures the appliance's current setpoints as a snapshot.
// This should be called before any setpoint update.
func (rm *RollbackManager) SaveSnapshot(ctx context.Context, description string) error {
	values, read, err := rm.applier.ReadCurrent(ctx)
	if err != nil {
		return fmt.Errorf("failed to read setpoints for snapshot: %w", err)
	}

	snapshot := &Snapshot{
		Values:      values,
		Read:        read,
		Timestamp:   time.Now(),
		Description: description,
	}

	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = append(rm.snapshots, snapshot)

	if len(rm.snapshots) > rm.maxSnapshots {
		rm.snapshots = rm.snapshots[1:]
	}

	return nil
}

// GetLatestSnapshot returns the most recent snapshot, or nil if no snapshots exist
func (rm *RollbackManager) GetLatestSnapshot() *Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	if len(rm.snapshots) == 0 {
		return nil
	}

	return rm.snapshots[len(rm.snapshots)-1]
}

// GetSnapshots returns all snapshots in chronological order (oldest first)
func (rm *RollbackManager) GetSnapshots() []*Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	result := make([]*Snapshot, len(rm.snapshots))
	copy(result, rm.snapshots)
	return result
}

// ClearSnapshots removes all saved snapshots
func (rm *RollbackManager) ClearSnapshots() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = make([]*Snapshot, 0, 10)
}

// updateFromSnapshot builds an update restoring the snapshot's values,
// limited to the fields that were actually read when it was taken.
func updateFromSnapshot(snapshot *Snapshot) *Update {
	u := &Update{}
	if snapshot.Read["water temperature"] {
		u.WaterTemperature = Int(snapshot.Values.WaterTemperature)
	}
	if snapshot.Read["spray intensity"] {
		u.SprayIntensity = Int(snapshot.Values.SprayIntensity)
	}
	if snapshot.Read["spray position"] {
		u.SprayPosition = Int(snapshot.Values.SprayPosition)
	}
	if snapshot.Read["user profile"] {
		u.UserProfile = Int(snapshot.Values.UserProfile)
	}
	return u
}

// RollbackToSnapshot restores the appliance setpoints to a previous snapshot
func (rm *RollbackManager) RollbackToSnapshot(ctx context.Context, snapshot *Snapshot) *Result {
	if snapshot == nil {
		return &Result{
			Success: false,
			Error:   fmt.Errorf("snapshot is nil"),
		}
	}

	update := updateFromSnapshot(snapshot)
	if update.Empty() {
		return &Result{
			Success: false,
			Error:   fmt.Errorf("snapshot contains no restorable setpoints"),
		}
	}

	return rm.applier.ApplyAndVerify(ctx, update, nil)
}

// RollbackToLatest restores the appliance setpoints to the most recent snapshot.
// Returns a failed result if no snapshots exist.
func (rm *RollbackManager) RollbackToLatest(ctx context.Context) *Result {
	snapshot := rm.GetLatestSnapshot()
	if snapshot == nil {
		return &Result{
			Success: false,
			Error:   fmt.Errorf("no snapshots available for rollback"),
		}
	}

	return rm.RollbackToSnapshot(ctx, snapshot)
}

// SafeApply performs a setpoint update with automatic rollback on failure.
// If verification fails, it attempts to restore the pre-update snapshot.
func (rm *RollbackManager) SafeApply(ctx context.Context, update *Update, opts *VerificationOptions, description string) *SafeApplyResult {
	result := &SafeApplyResult{
		Description: description,
	}

	if err := rm.SaveSnapshot(ctx, description); err != nil {
		result.Error = fmt.Errorf("failed to save pre-update snapshot: %w", err)
		return result
	}

	applyResult := rm.applier.ApplyAndVerify(ctx, update, opts)
	result.ApplyResult = applyResult

	if applyResult.Success {
		result.Success = true
		return result
	}

	result.RollbackAttempted = true
	snapshot := rm.GetLatestSnapshot()

	if snapshot == nil {
		result.Error = fmt.Errorf("update failed and no snapshot available for rollback: %w", applyResult.Error)
		return result
	}

	rollbackResult := rm.RollbackToSnapshot(ctx, snapshot)
	result.RollbackResult = rollbackResult

	if rollbackResult.Success {
		result.RollbackSucceeded = true
		result.Error = fmt.Errorf("update failed (verification: %w), successfully rolled back to previous setpoints", applyResult.Error)
	} else {
		result.Error = fmt.Errorf("update failed (verification: %w) AND rollback failed: %w", applyResult.Error, rollbackResult.Error)
	}

	return result
}

// SafeApplyResult contains the results of a safe apply operation
type SafeApplyResult struct {
	// Success indicates whether the update succeeded
	Success bool

	// Description of the update operation
	Description string

	// ApplyResult contains the result of the update attempt
	ApplyResult *Result

	// RollbackAttempted indicates whether rollback was attempted
	RollbackAttempted bool

	// RollbackSucceeded indicates whether rollback succeeded (only valid if RollbackAttempted is true)
	RollbackSucceeded bool

	// RollbackResult contains the result of the rollback attempt (only valid if RollbackAttempted is true)
	RollbackResult *Result

	// Error contains any error that occurred
	Error error
}

// String returns a human-readable summary of the safe apply result
func (r *SafeApplyResult) String() string {
	if r.Success {
		return fmt.Sprintf("✅ Update succeeded: %s (verified in %d attempt(s))",
			r.Description, r.ApplyResult.Attempts)
	}

	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			return fmt.Sprintf("⚠️  Update failed but successfully rolled back: %s\nUpdate error: %v\nRollback: successful after %d attempt(s)",
				r.Description, r.ApplyResult.Error, r.RollbackResult.Attempts)
		}
		return fmt.Sprintf("❌ Update failed and rollback failed: %s\nUpdate error: %v\nRollback error: %v",
			r.Description, r.ApplyResult.Error, r.RollbackResult.Error)
	}

	return fmt.Sprintf("❌ Update failed: %s\nError: %v",
		r.Description, r.Error)
}
