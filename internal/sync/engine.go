// Package sync reconciles the local store with a user's remote copy.
// Three directions exist: push uploads everything local, pull brings the
// remote set down (destructively or additively), and merge unions the two
// sides and writes the union back to both. There is no field-level
// conflict resolution anywhere: a record present on both sides by id is
// treated as already reconciled and the local version wins.
//
// No operation spans both stores transactionally. A failure partway
// through leaves the writes already applied in place; every direction is
// safe to re-run and re-running converges.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/models"
	"github.com/arnold/streaks-api/internal/remote"
	"github.com/arnold/streaks-api/internal/store"
)

// Pull modes.
const (
	// PullOverwrite clears all local goals and tabs and replaces them
	// with the remote set. Local-only records are lost; callers must
	// present this as destructive.
	PullOverwrite = "overwrite"

	// PullAddMissing inserts remote records whose id is absent locally
	// and leaves everything already present untouched. The remote copy
	// never overwrites an existing local record on this path.
	PullAddMissing = "merge"
)

var (
	// ErrNotSignedIn is returned when a sync operation is attempted
	// without a resolved user identity. No I/O is attempted.
	ErrNotSignedIn = errors.New("sync requires a signed-in user")

	// ErrSyncInFlight is returned when a sync operation is started
	// while another is still running.
	ErrSyncInFlight = errors.New("another sync is already running")
)

// SyncError wraps a remote I/O failure during a sync operation.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Result reports how many records a sync operation touched.
type Result struct {
	Goals int `json:"goals"`
	Tabs  int `json:"tabs"`
}

// Engine runs sync operations between the local and remote stores for one
// user at a time.
type Engine interface {
	// Push upserts every local goal and tab into the user's remote
	// copy. Remote records missing locally are never deleted.
	Push(ctx context.Context, userID uuid.UUID) (Result, error)

	// Pull brings the user's remote records into the local store, in
	// PullOverwrite or PullAddMissing mode.
	Pull(ctx context.Context, userID uuid.UUID, mode string) (Result, error)

	// Merge unions local and remote by id (local wins on collision)
	// and writes the union back to both stores. This is the only
	// operation that mutates both sides.
	Merge(ctx context.Context, userID uuid.UUID) (Result, error)
}

type engine struct {
	local   *store.Store
	remote  *remote.Store
	logger  *log.Logger
	running sync.Mutex
}

// New creates a sync engine. If logger is nil a default logger writing to
// stderr is used.
func New(local *store.Store, rs *remote.Store, logger *log.Logger) Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &engine{local: local, remote: rs, logger: logger}
}

// begin guards re-entrancy and the signed-in requirement shared by every
// direction. It returns an unlock func on success.
func (e *engine) begin(userID uuid.UUID) (func(), error) {
	if userID == uuid.Nil {
		return nil, &SyncError{Op: "begin", Err: ErrNotSignedIn}
	}
	if !e.running.TryLock() {
		return nil, &SyncError{Op: "begin", Err: ErrSyncInFlight}
	}
	return e.running.Unlock, nil
}

func (e *engine) Push(ctx context.Context, userID uuid.UUID) (Result, error) {
	done, err := e.begin(userID)
	if err != nil {
		return Result{}, err
	}
	defer done()

	tabs, err := e.local.GetAllTabs()
	if err != nil {
		return Result{}, &SyncError{Op: "push", Err: err}
	}
	goals, err := e.local.GetAllGoals()
	if err != nil {
		return Result{}, &SyncError{Op: "push", Err: err}
	}

	// Tabs first so a goal never lands remotely before its tab.
	for _, t := range tabs {
		if err := e.remote.UpsertTab(ctx, models.TabToRemote(t, userID)); err != nil {
			return Result{}, &SyncError{Op: "push tab", Err: err}
		}
	}
	for _, g := range goals {
		if err := e.remote.UpsertGoal(ctx, models.GoalToRemote(g, userID)); err != nil {
			return Result{}, &SyncError{Op: "push goal", Err: err}
		}
	}

	e.logger.Printf("pushed %d goals, %d tabs for user %s", len(goals), len(tabs), userID)
	return Result{Goals: len(goals), Tabs: len(tabs)}, nil
}

func (e *engine) Pull(ctx context.Context, userID uuid.UUID, mode string) (Result, error) {
	if mode != PullOverwrite && mode != PullAddMissing {
		return Result{}, &SyncError{Op: "pull", Err: fmt.Errorf("unknown mode %q", mode)}
	}

	done, err := e.begin(userID)
	if err != nil {
		return Result{}, err
	}
	defer done()

	remoteTabs, err := e.remote.Tabs(ctx, userID)
	if err != nil {
		return Result{}, &SyncError{Op: "pull tabs", Err: err}
	}
	remoteGoals, err := e.remote.Goals(ctx, userID)
	if err != nil {
		return Result{}, &SyncError{Op: "pull goals", Err: err}
	}

	if mode == PullOverwrite {
		if err := e.pullOverwrite(remoteTabs, remoteGoals); err != nil {
			return Result{}, err
		}
	} else {
		if err := e.pullAddMissing(remoteTabs, remoteGoals); err != nil {
			return Result{}, err
		}
	}

	e.logger.Printf("pulled %d goals, %d tabs for user %s (mode=%s)",
		len(remoteGoals), len(remoteTabs), userID, mode)
	return Result{Goals: len(remoteGoals), Tabs: len(remoteTabs)}, nil
}

func (e *engine) pullOverwrite(tabs []models.RemoteTab, goals []models.RemoteGoal) error {
	if err := e.local.ClearAllGoals(); err != nil {
		return &SyncError{Op: "pull clear goals", Err: err}
	}
	if err := e.local.ClearAllTabs(); err != nil {
		return &SyncError{Op: "pull clear tabs", Err: err}
	}
	for _, t := range tabs {
		if err := e.local.AddTab(models.RemoteToTab(t)); err != nil {
			return &SyncError{Op: "pull insert tab", Err: err}
		}
	}
	for _, g := range goals {
		if err := e.local.AddGoal(models.RemoteToGoal(g)); err != nil {
			return &SyncError{Op: "pull insert goal", Err: err}
		}
	}
	return nil
}

func (e *engine) pullAddMissing(tabs []models.RemoteTab, goals []models.RemoteGoal) error {
	for _, t := range tabs {
		err := e.local.AddTab(models.RemoteToTab(t))
		if err != nil && !errors.Is(err, store.ErrDuplicateKey) {
			return &SyncError{Op: "pull insert tab", Err: err}
		}
	}
	for _, g := range goals {
		err := e.local.AddGoal(models.RemoteToGoal(g))
		if err != nil && !errors.Is(err, store.ErrDuplicateKey) {
			return &SyncError{Op: "pull insert goal", Err: err}
		}
	}
	return nil
}

func (e *engine) Merge(ctx context.Context, userID uuid.UUID) (Result, error) {
	done, err := e.begin(userID)
	if err != nil {
		return Result{}, err
	}
	defer done()

	localTabs, err := e.local.GetAllTabs()
	if err != nil {
		return Result{}, &SyncError{Op: "merge", Err: err}
	}
	localGoals, err := e.local.GetAllGoals()
	if err != nil {
		return Result{}, &SyncError{Op: "merge", Err: err}
	}
	remoteTabs, err := e.remote.Tabs(ctx, userID)
	if err != nil {
		return Result{}, &SyncError{Op: "merge tabs", Err: err}
	}
	remoteGoals, err := e.remote.Goals(ctx, userID)
	if err != nil {
		return Result{}, &SyncError{Op: "merge goals", Err: err}
	}

	mergedTabs := mergeTabs(localTabs, remoteTabs)
	mergedGoals := mergeGoals(localGoals, remoteGoals)

	// Local side: full replace with the union.
	if err := e.local.ClearAllTabs(); err != nil {
		return Result{}, &SyncError{Op: "merge clear tabs", Err: err}
	}
	for _, t := range mergedTabs {
		if err := e.local.AddTab(t); err != nil {
			return Result{}, &SyncError{Op: "merge insert tab", Err: err}
		}
	}
	if err := e.local.ReplaceAllGoals(mergedGoals); err != nil {
		return Result{}, &SyncError{Op: "merge replace goals", Err: err}
	}

	// Remote side: upsert every unioned record.
	for _, t := range mergedTabs {
		if err := e.remote.UpsertTab(ctx, models.TabToRemote(t, userID)); err != nil {
			return Result{}, &SyncError{Op: "merge upsert tab", Err: err}
		}
	}
	for _, g := range mergedGoals {
		if err := e.remote.UpsertGoal(ctx, models.GoalToRemote(g, userID)); err != nil {
			return Result{}, &SyncError{Op: "merge upsert goal", Err: err}
		}
	}

	e.logger.Printf("merged to %d goals, %d tabs for user %s",
		len(mergedGoals), len(mergedTabs), userID)
	return Result{Goals: len(mergedGoals), Tabs: len(mergedTabs)}, nil
}

// mergeTabs unions local and remote tabs by id, local version winning.
func mergeTabs(local []models.Tab, remote []models.RemoteTab) []models.Tab {
	seen := make(map[uuid.UUID]struct{}, len(local))
	merged := make([]models.Tab, 0, len(local)+len(remote))
	for _, t := range local {
		seen[t.ID] = struct{}{}
		merged = append(merged, t)
	}
	for _, rt := range remote {
		if _, ok := seen[rt.ID]; ok {
			continue
		}
		merged = append(merged, models.RemoteToTab(rt))
	}
	return merged
}

// mergeGoals unions local and remote goals by id, local version winning.
func mergeGoals(local []models.Goal, remote []models.RemoteGoal) []models.Goal {
	seen := make(map[uuid.UUID]struct{}, len(local))
	merged := make([]models.Goal, 0, len(local)+len(remote))
	for _, g := range local {
		seen[g.ID] = struct{}{}
		merged = append(merged, g)
	}
	for _, rg := range remote {
		if _, ok := seen[rg.ID]; ok {
			continue
		}
		merged = append(merged, models.RemoteToGoal(rg))
	}
	return merged
}
