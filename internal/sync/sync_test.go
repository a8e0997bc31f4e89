package sync

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/database"
	"github.com/arnold/streaks-api/internal/models"
	"github.com/arnold/streaks-api/internal/remote"
	"github.com/arnold/streaks-api/internal/store"
)

// setupEngine builds a sync engine over two temp SQLite databases: one
// local store, one standing in for the remote.
func setupEngine(t *testing.T) (Engine, *store.Store, *remote.Store) {
	t.Helper()

	dir := t.TempDir()

	local, err := store.Open(filepath.Join(dir, "local.db"))
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	remoteDB, err := database.Open(filepath.Join(dir, "remote.db"))
	if err != nil {
		t.Fatalf("failed to open remote database: %v", err)
	}
	rs := remote.New(remoteDB)
	if err := rs.Migrate(); err != nil {
		t.Fatalf("failed to migrate remote database: %v", err)
	}

	return New(local, rs, log.New(io.Discard, "", 0)), local, rs
}

func testTab(name string, order float64) models.Tab {
	return models.Tab{ID: uuid.New(), Name: name, Order: order}
}

func testGoal(tabID uuid.UUID, title string, order float64) models.Goal {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.Goal{
		ID:        uuid.New(),
		Title:     title,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 13),
		Color:     "#22c55e",
		Progress:  []string{"2025-03-01", "2025-03-02"},
		Order:     order,
		Notes:     map[string]string{"2025-03-01": "felt good"},
		TabID:     tabID,
	}
}

func seedLocal(t *testing.T, local *store.Store, tabs []models.Tab, goals []models.Goal) {
	t.Helper()
	for _, tab := range tabs {
		if err := local.AddTab(tab); err != nil {
			t.Fatalf("failed to seed tab: %v", err)
		}
	}
	for _, g := range goals {
		if err := local.AddGoal(g); err != nil {
			t.Fatalf("failed to seed goal: %v", err)
		}
	}
}

func seedRemote(t *testing.T, rs *remote.Store, userID uuid.UUID, tabs []models.Tab, goals []models.Goal) {
	t.Helper()
	ctx := context.Background()
	for _, tab := range tabs {
		if err := rs.UpsertTab(ctx, models.TabToRemote(tab, userID)); err != nil {
			t.Fatalf("failed to seed remote tab: %v", err)
		}
	}
	for _, g := range goals {
		if err := rs.UpsertGoal(ctx, models.GoalToRemote(g, userID)); err != nil {
			t.Fatalf("failed to seed remote goal: %v", err)
		}
	}
}

func remoteGoalIDs(t *testing.T, rs *remote.Store, userID uuid.UUID) map[uuid.UUID]models.RemoteGoal {
	t.Helper()
	goals, err := rs.Goals(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to read remote goals: %v", err)
	}
	byID := make(map[uuid.UUID]models.RemoteGoal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	return byID
}

func localGoalIDs(t *testing.T, local *store.Store) map[uuid.UUID]models.Goal {
	t.Helper()
	goals, err := local.GetAllGoals()
	if err != nil {
		t.Fatalf("failed to read local goals: %v", err)
	}
	byID := make(map[uuid.UUID]models.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	return byID
}

func TestPushUploadsEverything(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	tab := testTab("Tab1", 0)
	g1 := testGoal(tab.ID, "Run", 0)
	g2 := testGoal(tab.ID, "Read", 1)
	seedLocal(t, local, []models.Tab{tab}, []models.Goal{g1, g2})

	result, err := engine.Push(context.Background(), userID)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if result.Goals != 2 || result.Tabs != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	remoteGoals := remoteGoalIDs(t, rs, userID)
	if len(remoteGoals) != 2 {
		t.Fatalf("expected 2 remote goals, got %d", len(remoteGoals))
	}
	got := remoteGoals[g1.ID]
	if got.Title != "Run" || got.UserID != userID {
		t.Errorf("remote goal wrong: %+v", got)
	}
	if !reflect.DeepEqual(got.Progress, g1.Progress) {
		t.Errorf("progress not carried: %v", got.Progress)
	}
}

func TestPushIsIdempotent(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	tab := testTab("Tab1", 0)
	seedLocal(t, local, []models.Tab{tab}, []models.Goal{testGoal(tab.ID, "Run", 0)})

	if _, err := engine.Push(context.Background(), userID); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	first := remoteGoalIDs(t, rs, userID)

	if _, err := engine.Push(context.Background(), userID); err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	second := remoteGoalIDs(t, rs, userID)

	if len(first) != len(second) {
		t.Fatalf("second push changed record count: %d vs %d", len(first), len(second))
	}
	for id, g := range first {
		got := second[id]
		if got.Title != g.Title || !reflect.DeepEqual(got.Progress, g.Progress) {
			t.Errorf("second push changed record %s", id)
		}
	}
}

func TestPushNeverDeletesRemote(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	remoteOnlyTab := testTab("Cloud", 0)
	remoteOnly := testGoal(remoteOnlyTab.ID, "Cloud only", 0)
	seedRemote(t, rs, userID, []models.Tab{remoteOnlyTab}, []models.Goal{remoteOnly})

	localTab := testTab("Tab1", 0)
	seedLocal(t, local, []models.Tab{localTab}, []models.Goal{testGoal(localTab.ID, "Local", 0)})

	if _, err := engine.Push(context.Background(), userID); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	remoteGoals := remoteGoalIDs(t, rs, userID)
	if _, ok := remoteGoals[remoteOnly.ID]; !ok {
		t.Error("push deleted a remote-only record")
	}
}

func TestPullOverwriteReplacesLocal(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	remoteTab := testTab("Cloud", 0)
	remoteGoal := testGoal(remoteTab.ID, "Cloud goal", 0)
	seedRemote(t, rs, userID, []models.Tab{remoteTab}, []models.Goal{remoteGoal})

	localTab := testTab("Tab1", 0)
	localOnly := testGoal(localTab.ID, "Local only", 0)
	seedLocal(t, local, []models.Tab{localTab}, []models.Goal{localOnly})

	if _, err := engine.Pull(context.Background(), userID, PullOverwrite); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	goals := localGoalIDs(t, local)
	if _, ok := goals[localOnly.ID]; ok {
		t.Error("overwrite pull kept a local-only goal")
	}
	if _, ok := goals[remoteGoal.ID]; !ok {
		t.Error("overwrite pull missed a remote goal")
	}
}

func TestPullAddMissingKeepsLocalVersion(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	tab := testTab("Tab1", 0)
	shared := testGoal(tab.ID, "Local title", 0)
	remoteOnly := testGoal(tab.ID, "Remote only", 1)

	seedLocal(t, local, []models.Tab{tab}, []models.Goal{shared})

	remoteShared := shared
	remoteShared.Title = "Remote title"
	seedRemote(t, rs, userID, []models.Tab{tab}, []models.Goal{remoteShared, remoteOnly})

	if _, err := engine.Pull(context.Background(), userID, PullAddMissing); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	goals := localGoalIDs(t, local)
	if len(goals) != 2 {
		t.Fatalf("expected 2 local goals, got %d", len(goals))
	}
	// The remote copy of a shared id never overwrites local on this path.
	if goals[shared.ID].Title != "Local title" {
		t.Errorf("pull merge overwrote local record: %+v", goals[shared.ID])
	}
	if _, ok := goals[remoteOnly.ID]; !ok {
		t.Error("pull merge missed a remote-only goal")
	}
}

func TestMergeUnionsBothSides(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	tab := testTab("Tab1", 0)
	localOnly := testGoal(tab.ID, "Local only", 0)
	shared := testGoal(tab.ID, "Local wins", 1)
	remoteOnly := testGoal(tab.ID, "Remote only", 2)

	seedLocal(t, local, []models.Tab{tab}, []models.Goal{localOnly, shared})

	remoteShared := shared
	remoteShared.Title = "Remote loses"
	seedRemote(t, rs, userID, []models.Tab{tab}, []models.Goal{remoteShared, remoteOnly})

	result, err := engine.Merge(context.Background(), userID)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Goals != 3 {
		t.Errorf("expected union of 3 goals, got %d", result.Goals)
	}

	// Both sides now hold the union, ties broken in favor of local.
	localGoals := localGoalIDs(t, local)
	remoteGoals := remoteGoalIDs(t, rs, userID)
	for _, id := range []uuid.UUID{localOnly.ID, shared.ID, remoteOnly.ID} {
		if _, ok := localGoals[id]; !ok {
			t.Errorf("local side missing %s after merge", id)
		}
		if _, ok := remoteGoals[id]; !ok {
			t.Errorf("remote side missing %s after merge", id)
		}
	}
	if localGoals[shared.ID].Title != "Local wins" {
		t.Errorf("local version lost the tie: %+v", localGoals[shared.ID])
	}
	if remoteGoals[shared.ID].Title != "Local wins" {
		t.Errorf("merge did not push the winning version: %+v", remoteGoals[shared.ID])
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()

	tab := testTab("Tab1", 0)
	seedLocal(t, local, []models.Tab{tab}, []models.Goal{testGoal(tab.ID, "Run", 0)})
	seedRemote(t, rs, userID, nil, []models.Goal{testGoal(tab.ID, "Cloud", 1)})

	first, err := engine.Merge(context.Background(), userID)
	if err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	second, err := engine.Merge(context.Background(), userID)
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	if first != second {
		t.Errorf("merge not idempotent: %+v vs %+v", first, second)
	}
}

func TestSyncRequiresUser(t *testing.T) {
	engine, _, _ := setupEngine(t)
	ctx := context.Background()

	if _, err := engine.Push(ctx, uuid.Nil); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Push without user: got %v, want ErrNotSignedIn", err)
	}
	if _, err := engine.Pull(ctx, uuid.Nil, PullOverwrite); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Pull without user: got %v, want ErrNotSignedIn", err)
	}
	if _, err := engine.Merge(ctx, uuid.Nil); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Merge without user: got %v, want ErrNotSignedIn", err)
	}
}

func TestSyncRejectsOverlap(t *testing.T) {
	eng, _, _ := setupEngine(t)

	// Hold the in-flight guard the way a running operation would.
	e := eng.(*engine)
	e.running.Lock()
	defer e.running.Unlock()

	if _, err := eng.Push(context.Background(), uuid.New()); !errors.Is(err, ErrSyncInFlight) {
		t.Errorf("overlapping sync: got %v, want ErrSyncInFlight", err)
	}
}

func TestPullRejectsUnknownMode(t *testing.T) {
	engine, _, _ := setupEngine(t)

	if _, err := engine.Pull(context.Background(), uuid.New(), "sideways"); err == nil {
		t.Error("expected error for unknown pull mode")
	}
}

func TestSyncScopedToUser(t *testing.T) {
	engine, local, rs := setupEngine(t)
	userID := uuid.New()
	otherUser := uuid.New()

	otherTab := testTab("Theirs", 0)
	otherGoal := testGoal(otherTab.ID, "Someone else's", 0)
	seedRemote(t, rs, otherUser, []models.Tab{otherTab}, []models.Goal{otherGoal})

	if _, err := engine.Pull(context.Background(), userID, PullOverwrite); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	goals := localGoalIDs(t, local)
	if len(goals) != 0 {
		t.Errorf("pulled records belonging to another user: %+v", goals)
	}
}
