package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/database"
	"github.com/arnold/streaks-api/internal/models"
)

func setupRemote(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return s
}

func remoteGoal(userID uuid.UUID, title string) models.RemoteGoal {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.RemoteGoal{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		Color:     "#22c55e",
		Progress:  []string{"2025-03-01"},
		Notes:     map[string]string{},
	}
}

func TestUpsertGoalReplacesWholeRecord(t *testing.T) {
	s := setupRemote(t)
	ctx := context.Background()
	userID := uuid.New()

	g := remoteGoal(userID, "Run")
	if err := s.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}

	g.Title = "Run further"
	g.Progress = []string{"2025-03-01", "2025-03-02"}
	if err := s.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("second UpsertGoal failed: %v", err)
	}

	goals, err := s.Goals(ctx, userID)
	if err != nil {
		t.Fatalf("Goals failed: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("upsert duplicated the row: %d goals", len(goals))
	}
	if goals[0].Title != "Run further" || len(goals[0].Progress) != 2 {
		t.Errorf("upsert did not replace the record: %+v", goals[0])
	}
}

func TestGoalsScopedByUser(t *testing.T) {
	s := setupRemote(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	if err := s.UpsertGoal(ctx, remoteGoal(alice, "Alice's")); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}
	if err := s.UpsertGoal(ctx, remoteGoal(bob, "Bob's")); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}

	goals, err := s.Goals(ctx, alice)
	if err != nil {
		t.Fatalf("Goals failed: %v", err)
	}
	if len(goals) != 1 || goals[0].Title != "Alice's" {
		t.Errorf("scope leak: %+v", goals)
	}
}

func TestDeleteScopedByUser(t *testing.T) {
	s := setupRemote(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	g := remoteGoal(alice, "Alice's")
	if err := s.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}

	// Deleting with the wrong user must not touch the row.
	if err := s.DeleteGoal(ctx, bob, g.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	goals, err := s.Goals(ctx, alice)
	if err != nil {
		t.Fatalf("Goals failed: %v", err)
	}
	if len(goals) != 1 {
		t.Error("delete by another user removed the row")
	}

	if err := s.DeleteGoal(ctx, alice, g.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	goals, _ = s.Goals(ctx, alice)
	if len(goals) != 0 {
		t.Error("owner delete left the row behind")
	}
}

func TestTabsSortedByOrder(t *testing.T) {
	s := setupRemote(t)
	ctx := context.Background()
	userID := uuid.New()

	for i, name := range []string{"Third", "First", "Second"} {
		order := []float64{20, 0, 10}[i]
		tab := models.RemoteTab{ID: uuid.New(), UserID: userID, Name: name, Order: order}
		if err := s.UpsertTab(ctx, tab); err != nil {
			t.Fatalf("UpsertTab failed: %v", err)
		}
	}

	tabs, err := s.Tabs(ctx, userID)
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	want := []string{"First", "Second", "Third"}
	for i, name := range want {
		if tabs[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, tabs[i].Name, name)
		}
	}
}
