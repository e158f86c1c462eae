package server

import (
	"context"
	"errors"
	"testing"
)

func createTestSubEvent(t *testing.T, store *SQLiteStore, id string, locationID, points int) SubEvent {
	t.Helper()
	se, err := store.CreateSubEvent(context.Background(), SubEventRequest{
		ID: id, LocationID: locationID, Name: id, Points: points,
	})
	if err != nil {
		t.Fatalf("create sub-event %s: %v", id, err)
	}
	return se
}

func TestSubEventBonusOnlyForFirstAtLocation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	locA := createTestLocation(t, store, "Library", 100)
	locB := createTestLocation(t, store, "Quad", 100)

	createTestSubEvent(t, store, "talk", locA.ID, 100)
	createTestSubEvent(t, store, "trivia", locA.ID, 100)
	createTestSubEvent(t, store, "workshop", locB.ID, 100)

	res, err := checkInSubEvent(ctx, store, p.ID, "talk", nil)
	if err != nil {
		t.Fatalf("first sub-event: %v", err)
	}
	if res.PointsAdded != 100 {
		t.Fatalf("first sub-event at location: pointsAdded = %d, want 100", res.PointsAdded)
	}

	// Second sub-event at the same location is recorded but pays no bonus.
	res, err = checkInSubEvent(ctx, store, p.ID, "trivia", nil)
	if err != nil {
		t.Fatalf("second sub-event: %v", err)
	}
	if res.PointsAdded != 0 || res.AlreadyComplete {
		t.Fatalf("second sub-event at location: pointsAdded=%d already=%v, want 0/false", res.PointsAdded, res.AlreadyComplete)
	}

	completions, err := store.ListSubEventCheckins(ctx, p.ID)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(completions) != 2 {
		t.Fatalf("completions = %d, want 2", len(completions))
	}

	// A new location starts the bonus over.
	res, err = checkInSubEvent(ctx, store, p.ID, "workshop", nil)
	if err != nil {
		t.Fatalf("other location sub-event: %v", err)
	}
	if res.PointsAdded != 100 {
		t.Fatalf("first sub-event at new location: pointsAdded = %d, want 100", res.PointsAdded)
	}

	got, _ := store.GetParticipant(ctx, p.ID)
	if got.Points != 200 {
		t.Fatalf("participant points = %d, want 200", got.Points)
	}
}

func TestSubEventRepeatIsNoOp(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Library", 100)
	createTestSubEvent(t, store, "talk", loc.ID, 100)

	if _, err := checkInSubEvent(ctx, store, p.ID, "talk", nil); err != nil {
		t.Fatalf("first: %v", err)
	}

	res, err := checkInSubEvent(ctx, store, p.ID, "talk", nil)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if !res.AlreadyComplete || res.PointsAdded != 0 {
		t.Fatalf("repeat: pointsAdded=%d already=%v, want 0/true", res.PointsAdded, res.AlreadyComplete)
	}

	got, _ := store.GetParticipant(ctx, p.ID)
	if got.Points != 100 {
		t.Fatalf("participant points = %d, want 100", got.Points)
	}
}

func TestSubEventStaleVersion(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Library", 100)
	se := createTestSubEvent(t, store, "talk", loc.ID, 100)

	oldVersion := se.QRVersion
	if _, err := store.BumpSubEventQRVersion(ctx, se.ID); err != nil {
		t.Fatalf("bump: %v", err)
	}

	_, err := checkInSubEvent(ctx, store, p.ID, se.ID, &oldVersion)
	if !errors.Is(err, ErrStaleQRCode) {
		t.Fatalf("got %v, want ErrStaleQRCode", err)
	}
}

func TestSubEventUnknown(t *testing.T) {
	store := setupStore(t)
	p := createTestParticipant(t, store, "maria")

	_, err := checkInSubEvent(context.Background(), store, p.ID, "nope", nil)
	if !errors.Is(err, ErrSubEventNotFound) {
		t.Fatalf("got %v, want ErrSubEventNotFound", err)
	}
}
