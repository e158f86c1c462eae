package server

import (
	"context"
	"errors"
	"testing"
)

func TestMarkClaimedIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	prize := createTestPrize(t, store, "Tote Bag", 10, 5)
	if _, err := store.CreateSpin(ctx, p.ID, prize, "1234"); err != nil {
		t.Fatalf("create spin: %v", err)
	}

	already, err := store.MarkClaimed(ctx, p.ID)
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if already {
		t.Fatal("first mark reported alreadyClaimed")
	}

	spin, err := store.GetSpin(ctx, p.ID)
	if err != nil {
		t.Fatalf("get spin: %v", err)
	}
	if !spin.Claimed || spin.ClaimedAt == nil {
		t.Fatalf("after mark: claimed=%v claimedAt=%v", spin.Claimed, spin.ClaimedAt)
	}
	firstClaimedAt := *spin.ClaimedAt

	already, err = store.MarkClaimed(ctx, p.ID)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !already {
		t.Fatal("second mark did not report alreadyClaimed")
	}

	// The original handover timestamp survives repeat marks.
	spin, _ = store.GetSpin(ctx, p.ID)
	if spin.ClaimedAt == nil || *spin.ClaimedAt != firstClaimedAt {
		t.Fatalf("claimedAt changed on repeat mark: %v -> %v", firstClaimedAt, spin.ClaimedAt)
	}
}

func TestMarkClaimedWithoutSpin(t *testing.T) {
	store := setupStore(t)
	p := createTestParticipant(t, store, "maria")

	_, err := store.MarkClaimed(context.Background(), p.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSpinByClaimCode(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	prize := createTestPrize(t, store, "T-Shirt", 10, 5)
	if _, err := store.CreateSpin(ctx, p.ID, prize, "4321"); err != nil {
		t.Fatalf("create spin: %v", err)
	}

	claim, err := store.SpinByClaimCode(ctx, "4321")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if claim.ParticipantID != p.ID {
		t.Errorf("participantId = %q, want %q", claim.ParticipantID, p.ID)
	}
	if claim.Prize != "T-Shirt" {
		t.Errorf("prize = %q, want T-Shirt", claim.Prize)
	}
	if claim.ParticipantName != "Test User" {
		t.Errorf("participantName = %q, want %q", claim.ParticipantName, "Test User")
	}

	if _, err := store.SpinByClaimCode(ctx, "0000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code: got %v, want ErrNotFound", err)
	}
}
