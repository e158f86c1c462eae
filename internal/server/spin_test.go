package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
)

func createTestPrize(t *testing.T, store *SQLiteStore, name string, weight, stock int) Prize {
	t.Helper()
	p, err := store.CreatePrize(context.Background(), PrizeRequest{Name: name, Weight: weight, Stock: stock})
	if err != nil {
		t.Fatalf("create prize %s: %v", name, err)
	}
	return p
}

func givePoints(t *testing.T, store *SQLiteStore, participantID string, points int) {
	t.Helper()
	if _, err := store.AdjustPoints(context.Background(), participantID, points); err != nil {
		t.Fatalf("adjust points: %v", err)
	}
}

func TestSpinRequiresThreshold(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	createTestPrize(t, store, "Sticker", 1, 10)
	givePoints(t, store, p.ID, defaultSpinThreshold-1)

	_, err := drawPrize(ctx, store, p.ID)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("got %v, want ErrInsufficientPoints", err)
	}
}

func TestSpinAtMostOncePerParticipant(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	createTestPrize(t, store, "Sticker", 1, 10)
	givePoints(t, store, p.ID, defaultSpinThreshold)

	spin, err := drawPrize(ctx, store, p.ID)
	if err != nil {
		t.Fatalf("first spin: %v", err)
	}
	if spin.Prize != "Sticker" {
		t.Fatalf("prize = %q, want Sticker", spin.Prize)
	}
	if len(spin.ClaimCode) != 4 {
		t.Fatalf("claim code = %q, want 4 digits", spin.ClaimCode)
	}

	_, err = drawPrize(ctx, store, p.ID)
	if !errors.Is(err, ErrAlreadySpun) {
		t.Fatalf("second spin: got %v, want ErrAlreadySpun", err)
	}

	// Exactly one unit of stock consumed.
	prizes, _ := store.ListPrizes(ctx)
	if prizes[0].Stock != 9 {
		t.Fatalf("stock = %d, want 9", prizes[0].Stock)
	}
}

func TestSpinNoPrizesLeavesNoRecord(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	givePoints(t, store, p.ID, defaultSpinThreshold)

	_, err := drawPrize(ctx, store, p.ID)
	if !errors.Is(err, ErrNoPrizesAvailable) {
		t.Fatalf("got %v, want ErrNoPrizesAvailable", err)
	}

	// A rejected spin leaves no record, so the participant can retry once
	// stock is replenished.
	if _, err := store.GetSpin(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("spin record after rejection: got %v, want ErrNotFound", err)
	}
}

func TestSpinZeroWeightAndZeroStockExcluded(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	createTestPrize(t, store, "Retired", 0, 10)
	createTestPrize(t, store, "SoldOut", 10, 0)
	createTestPrize(t, store, "Live", 10, 5)
	givePoints(t, store, p.ID, defaultSpinThreshold)

	spin, err := drawPrize(ctx, store, p.ID)
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if spin.Prize != "Live" {
		t.Fatalf("prize = %q, want Live", spin.Prize)
	}
}

func TestSpinStockExhaustion(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	createTestPrize(t, store, "Hoodie", 10, 1)

	winner := createTestParticipant(t, store, "first")
	givePoints(t, store, winner.ID, defaultSpinThreshold)
	if _, err := drawPrize(ctx, store, winner.ID); err != nil {
		t.Fatalf("winner spin: %v", err)
	}

	loser := createTestParticipant(t, store, "second")
	givePoints(t, store, loser.ID, defaultSpinThreshold)
	_, err := drawPrize(ctx, store, loser.ID)
	if !errors.Is(err, ErrNoPrizesAvailable) {
		t.Fatalf("got %v, want ErrNoPrizesAvailable", err)
	}
}

func TestPickPrizeBoundaries(t *testing.T) {
	pool := []Prize{
		{Name: "A", Weight: 40},
		{Name: "B", Weight: 30},
		{Name: "C", Weight: 20},
		{Name: "D", Weight: 10},
	}

	tests := []struct {
		roll int64
		want string
	}{
		{0, "A"},
		{39, "A"},
		{40, "B"},
		{69, "B"},
		{70, "C"},
		{89, "C"},
		{90, "D"},
		{99, "D"},
	}
	for _, tt := range tests {
		if got := pickPrize(pool, tt.roll).Name; got != tt.want {
			t.Errorf("pickPrize(roll=%d) = %q, want %q", tt.roll, got, tt.want)
		}
	}
}

func TestPickPrizeDistribution(t *testing.T) {
	pool := []Prize{
		{Name: "A", Weight: 40},
		{Name: "B", Weight: 30},
		{Name: "C", Weight: 20},
		{Name: "D", Weight: 10},
	}
	total := totalWeight(pool)

	const n = 100000
	counts := map[string]int{}
	for range n {
		counts[pickPrize(pool, rand.Int64N(total)).Name]++
	}

	for _, p := range pool {
		want := float64(p.Weight) / float64(total)
		got := float64(counts[p.Name]) / n
		// With n=100k the standard error is well under 0.005.
		if got < want-0.02 || got > want+0.02 {
			t.Errorf("prize %s: observed frequency %.3f, want ~%.3f", p.Name, got, want)
		}
	}
}

func TestNewClaimCodeFormat(t *testing.T) {
	for range 100 {
		code := newClaimCode()
		if !validClaimCode(code) {
			t.Fatalf("claim code %q is not four digits", code)
		}
	}
}
