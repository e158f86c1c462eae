package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSeedIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for range 2 {
		if err := Seed(ctx, logger, store, "admin", "changeme"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	locations, err := store.ListLocations(ctx)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 3 {
		t.Fatalf("locations after double seed = %d, want 3", len(locations))
	}

	prizes, _ := store.ListPrizes(ctx)
	if len(prizes) != 4 {
		t.Fatalf("prizes after double seed = %d, want 4", len(prizes))
	}

	threshold, _ := store.SpinThreshold(ctx)
	if threshold != defaultSpinThreshold {
		t.Fatalf("threshold = %d, want %d", threshold, defaultSpinThreshold)
	}

	if _, _, err := store.AdminCredentials(ctx, "admin"); err != nil {
		t.Fatalf("admin missing after seed: %v", err)
	}
}
