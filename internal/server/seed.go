package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seed makes sure a fresh database is usable: the configured admin account,
// the spin threshold setting, and a demo hunt when no locations exist yet.
// Safe to run on every start.
func Seed(ctx context.Context, logger *slog.Logger, store *SQLiteStore, adminUsername, adminPassword string) error {
	if err := seedAdmin(ctx, logger, store, adminUsername, adminPassword); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	if err := seedSettings(ctx, store); err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}

	locations, err := store.ListLocations(ctx)
	if err != nil {
		return err
	}
	if len(locations) > 0 {
		return nil
	}

	if err := seedDemoHunt(ctx, store); err != nil {
		return fmt.Errorf("seeding demo hunt: %w", err)
	}
	logger.Info("demo hunt seeded")
	return nil
}

func seedAdmin(ctx context.Context, logger *slog.Logger, store *SQLiteStore, username, password string) error {
	_, _, err := store.AdminCredentials(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = store.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash) VALUES (?, ?, ?)
	`, uuid.NewString(), username, string(hash))
	if err != nil {
		return err
	}
	logger.Info("admin account created", "username", username)
	return nil
}

func seedSettings(ctx context.Context, store *SQLiteStore) error {
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ('spin_threshold', ?)
		ON CONFLICT (key) DO NOTHING
	`, defaultSpinThreshold)
	return err
}

func seedDemoHunt(ctx context.Context, store *SQLiteStore) error {
	locations := []LocationRequest{
		{Name: "Main Library", Lat: -12.0692, Lng: -77.0785, Points: 100, Description: "Start at the front steps."},
		{Name: "Engineering Quad", Lat: -12.0701, Lng: -77.0779, Points: 150, Description: "Look for the sundial."},
		{Name: "Student Center", Lat: -12.0688, Lng: -77.0771, Points: 100, Description: "Second floor, by the mural."},
	}

	var first Location
	for i, req := range locations {
		loc, err := store.CreateLocation(ctx, req)
		if err != nil {
			return err
		}
		if i == 0 {
			first = loc
		}
	}

	subEvents := []SubEventRequest{
		{ID: "opening-talk", LocationID: first.ID, Name: "Opening Talk", Schedule: "10:00", Points: 100},
		{ID: "trivia-round", LocationID: first.ID, Name: "Trivia Round", Schedule: "14:00", Points: 100},
	}
	for _, req := range subEvents {
		if _, err := store.CreateSubEvent(ctx, req); err != nil {
			return err
		}
	}

	prizes := []PrizeRequest{
		{Name: "Sticker Pack", Weight: 40, Stock: 100},
		{Name: "Tote Bag", Weight: 30, Stock: 50},
		{Name: "T-Shirt", Weight: 20, Stock: 25},
		{Name: "Hoodie", Weight: 10, Stock: 10},
	}
	for _, req := range prizes {
		if _, err := store.CreatePrize(ctx, req); err != nil {
			return err
		}
	}

	cards := []HeroCardRequest{
		{Title: "Welcome to Campus Hunt", Subtitle: "Scan QR codes, earn points, win prizes", SortOrder: 1},
		{Title: "How to Play", Subtitle: "Visit the locations on the map and scan the code at each one", SortOrder: 2},
	}
	for _, req := range cards {
		if _, err := store.CreateHeroCard(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
