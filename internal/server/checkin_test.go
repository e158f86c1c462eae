package server

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/questlabs/campushunt/internal/database"
	"github.com/questlabs/campushunt/internal/migrations"
	"github.com/questlabs/campushunt/internal/qrtoken"
)

const testSecret = "test-secret"

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSQLiteStore(db)
}

func createTestParticipant(t *testing.T, store *SQLiteStore, username string) Participant {
	t.Helper()
	p, err := store.CreateParticipant(context.Background(), username, "x", "Test", "User")
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}
	return p
}

func createTestLocation(t *testing.T, store *SQLiteStore, name string, points int) Location {
	t.Helper()
	loc, err := store.CreateLocation(context.Background(), LocationRequest{Name: name, Points: points})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

func signLocation(loc Location, offsetDays int) string {
	day := qrtoken.DayStamp(time.Now(), offsetDays)
	return qrtoken.Sign(strconv.Itoa(loc.ID), day, testSecret, loc.QRVersion)
}

func TestCheckinAwardsPointsOnce(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Main Library", 100)
	sig := signLocation(loc, 0)

	res, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, sig, nil, time.Now())
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if res.PointsAdded != 100 || res.AlreadyCheckedIn {
		t.Fatalf("first check-in: got pointsAdded=%d already=%v, want 100/false", res.PointsAdded, res.AlreadyCheckedIn)
	}

	got, _ := store.GetParticipant(ctx, p.ID)
	if got.Points != 100 {
		t.Fatalf("participant points = %d, want 100", got.Points)
	}

	// Same scan again: idempotent no-op, no extra points.
	res, err = checkInLocation(ctx, store, testSecret, p.ID, loc.ID, sig, nil, time.Now())
	if err != nil {
		t.Fatalf("repeat check-in: %v", err)
	}
	if !res.AlreadyCheckedIn || res.PointsAdded != 0 {
		t.Fatalf("repeat check-in: got pointsAdded=%d already=%v, want 0/true", res.PointsAdded, res.AlreadyCheckedIn)
	}

	got, _ = store.GetParticipant(ctx, p.ID)
	if got.Points != 100 {
		t.Fatalf("participant points after repeat = %d, want 100", got.Points)
	}
}

func TestCheckinAcceptsAdjacentDays(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Quad", 50)

	for _, offset := range []int{-1, 0, 1} {
		sig := signLocation(loc, offset)
		if !qrtoken.VerifyInWindow(strconv.Itoa(loc.ID), sig, testSecret, loc.QRVersion, time.Now()) {
			t.Fatalf("offset %d: signature should verify in window", offset)
		}
	}

	// Yesterday's code still checks in.
	sig := signLocation(loc, -1)
	if _, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, sig, nil, time.Now()); err != nil {
		t.Fatalf("yesterday's code rejected: %v", err)
	}
}

func TestCheckinRejectsOutsideWindow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Quad", 50)

	for _, offset := range []int{-2, 2} {
		sig := signLocation(loc, offset)
		_, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, sig, nil, time.Now())
		if !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("offset %d: got %v, want ErrInvalidSignature", offset, err)
		}
	}
}

func TestCheckinRejectsTamperedSignature(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Quad", 50)

	sig := []byte(signLocation(loc, 0))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	_, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, string(sig), nil, time.Now())
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestCheckinStaleVersionAfterRotate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Student Center", 100)
	oldVersion := loc.QRVersion
	oldSig := signLocation(loc, 0)

	if _, err := store.BumpLocationQRVersion(ctx, loc.ID); err != nil {
		t.Fatalf("bump version: %v", err)
	}

	// The printed code carries its version; after rotation it is permanently
	// invalid even though its own HMAC still verifies.
	_, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, oldSig, &oldVersion, time.Now())
	if !errors.Is(err, ErrStaleQRCode) {
		t.Fatalf("got %v, want ErrStaleQRCode", err)
	}

	// A code signed at the new version works.
	fresh, _ := store.GetLocation(ctx, loc.ID)
	sig := signLocation(fresh, 0)
	if _, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, sig, &fresh.QRVersion, time.Now()); err != nil {
		t.Fatalf("fresh code rejected: %v", err)
	}
}

func TestCheckinWithoutVersionValidatesCurrent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Quad", 50)
	oldSig := signLocation(loc, 0)

	if _, err := store.BumpLocationQRVersion(ctx, loc.ID); err != nil {
		t.Fatalf("bump version: %v", err)
	}

	// No explicit version: the old signature no longer verifies at the
	// current version.
	_, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, oldSig, nil, time.Now())
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestCheckinMissingEntities(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := createTestParticipant(t, store, "maria")
	loc := createTestLocation(t, store, "Quad", 50)
	sig := signLocation(loc, 0)

	if _, err := checkInLocation(ctx, store, testSecret, p.ID, 9999, sig, nil, time.Now()); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("unknown location: got %v, want ErrLocationNotFound", err)
	}
	if _, err := checkInLocation(ctx, store, testSecret, "nope", loc.ID, sig, nil, time.Now()); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("unknown participant: got %v, want ErrParticipantNotFound", err)
	}
	if _, err := checkInLocation(ctx, store, testSecret, p.ID, loc.ID, "", nil, time.Now()); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing signature: got %v, want ErrMissingFields", err)
	}
}
