package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/questlabs/campushunt/internal/qrtoken"
)

// Errors mapped from the generic store ErrNotFound so callers can tell which
// entity was missing.
var (
	ErrLocationNotFound    = errors.New("location not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSubEventNotFound    = errors.New("sub-event not found")
)

type CheckinResult struct {
	Location         Location
	PointsAdded      int
	AlreadyCheckedIn bool
}

// checkInLocation is the check-in authority for location QR codes: it
// validates the signature against the current version and the three-day
// acceptance window, then awards the location's points at most once per
// (participant, location) pair. Re-scanning an already-redeemed code is a
// harmless no-op, not an error.
func checkInLocation(ctx context.Context, store Store, secret, participantID string, locationID int, signature string, qrVersion *int, now time.Time) (CheckinResult, error) {
	if participantID == "" || locationID <= 0 || signature == "" {
		return CheckinResult{}, ErrMissingFields
	}

	loc, err := store.GetLocation(ctx, locationID)
	if errors.Is(err, ErrNotFound) {
		return CheckinResult{}, ErrLocationNotFound
	}
	if err != nil {
		return CheckinResult{}, err
	}

	// An explicit version that differs from the stored one means the code
	// predates the last rotation. It stays invalid forever, even though its
	// HMAC would still verify at its own version.
	versionToValidate := loc.QRVersion
	if qrVersion != nil {
		if *qrVersion != loc.QRVersion {
			return CheckinResult{}, ErrStaleQRCode
		}
		versionToValidate = *qrVersion
	}

	if !qrtoken.VerifyInWindow(strconv.Itoa(locationID), signature, secret, versionToValidate, now) {
		return CheckinResult{}, ErrInvalidSignature
	}

	if _, err := store.GetParticipant(ctx, participantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return CheckinResult{}, ErrParticipantNotFound
		}
		return CheckinResult{}, err
	}

	created, err := store.CreateCheckin(ctx, participantID, locationID, loc.Points, "qr")
	if err != nil {
		return CheckinResult{}, err
	}
	if !created {
		return CheckinResult{Location: loc, AlreadyCheckedIn: true}, nil
	}
	return CheckinResult{Location: loc, PointsAdded: loc.Points}, nil
}

type SubEventCheckinResult struct {
	SubEvent        SubEvent
	PointsAdded     int
	AlreadyComplete bool
}

// checkInSubEvent is the sub-event counterpart. Sub-event payloads carry no
// signature: existence plus version match is the whole gate. The completion
// is always recorded, but the point bonus is paid only for the participant's
// first sub-event at the parent location.
func checkInSubEvent(ctx context.Context, store Store, participantID, subEventID string, qrVersion *int) (SubEventCheckinResult, error) {
	if participantID == "" || subEventID == "" {
		return SubEventCheckinResult{}, ErrMissingFields
	}

	se, err := store.GetSubEvent(ctx, subEventID)
	if errors.Is(err, ErrNotFound) {
		return SubEventCheckinResult{}, ErrSubEventNotFound
	}
	if err != nil {
		return SubEventCheckinResult{}, err
	}

	if qrVersion != nil && *qrVersion != se.QRVersion {
		return SubEventCheckinResult{}, ErrStaleQRCode
	}

	if _, err := store.GetParticipant(ctx, participantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return SubEventCheckinResult{}, ErrParticipantNotFound
		}
		return SubEventCheckinResult{}, err
	}

	created, awarded, err := store.CreateSubEventCheckin(ctx, participantID, subEventID, se.LocationID, se.Points)
	if err != nil {
		return SubEventCheckinResult{}, err
	}
	if !created {
		return SubEventCheckinResult{SubEvent: se, AlreadyComplete: true}, nil
	}
	return SubEventCheckinResult{SubEvent: se, PointsAdded: awarded}, nil
}
