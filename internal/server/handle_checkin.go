package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/questlabs/campushunt/internal/qrtoken"
)

// CheckinRequest accepts either the raw scanned payload or its already
// decoded fields.
type CheckinRequest struct {
	Payload    string `json:"payload,omitempty"`
	LocationID int    `json:"locationId,omitempty"`
	Signature  string `json:"signature,omitempty"`
	QRVersion  *int   `json:"qrVersion,omitempty"`
}

type CheckinResponse struct {
	OK               bool   `json:"ok"`
	PointsAdded      int    `json:"pointsAdded"`
	LocationID       int    `json:"locationId"`
	LocationName     string `json:"locationName"`
	AlreadyCheckedIn bool   `json:"alreadyCheckedIn,omitempty"`
}

func handleCheckin(store Store, secret string, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, err := participantFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req CheckinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Payload != "" {
			p, err := qrtoken.DecodeLocation(req.Payload)
			if err != nil {
				writeError(w, http.StatusBadRequest, "malformed qr payload")
				return
			}
			req.LocationID = p.LocationID
			req.Signature = p.Signature
			req.QRVersion = &p.Version
		}

		res, err := checkInLocation(r.Context(), store, secret, participantID, req.LocationID, req.Signature, req.QRVersion, time.Now())
		if err != nil {
			writeCheckinError(w, err)
			return
		}

		if !res.AlreadyCheckedIn {
			broker.Publish(ActivityEvent{
				Type:          "checkin",
				ParticipantID: participantID,
				LocationID:    res.Location.ID,
				Points:        res.PointsAdded,
			})
		}

		writeJSON(w, http.StatusOK, CheckinResponse{
			OK:               true,
			PointsAdded:      res.PointsAdded,
			LocationID:       res.Location.ID,
			LocationName:     res.Location.Name,
			AlreadyCheckedIn: res.AlreadyCheckedIn,
		})
	}
}

// writeCheckinError maps the verification taxonomy onto HTTP statuses. Stale
// codes and signature mismatches get distinct messages so the app can tell
// the user whether rescanning a fresh code will help.
func writeCheckinError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		writeError(w, http.StatusBadRequest, "participantId, locationId and signature are required")
	case errors.Is(err, ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "location not found")
	case errors.Is(err, ErrSubEventNotFound):
		writeError(w, http.StatusNotFound, "sub-event not found")
	case errors.Is(err, ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, ErrStaleQRCode):
		writeError(w, http.StatusConflict, "this qr code has been replaced, scan the latest one")
	case errors.Is(err, ErrInvalidSignature):
		writeError(w, http.StatusUnprocessableEntity, "invalid or expired qr code")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
