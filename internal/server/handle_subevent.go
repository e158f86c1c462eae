package server

import (
	"net/http"

	"github.com/questlabs/campushunt/internal/qrtoken"
)

type SubEventCheckinRequest struct {
	Payload    string `json:"payload,omitempty"`
	SubEventID string `json:"subEventId,omitempty"`
	QRVersion  *int   `json:"qrVersion,omitempty"`
}

type SubEventCheckinResponse struct {
	OK              bool   `json:"ok"`
	PointsAdded     int    `json:"pointsAdded"`
	SubEventID      string `json:"subEventId"`
	SubEventName    string `json:"subEventName"`
	LocationID      int    `json:"locationId"`
	AlreadyComplete bool   `json:"alreadyComplete,omitempty"`
}

func handleSubEventCheckin(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, err := participantFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req SubEventCheckinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Payload != "" {
			p, err := qrtoken.DecodeSubEvent(req.Payload)
			if err != nil {
				writeError(w, http.StatusBadRequest, "malformed qr payload")
				return
			}
			req.SubEventID = p.SubEventID
			req.QRVersion = &p.Version
		}

		res, err := checkInSubEvent(r.Context(), store, participantID, req.SubEventID, req.QRVersion)
		if err != nil {
			writeCheckinError(w, err)
			return
		}

		if !res.AlreadyComplete {
			broker.Publish(ActivityEvent{
				Type:          "subevent",
				ParticipantID: participantID,
				SubEventID:    res.SubEvent.ID,
				LocationID:    res.SubEvent.LocationID,
				Points:        res.PointsAdded,
			})
		}

		writeJSON(w, http.StatusOK, SubEventCheckinResponse{
			OK:              true,
			PointsAdded:     res.PointsAdded,
			SubEventID:      res.SubEvent.ID,
			SubEventName:    res.SubEvent.Name,
			LocationID:      res.SubEvent.LocationID,
			AlreadyComplete: res.AlreadyComplete,
		})
	}
}
