package server

import (
	"errors"
	"net/http"
)

// MeResponse is the participant's own progress view.
type MeResponse struct {
	Participant      Participant       `json:"participant"`
	Checkins         []Checkin         `json:"checkins"`
	SubEventCheckins []SubEventCheckin `json:"subEventCheckins"`
	Spin             *Spin             `json:"spin,omitempty"`
	SpinThreshold    int               `json:"spinThreshold"`
	CanSpin          bool              `json:"canSpin"`
}

func handleMe(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, err := participantFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		p, err := store.GetParticipant(r.Context(), participantID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		checkins, err := store.ListCheckins(r.Context(), participantID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		subEventCheckins, err := store.ListSubEventCheckins(r.Context(), participantID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		threshold, err := store.SpinThreshold(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := MeResponse{
			Participant:      p,
			Checkins:         checkins,
			SubEventCheckins: subEventCheckins,
			SpinThreshold:    threshold,
		}

		spin, err := store.GetSpin(r.Context(), participantID)
		switch {
		case err == nil:
			resp.Spin = &spin
		case !errors.Is(err, ErrNotFound):
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.CanSpin = resp.Spin == nil && p.Points >= threshold
		if resp.Checkins == nil {
			resp.Checkins = []Checkin{}
		}
		if resp.SubEventCheckins == nil {
			resp.SubEventCheckins = []SubEventCheckin{}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
