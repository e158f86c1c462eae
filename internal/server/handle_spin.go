package server

import (
	"errors"
	"net/http"
)

type SpinResponse struct {
	Prize     string `json:"prize"`
	ClaimCode string `json:"claimCode"`
	CreatedAt string `json:"createdAt"`
}

func handleSpin(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, err := participantFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		spin, err := drawPrize(r.Context(), store, participantID)
		switch {
		case err == nil:
		case errors.Is(err, ErrParticipantNotFound):
			writeError(w, http.StatusNotFound, "participant not found")
			return
		case errors.Is(err, ErrInsufficientPoints):
			writeError(w, http.StatusConflict, "not enough points to spin yet")
			return
		case errors.Is(err, ErrAlreadySpun):
			writeError(w, http.StatusConflict, "you have already spun the wheel")
			return
		case errors.Is(err, ErrNoPrizesAvailable):
			writeError(w, http.StatusConflict, "no prizes left, contact event staff")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(ActivityEvent{
			Type:          "spin",
			ParticipantID: participantID,
			Prize:         spin.Prize,
		})

		writeJSON(w, http.StatusOK, SpinResponse{
			Prize:     spin.Prize,
			ClaimCode: spin.ClaimCode,
			CreatedAt: spin.CreatedAt,
		})
	}
}

func handleGetSpin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, err := participantFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		spin, err := store.GetSpin(r.Context(), participantID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no spin yet")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, spin)
	}
}
