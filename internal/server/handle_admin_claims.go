package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ClaimLookupResponse struct {
	Found bool       `json:"found"`
	Claim *ClaimInfo `json:"claim,omitempty"`
}

func validClaimCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func handleAdminLookupClaim(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !validClaimCode(code) {
			writeError(w, http.StatusBadRequest, "claim code must be four digits")
			return
		}

		claim, err := store.SpinByClaimCode(r.Context(), code)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusOK, ClaimLookupResponse{Found: false})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ClaimLookupResponse{Found: true, Claim: &claim})
	}
}

type MarkClaimedResponse struct {
	OK             bool `json:"ok"`
	AlreadyClaimed bool `json:"alreadyClaimed"`
}

func handleAdminMarkClaimed(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID := chi.URLParam(r, "id")

		alreadyClaimed, err := store.MarkClaimed(r.Context(), participantID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no spin for participant")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !alreadyClaimed {
			spin, err := store.GetSpin(r.Context(), participantID)
			if err == nil {
				broker.Publish(ActivityEvent{
					Type:          "claim",
					ParticipantID: participantID,
					Prize:         spin.Prize,
				})
			}
		}
		writeJSON(w, http.StatusOK, MarkClaimedResponse{OK: true, AlreadyClaimed: alreadyClaimed})
	}
}
