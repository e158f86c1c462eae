package server

import (
	"net/http"
)

type SettingsResponse struct {
	SpinThreshold int `json:"spinThreshold"`
}

func handleAdminGetSettings(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold, err := store.SpinThreshold(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, SettingsResponse{SpinThreshold: threshold})
	}
}

func handleAdminUpdateSettings(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsResponse
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SpinThreshold < 0 {
			writeError(w, http.StatusBadRequest, "spinThreshold must not be negative")
			return
		}

		if err := store.SetSpinThreshold(r.Context(), req.SpinThreshold); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, SettingsResponse{SpinThreshold: req.SpinThreshold})
	}
}
