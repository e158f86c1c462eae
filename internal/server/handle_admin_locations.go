package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questlabs/campushunt/internal/qrtoken"
)

type LocationRequest struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Points      int     `json:"points"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
}

// QRCodeResponse carries a freshly signed payload for rendering. The payload
// is valid for the window around today; the admin console regenerates it
// per day or after a version bump.
type QRCodeResponse struct {
	Payload string `json:"payload"`
	Version int    `json:"version"`
}

func (req *LocationRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	return ""
}

func handleAdminListLocations(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := store.ListLocations(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if locations == nil {
			locations = []Location{}
		}
		writeJSON(w, http.StatusOK, locations)
	}
}

func handleAdminCreateLocation(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		loc, err := store.CreateLocation(r.Context(), req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, loc)
	}
}

func handleAdminUpdateLocation(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		var req LocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		loc, err := store.UpdateLocation(r.Context(), id, req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, loc)
	}
}

// handleAdminDeleteLocation deletes a location. Blocked while sub-events or
// check-ins reference it.
func handleAdminDeleteLocation(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		err = store.DeleteLocation(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "location not found")
		case errors.Is(err, ErrInUse):
			writeError(w, http.StatusConflict, "location has sub-events or check-ins")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}
	}
}

// handleAdminLocationQR returns the current signed payload without rotating
// the version.
func handleAdminLocationQR(store Store, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		loc, err := store.GetLocation(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, locationQR(loc.ID, loc.QRVersion, secret))
	}
}

// handleAdminRotateLocationQR bumps the location's version, instantly
// invalidating every previously issued code, and returns the replacement
// payload for display.
func handleAdminRotateLocationQR(store Store, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		version, err := store.BumpLocationQRVersion(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, locationQR(id, version, secret))
	}
}

func locationQR(id, version int, secret string) QRCodeResponse {
	subject := strconv.Itoa(id)
	sig := qrtoken.Sign(subject, qrtoken.DayStamp(time.Now(), 0), secret, version)
	return QRCodeResponse{
		Payload: qrtoken.EncodeLocation(qrtoken.LocationPayload{
			LocationID: id,
			Signature:  sig,
			Version:    version,
		}),
		Version: version,
	}
}
