package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/questlabs/campushunt/internal/qrtoken"
)

type SubEventRequest struct {
	ID         string `json:"id"`
	LocationID int    `json:"locationId"`
	Name       string `json:"name"`
	Schedule   string `json:"schedule"`
	Points     int    `json:"points"`
}

func (req *SubEventRequest) validate() string {
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Points < 0 {
		return "points must not be negative"
	}
	return ""
}

func handleAdminListSubEvents(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		subEvents, err := store.ListSubEvents(r.Context(), locationID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if subEvents == nil {
			subEvents = []SubEvent{}
		}
		writeJSON(w, http.StatusOK, subEvents)
	}
}

func handleAdminCreateSubEvent(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
			return
		}

		var req SubEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.LocationID = locationID
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if _, err := store.GetLocation(r.Context(), locationID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "location not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		se, err := store.CreateSubEvent(r.Context(), req)
		if errors.Is(err, ErrSlugTaken) {
			writeError(w, http.StatusConflict, "sub-event id already in use")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, se)
	}
}

func handleAdminUpdateSubEvent(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "subEventID")

		current, err := store.GetSubEvent(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "sub-event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var req SubEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.LocationID == 0 {
			req.LocationID = current.LocationID
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		se, err := store.UpdateSubEvent(r.Context(), id, req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, se)
	}
}

// handleAdminDeleteSubEvent deletes a sub-event. Blocked while completions
// reference it.
func handleAdminDeleteSubEvent(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "subEventID")

		err := store.DeleteSubEvent(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "sub-event not found")
		case errors.Is(err, ErrInUse):
			writeError(w, http.StatusConflict, "sub-event has recorded completions")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}
	}
}

func handleAdminSubEventQR(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "subEventID")

		se, err := store.GetSubEvent(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "sub-event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, subEventQR(se.ID, se.QRVersion))
	}
}

func handleAdminRotateSubEventQR(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "subEventID")

		version, err := store.BumpSubEventQRVersion(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "sub-event not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, subEventQR(id, version))
	}
}

func subEventQR(id string, version int) QRCodeResponse {
	return QRCodeResponse{
		Payload: qrtoken.EncodeSubEvent(qrtoken.SubEventPayload{
			SubEventID: id,
			Version:    version,
		}),
		Version: version,
	}
}
