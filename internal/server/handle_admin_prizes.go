package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type PrizeRequest struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Stock  int    `json:"stock"`
}

func (req *PrizeRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Weight < 0 {
		return "weight must not be negative"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

func handleAdminListPrizes(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prizes, err := store.ListPrizes(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if prizes == nil {
			prizes = []Prize{}
		}
		writeJSON(w, http.StatusOK, prizes)
	}
}

func handleAdminCreatePrize(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PrizeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		prize, err := store.CreatePrize(r.Context(), req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, prize)
	}
}

func handleAdminUpdatePrize(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "prizeID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid prize id")
			return
		}

		var req PrizeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		prize, err := store.UpdatePrize(r.Context(), id, req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "prize not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, prize)
	}
}

func handleAdminDeletePrize(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "prizeID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid prize id")
			return
		}

		err = store.DeletePrize(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "prize not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
