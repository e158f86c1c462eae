package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func handleListLocations(store Store) http.HandlerFunc {
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

func handleListSubEvents(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := strconv.Atoi(chi.URLParam(r, "locationID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid location id")
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

func handleListHeroCards(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := store.ListHeroCards(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if cards == nil {
			cards = []HeroCard{}
		}
		writeJSON(w, http.StatusOK, cards)
	}
}
