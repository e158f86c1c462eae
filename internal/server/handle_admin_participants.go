package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

func handleAdminListParticipants(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participants, err := store.ListParticipants(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, participants)
	}
}

type AdjustPointsRequest struct {
	Delta int `json:"delta"`
}

type AdjustPointsResponse struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
}

func handleAdminAdjustPoints(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req AdjustPointsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Delta == 0 {
			writeError(w, http.StatusBadRequest, "delta must not be zero")
			return
		}

		newTotal, err := store.AdjustPoints(r.Context(), id, req.Delta)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "participant not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AdjustPointsResponse{ID: id, Points: newTotal})
	}
}

func handleAdminDeleteParticipant(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := store.DeleteParticipant(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "participant not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

var exportHeader = []string{"ID", "Username", "First Name", "Last Name", "Points", "Registered At"}

// handleAdminExportParticipants streams the participant roster as a
// spreadsheet. ?format=csv selects CSV, everything else gets xlsx.
func handleAdminExportParticipants(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participants, err := store.ListParticipants(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		stamp := time.Now().UTC().Format("20060102")
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=participants-%s.csv", stamp))

			cw := csv.NewWriter(w)
			_ = cw.Write(exportHeader)
			for _, p := range participants {
				_ = cw.Write([]string{p.ID, p.Username, p.FirstName, p.LastName, strconv.Itoa(p.Points), p.CreatedAt})
			}
			cw.Flush()
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Participants"
		f.SetSheetName("Sheet1", sheet)
		for col, title := range exportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = f.SetCellValue(sheet, cell, title)
		}
		for row, p := range participants {
			values := []any{p.ID, p.Username, p.FirstName, p.LastName, p.Points, p.CreatedAt}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				_ = f.SetCellValue(sheet, cell, v)
			}
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=participants-%s.xlsx", stamp))
		if err := f.Write(w); err != nil {
			// Headers are already out; nothing useful left to report.
			return
		}
	}
}
