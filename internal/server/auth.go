package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// participantFromRequest resolves the Bearer token to a participant ID.
func participantFromRequest(r *http.Request, store Store) (string, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", errNoSession
	}
	return store.ParticipantFromSession(r.Context(), token)
}
