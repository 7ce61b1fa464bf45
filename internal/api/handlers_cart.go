package api

import (
	"encoding/json"
	"net/http"

	"roomdesk/internal/models"
)

// customerID resolves who bookings belong to: the explicit header wins,
// otherwise the configured default customer.
func (s *HTTPServer) customerID(r *http.Request) int64 {
	if actor := actorFrom(r); actor.CustomerID != 0 {
		return actor.CustomerID
	}
	return s.defaultCustomer
}

// requireSession extracts the session id or answers 400. Cart state is
// keyed by session, so every cart route needs one.
func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := sessionFrom(r)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "X-Session-Id header is required")
		return "", false
	}
	return sessionID, true
}

func (s *HTTPServer) handleCartList(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	groups, err := s.carts.ListGroups(r.Context(), sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("failed to list cart")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *HTTPServer) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var input models.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := s.carts.AddGroup(r.Context(), sessionID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (s *HTTPServer) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if err := s.carts.RemoveGroup(r.Context(), sessionID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handlePrecheckUpdate schedules an advisory conflict check for the draft
// being edited. The answer is advisory and arrives asynchronously; poll
// the GET counterpart for it.
func (s *HTTPServer) handlePrecheckUpdate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var draft models.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.check.Update(sessionID, s.customerID(r), draft)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *HTTPServer) handlePrecheckResult(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.check.Result(sessionID))
}

func (s *HTTPServer) handleCartSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	outcome, err := s.carts.SubmitAll(r.Context(), sessionID, s.customerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.check.Clear(sessionID)
	writeJSON(w, http.StatusOK, outcome)
}
