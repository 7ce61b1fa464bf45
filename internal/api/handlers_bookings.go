package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"roomdesk/internal/models"
)

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.backend.FetchRooms(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch rooms")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": models.ActiveRooms(rooms)})
}

func (s *HTTPServer) handleUnavailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.backend.FetchUnavailableDates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

func (s *HTTPServer) handleCustomerBookings(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", models.DefaultPageSize)
	status := r.URL.Query().Get("status")

	bookings, err := s.backend.FetchCustomerBookings(r.Context(), s.customerID(r), status, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleCustomerGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.backend.FetchCustomerGroups(r.Context(), s.customerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if groups == nil {
		groups = []models.BookingGroupDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *HTTPServer) handleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	update, ok := decodeTimeWindow(w, r)
	if !ok {
		return
	}

	if err := s.backend.UpdateBooking(r.Context(), bookingID, update); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleBookingResubmit re-queues a rejected booking with a new time
// window, putting it back into review.
func (s *HTTPServer) handleBookingResubmit(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	update, ok := decodeTimeWindow(w, r)
	if !ok {
		return
	}

	if err := s.backend.ResubmitBooking(r.Context(), bookingID, update); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resubmitted"})
}

func (s *HTTPServer) handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.backend.CancelBooking(r.Context(), bookingID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeTimeWindow(w http.ResponseWriter, r *http.Request) (models.TimeWindowUpdate, bool) {
	var update models.TimeWindowUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return update, false
	}
	if update.StartTime == "" || update.EndTime == "" {
		writeError(w, http.StatusBadRequest, "startTime and endTime are required")
		return update, false
	}
	return update, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
