package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"roomdesk/internal/events"
	"roomdesk/internal/export"
	"roomdesk/internal/models"
)

// requireAdmin answers 403 unless the request carries the admin role.
func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !actorFrom(r).IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}

func (s *HTTPServer) handleAdminGroups(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", models.DefaultPageSize)
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	groups, err := s.backend.FetchAdminGroups(r.Context(), page, pageSize, status, search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

// handleAdminExport streams the current review queue as an xlsx workbook.
func (s *HTTPServer) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 500)
	status := r.URL.Query().Get("status")

	groups, err := s.backend.FetchAdminGroups(r.Context(), page, pageSize, status, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	file, err := export.RenderGroups(groups.Data)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render export")
		writeError(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	// Keep a copy on disk when an export directory is configured.
	if s.exports.Path != "" {
		if saved, err := export.WriteGroupsFile(s.exports.Path, groups.Data); err != nil {
			s.logger.Warn().Err(err).Msg("failed to archive export")
		} else {
			s.logger.Info().Str("file", saved).Msg("export archived")
		}
	}

	filename := fmt.Sprintf("booking_groups_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := file.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export")
	}
}

func (s *HTTPServer) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.backend.UpdateBookingStatus(r.Context(), bookingID, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	if s.events != nil {
		_ = s.events.PublishJSON(events.EventBookingStatusChanged, events.StatusEventPayload{
			BookingID: bookingID,
			Status:    body.Status,
		})
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *HTTPServer) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	records := []models.SubmissionRecord{}
	if s.journal != nil {
		limit := queryInt(r, "limit", 50)
		recent, err := s.journal.Recent(r.Context(), limit)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to read submission journal")
			writeError(w, http.StatusInternalServerError, "failed to read submission journal")
			return
		}
		records = recent
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": records})
}

func (s *HTTPServer) handleAdminCustomers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", models.DefaultPageSize)
	search := r.URL.Query().Get("search")

	customers, err := s.backend.FetchCustomers(r.Context(), search, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (s *HTTPServer) handleAdminCustomerCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	input, ok := decodeCustomer(w, r)
	if !ok {
		return
	}

	customer, err := s.backend.CreateCustomer(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

func (s *HTTPServer) handleAdminCustomerUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	input, ok := decodeCustomer(w, r)
	if !ok {
		return
	}

	if err := s.backend.UpdateCustomer(r.Context(), id, input); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *HTTPServer) handleAdminCustomerDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.backend.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeCustomer(w http.ResponseWriter, r *http.Request) (models.CustomerInput, bool) {
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return input, false
	}
	if input.Name == "" || input.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return input, false
	}
	return input, true
}
