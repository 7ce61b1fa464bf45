package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomdesk/internal/events"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"
)

// NormalizeGroup shapes one cart group the way the bulk endpoint expects
// it: dates deduplicated and sorted, start/end derived as their min/max,
// times widened to HH:MM:SS.
func NormalizeGroup(group *models.BookingGroup) (models.BulkGroupItem, error) {
	source := group.Dates
	if len(source) == 0 {
		source = []string{group.StartDate, group.EndDate}
	}
	dates, err := normalizeDates(source)
	if err != nil {
		return models.BulkGroupItem{}, err
	}

	return models.BulkGroupItem{
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		StartTime:   group.StartTime + ":00",
		EndTime:     group.EndTime + ":00",
		Dates:       dates,
		RoomIDs:     group.RoomIDs,
		Description: group.Description,
	}, nil
}

// SubmitAll sends the entire cart as one bulk request and patches the
// per-group results back. A transport failure leaves every group exactly
// as it was.
//
// The cart may change while the call is in flight (a group removed, a new
// draft added), so the submission order is snapshotted up front and
// results are mapped back by group id, never by index into the live list:
// result i belongs to the group that was at position i when the request
// was built, wherever that group is now.
func (s *Service) SubmitAll(ctx context.Context, sessionID string, customerID int64) (*models.SubmitOutcome, error) {
	if _, loaded := s.inflight.LoadOrStore(sessionID, struct{}{}); loaded {
		return nil, ErrSubmitInFlight
	}
	defer s.inflight.Delete(sessionID)

	lock := s.sessionLock(sessionID)
	lock.Lock()

	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if cart == nil || len(cart.Groups) == 0 {
		lock.Unlock()
		metrics.IncSubmission("rejected_empty")
		return nil, ErrEmptyCart
	}

	submitted := append([]*models.BookingGroup(nil), cart.Groups...)
	prev := make(map[string]string, len(submitted))
	req := &models.BulkGroupRequest{
		CustomerID: customerID,
		Groups:     make([]models.BulkGroupItem, 0, len(submitted)),
	}
	for _, g := range submitted {
		prev[g.ID] = g.Status
		item, err := NormalizeGroup(g)
		if err != nil {
			restoreStatuses(submitted, prev)
			lock.Unlock()
			return nil, fmt.Errorf("group %s: %w", g.ID, err)
		}
		req.Groups = append(req.Groups, item)
		g.Status = models.GroupStatusSubmitting
	}

	if err := s.repo.SetCart(ctx, cart); err != nil {
		restoreStatuses(submitted, prev)
		lock.Unlock()
		return nil, err
	}

	// The backend call runs without the session lock so removals stay
	// possible while the submission is outstanding.
	lock.Unlock()
	resp, err := s.backend.SubmitBookingGroups(ctx, req)
	lock.Lock()
	defer lock.Unlock()

	if err != nil {
		// Whole call failed: nothing was committed, nothing changes.
		restoreStatuses(submitted, prev)
		if current, loadErr := s.loadCart(ctx, sessionID); loadErr == nil {
			restoreStatuses(current.Groups, prev)
			if setErr := s.repo.SetCart(ctx, current); setErr != nil {
				s.logger.Error().Err(setErr).Str("session_id", sessionID).Msg("restore cart after failed submit")
			}
		}
		metrics.IncSubmission(models.SubmissionTransportError)
		s.record(ctx, sessionID, customerID, len(submitted), 0, 0, models.SubmissionTransportError, err.Error())
		return nil, fmt.Errorf("bulk submit: %w", err)
	}

	results := resp.Results
	if len(results) != len(submitted) {
		s.logger.Warn().
			Str("session_id", sessionID).
			Int("groups", len(submitted)).
			Int("results", len(results)).
			Msg("bulk response length mismatch")
	}

	outcomes := make(map[string]models.GroupResult, len(results))
	accepted, failed := 0, 0
	for i, g := range submitted {
		if i >= len(results) {
			break
		}
		outcomes[g.ID] = results[i]
		if results[i].Success {
			accepted++
		} else {
			failed++
		}
	}
	applyOutcomes(submitted, outcomes, prev)

	current, err := s.loadCart(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("reload cart after submit")
		current = cart
	}
	applyOutcomes(current.Groups, outcomes, prev)

	outcome := &models.SubmitOutcome{
		Accepted: accepted,
		Failed:   failed,
		Groups:   submitted,
	}
	detail, _ := json.Marshal(results)

	if failed == 0 && len(results) >= len(submitted) {
		// Accepted groups leave the cart; drafts added mid-flight stay.
		current.Groups = dropAccepted(current.Groups, outcomes)
		if len(current.Groups) == 0 {
			if err := s.repo.ClearCart(ctx, sessionID); err != nil {
				s.logger.Error().Err(err).Str("session_id", sessionID).Msg("clear cart after full success")
			}
		} else {
			current.UpdatedAt = time.Now()
			if err := s.repo.SetCart(ctx, current); err != nil {
				s.logger.Error().Err(err).Str("session_id", sessionID).Msg("persist cart after full success")
			}
		}
		outcome.AllAccepted = true
		metrics.IncSubmission(models.SubmissionAccepted)
		s.record(ctx, sessionID, customerID, len(submitted), accepted, 0, models.SubmissionAccepted, "")
		s.publish(events.EventCartSubmitted, sessionID, customerID, len(submitted), accepted, 0)
		return outcome, nil
	}

	if s.dropSucceededOnPartial {
		current.Groups = dropAccepted(current.Groups, outcomes)
		outcome.Groups = current.Groups
	}
	current.UpdatedAt = time.Now()
	if err := s.repo.SetCart(ctx, current); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("persist cart after partial failure")
	}

	metrics.IncSubmission(models.SubmissionPartial)
	s.record(ctx, sessionID, customerID, len(submitted), accepted, failed, models.SubmissionPartial, string(detail))
	s.publish(events.EventCartPartialFailure, sessionID, customerID, len(submitted), accepted, failed)

	return outcome, nil
}

// applyOutcomes patches verdicts onto groups by id. Groups the backend
// did not answer fall back to their pre-submit status; groups unknown to
// the submission (added mid-flight) are left alone.
func applyOutcomes(groups []*models.BookingGroup, outcomes map[string]models.GroupResult, prev map[string]string) {
	for _, g := range groups {
		if res, ok := outcomes[g.ID]; ok {
			if res.Success {
				g.Status = models.GroupStatusPending
				g.Conflicts = nil
			} else {
				g.Status = models.GroupStatusPartialError
				g.Conflicts = res.Conflicts
			}
		} else if st, ok := prev[g.ID]; ok {
			g.Status = st
		}
	}
}

func dropAccepted(groups []*models.BookingGroup, outcomes map[string]models.GroupResult) []*models.BookingGroup {
	kept := groups[:0]
	for _, g := range groups {
		if res, ok := outcomes[g.ID]; ok && res.Success {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

func restoreStatuses(groups []*models.BookingGroup, prev map[string]string) {
	for _, g := range groups {
		if st, ok := prev[g.ID]; ok {
			g.Status = st
		}
	}
}

func (s *Service) record(ctx context.Context, sessionID string, customerID int64, groups, accepted, failed int, outcome, detail string) {
	if s.journal == nil {
		return
	}
	rec := &models.SubmissionRecord{
		SessionID:  sessionID,
		CustomerID: customerID,
		GroupCount: groups,
		Accepted:   accepted,
		Failed:     failed,
		Outcome:    outcome,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("journal submission")
	}
}

func (s *Service) publish(eventType, sessionID string, customerID int64, groups, accepted, failed int) {
	if s.events == nil {
		return
	}
	payload := events.CartEventPayload{
		SessionID:  sessionID,
		CustomerID: customerID,
		GroupCount: groups,
		Accepted:   accepted,
		Failed:     failed,
		Submitted:  time.Now(),
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish cart event")
	}
}
