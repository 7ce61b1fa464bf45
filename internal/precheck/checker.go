package precheck

import (
	"context"
	"sync"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// Checker runs the advisory conflict check for a session's currently
// edited draft. Every edit re-arms a debounce timer; only the request that
// survives the quiet interval is sent, and a response is applied only if
// no newer edit has arrived in the meantime (last-write-wins by input
// generation, not by arrival order).
//
// The check is advisory: transport failures fail open and the bulk submit
// remains the single source of truth for conflicts.
type Checker struct {
	backend  domain.BookingBackend
	logger   *zerolog.Logger
	debounce time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	drafts map[string]*draftState
}

type draftState struct {
	gen    uint64
	timer  *time.Timer
	result models.PrecheckResult
}

func NewChecker(bk domain.BookingBackend, debounce time.Duration, logger *zerolog.Logger) *Checker {
	if debounce <= 0 {
		debounce = time.Duration(models.DefaultPrecheckDebounceMS) * time.Millisecond
	}
	return &Checker{
		backend:  bk,
		logger:   logger,
		debounce: debounce,
		timeout:  10 * time.Second,
		drafts:   make(map[string]*draftState),
	}
}

// Update registers the draft's current inputs. Incomplete inputs cancel
// any pending check and clear the stored result.
func (c *Checker) Update(sessionID string, customerID int64, draft models.GroupInput) {
	candidates := ExpandCandidates(customerID, draft)

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.drafts[sessionID]
	if st == nil {
		st = &draftState{}
		c.drafts[sessionID] = st
	}

	st.gen++
	gen := st.gen
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}

	if len(candidates) == 0 {
		st.result = models.PrecheckResult{UpdatedAt: time.Now()}
		metrics.IncPrecheck("cleared")
		return
	}

	st.result.Checking = true
	st.timer = time.AfterFunc(c.debounce, func() {
		c.run(sessionID, gen, candidates)
	})
}

func (c *Checker) run(sessionID string, gen uint64, candidates []models.CandidateBooking) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	conflicts, err := c.backend.CheckConflicts(ctx, candidates)
	if err != nil {
		// Fails open: the user may proceed, the bulk submit decides.
		c.logger.Warn().Err(err).Str("session_id", sessionID).Msg("conflict pre-check failed")
		conflicts = nil
		metrics.IncPrecheck("failed")
	} else {
		metrics.IncPrecheck("issued")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.drafts[sessionID]
	if st == nil || st.gen != gen {
		// Superseded by a later edit; drop this answer.
		metrics.IncPrecheck("superseded")
		return
	}

	st.result = models.PrecheckResult{
		Conflicts:     conflicts,
		DisabledRooms: conflictRooms(conflicts),
		UpdatedAt:     time.Now(),
	}
}

// Result returns the latest advisory answer for the session's draft.
func (c *Checker) Result(sessionID string) models.PrecheckResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.drafts[sessionID]
	if st == nil {
		return models.PrecheckResult{}
	}
	return st.result
}

// Clear forgets the session's draft state entirely.
func (c *Checker) Clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st := c.drafts[sessionID]; st != nil && st.timer != nil {
		st.timer.Stop()
	}
	delete(c.drafts, sessionID)
}

// ExpandCandidates builds one candidate booking per (date, room) pair of
// the draft, times as ISO instants. Incomplete drafts expand to nothing.
func ExpandCandidates(customerID int64, draft models.GroupInput) []models.CandidateBooking {
	if draft.StartTime == "" || draft.EndTime == "" || len(draft.RoomIDs) == 0 {
		return nil
	}

	dates := draft.Dates
	if len(dates) == 0 {
		if draft.StartDate == "" || draft.EndDate == "" {
			return nil
		}
		start, err := time.Parse(models.DateLayout, draft.StartDate)
		if err != nil {
			return nil
		}
		end, err := time.Parse(models.DateLayout, draft.EndDate)
		if err != nil {
			return nil
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d.Format(models.DateLayout))
		}
	}

	candidates := make([]models.CandidateBooking, 0, len(dates)*len(draft.RoomIDs))
	for _, date := range dates {
		startAt, err1 := combineInstant(date, draft.StartTime)
		endAt, err2 := combineInstant(date, draft.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		for _, roomID := range draft.RoomIDs {
			candidates = append(candidates, models.CandidateBooking{
				RoomID:     roomID,
				CustomerID: customerID,
				StartTime:  startAt,
				EndTime:    endAt,
			})
		}
	}
	return candidates
}

func combineInstant(date, hhmm string) (string, error) {
	t, err := time.Parse("2006-01-02T15:04", date+"T"+hhmm)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

func conflictRooms(conflicts []models.Conflict) []int64 {
	seen := make(map[int64]bool, len(conflicts))
	var rooms []int64
	for _, conflict := range conflicts {
		if seen[conflict.RoomID] {
			continue
		}
		seen[conflict.RoomID] = true
		rooms = append(rooms, conflict.RoomID)
	}
	return rooms
}
