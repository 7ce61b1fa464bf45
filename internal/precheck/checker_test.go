package precheck

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conflictBackend struct {
	domain.BookingBackend

	mu        sync.Mutex
	calls     atomic.Int32
	conflicts []models.Conflict
	err       error
	block     chan struct{}
	seen      [][]models.CandidateBooking
}

func (b *conflictBackend) CheckConflicts(_ context.Context, candidates []models.CandidateBooking) ([]models.Conflict, error) {
	b.calls.Add(1)
	b.mu.Lock()
	b.seen = append(b.seen, candidates)
	block := b.block
	conflicts, err := b.conflicts, b.err
	b.mu.Unlock()

	if block != nil {
		<-block
	}
	return conflicts, err
}

func (b *conflictBackend) setConflicts(conflicts []models.Conflict) {
	b.mu.Lock()
	b.conflicts = conflicts
	b.mu.Unlock()
}

func draftInput() models.GroupInput {
	return models.GroupInput{
		StartDate: "2026-09-01",
		EndDate:   "2026-09-02",
		StartTime: "09:00",
		EndTime:   "11:00",
		RoomIDs:   []int64{1, 2},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestExpandCandidates(t *testing.T) {
	candidates := ExpandCandidates(7, draftInput())
	require.Len(t, candidates, 4) // 2 dates x 2 rooms

	assert.Equal(t, int64(1), candidates[0].RoomID)
	assert.Equal(t, int64(7), candidates[0].CustomerID)
	assert.Equal(t, "2026-09-01T09:00:00Z", candidates[0].StartTime)
	assert.Equal(t, "2026-09-01T11:00:00Z", candidates[0].EndTime)
	assert.Equal(t, "2026-09-02T09:00:00Z", candidates[2].StartTime)
}

func TestExpandCandidates_Incomplete(t *testing.T) {
	incomplete := draftInput()
	incomplete.RoomIDs = nil
	assert.Empty(t, ExpandCandidates(7, incomplete))

	incomplete = draftInput()
	incomplete.StartTime = ""
	assert.Empty(t, ExpandCandidates(7, incomplete))

	incomplete = draftInput()
	incomplete.StartDate, incomplete.EndDate = "", ""
	assert.Empty(t, ExpandCandidates(7, incomplete))
}

func TestChecker_DebounceCollapsesEdits(t *testing.T) {
	bk := &conflictBackend{}
	logger := zerolog.Nop()
	c := NewChecker(bk, 30*time.Millisecond, &logger)

	// A burst of edits inside the quiet interval produces one call.
	for i := 0; i < 5; i++ {
		c.Update("s1", 7, draftInput())
		time.Sleep(2 * time.Millisecond)
	}

	assert.True(t, c.Result("s1").Checking)

	waitFor(t, func() bool { return !c.Result("s1").Checking })
	assert.Equal(t, int32(1), bk.calls.Load())
}

func TestChecker_ReportsConflictsAndDisabledRooms(t *testing.T) {
	bk := &conflictBackend{}
	bk.setConflicts([]models.Conflict{
		{RoomID: 1, Date: "2026-09-01", Message: "Room occupied"},
		{RoomID: 1, Date: "2026-09-02", Message: "Room occupied"},
	})
	logger := zerolog.Nop()
	c := NewChecker(bk, 5*time.Millisecond, &logger)

	c.Update("s1", 7, draftInput())
	waitFor(t, func() bool { return !c.Result("s1").Checking })

	result := c.Result("s1")
	assert.Len(t, result.Conflicts, 2)
	assert.Equal(t, []int64{1}, result.DisabledRooms)
	assert.False(t, result.UpdatedAt.IsZero())
}

func TestChecker_IncompleteDraftClearsResult(t *testing.T) {
	bk := &conflictBackend{}
	bk.setConflicts([]models.Conflict{{RoomID: 1, Message: "busy"}})
	logger := zerolog.Nop()
	c := NewChecker(bk, 5*time.Millisecond, &logger)

	c.Update("s1", 7, draftInput())
	waitFor(t, func() bool { return len(c.Result("s1").Conflicts) > 0 })

	// Removing the rooms makes the draft incomplete: stale advice goes away
	// without any network call.
	empty := draftInput()
	empty.RoomIDs = nil
	c.Update("s1", 7, empty)

	result := c.Result("s1")
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.DisabledRooms)
	assert.False(t, result.Checking)
	assert.Equal(t, int32(1), bk.calls.Load())
}

func TestChecker_StaleResponseDiscarded(t *testing.T) {
	block := make(chan struct{})
	bk := &conflictBackend{block: block}
	bk.setConflicts([]models.Conflict{{RoomID: 1, Message: "busy"}})
	logger := zerolog.Nop()
	c := NewChecker(bk, time.Millisecond, &logger)

	c.Update("s1", 7, draftInput())
	waitFor(t, func() bool { return bk.calls.Load() == 1 })

	// A newer edit arrives while the first request is in flight.
	c.Update("s1", 7, draftInput())
	close(block)

	waitFor(t, func() bool { return bk.calls.Load() == 2 && !c.Result("s1").Checking })
	// Both answers carry the same conflicts here; what matters is that the
	// checker settled on the latest generation without flapping.
	assert.Len(t, c.Result("s1").Conflicts, 1)
}

func TestChecker_FailsOpen(t *testing.T) {
	bk := &conflictBackend{err: errors.New("backend down")}
	logger := zerolog.Nop()
	c := NewChecker(bk, 5*time.Millisecond, &logger)

	c.Update("s1", 7, draftInput())
	waitFor(t, func() bool { return !c.Result("s1").Checking })

	result := c.Result("s1")
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.DisabledRooms)
}

func TestChecker_Clear(t *testing.T) {
	bk := &conflictBackend{}
	logger := zerolog.Nop()
	c := NewChecker(bk, time.Hour, &logger)

	c.Update("s1", 7, draftInput())
	c.Clear("s1")

	result := c.Result("s1")
	assert.False(t, result.Checking)
	assert.Empty(t, result.Conflicts)
}

func TestChecker_SessionsIndependent(t *testing.T) {
	bk := &conflictBackend{}
	bk.setConflicts([]models.Conflict{{RoomID: 2, Message: "busy"}})
	logger := zerolog.Nop()
	c := NewChecker(bk, 5*time.Millisecond, &logger)

	c.Update("s1", 7, draftInput())
	waitFor(t, func() bool { return len(c.Result("s1").Conflicts) > 0 })

	assert.Empty(t, c.Result("s2").Conflicts)
}
