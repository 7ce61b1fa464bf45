package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomdesk/internal/models"
	"roomdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGroup(t *testing.T) {
	group := &models.BookingGroup{
		Dates:     []string{"2026-09-03", "2026-09-01", "2026-09-01"},
		StartTime: "09:00",
		EndTime:   "11:30",
		RoomIDs:   []int64{5},
	}

	item, err := NormalizeGroup(group)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-09-01", "2026-09-03"}, item.Dates)
	assert.Equal(t, "2026-09-01", item.StartDate)
	assert.Equal(t, "2026-09-03", item.EndDate)
	assert.Equal(t, "09:00:00", item.StartTime)
	assert.Equal(t, "11:30:00", item.EndTime)

	// Normalizing an already-normal group changes nothing.
	again, err := NormalizeGroup(&models.BookingGroup{
		Dates:     item.Dates,
		StartTime: group.StartTime,
		EndTime:   group.EndTime,
		RoomIDs:   group.RoomIDs,
	})
	require.NoError(t, err)
	assert.Equal(t, item.Dates, again.Dates)
	assert.Equal(t, item.StartDate, again.StartDate)
	assert.Equal(t, item.EndDate, again.EndDate)
}

func TestSubmitAll_EmptyCart(t *testing.T) {
	svc := newTestService(&stubBackend{}, Options{})

	_, err := svc.SubmitAll(context.Background(), "s1", 7)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitAll_FullSuccessClearsCart(t *testing.T) {
	bk := &stubBackend{submitFn: func(_ context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		results := make([]models.GroupResult, len(req.Groups))
		for i := range results {
			results[i].Success = true
		}
		return &models.BulkGroupResponse{Results: results}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)
	_, err = svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	outcome, err := svc.SubmitAll(ctx, "s1", 7)
	require.NoError(t, err)

	assert.True(t, outcome.AllAccepted)
	assert.Equal(t, 2, outcome.Accepted)
	assert.Equal(t, 0, outcome.Failed)
	for _, g := range outcome.Groups {
		assert.Equal(t, models.GroupStatusPending, g.Status)
	}

	require.Len(t, bk.requests, 1)
	assert.Equal(t, int64(7), bk.requests[0].CustomerID)
	assert.Len(t, bk.requests[0].Groups, 2)

	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSubmitAll_PartialFailure(t *testing.T) {
	conflict := models.Conflict{RoomID: 7, Date: "2026-09-02", Message: "Room occupied"}
	bk := &stubBackend{submitFn: func(_ context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		return &models.BulkGroupResponse{Results: []models.GroupResult{
			{Success: true},
			{Success: false, Conflicts: []models.Conflict{conflict}},
		}}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	first, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	second := validInput()
	second.RoomIDs = []int64{7}
	secondGroup, err := svc.AddGroup(ctx, "s1", second)
	require.NoError(t, err)

	outcome, err := svc.SubmitAll(ctx, "s1", 7)
	require.NoError(t, err)

	assert.False(t, outcome.AllAccepted)
	assert.Equal(t, 1, outcome.Accepted)
	assert.Equal(t, 1, outcome.Failed)

	// Each verdict lands on the group it was issued for.
	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, first.ID, groups[0].ID)
	assert.Equal(t, models.GroupStatusPending, groups[0].Status)
	assert.Equal(t, secondGroup.ID, groups[1].ID)
	assert.Equal(t, models.GroupStatusPartialError, groups[1].Status)
	require.Len(t, groups[1].Conflicts, 1)
	assert.Equal(t, "Room occupied", groups[1].Conflicts[0].Message)
	assert.Equal(t, int64(7), groups[1].Conflicts[0].RoomID)
}

func TestSubmitAll_DropSucceededOnPartial(t *testing.T) {
	bk := &stubBackend{submitFn: func(_ context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		return &models.BulkGroupResponse{Results: []models.GroupResult{
			{Success: true},
			{Success: false, Conflicts: []models.Conflict{{RoomID: 1, Message: "busy"}}},
		}}, nil
	}}
	svc := newTestService(bk, Options{DropSucceededOnPartial: true})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)
	failing, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	outcome, err := svc.SubmitAll(ctx, "s1", 7)
	require.NoError(t, err)
	assert.False(t, outcome.AllAccepted)

	// Only the failed group stays behind for a retry.
	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, failing.ID, groups[0].ID)
	assert.Equal(t, models.GroupStatusPartialError, groups[0].Status)
}

func TestSubmitAll_TransportFailureRestoresCart(t *testing.T) {
	bk := &stubBackend{submitFn: func(_ context.Context, _ *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		return nil, errors.New("connection refused")
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	_, err = svc.SubmitAll(ctx, "s1", 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)

	// Nothing was committed on the other side, so nothing changes here.
	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupStatusDraft, groups[0].Status)
	assert.Empty(t, groups[0].Conflicts)
}

func TestSubmitAll_ShortResponseKeepsExtraGroups(t *testing.T) {
	bk := &stubBackend{submitFn: func(_ context.Context, _ *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		return &models.BulkGroupResponse{Results: []models.GroupResult{{Success: true}}}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)
	_, err = svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	outcome, err := svc.SubmitAll(ctx, "s1", 7)
	require.NoError(t, err)

	// A truncated answer cannot count as a full success.
	assert.False(t, outcome.AllAccepted)

	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, models.GroupStatusPending, groups[0].Status)
	assert.Equal(t, models.GroupStatusDraft, groups[1].Status)
}

func TestSubmitAll_RemoveWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	bk := &stubBackend{submitFn: func(_ context.Context, _ *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		close(started)
		<-release
		return &models.BulkGroupResponse{Results: []models.GroupResult{
			{Success: false, Conflicts: []models.Conflict{{RoomID: 1, Message: "busy"}}},
			{Success: true},
		}}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	first, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)
	second, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	type result struct {
		outcome *models.SubmitOutcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := svc.SubmitAll(ctx, "s1", 7)
		done <- result{outcome, err}
	}()

	<-started
	require.NoError(t, svc.RemoveGroup(ctx, "s1", first.ID))
	close(release)

	res := <-done
	require.NoError(t, res.err)
	outcome := res.outcome
	assert.False(t, outcome.AllAccepted)
	assert.Equal(t, 1, outcome.Accepted)
	assert.Equal(t, 1, outcome.Failed)

	// The first verdict belonged to the removed group; it must not bleed
	// onto the survivor just because the list shifted under it.
	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, second.ID, groups[0].ID)
	assert.Equal(t, models.GroupStatusPending, groups[0].Status)
	assert.Empty(t, groups[0].Conflicts)
}

func TestSubmitAll_AddWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	bk := &stubBackend{submitFn: func(_ context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		close(started)
		<-release
		results := make([]models.GroupResult, len(req.Groups))
		for i := range results {
			results[i].Success = true
		}
		return &models.BulkGroupResponse{Results: results}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	type result struct {
		outcome *models.SubmitOutcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := svc.SubmitAll(ctx, "s1", 7)
		done <- result{outcome, err}
	}()

	<-started
	extra, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)
	close(release)

	res := <-done
	require.NoError(t, res.err)
	outcome := res.outcome
	assert.True(t, outcome.AllAccepted)
	assert.Equal(t, 1, outcome.Accepted)

	// The draft added during the call was not part of the submission and
	// survives the cleanup untouched.
	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, extra.ID, groups[0].ID)
	assert.Equal(t, models.GroupStatusDraft, groups[0].Status)
}

func TestSubmitAll_NormalizeFailureLeavesStatuses(t *testing.T) {
	logger := zerolog.Nop()
	repo := repository.NewMemoryCartRepository(time.Hour)
	svc := NewService(repo, &stubBackend{}, &logger, Options{})
	ctx := context.Background()

	good, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	// A group with a mangled date can only come from a corrupted store,
	// but normalization still refuses it before anything hits the wire.
	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	cart.Groups = append(cart.Groups, &models.BookingGroup{
		ID:        "broken",
		Dates:     []string{"not-a-date"},
		StartTime: "09:00",
		EndTime:   "11:00",
		RoomIDs:   []int64{1},
		Status:    models.GroupStatusDraft,
	})
	require.NoError(t, repo.SetCart(ctx, cart))

	_, err = svc.SubmitAll(ctx, "s1", 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)

	groups, err := svc.ListGroups(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, good.ID, groups[0].ID)
	assert.Equal(t, models.GroupStatusDraft, groups[0].Status)
}

func TestSubmitAll_InFlightRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	bk := &stubBackend{submitFn: func(_ context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
		close(started)
		<-release
		results := make([]models.GroupResult, len(req.Groups))
		for i := range results {
			results[i].Success = true
		}
		return &models.BulkGroupResponse{Results: results}, nil
	}}
	svc := newTestService(bk, Options{})
	ctx := context.Background()

	_, err := svc.AddGroup(ctx, "s1", validInput())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SubmitAll(ctx, "s1", 7)
		done <- err
	}()

	<-started
	_, err = svc.SubmitAll(ctx, "s1", 7)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
}
