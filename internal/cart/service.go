package cart

import (
	"context"
	"sync"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service owns the session carts: it is the only writer of the group list,
// and the reconciler in submit.go is the only place backend results are
// patched back onto it.
type Service struct {
	repo    domain.CartRepository
	backend domain.BookingBackend
	events  domain.EventPublisher
	journal domain.SubmissionJournal
	logger  *zerolog.Logger

	dropSucceededOnPartial bool

	// one in-flight submission per session
	inflight sync.Map

	// per-session write lock: the stores hand out shared cart state, so
	// every read-modify-write cycle on a session's cart goes through it
	locks sync.Map
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

type Options struct {
	Events                 domain.EventPublisher
	Journal                domain.SubmissionJournal
	DropSucceededOnPartial bool
}

func NewService(repo domain.CartRepository, bk domain.BookingBackend, logger *zerolog.Logger, opts Options) *Service {
	return &Service{
		repo:                   repo,
		backend:                bk,
		events:                 opts.Events,
		journal:                opts.Journal,
		logger:                 logger,
		dropSucceededOnPartial: opts.DropSucceededOnPartial,
	}
}

// AddGroup validates the form input in a fixed order and, on success,
// appends a fresh draft to the session cart. Failures leave the cart
// untouched.
func (s *Service) AddGroup(ctx context.Context, sessionID string, input models.GroupInput) (*models.BookingGroup, error) {
	dates, err := resolveDates(input)
	if err != nil {
		return nil, err
	}
	if input.StartTime == "" || input.EndTime == "" {
		return nil, ErrMissingTime
	}
	if _, err := time.Parse(models.TimeOfDayLayout, input.StartTime); err != nil {
		return nil, ErrInvalidTime
	}
	if _, err := time.Parse(models.TimeOfDayLayout, input.EndTime); err != nil {
		return nil, ErrInvalidTime
	}

	rooms := dedupeRooms(input.RoomIDs)
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}

	// Zero-padded 24-hour strings compare correctly as text.
	if input.StartTime >= input.EndTime {
		return nil, ErrTimeOrder
	}

	if rangeReversed(input) {
		return nil, ErrDateOrder
	}

	group := &models.BookingGroup{
		ID:          uuid.NewString(),
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		Dates:       dates,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		RoomIDs:     rooms,
		Description: input.Description,
		Status:      models.GroupStatusDraft,
		CreatedAt:   time.Now(),
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Groups = append(cart.Groups, group)
	cart.UpdatedAt = time.Now()

	if err := s.repo.SetCart(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("group_id", group.ID).
		Int("rooms", len(group.RoomIDs)).
		Int("dates", len(group.Dates)).
		Msg("draft added to cart")

	return group, nil
}

// RemoveGroup deletes the group with the given id; absent ids are a no-op.
func (s *Service) RemoveGroup(ctx context.Context, sessionID, groupID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	kept := cart.Groups[:0]
	for _, g := range cart.Groups {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(cart.Groups) {
		return nil
	}
	cart.Groups = kept
	cart.UpdatedAt = time.Now()

	return s.repo.SetCart(ctx, cart)
}

// ListGroups returns the cart's groups in insertion order.
func (s *Service) ListGroups(ctx context.Context, sessionID string) ([]*models.BookingGroup, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Groups, nil
}

func (s *Service) loadCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{SessionID: sessionID}
	}
	return cart, nil
}

func rangeReversed(input models.GroupInput) bool {
	if len(input.Dates) > 0 {
		return false
	}
	start, err1 := time.Parse(models.DateLayout, input.StartDate)
	end, err2 := time.Parse(models.DateLayout, input.EndDate)
	return err1 == nil && err2 == nil && end.Before(start)
}
