package domain

import (
	"context"

	"roomdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CartRepository stores session carts. The cart service is the only writer.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SetCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, sessionID string) error
}

// BookingBackend is the REST backend this front-desk is glue over. It is
// the single source of truth for rooms, conflicts and booking state.
type BookingBackend interface {
	FetchRooms(ctx context.Context) ([]models.Room, error)
	FetchUnavailableDates(ctx context.Context) ([]string, error)

	CheckConflicts(ctx context.Context, candidates []models.CandidateBooking) ([]models.Conflict, error)
	SubmitBookingGroups(ctx context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error)

	FetchCustomerBookings(ctx context.Context, customerID int64, status string, page, pageSize int) (*models.PagedRoomBookings, error)
	FetchCustomerGroups(ctx context.Context, customerID int64) ([]models.BookingGroupDetail, error)
	UpdateBooking(ctx context.Context, bookingID int64, update models.TimeWindowUpdate) error
	ResubmitBooking(ctx context.Context, bookingID int64, update models.TimeWindowUpdate) error
	CancelBooking(ctx context.Context, bookingID int64) error

	FetchAdminGroups(ctx context.Context, page, pageSize int, status, search string) (*models.PagedBookingGroups, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error

	FetchCustomers(ctx context.Context, search string, page, pageSize int) (*models.PagedCustomers, error)
	CreateCustomer(ctx context.Context, input models.CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input models.CustomerInput) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// CartService owns the cart lifecycle: building drafts and reconciling the
// bulk submission back onto them.
type CartService interface {
	AddGroup(ctx context.Context, sessionID string, input models.GroupInput) (*models.BookingGroup, error)
	RemoveGroup(ctx context.Context, sessionID, groupID string) error
	ListGroups(ctx context.Context, sessionID string) ([]*models.BookingGroup, error)
	SubmitAll(ctx context.Context, sessionID string, customerID int64) (*models.SubmitOutcome, error)
}

// PrecheckService runs the debounced advisory conflict check for the
// session's currently edited draft.
type PrecheckService interface {
	Update(sessionID string, customerID int64, draft models.GroupInput)
	Result(sessionID string) models.PrecheckResult
	Clear(sessionID string)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SubmissionJournal records bulk submit outcomes for operators. It is
// observational only and never feeds back into the cart.
type SubmissionJournal interface {
	Record(ctx context.Context, rec *models.SubmissionRecord) error
	Recent(ctx context.Context, limit int) ([]models.SubmissionRecord, error)
}

// MirrorEnqueuer hands a submitted cart to the spreadsheet mirror worker.
type MirrorEnqueuer interface {
	EnqueueSubmission(ctx context.Context, rec models.SubmissionRecord) error
}

// TelegramSender is the slice of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
