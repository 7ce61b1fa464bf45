package models

// Local cart statuses. These never leave the front-desk; backend statuses
// below are a separate vocabulary.
const (
	GroupStatusDraft        = "draft"
	GroupStatusSubmitting   = "submitting"
	GroupStatusPending      = "pending"
	GroupStatusPartialError = "partial-error"
)

// Backend statuses for individual room bookings.
const (
	BookingStatusPending  = "Pending"
	BookingStatusApproved = "Approved"
	BookingStatusRejected = "Rejected"
)

// Backend statuses for whole booking groups.
const (
	GroupReviewPending           = "Pending"
	GroupReviewAllApproved       = "AllApproved"
	GroupReviewAllRejected       = "AllRejected"
	GroupReviewPartiallyApproved = "PartiallyApproved"
	GroupReviewPartiallyRejected = "PartiallyRejected"
)

const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
)

// Actor identifies who is driving a request. Built once by the API layer
// from request headers and passed down explicitly.
type Actor struct {
	Role       string
	CustomerID int64
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

const (
	// DateLayout is the calendar-date wire format.
	DateLayout = "2006-01-02"

	// TimeOfDayLayout is the HH:MM form carried in the cart.
	TimeOfDayLayout = "15:04"

	// DefaultPrecheckDebounceMS квиет-интервал перед отправкой pre-check
	DefaultPrecheckDebounceMS = 500

	// DefaultCartTTL время жизни корзины в секундах
	DefaultCartTTL = 24 * 60 * 60

	// DefaultRoomsCacheTTL время жизни кэша справочника комнат в секундах
	DefaultRoomsCacheTTL = 5 * 60

	// DefaultPageSize размер страницы для списков
	DefaultPageSize = 10

	// MirrorQueueSize размер очереди воркера зеркалирования
	MirrorQueueSize = 128
)
