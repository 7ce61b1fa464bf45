package models

import "time"

// BookingGroup is a cart entry: one time window applied to a set of rooms
// across a set of dates. It lives only in the session cart; the id is local
// and never treated as a backend identifier.
type BookingGroup struct {
	ID string `json:"id"`

	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Dates     []string `json:"dates,omitempty"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	RoomIDs     []int64 `json:"roomIds"`
	Description string  `json:"description,omitempty"`

	Status string `json:"status"`

	Conflicts []Conflict `json:"conflicts,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Conflict is a backend-reported reason a room/date/time cannot be booked.
type Conflict struct {
	RoomID    int64  `json:"roomId"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Message   string `json:"message"`
}

// Cart holds the ordered draft groups of one session.
type Cart struct {
	SessionID string          `json:"session_id"`
	Groups    []*BookingGroup `json:"groups"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GroupInput is the add-booking form: a contiguous range or an explicit
// date set, a time window, rooms, and an optional purpose.
type GroupInput struct {
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Dates       []string `json:"dates,omitempty"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	RoomIDs     []int64  `json:"roomIds"`
	Description string   `json:"description,omitempty"`
}

// PrecheckResult is the latest advisory conflict answer for a session's
// currently edited draft.
type PrecheckResult struct {
	Conflicts     []Conflict `json:"conflicts"`
	DisabledRooms []int64    `json:"disabledRooms"`
	Checking      bool       `json:"checking"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SubmitOutcome summarizes one submit-all round trip.
type SubmitOutcome struct {
	AllAccepted bool            `json:"allAccepted"`
	Accepted    int             `json:"accepted"`
	Failed      int             `json:"failed"`
	Groups      []*BookingGroup `json:"groups"`
}
