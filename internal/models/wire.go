package models

import "time"

// CandidateBooking is one (date, room) expansion sent to the advisory
// conflict check. Times are ISO instants.
type CandidateBooking struct {
	RoomID     int64  `json:"roomId"`
	CustomerID int64  `json:"customerId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// BulkGroupItem is one normalized cart group as the backend expects it:
// dates deduplicated and sorted, start/end as their min/max, times with a
// seconds component.
type BulkGroupItem struct {
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Dates       []string `json:"dates"`
	RoomIDs     []int64  `json:"roomIds"`
	Description string   `json:"description,omitempty"`
}

// BulkGroupRequest carries the whole cart in a single call.
type BulkGroupRequest struct {
	CustomerID int64           `json:"customerId"`
	Groups     []BulkGroupItem `json:"groups"`
}

// GroupResult is the backend's verdict for one submitted group, in
// submission order.
type GroupResult struct {
	Success   bool       `json:"success"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

type BulkGroupResponse struct {
	Results []GroupResult `json:"results"`
}

// RoomBooking is one room reservation as the backend reports it.
type RoomBooking struct {
	ID            int64  `json:"id"`
	RoomID        int64  `json:"roomId"`
	RoomName      string `json:"roomName"`
	CustomerID    int64  `json:"customerId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Status        string `json:"status"`
	Description   string `json:"description,omitempty"`
}

// BookingGroupDetail is the backend's view of a submitted group with its
// per-room bookings and review counters.
type BookingGroupDetail struct {
	ID            int64         `json:"id"`
	CustomerID    int64         `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	StartTime     string        `json:"startTime"`
	EndTime       string        `json:"endTime"`
	Description   string        `json:"description,omitempty"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
	TotalRooms    int           `json:"totalRooms"`
	ApprovedCount int           `json:"approvedCount"`
	PendingCount  int           `json:"pendingCount"`
	RejectedCount int           `json:"rejectedCount"`
	RoomBookings  []RoomBooking `json:"roomBookings"`
}

// PagedRoomBookings and PagedBookingGroups mirror the backend's paginated
// envelopes.
type PagedRoomBookings struct {
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
	Data       []RoomBooking `json:"data"`
}

type PagedBookingGroups struct {
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalItems int                  `json:"totalItems"`
	TotalPages int                  `json:"totalPages"`
	Data       []BookingGroupDetail `json:"data"`
}

type PagedCustomers struct {
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	Data       []Customer `json:"data"`
}

// CustomerInput creates or updates a customer record.
type CustomerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// TimeWindowUpdate changes a booking's window on edit or resubmit.
type TimeWindowUpdate struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
