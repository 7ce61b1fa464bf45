package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"roomdesk/internal/models"
)

// CheckConflicts asks the backend whether any candidate booking collides
// with existing reservations. An empty list means no known conflicts.
func (c *Client) CheckConflicts(ctx context.Context, candidates []models.CandidateBooking) ([]models.Conflict, error) {
	var conflicts []models.Conflict
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("/room-bookings/check-conflicts"), candidates, &conflicts)
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// SubmitBookingGroups sends the whole cart in one call. The response
// carries one result per group in request order.
func (c *Client) SubmitBookingGroups(ctx context.Context, req *models.BulkGroupRequest) (*models.BulkGroupResponse, error) {
	var resp models.BulkGroupResponse
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("/room-bookings/groups/bulk-submit"), req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCustomerBookings lists a customer's room bookings, optionally
// filtered by status.
func (c *Client) FetchCustomerBookings(ctx context.Context, customerID int64, status string, page, pageSize int) (*models.PagedRoomBookings, error) {
	params := url.Values{}
	params.Set("customerId", fmt.Sprintf("%d", customerID))
	if status != "" && status != "All" {
		params.Set("status", status)
	}
	if page > 0 {
		params.Set("page", fmt.Sprintf("%d", page))
	}
	if pageSize > 0 {
		params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	}

	var resp models.PagedRoomBookings
	if err := c.doGet(ctx, c.endpoint("/room-bookings?%s", params.Encode()), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCustomerGroups lists a customer's booking groups with detail.
func (c *Client) FetchCustomerGroups(ctx context.Context, customerID int64) ([]models.BookingGroupDetail, error) {
	var groups []models.BookingGroupDetail
	if err := c.doGet(ctx, c.endpoint("/room-bookings/groups/customer/%d", customerID), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateBooking changes a booking's time window.
func (c *Client) UpdateBooking(ctx context.Context, bookingID int64, update models.TimeWindowUpdate) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("/room-bookings/%d", bookingID), update, nil)
}

// ResubmitBooking reopens a rejected booking with a new time window.
func (c *Client) ResubmitBooking(ctx context.Context, bookingID int64, update models.TimeWindowUpdate) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("/room-bookings/%d/resubmit", bookingID), update, nil)
}

// CancelBooking deletes a booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64) error {
	return c.doDelete(ctx, c.endpoint("/room-bookings/%d", bookingID))
}

// FetchAdminGroups lists booking groups for review, paginated with
// optional status and search filters.
func (c *Client) FetchAdminGroups(ctx context.Context, page, pageSize int, status, search string) (*models.PagedBookingGroups, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	if status != "" {
		params.Set("status", status)
	}
	if search != "" {
		params.Set("search", search)
	}

	var resp models.PagedBookingGroups
	if err := c.doGet(ctx, c.endpoint("/room-bookings/groups/admin?%s", params.Encode()), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateBookingStatus approves or rejects an individual room booking.
func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	if status != models.BookingStatusApproved && status != models.BookingStatusRejected {
		return fmt.Errorf("unsupported booking status: %s", status)
	}
	body := map[string]string{"status": status}
	return c.doJSON(ctx, http.MethodPut, c.endpoint("/room-bookings/%d/status", bookingID), body, nil)
}
