package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"roomdesk/internal/models"
)

// FetchCustomers lists customer records, paginated and searchable.
func (c *Client) FetchCustomers(ctx context.Context, search string, page, pageSize int) (*models.PagedCustomers, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if page > 0 {
		params.Set("page", fmt.Sprintf("%d", page))
	}
	if pageSize > 0 {
		params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	}

	endpoint := c.endpoint("/customers")
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var resp models.PagedCustomers
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateCustomer(ctx context.Context, input models.CustomerInput) (*models.Customer, error) {
	var created models.Customer
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("/customers"), input, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id int64, input models.CustomerInput) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("/customers/%d", id), input, nil)
}

func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.doDelete(ctx, c.endpoint("/customers/%d", id))
}
