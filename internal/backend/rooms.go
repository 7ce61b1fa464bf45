package backend

import (
	"context"
	"encoding/json"

	"roomdesk/internal/models"
)

// SetFallbackRooms installs a seed catalog served when the backend room
// fetch fails. Display-only; submissions still go to the backend.
func (c *Client) SetFallbackRooms(rooms []models.Room) {
	data, err := json.Marshal(rooms)
	if err != nil {
		return
	}
	c.fallbackRooms = data
}

// FetchRooms returns the room directory, cached in Redis when configured.
func (c *Client) FetchRooms(ctx context.Context) ([]models.Room, error) {
	endpoint := c.endpoint("/rooms")
	cacheKey := "rooms:directory"

	var rooms []models.Room
	if c.readCache(ctx, cacheKey, &rooms) {
		return rooms, nil
	}

	if err := c.doGet(ctx, endpoint, &rooms); err != nil {
		if len(c.fallbackRooms) > 0 {
			c.logger.Warn().Err(err).Msg("room fetch failed, serving seed catalog")
			var seed []models.Room
			if jsonErr := json.Unmarshal(c.fallbackRooms, &seed); jsonErr == nil {
				return seed, nil
			}
		}
		return nil, err
	}

	c.writeCache(ctx, cacheKey, rooms)
	return rooms, nil
}

// FetchUnavailableDates returns globally blocked dates (YYYY-MM-DD).
func (c *Client) FetchUnavailableDates(ctx context.Context) ([]string, error) {
	var dates []string
	if err := c.doGet(ctx, c.endpoint("/rooms/unavailable-dates"), &dates); err != nil {
		return nil, err
	}
	return dates, nil
}
