package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart(sessionID string) *models.Cart {
	return &models.Cart{
		SessionID: sessionID,
		Groups: []*models.BookingGroup{{
			ID:        "g1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-02",
			Dates:     []string{"2026-09-01", "2026-09-02"},
			StartTime: "09:00",
			EndTime:   "11:00",
			RoomIDs:   []int64{1, 2},
			Status:    models.GroupStatusDraft,
		}},
		UpdatedAt: time.Now(),
	}
}

func TestMemoryCartRepository(t *testing.T) {
	repo := NewMemoryCartRepository(time.Hour)
	ctx := context.Background()

	cart, err := repo.GetCart(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, cart)

	require.NoError(t, repo.SetCart(ctx, sampleCart("s1")))

	cart, err = repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Len(t, cart.Groups, 1)

	require.NoError(t, repo.ClearCart(ctx, "s1"))
	cart, err = repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestMemoryCartRepository_TTL(t *testing.T) {
	repo := NewMemoryCartRepository(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, repo.SetCart(ctx, sampleCart("s1")))
	time.Sleep(20 * time.Millisecond)

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestRedisCartRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	repo := NewRedisCartRepository(client, time.Hour)
	ctx := context.Background()

	cart, err := repo.GetCart(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, cart)

	original := sampleCart("s1")
	require.NoError(t, repo.SetCart(ctx, original))

	loaded, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.SessionID, loaded.SessionID)
	require.Len(t, loaded.Groups, 1)
	assert.Equal(t, original.Groups[0].ID, loaded.Groups[0].ID)
	assert.Equal(t, original.Groups[0].Dates, loaded.Groups[0].Dates)

	require.NoError(t, repo.ClearCart(ctx, "s1"))
	loaded, err = repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisCartRepository_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	repo := NewRedisCartRepository(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.SetCart(ctx, sampleCart("s1")))
	mr.FastForward(2 * time.Minute)

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

// brokenRepo fails every call, standing in for an unreachable redis.
type brokenRepo struct{}

func (brokenRepo) GetCart(context.Context, string) (*models.Cart, error) {
	return nil, errors.New("connection refused")
}
func (brokenRepo) SetCart(context.Context, *models.Cart) error {
	return errors.New("connection refused")
}
func (brokenRepo) ClearCart(context.Context, string) error {
	return errors.New("connection refused")
}

func TestFailoverCartRepository(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryCartRepository(time.Hour)
	repo := NewFailoverCartRepository(brokenRepo{}, fallback, &logger)
	ctx := context.Background()

	// First write trips the failover and lands in memory.
	require.NoError(t, repo.SetCart(ctx, sampleCart("s1")))

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, "s1", cart.SessionID)

	require.NoError(t, repo.ClearCart(ctx, "s1"))
	cart, err = repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestFailoverCartRepository_PrimaryHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryCartRepository(time.Hour)
	fallback := NewMemoryCartRepository(time.Hour)
	repo := NewFailoverCartRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetCart(ctx, sampleCart("s1")))

	// The write goes through the primary, not the fallback.
	cart, err := primary.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, cart)

	cart, err = fallback.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}
