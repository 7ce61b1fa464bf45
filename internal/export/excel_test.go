package export

import (
	"os"
	"testing"
	"time"

	"roomdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroups() []models.BookingGroupDetail {
	return []models.BookingGroupDetail{
		{
			ID:            10,
			CustomerName:  "Ivanov",
			CustomerEmail: "ivanov@example.com",
			StartDate:     "2026-09-01",
			EndDate:       "2026-09-03",
			StartTime:     "09:00:00",
			EndTime:       "11:00:00",
			Status:        models.GroupReviewPartiallyApproved,
			ApprovedCount: 2,
			PendingCount:  0,
			RejectedCount: 1,
			Description:   "Rehearsal",
			CreatedAt:     time.Now(),
			RoomBookings: []models.RoomBooking{
				{RoomID: 1, RoomName: "Big hall"},
				{RoomID: 2, RoomName: "Studio"},
				{RoomID: 1, RoomName: "Big hall"},
			},
		},
	}
}

func TestRenderGroups(t *testing.T) {
	f, err := RenderGroups(sampleGroups())
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Sheet1")
	require.Contains(t, f.GetSheetList(), "BookingGroups")

	header, err := f.GetCellValue("BookingGroups", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	customer, err := f.GetCellValue("BookingGroups", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ivanov", customer)

	// Duplicate room names collapse in the rooms column.
	rooms, err := f.GetCellValue("BookingGroups", "I2")
	require.NoError(t, err)
	assert.Equal(t, "Big hall, Studio", rooms)

	status, err := f.GetCellValue("BookingGroups", "H2")
	require.NoError(t, err)
	assert.Equal(t, models.GroupReviewPartiallyApproved, status)
}

func TestWriteGroupsFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteGroupsFile(dir, sampleGroups())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Contains(t, path, "booking_groups_")
}
