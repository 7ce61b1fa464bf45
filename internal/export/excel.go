package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"roomdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

var groupHeaders = []string{
	"ID", "Customer", "Email", "Start date", "End date",
	"Start time", "End time", "Status", "Rooms", "Approved", "Pending", "Rejected", "Description",
}

// WriteGroupsFile renders booking groups into an xlsx file under dir and
// returns the file path.
func WriteGroupsFile(dir string, groups []models.BookingGroupDetail) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := renderGroups(groups)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("booking_groups_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}

// RenderGroups builds the workbook in memory, for handlers that stream it.
func RenderGroups(groups []models.BookingGroupDetail) (*excelize.File, error) {
	return renderGroups(groups)
}

func renderGroups(groups []models.BookingGroupDetail) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "BookingGroups"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, header := range groupHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, group := range groups {
		row := i + 2
		values := []any{
			group.ID,
			group.CustomerName,
			group.CustomerEmail,
			group.StartDate,
			group.EndDate,
			group.StartTime,
			group.EndTime,
			group.Status,
			roomNames(group.RoomBookings),
			group.ApprovedCount,
			group.PendingCount,
			group.RejectedCount,
			group.Description,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 24)
	_ = f.SetColWidth(sheetName, "D", "H", 14)
	_ = f.SetColWidth(sheetName, "I", "I", 36)
	_ = f.SetColWidth(sheetName, "M", "M", 40)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

func roomNames(bookings []models.RoomBooking) string {
	names := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if b.RoomName == "" || seen[b.RoomName] {
			continue
		}
		seen[b.RoomName] = true
		names = append(names, b.RoomName)
	}
	return strings.Join(names, ", ")
}
