package cart

import (
	"sort"
	"time"

	"roomdesk/internal/models"
)

// resolveDates turns a draft's date selection into the resolved calendar
// date set: an explicit set is deduplicated and sorted, a contiguous range
// is expanded day by day, both ends inclusive.
func resolveDates(input models.GroupInput) ([]string, error) {
	if len(input.Dates) > 0 {
		return normalizeDates(input.Dates)
	}

	if input.StartDate == "" || input.EndDate == "" {
		return nil, ErrNoDates
	}

	start, err := time.Parse(models.DateLayout, input.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.Parse(models.DateLayout, input.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		// Reversed ranges are rejected later, as their own condition.
		return nil, nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates, nil
}

// normalizeDates deduplicates and sorts a date list, validating each entry.
// Submitting an already-normalized list yields the same result.
func normalizeDates(dates []string) ([]string, error) {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrNoDates
	}
	sort.Strings(out)
	return out, nil
}

// dedupeRooms keeps the first occurrence of each room id, preserving the
// selection order.
func dedupeRooms(roomIDs []int64) []int64 {
	seen := make(map[int64]bool, len(roomIDs))
	out := make([]int64, 0, len(roomIDs))
	for _, id := range roomIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
