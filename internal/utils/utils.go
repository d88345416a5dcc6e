package utils

import (
	"math"
	"time"

	"github.com/transreserve/trip-reservations/internal/models"
)

// TotalCapacity sums the selected capacities of a selection map.
func TotalCapacity(selections map[string]int) int {
	total := 0
	for _, capacity := range selections {
		total += capacity
	}
	return total
}

// TotalPrice sums price × selected capacity over the given trips. Trips
// without a selection contribute nothing.
func TotalPrice(trips []models.Trip, selections map[string]int) float64 {
	total := 0.0
	for _, trip := range trips {
		total += trip.Price * float64(selections[trip.ID])
	}
	return total
}

// WeekNumber computes the week of the year as
// ceil((daysSinceJan1 + weekday(Jan 1) + 1) / 7), with Sunday = 0 and
// daysSinceJan1 carrying the fractional time of day. This is a simplified
// local convention, not ISO-8601 week numbering, and is kept as-is for
// compatibility with existing data.
func WeekNumber(date time.Time) int {
	firstDayOfYear := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
	pastDaysOfYear := date.Sub(firstDayOfYear).Hours() / 24
	return int(math.Ceil((pastDaysOfYear + float64(firstDayOfYear.Weekday()) + 1) / 7))
}

// StatusBadgeVariation maps a reservation status to the badge style shown
// in clients.
func StatusBadgeVariation(status models.ReservationStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "success"
	case models.StatusPending:
		return "warning"
	case models.StatusCancelled:
		return "error"
	default:
		return "info"
	}
}
