// Package demo fills the ledger with plausible bookings so the grid
// shows taken cells out of the box.
package demo

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"deskbook/internal/booking"
	"deskbook/internal/catalog"
	"deskbook/internal/schedule"
)

// Seed creates count fake bookings over the next week and appends
// them to the ledger. Each booking takes one or two free slots on a
// random date; cells already booked are skipped, so the result never
// violates the no-double-booking invariant.
func Seed(ledger *booking.Ledger, cat *catalog.Catalog, count int) int {
	gofakeit.Seed(time.Now().UnixNano())

	slots := cat.Slots()
	today := time.Now().UTC()

	created := 0
	for i := 0; i < count; i++ {
		date := today.AddDate(0, 0, gofakeit.Number(0, 6)).Format(schedule.DateLayout)

		var picked []string
		start := gofakeit.Number(0, len(slots)-1)
		want := gofakeit.Number(1, 2)
		for j := start; j < len(slots) && len(picked) < want; j++ {
			if !ledger.IsBooked(date, slots[j].ID) {
				picked = append(picked, slots[j].ID)
			}
		}
		if len(picked) == 0 {
			continue
		}

		ledger.Append(booking.Booking{
			ID:    uuid.New().String(),
			Date:  date,
			Slots: picked,
			Customer: booking.Customer{
				Name:  gofakeit.Name(),
				Email: gofakeit.Email(),
				Phone: gofakeit.Phone(),
			},
			Total:    cat.Total(picked),
			BookedAt: time.Now(),
		})
		created++
	}
	return created
}
