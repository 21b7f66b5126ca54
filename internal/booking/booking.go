// Package booking holds the reservation core: the append-only ledger
// of confirmed bookings, the per-session selection of grid cells, the
// checkout state machine, and the confirm service that turns a
// selection into booking records.
package booking

import (
	"strings"
	"time"
)

// Cell is the atomic unit of booking: one slot on one calendar date.
type Cell struct {
	Date   string
	SlotID string
}

// Key returns the composite selection key for the cell.
func (c Cell) Key() string {
	return c.Date + "-" + c.SlotID
}

// Customer holds the contact details collected at checkout.
// Phone is optional.
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// Booking is a confirmed reservation of one or more slots on a single
// date. Records are immutable once appended to the ledger.
type Booking struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
	Customer Customer  `json:"customer"`
	Total    int       `json:"total"`
	BookedAt time.Time `json:"booked_at"`
}

// HasSlot reports whether the booking covers the given slot.
func (b *Booking) HasSlot(slotID string) bool {
	for _, s := range b.Slots {
		if s == slotID {
			return true
		}
	}
	return false
}

// SlotList renders the booking's slots as a comma-separated string.
func (b *Booking) SlotList() string {
	return strings.Join(b.Slots, ", ")
}
