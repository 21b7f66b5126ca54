package booking

import "sync"

// Ledger is the append-only collection of confirmed bookings. It lives
// for the life of the process; there is no update or delete.
type Ledger struct {
	mu       sync.RWMutex
	bookings []Booking
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds bookings to the ledger.
func (l *Ledger) Append(bookings ...Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings = append(l.bookings, bookings...)
}

// AppendIfFree appends the bookings only if every cell they cover is
// still free, and returns the conflicting cells otherwise. The check
// and the append run under one lock, so two confirms racing for the
// same cell cannot both land.
func (l *Ledger) AppendIfFree(bookings ...Booking) []Cell {
	l.mu.Lock()
	defer l.mu.Unlock()

	var taken []Cell
	for _, b := range bookings {
		for _, slotID := range b.Slots {
			if l.isBookedLocked(b.Date, slotID) {
				taken = append(taken, Cell{Date: b.Date, SlotID: slotID})
			}
		}
	}
	if len(taken) > 0 {
		return taken
	}

	l.bookings = append(l.bookings, bookings...)
	return nil
}

// IsBooked reports whether the given cell is covered by any booking.
// Linear scan; the ledger is session-sized.
func (l *Ledger) IsBooked(date, slotID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isBookedLocked(date, slotID)
}

func (l *Ledger) isBookedLocked(date, slotID string) bool {
	for i := range l.bookings {
		if l.bookings[i].Date == date && l.bookings[i].HasSlot(slotID) {
			return true
		}
	}
	return false
}

// List returns bookings newest-first. A limit of zero or less returns
// all of them.
func (l *Ledger) List(limit int) []Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.bookings)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Booking, 0, n)
	for i := len(l.bookings) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.bookings[i])
	}
	return out
}

// Len returns the number of bookings.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bookings)
}
