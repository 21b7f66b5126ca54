package booking

import "deskbook/internal/catalog"

// Availability answers whether a cell is already taken. The ledger
// implements it; tests substitute their own.
type Availability interface {
	IsBooked(date, slotID string) bool
}

// Selection is the ordered set of cells the user has tentatively
// chosen but not yet confirmed. Insertion order is preserved so that
// confirmed bookings list slots in the order they were picked.
type Selection struct {
	cells []Cell
	index map[Cell]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{index: make(map[Cell]struct{})}
}

// Toggle flips the cell: select if absent, deselect if present. Cells
// that are already booked are never touched. It reports the cell's
// selected state after the call and whether anything changed.
func (s *Selection) Toggle(avail Availability, date, slotID string) (selected, changed bool) {
	if avail != nil && avail.IsBooked(date, slotID) {
		return false, false
	}

	cell := Cell{Date: date, SlotID: slotID}
	if s.Remove(date, slotID) {
		return false, true
	}

	s.index[cell] = struct{}{}
	s.cells = append(s.cells, cell)
	return true, true
}

// Remove deletes a cell from the selection, reporting whether it was
// present. Unlike Toggle it ignores availability, so confirm can
// evict cells another session booked in the meantime.
func (s *Selection) Remove(date, slotID string) bool {
	cell := Cell{Date: date, SlotID: slotID}
	if _, ok := s.index[cell]; !ok {
		return false
	}
	delete(s.index, cell)
	for i := range s.cells {
		if s.cells[i] == cell {
			s.cells = append(s.cells[:i], s.cells[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the cell is currently selected.
func (s *Selection) Contains(date, slotID string) bool {
	_, ok := s.index[Cell{Date: date, SlotID: slotID}]
	return ok
}

// Snapshot returns the selected cells in insertion order.
func (s *Selection) Snapshot() []Cell {
	return append([]Cell(nil), s.cells...)
}

// Len returns the number of selected cells.
func (s *Selection) Len() int {
	return len(s.cells)
}

// Total sums the catalog prices of the selected cells.
func (s *Selection) Total(cat *catalog.Catalog) int {
	total := 0
	for _, c := range s.cells {
		total += cat.PriceOf(c.SlotID)
	}
	return total
}

// Clear removes every cell. Called after a confirmed submission, a
// range change, or a full session reset.
func (s *Selection) Clear() {
	s.cells = nil
	s.index = make(map[Cell]struct{})
}

// byDate groups the selected cells by date in insertion order: dates
// appear in the order first selected, slots in selection order within
// each date. Built once per confirm and discarded.
func (s *Selection) byDate() (dates []string, slots map[string][]string) {
	slots = make(map[string][]string)
	for _, c := range s.cells {
		if _, ok := slots[c.Date]; !ok {
			dates = append(dates, c.Date)
		}
		slots[c.Date] = append(slots[c.Date], c.SlotID)
	}
	return dates, slots
}
