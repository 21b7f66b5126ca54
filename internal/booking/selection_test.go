package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskbook/internal/catalog"
)

func TestToggleSelectsAndDeselects(t *testing.T) {
	sel := NewSelection()
	ledger := NewLedger()

	selected, changed := sel.Toggle(ledger, "2025-01-10", "09-10")
	assert.True(t, selected)
	assert.True(t, changed)
	assert.True(t, sel.Contains("2025-01-10", "09-10"))
	assert.Equal(t, 1, sel.Len())

	// Second toggle on the same cell restores the prior state.
	selected, changed = sel.Toggle(ledger, "2025-01-10", "09-10")
	assert.False(t, selected)
	assert.True(t, changed)
	assert.False(t, sel.Contains("2025-01-10", "09-10"))
	assert.Equal(t, 0, sel.Len())
}

func TestTogglePairIsIdempotent(t *testing.T) {
	sel := NewSelection()
	ledger := NewLedger()

	sel.Toggle(ledger, "2025-01-10", "09-10")
	sel.Toggle(ledger, "2025-01-11", "10-11")
	before := sel.Snapshot()

	sel.Toggle(ledger, "2025-01-12", "11-12")
	sel.Toggle(ledger, "2025-01-12", "11-12")

	assert.Equal(t, before, sel.Snapshot())
}

func TestToggleBookedCellIsNoOp(t *testing.T) {
	sel := NewSelection()
	ledger := NewLedger()
	ledger.Append(Booking{ID: "b1", Date: "2025-01-10", Slots: []string{"09-10"}})

	selected, changed := sel.Toggle(ledger, "2025-01-10", "09-10")
	assert.False(t, selected)
	assert.False(t, changed)
	assert.Equal(t, 0, sel.Len())

	// The same slot on another date is still free.
	selected, _ = sel.Toggle(ledger, "2025-01-11", "09-10")
	assert.True(t, selected)
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	sel := NewSelection()

	sel.Toggle(nil, "2025-01-11", "10-11")
	sel.Toggle(nil, "2025-01-10", "09-10")
	sel.Toggle(nil, "2025-01-11", "09-10")

	snap := sel.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, Cell{Date: "2025-01-11", SlotID: "10-11"}, snap[0])
	assert.Equal(t, Cell{Date: "2025-01-10", SlotID: "09-10"}, snap[1])
	assert.Equal(t, Cell{Date: "2025-01-11", SlotID: "09-10"}, snap[2])
}

func TestSelectionTotal(t *testing.T) {
	cat := catalog.Default()
	sel := NewSelection()

	assert.Equal(t, 0, sel.Total(cat))

	sel.Toggle(nil, "2025-01-10", "09-10") // 25
	sel.Toggle(nil, "2025-01-10", "12-13") // 30
	sel.Toggle(nil, "2025-01-11", "09-10") // 25
	assert.Equal(t, 80, sel.Total(cat))

	sel.Toggle(nil, "2025-01-10", "12-13")
	assert.Equal(t, 50, sel.Total(cat))
}

func TestClear(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(nil, "2025-01-10", "09-10")
	sel.Toggle(nil, "2025-01-11", "10-11")

	sel.Clear()

	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.Snapshot())

	// Cleared cells can be selected again.
	selected, _ := sel.Toggle(nil, "2025-01-10", "09-10")
	assert.True(t, selected)
}

func TestRemoveIgnoresAvailability(t *testing.T) {
	ledger := NewLedger()
	sel := NewSelection()
	sel.Toggle(ledger, "2025-01-10", "09-10")
	sel.Toggle(ledger, "2025-01-10", "10-11")

	// Another session books a selected cell: Toggle refuses to touch
	// it, Remove still evicts it.
	ledger.Append(Booking{ID: "b1", Date: "2025-01-10", Slots: []string{"09-10"}})
	_, changed := sel.Toggle(ledger, "2025-01-10", "09-10")
	assert.False(t, changed)

	assert.True(t, sel.Remove("2025-01-10", "09-10"))
	assert.False(t, sel.Remove("2025-01-10", "09-10"))
	assert.Equal(t, []Cell{{Date: "2025-01-10", SlotID: "10-11"}}, sel.Snapshot())
}

func TestByDateGrouping(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(nil, "2025-01-11", "09-10")
	sel.Toggle(nil, "2025-01-10", "10-11")
	sel.Toggle(nil, "2025-01-11", "12-13")

	dates, slots := sel.byDate()

	// Dates in first-selected order, slots in selection order.
	require.Equal(t, []string{"2025-01-11", "2025-01-10"}, dates)
	assert.Equal(t, []string{"09-10", "12-13"}, slots["2025-01-11"])
	assert.Equal(t, []string{"10-11"}, slots["2025-01-10"])
}
