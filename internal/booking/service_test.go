package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskbook/internal/catalog"
)

func newTestService(t *testing.T) (*Service, *Ledger) {
	t.Helper()
	ledger := NewLedger()
	svc := NewService(catalog.Default(), ledger)

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("bk-%d", seq)
	}
	svc.now = func() time.Time {
		return time.Date(2025, 1, 9, 15, 4, 5, 0, time.UTC)
	}
	return svc, ledger
}

func sessionWithSelection(ledger *Ledger, cells ...Cell) *Session {
	sess := NewSession()
	for _, c := range cells {
		sess.Toggle(ledger, c.Date, c.SlotID)
	}
	return sess
}

func TestConfirmGroupsByDate(t *testing.T) {
	svc, ledger := newTestService(t)
	sess := sessionWithSelection(ledger,
		Cell{Date: "2025-01-10", SlotID: "09-10"},
		Cell{Date: "2025-01-10", SlotID: "10-11"},
		Cell{Date: "2025-01-11", SlotID: "09-10"},
	)
	sess.SetCustomerName("Ann")
	sess.SetCustomerEmail("a@x.com")

	bookings, err := svc.Confirm(sess)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	first := bookings[0]
	assert.Equal(t, "2025-01-10", first.Date)
	assert.Equal(t, []string{"09-10", "10-11"}, first.Slots)
	assert.Equal(t, 50, first.Total)
	assert.Equal(t, "Ann", first.Customer.Name)
	assert.False(t, first.BookedAt.IsZero())

	second := bookings[1]
	assert.Equal(t, "2025-01-11", second.Date)
	assert.Equal(t, []string{"09-10"}, second.Slots)
	assert.Equal(t, 25, second.Total)

	assert.NotEqual(t, first.ID, second.ID)

	// Selection and draft are cleared, the ledger holds both records.
	assert.Equal(t, 0, sess.SelectionCount())
	assert.Equal(t, Customer{}, sess.CustomerDraft())
	assert.Equal(t, 2, ledger.Len())
}

func TestConfirmEmptySelection(t *testing.T) {
	svc, ledger := newTestService(t)
	sess := NewSession()
	sess.SetCustomerName("Ann")
	sess.SetCustomerEmail("a@x.com")

	bookings, err := svc.Confirm(sess)
	assert.Nil(t, bookings)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, 0, ledger.Len())
}

func TestConfirmMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		customer  Customer
		wantField string
	}{
		{
			name:      "blank name",
			customer:  Customer{Email: "a@x.com"},
			wantField: "name",
		},
		{
			name:      "blank email",
			customer:  Customer{Name: "Ann"},
			wantField: "email",
		},
		{
			name:      "malformed email",
			customer:  Customer{Name: "Ann", Email: "not-an-email"},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger := newTestService(t)
			sess := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
			sess.SetCustomerName(tt.customer.Name)
			sess.SetCustomerEmail(tt.customer.Email)

			bookings, err := svc.Confirm(sess)
			assert.Nil(t, bookings)

			var mfe *MissingFieldError
			require.True(t, errors.As(err, &mfe), "got %v", err)
			assert.Equal(t, tt.wantField, mfe.Field)

			// Ledger and selection untouched on failure.
			assert.Equal(t, 0, ledger.Len())
			assert.Equal(t, 1, sess.SelectionCount())
		})
	}
}

func TestConfirmPhoneIsOptional(t *testing.T) {
	svc, ledger := newTestService(t)
	sess := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	sess.SetCustomerName("Ann")
	sess.SetCustomerEmail("a@x.com")

	bookings, err := svc.Confirm(sess)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Empty(t, bookings[0].Customer.Phone)
}

func TestConfirmedCellsBecomeBooked(t *testing.T) {
	svc, ledger := newTestService(t)
	sess := sessionWithSelection(ledger,
		Cell{Date: "2025-01-10", SlotID: "09-10"},
		Cell{Date: "2025-01-10", SlotID: "10-11"},
	)
	sess.SetCustomerName("Ann")
	sess.SetCustomerEmail("a@x.com")

	_, err := svc.Confirm(sess)
	require.NoError(t, err)

	assert.True(t, ledger.IsBooked("2025-01-10", "09-10"))
	assert.True(t, ledger.IsBooked("2025-01-10", "10-11"))

	// Re-toggling a just-booked cell is a no-op.
	_, selected, changed := sess.Toggle(ledger, "2025-01-10", "09-10")
	assert.False(t, selected)
	assert.False(t, changed)
	assert.Equal(t, 0, sess.SelectionCount())
}

func TestConfirmNoDoubleBookingAcrossSessions(t *testing.T) {
	svc, ledger := newTestService(t)

	first := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	first.SetCustomerName("Ann")
	first.SetCustomerEmail("a@x.com")
	_, err := svc.Confirm(first)
	require.NoError(t, err)

	// A later session cannot even select the taken cell.
	second := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	assert.Equal(t, 0, second.SelectionCount())
}

func TestConfirmRejectsStaleSelection(t *testing.T) {
	svc, ledger := newTestService(t)

	// Both sessions select the same cell while it is still free.
	first := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	second := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	require.Equal(t, 1, first.SelectionCount())
	require.Equal(t, 1, second.SelectionCount())

	first.SetCustomerName("Ann")
	first.SetCustomerEmail("a@x.com")
	second.SetCustomerName("Bob")
	second.SetCustomerEmail("b@x.com")

	_, err := svc.Confirm(first)
	require.NoError(t, err)

	bookings, err := svc.Confirm(second)
	assert.Nil(t, bookings)

	var ste *SlotTakenError
	require.ErrorAs(t, err, &ste)
	require.Len(t, ste.Cells, 1)
	assert.Equal(t, Cell{Date: "2025-01-10", SlotID: "09-10"}, ste.Cells[0])

	// Exactly one booking covers the cell.
	covering := 0
	for _, b := range ledger.List(0) {
		if b.Date == "2025-01-10" && b.HasSlot("09-10") {
			covering++
		}
	}
	assert.Equal(t, 1, covering)

	// The stale cell is evicted from the losing selection.
	assert.Equal(t, 0, second.SelectionCount())
}

func TestConfirmStaleSelectionKeepsFreeCells(t *testing.T) {
	svc, ledger := newTestService(t)

	winner := sessionWithSelection(ledger, Cell{Date: "2025-01-10", SlotID: "09-10"})
	loser := sessionWithSelection(ledger,
		Cell{Date: "2025-01-10", SlotID: "09-10"},
		Cell{Date: "2025-01-10", SlotID: "10-11"},
	)

	winner.SetCustomerName("Ann")
	winner.SetCustomerEmail("a@x.com")
	loser.SetCustomerName("Bob")
	loser.SetCustomerEmail("b@x.com")

	_, err := svc.Confirm(winner)
	require.NoError(t, err)

	var ste *SlotTakenError
	_, err = svc.Confirm(loser)
	require.ErrorAs(t, err, &ste)
	assert.Equal(t, "slots already booked: 2025-01-10-09-10", err.Error())

	// Only the taken cell is evicted; the free one stays selected and
	// a retry confirms it.
	require.Equal(t, 1, loser.SelectionCount())
	assert.True(t, loser.Selected("2025-01-10", "10-11"))

	bookings, err := svc.Confirm(loser)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, []string{"10-11"}, bookings[0].Slots)
	assert.True(t, ledger.IsBooked("2025-01-10", "10-11"))
}

func TestConfirmTotalsMatchCatalog(t *testing.T) {
	svc, ledger := newTestService(t)
	cat := svc.Catalog()

	sess := sessionWithSelection(ledger,
		Cell{Date: "2025-01-10", SlotID: "12-13"},
		Cell{Date: "2025-01-10", SlotID: "13-14"},
	)
	sess.SetCustomerName("Bob")
	sess.SetCustomerEmail("b@x.com")

	bookings, err := svc.Confirm(sess)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, cat.Total([]string{"12-13", "13-14"}), bookings[0].Total)
	assert.Equal(t, 60, bookings[0].Total)
}

func TestMissingFieldErrorMessage(t *testing.T) {
	err := &MissingFieldError{Field: "name"}
	assert.Equal(t, "missing required field: name", err.Error())
}
