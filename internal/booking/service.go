package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"deskbook/internal/catalog"
)

// ErrEmptySelection is returned when confirm is attempted with no
// selected cells.
var ErrEmptySelection = errors.New("selection is empty")

// MissingFieldError reports a required customer field that is blank
// or invalid at confirm time.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// SlotTakenError reports selected cells that another session booked
// between selection and confirm. The cells have already been dropped
// from the selection when the error is returned.
type SlotTakenError struct {
	Cells []Cell
}

func (e *SlotTakenError) Error() string {
	keys := make([]string, len(e.Cells))
	for i, c := range e.Cells {
		keys[i] = c.Key()
	}
	return "slots already booked: " + strings.Join(keys, ", ")
}

// Service turns a session's selection into confirmed bookings.
type Service struct {
	catalog  *catalog.Catalog
	ledger   *Ledger
	validate *validator.Validate

	// overridable in tests
	now   func() time.Time
	newID func() string
}

// NewService creates a confirm service over the shared ledger.
func NewService(cat *catalog.Catalog, ledger *Ledger) *Service {
	return &Service{
		catalog:  cat,
		ledger:   ledger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Catalog returns the slot catalog the service prices against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Ledger returns the shared booking ledger.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Confirm validates the session's customer draft, materializes one
// booking per selected date, appends them to the ledger, and clears
// the selection and the draft. Sessions share the ledger, so cells
// selected while free may be taken by the time confirm runs; those
// are dropped from the selection and reported as a SlotTakenError,
// and nothing is appended. On any other error the session and the
// ledger are left untouched. The new bookings are returned
// newest-date-last, in selection order.
func (s *Service) Confirm(sess *Session) ([]Booking, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.selection.Len() == 0 {
		return nil, ErrEmptySelection
	}

	if err := s.validateCustomer(sess.customer); err != nil {
		return nil, err
	}

	dates, slotsByDate := sess.selection.byDate()

	bookings := make([]Booking, 0, len(dates))
	for _, date := range dates {
		slots := slotsByDate[date]
		bookings = append(bookings, Booking{
			ID:       s.newID(),
			Date:     date,
			Slots:    slots,
			Customer: sess.customer,
			Total:    s.catalog.Total(slots),
			BookedAt: s.now(),
		})
	}

	// The whole group lands at once, or not at all: AppendIfFree
	// re-checks every cell under the ledger lock so a confirm racing
	// another session cannot double-book a cell that was free at
	// selection time.
	if taken := s.ledger.AppendIfFree(bookings...); len(taken) > 0 {
		for _, c := range taken {
			sess.selection.Remove(c.Date, c.SlotID)
		}
		sess.updatedAt = time.Now()
		return nil, &SlotTakenError{Cells: taken}
	}
	sess.selection.Clear()
	sess.customer = Customer{}
	sess.updatedAt = time.Now()

	return bookings, nil
}

// validateCustomer maps validator failures to the first offending
// field. Name and email are required; phone is free-form.
func (s *Service) validateCustomer(c Customer) error {
	err := s.validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Name":
			return &MissingFieldError{Field: "name"}
		case "Email":
			return &MissingFieldError{Field: "email"}
		}
	}
	return fmt.Errorf("validate customer: %w", err)
}
