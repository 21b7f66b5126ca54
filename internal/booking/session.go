package booking

import (
	"sync"
	"time"
)

// State is the checkout flow state of a booking session.
type State string

const (
	// StateBrowsing: the user is choosing a start and end date.
	StateBrowsing State = "browsing"
	// StateSlotGrid: a date range is chosen and the grid is shown.
	StateSlotGrid State = "slot_grid"
	// StateSelecting: at least one toggle has happened.
	StateSelecting State = "selecting"
	// StateReviewPending: the user asked to check out.
	StateReviewPending State = "review_pending"
	// StateConfirming: the contact form is open.
	StateConfirming State = "confirming"
	// StateConfirmed: the ledger is updated and the selection cleared.
	StateConfirmed State = "confirmed"
)

// FSM holds the allowed checkout transitions. Cancelling out of
// review or the contact form drops back to selecting with the
// selection intact.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the checkout state machine.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateBrowsing:      {StateSlotGrid},
			StateSlotGrid:      {StateSelecting, StateBrowsing},
			StateSelecting:     {StateReviewPending, StateSlotGrid, StateBrowsing},
			StateReviewPending: {StateConfirming, StateSelecting},
			StateConfirming:    {StateConfirmed, StateSelecting},
			StateConfirmed:     {StateSlotGrid, StateBrowsing},
		},
	}
}

// CanTransition checks if the transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the session to the target state if allowed.
func (f *FSM) Transition(sess *Session, to State) bool {
	if f.CanTransition(sess.GetState(), to) {
		sess.SetState(to)
		return true
	}
	return false
}

// Session is one user's booking flow: the chosen date range, the
// working selection, and the customer draft. Each session is an
// independent instance of the core; only the ledger is shared.
type Session struct {
	mu        sync.Mutex
	state     State
	startDate string
	endDate   string
	dates     []string
	selection *Selection
	customer  Customer
	startedAt time.Time
	updatedAt time.Time
}

// NewSession creates a session in the browsing state.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		state:     StateBrowsing,
		selection: NewSelection(),
		startedAt: now,
		updatedAt: now,
	}
}

// SetState updates the flow state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.updatedAt = time.Now()
}

// GetState returns the flow state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetRange records the chosen date range and its generated dates.
// Choosing a new range discards the previous selection.
func (s *Session) SetRange(start, end string, dates []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startDate = start
	s.endDate = end
	s.dates = append([]string(nil), dates...)
	s.selection.Clear()
	s.updatedAt = time.Now()
}

// Dates returns the generated date range.
func (s *Session) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dates...)
}

// RangeLabel returns the chosen endpoints.
func (s *Session) RangeLabel() (start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startDate, s.endDate
}

// Toggle flips a cell against the given availability and returns the
// new selection snapshot along with the cell's resulting state.
func (s *Session) Toggle(avail Availability, date, slotID string) (snapshot []Cell, selected, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected, changed = s.selection.Toggle(avail, date, slotID)
	s.updatedAt = time.Now()
	return s.selection.Snapshot(), selected, changed
}

// Selected reports whether a cell is in the selection.
func (s *Session) Selected(date, slotID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Contains(date, slotID)
}

// SelectionCount returns the number of selected cells.
func (s *Session) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Len()
}

// Snapshot returns the selected cells in insertion order.
func (s *Session) Snapshot() []Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Snapshot()
}

// SetCustomerName stores the draft name.
func (s *Session) SetCustomerName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer.Name = name
	s.updatedAt = time.Now()
}

// SetCustomerEmail stores the draft email.
func (s *Session) SetCustomerEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer.Email = email
	s.updatedAt = time.Now()
}

// SetCustomerPhone stores the draft phone.
func (s *Session) SetCustomerPhone(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer.Phone = phone
	s.updatedAt = time.Now()
}

// CustomerDraft returns the contact details collected so far.
func (s *Session) CustomerDraft() Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.updatedAt) > timeout
}

// SessionStore manages booking sessions per user.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	timeout  time.Duration
}

// NewSessionStore creates a session store.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		timeout:  timeout,
	}
}

// Get returns the session for a user, or nil.
func (ss *SessionStore) Get(userID int64) *Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.sessions[userID]
}

// GetOrCreate returns the live session for a user, replacing an
// expired one.
func (ss *SessionStore) GetOrCreate(userID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sess, ok := ss.sessions[userID]
	if ok && !sess.IsExpired(ss.timeout) {
		return sess
	}

	sess = NewSession()
	ss.sessions[userID] = sess
	return sess
}

// Reset replaces a user's session with a fresh one.
func (ss *SessionStore) Reset(userID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sess := NewSession()
	ss.sessions[userID] = sess
	return sess
}

// Cleanup removes expired sessions and reports how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for userID, sess := range ss.sessions {
		if sess.IsExpired(ss.timeout) {
			delete(ss.sessions, userID)
			removed++
		}
	}
	return removed
}
