package bot

import "sync"

// inputStep tracks which free-text input the bot is waiting for from
// a user. The checkout flow itself lives in booking.Session; these
// steps only route incoming messages.
type inputStep string

const (
	stepNone      inputStep = "none"
	stepStartDate inputStep = "start_date"
	stepEndDate   inputStep = "end_date"
	stepName      inputStep = "name"
	stepEmail     inputStep = "email"
	stepPhone     inputStep = "phone"
)

type userInput struct {
	Step      inputStep
	StartDate string // pending start date while waiting for the end date
}

type inputStore struct {
	mu sync.Mutex
	m  map[int64]*userInput
}

func newInputStore() *inputStore {
	return &inputStore{m: make(map[int64]*userInput)}
}

func (s *inputStore) get(userID int64) *userInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userInput{Step: stepNone}
		s.m[userID] = st
	}
	return st
}

func (s *inputStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
