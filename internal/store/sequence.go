package store

import (
	"sync"
	"time"

	"fjacquet/expense-tracker/internal/models"
)

// IDSequence hands out strictly increasing ids. Ids track the wall clock in
// milliseconds so they still sort by creation time, but two records created
// within the same millisecond get consecutive values instead of colliding.
type IDSequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSequence returns a sequence whose first id is greater than last.
func NewIDSequence(last int64) *IDSequence {
	return &IDSequence{last: last, now: time.Now}
}

// Next returns the next id.
func (s *IDSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().UnixMilli()
	if next <= s.last {
		next = s.last + 1
	}
	s.last = next
	return next
}

// Observe raises the floor of the sequence to id, e.g. after a reload.
func (s *IDSequence) Observe(id int64) {
	s.mu.Lock()
	if id > s.last {
		s.last = id
	}
	s.mu.Unlock()
}

func maxID(expenses []models.Expense) int64 {
	var m int64
	for _, e := range expenses {
		if e.ID > m {
			m = e.ID
		}
	}
	return m
}
