package woowup

import (
	"sync"
)

// Entity names used as statistics keys
const (
	EntityCustomers = "customers"
	EntityOrders    = "orders"
	EntityProducts  = "products"
)

// Entities lists every tracked entity in report order
var Entities = []string{EntityCustomers, EntityOrders, EntityProducts}

// Failure is a record the destination refused
type Failure struct {
	Identity string
	Code     string
	Message  string
	// Record is the payload that failed, kept for retry passes
	Record any
}

// EntityStats counts outcomes for one entity
type EntityStats struct {
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Duplicated int       `json:"duplicated"`
	Failed     []Failure `json:"-"`
}

// FailedCount is the number of failed records
func (s EntityStats) FailedCount() int {
	return len(s.Failed)
}

// Statistics accumulates per-entity outcomes for one run
type Statistics struct {
	mu       sync.Mutex
	entities map[string]*EntityStats
}

// NewStatistics returns empty counters for every entity
func NewStatistics() *Statistics {
	s := &Statistics{entities: make(map[string]*EntityStats, len(Entities))}
	for _, e := range Entities {
		s.entities[e] = &EntityStats{}
	}
	return s
}

func (s *Statistics) entity(name string) *EntityStats {
	e, ok := s.entities[name]
	if !ok {
		e = &EntityStats{}
		s.entities[name] = e
	}
	return e
}

// RecordCreated counts a created record
func (s *Statistics) RecordCreated(entity string) {
	s.mu.Lock()
	s.entity(entity).Created++
	s.mu.Unlock()
}

// RecordUpdated counts an updated record
func (s *Statistics) RecordUpdated(entity string) {
	s.mu.Lock()
	s.entity(entity).Updated++
	s.mu.Unlock()
}

// RecordDuplicated counts a record the destination already had
func (s *Statistics) RecordDuplicated(entity string) {
	s.mu.Lock()
	s.entity(entity).Duplicated++
	s.mu.Unlock()
}

// RecordFailed appends a failure
func (s *Statistics) RecordFailed(entity string, f Failure) {
	s.mu.Lock()
	e := s.entity(entity)
	e.Failed = append(e.Failed, f)
	s.mu.Unlock()
}

// ResetFailed clears the failure list of entity, or of every entity when entity is empty.
// It returns the cleared failures.
func (s *Statistics) ResetFailed(entity string) []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entity != "" {
		e := s.entity(entity)
		out := e.Failed
		e.Failed = nil
		return out
	}
	var out []Failure
	for _, name := range Entities {
		e := s.entity(name)
		out = append(out, e.Failed...)
		e.Failed = nil
	}
	return out
}

// Failed returns a copy of the failures of entity
func (s *Statistics) Failed(entity string) []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.entity(entity).Failed
	out := make([]Failure, len(src))
	copy(out, src)
	return out
}

// Snapshot returns a copy of every entity's counters
func (s *Statistics) Snapshot() map[string]EntityStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]EntityStats, len(s.entities))
	for name, e := range s.entities {
		c := *e
		c.Failed = append([]Failure(nil), e.Failed...)
		out[name] = c
	}
	return out
}
