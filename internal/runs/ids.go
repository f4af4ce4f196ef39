package runs

import "time"

// IDSource hands out run ids derived from the clock. Ids are strictly
// increasing even when two runs are added within the same millisecond.
type IDSource struct {
	last int64
	now  func() time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Observe makes sure future ids are greater than id.
func (s *IDSource) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

func (s *IDSource) Next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
