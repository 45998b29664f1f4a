package diagnostics

// Set collects the diagnostics of one scenario run. Adding a message whose
// hash is already present increments the stored count instead of inserting.
// A Set is not safe for concurrent use.
type Set struct {
	order []*Message
	index map[string]*Message
}

func NewSet() *Set {
	return &Set{index: make(map[string]*Message)}
}

// Add records m, or bumps the count of the message with the same hash.
func (s *Set) Add(m *Message) {
	if m == nil {
		return
	}
	if existing, ok := s.index[m.Hash]; ok {
		existing.Count++
		return
	}
	stored := *m
	if stored.Count < 1 {
		stored.Count = 1
	}
	s.index[m.Hash] = &stored
	s.order = append(s.order, &stored)
}

// Report renders and adds a message in one step.
func (s *Set) Report(kind Kind, path []string, args ...any) {
	s.Add(New(kind, path, args...))
}

// Len returns the number of distinct messages.
func (s *Set) Len() int {
	return len(s.order)
}

// Get returns the message with the given hash.
func (s *Set) Get(hash string) (*Message, bool) {
	m, ok := s.index[hash]
	return m, ok
}

// All returns every message in first-seen order.
func (s *Set) All() []*Message {
	out := make([]*Message, len(s.order))
	copy(out, s.order)
	return out
}

// Failures returns error-severity messages in first-seen order.
func (s *Set) Failures() []*Message {
	return s.filter(SevError)
}

// Warnings returns warning-severity messages in first-seen order.
func (s *Set) Warnings() []*Message {
	return s.filter(SevWarning)
}

// HasFailures reports whether any error-severity message was added.
func (s *Set) HasFailures() bool {
	for _, m := range s.order {
		if m.Severity == SevError {
			return true
		}
	}
	return false
}

func (s *Set) filter(sev Severity) []*Message {
	var out []*Message
	for _, m := range s.order {
		if m.Severity == sev {
			out = append(out, m)
		}
	}
	return out
}
