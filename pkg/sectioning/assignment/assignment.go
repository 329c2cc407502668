package assignment

import (
	"sort"
	"sync"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

var _ sectioning.MutableAssignment = &Map{}

// Map is a MutableAssignment keyed by request identifier. It is safe
// for concurrent use, although a search normally works on its own
// Clone.
type Map struct {
	values map[sectioning.Identifier]sectioning.Enrollment
	mu     sync.RWMutex
}

func New() *Map {
	return &Map{
		values: map[sectioning.Identifier]sectioning.Enrollment{},
	}
}

func (m *Map) Value(r sectioning.Request) sectioning.Enrollment {
	if r == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[r.Identifier()]
}

// Assigned returns the assigned enrollments ordered by request
// identifier.
func (m *Map) Assigned() []sectioning.Enrollment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]sectioning.Enrollment, 0, len(m.values))
	for _, e := range m.values {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Request().Identifier() < out[j].Request().Identifier()
	})
	return out
}

func (m *Map) Assign(e sectioning.Enrollment) sectioning.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := e.Request().Identifier()
	previous := m.values[id]
	m.values[id] = e
	return previous
}

func (m *Map) Unassign(r sectioning.Request) sectioning.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.values[r.Identifier()]
	delete(m.values, r.Identifier())
	return previous
}

func (m *Map) Clone() sectioning.MutableAssignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make(map[sectioning.Identifier]sectioning.Enrollment, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}
	return &Map{values: values}
}

// Len returns the number of assigned requests.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// TotalValue sums the values of all assigned enrollments.
func TotalValue(a sectioning.Assignment) float64 {
	total := 0.0
	for _, e := range a.Assigned() {
		total += e.Value()
	}
	return total
}
