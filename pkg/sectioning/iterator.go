package sectioning

// EnrollmentIterator walks a freshly produced list of candidate
// enrollments exactly once.
//
//	it := provider.Candidates(ctx, request)
//	for it.Next() {
//		e := it.Value()
//		...
//	}
type EnrollmentIterator struct {
	values  []Enrollment
	next    int
	current Enrollment
}

// NewEnrollmentIterator takes ownership of values.
func NewEnrollmentIterator(values []Enrollment) *EnrollmentIterator {
	return &EnrollmentIterator{values: values}
}

// Next advances the iterator and reports whether a value is available.
func (it *EnrollmentIterator) Next() bool {
	if it == nil {
		return false
	}
	if it.next >= len(it.values) {
		it.current = nil
		return false
	}
	it.current = it.values[it.next]
	it.values[it.next] = nil
	it.next++
	return true
}

// Value returns the enrollment at the current position.
func (it *EnrollmentIterator) Value() Enrollment {
	return it.current
}

// Remaining returns how many values Next has yet to produce.
func (it *EnrollmentIterator) Remaining() int {
	if it == nil {
		return 0
	}
	return len(it.values) - it.next
}

// Collect drains the iterator into a slice.
func (it *EnrollmentIterator) Collect() []Enrollment {
	out := make([]Enrollment, 0, it.Remaining())
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}
