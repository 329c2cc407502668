package model

import (
	"math/rand"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// usage counts the space taken by the enrollments of every request
// other than the one being generated for.
type usage struct {
	courses      map[*Course]int
	configs      map[*Config]int
	sections     map[*Section]int
	reservations map[*Reservation]int
}

func newUsage(a sectioning.Assignment, exclude sectioning.Identifier) *usage {
	u := &usage{
		courses:      map[*Course]int{},
		configs:      map[*Config]int{},
		sections:     map[*Section]int{},
		reservations: map[*Reservation]int{},
	}
	for _, v := range a.Assigned() {
		e, ok := v.(*Enrollment)
		if !ok || e.course == nil || e.request.Identifier() == exclude {
			continue
		}
		u.courses[e.course]++
		u.configs[e.config]++
		for _, s := range e.sections {
			u.sections[s]++
		}
		if e.reservation != nil {
			u.reservations[e.reservation]++
		}
	}
	return u
}

// generator walks configs and subparts depth first, one section per
// subpart.
type generator struct {
	request *CourseRequest
	usage   *usage
	limit   int
	random  bool
	out     []sectioning.Enrollment

	// reservations applicable to the student that still have space,
	// and whether the student must use one, per offering
	available map[*Offering][]*Reservation
	mustUse   map[*Offering]bool
}

func newGenerator(r *CourseRequest, a sectioning.Assignment, limit int, random bool) *generator {
	g := &generator{
		request:   r,
		usage:     newUsage(a, r.id),
		limit:     limit,
		random:    random,
		available: map[*Offering][]*Reservation{},
		mustUse:   map[*Offering]bool{},
	}
	for _, course := range r.courses {
		offering := course.Offering
		if _, done := g.available[offering]; done {
			continue
		}
		available := []*Reservation{}
		for _, res := range offering.Reservations {
			if !res.AppliesTo(r.student.ID) {
				continue
			}
			if res.MustBeUsed {
				g.mustUse[offering] = true
			}
			if hasRoom(res.Limit, g.usage.reservations[res]) {
				available = append(available, res)
			}
		}
		g.available[offering] = available
	}
	return g
}

func (r *CourseRequest) generate(a sectioning.Assignment, limit int, random bool) ([]sectioning.Enrollment, error) {
	if a == nil {
		return nil, sectioning.ErrNoAssignment
	}
	g := newGenerator(r, a, limit, random)
	for idx, course := range r.courses {
		if g.done() {
			break
		}
		configs := course.Offering.Configs
		if random {
			configs = shuffled(configs)
		}
		for _, config := range configs {
			if g.done() {
				break
			}
			g.selectSections(course, idx, config, make([]*Section, 0, len(config.Subparts)))
		}
	}
	if g.out == nil {
		g.out = []sectioning.Enrollment{}
	}
	return g.out, nil
}

func (g *generator) done() bool {
	return g.limit > 0 && len(g.out) >= g.limit
}

func (g *generator) selectSections(course *Course, idx int, config *Config, chosen []*Section) {
	if g.done() {
		return
	}
	depth := len(chosen)
	if depth == len(config.Subparts) {
		if res, ok := g.admissible(course, config, chosen); ok {
			sections := append([]*Section(nil), chosen...)
			g.out = append(g.out, newCourseEnrollment(g.request, course, idx, config, sections, res))
		}
		return
	}

	subpart := config.Subparts[depth]
	var parent *Section
	if subpart.Parent != nil {
		parent = chosenFor(chosen, subpart.Parent)
	}
	sections := subpart.Sections
	if g.random {
		sections = shuffled(sections)
	}
	for _, s := range sections {
		if g.done() {
			return
		}
		if parent != nil && s.Parent != nil && s.Parent != parent {
			continue
		}
		if overlapsAny(s, chosen) || !g.mayUse(course.Offering, s) {
			continue
		}
		g.selectSections(course, idx, config, append(chosen, s))
	}
}

// mayUse prunes sections that no complete enrollment could contain.
func (g *generator) mayUse(offering *Offering, s *Section) bool {
	if !g.mustUse[offering] && hasRoom(s.Limit, g.usage.sections[s]) {
		return true
	}
	for _, res := range g.available[offering] {
		if res.Allows(s) {
			return true
		}
	}
	return false
}

// reserved reports whether res applies to the student and has space.
func (g *generator) reserved(offering *Offering, res *Reservation) bool {
	for _, available := range g.available[offering] {
		if available == res {
			return true
		}
	}
	return false
}

// admissible decides whether a complete section combination has space,
// and returns the reservation it would use.
func (g *generator) admissible(course *Course, config *Config, sections []*Section) (*Reservation, bool) {
	offering := course.Offering
	for _, res := range g.available[offering] {
		if res.Covers(sections) {
			return res, true
		}
	}
	if g.mustUse[offering] {
		return nil, false
	}
	if !hasRoom(course.Limit, g.usage.courses[course]) || !hasRoom(config.Limit, g.usage.configs[config]) {
		return nil, false
	}
	for _, s := range sections {
		if !hasRoom(s.Limit, g.usage.sections[s]) {
			return nil, false
		}
	}
	return nil, true
}

func chosenFor(chosen []*Section, subpart *Subpart) *Section {
	for _, s := range chosen {
		if s.Subpart == subpart {
			return s
		}
	}
	return nil
}

func overlapsAny(s *Section, chosen []*Section) bool {
	for _, c := range chosen {
		if s.Overlaps(c) {
			return true
		}
	}
	return false
}

func shuffled[T any](in []T) []T {
	out := append([]T(nil), in...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
