package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/z"
)

// MessageFormatter renders a constraint for a reader of
// NotSatisfiable errors.
type MessageFormatter func(constraint Constraint, subject Identifier) string

type userFriendly struct {
	Constraint
	format MessageFormatter
}

func (constraint userFriendly) String(subject Identifier) string {
	return constraint.format(constraint.Constraint, subject)
}

// UserFriendly wraps c so that it is described by format.
func UserFriendly(c Constraint, format MessageFormatter) Constraint {
	return userFriendly{Constraint: c, format: format}
}

// Describe wraps c with a fixed message.
func Describe(c Constraint, message string) Constraint {
	return UserFriendly(c, func(Constraint, Identifier) string {
		return message
	})
}

type mandatory struct{}

func (constraint mandatory) String(subject Identifier) string {
	return fmt.Sprintf("%s is mandatory", subject)
}

func (constraint mandatory) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject)
}

func (constraint mandatory) Anchor() bool {
	return true
}

// Mandatory returns a Constraint that will permit only solutions that
// contain a particular Variable.
func Mandatory() Constraint {
	return mandatory{}
}

type prohibited struct{}

func (constraint prohibited) String(subject Identifier) string {
	return fmt.Sprintf("%s is prohibited", subject)
}

func (constraint prohibited) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject).Not()
}

func (constraint prohibited) Anchor() bool {
	return false
}

// Prohibited returns a Constraint that will reject any solution that
// contains a particular Variable.
func Prohibited() Constraint {
	return prohibited{}
}

type dependency []Identifier

func (constraint dependency) String(subject Identifier) string {
	if len(constraint) == 0 {
		return fmt.Sprintf("%s has a dependency without any candidates to satisfy it", subject)
	}
	s := make([]string, len(constraint))
	for i, each := range constraint {
		s[i] = string(each)
	}
	return fmt.Sprintf("%s requires at least one of %s", subject, strings.Join(s, ", "))
}

func (constraint dependency) Apply(lm LitMapping, subject Identifier) z.Lit {
	m := lm.LitOf(subject).Not()
	for _, each := range constraint {
		m = lm.LogicCircuit().Or(m, lm.LitOf(each))
	}
	return m
}

func (constraint dependency) Anchor() bool {
	return false
}

// Dependency returns a Constraint that will only permit solutions
// containing a given Variable on the condition that at least one
// of the Variables identified by the given Identifiers also
// appears in the solution.
func Dependency(ids ...Identifier) Constraint {
	return dependency(ids)
}

type conflict Identifier

func (constraint conflict) String(subject Identifier) string {
	return fmt.Sprintf("%s conflicts with %s", subject, Identifier(constraint))
}

func (constraint conflict) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LogicCircuit().Or(lm.LitOf(subject).Not(), lm.LitOf(Identifier(constraint)).Not())
}

func (constraint conflict) Anchor() bool {
	return false
}

// Conflict returns a Constraint that will permit solutions containing
// either the constrained Variable, the Variable identified by
// the given Identifier, or neither, but not both.
func Conflict(id Identifier) Constraint {
	return conflict(id)
}

type atMost struct {
	ids []Identifier
	n   int
}

func (constraint atMost) String(subject Identifier) string {
	s := make([]string, len(constraint.ids))
	for i, each := range constraint.ids {
		s[i] = string(each)
	}
	return fmt.Sprintf("%s permits at most %d of %s", subject, constraint.n, strings.Join(s, ", "))
}

// Apply returns z.LitNull when the constraint cannot be violated.
func (constraint atMost) Apply(lm LitMapping, _ Identifier) z.Lit {
	if len(constraint.ids) <= constraint.n {
		return z.LitNull
	}
	ms := make([]z.Lit, len(constraint.ids))
	for i, each := range constraint.ids {
		ms[i] = lm.LitOf(each)
	}
	return lm.LogicCircuit().CardSort(ms).Leq(constraint.n)
}

func (constraint atMost) Anchor() bool {
	return false
}

// AtMost returns a Constraint that forbids solutions that contain
// more than n of the Variables identified by the given
// Identifiers.
func AtMost(n int, ids ...Identifier) Constraint {
	return atMost{ids: ids, n: n}
}
