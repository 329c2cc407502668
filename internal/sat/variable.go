package sat

var _ Variable = &SimpleVariable{}

type SimpleVariable struct {
	id          Identifier
	constraints []Constraint
}

func (v *SimpleVariable) Identifier() Identifier {
	return v.id
}

func (v *SimpleVariable) Constraints() []Constraint {
	return v.constraints
}

// AddConstraint appends constraints while a problem is being encoded.
func (v *SimpleVariable) AddConstraint(constraints ...Constraint) {
	v.constraints = append(v.constraints, constraints...)
}

func NewSimpleVariable(id Identifier, constraints ...Constraint) *SimpleVariable {
	return &SimpleVariable{
		id:          id,
		constraints: constraints,
	}
}

// zeroVariable is returned by VariableOf in error cases.
type zeroVariable struct{}

var _ Variable = zeroVariable{}

func (zeroVariable) Identifier() Identifier {
	return ""
}

func (zeroVariable) Constraints() []Constraint {
	return nil
}
