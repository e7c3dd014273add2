package domain

import "ssaflow/internal/ir"

// Variable is the Liveness domain element: a single SSA value reference.
// Identity is pointer identity on the underlying *ir.Value, which is what
// makes Variable usable as a map key without any extra hashing.
type Variable struct {
	Value *ir.Value
}

func NewVariable(v *ir.Value) Variable { return Variable{Value: v} }

func (v Variable) String() string {
	return "[%" + v.Value.Name + "]"
}
