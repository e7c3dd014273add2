package dataflow

import (
	"ssaflow/internal/domain"
	"ssaflow/internal/ir"
)

// AvailableExpressions instantiates the framework for the Available
// Expressions problem: a forward analysis whose domain is every binary
// expression computed in the function, meet is
// intersection (an expression is available only if every path computes it
// and nothing since has redefined an operand), IC is the universal set
// (optimistic: everything available until proven otherwise), BC is empty
// (nothing available on entry), and the transfer function is
// f(x) = gen ∪ (x - kill).
type AvailableExpressions struct{}

func (AvailableExpressions) Direction() Direction { return Forward }

func (AvailableExpressions) BuildDomain(fn *ir.Function) *domain.Set[domain.Expression] {
	var exprs []domain.Expression
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instructions {
			if bin, ok := inst.(*ir.BinaryInstruction); ok {
				exprs = append(exprs, domain.ExpressionOf(bin))
			}
		}
	}
	return domain.NewSet(exprs)
}

func (AvailableExpressions) IC(d *domain.Set[domain.Expression]) *domain.BitVector {
	return domain.NewFullBitVector(d.Len())
}

func (AvailableExpressions) BC(d *domain.Set[domain.Expression]) *domain.BitVector {
	return domain.NewBitVector(d.Len())
}

// Meet is an AND/intersection over the predecessors' OUT vectors. bb is
// unused — Available Expressions has no block-local adjustment, unlike
// Liveness's phi handling.
func (AvailableExpressions) Meet(_ *ir.BasicBlock, neighbours map[*ir.BasicBlock]*domain.BitVector, d *domain.Set[domain.Expression]) *domain.BitVector {
	result := domain.NewFullBitVector(d.Len())
	for _, bv := range neighbours {
		result = result.Intersect(bv)
	}
	return result
}

// Transfer computes f(x) = gen ∪ (x - kill): set this instruction's own
// expression available if it is a binary op in the domain, then clear any
// expression that reads the value this instruction redefines. Under SSA
// the domain never contains an expression referencing its own result, so
// the gen-before-kill order is never observable.
func (AvailableExpressions) Transfer(inst ir.Instruction, in *domain.BitVector, d *domain.Set[domain.Expression]) *domain.BitVector {
	out := in.Clone()

	if bin, ok := inst.(*ir.BinaryInstruction); ok {
		if pos, found := d.PositionOf(domain.ExpressionOf(bin)); found {
			out = out.Set(pos)
		}
	}

	if result := inst.GetResult(); result != nil {
		for i, expr := range d.Elements() {
			if expr.References(result) {
				out = out.Clear(i)
			}
		}
	}

	return out
}
