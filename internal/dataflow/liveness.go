package dataflow

import (
	"ssaflow/internal/domain"
	"ssaflow/internal/ir"
)

// Liveness instantiates the framework for the classic liveness problem:
// a backward analysis whose domain is every SSA
// value used as an operand somewhere in the function, meet is union (a
// variable is live out of a block if it is live into any successor), IC
// and BC are both empty, and the transfer function is
// f(x) = use ∪ (x - def).
type Liveness struct{}

func (Liveness) Direction() Direction { return Backward }

func (Liveness) BuildDomain(fn *ir.Function) *domain.Set[domain.Variable] {
	var vars []domain.Variable
	for _, bb := range fn.Blocks {
		for _, inst := range blockInstructions(bb) {
			for _, operand := range inst.GetOperands() {
				if operand == nil {
					continue
				}
				if operand.IsParam || operand.DefInst != nil {
					vars = append(vars, domain.NewVariable(operand))
				}
			}
		}
	}
	return domain.NewSet(vars)
}

func (Liveness) IC(d *domain.Set[domain.Variable]) *domain.BitVector {
	return domain.NewBitVector(d.Len())
}

func (Liveness) BC(d *domain.Set[domain.Variable]) *domain.BitVector {
	return domain.NewBitVector(d.Len())
}

// Meet is an OR/union over the successors' IN vectors, with a phi-edge
// adjustment: a phi input in succ that arrives from a predecessor
// other than bb is not actually live across the bb->succ edge (the phi
// only reads the value bound to the edge it's taken), so that bit is
// cleared from succ's contribution before it is folded into the union.
func (Liveness) Meet(bb *ir.BasicBlock, neighbours map[*ir.BasicBlock]*domain.BitVector, d *domain.Set[domain.Variable]) *domain.BitVector {
	result := domain.NewBitVector(d.Len())
	for succ, bv := range neighbours {
		adjusted := bv
		for _, inst := range succ.Instructions {
			phi, ok := inst.(*ir.PhiInstruction)
			if !ok {
				continue
			}
			for predBlock, incoming := range phi.Inputs {
				if predBlock == bb || incoming == nil {
					continue
				}
				if pos, found := d.PositionOf(domain.NewVariable(incoming)); found {
					adjusted = adjusted.Clear(pos)
				}
			}
		}
		result = result.Union(adjusted)
	}
	return result
}

// Transfer computes f(x) = use ∪ (x - def).
func (Liveness) Transfer(inst ir.Instruction, in *domain.BitVector, d *domain.Set[domain.Variable]) *domain.BitVector {
	out := in.Clone()

	if result := inst.GetResult(); result != nil {
		if pos, found := d.PositionOf(domain.NewVariable(result)); found {
			out = out.Clear(pos)
		}
	}

	for _, operand := range inst.GetOperands() {
		if operand == nil {
			continue
		}
		if pos, found := d.PositionOf(domain.NewVariable(operand)); found {
			out = out.Set(pos)
		}
	}

	return out
}
