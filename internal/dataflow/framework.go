package dataflow

import (
	"ssaflow/internal/diag"
	"ssaflow/internal/domain"
	"ssaflow/internal/ir"
)

// Framework runs an Analysis to a fixed point over a function. It keeps
// one bit vector per instruction holding the state *after* that
// instruction's transfer function for a forward analysis, or the state
// *before* it for a backward one — so an instruction's own map entry
// always means "the value the framework computed here", regardless of
// direction.
//
// Termination requires the analysis transfer function to be monotone on
// the subset lattice; the framework does not detect a non-monotone
// transfer and will loop forever on one.
type Framework[T comparable] struct {
	analysis Analysis[T]
}

func NewFramework[T comparable](a Analysis[T]) *Framework[T] {
	return &Framework[T]{analysis: a}
}

// Result is the outcome of running an analysis to completion: the domain it
// was computed over and the per-instruction bit vectors.
type Result[T comparable] struct {
	Domain    *domain.Set[T]
	Direction Direction
	instBV    map[ir.Instruction]*domain.BitVector
}

// At returns the bit vector Framework computed for inst (its IN state for a
// backward analysis, its OUT state for a forward one).
func (r *Result[T]) At(inst ir.Instruction) *domain.BitVector {
	return r.instBV[inst]
}

// blockInstructions returns bb's instructions in program order, including
// its terminator.
func blockInstructions(bb *ir.BasicBlock) []ir.Instruction {
	insts := make([]ir.Instruction, 0, len(bb.Instructions)+1)
	insts = append(insts, bb.Instructions...)
	if bb.Terminator != nil {
		insts = append(insts, bb.Terminator)
	}
	return insts
}

func firstInstruction(bb *ir.BasicBlock) ir.Instruction {
	insts := blockInstructions(bb)
	if len(insts) == 0 {
		return nil
	}
	return insts[0]
}

func lastInstruction(bb *ir.BasicBlock) ir.Instruction {
	insts := blockInstructions(bb)
	if len(insts) == 0 {
		return nil
	}
	return insts[len(insts)-1]
}

// neighboursOf returns bb's meet operands: predecessors for a forward
// analysis, successors for a backward one.
func neighboursOf(bb *ir.BasicBlock, dir Direction) []*ir.BasicBlock {
	if dir == Forward {
		return bb.Predecessors
	}
	return bb.Successors
}

// Run computes the fixed point of analysis a over fn.
func (f *Framework[T]) Run(fn *ir.Function) *Result[T] {
	a := f.analysis
	d := a.BuildDomain(fn)
	ic := a.IC(d)

	instBV := make(map[ir.Instruction]*domain.BitVector)
	blockOrder := make([]*ir.BasicBlock, len(fn.Blocks))
	copy(blockOrder, fn.Blocks)
	if a.Direction() == Backward {
		for i, j := 0, len(blockOrder)-1; i < j; i, j = i+1, j-1 {
			blockOrder[i], blockOrder[j] = blockOrder[j], blockOrder[i]
		}
	}
	for _, bb := range blockOrder {
		for _, inst := range blockInstructions(bb) {
			instBV[inst] = ic
		}
	}

	for {
		changed := false
		for _, bb := range blockOrder {
			var boundary *domain.BitVector
			neighbours := neighboursOf(bb, a.Direction())
			if len(neighbours) == 0 {
				// No meet operands: bb is the boundary (entry for a
				// forward analysis, an exit block for a backward one).
				boundary = a.BC(d)
			} else {
				neighbourStates := make(map[*ir.BasicBlock]*domain.BitVector, len(neighbours))
				for _, n := range neighbours {
					var edgeInst ir.Instruction
					if a.Direction() == Forward {
						edgeInst = lastInstruction(n)
					} else {
						edgeInst = firstInstruction(n)
					}
					if edgeInst == nil {
						neighbourStates[n] = ic
					} else {
						neighbourStates[n] = instBV[edgeInst]
					}
				}
				boundary = a.Meet(bb, neighbourStates, d)
			}

			input := boundary
			insts := blockInstructions(bb)
			if a.Direction() == Backward {
				for i, j := 0, len(insts)-1; i < j; i, j = i+1, j-1 {
					insts[i], insts[j] = insts[j], insts[i]
				}
			}
			for _, inst := range insts {
				prev, ok := instBV[inst]
				if !ok {
					// Every instruction was seeded with IC before the first
					// round, so a missing entry means the function was
					// mutated mid-analysis.
					diag.ICE("dataflow", "instruction %q has no bit-vector map entry", ir.InstructionString(inst))
				}
				out := a.Transfer(inst, input, d)
				if !out.Equal(prev) {
					changed = true
				}
				instBV[inst] = out
				input = out
			}
		}
		if !changed {
			break
		}
	}

	return &Result[T]{Domain: d, Direction: a.Direction(), instBV: instBV}
}
