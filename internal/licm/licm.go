// Package licm implements loop-invariant code motion: an iterative
// invariance-marking sweep followed by a hoisting pass that moves (never
// clones) qualifying instructions to the loop's pre-header.
package licm

import (
	"ssaflow/internal/cfganalysis"
	"ssaflow/internal/ir"
)

// Pass runs loop-invariant code motion over one loop at a time. Callers
// invoke Run once per loop, innermost loops first, so that an instruction
// hoisted out of a nested loop can be hoisted again by the enclosing one.
type Pass struct {
	Dominators *cfganalysis.DominatorTree
	innermost  map[*ir.BasicBlock]*cfganalysis.Loop
}

// NewPass builds a Pass that can run over any of loops, using dom for
// dominance queries and loops (all natural loops in the function, as
// returned by cfganalysis.FindLoops) to resolve each block's innermost
// enclosing loop. Instructions owned by a nested loop are skipped; they
// belong to that loop's own invocation.
func NewPass(dom *cfganalysis.DominatorTree, loops []*cfganalysis.Loop) *Pass {
	innermost := make(map[*ir.BasicBlock]*cfganalysis.Loop)
	for _, loop := range loops {
		for bb := range loop.Blocks {
			cur, ok := innermost[bb]
			if !ok || len(loop.Blocks) < len(cur.Blocks) {
				innermost[bb] = loop
			}
		}
	}
	return &Pass{Dominators: dom, innermost: innermost}
}

// Result reports what Run did: the invariant count, the hoisted count,
// and the hoisted instructions themselves in hoist order.
type Result struct {
	Invariants int
	Hoisted    []ir.Instruction
	Changed    bool
}

// Run performs invariance detection and hoisting over a single loop L.
func (p *Pass) Run(l *cfganalysis.Loop) Result {
	if l.Preheader == nil {
		return Result{}
	}

	marked := p.findInvariants(l)

	var hoisted []ir.Instruction
	changed := false
	for _, inst := range marked {
		if p.isDomExitBlocks(inst, l) && assignOnce(inst) && oneWayToReferences(inst) {
			moveToPreheader(inst, l)
			hoisted = append(hoisted, inst)
			changed = true
		}
	}

	return Result{Invariants: len(marked), Hoisted: hoisted, Changed: changed}
}

// findInvariants keeps scanning L's own blocks (skipping nested-loop
// instructions, left for their own invocation) until a full sweep marks
// nothing new. The returned mark order is a valid topological order of the
// data dependencies among the marked instructions, which the hoisting step
// relies on: an operand marked invariant is always hoisted before its user.
func (p *Pass) findInvariants(l *cfganalysis.Loop) []ir.Instruction {
	var marked []ir.Instruction
	isMarked := make(map[ir.Instruction]bool)

	changed := true
	for changed {
		changed = false
		for bb := range l.Blocks {
			if p.innermost[bb] != l {
				continue
			}
			for _, inst := range blockInstructions(bb) {
				if isMarked[inst] {
					continue
				}
				if p.isInvariant(inst, l, isMarked) {
					isMarked[inst] = true
					marked = append(marked, inst)
					changed = true
				}
			}
		}
	}
	return marked
}

// isInvariant reports whether inst computes the same value on every
// iteration of l: it must be safe to speculatively execute, must not read
// memory, must not be a landing pad, and every operand must be a literal
// constant, a function parameter, a value defined outside the loop, or an
// instruction already marked invariant.
func (p *Pass) isInvariant(inst ir.Instruction, l *cfganalysis.Loop, isMarked map[ir.Instruction]bool) bool {
	if !inst.IsSafeToSpeculate() {
		return false
	}
	if inst.MayReadMemory() {
		return false
	}
	if inst.IsLandingPad() {
		return false
	}

	for _, operand := range inst.GetOperands() {
		if operand == nil {
			continue
		}
		if operand.IsParam {
			continue
		}
		if operand.DefInst == nil {
			continue // literal constant
		}
		if !l.Contains(operand.DefBlock) {
			continue
		}
		if isMarked[operand.DefInst] {
			continue
		}
		return false
	}
	return true
}

// isDomExitBlocks reports whether inst's parent block dominates every exit
// block of L, so inst executes on all paths that leave the loop and moving
// it cannot introduce a computation the original program skipped.
func (p *Pass) isDomExitBlocks(inst ir.Instruction, l *cfganalysis.Loop) bool {
	block := inst.GetBlock()
	for _, exit := range l.ExitBlocks() {
		if !p.Dominators.Dominates(block, exit) {
			return false
		}
	}
	return true
}

// assignOnce reports whether inst is the only assignment to its result
// inside the loop. Trivially true under SSA (every instruction defines its
// result exactly once); kept as an explicit predicate so the pass could be
// adapted to a non-SSA IR.
func assignOnce(ir.Instruction) bool { return true }

// oneWayToReferences reports whether every in-loop use of inst's result is
// reached only from inst. Trivially true under SSA, kept explicit for the
// same reason as assignOnce.
func oneWayToReferences(ir.Instruction) bool { return true }

// moveToPreheader moves inst to immediately before the pre-header's
// terminator, unlinking it from its current block. The move preserves
// inst's SSA identity; every use keeps observing the same value.
func moveToPreheader(inst ir.Instruction, l *cfganalysis.Loop) {
	ir.MoveBefore(inst, l.Preheader.Terminator)
}

func blockInstructions(bb *ir.BasicBlock) []ir.Instruction {
	insts := make([]ir.Instruction, 0, len(bb.Instructions))
	insts = append(insts, bb.Instructions...)
	return insts
}
