// Package peephole implements the local peephole optimiser: an intra-block
// rewriter that performs constant folding, algebraic identity elimination,
// and strength reduction on binary operators, replacing each rewritten
// instruction's uses with the simpler value and erasing the dead original.
package peephole

import (
	"fmt"
	"io"
	"os"

	"ssaflow/internal/ir"
)

// Pass rewrites binary operators within basic blocks. Run performs three
// sweeps in a fixed order — constant folding, algebraic identities,
// strength reduction — each doing its own full block walk and dead
// instruction cleanup before the next starts. Counters accumulate across
// functions until the next Apply.
type Pass struct {
	// Trace, when non-nil, receives one "[CF] ..."/"[AL] ..."/"[ST] ..."
	// tagged line per individual rewrite, before the counter summary.
	Trace io.Writer

	out     io.Writer
	builder *ir.Builder

	algebraicCount    int
	constantFoldCount int
	strengthCount     int
}

// NewPass creates the peephole pass. builder allocates the replacement
// constants and shift instructions; out receives the per-function counter
// summary (nil means os.Stdout).
func NewPass(builder *ir.Builder, out io.Writer) *Pass {
	if out == nil {
		out = os.Stdout
	}
	return &Pass{out: out, builder: builder}
}

func (p *Pass) Name() string { return "Local Peephole" }

func (p *Pass) Description() string {
	return "constant folding, algebraic identities, strength reduction within basic blocks"
}

// Apply implements ir.OptimizationPass: it zeroes the counters, then runs
// the rewriter over every function in prog.
func (p *Pass) Apply(prog *ir.Program) bool {
	p.algebraicCount = 0
	p.constantFoldCount = 0
	p.strengthCount = 0

	changed := false
	for _, fn := range prog.Functions {
		if p.Run(fn) {
			changed = true
		}
	}
	return changed
}

// Run rewrites fn and emits the cumulative counter summary.
func (p *Pass) Run(fn *ir.Function) bool {
	changed := p.constantFold(fn)
	changed = p.algebraic(fn) || changed
	changed = p.strength(fn) || changed

	fmt.Fprintf(p.out, "Transformations applied:\n")
	fmt.Fprintf(p.out, "  Algebraic identities: %d\n", p.algebraicCount)
	fmt.Fprintf(p.out, "  Constant folding: %d\n", p.constantFoldCount)
	fmt.Fprintf(p.out, "  Strength reduction: %d\n", p.strengthCount)
	return changed
}

// constOf returns the literal an operand carries, when its definition is a
// constant materialisation.
func constOf(v *ir.Value) (int64, bool) {
	if v == nil {
		return 0, false
	}
	if c, ok := v.DefInst.(*ir.ConstantInstruction); ok {
		return c.Value, true
	}
	return 0, false
}

// literal materialises value as a fresh constant placed immediately before
// the instruction it is about to replace.
func (p *Pass) literal(before *ir.BinaryInstruction, value int64) *ir.Value {
	lit := p.builder.Const(before.Block, fmt.Sprintf("c%d", value), value, before.Result.Type)
	ir.MoveBefore(lit, before)
	return lit.Result
}

func (p *Pass) trace(tag string, inst ir.Instruction) {
	if p.Trace != nil {
		fmt.Fprintf(p.Trace, "[%s] %s\n", tag, ir.InstructionString(inst))
	}
}

// deleteDead erases every rewritten instruction whose result no longer has
// uses. An instruction something still reads stays put.
func deleteDead(insts []ir.Instruction) {
	for _, inst := range insts {
		if result := inst.GetResult(); result != nil && len(result.Uses) > 0 {
			continue
		}
		ir.EraseFromParent(inst)
	}
}

// binaries snapshots the binary instructions of bb so the sweep can insert
// replacements without disturbing iteration.
func binaries(bb *ir.BasicBlock) []*ir.BinaryInstruction {
	var bins []*ir.BinaryInstruction
	for _, inst := range bb.Instructions {
		if bin, ok := inst.(*ir.BinaryInstruction); ok {
			bins = append(bins, bin)
		}
	}
	return bins
}

// constantFold evaluates binary operators whose operands are both literal
// constants. Division by a zero literal is never folded; the instruction
// is left alone.
func (p *Pass) constantFold(fn *ir.Function) bool {
	var dead []ir.Instruction
	for _, bb := range fn.Blocks {
		for _, bin := range binaries(bb) {
			l, lok := constOf(bin.Left)
			r, rok := constOf(bin.Right)
			if !lok || !rok {
				continue
			}
			var folded int64
			switch bin.Op {
			case "add":
				folded = l + r
			case "sub":
				folded = l - r
			case "mul":
				folded = l * r
			case "sdiv":
				if r == 0 {
					continue
				}
				folded = l / r
			default:
				continue
			}
			ir.ReplaceAllUsesWith(bin, p.literal(bin, folded))
			p.trace("CF", bin)
			p.constantFoldCount++
			dead = append(dead, bin)
		}
	}
	deleteDead(dead)
	return len(dead) > 0
}

// algebraic eliminates identity operations: x+0, 0+x, x*1, 1*x, x/1
// become x; x-x becomes 0; x/x becomes 1 (operand equality implies the
// divisor is whatever x is, so a separate zero guard is the caller's
// concern, as with any division already in the program).
func (p *Pass) algebraic(fn *ir.Function) bool {
	var dead []ir.Instruction
	for _, bb := range fn.Blocks {
		for _, bin := range binaries(bb) {
			l, lok := constOf(bin.Left)
			r, rok := constOf(bin.Right)

			var replacement *ir.Value
			switch bin.Op {
			case "add":
				if lok && l == 0 {
					replacement = bin.Right
				} else if rok && r == 0 {
					replacement = bin.Left
				}
			case "sub":
				if bin.Left == bin.Right {
					replacement = p.literal(bin, 0)
				}
			case "mul":
				if lok && l == 1 {
					replacement = bin.Right
				} else if rok && r == 1 {
					replacement = bin.Left
				}
			case "sdiv":
				if rok && r == 1 {
					replacement = bin.Left
				} else if bin.Left == bin.Right {
					replacement = p.literal(bin, 1)
				}
			}
			if replacement == nil {
				continue
			}
			ir.ReplaceAllUsesWith(bin, replacement)
			p.trace("AL", bin)
			p.algebraicCount++
			dead = append(dead, bin)
		}
	}
	deleteDead(dead)
	return len(dead) > 0
}

// strength rewrites multiplication and signed division by a power-of-two
// literal into shifts: 2^n * x and x * 2^n become x << n, x / 2^n becomes
// a logical right shift x >>> n.
func (p *Pass) strength(fn *ir.Function) bool {
	var dead []ir.Instruction
	for _, bb := range fn.Blocks {
		for _, bin := range binaries(bb) {
			l, lok := constOf(bin.Left)
			r, rok := constOf(bin.Right)

			var shiftOp string
			var operand *ir.Value
			shift := -1
			switch bin.Op {
			case "mul":
				if lok {
					if n := shiftAmount(l); n >= 0 {
						shiftOp, operand, shift = "shl", bin.Right, n
					}
				}
				if shift < 0 && rok {
					if n := shiftAmount(r); n >= 0 {
						shiftOp, operand, shift = "shl", bin.Left, n
					}
				}
			case "sdiv":
				if rok {
					if n := shiftAmount(r); n >= 0 {
						shiftOp, operand, shift = "lshr", bin.Left, n
					}
				}
			}
			if shift < 0 {
				continue
			}

			amount := p.literal(bin, int64(shift))
			repl := p.builder.Binary(bb, bin.Result.Name+".shift", shiftOp, operand, amount, bin.Result.Type)
			ir.MoveBefore(repl, bin)
			ir.ReplaceAllUsesWith(bin, repl.Result)
			p.trace("ST", bin)
			p.strengthCount++
			dead = append(dead, bin)
		}
	}
	deleteDead(dead)
	return len(dead) > 0
}

// shiftAmount returns n when x == 2^n for a positive x, -1 otherwise.
func shiftAmount(x int64) int {
	if x <= 0 || x&(-x) != x {
		return -1
	}
	n := 0
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}
