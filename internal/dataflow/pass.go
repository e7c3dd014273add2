package dataflow

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ssaflow/internal/domain"
	"ssaflow/internal/ir"
)

// Pass drives an Analysis over every function in a program and renders a
// "BC:/MeetOp:/Instruction:" trace, translating the raw bit masks back to
// the domain elements they stand for. The analyses never mutate the IR;
// this trace is their only observable output.
type Pass[T comparable] struct {
	Analysis Analysis[T]
	Name     string
}

// Run executes the analysis over prog and returns its printable trace
// alongside the raw per-function results, keyed by function name.
func (p *Pass[T]) Run(prog *ir.Program) (string, map[string]*Result[T]) {
	fw := NewFramework[T](p.Analysis)
	results := make(map[string]*Result[T], len(prog.Functions))
	var out strings.Builder

	fmt.Fprintf(&out, "==== %s (%s) ====\n", p.Name, p.Analysis.Direction())
	for _, fn := range prog.Functions {
		result := fw.Run(fn)
		results[fn.Name] = result
		p.renderFunction(&out, fn, result)
	}
	return out.String(), results
}

func (p *Pass[T]) renderFunction(out *strings.Builder, fn *ir.Function, result *Result[T]) {
	for _, bb := range fn.Blocks {
		insts := blockInstructions(bb)
		neighbours := neighboursOf(bb, p.Analysis.Direction())
		if len(neighbours) == 0 {
			fmt.Fprintf(out, "BC:\t%s\n", p.renderMask(result.Domain, p.Analysis.BC(result.Domain)))
		} else {
			neighbourStates := make(map[*ir.BasicBlock]*domain.BitVector, len(neighbours))
			for _, n := range neighbours {
				var edgeInst ir.Instruction
				if p.Analysis.Direction() == Forward {
					edgeInst = lastInstruction(n)
				} else {
					edgeInst = firstInstruction(n)
				}
				if edgeInst != nil {
					neighbourStates[n] = result.At(edgeInst)
				}
			}
			fmt.Fprintf(out, "MeetOp:\t%s\n", p.renderMask(result.Domain, p.Analysis.Meet(bb, neighbourStates, result.Domain)))
		}
		for _, inst := range insts {
			fmt.Fprintf(out, "Instruction: %s\n", ir.InstructionString(inst))
			fmt.Fprintf(out, "\t%s\n", p.renderMask(result.Domain, result.At(inst)))
		}
	}
}

// PipelinePass adapts Pass to ir.OptimizationPass, writing the rendered
// trace to Out (nil means os.Stdout). The analyses never change the IR,
// so Apply always reports false.
type PipelinePass[T comparable] struct {
	Pass *Pass[T]
	Out  io.Writer
}

func (p *PipelinePass[T]) Name() string { return p.Pass.Name }

func (p *PipelinePass[T]) Description() string {
	return fmt.Sprintf("%s dataflow analysis; prints per-instruction states, never mutates", p.Pass.Analysis.Direction())
}

func (p *PipelinePass[T]) Apply(prog *ir.Program) bool {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	trace, _ := p.Pass.Run(prog)
	io.WriteString(out, trace)
	return false
}

// renderMask prints {elem1,elem2,...} for every domain element whose bit
// is set in mask.
func (p *Pass[T]) renderMask(d *domain.Set[T], mask *domain.BitVector) string {
	var names []string
	for i, elem := range d.Elements() {
		if mask.Test(i) {
			names = append(names, fmt.Sprintf("%v", elem))
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}
