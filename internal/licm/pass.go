package licm

import (
	"fmt"
	"io"
	"os"
	"sort"

	"ssaflow/internal/cfganalysis"
	"ssaflow/internal/diag"
	"ssaflow/internal/ir"
)

// Report writes the observable outcome of one Run: the invariant count,
// the hoisted count, and each hoisted instruction in hoist order.
func (r Result) Report(w io.Writer) {
	fmt.Fprintf(w, "Invariants marked: %d\n", r.Invariants)
	fmt.Fprintf(w, "Instructions hoisted: %d\n", len(r.Hoisted))
	for _, inst := range r.Hoisted {
		fmt.Fprintf(w, "  hoisted: %s\n", ir.InstructionString(inst))
	}
}

// PipelinePass adapts loop-invariant code motion to ir.OptimizationPass:
// for every function it builds the dominator tree and loop forest, then
// runs code motion over each loop, innermost loops first, so a value
// hoisted out of a nested loop can be hoisted again by the enclosing one.
type PipelinePass struct {
	Out io.Writer // report sink; nil means os.Stdout
}

func (p *PipelinePass) Name() string { return "Loop-Invariant Code Motion" }

func (p *PipelinePass) Description() string {
	return "moves instructions whose value does not vary across iterations to the loop pre-header"
}

func (p *PipelinePass) Apply(prog *ir.Program) bool {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	reporter := diag.NewReporter(out)

	changed := false
	for _, fn := range prog.Functions {
		dom := cfganalysis.BuildDominatorTree(fn)
		loops := cfganalysis.FindLoops(fn, dom)
		if len(loops) == 0 {
			continue
		}
		sort.SliceStable(loops, func(i, j int) bool {
			return len(loops[i].Blocks) < len(loops[j].Blocks)
		})

		pass := NewPass(dom, loops)
		hoisted := 0
		for _, l := range loops {
			result := pass.Run(l)
			result.Report(out)
			hoisted += len(result.Hoisted)
			changed = changed || result.Changed
		}
		if hoisted > 0 {
			reporter.Successf("✅ %s: %d instructions hoisted", fn.Name, hoisted)
		}
	}
	return changed
}
