package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssaflow/internal/cfganalysis"
	"ssaflow/internal/dataflow"
	"ssaflow/internal/domain"
	"ssaflow/internal/ir"
	"ssaflow/internal/licm"
	"ssaflow/internal/peephole"
)

func TestEndToEndAlgebraicIdentity(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", []*ir.Parameter{{Name: "x", Type: i32}}, i32)
	bb := b.NewBlock(fn, "entry")
	x := fn.Params[0].Value

	zero := b.Const(bb, "zero", 0, i32)
	t1 := b.Binary(bb, "t1", "add", x, zero.Result, i32)
	ret := b.Return(bb, t1.Result)

	var out strings.Builder
	peephole.NewPass(b, &out).Apply(prog)

	assert.Same(t, x, ret.Value, "all uses of t1 should read x")
	assert.NotContains(t, bb.Instructions, ir.Instruction(t1), "t1 should be removed")
	assert.Contains(t, out.String(), "Algebraic identities: 1")
}

func TestEndToEndConstantFold(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", nil, i32)
	bb := b.NewBlock(fn, "entry")

	c3 := b.Const(bb, "c3", 3, i32)
	c4 := b.Const(bb, "c4", 4, i32)
	t1 := b.Binary(bb, "t1", "mul", c3.Result, c4.Result, i32)
	ret := b.Return(bb, t1.Result)

	var out strings.Builder
	peephole.NewPass(b, &out).Apply(prog)

	folded, ok := ret.Value.DefInst.(*ir.ConstantInstruction)
	require.True(t, ok, "return should read a literal")
	assert.EqualValues(t, 12, folded.Value)
	assert.Contains(t, out.String(), "Constant folding: 1")
}

func TestEndToEndStrengthReduction(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", []*ir.Parameter{{Name: "x", Type: i32}}, i32)
	bb := b.NewBlock(fn, "entry")
	x := fn.Params[0].Value

	c8 := b.Const(bb, "c8", 8, i32)
	t1 := b.Binary(bb, "t1", "mul", x, c8.Result, i32)
	ret := b.Return(bb, t1.Result)

	var out strings.Builder
	peephole.NewPass(b, &out).Apply(prog)

	shl, ok := ret.Value.DefInst.(*ir.BinaryInstruction)
	require.True(t, ok)
	assert.Equal(t, "shl", shl.Op)
	amount, ok := shl.Right.DefInst.(*ir.ConstantInstruction)
	require.True(t, ok)
	assert.EqualValues(t, 3, amount.Value)
	assert.Contains(t, out.String(), "Strength reduction: 1")
}

func TestEndToEndAvailableExpressions(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", []*ir.Parameter{{Name: "a", Type: i32}, {Name: "b", Type: i32}}, i32)

	b1 := b.NewBlock(fn, "B1")
	b2 := b.NewBlock(fn, "B2")
	a := fn.Params[0].Value
	bv := fn.Params[1].Value

	b.Binary(b1, "e1", "add", a, bv, i32)
	b.Jump(b1, b2)
	e2 := b.Binary(b2, "e2", "add", a, bv, i32)
	b.Return(b2, e2.Result)

	fw := dataflow.NewFramework[domain.Expression](dataflow.AvailableExpressions{})
	result := fw.Run(fn)

	pos, found := result.Domain.PositionOf(domain.NewExpression("add", a, bv))
	require.True(t, found)
	assert.True(t, result.At(b1.Terminator).Test(pos),
		"a+b should be available flowing into B2, making the second computation redundant")
}

func TestEndToEndLivenessPhiAdjustment(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", nil, i32)

	entry := b.NewBlock(fn, "entry")
	left := b.NewBlock(fn, "left")
	right := b.NewBlock(fn, "right")
	merge := b.NewBlock(fn, "merge")

	cond := b.NewParamValue("cond", &ir.BoolType{})
	b.Branch(entry, cond, left, right)

	v := b.Const(left, "v", 1, i32)
	b.Jump(left, merge)
	other := b.Const(right, "other", 2, i32)
	b.Jump(right, merge)

	phi := b.Phi(merge, "p", i32, map[*ir.BasicBlock]*ir.Value{left: v.Result, right: other.Result})
	b.Return(merge, phi.Result)

	fw := dataflow.NewFramework[domain.Variable](dataflow.Liveness{})
	result := fw.Run(fn)

	pos, found := result.Domain.PositionOf(domain.NewVariable(v.Result))
	require.True(t, found)
	assert.False(t, result.At(right.Terminator).Test(pos),
		"v is only read along the left edge, so it must not be live out of the right arm")
}

func TestEndToEndLoopInvariantCodeMotion(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", nil, i32)

	entry := b.NewBlock(fn, "entry")
	preheader := b.NewBlock(fn, "preheader")
	header := b.NewBlock(fn, "header")
	body := b.NewBlock(fn, "body")
	exit := b.NewBlock(fn, "exit")

	c1 := b.Const(entry, "c1", 2, i32)
	c2 := b.Const(entry, "c2", 3, i32)
	b.Jump(entry, preheader)
	b.Jump(preheader, header)

	phi := b.Phi(header, "i", i32, map[*ir.BasicBlock]*ir.Value{})
	b.Jump(header, body)

	tInst := b.Binary(body, "t", "add", c1.Result, c2.Result, i32)
	b.Binary(body, "out", "mul", tInst.Result, phi.Result, i32)
	cond := b.NewParamValue("cond", &ir.BoolType{})
	b.Branch(body, cond, header, exit)
	b.Return(exit, nil)

	var out strings.Builder
	pass := &licm.PipelinePass{Out: &out}
	changed := pass.Apply(prog)

	require.True(t, changed)
	assert.Equal(t, preheader, tInst.Block, "t = c1 + c2 should now live in the preheader")
	assert.Contains(t, out.String(), "Instructions hoisted: 1")
	assert.Contains(t, out.String(), "hoisted: %t = add %c1, %c2")

	// SSA preservation: every definition still dominates each of its uses.
	dom := cfganalysis.BuildDominatorTree(fn)
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instructions {
			result := inst.GetResult()
			if result == nil {
				continue
			}
			for _, use := range result.Uses {
				userBlock := use.User.GetBlock()
				if userBlock == bb {
					continue
				}
				assert.True(t, dom.Dominates(bb, userBlock),
					"definition of %s must dominate its use in %s", result.Name, userBlock.Label)
			}
		}
	}
}

func TestEndToEndPipelineComposition(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	i32 := &ir.IntType{Bits: 32}
	fn := b.NewFunction(prog, "f", []*ir.Parameter{{Name: "x", Type: i32}}, i32)
	bb := b.NewBlock(fn, "entry")
	x := fn.Params[0].Value

	zero := b.Const(bb, "zero", 0, i32)
	t1 := b.Binary(bb, "t1", "add", x, zero.Result, i32)
	b.Return(bb, t1.Result)

	var sink strings.Builder
	pipeline := ir.NewOptimizationPipeline(&sink)
	pipeline.AddPass(peephole.NewPass(b, &sink))
	pipeline.AddPass(&dataflow.PipelinePass[domain.Expression]{
		Pass: &dataflow.Pass[domain.Expression]{Analysis: dataflow.AvailableExpressions{}, Name: "available-expressions"},
		Out:  &sink,
	})
	pipeline.AddPass(&dataflow.PipelinePass[domain.Variable]{
		Pass: &dataflow.Pass[domain.Variable]{Analysis: dataflow.Liveness{}, Name: "liveness"},
		Out:  &sink,
	})
	pipeline.AddPass(&licm.PipelinePass{Out: &sink})
	pipeline.Run(prog)

	output := sink.String()
	assert.Contains(t, output, "Running 4 optimization passes")
	assert.Contains(t, output, "Transformations applied:")
	assert.Contains(t, output, "available-expressions")
	assert.Contains(t, output, "liveness")
	assert.Less(t, strings.Index(output, "Transformations applied:"), strings.Index(output, "available-expressions"),
		"the peephole rewriter runs before the analyses")
}
