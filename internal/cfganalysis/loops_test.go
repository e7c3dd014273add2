package cfganalysis

import (
	"testing"

	"ssaflow/internal/ir"
)

// buildLoop builds entry -> header -> body -> header, header -> exit, with
// a dedicated preheader block (so FindLoops can locate it unambiguously).
func buildLoop(b *ir.Builder) (*ir.Function, map[string]*ir.BasicBlock) {
	prog := b.NewProgram("loop")
	fn := b.NewFunction(prog, "f", nil, nil)

	entry := b.NewBlock(fn, "entry")
	preheader := b.NewBlock(fn, "preheader")
	header := b.NewBlock(fn, "header")
	body := b.NewBlock(fn, "body")
	exit := b.NewBlock(fn, "exit")

	b.Jump(entry, preheader)
	b.Jump(preheader, header)
	cond := b.NewParamValue("cond", &ir.BoolType{})
	b.Branch(header, cond, body, exit)
	b.Jump(body, header)
	b.Return(exit, nil)

	return fn, map[string]*ir.BasicBlock{
		"entry": entry, "preheader": preheader, "header": header, "body": body, "exit": exit,
	}
}

func TestFindLoopsDetectsSingleLoop(t *testing.T) {
	b := ir.NewBuilder()
	fn, blocks := buildLoop(b)
	dom := BuildDominatorTree(fn)
	loops := FindLoops(fn, dom)

	if len(loops) != 1 {
		t.Fatalf("expected exactly 1 loop, got %d", len(loops))
	}
	loop := loops[0]
	if loop.Header != blocks["header"] {
		t.Errorf("loop header = %v, expected header block", loop.Header)
	}
	if !loop.Contains(blocks["header"]) || !loop.Contains(blocks["body"]) {
		t.Error("loop should contain header and body")
	}
	if loop.Contains(blocks["entry"]) || loop.Contains(blocks["exit"]) {
		t.Error("loop should not contain entry or exit")
	}
}

func TestFindLoopsIdentifiesPreheader(t *testing.T) {
	b := ir.NewBuilder()
	fn, blocks := buildLoop(b)
	dom := BuildDominatorTree(fn)
	loops := FindLoops(fn, dom)

	if loops[0].Preheader != blocks["preheader"] {
		t.Errorf("loop preheader = %v, expected preheader block", loops[0].Preheader)
	}
}

func TestLoopExitBlocks(t *testing.T) {
	b := ir.NewBuilder()
	fn, blocks := buildLoop(b)
	dom := BuildDominatorTree(fn)
	loop := FindLoops(fn, dom)[0]

	exits := loop.ExitBlocks()
	if len(exits) != 1 || exits[0] != blocks["exit"] {
		t.Errorf("ExitBlocks() = %v, expected [exit]", exits)
	}
}

func TestFindLoopsNoPreheaderWhenMultiplePredecessors(t *testing.T) {
	b := ir.NewBuilder()
	prog := b.NewProgram("p")
	fn := b.NewFunction(prog, "f", nil, nil)

	entry := b.NewBlock(fn, "entry")
	other := b.NewBlock(fn, "other")
	header := b.NewBlock(fn, "header")
	body := b.NewBlock(fn, "body")
	exit := b.NewBlock(fn, "exit")

	cond := b.NewParamValue("cond", &ir.BoolType{})
	b.Branch(entry, cond, header, other)
	b.Jump(other, header) // header now has two non-loop predecessors
	b.Branch(header, cond, body, exit)
	b.Jump(body, header)
	b.Return(exit, nil)

	dom := BuildDominatorTree(fn)
	loops := FindLoops(fn, dom)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if loops[0].Preheader != nil {
		t.Error("a header with two distinct non-loop predecessors has no single preheader")
	}
}
