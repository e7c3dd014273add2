package ir

import "fmt"

// Builder constructs SSA IR directly, without a source-language front end.
// It keeps monotonically increasing value/block/instruction counters so
// every Value carries a stable ID. This module has no parser; the only way
// programs reach the optimiser is by constructing them block-by-block.
type Builder struct {
	valueCounter int
	blockCounter int
	instCounter  int
}

// NewBuilder creates a fresh construction context. A Builder is cheap and
// stateless beyond its counters; callers typically keep one per Program.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewProgram starts a new program.
func (b *Builder) NewProgram(name string) *Program {
	return &Program{Name: name}
}

// NewFunction appends a new, block-less function to prog.
func (b *Builder) NewFunction(prog *Program, name string, params []*Parameter, ret Type) *Function {
	fn := &Function{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		LocalVars:  make(map[string]*Value),
	}
	for _, p := range params {
		if p.Value == nil {
			p.Value = b.NewParamValue(p.Name, p.Type)
		}
	}
	prog.Functions = append(prog.Functions, fn)
	return fn
}

// NewParamValue creates the Value a function parameter is bound to.
func (b *Builder) NewParamValue(name string, typ Type) *Value {
	v := &Value{ID: b.valueCounter, Name: name, Type: typ, IsParam: true}
	b.valueCounter++
	return v
}

// NewBlock appends a new, empty block to fn. The first block created for a
// function becomes its entry unless fn.Entry is already set.
func (b *Builder) NewBlock(fn *Function, label string) *BasicBlock {
	block := &BasicBlock{Label: fmt.Sprintf("%s%d", label, b.blockCounter)}
	b.blockCounter++
	fn.Blocks = append(fn.Blocks, block)
	if fn.Entry == nil {
		fn.Entry = block
	}
	return block
}

// Connect records an edge bb -> succ in both blocks' predecessor/successor
// sets. Terminators still carry the authoritative successor list; Connect
// keeps BasicBlock.Predecessors/Successors (used by cfganalysis and the
// dataflow framework) in sync with it.
func Connect(bb, succ *BasicBlock) {
	bb.Successors = append(bb.Successors, succ)
	succ.Predecessors = append(succ.Predecessors, bb)
}

// NewValue allocates a fresh SSA value, defined by defInst in block.
func (b *Builder) NewValue(name string, typ Type, block *BasicBlock, defInst Instruction) *Value {
	v := &Value{ID: b.valueCounter, Name: name, Type: typ, DefBlock: block, DefInst: defInst}
	b.valueCounter++
	return v
}

func (b *Builder) nextInstID() int {
	id := b.instCounter
	b.instCounter++
	return id
}

// Emit appends inst to block's instruction list (never its terminator).
func Emit(block *BasicBlock, inst Instruction) {
	block.Instructions = append(block.Instructions, inst)
}

// --- Instruction constructors ---
// Each returns the instruction already appended to block (where it has one)
// with its result Value's DefInst/DefBlock wired up.

func (b *Builder) Const(block *BasicBlock, name string, value int64, typ Type) *ConstantInstruction {
	inst := &ConstantInstruction{ID: b.nextInstID(), Block: block, Value: value, Type: typ}
	inst.Result = b.NewValue(name, typ, block, inst)
	Emit(block, inst)
	return inst
}

func (b *Builder) Binary(block *BasicBlock, name, op string, left, right *Value, typ Type) *BinaryInstruction {
	inst := &BinaryInstruction{ID: b.nextInstID(), Block: block, Op: op, Left: left, Right: right}
	inst.Result = b.NewValue(name, typ, block, inst)
	Emit(block, inst)
	recordUses(inst)
	return inst
}

func (b *Builder) Load(block *BasicBlock, name string, addr *Value, typ Type) *LoadInstruction {
	inst := &LoadInstruction{ID: b.nextInstID(), Block: block, Address: addr}
	inst.Result = b.NewValue(name, typ, block, inst)
	Emit(block, inst)
	recordUses(inst)
	return inst
}

func (b *Builder) Store(block *BasicBlock, addr, value *Value) *StoreInstruction {
	inst := &StoreInstruction{ID: b.nextInstID(), Block: block, Address: addr, Value: value}
	Emit(block, inst)
	recordUses(inst)
	return inst
}

func (b *Builder) Call(block *BasicBlock, name, callee string, args []*Value, typ Type) *CallInstruction {
	inst := &CallInstruction{ID: b.nextInstID(), Block: block, Callee: callee, Args: args}
	if typ != nil {
		inst.Result = b.NewValue(name, typ, block, inst)
	}
	Emit(block, inst)
	recordUses(inst)
	return inst
}

func (b *Builder) LandingPad(block *BasicBlock, name string, typ Type) *LandingPadInstruction {
	inst := &LandingPadInstruction{ID: b.nextInstID(), Block: block}
	inst.Result = b.NewValue(name, typ, block, inst)
	Emit(block, inst)
	return inst
}

// Phi adds a phi instruction, normally as the first instruction of block.
func (b *Builder) Phi(block *BasicBlock, name string, typ Type, inputs map[*BasicBlock]*Value) *PhiInstruction {
	inst := &PhiInstruction{ID: b.nextInstID(), Block: block, Inputs: inputs}
	inst.Result = b.NewValue(name, typ, block, inst)
	block.Instructions = append([]Instruction{inst}, block.Instructions...)
	recordUses(inst)
	return inst
}

func (b *Builder) Return(block *BasicBlock, value *Value) *ReturnTerminator {
	term := &ReturnTerminator{ID: b.nextInstID(), Block: block, Value: value}
	block.Terminator = term
	recordUses(term)
	return term
}

func (b *Builder) Jump(block, target *BasicBlock) *JumpTerminator {
	term := &JumpTerminator{ID: b.nextInstID(), Block: block, Target: target}
	block.Terminator = term
	Connect(block, target)
	return term
}

func (b *Builder) Branch(block *BasicBlock, cond *Value, trueBlock, falseBlock *BasicBlock) *BranchTerminator {
	term := &BranchTerminator{ID: b.nextInstID(), Block: block, Condition: cond, TrueBlock: trueBlock, FalseBlock: falseBlock}
	block.Terminator = term
	recordUses(term)
	Connect(block, trueBlock)
	Connect(block, falseBlock)
	return term
}
