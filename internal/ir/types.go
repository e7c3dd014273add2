package ir

import "fmt"

// IR types and structures for a small SSA intermediate representation of
// imperative programs: binary operators, loads/stores, calls, phi nodes,
// and the usual block terminators.

// Program is the top-level unit handed to the pass pipeline.
type Program struct {
	Name      string
	Functions []*Function
}

// Function represents a function in IR form.
type Function struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Entry      *BasicBlock
	Blocks     []*BasicBlock // in program order, Entry first
	LocalVars  map[string]*Value
}

// BasicBlock represents a sequence of instructions with no internal branches.
// Instructions never include the block's Terminator.
type BasicBlock struct {
	Label        string
	Instructions []Instruction
	Terminator   Terminator
	Predecessors []*BasicBlock
	Successors   []*BasicBlock
}

// Value represents a value in SSA form - each value has exactly one definition.
type Value struct {
	ID       int
	Name     string
	Type     Type
	DefBlock *BasicBlock // nil for parameters and literal constants
	DefInst  Instruction // nil for parameters and literal constants
	IsParam  bool
	Uses     []*Use
}

// Use represents a single operand slot reading an IR value. Use records
// are maintained by the Builder constructors and by the mutation helpers
// in mutate.go; code that wires operands by hand (phi back-edges in test
// fixtures) bypasses them, so ReplaceAllUsesWith only sees uses the
// Builder recorded.
type Use struct {
	Value *Value
	User  Instruction
}

// Parameter represents a function parameter.
type Parameter struct {
	Name  string
	Type  Type
	Value *Value
}

// Instruction is the interface every IR instruction implements. The extra
// queries beyond GetID/GetResult/GetOperands/GetBlock (IsSafeToSpeculate,
// MayReadMemory, IsLandingPad, IsPhi) are the IR-provider queries; loop-
// invariant code motion (see internal/licm) uses the first three.
type Instruction interface {
	GetID() int
	GetResult() *Value
	GetOperands() []*Value
	GetBlock() *BasicBlock
	IsTerminator() bool
	String() string
	GetEffects() []Effect

	IsSafeToSpeculate() bool
	MayReadMemory() bool
	IsLandingPad() bool
	IsPhi() bool
}

// Terminator ends a basic block.
type Terminator interface {
	Instruction
	GetSuccessors() []*BasicBlock
}

// PhiInstruction selects a value based on the predecessor block taken.
type PhiInstruction struct {
	ID     int
	Result *Value
	Block  *BasicBlock
	Inputs map[*BasicBlock]*Value
}

// LoadInstruction reads a value from an address.
type LoadInstruction struct {
	ID      int
	Result  *Value
	Block   *BasicBlock
	Address *Value
}

// StoreInstruction writes a value to an address.
type StoreInstruction struct {
	ID      int
	Block   *BasicBlock
	Address *Value
	Value   *Value
}

// BinaryInstruction computes Op(Left, Right). Op is one of the opcodes
// recognised by IsCommutative/the peephole rule table: "add", "sub", "mul",
// "sdiv", "udiv", "and", "or", "xor", "shl", "lshr".
type BinaryInstruction struct {
	ID     int
	Result *Value
	Block  *BasicBlock
	Op     string
	Left   *Value
	Right  *Value
}

// CallInstruction calls a named function. Calls are treated conservatively:
// they may have arbitrary effects and are never safe to speculate.
type CallInstruction struct {
	ID     int
	Result *Value
	Block  *BasicBlock
	Callee string
	Args   []*Value
}

// ConstantInstruction materialises a compile-time literal.
type ConstantInstruction struct {
	ID     int
	Result *Value
	Block  *BasicBlock
	Value  int64
	Type   Type
}

// LandingPadInstruction marks the entry of an exception handler. It is
// never loop-invariant regardless of its operands.
type LandingPadInstruction struct {
	ID     int
	Result *Value
	Block  *BasicBlock
}

// ReturnTerminator returns from the function, optionally with a value.
type ReturnTerminator struct {
	ID    int
	Block *BasicBlock
	Value *Value
}

// BranchTerminator is a two-way conditional branch.
type BranchTerminator struct {
	ID         int
	Block      *BasicBlock
	Condition  *Value
	TrueBlock  *BasicBlock
	FalseBlock *BasicBlock
}

// JumpTerminator is an unconditional branch.
type JumpTerminator struct {
	ID     int
	Block  *BasicBlock
	Target *BasicBlock
}

// --- Instruction interface implementations ---

func (p *PhiInstruction) GetID() int        { return p.ID }
func (p *PhiInstruction) GetResult() *Value { return p.Result }
func (p *PhiInstruction) GetOperands() []*Value {
	ops := make([]*Value, 0, len(p.Inputs))
	for _, v := range p.Inputs {
		ops = append(ops, v)
	}
	return ops
}
func (p *PhiInstruction) GetBlock() *BasicBlock   { return p.Block }
func (p *PhiInstruction) IsTerminator() bool      { return false }
func (p *PhiInstruction) IsSafeToSpeculate() bool { return false }
func (p *PhiInstruction) MayReadMemory() bool     { return false }
func (p *PhiInstruction) IsLandingPad() bool      { return false }
func (p *PhiInstruction) IsPhi() bool             { return true }

func (l *LoadInstruction) GetID() int             { return l.ID }
func (l *LoadInstruction) GetResult() *Value      { return l.Result }
func (l *LoadInstruction) GetOperands() []*Value  { return []*Value{l.Address} }
func (l *LoadInstruction) GetBlock() *BasicBlock  { return l.Block }
func (l *LoadInstruction) IsTerminator() bool     { return false }
func (l *LoadInstruction) IsSafeToSpeculate() bool { return false } // may trap on a bad address
func (l *LoadInstruction) MayReadMemory() bool    { return true }
func (l *LoadInstruction) IsLandingPad() bool     { return false }
func (l *LoadInstruction) IsPhi() bool            { return false }

func (s *StoreInstruction) GetID() int             { return s.ID }
func (s *StoreInstruction) GetResult() *Value      { return nil }
func (s *StoreInstruction) GetOperands() []*Value  { return []*Value{s.Address, s.Value} }
func (s *StoreInstruction) GetBlock() *BasicBlock  { return s.Block }
func (s *StoreInstruction) IsTerminator() bool     { return false }
func (s *StoreInstruction) IsSafeToSpeculate() bool { return false }
func (s *StoreInstruction) MayReadMemory() bool    { return false }
func (s *StoreInstruction) IsLandingPad() bool     { return false }
func (s *StoreInstruction) IsPhi() bool            { return false }

// divisionOps never speculate: an unguarded divide by zero is undefined.
var divisionOps = map[string]bool{"sdiv": true, "udiv": true}

func (b *BinaryInstruction) GetID() int            { return b.ID }
func (b *BinaryInstruction) GetResult() *Value     { return b.Result }
func (b *BinaryInstruction) GetOperands() []*Value { return []*Value{b.Left, b.Right} }
func (b *BinaryInstruction) GetBlock() *BasicBlock { return b.Block }
func (b *BinaryInstruction) IsTerminator() bool    { return false }
func (b *BinaryInstruction) IsSafeToSpeculate() bool {
	return !divisionOps[b.Op]
}
func (b *BinaryInstruction) MayReadMemory() bool { return false }
func (b *BinaryInstruction) IsLandingPad() bool  { return false }
func (b *BinaryInstruction) IsPhi() bool         { return false }

func (c *CallInstruction) GetID() int             { return c.ID }
func (c *CallInstruction) GetResult() *Value      { return c.Result }
func (c *CallInstruction) GetOperands() []*Value  { return c.Args }
func (c *CallInstruction) GetBlock() *BasicBlock  { return c.Block }
func (c *CallInstruction) IsTerminator() bool     { return false }
func (c *CallInstruction) IsSafeToSpeculate() bool { return false }
func (c *CallInstruction) MayReadMemory() bool    { return true }
func (c *CallInstruction) IsLandingPad() bool     { return false }
func (c *CallInstruction) IsPhi() bool            { return false }

func (c *ConstantInstruction) GetID() int             { return c.ID }
func (c *ConstantInstruction) GetResult() *Value      { return c.Result }
func (c *ConstantInstruction) GetOperands() []*Value  { return nil }
func (c *ConstantInstruction) GetBlock() *BasicBlock  { return c.Block }
func (c *ConstantInstruction) IsTerminator() bool     { return false }
func (c *ConstantInstruction) IsSafeToSpeculate() bool { return true }
func (c *ConstantInstruction) MayReadMemory() bool    { return false }
func (c *ConstantInstruction) IsLandingPad() bool     { return false }
func (c *ConstantInstruction) IsPhi() bool            { return false }

func (lp *LandingPadInstruction) GetID() int             { return lp.ID }
func (lp *LandingPadInstruction) GetResult() *Value      { return lp.Result }
func (lp *LandingPadInstruction) GetOperands() []*Value  { return nil }
func (lp *LandingPadInstruction) GetBlock() *BasicBlock  { return lp.Block }
func (lp *LandingPadInstruction) IsTerminator() bool     { return false }
func (lp *LandingPadInstruction) IsSafeToSpeculate() bool { return false }
func (lp *LandingPadInstruction) MayReadMemory() bool    { return false }
func (lp *LandingPadInstruction) IsLandingPad() bool     { return true }
func (lp *LandingPadInstruction) IsPhi() bool            { return false }

func (r *ReturnTerminator) GetID() int        { return r.ID }
func (r *ReturnTerminator) GetResult() *Value { return nil }
func (r *ReturnTerminator) GetOperands() []*Value {
	if r.Value != nil {
		return []*Value{r.Value}
	}
	return nil
}
func (r *ReturnTerminator) GetBlock() *BasicBlock        { return r.Block }
func (r *ReturnTerminator) IsTerminator() bool           { return true }
func (r *ReturnTerminator) IsSafeToSpeculate() bool      { return false }
func (r *ReturnTerminator) MayReadMemory() bool          { return false }
func (r *ReturnTerminator) IsLandingPad() bool           { return false }
func (r *ReturnTerminator) IsPhi() bool                  { return false }
func (r *ReturnTerminator) GetSuccessors() []*BasicBlock { return nil }

func (b *BranchTerminator) GetID() int            { return b.ID }
func (b *BranchTerminator) GetResult() *Value     { return nil }
func (b *BranchTerminator) GetOperands() []*Value { return []*Value{b.Condition} }
func (b *BranchTerminator) GetBlock() *BasicBlock { return b.Block }
func (b *BranchTerminator) IsTerminator() bool    { return true }
func (b *BranchTerminator) IsSafeToSpeculate() bool { return false }
func (b *BranchTerminator) MayReadMemory() bool   { return false }
func (b *BranchTerminator) IsLandingPad() bool    { return false }
func (b *BranchTerminator) IsPhi() bool           { return false }
func (b *BranchTerminator) GetSuccessors() []*BasicBlock {
	return []*BasicBlock{b.TrueBlock, b.FalseBlock}
}

func (j *JumpTerminator) GetID() int                   { return j.ID }
func (j *JumpTerminator) GetResult() *Value            { return nil }
func (j *JumpTerminator) GetOperands() []*Value        { return nil }
func (j *JumpTerminator) GetBlock() *BasicBlock        { return j.Block }
func (j *JumpTerminator) IsTerminator() bool           { return true }
func (j *JumpTerminator) IsSafeToSpeculate() bool      { return false }
func (j *JumpTerminator) MayReadMemory() bool          { return false }
func (j *JumpTerminator) IsLandingPad() bool           { return false }
func (j *JumpTerminator) IsPhi() bool                  { return false }
func (j *JumpTerminator) GetSuccessors() []*BasicBlock { return []*BasicBlock{j.Target} }

// IsCommutative reports whether op's operand order is insignificant for
// structural equality: integer add/mul and the bitwise ops.
func IsCommutative(op string) bool {
	switch op {
	case "add", "mul", "and", "or", "xor":
		return true
	default:
		return false
	}
}

// Types

type Type interface {
	String() string
}

type IntType struct{ Bits int }
type BoolType struct{}
type PointerType struct{ Elem Type }

func (i *IntType) String() string     { return fmt.Sprintf("i%d", i.Bits) }
func (b *BoolType) String() string    { return "bool" }
func (p *PointerType) String() string { return fmt.Sprintf("*%s", p.Elem) }
