package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for IR programs, functions, and
// instructions.
type Printer struct {
	indent int
	output strings.Builder
}

func NewPrinter() *Printer { return &Printer{indent: 0} }

// Print returns the string representation of an IR program.
func Print(program *Program) string {
	p := NewPrinter()
	p.printProgram(program)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *Program) {
	p.writeLine("PROGRAM %s", program.Name)
	p.writeLine("")
	for _, fn := range program.Functions {
		p.printFunction(fn)
		p.writeLine("")
	}
}

func (p *Printer) printFunction(fn *Function) {
	sig := fmt.Sprintf("FUNCTION %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			sig += ", "
		}
		sig += fmt.Sprintf("%s: %s", param.Name, param.Type.String())
	}
	sig += ")"
	if fn.ReturnType != nil {
		sig += " -> " + fn.ReturnType.String()
	}
	p.writeLine("%s {", sig)
	p.indent++
	for _, block := range fn.Blocks {
		p.printBasicBlock(block)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBasicBlock(block *BasicBlock) {
	p.writeLine("%s:", block.Label)
	p.indent++
	for _, inst := range block.Instructions {
		p.writeLine("%s", p.instructionString(inst))
	}
	if block.Terminator != nil {
		p.writeLine("%s", p.instructionString(block.Terminator))
	}
	p.indent--
}

// instructionString renders a single instruction; the LICM/dataflow
// printers (internal/licm, internal/dataflow) reuse this, through
// InstructionString, for trace output.
func (p *Printer) instructionString(inst Instruction) string {
	switch i := inst.(type) {
	case *PhiInstruction:
		inputs := make([]string, 0, len(i.Inputs))
		for block, value := range i.Inputs {
			inputs = append(inputs, fmt.Sprintf("[%s: %s]", block.Label, p.valueString(value)))
		}
		return fmt.Sprintf("%s = phi %s", p.valueString(i.Result), strings.Join(inputs, ", "))
	case *LoadInstruction:
		return fmt.Sprintf("%s = load %s", p.valueString(i.Result), p.valueString(i.Address))
	case *StoreInstruction:
		return fmt.Sprintf("store %s, %s", p.valueString(i.Address), p.valueString(i.Value))
	case *BinaryInstruction:
		return fmt.Sprintf("%s = %s %s, %s", p.valueString(i.Result), i.Op, p.valueString(i.Left), p.valueString(i.Right))
	case *CallInstruction:
		args := make([]string, len(i.Args))
		for j, arg := range i.Args {
			args[j] = p.valueString(arg)
		}
		if i.Result != nil {
			return fmt.Sprintf("%s = call %s(%s)", p.valueString(i.Result), i.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("call %s(%s)", i.Callee, strings.Join(args, ", "))
	case *ConstantInstruction:
		return fmt.Sprintf("%s = const %d", p.valueString(i.Result), i.Value)
	case *LandingPadInstruction:
		return fmt.Sprintf("%s = landingpad", p.valueString(i.Result))
	case *ReturnTerminator:
		if i.Value != nil {
			return fmt.Sprintf("return %s", p.valueString(i.Value))
		}
		return "return"
	case *BranchTerminator:
		return fmt.Sprintf("branch %s, %s, %s", p.valueString(i.Condition), i.TrueBlock.Label, i.FalseBlock.Label)
	case *JumpTerminator:
		return fmt.Sprintf("jump %s", i.Target.Label)
	default:
		return fmt.Sprintf("UNKNOWN_INST<%T> %d", i, i.GetID())
	}
}

func (p *Printer) valueString(value *Value) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%%%s", value.Name)
}

// InstructionString exposes instructionString for other packages' printers
// (the dataflow/licm observable-output sinks).
func InstructionString(inst Instruction) string {
	return (&Printer{}).instructionString(inst)
}

func (pr *Program) String() string    { return Print(pr) }
func (f *Function) String() string    { return "IR Function: " + f.Name }
func (b *BasicBlock) String() string  { return "BasicBlock: " + b.Label }
func (v *Value) String() string       { return fmt.Sprintf("%%%s:%s", v.Name, v.Type) }

func (i *PhiInstruction) String() string        { return fmt.Sprintf("phi %d", i.ID) }
func (i *LoadInstruction) String() string       { return fmt.Sprintf("load %d", i.ID) }
func (i *StoreInstruction) String() string      { return fmt.Sprintf("store %d", i.ID) }
func (i *BinaryInstruction) String() string     { return fmt.Sprintf("%s %d", i.Op, i.ID) }
func (i *CallInstruction) String() string       { return fmt.Sprintf("call %d", i.ID) }
func (i *ConstantInstruction) String() string   { return fmt.Sprintf("const %d", i.ID) }
func (i *LandingPadInstruction) String() string { return fmt.Sprintf("landingpad %d", i.ID) }
func (i *ReturnTerminator) String() string      { return fmt.Sprintf("return %d", i.ID) }
func (i *BranchTerminator) String() string      { return fmt.Sprintf("branch %d", i.ID) }
func (i *JumpTerminator) String() string        { return fmt.Sprintf("jump %d", i.ID) }
