package ir

// This file implements GetEffects() for every instruction type. No pass in
// this module reads them (the pipeline in optimizations.go does not); they
// are independent of the MayReadMemory/IsSafeToSpeculate queries LICM uses,
// which instructions answer directly in types.go.

// Effect represents the side effects of an instruction.
type Effect interface {
	EffectKind() string
}

// MemoryAccessEffect records a read or write of unspecified granularity.
type MemoryAccessEffect struct {
	Write bool
}

func (m *MemoryAccessEffect) EffectKind() string { return "memory" }

// PureEffect indicates no side effects.
type PureEffect struct{}

func (p *PureEffect) EffectKind() string { return "pure" }

func (i *PhiInstruction) GetEffects() []Effect        { return []Effect{&PureEffect{}} }
func (i *LoadInstruction) GetEffects() []Effect       { return []Effect{&MemoryAccessEffect{Write: false}} }
func (i *StoreInstruction) GetEffects() []Effect      { return []Effect{&MemoryAccessEffect{Write: true}} }
func (i *BinaryInstruction) GetEffects() []Effect     { return []Effect{&PureEffect{}} }
func (i *ConstantInstruction) GetEffects() []Effect   { return []Effect{&PureEffect{}} }
func (i *LandingPadInstruction) GetEffects() []Effect { return []Effect{&PureEffect{}} }

// CallInstruction conservatively may read and write memory.
func (i *CallInstruction) GetEffects() []Effect {
	return []Effect{&MemoryAccessEffect{Write: false}, &MemoryAccessEffect{Write: true}}
}

func (t *ReturnTerminator) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (t *BranchTerminator) GetEffects() []Effect { return []Effect{&PureEffect{}} }
func (t *JumpTerminator) GetEffects() []Effect   { return []Effect{&PureEffect{}} }
