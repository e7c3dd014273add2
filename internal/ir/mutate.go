package ir

// IR mutation surface: use-list bookkeeping, value replacement, moving an
// instruction between blocks, and instruction removal. The peephole
// optimiser is the main client of ReplaceAllUsesWith/EraseFromParent;
// loop-invariant code motion uses MoveBefore.

// recordUses appends a Use record to every operand value of inst.
func recordUses(inst Instruction) {
	for _, op := range inst.GetOperands() {
		if op == nil {
			continue
		}
		op.Uses = append(op.Uses, &Use{Value: op, User: inst})
	}
}

// ReplaceAllUsesWith rewrites every recorded use of inst's result to read
// with instead. inst itself stays in place; erase it separately once dead.
func ReplaceAllUsesWith(inst Instruction, with *Value) {
	old := inst.GetResult()
	if old == nil || old == with {
		return
	}
	for _, use := range old.Uses {
		replaceOperand(use.User, old, with)
		use.Value = with
		with.Uses = append(with.Uses, use)
	}
	old.Uses = nil
}

// replaceOperand swaps every operand slot of user reading old to with.
func replaceOperand(user Instruction, old, with *Value) {
	switch u := user.(type) {
	case *PhiInstruction:
		for bb, v := range u.Inputs {
			if v == old {
				u.Inputs[bb] = with
			}
		}
	case *LoadInstruction:
		if u.Address == old {
			u.Address = with
		}
	case *StoreInstruction:
		if u.Address == old {
			u.Address = with
		}
		if u.Value == old {
			u.Value = with
		}
	case *BinaryInstruction:
		if u.Left == old {
			u.Left = with
		}
		if u.Right == old {
			u.Right = with
		}
	case *CallInstruction:
		for i, a := range u.Args {
			if a == old {
				u.Args[i] = with
			}
		}
	case *ReturnTerminator:
		if u.Value == old {
			u.Value = with
		}
	case *BranchTerminator:
		if u.Condition == old {
			u.Condition = with
		}
	}
}

// MoveBefore unlinks inst from its current block and re-inserts it
// immediately before mark. Passing a block's terminator as mark places
// inst at the end of that block's instruction list. inst keeps its SSA
// identity; its result value and all uses stay valid.
func MoveBefore(inst, mark Instruction) {
	if from := inst.GetBlock(); from != nil {
		removeInstruction(from, inst)
	}
	to := mark.GetBlock()
	idx := len(to.Instructions)
	if !mark.IsTerminator() {
		for i, cur := range to.Instructions {
			if cur == mark {
				idx = i
				break
			}
		}
	}
	to.Instructions = append(to.Instructions, nil)
	copy(to.Instructions[idx+1:], to.Instructions[idx:])
	to.Instructions[idx] = inst
	setParentBlock(inst, to)
}

// EraseFromParent unlinks inst from its block and removes the use records
// it holds on its operands. The result value, if any, is left as it is:
// users that still read it keep referring to a value whose defining
// instruction is no longer in any block, and nothing reports this.
func EraseFromParent(inst Instruction) {
	bb := inst.GetBlock()
	if bb != nil {
		if Instruction(bb.Terminator) == inst {
			bb.Terminator = nil
		} else {
			removeInstruction(bb, inst)
		}
	}
	for _, op := range inst.GetOperands() {
		if op != nil {
			removeUse(op, inst)
		}
	}
}

func removeInstruction(bb *BasicBlock, inst Instruction) {
	for i, cur := range bb.Instructions {
		if cur == inst {
			bb.Instructions = append(bb.Instructions[:i], bb.Instructions[i+1:]...)
			return
		}
	}
}

func removeUse(v *Value, user Instruction) {
	kept := v.Uses[:0]
	for _, use := range v.Uses {
		if use.User != user {
			kept = append(kept, use)
		}
	}
	v.Uses = kept
}

// setParentBlock updates inst's (and its result's) recorded parent block
// after a move. Instruction types store their Block field directly rather
// than through a setter, so this is a type switch.
func setParentBlock(inst Instruction, bb *BasicBlock) {
	switch i := inst.(type) {
	case *PhiInstruction:
		i.Block = bb
	case *LoadInstruction:
		i.Block = bb
	case *StoreInstruction:
		i.Block = bb
	case *BinaryInstruction:
		i.Block = bb
	case *CallInstruction:
		i.Block = bb
	case *ConstantInstruction:
		i.Block = bb
	case *LandingPadInstruction:
		i.Block = bb
	}
	if result := inst.GetResult(); result != nil {
		result.DefBlock = bb
	}
}
