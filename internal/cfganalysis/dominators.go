// Package cfganalysis computes the control-flow facts loop-invariant code
// motion needs but the dataflow framework doesn't provide on its own: a
// dominator tree and the natural loop forest derived from it. Dominance is
// computed with the iterative formulation of Cooper, Harvey & Kennedy
// ("A Simple, Fast Dominance Algorithm"), itself just another fixed-point
// computation over the CFG. The resulting structures are read-only
// queries; licm borrows them and must never mutate them.
package cfganalysis

import "ssaflow/internal/ir"

// DominatorTree records, for every reachable block, its immediate dominator.
// The set of blocks a block dominates is not stored; Dominates answers each
// query by walking the immediate-dominator chain.
type DominatorTree struct {
	entry   *ir.BasicBlock
	idom    map[*ir.BasicBlock]*ir.BasicBlock
	order   []*ir.BasicBlock // reverse postorder from entry
	rpoRank map[*ir.BasicBlock]int
}

// BuildDominatorTree computes the dominator tree of fn, rooted at fn.Entry.
func BuildDominatorTree(fn *ir.Function) *DominatorTree {
	entry := fn.Entry
	order := reversePostorder(entry)
	rank := make(map[*ir.BasicBlock]int, len(order))
	for i, bb := range order {
		rank[bb] = i
	}

	idom := map[*ir.BasicBlock]*ir.BasicBlock{entry: entry}
	changed := true
	for changed {
		changed = false
		for _, bb := range order {
			if bb == entry {
				continue
			}
			var newIdom *ir.BasicBlock
			for _, pred := range bb.Predecessors {
				if _, ok := idom[pred]; !ok {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = intersect(idom, rank, newIdom, pred)
			}
			if newIdom != nil && idom[bb] != newIdom {
				idom[bb] = newIdom
				changed = true
			}
		}
	}
	delete(idom, entry) // entry has no immediate dominator, by convention

	return &DominatorTree{entry: entry, idom: idom, order: order, rpoRank: rank}
}

func intersect(idom map[*ir.BasicBlock]*ir.BasicBlock, rank map[*ir.BasicBlock]int, a, b *ir.BasicBlock) *ir.BasicBlock {
	for a != b {
		for rank[a] > rank[b] {
			a = idom[a]
		}
		for rank[b] > rank[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(entry *ir.BasicBlock) []*ir.BasicBlock {
	visited := map[*ir.BasicBlock]bool{}
	var post []*ir.BasicBlock
	var visit func(bb *ir.BasicBlock)
	visit = func(bb *ir.BasicBlock) {
		if visited[bb] {
			return
		}
		visited[bb] = true
		for _, succ := range bb.Successors {
			visit(succ)
		}
		post = append(post, bb)
	}
	visit(entry)
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// ImmediateDominator returns bb's immediate dominator, or nil for the
// entry block.
func (d *DominatorTree) ImmediateDominator(bb *ir.BasicBlock) *ir.BasicBlock {
	return d.idom[bb]
}

// Dominates reports whether a dominates b (every path from the entry to b
// passes through a), inclusive of a == b.
func (d *DominatorTree) Dominates(a, b *ir.BasicBlock) bool {
	if a == b {
		return true
	}
	for cur := d.idom[b]; cur != nil; cur = d.idom[cur] {
		if cur == a {
			return true
		}
	}
	return a == d.entry
}
