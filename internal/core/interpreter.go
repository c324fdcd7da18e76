package core

// Path algorithms over the compiled node arena. All functions take and return
// node indices.

// isAncestor reports whether anc is a proper ancestor of n.
func (d *Definition) isAncestor(anc, n int) bool {
	for p := d.nodes[n].parent; p >= 0; p = d.nodes[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

// computeDomain returns the node that is neither exited nor entered by t.
// Internal transitions keep their source; external ones climb to the deepest
// proper ancestor of the source that also contains the target, so a
// transition to self or to a sibling exits and re-enters.
func (d *Definition) computeDomain(t *transition) int {
	if t.internal || t.source == rootIndex {
		return t.source
	}
	anc := d.nodes[t.source].parent
	for anc != rootIndex && !d.isAncestor(anc, t.target) {
		anc = d.nodes[anc].parent
	}
	return anc
}

// getExitStates returns the active nodes from leaf up to domain (exclusive),
// innermost first.
func (d *Definition) getExitStates(leaf, domain int) []int {
	var out []int
	for n := leaf; n != domain && n >= 0; n = d.nodes[n].parent {
		out = append(out, n)
	}
	return out
}

// getEntryStates returns the nodes entered when moving from domain to target,
// outermost first, followed by target's initial descendants.
func (d *Definition) getEntryStates(domain, target int) []int {
	var path []int
	for n := target; n != domain && n >= 0; n = d.nodes[n].parent {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return append(path, d.resolveInitialLeaf(target)...)
}

// resolveInitialLeaf follows initial children below n down to a leaf. n itself
// is not included.
func (d *Definition) resolveInitialLeaf(n int) []int {
	var out []int
	for d.nodes[n].initial >= 0 {
		n = d.nodes[n].initial
		out = append(out, n)
	}
	return out
}

// initialPath is the full entry sequence of a freshly spawned actor.
func (d *Definition) initialPath(root int) []int {
	return d.resolveInitialLeaf(root)
}

// ancestry returns leaf and its ancestors up to and including the root.
func (d *Definition) ancestry(leaf int) []int {
	out := make([]int, 0, d.nodes[leaf].depth+1)
	for n := leaf; n >= 0; n = d.nodes[n].parent {
		out = append(out, n)
	}
	return out
}

// statePath returns the state names from the outermost state to leaf.
func (d *Definition) statePath(leaf int) []string {
	return splitPath(d.nodes[leaf].path)
}
