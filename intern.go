package solvent

import (
	"math/big"
	"sync"
)

// intern is the process-wide hash-consing table. Nodes are bucketed by
// structural hash; collisions within a bucket are resolved by structural
// comparison. Children are interned before parents, so child comparison is
// pointer comparison.
var intern = struct {
	mu    sync.Mutex
	nodes map[uint64][]*Node
}{nodes: make(map[uint64][]*Node)}

// internNode returns the canonical node for n, storing n if none exists.
func internNode(n *Node) *Node {
	intern.mu.Lock()
	defer intern.mu.Unlock()

	for _, other := range intern.nodes[n.hash] {
		if structuralEqual(n, other) {
			return other
		}
	}
	intern.nodes[n.hash] = append(intern.nodes[n.hash], n)
	return n
}

// InternSize returns the number of distinct interned nodes.
func InternSize() int {
	intern.mu.Lock()
	defer intern.mu.Unlock()

	var size int
	for _, bucket := range intern.nodes {
		size += len(bucket)
	}
	return size
}

// structuralEqual reports whether a and b denote the same logical value.
// The simplification level is advisory and excluded from identity.
func structuralEqual(a, b *Node) bool {
	if a == b {
		return true
	}
	if a.Op != b.Op || a.Length != b.Length || len(a.Args) != len(b.Args) ||
		len(a.Annotations) != len(b.Annotations) {
		return false
	}
	for i, arg := range a.Args {
		if !argEqual(arg, b.Args[i]) {
			return false
		}
	}
	for i, annot := range a.Annotations {
		if annot != b.Annotations[i] {
			return false
		}
	}
	return true
}

func argEqual(a, b any) bool {
	an, aok := a.(*Node)
	bn, bok := b.(*Node)
	if aok || bok {
		return aok && bok && an == bn
	}
	ai, aok := a.(*big.Int)
	bi, bok := b.(*big.Int)
	if aok || bok {
		return aok && bok && ai.Cmp(bi) == 0
	}
	return a == b
}
