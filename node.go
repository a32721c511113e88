package solvent

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash/v2"
)

// SimplifyLevel records how much simplification has been applied to a node.
// The level is advisory metadata: it does not participate in node identity.
type SimplifyLevel int

// Available simplification levels.
const (
	SimplifyNone SimplifyLevel = iota
	SimplifyLight
	SimplifyFull
)

// Annotation is an opaque metadata pair attached to a node. Annotations on
// symbols survive lowering and abstraction through the backend's symbol
// side-table.
type Annotation struct {
	Name  string
	Value string
}

// Node is an immutable, hash-consed expression. Two nodes constructed from
// identical (op, args, length, annotations) are the same *Node; consumers
// must rely only on structural equality and variable sets, never on pointer
// identity for anything but caching.
//
// Args holds child *Node values and primitives: uint64, *big.Int, int, bool,
// string, float64, FSort and RoundingMode.
type Node struct {
	Op          Op
	Args        []any
	Length      uint // bit width; 0 for boolean and string sorts
	Symbolic    bool
	Annotations []Annotation

	// SimplifyLevel is advisory and mutable; see SimplifyLevel.
	SimplifyLevel SimplifyLevel

	variables *immutable.SortedMap[string, struct{}]
	hash      uint64
}

// New returns the interned node for the given operation and arguments.
// The result category and bit length are derived from the operator table.
func New(op Op, args ...any) (*Node, error) {
	return NewAnnotated(op, args, nil)
}

// NewAnnotated is New with an explicit annotation list.
func NewAnnotated(op Op, args []any, annotations []Annotation) (*Node, error) {
	info, ok := opTable[op]
	if !ok {
		return nil, &UnknownOperatorError{Op: op}
	}
	if op == OpBVV && (len(args) == 0 || args[0] == nil) {
		return nil, fmt.Errorf("bitvector literal with no concrete value: %w", ErrMalformedLiteral)
	}

	length, err := opLength(op, args)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Op:          op,
		Args:        args,
		Length:      length,
		Annotations: annotations,
	}

	if info.symbol {
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("symbol %s requires a name argument, got %T", op, args[0])
		}
		n.Symbolic = true
		n.variables = emptyVars().Set(name, struct{}{})
	} else {
		vars := emptyVars()
		for _, arg := range args {
			child, ok := arg.(*Node)
			if !ok {
				continue
			}
			if child.Symbolic {
				n.Symbolic = true
			}
			vars = unionVars(vars, child.variables)
		}
		n.variables = vars
	}

	n.hash = hashNode(op, length, args, annotations)
	return internNode(n), nil
}

// MustNew is New but panics on error. It is intended for statically
// well-formed construction such as the builder helpers below.
func MustNew(op Op, args ...any) *Node {
	n, err := New(op, args...)
	if err != nil {
		panic(err)
	}
	return n
}

// Hash returns the structural hash of the node.
func (n *Node) Hash() uint64 { return n.hash }

// Category returns the result category of the node.
func (n *Node) Category() Category {
	info := opTable[n.Op]
	if info.polymorphic {
		return n.Args[1].(*Node).Category()
	}
	return info.category
}

// Name returns the symbol name for symbol nodes and "" otherwise.
func (n *Node) Name() string {
	if !IsSymbol(n.Op) {
		return ""
	}
	return n.Args[0].(string)
}

// Variables returns the names of the free symbols transitively contained in
// the node, in sorted order.
func (n *Node) Variables() []string {
	names := make([]string, 0, n.variables.Len())
	itr := n.variables.Iterator()
	for !itr.Done() {
		name, _, _ := itr.Next()
		names = append(names, name)
	}
	return names
}

// HasVariable returns true if name occurs free in the node.
func (n *Node) HasVariable(name string) bool {
	_, ok := n.variables.Get(name)
	return ok
}

// Annotate returns the interned node carrying the additional annotations.
func (n *Node) Annotate(annotations ...Annotation) *Node {
	combined := make([]Annotation, 0, len(n.Annotations)+len(annotations))
	combined = append(combined, n.Annotations...)
	combined = append(combined, annotations...)
	a, err := NewAnnotated(n.Op, n.Args, combined)
	if err != nil {
		panic(err) // annotations cannot invalidate an existing node
	}
	return a
}

// MarkSimplified records the simplification level on the node. The level is
// shared by all holders of the node; it only ever increases.
func (n *Node) MarkSimplified(level SimplifyLevel) {
	if level > n.SimplifyLevel {
		n.SimplifyLevel = level
	}
}

// String returns an s-expression rendering of the node.
func (n *Node) String() string {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *Node) {
	if len(n.Args) == 0 {
		fmt.Fprintf(buf, "(%s)", n.Op)
		return
	}
	fmt.Fprintf(buf, "(%s", n.Op)
	for _, arg := range n.Args {
		buf.WriteByte(' ')
		if child, ok := arg.(*Node); ok {
			writeNode(buf, child)
		} else {
			fmt.Fprintf(buf, "%v", arg)
		}
	}
	buf.WriteByte(')')
}

// opLength derives the bit length of a node from its operator and arguments.
// Boolean and string sorts have no length and yield zero.
func opLength(op Op, args []any) (uint, error) {
	info := opTable[op]

	switch op {
	case OpBVS, OpBVV:
		w, ok := lastUint(args)
		if !ok {
			return 0, fmt.Errorf("%s requires a trailing bit width", op)
		}
		return w, nil
	case OpFPS, OpFPV:
		s, ok := lastFSort(args)
		if !ok {
			return 0, fmt.Errorf("%s requires a trailing floating-point sort", op)
		}
		return s.Length(), nil
	case OpConcat:
		var sum uint
		for _, arg := range args {
			child, ok := arg.(*Node)
			if !ok {
				return 0, fmt.Errorf("concat argument must be a node, got %T", arg)
			}
			sum += child.Length
		}
		return sum, nil
	case OpExtract:
		hi, ok1 := args[0].(int)
		lo, ok2 := args[1].(int)
		if !ok1 || !ok2 || hi < lo {
			return 0, fmt.Errorf("extract requires high/low bounds, got %v/%v", args[0], args[1])
		}
		return uint(hi-lo) + 1, nil
	case OpZeroExt, OpSignExt:
		ext, ok := args[0].(int)
		child, ok2 := args[1].(*Node)
		if !ok || !ok2 {
			return 0, fmt.Errorf("%s requires (bits, node) arguments", op)
		}
		return uint(ext) + child.Length, nil
	case OpRepeat:
		times, ok := args[0].(int)
		child, ok2 := args[1].(*Node)
		if !ok || !ok2 {
			return 0, fmt.Errorf("repeat requires (count, node) arguments")
		}
		return uint(times) * child.Length, nil
	case OpIf:
		child, ok := args[1].(*Node)
		if !ok {
			return 0, fmt.Errorf("if requires node branches, got %T", args[1])
		}
		return child.Length, nil
	case OpFPToFP, OpFPToFPUnsigned:
		s, ok := lastFSort(args)
		if !ok {
			return 0, fmt.Errorf("%s requires a trailing floating-point sort", op)
		}
		return s.Length(), nil
	case OpFPToSBV, OpFPToUBV:
		w, ok := lastUint(args)
		if !ok {
			return 0, fmt.Errorf("%s requires a trailing bit width", op)
		}
		return w, nil
	case OpStrLen, OpStrIndexOf, OpStrToInt:
		return Width64, nil
	}

	switch info.category {
	case CategoryBool, CategoryString:
		return 0, nil
	}

	// Remaining bitvector and floating-point operators take their width from
	// the first sized node operand. Rounding modes are primitives and skipped
	// by the type switch.
	for _, arg := range args {
		if child, ok := arg.(*Node); ok && child.Category() != CategoryBool {
			return child.Length, nil
		}
	}
	return 0, fmt.Errorf("cannot derive width of %s from arguments", op)
}

func lastUint(args []any) (uint, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[len(args)-1].(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case uint64:
		return uint(v), true
	default:
		return 0, false
	}
}

func lastFSort(args []any) (FSort, bool) {
	if len(args) == 0 {
		return FSort{}, false
	}
	s, ok := args[len(args)-1].(FSort)
	return s, ok
}

//
// Variable sets
//

var sharedEmptyVars = immutable.NewSortedMap[string, struct{}](nil)

func emptyVars() *immutable.SortedMap[string, struct{}] { return sharedEmptyVars }

func unionVars(a, b *immutable.SortedMap[string, struct{}]) *immutable.SortedMap[string, struct{}] {
	if b == nil || b.Len() == 0 {
		return a
	}
	if a.Len() == 0 {
		return b
	}
	// Insert the smaller set into the larger one.
	if a.Len() < b.Len() {
		a, b = b, a
	}
	itr := b.Iterator()
	for !itr.Done() {
		name, _, _ := itr.Next()
		a = a.Set(name, struct{}{})
	}
	return a
}

//
// Structural hashing
//

func hashNode(op Op, length uint, args []any, annotations []Annotation) uint64 {
	h := xxhash.New()
	var buf [8]byte

	_, _ = h.WriteString(string(op))
	binary.LittleEndian.PutUint64(buf[:], uint64(length))
	_, _ = h.Write(buf[:])

	for _, arg := range args {
		hashArg(h, arg)
	}
	for _, a := range annotations {
		_, _ = h.WriteString("\x00a")
		_, _ = h.WriteString(a.Name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(a.Value)
	}
	return h.Sum64()
}

func hashArg(h *xxhash.Digest, arg any) {
	var buf [8]byte
	switch v := arg.(type) {
	case *Node:
		_, _ = h.WriteString("\x00n")
		binary.LittleEndian.PutUint64(buf[:], v.hash)
		_, _ = h.Write(buf[:])
	case uint64:
		_, _ = h.WriteString("\x00u")
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	case uint:
		_, _ = h.WriteString("\x00u")
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	case int:
		_, _ = h.WriteString("\x00i")
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	case bool:
		if v {
			_, _ = h.WriteString("\x00b1")
		} else {
			_, _ = h.WriteString("\x00b0")
		}
	case string:
		_, _ = h.WriteString("\x00s")
		_, _ = h.WriteString(v)
		_, _ = h.WriteString("\x00")
	case float64:
		_, _ = h.WriteString("\x00f")
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	case *big.Int:
		_, _ = h.WriteString("\x00B")
		_, _ = h.Write(v.Bytes())
		if v.Sign() < 0 {
			_, _ = h.WriteString("-")
		}
		_, _ = h.WriteString("\x00")
	case FSort:
		_, _ = h.WriteString("\x00F")
		binary.LittleEndian.PutUint64(buf[:], uint64(v.EBits)<<32|uint64(v.SBits))
		_, _ = h.Write(buf[:])
	case RoundingMode:
		_, _ = h.WriteString("\x00r")
		_, _ = h.WriteString(string(v))
	case nil:
		_, _ = h.WriteString("\x00z")
	default:
		panic(fmt.Sprintf("unhashable node argument type: %T", arg))
	}
}
