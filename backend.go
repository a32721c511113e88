package solvent

import "time"

// Term is an opaque handle to a backend-native term. Terms are only
// meaningful to the backend that produced them.
type Term any

// Model is a satisfying assignment: symbol name to a fully primitive value
// (uint64, *big.Int, bool, float64 or string). Model values are never nodes
// and never native handles.
type Model map[string]any

// ModelCallback receives the model of a successful check before the solving
// call returns.
type ModelCallback func(Model)

// SolverOptions configure a solver session. Zero values leave the native
// defaults in place.
type SolverOptions struct {
	Timeout   time.Duration
	MaxMemory uint // megabytes
}

// Session is one incremental native solver instance together with its
// assertion set and push/pop state. Sessions are not safe for concurrent
// use; they belong to the goroutine that created their backend.
type Session interface {
	// Assert permanently adds constraints below the current scope.
	Assert(constraints ...*Node) error

	// AssertTracked adds constraints tagged for unsat-core extraction.
	AssertTracked(constraints ...*Node) error

	// Push opens a scope; Pop discards everything asserted since the
	// matching Push. Pop below depth zero is a usage error.
	Push() error
	Pop() error
	Depth() int

	// UnsatCore returns the tracked constraints that participate in the
	// proof of unsatisfiability after an unsatisfiable check.
	UnsatCore() ([]*Node, error)

	Close() error
}

// Backend translates nodes to and from a native solver representation and
// drives solving queries. Implementations are bound to a single goroutine;
// create one backend per worker.
type Backend interface {
	// Convert lowers a node to a native term, Abstract lifts a native term
	// back; abstract(convert(n)) is structurally equal to n.
	Convert(n *Node) (Term, error)
	Abstract(t Term) (*Node, error)

	// Solver returns a fresh session, or this backend's pooled one when
	// session reuse is enabled.
	Solver(opts SolverOptions) (Session, error)

	// Satisfiable runs one incremental check with extra layered on top of
	// the session's assertions, without mutating the session.
	Satisfiable(extra []*Node, s Session, cb ModelCallback) (bool, error)

	// Eval enumerates up to n distinct values of expr; BatchEval enumerates
	// up to n distinct joint assignments to exprs. Exhausting the solution
	// space early is not an error.
	Eval(expr *Node, n int, extra []*Node, s Session, cb ModelCallback) ([]any, error)
	BatchEval(exprs []*Node, n int, extra []*Node, s Session, cb ModelCallback) ([][]any, error)

	// Min and Max binary-search the extremum of a bitvector expression.
	// Results are reported as width-truncated two's-complement values.
	Min(expr *Node, extra []*Node, signed bool, s Session, cb ModelCallback) (uint64, error)
	Max(expr *Node, extra []*Node, signed bool, s Session, cb ModelCallback) (uint64, error)

	// Simplify rewrites a node with the native simplifier. It never touches
	// a session and is idempotent.
	Simplify(n *Node) (*Node, error)

	// IsTrue and IsFalse report whether the node simplifies to a constant.
	IsTrue(n *Node) (bool, error)
	IsFalse(n *Node) (bool, error)

	// Downsize drops every cache the backend holds, releasing all pinned
	// native references.
	Downsize()
}
