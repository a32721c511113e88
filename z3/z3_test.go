package z3_test

import (
	"errors"
	"testing"

	"github.com/solventlabs/solvent"
	"github.com/solventlabs/solvent/z3"
)

func TestBackend_SolverReuse(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)
	b.SetReuseSolvers(true)

	s1 := MustSolver(b)
	if err := s1.Assert(solvent.BoolV(false)); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	// The pooled solver must come back reset.
	s2 := MustSolver(b)
	defer s2.Close()
	if sat, err := b.Satisfiable(nil, s2, nil); err != nil {
		t.Fatal(err)
	} else if !sat {
		t.Fatal("expected reset solver to be satisfiable")
	}
}

func TestBackend_Errors(t *testing.T) {
	t.Run("ForeignSession", func(t *testing.T) {
		b1 := z3.NewBackend()
		defer MustCloseBackend(b1)
		b2 := z3.NewBackend()
		defer MustCloseBackend(b2)

		s := MustSolver(b1)
		defer s.Close()
		if _, err := b2.Satisfiable(nil, s, nil); err == nil {
			t.Fatal("expected error for foreign session")
		}
	})
	t.Run("ExtremumOfBool", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		if _, err := b.Min(solvent.BoolS("p"), nil, false, s, nil); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("AbstractNonTerm", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		var berr *solvent.BackendError
		if _, err := b.Abstract("not a handle"); !errors.As(err, &berr) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestInterruptAll_Idle(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)

	// Interrupting idle contexts is a no-op; the backend stays usable.
	z3.InterruptAll()
	s := MustSolver(b)
	defer s.Close()
	if sat, err := b.Satisfiable([]*solvent.Node{solvent.BoolV(true)}, s, nil); err != nil {
		t.Fatal(err)
	} else if !sat {
		t.Fatal("expected satisfiable")
	}
}

// MustCloseBackend closes the backend or panics.
func MustCloseBackend(b *z3.Backend) {
	if err := b.Close(); err != nil {
		panic(err)
	}
}

// MustConvert lowers a node or panics.
func MustConvert(b *z3.Backend, n *solvent.Node) solvent.Term {
	term, err := b.Convert(n)
	if err != nil {
		panic(err)
	}
	return term
}

// MustAbstract lifts a term or panics.
func MustAbstract(b *z3.Backend, term solvent.Term) *solvent.Node {
	n, err := b.Abstract(term)
	if err != nil {
		panic(err)
	}
	return n
}

// MustSolver returns a default session or panics.
func MustSolver(b *z3.Backend) solvent.Session {
	s, err := b.Solver(solvent.SolverOptions{})
	if err != nil {
		panic(err)
	}
	return s
}
