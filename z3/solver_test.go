package z3_test

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/solventlabs/solvent"
	"github.com/solventlabs/solvent/z3"
)

func TestBackend_Satisfiable(t *testing.T) {
	t.Run("True", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		if sat, err := b.Satisfiable([]*solvent.Node{solvent.BoolV(true)}, s, nil); err != nil {
			t.Fatal(err)
		} else if !sat {
			t.Fatal("expected satisfiable")
		}
	})
	t.Run("False", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		if sat, err := b.Satisfiable([]*solvent.Node{solvent.BoolV(false)}, s, nil); err != nil {
			t.Fatal(err)
		} else if sat {
			t.Fatal("expected unsatisfiable")
		}
	})
	t.Run("ModelCallback", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x, y := solvent.BVS("x", 32), solvent.BVS("y", 32)
		if err := s.Assert(
			solvent.Eq(solvent.Add(x, y), solvent.BVV(10, 32)),
			solvent.UGT(x, solvent.BVV(0, 32)),
		); err != nil {
			t.Fatal(err)
		}

		var model solvent.Model
		if sat, err := b.Satisfiable(nil, s, func(m solvent.Model) { model = m }); err != nil {
			t.Fatal(err)
		} else if !sat {
			t.Fatal("expected satisfiable")
		}

		xv, _ := model["x"].(uint64)
		yv, _ := model["y"].(uint64)
		if xv == 0 {
			t.Fatalf("expected nonzero x, got model %v", model)
		}
		if (xv+yv)&0xffffffff != 10 {
			t.Fatalf("model does not satisfy constraints: %v", model)
		}
	})
	t.Run("ExtraDoesNotStick", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x := solvent.BVS("x", 8)
		contradiction := []*solvent.Node{
			solvent.ULT(x, solvent.BVV(1, 8)),
			solvent.UGT(x, solvent.BVV(1, 8)),
		}
		if sat, err := b.Satisfiable(contradiction, s, nil); err != nil {
			t.Fatal(err)
		} else if sat {
			t.Fatal("expected unsatisfiable")
		}
		if sat, err := b.Satisfiable(nil, s, nil); err != nil {
			t.Fatal(err)
		} else if !sat {
			t.Fatal("expected session to remain satisfiable")
		}
	})
}

func TestBackend_SolverOptions(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)

	s, err := b.Solver(solvent.SolverOptions{Timeout: time.Minute, MaxMemory: 1024})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	x := solvent.BVS("x", 8)
	if err := s.Assert(solvent.UGT(x, solvent.BVV(10, 8))); err != nil {
		t.Fatal(err)
	}
	if sat, err := b.Satisfiable(nil, s, nil); err != nil {
		t.Fatal(err)
	} else if !sat {
		t.Fatal("expected satisfiable")
	}
}

func TestBackend_Eval(t *testing.T) {
	t.Run("Exhaustive", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x := solvent.BVS("x", 8)
		values, err := b.Eval(x, 10, []*solvent.Node{solvent.ULT(x, solvent.BVV(3, 8))}, s, nil)
		if err != nil {
			t.Fatal(err)
		}

		got := make([]uint64, len(values))
		for i, v := range values {
			got[i] = v.(uint64)
		}
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		if diff := cmp.Diff([]uint64{0, 1, 2}, got); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Float", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		f := solvent.FPS("f", solvent.FSortDouble)
		values, err := b.Eval(f, 1, []*solvent.Node{solvent.FPEq(f, solvent.FPV(2.5, solvent.FSortDouble))}, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(values) != 1 {
			t.Fatalf("unexpected value count: %d", len(values))
		} else if v := values[0].(float64); v != 2.5 {
			t.Fatalf("unexpected value: %v", v)
		}
	})
	t.Run("WideFloat", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		// Quad-precision significands exceed the uint64 numeral accessors.
		quad := solvent.FSort{EBits: 15, SBits: 113}
		f := solvent.FPS("g", quad)
		values, err := b.Eval(f, 1, []*solvent.Node{solvent.FPEq(f, solvent.FPV(1.5, quad))}, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(values) != 1 {
			t.Fatalf("unexpected value count: %d", len(values))
		} else if v := values[0].(float64); v != 1.5 {
			t.Fatalf("unexpected value: %v", v)
		}
	})
	t.Run("IEEEBits", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		f := solvent.FPS("h", solvent.FSortDouble)
		bits := solvent.FPToIEEEBV(f)
		values, err := b.Eval(bits, 1, []*solvent.Node{solvent.FPEq(f, solvent.FPV(2.5, solvent.FSortDouble))}, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(values) != 1 {
			t.Fatalf("unexpected value count: %d", len(values))
		} else if v := values[0].(uint64); v != math.Float64bits(2.5) {
			t.Fatalf("unexpected bits: %#x", v)
		}

		nan := solvent.FPS("n", solvent.FSortDouble)
		nanBits := solvent.FPToIEEEBV(nan)
		values, err = b.Eval(nanBits, 1, []*solvent.Node{solvent.FPIsNaN(nan)}, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(values) != 1 {
			t.Fatalf("unexpected value count: %d", len(values))
		}
		v := values[0].(uint64)
		if v>>52&0x7ff != 0x7ff || v&((1<<52)-1) == 0 {
			t.Fatalf("not a NaN bit pattern: %#x", v)
		}
	})
}

func TestBackend_BatchEval(t *testing.T) {
	t.Run("EqualPair", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x, y := solvent.BVS("x", 8), solvent.BVS("y", 8)
		if err := s.Assert(solvent.Eq(x, y), solvent.ULT(x, solvent.BVV(2, 8))); err != nil {
			t.Fatal(err)
		}

		rows, err := b.BatchEval([]*solvent.Node{x, y}, 10, nil, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(rows) != 2 {
			t.Fatalf("unexpected row count: %d", len(rows))
		}

		seen := make(map[uint64]bool)
		for _, row := range rows {
			xv, yv := row[0].(uint64), row[1].(uint64)
			if xv != yv {
				t.Fatalf("row violates constraints: %v", row)
			}
			if seen[xv] {
				t.Fatalf("duplicate assignment: %v", row)
			}
			seen[xv] = true
		}
	})
	t.Run("SumScenario", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x, y := solvent.BVS("x", 32), solvent.BVS("y", 32)
		if err := s.Assert(
			solvent.Eq(solvent.Add(x, y), solvent.BVV(10, 32)),
			solvent.UGT(x, solvent.BVV(0, 32)),
		); err != nil {
			t.Fatal(err)
		}

		rows, err := b.BatchEval([]*solvent.Node{x, y}, 3, nil, s, nil)
		if err != nil {
			t.Fatal(err)
		} else if len(rows) != 3 {
			t.Fatalf("unexpected row count: %d", len(rows))
		}

		seen := make(map[[2]uint64]bool)
		for _, row := range rows {
			pair := [2]uint64{row[0].(uint64), row[1].(uint64)}
			if pair[0] == 0 || (pair[0]+pair[1])&0xffffffff != 10 {
				t.Fatalf("row violates constraints: %v", row)
			}
			if seen[pair] {
				t.Fatalf("duplicate assignment: %v", row)
			}
			seen[pair] = true
		}
	})
}

func TestBackend_MinMax(t *testing.T) {
	t.Run("Unsigned", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x := solvent.BVS("x", 8)
		if err := s.Assert(
			solvent.UGT(x, solvent.BVV(10, 8)),
			solvent.ULT(x, solvent.BVV(200, 8)),
		); err != nil {
			t.Fatal(err)
		}

		if min, err := b.Min(x, nil, false, s, nil); err != nil {
			t.Fatal(err)
		} else if min != 11 {
			t.Fatalf("unexpected min: %d", min)
		}
		if max, err := b.Max(x, nil, false, s, nil); err != nil {
			t.Fatal(err)
		} else if max != 199 {
			t.Fatalf("unexpected max: %d", max)
		}
	})
	t.Run("Signed", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x := solvent.BVS("x", 8)
		if err := s.Assert(solvent.SLT(x, solvent.BVV(0, 8))); err != nil {
			t.Fatal(err)
		}

		// Signed extrema are reported as width-truncated two's complement.
		if max, err := b.Max(x, nil, true, s, nil); err != nil {
			t.Fatal(err)
		} else if max != 255 { // -1
			t.Fatalf("unexpected max: %d", max)
		}
		if min, err := b.Min(x, nil, true, s, nil); err != nil {
			t.Fatal(err)
		} else if min != 128 { // -128
			t.Fatalf("unexpected min: %d", min)
		}
	})
	t.Run("Extra", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)
		s := MustSolver(b)
		defer s.Close()

		x := solvent.BVS("x", 32)
		extra := []*solvent.Node{solvent.UGE(x, solvent.BVV(1000, 32))}
		if min, err := b.Min(x, extra, false, s, nil); err != nil {
			t.Fatal(err)
		} else if min != 1000 {
			t.Fatalf("unexpected min: %d", min)
		}
		// The extra constraint must not leak into the session.
		if min, err := b.Min(x, nil, false, s, nil); err != nil {
			t.Fatal(err)
		} else if min != 0 {
			t.Fatalf("unexpected min: %d", min)
		}
	})
}

func TestBackend_Simplify(t *testing.T) {
	t.Run("BoolPipeline", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		x := solvent.BVS("x", 8)
		n := solvent.And(solvent.BoolV(true), solvent.Eq(x, x))
		out, err := b.Simplify(n)
		if err != nil {
			t.Fatal(err)
		}
		if isTrue, err := b.IsTrue(out); err != nil {
			t.Fatal(err)
		} else if !isTrue {
			t.Fatalf("expected tautology to simplify to true, got %s", out)
		}
	})
	t.Run("Idempotent", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		n := solvent.ULT(solvent.BVS("x", 8), solvent.BVV(10, 8))
		once, err := b.Simplify(n)
		if err != nil {
			t.Fatal(err)
		}
		if once.SimplifyLevel != solvent.SimplifyFull {
			t.Fatal("expected full simplification mark")
		}
		twice, err := b.Simplify(once)
		if err != nil {
			t.Fatal(err)
		} else if twice != once {
			t.Fatalf("expected identical node, got %s", twice)
		}
	})
	t.Run("BVConstantFold", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		out, err := b.Simplify(solvent.Add(solvent.BVV(1, 8), solvent.BVV(2, 8)))
		if err != nil {
			t.Fatal(err)
		}
		if out.Op != solvent.OpBVV || out.Args[0].(uint64) != 3 {
			t.Fatalf("unexpected result: %s", out)
		}
	})
}

func TestBackend_IsTrueIsFalse(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)

	if isTrue, err := b.IsTrue(solvent.Eq(solvent.BVV(1, 8), solvent.BVV(1, 8))); err != nil {
		t.Fatal(err)
	} else if !isTrue {
		t.Fatal("expected true")
	}
	if isFalse, err := b.IsFalse(solvent.Eq(solvent.BVV(1, 8), solvent.BVV(2, 8))); err != nil {
		t.Fatal(err)
	} else if !isFalse {
		t.Fatal("expected false")
	}
	if isTrue, err := b.IsTrue(solvent.Eq(solvent.BVS("x", 8), solvent.BVV(1, 8))); err != nil {
		t.Fatal(err)
	} else if isTrue {
		t.Fatal("expected symbolic equality to not be constant true")
	}
}

func TestSession_PushPop(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)
	s := MustSolver(b)
	defer s.Close()

	x := solvent.BVS("x", 8)
	if err := s.Assert(solvent.UGT(x, solvent.BVV(10, 8))); err != nil {
		t.Fatal(err)
	}

	if err := s.Push(); err != nil {
		t.Fatal(err)
	} else if s.Depth() != 1 {
		t.Fatalf("unexpected depth: %d", s.Depth())
	}
	if err := s.Assert(solvent.ULT(x, solvent.BVV(5, 8))); err != nil {
		t.Fatal(err)
	}
	if sat, err := b.Satisfiable(nil, s, nil); err != nil {
		t.Fatal(err)
	} else if sat {
		t.Fatal("expected unsatisfiable")
	}

	if err := s.Pop(); err != nil {
		t.Fatal(err)
	} else if s.Depth() != 0 {
		t.Fatalf("unexpected depth: %d", s.Depth())
	}
	if sat, err := b.Satisfiable(nil, s, nil); err != nil {
		t.Fatal(err)
	} else if !sat {
		t.Fatal("expected satisfiable")
	}

	if err := s.Pop(); err == nil {
		t.Fatal("expected error popping below depth zero")
	}
}

func TestSession_UnsatCore(t *testing.T) {
	b := z3.NewBackend()
	defer MustCloseBackend(b)
	s := MustSolver(b)
	defer s.Close()

	x := solvent.BVS("x", 8)
	low := solvent.ULT(x, solvent.BVV(1, 8))
	high := solvent.UGT(x, solvent.BVV(1, 8))
	if err := s.AssertTracked(low, high); err != nil {
		t.Fatal(err)
	}

	if sat, err := b.Satisfiable(nil, s, nil); err != nil {
		t.Fatal(err)
	} else if sat {
		t.Fatal("expected unsatisfiable")
	}

	core, err := s.UnsatCore()
	if err != nil {
		t.Fatal(err)
	} else if len(core) == 0 {
		t.Fatal("expected non-empty core")
	}
	for _, c := range core {
		if c != low && c != high {
			t.Fatalf("unexpected core member: %s", c)
		}
	}
}
