package z3_test

import (
	"math/big"
	"testing"

	"github.com/solventlabs/solvent"
	"github.com/solventlabs/solvent/z3"
)

func TestBackend_RoundTrip(t *testing.T) {
	t.Run("Cached", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		n := solvent.Add(solvent.BVS("x", 32), solvent.BVV(1, 32))
		if out := MustAbstract(b, MustConvert(b, n)); out != n {
			t.Fatalf("unexpected round trip: %s", out)
		}
	})
	t.Run("AfterDownsize", func(t *testing.T) {
		// Downsizing clears the caches, so abstraction has to walk the native
		// term instead of hitting the seeded entry.
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		for _, tt := range []struct {
			name string
			node *solvent.Node
		}{
			{"Add", solvent.Add(solvent.BVS("x", 32), solvent.BVV(1, 32))},
			{"Nested", solvent.ULT(solvent.Mul(solvent.BVS("x", 8), solvent.BVV(3, 8)), solvent.BVS("y", 8))},
			{"Ne", solvent.Ne(solvent.BVS("x", 8), solvent.BVV(0, 8))},
			{"Extract", solvent.Extract(15, 8, solvent.BVS("x", 32))},
			{"ZeroExt", solvent.ZeroExt(24, solvent.BVS("x", 8))},
			{"SignExt", solvent.SignExt(24, solvent.BVS("x", 8))},
			{"If", solvent.If(solvent.BoolS("c"), solvent.BVV(1, 16), solvent.BVV(2, 16))},
			{"FPAdd", solvent.FPAdd(solvent.RNE, solvent.FPS("f", solvent.FSortDouble), solvent.FPV(1.5, solvent.FSortDouble))},
			{"FPToSBV", solvent.FPToSBV(solvent.RTZ, solvent.FPS("f", solvent.FSortFloat), 32)},
			{"StrLen", solvent.StrLen(solvent.StringS("s"))},
			{"StrContains", solvent.StrContains(solvent.StringS("s"), solvent.StringV("ab"))},
			{"BoolOps", solvent.And(solvent.BoolS("p"), solvent.Or(solvent.BoolS("q"), solvent.Not(solvent.BoolS("p"))))},
		} {
			t.Run(tt.name, func(t *testing.T) {
				term := MustConvert(b, tt.node)
				b.Downsize()
				if out := MustAbstract(b, term); out != tt.node {
					t.Fatalf("unexpected round trip: %s", out)
				}
			})
		}
	})
	t.Run("WideLiteral", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		value := new(big.Int).Lsh(big.NewInt(0xdead), 100)
		n := solvent.MustNew(solvent.OpBVV, value, uint(128))
		term := MustConvert(b, n)
		b.Downsize()
		if out := MustAbstract(b, term); out != n {
			t.Fatalf("unexpected round trip: %s", out)
		}
	})
	t.Run("AnnotationsSurvive", func(t *testing.T) {
		b := z3.NewBackend()
		defer MustCloseBackend(b)

		x := solvent.BVS("tagged", 8).Annotate(solvent.Annotation{Name: "region", Value: "heap"})
		term := MustConvert(b, x)
		b.Downsize()
		// The side-table is rebuilt on the next lowering of the symbol.
		MustConvert(b, x)
		if out := MustAbstract(b, term); out != x {
			t.Fatalf("expected annotations to survive, got %s", out)
		}
	})
}
