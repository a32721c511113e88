package solvent_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/solventlabs/solvent"
)

func TestNew_Interning(t *testing.T) {
	t.Run("SameArgs", func(t *testing.T) {
		a := solvent.Add(solvent.BVS("x", 32), solvent.BVV(1, 32))
		b := solvent.Add(solvent.BVS("x", 32), solvent.BVV(1, 32))
		if a != b {
			t.Fatalf("expected interned nodes to share identity:\n%s", spew.Sdump(a, b))
		}
	})
	t.Run("DifferentWidth", func(t *testing.T) {
		if solvent.BVS("x", 32) == solvent.BVS("x", 64) {
			t.Fatal("expected distinct nodes")
		}
	})
	t.Run("AnnotationsDistinguish", func(t *testing.T) {
		plain := solvent.BVS("x", 8)
		tagged := plain.Annotate(solvent.Annotation{Name: "region", Value: "stack"})
		if plain == tagged {
			t.Fatal("expected annotated node to be distinct")
		} else if tagged.Hash() == plain.Hash() {
			t.Fatal("expected annotated node hash to differ")
		}
	})
	t.Run("BigIntValue", func(t *testing.T) {
		v := new(big.Int).Lsh(big.NewInt(1), 100)
		a := solvent.MustNew(solvent.OpBVV, v, uint(128))
		b := solvent.MustNew(solvent.OpBVV, new(big.Int).Lsh(big.NewInt(1), 100), uint(128))
		if a != b {
			t.Fatal("expected equal big literals to intern together")
		}
	})
}

func TestNew_Width(t *testing.T) {
	for _, tt := range []struct {
		name  string
		node  *solvent.Node
		width uint
	}{
		{"BVV", solvent.BVV(7, 8), 8},
		{"Add", solvent.Add(solvent.BVS("x", 32), solvent.BVV(1, 32)), 32},
		{"Concat", solvent.Concat(solvent.BVV(1, 8), solvent.BVV(2, 16)), 24},
		{"Extract", solvent.Extract(15, 8, solvent.BVS("x", 32)), 8},
		{"ZeroExt", solvent.ZeroExt(24, solvent.BVV(1, 8)), 32},
		{"SignExt", solvent.SignExt(8, solvent.BVS("x", 8)), 16},
		{"If", solvent.If(solvent.BoolS("c"), solvent.BVV(1, 16), solvent.BVV(2, 16)), 16},
		{"Eq", solvent.Eq(solvent.BVV(1, 8), solvent.BVV(2, 8)), 0},
		{"FPV", solvent.FPV(1.5, solvent.FSortDouble), 64},
		{"FPToSBV", solvent.FPToSBV(solvent.RNE, solvent.FPS("f", solvent.FSortFloat), 32), 32},
		{"StrLen", solvent.StrLen(solvent.StringV("ab")), 64},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node.Length != tt.width {
				t.Fatalf("unexpected width: %d", tt.node.Length)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("UnknownOp", func(t *testing.T) {
		var uerr *solvent.UnknownOperatorError
		if _, err := solvent.New(solvent.Op("Bogus")); !errors.As(err, &uerr) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("NilLiteral", func(t *testing.T) {
		if _, err := solvent.New(solvent.OpBVV, nil, uint(8)); !errors.Is(err, solvent.ErrMalformedLiteral) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ExtractBoundsReversed", func(t *testing.T) {
		if _, err := solvent.New(solvent.OpExtract, 0, 7, solvent.BVS("x", 8)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestNode_Variables(t *testing.T) {
	x, y := solvent.BVS("x", 32), solvent.BVS("y", 32)
	expr := solvent.Add(x, solvent.Mul(y, solvent.BVV(2, 32)), x)

	if diff := cmp.Diff([]string{"x", "y"}, expr.Variables()); diff != "" {
		t.Fatal(diff)
	}
	if !expr.Symbolic {
		t.Fatal("expected symbolic")
	}
	if !expr.HasVariable("x") || expr.HasVariable("z") {
		t.Fatal("unexpected variable membership")
	}
	if solvent.BVV(1, 8).Symbolic {
		t.Fatal("expected concrete literal")
	}
}

func TestNode_Category(t *testing.T) {
	t.Run("BV", func(t *testing.T) {
		if c := solvent.BVS("x", 8).Category(); c != solvent.CategoryBV {
			t.Fatalf("unexpected category: %s", c)
		}
	})
	t.Run("Bool", func(t *testing.T) {
		if c := solvent.Eq(solvent.BVV(1, 8), solvent.BVV(1, 8)).Category(); c != solvent.CategoryBool {
			t.Fatalf("unexpected category: %s", c)
		}
	})
	t.Run("IfPolymorphic", func(t *testing.T) {
		n := solvent.If(solvent.BoolS("c"), solvent.FPV(1, solvent.FSortFloat), solvent.FPV(2, solvent.FSortFloat))
		if c := n.Category(); c != solvent.CategoryFP {
			t.Fatalf("unexpected category: %s", c)
		}
	})
}

func TestNode_Name(t *testing.T) {
	if name := solvent.BVS("flag", 1).Name(); name != "flag" {
		t.Fatalf("unexpected name: %q", name)
	}
	if name := solvent.BVV(1, 8).Name(); name != "" {
		t.Fatalf("unexpected name: %q", name)
	}
}

func TestNode_String(t *testing.T) {
	n := solvent.Add(solvent.BVS("x", 8), solvent.BVV(1, 8))
	if got, want := n.String(), "(Add (BVS x 8) (BVV 1 8))"; got != want {
		t.Fatalf("unexpected rendering: %s", got)
	}
}

func TestNode_MarkSimplified(t *testing.T) {
	n := solvent.Not(solvent.BoolS("p"))
	n.MarkSimplified(solvent.SimplifyFull)
	n.MarkSimplified(solvent.SimplifyLight) // must not regress
	if n.SimplifyLevel != solvent.SimplifyFull {
		t.Fatalf("unexpected level: %d", n.SimplifyLevel)
	}
}
