package solvent_test

import (
	"errors"
	"testing"

	"github.com/solventlabs/solvent"
)

func TestOpInfo(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if category, polymorphic, err := solvent.OpInfo(solvent.OpAdd); err != nil {
			t.Fatal(err)
		} else if category != solvent.CategoryBV || polymorphic {
			t.Fatalf("unexpected info: %s/%v", category, polymorphic)
		}
	})
	t.Run("Polymorphic", func(t *testing.T) {
		if _, polymorphic, err := solvent.OpInfo(solvent.OpIf); err != nil {
			t.Fatal(err)
		} else if !polymorphic {
			t.Fatal("expected polymorphic")
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		var uerr *solvent.UnknownOperatorError
		if _, _, err := solvent.OpInfo(solvent.Op("Frobnicate")); !errors.As(err, &uerr) {
			t.Fatalf("unexpected error: %v", err)
		} else if uerr.Op != solvent.Op("Frobnicate") {
			t.Fatalf("unexpected op: %s", uerr.Op)
		}
	})
}

func TestIsReducible(t *testing.T) {
	for _, op := range []solvent.Op{solvent.OpAdd, solvent.OpSub, solvent.OpMul, solvent.OpBVAnd, solvent.OpBVOr, solvent.OpBVXor} {
		if !solvent.IsReducible(op) {
			t.Fatalf("expected %s to be reducible", op)
		}
	}
	for _, op := range []solvent.Op{solvent.OpUDiv, solvent.OpConcat, solvent.OpAnd} {
		if solvent.IsReducible(op) {
			t.Fatalf("expected %s to not be reducible", op)
		}
	}
}

func TestIsSymbol(t *testing.T) {
	for _, op := range []solvent.Op{solvent.OpBVS, solvent.OpBoolS, solvent.OpFPS, solvent.OpStringS} {
		if !solvent.IsSymbol(op) {
			t.Fatalf("expected %s to be a symbol", op)
		}
	}
	if solvent.IsSymbol(solvent.OpBVV) {
		t.Fatal("expected literal to not be a symbol")
	}
}
