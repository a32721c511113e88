package z3

/*
#include <z3.h>
*/
import "C"

import (
	"fmt"
	"math/big"

	"github.com/solventlabs/solvent"
)

// Convert lowers a node to a native term. Results are memoized per node, so
// shared subtrees are lowered once.
func (b *Backend) Convert(n *solvent.Node) (solvent.Term, error) {
	ast, err := b.convert(n)
	if err != nil {
		return nil, err
	}
	return ast, nil
}

func (b *Backend) convert(n *solvent.Node) (C.Z3_ast, error) {
	if ast, ok := b.convCache[n]; ok {
		return ast, nil
	}

	ast, err := b.lower(n)
	if err != nil {
		return nil, err
	}
	if err := b.ctx.err("convert " + string(n.Op)); err != nil {
		return nil, err
	}

	b.convCache[n] = ast
	// Seeding the reverse cache makes abstraction of a lowered term return
	// the original node, annotations included.
	b.astCache.add(ast, n)
	return ast, nil
}

// lower dispatches on the operation tag. Child nodes are converted in
// argument order before the native constructor runs.
func (b *Backend) lower(n *solvent.Node) (C.Z3_ast, error) {
	raw := b.ctx.raw

	children := make([]C.Z3_ast, 0, len(n.Args))
	for _, arg := range n.Args {
		child, ok := arg.(*solvent.Node)
		if !ok {
			continue
		}
		ast, err := b.convert(child)
		if err != nil {
			return nil, err
		}
		children = append(children, ast)
	}

	if solvent.IsSymbol(n.Op) {
		return b.lowerSymbol(n)
	}
	if solvent.IsReducible(n.Op) {
		return b.reduce(n.Op, children)
	}

	switch n.Op {
	case solvent.OpBVV:
		return b.bvNumeral(n.Args[0], n.Length)
	case solvent.OpBoolV:
		if n.Args[0].(bool) {
			return C.Z3_mk_true(raw), nil
		}
		return C.Z3_mk_false(raw), nil
	case solvent.OpFPV:
		sort, err := b.fpSort(n.Args[1].(solvent.FSort))
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_fpa_numeral_double(raw, C.double(n.Args[0].(float64)), sort), nil
	case solvent.OpStringV:
		cs := C.CString(n.Args[0].(string))
		defer cfree(cs)
		return C.Z3_mk_string(raw, cs), nil

	case solvent.OpUDiv:
		return C.Z3_mk_bvudiv(raw, children[0], children[1]), nil
	case solvent.OpSDiv:
		return C.Z3_mk_bvsdiv(raw, children[0], children[1]), nil
	case solvent.OpURem:
		return C.Z3_mk_bvurem(raw, children[0], children[1]), nil
	case solvent.OpSRem:
		return C.Z3_mk_bvsrem(raw, children[0], children[1]), nil
	case solvent.OpNeg:
		return C.Z3_mk_bvneg(raw, children[0]), nil
	case solvent.OpBVNot:
		return C.Z3_mk_bvnot(raw, children[0]), nil
	case solvent.OpShL:
		return C.Z3_mk_bvshl(raw, children[0], children[1]), nil
	case solvent.OpLShR:
		return C.Z3_mk_bvlshr(raw, children[0], children[1]), nil
	case solvent.OpAShR:
		return C.Z3_mk_bvashr(raw, children[0], children[1]), nil
	case solvent.OpRotateLeft:
		return C.Z3_mk_ext_rotate_left(raw, children[0], children[1]), nil
	case solvent.OpRotateRight:
		return C.Z3_mk_ext_rotate_right(raw, children[0], children[1]), nil
	case solvent.OpReverse:
		if n.Length > 8 && n.Length%8 != 0 {
			return nil, &solvent.BackendError{Msg: fmt.Sprintf("cannot byte-reverse a %d-bit value", n.Length)}
		}
		return b.reverse(children[0], n.Length), nil
	case solvent.OpRepeat:
		return C.Z3_mk_repeat(raw, C.uint(n.Args[0].(int)), children[0]), nil
	case solvent.OpConcat:
		ast := children[0]
		for _, child := range children[1:] {
			ast = C.Z3_mk_concat(raw, ast, child)
		}
		return ast, nil
	case solvent.OpExtract:
		hi, lo := n.Args[0].(int), n.Args[1].(int)
		return C.Z3_mk_extract(raw, C.uint(hi), C.uint(lo), children[0]), nil
	case solvent.OpZeroExt:
		return C.Z3_mk_zero_ext(raw, C.uint(n.Args[0].(int)), children[0]), nil
	case solvent.OpSignExt:
		return C.Z3_mk_sign_ext(raw, C.uint(n.Args[0].(int)), children[0]), nil

	case solvent.OpAnd:
		return C.Z3_mk_and(raw, C.uint(len(children)), &children[0]), nil
	case solvent.OpOr:
		return C.Z3_mk_or(raw, C.uint(len(children)), &children[0]), nil
	case solvent.OpXor:
		ast := children[0]
		for _, child := range children[1:] {
			ast = C.Z3_mk_xor(raw, ast, child)
		}
		return ast, nil
	case solvent.OpNot:
		return C.Z3_mk_not(raw, children[0]), nil
	case solvent.OpEq:
		return C.Z3_mk_eq(raw, children[0], children[1]), nil
	case solvent.OpNe:
		// Distinct keeps the disequality first class, so an abstracted term
		// carries the same tag instead of not(eq).
		return C.Z3_mk_distinct(raw, C.uint(len(children)), &children[0]), nil
	case solvent.OpULT:
		return C.Z3_mk_bvult(raw, children[0], children[1]), nil
	case solvent.OpULE:
		return C.Z3_mk_bvule(raw, children[0], children[1]), nil
	case solvent.OpUGT:
		return C.Z3_mk_bvugt(raw, children[0], children[1]), nil
	case solvent.OpUGE:
		return C.Z3_mk_bvuge(raw, children[0], children[1]), nil
	case solvent.OpSLT:
		return C.Z3_mk_bvslt(raw, children[0], children[1]), nil
	case solvent.OpSLE:
		return C.Z3_mk_bvsle(raw, children[0], children[1]), nil
	case solvent.OpSGT:
		return C.Z3_mk_bvsgt(raw, children[0], children[1]), nil
	case solvent.OpSGE:
		return C.Z3_mk_bvsge(raw, children[0], children[1]), nil
	case solvent.OpIf:
		return C.Z3_mk_ite(raw, children[0], children[1], children[2]), nil

	case solvent.OpFPAdd:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_add(raw, rm, children[0], children[1]), nil
	case solvent.OpFPSub:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_sub(raw, rm, children[0], children[1]), nil
	case solvent.OpFPMul:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_mul(raw, rm, children[0], children[1]), nil
	case solvent.OpFPDiv:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_div(raw, rm, children[0], children[1]), nil
	case solvent.OpFPSqrt:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_sqrt(raw, rm, children[0]), nil
	case solvent.OpFPNeg:
		return C.Z3_mk_fpa_neg(raw, children[0]), nil
	case solvent.OpFPAbs:
		return C.Z3_mk_fpa_abs(raw, children[0]), nil
	case solvent.OpFPLT:
		return C.Z3_mk_fpa_lt(raw, children[0], children[1]), nil
	case solvent.OpFPLE:
		return C.Z3_mk_fpa_leq(raw, children[0], children[1]), nil
	case solvent.OpFPGT:
		return C.Z3_mk_fpa_gt(raw, children[0], children[1]), nil
	case solvent.OpFPGE:
		return C.Z3_mk_fpa_geq(raw, children[0], children[1]), nil
	case solvent.OpFPEq:
		return C.Z3_mk_fpa_eq(raw, children[0], children[1]), nil
	case solvent.OpFPIsNaN:
		return C.Z3_mk_fpa_is_nan(raw, children[0]), nil
	case solvent.OpFPIsInf:
		return C.Z3_mk_fpa_is_infinite(raw, children[0]), nil
	case solvent.OpFPToFP:
		return b.lowerFPToFP(n, children)
	case solvent.OpFPToFPUnsigned:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		sort, err := b.fpSort(n.Args[2].(solvent.FSort))
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_fpa_to_fp_unsigned(raw, rm, children[0], sort), nil
	case solvent.OpFPToSBV:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_to_sbv(raw, rm, children[0], C.uint(n.Length)), nil
	case solvent.OpFPToUBV:
		rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
		return C.Z3_mk_fpa_to_ubv(raw, rm, children[0], C.uint(n.Length)), nil
	case solvent.OpFPToIEEEBV:
		return C.Z3_mk_fpa_to_ieee_bv(raw, children[0]), nil

	case solvent.OpStrConcat:
		return C.Z3_mk_seq_concat(raw, C.uint(len(children)), &children[0]), nil
	case solvent.OpStrSubstr:
		// Argument order is (start, count, string); the native call wants the
		// string first and Int offsets.
		start := C.Z3_mk_bv2int(raw, children[0], false)
		count := C.Z3_mk_bv2int(raw, children[1], false)
		return C.Z3_mk_seq_extract(raw, children[2], start, count), nil
	case solvent.OpStrLen:
		return C.Z3_mk_int2bv(raw, C.uint(n.Length), C.Z3_mk_seq_length(raw, children[0])), nil
	case solvent.OpStrReplace:
		return C.Z3_mk_seq_replace(raw, children[0], children[1], children[2]), nil
	case solvent.OpStrContains:
		return C.Z3_mk_seq_contains(raw, children[0], children[1]), nil
	case solvent.OpStrPrefixOf:
		return C.Z3_mk_seq_prefix(raw, children[0], children[1]), nil
	case solvent.OpStrSuffixOf:
		return C.Z3_mk_seq_suffix(raw, children[0], children[1]), nil
	case solvent.OpStrIndexOf:
		offset := C.Z3_mk_bv2int(raw, children[2], false)
		index := C.Z3_mk_seq_index(raw, children[0], children[1], offset)
		return C.Z3_mk_int2bv(raw, C.uint(n.Length), index), nil
	case solvent.OpStrToInt:
		return C.Z3_mk_int2bv(raw, C.uint(n.Length), C.Z3_mk_str_to_int(raw, children[0])), nil
	case solvent.OpIntToStr:
		return C.Z3_mk_int_to_str(raw, C.Z3_mk_bv2int(raw, children[0], false)), nil
	}

	return nil, &solvent.UnknownOperatorError{Op: n.Op}
}

func (b *Backend) lowerSymbol(n *solvent.Node) (C.Z3_ast, error) {
	name := n.Args[0].(string)
	var sort C.Z3_sort
	switch n.Op {
	case solvent.OpBVS:
		sort = C.Z3_mk_bv_sort(b.ctx.raw, C.uint(n.Length))
	case solvent.OpBoolS:
		sort = C.Z3_mk_bool_sort(b.ctx.raw)
	case solvent.OpFPS:
		s, err := b.fpSort(n.Args[1].(solvent.FSort))
		if err != nil {
			return nil, err
		}
		sort = s
	case solvent.OpStringS:
		sort = C.Z3_mk_string_sort(b.ctx.raw)
	default:
		return nil, &solvent.UnknownOperatorError{Op: n.Op}
	}

	// The native constant keeps only name and sort; everything else needed to
	// rebuild the symbol during abstraction lives in the side-table.
	b.symData[name] = symbolData{args: n.Args, annotations: n.Annotations}
	return C.Z3_mk_const(b.ctx.raw, b.ctx.symbol(name), sort), nil
}

// reduce lowers an n-ary reducible operation as a left fold of the binary
// native constructor.
func (b *Backend) reduce(op solvent.Op, children []C.Z3_ast) (C.Z3_ast, error) {
	var mk func(a, v C.Z3_ast) C.Z3_ast
	raw := b.ctx.raw
	switch op {
	case solvent.OpAdd:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvadd(raw, a, v) }
	case solvent.OpSub:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvsub(raw, a, v) }
	case solvent.OpMul:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvmul(raw, a, v) }
	case solvent.OpBVAnd:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvand(raw, a, v) }
	case solvent.OpBVOr:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvor(raw, a, v) }
	case solvent.OpBVXor:
		mk = func(a, v C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvxor(raw, a, v) }
	default:
		return nil, &solvent.UnknownOperatorError{Op: op}
	}

	ast := children[0]
	for _, child := range children[1:] {
		ast = mk(ast, child)
	}
	return ast, nil
}

// reverse flips the byte order of a bitvector term. Single-byte values are
// returned unchanged.
func (b *Backend) reverse(ast C.Z3_ast, width uint) C.Z3_ast {
	if width <= 8 {
		return ast
	}
	raw := b.ctx.raw
	out := C.Z3_mk_extract(raw, 7, 0, ast)
	for lo := uint(8); lo < width; lo += 8 {
		out = C.Z3_mk_concat(raw, out, C.Z3_mk_extract(raw, C.uint(lo+7), C.uint(lo), ast))
	}
	return out
}

func (b *Backend) lowerFPToFP(n *solvent.Node, children []C.Z3_ast) (C.Z3_ast, error) {
	raw := b.ctx.raw
	// Two forms: (bv, sort) reinterprets IEEE bits, (rm, value, sort)
	// converts with rounding.
	if len(n.Args) == 2 {
		sort, err := b.fpSort(n.Args[1].(solvent.FSort))
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_fpa_to_fp_bv(raw, children[0], sort), nil
	}

	rm := b.roundingMode(n.Args[0].(solvent.RoundingMode))
	sort, err := b.fpSort(n.Args[2].(solvent.FSort))
	if err != nil {
		return nil, err
	}
	value := n.Args[1].(*solvent.Node)
	switch value.Category() {
	case solvent.CategoryFP:
		return C.Z3_mk_fpa_to_fp_float(raw, rm, children[0], sort), nil
	case solvent.CategoryBV:
		return C.Z3_mk_fpa_to_fp_signed(raw, rm, children[0], sort), nil
	default:
		return nil, &solvent.BackendError{Msg: fmt.Sprintf("cannot convert %s value to floating point", value.Category())}
	}
}

func (b *Backend) bvNumeral(value any, width uint) (C.Z3_ast, error) {
	sort := C.Z3_mk_bv_sort(b.ctx.raw, C.uint(width))
	switch v := value.(type) {
	case uint64:
		if width <= 64 {
			return C.Z3_mk_unsigned_int64(b.ctx.raw, C.uint64_t(v), sort), nil
		}
		return b.numeralString(new(big.Int).SetUint64(v), sort)
	case *big.Int:
		return b.numeralString(v, sort)
	default:
		return nil, &solvent.BackendError{
			Msg: fmt.Sprintf("bitvector literal value must be uint64 or *big.Int, got %T", value),
			Err: solvent.ErrMalformedLiteral,
		}
	}
}

func (b *Backend) numeralString(v *big.Int, sort C.Z3_sort) (C.Z3_ast, error) {
	cs := C.CString(v.Text(10))
	defer cfree(cs)
	ast := C.Z3_mk_numeral(b.ctx.raw, cs, sort)
	if err := b.ctx.err("Z3_mk_numeral"); err != nil {
		return nil, err
	}
	return ast, nil
}

func (b *Backend) fpSort(s solvent.FSort) (C.Z3_sort, error) {
	switch s {
	case solvent.FSortFloat:
		return C.Z3_mk_fpa_sort_single(b.ctx.raw), nil
	case solvent.FSortDouble:
		return C.Z3_mk_fpa_sort_double(b.ctx.raw), nil
	default:
		if s.EBits == 0 || s.SBits == 0 {
			return nil, &solvent.BackendError{Msg: fmt.Sprintf("invalid floating-point sort %s", s)}
		}
		return C.Z3_mk_fpa_sort(b.ctx.raw, C.uint(s.EBits), C.uint(s.SBits)), nil
	}
}

func (b *Backend) roundingMode(rm solvent.RoundingMode) C.Z3_ast {
	raw := b.ctx.raw
	switch rm {
	case solvent.RNA:
		return C.Z3_mk_fpa_round_nearest_ties_to_away(raw)
	case solvent.RTP:
		return C.Z3_mk_fpa_round_toward_positive(raw)
	case solvent.RTN:
		return C.Z3_mk_fpa_round_toward_negative(raw)
	case solvent.RTZ:
		return C.Z3_mk_fpa_round_toward_zero(raw)
	default:
		return C.Z3_mk_fpa_round_nearest_ties_to_even(raw)
	}
}
