package z3

/*
#include <z3.h>
*/
import "C"

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/solventlabs/solvent"
)

// Abstract lifts a native term back into a node. Results are memoized by
// term identity, so abstracting a model or a simplified term repeatedly is
// cheap.
func (b *Backend) Abstract(t solvent.Term) (*solvent.Node, error) {
	ast, ok := t.(C.Z3_ast)
	if !ok {
		return nil, &solvent.BackendError{Msg: fmt.Sprintf("term is not a native handle: %T", t)}
	}
	v, err := b.abstractArg(ast)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*solvent.Node)
	if !ok {
		return nil, &solvent.BackendError{Msg: fmt.Sprintf("term abstracts to a bare %T, not an expression", v)}
	}
	return n, nil
}

// abstractArg lifts one native term. The result is a *Node except for
// rounding-mode terms, which become RoundingMode primitives so they can slot
// directly into floating-point argument lists.
func (b *Backend) abstractArg(ast C.Z3_ast) (any, error) {
	if n, ok := b.astCache.get(ast); ok {
		return n, nil
	}

	v, err := b.abstractInternal(ast)
	if err != nil {
		return nil, err
	}
	if n, ok := v.(*solvent.Node); ok {
		b.astCache.add(ast, n)
	}
	return v, nil
}

func (b *Backend) abstractInternal(ast C.Z3_ast) (any, error) {
	raw := b.ctx.raw

	switch kind := C.Z3_get_ast_kind(raw, ast); kind {
	case C.Z3_NUMERAL_AST:
		return b.abstractNumeral(ast)
	case C.Z3_APP_AST:
		// handled below
	default:
		return nil, &solvent.BackendError{
			Msg: fmt.Sprintf("cannot abstract ast kind %d", int(kind)),
			Err: solvent.ErrUnsupportedConstruct,
		}
	}

	if C.Z3_is_string(raw, ast) {
		return solvent.New(solvent.OpStringV, b.stringValue(ast))
	}

	app := C.Z3_to_app(raw, ast)
	decl := C.Z3_get_app_decl(raw, app)
	declKind := C.Z3_get_decl_kind(raw, decl)
	numArgs := int(C.Z3_get_app_num_args(raw, app))

	switch declKind {
	case C.Z3_OP_TRUE:
		return solvent.New(solvent.OpBoolV, true)
	case C.Z3_OP_FALSE:
		return solvent.New(solvent.OpBoolV, false)

	case C.Z3_OP_UNINTERPRETED:
		return b.abstractSymbol(ast, decl, numArgs)

	case C.Z3_OP_FPA_NUM, C.Z3_OP_FPA_PLUS_ZERO, C.Z3_OP_FPA_MINUS_ZERO,
		C.Z3_OP_FPA_PLUS_INF, C.Z3_OP_FPA_MINUS_INF, C.Z3_OP_FPA_NAN:
		value, err := b.fpValue(ast, declKind)
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpFPV, value, b.fpSortOf(ast))

	case C.Z3_OP_FPA_RM_NEAREST_TIES_TO_EVEN:
		return solvent.RNE, nil
	case C.Z3_OP_FPA_RM_NEAREST_TIES_TO_AWAY:
		return solvent.RNA, nil
	case C.Z3_OP_FPA_RM_TOWARD_POSITIVE:
		return solvent.RTP, nil
	case C.Z3_OP_FPA_RM_TOWARD_NEGATIVE:
		return solvent.RTN, nil
	case C.Z3_OP_FPA_RM_TOWARD_ZERO:
		return solvent.RTZ, nil

	case C.Z3_OP_EXTRACT:
		hi := int(C.Z3_get_decl_int_parameter(raw, decl, 0))
		lo := int(C.Z3_get_decl_int_parameter(raw, decl, 1))
		child, err := b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpExtract, hi, lo, child)
	case C.Z3_OP_SIGN_EXT, C.Z3_OP_ZERO_EXT:
		ext := int(C.Z3_get_decl_int_parameter(raw, decl, 0))
		child, err := b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		op := solvent.OpSignExt
		if declKind == C.Z3_OP_ZERO_EXT {
			op = solvent.OpZeroExt
		}
		return solvent.New(op, ext, child)
	case C.Z3_OP_REPEAT:
		times := int(C.Z3_get_decl_int_parameter(raw, decl, 0))
		child, err := b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpRepeat, times, child)
	case C.Z3_OP_ROTATE_LEFT, C.Z3_OP_ROTATE_RIGHT:
		// Constant rotations come back as a parameterized declaration; fold
		// the parameter into a literal shift operand.
		amount := int(C.Z3_get_decl_int_parameter(raw, decl, 0))
		v, err := b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		child := v.(*solvent.Node)
		op := solvent.OpRotateLeft
		if declKind == C.Z3_OP_ROTATE_RIGHT {
			op = solvent.OpRotateRight
		}
		shift := solvent.BVV(uint64(amount), child.Length)
		return solvent.New(op, child, shift)

	case C.Z3_OP_FPA_TO_FP:
		return b.abstractFPToFP(app, numArgs)
	case C.Z3_OP_FPA_TO_FP_UNSIGNED:
		args, err := b.abstractArgs(app, numArgs)
		if err != nil {
			return nil, err
		}
		args = append(args, b.fpSortOf(ast))
		return solvent.New(solvent.OpFPToFPUnsigned, args...)
	case C.Z3_OP_FPA_TO_SBV, C.Z3_OP_FPA_TO_UBV:
		args, err := b.abstractArgs(app, numArgs)
		if err != nil {
			return nil, err
		}
		sort := C.Z3_get_sort(raw, C.Z3_app_to_ast(raw, app))
		args = append(args, uint(C.Z3_get_bv_sort_size(raw, sort)))
		op := solvent.OpFPToSBV
		if declKind == C.Z3_OP_FPA_TO_UBV {
			op = solvent.OpFPToUBV
		}
		return solvent.New(op, args...)

	case C.Z3_OP_INT2BV:
		return b.abstractInt2BV(app)
	case C.Z3_OP_BV2INT:
		// Only produced by this package's own string encodings; transparent.
		return b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
	case C.Z3_OP_SEQ_EXTRACT:
		s, err := b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		start, err := b.abstractIntOperand(C.Z3_get_app_arg(raw, app, 1))
		if err != nil {
			return nil, err
		}
		count, err := b.abstractIntOperand(C.Z3_get_app_arg(raw, app, 2))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpStrSubstr, start, count, s)
	case C.Z3_OP_INT_TO_STR:
		v, err := b.abstractIntOperand(C.Z3_get_app_arg(raw, app, 0))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpIntToStr, v)
	}

	op, ok := opOfDeclKind(declKind)
	if !ok {
		name := b.ctx.symbolString(C.Z3_get_decl_name(raw, decl))
		return nil, &solvent.UnknownOperatorError{Decl: name}
	}
	args, err := b.abstractArgs(app, numArgs)
	if err != nil {
		return nil, err
	}
	return solvent.New(op, args...)
}

func (b *Backend) abstractArgs(app C.Z3_app, numArgs int) ([]any, error) {
	args := make([]any, numArgs)
	for i := 0; i < numArgs; i++ {
		v, err := b.abstractArg(C.Z3_get_app_arg(b.ctx.raw, app, C.uint(i)))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// abstractNumeral handles bare numeral terms, which for this package's sorts
// are always bitvectors.
func (b *Backend) abstractNumeral(ast C.Z3_ast) (*solvent.Node, error) {
	raw := b.ctx.raw
	sort := C.Z3_get_sort(raw, ast)
	if C.Z3_get_sort_kind(raw, sort) != C.Z3_BV_SORT {
		return nil, &solvent.BackendError{
			Msg: "numeral of unsupported sort",
			Err: solvent.ErrUnsupportedConstruct,
		}
	}

	width := uint(C.Z3_get_bv_sort_size(raw, sort))
	value, err := b.bvNumeralValue(ast, width)
	if err != nil {
		return nil, err
	}
	return solvent.New(solvent.OpBVV, value, width)
}

// bvNumeralValue reads a bitvector numeral as uint64 when it fits and
// *big.Int otherwise.
func (b *Backend) bvNumeralValue(ast C.Z3_ast, width uint) (any, error) {
	raw := b.ctx.raw
	if width <= 64 {
		var v C.uint64_t
		if C.Z3_get_numeral_uint64(raw, ast, &v) {
			return uint64(v), nil
		}
	}
	text := C.GoString(C.Z3_get_numeral_string(raw, ast))
	if err := b.ctx.err("Z3_get_numeral_string"); err != nil {
		return nil, err
	}
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, &solvent.BackendError{Msg: fmt.Sprintf("unparsable numeral %q", text), Err: solvent.ErrMalformedLiteral}
	}
	return value, nil
}

func (b *Backend) abstractSymbol(ast C.Z3_ast, decl C.Z3_func_decl, numArgs int) (*solvent.Node, error) {
	raw := b.ctx.raw
	if numArgs != 0 {
		name := b.ctx.symbolString(C.Z3_get_decl_name(raw, decl))
		return nil, &solvent.BackendError{
			Msg: fmt.Sprintf("uninterpreted function %s", name),
			Err: solvent.ErrUnsupportedConstruct,
		}
	}

	name := b.ctx.symbolString(C.Z3_get_decl_name(raw, decl))
	if data, ok := b.symData[name]; ok {
		return solvent.NewAnnotated(symbolOp(C.Z3_get_sort_kind(raw, C.Z3_get_sort(raw, ast))), data.args, data.annotations)
	}

	// A constant this backend never lowered: reconstruct from the sort alone.
	sort := C.Z3_get_sort(raw, ast)
	switch C.Z3_get_sort_kind(raw, sort) {
	case C.Z3_BV_SORT:
		return solvent.New(solvent.OpBVS, name, uint(C.Z3_get_bv_sort_size(raw, sort)))
	case C.Z3_BOOL_SORT:
		return solvent.New(solvent.OpBoolS, name)
	case C.Z3_FLOATING_POINT_SORT:
		return solvent.New(solvent.OpFPS, name, b.fpSortOf(ast))
	case C.Z3_SEQ_SORT:
		return solvent.New(solvent.OpStringS, name)
	default:
		return nil, &solvent.BackendError{
			Msg: fmt.Sprintf("constant %s of unsupported sort", name),
			Err: solvent.ErrUnsupportedConstruct,
		}
	}
}

func symbolOp(kind C.Z3_sort_kind) solvent.Op {
	switch kind {
	case C.Z3_BOOL_SORT:
		return solvent.OpBoolS
	case C.Z3_FLOATING_POINT_SORT:
		return solvent.OpFPS
	case C.Z3_SEQ_SORT:
		return solvent.OpStringS
	default:
		return solvent.OpBVS
	}
}

// abstractFPToFP distinguishes the conversion forms sharing one declaration
// kind: one argument reinterprets IEEE bits, two arguments convert a float
// or signed bitvector with rounding. The target sort always comes from the
// result.
func (b *Backend) abstractFPToFP(app C.Z3_app, numArgs int) (*solvent.Node, error) {
	raw := b.ctx.raw
	target := b.fpSortOf(C.Z3_app_to_ast(raw, app))

	args, err := b.abstractArgs(app, numArgs)
	if err != nil {
		return nil, err
	}
	args = append(args, target)
	return solvent.New(solvent.OpFPToFP, args...)
}

// abstractInt2BV recovers the string operations this package encodes through
// integer conversion.
func (b *Backend) abstractInt2BV(app C.Z3_app) (*solvent.Node, error) {
	raw := b.ctx.raw
	inner := C.Z3_get_app_arg(raw, app, 0)
	if C.Z3_get_ast_kind(raw, inner) != C.Z3_APP_AST {
		return nil, &solvent.BackendError{
			Msg: "integer conversion outside a string encoding",
			Err: solvent.ErrUnsupportedConstruct,
		}
	}

	innerApp := C.Z3_to_app(raw, inner)
	switch C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, innerApp)) {
	case C.Z3_OP_SEQ_LENGTH:
		s, err := b.abstractArg(C.Z3_get_app_arg(raw, innerApp, 0))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpStrLen, s)
	case C.Z3_OP_STR_TO_INT:
		s, err := b.abstractArg(C.Z3_get_app_arg(raw, innerApp, 0))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpStrToInt, s)
	case C.Z3_OP_SEQ_INDEX:
		s, err := b.abstractArg(C.Z3_get_app_arg(raw, innerApp, 0))
		if err != nil {
			return nil, err
		}
		sub, err := b.abstractArg(C.Z3_get_app_arg(raw, innerApp, 1))
		if err != nil {
			return nil, err
		}
		offset, err := b.abstractIntOperand(C.Z3_get_app_arg(raw, innerApp, 2))
		if err != nil {
			return nil, err
		}
		return solvent.New(solvent.OpStrIndexOf, s, sub, offset)
	default:
		return nil, &solvent.BackendError{
			Msg: "integer conversion outside a string encoding",
			Err: solvent.ErrUnsupportedConstruct,
		}
	}
}

// abstractIntOperand lifts an Int-sorted operand of a string operation back
// to the bitvector it wraps.
func (b *Backend) abstractIntOperand(ast C.Z3_ast) (any, error) {
	raw := b.ctx.raw
	if C.Z3_get_ast_kind(raw, ast) == C.Z3_APP_AST {
		app := C.Z3_to_app(raw, ast)
		if C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, app)) == C.Z3_OP_BV2INT {
			return b.abstractArg(C.Z3_get_app_arg(raw, app, 0))
		}
	}
	return nil, &solvent.BackendError{
		Msg: "integer operand outside a string encoding",
		Err: solvent.ErrUnsupportedConstruct,
	}
}

//
// Primitive extraction
//

// abstractToPrimitive reads a fully evaluated model term as a Go value:
// uint64 or *big.Int for bitvectors, bool, float64, or string. Model
// evaluation with completion can still hand back two non-literal shapes, a
// concatenation of (possibly negated) word numerals and an IEEE
// reinterpretation of a bitvector, and both are folded here.
func (b *Backend) abstractToPrimitive(ast C.Z3_ast) (any, error) {
	raw := b.ctx.raw

	switch C.Z3_get_ast_kind(raw, ast) {
	case C.Z3_NUMERAL_AST:
		sort := C.Z3_get_sort(raw, ast)
		if C.Z3_get_sort_kind(raw, sort) != C.Z3_BV_SORT {
			return nil, &solvent.BackendError{Msg: "model value of unsupported numeral sort", Err: solvent.ErrUnsupportedConstruct}
		}
		return b.bvNumeralValue(ast, uint(C.Z3_get_bv_sort_size(raw, sort)))
	case C.Z3_APP_AST:
		// handled below
	default:
		return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
	}

	if C.Z3_is_string(raw, ast) {
		return b.stringValue(ast), nil
	}

	app := C.Z3_to_app(raw, ast)
	declKind := C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, app))

	switch declKind {
	case C.Z3_OP_TRUE:
		return true, nil
	case C.Z3_OP_FALSE:
		return false, nil
	case C.Z3_OP_FPA_NUM, C.Z3_OP_FPA_PLUS_ZERO, C.Z3_OP_FPA_MINUS_ZERO,
		C.Z3_OP_FPA_PLUS_INF, C.Z3_OP_FPA_MINUS_INF, C.Z3_OP_FPA_NAN:
		return b.fpValue(ast, declKind)
	case C.Z3_OP_CONCAT:
		return b.concatValue(app)
	case C.Z3_OP_FPA_TO_FP:
		if int(C.Z3_get_app_num_args(raw, app)) == 1 {
			return b.encodedFPValue(ast, C.Z3_get_app_arg(raw, app, 0))
		}
	case C.Z3_OP_FPA_TO_IEEE_BV:
		return b.ieeeBits(C.Z3_get_app_arg(raw, app, 0))
	}

	return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
}

// concatValue folds a concatenation of word numerals into one integer. Model
// completion occasionally negates individual words instead of evaluating
// them, so a negation wrapper around a numeral is folded too.
func (b *Backend) concatValue(app C.Z3_app) (any, error) {
	raw := b.ctx.raw

	total := new(big.Int)
	var totalWidth uint
	for i := 0; i < int(C.Z3_get_app_num_args(raw, app)); i++ {
		part := C.Z3_get_app_arg(raw, app, C.uint(i))

		negated := false
		if C.Z3_get_ast_kind(raw, part) == C.Z3_APP_AST {
			partApp := C.Z3_to_app(raw, part)
			if C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, partApp)) == C.Z3_OP_BNEG {
				negated = true
				part = C.Z3_get_app_arg(raw, partApp, 0)
			}
		}
		if C.Z3_get_ast_kind(raw, part) != C.Z3_NUMERAL_AST {
			return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
		}

		sort := C.Z3_get_sort(raw, part)
		width := uint(C.Z3_get_bv_sort_size(raw, sort))
		value, err := b.bvNumeralValue(part, width)
		if err != nil {
			return nil, err
		}

		word, ok := value.(*big.Int)
		if !ok {
			word = new(big.Int).SetUint64(value.(uint64))
		}
		if negated {
			word.Neg(word)
			mask := new(big.Int).Lsh(big.NewInt(1), width)
			word.Mod(word, mask)
		}

		total.Lsh(total, width)
		total.Or(total, word)
		totalWidth += width
	}

	if totalWidth <= 64 {
		return total.Uint64(), nil
	}
	return total, nil
}

// encodedFPValue decodes a floating-point model value that came back as an
// IEEE bit pattern wrapped in a conversion.
func (b *Backend) encodedFPValue(fp, bits C.Z3_ast) (any, error) {
	if C.Z3_get_ast_kind(b.ctx.raw, bits) != C.Z3_NUMERAL_AST {
		return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
	}

	sort := C.Z3_get_sort(b.ctx.raw, bits)
	width := uint(C.Z3_get_bv_sort_size(b.ctx.raw, sort))
	value, err := b.bvNumeralValue(bits, width)
	if err != nil {
		return nil, err
	}
	raw, ok := value.(uint64)
	if !ok {
		return nil, &solvent.BackendError{Msg: "oversized floating-point encoding", Err: solvent.ErrUnsupportedConstruct}
	}

	switch width {
	case 32:
		return float64(math.Float32frombits(uint32(raw))), nil
	case 64:
		return math.Float64frombits(raw), nil
	default:
		return nil, &solvent.BackendError{Msg: fmt.Sprintf("no decoding for %d-bit floating point", width), Err: solvent.ErrUnsupportedConstruct}
	}
}

// ieeeBits packs a floating-point literal into its IEEE-754 bit pattern,
// the inverse of encodedFPValue. Not-a-number comes back as the canonical
// quiet NaN since the literal carries no payload.
func (b *Backend) ieeeBits(ast C.Z3_ast) (any, error) {
	raw := b.ctx.raw
	if C.Z3_get_ast_kind(raw, ast) != C.Z3_APP_AST {
		return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
	}
	app := C.Z3_to_app(raw, ast)
	declKind := C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, app))

	sort := C.Z3_get_sort(raw, ast)
	ebits := uint(C.Z3_fpa_get_ebits(raw, sort))
	sbits := uint(C.Z3_fpa_get_sbits(raw, sort))
	width := ebits + sbits

	one := big.NewInt(1)
	signBit := new(big.Int).Lsh(one, width-1)
	expAll := new(big.Int).Lsh(new(big.Int).Sub(new(big.Int).Lsh(one, ebits), one), sbits-1)

	bits := new(big.Int)
	switch declKind {
	case C.Z3_OP_FPA_PLUS_ZERO:
		// zero
	case C.Z3_OP_FPA_MINUS_ZERO:
		bits.Set(signBit)
	case C.Z3_OP_FPA_PLUS_INF:
		bits.Set(expAll)
	case C.Z3_OP_FPA_MINUS_INF:
		bits.Or(expAll, signBit)
	case C.Z3_OP_FPA_NAN:
		bits.Or(expAll, new(big.Int).Lsh(one, sbits-2))
	case C.Z3_OP_FPA_NUM:
		var sign C.int
		if !C.Z3_fpa_get_numeral_sign(raw, ast, &sign) {
			return nil, b.ctx.err("Z3_fpa_get_numeral_sign")
		}
		sigText := C.GoString(C.Z3_fpa_get_numeral_significand_string(raw, ast))
		if err := b.ctx.err("Z3_fpa_get_numeral_significand_string"); err != nil {
			return nil, err
		}
		expText := C.GoString(C.Z3_fpa_get_numeral_exponent_string(raw, ast, true))
		if err := b.ctx.err("Z3_fpa_get_numeral_exponent_string"); err != nil {
			return nil, err
		}

		// The significand string is a decimal real in [0, 2); shifting it up
		// by sbits-1 recovers the integer significand exactly.
		sigReal, _, perr := big.ParseFloat(sigText, 10, sbits+8, big.ToNearestEven)
		if perr != nil {
			return nil, &solvent.BackendError{Msg: fmt.Sprintf("unparsable significand %q", sigText), Err: solvent.ErrMalformedLiteral}
		}
		biasedExp, ok := new(big.Int).SetString(expText, 10)
		if !ok {
			return nil, &solvent.BackendError{Msg: fmt.Sprintf("unparsable exponent %q", expText), Err: solvent.ErrMalformedLiteral}
		}

		sig, _ := new(big.Float).SetMantExp(sigReal, int(sbits-1)).Int(nil)
		// Strip the hidden bit; only the fraction field is stored.
		frac := new(big.Int).Mod(sig, new(big.Int).Lsh(one, sbits-1))
		bits.Or(frac, new(big.Int).Lsh(biasedExp, sbits-1))
		if sign != 0 {
			bits.Or(bits, signBit)
		}
	default:
		return nil, &solvent.BackendError{Msg: "model value is not concrete", Err: solvent.ErrUnsupportedConstruct}
	}

	if width <= 64 {
		return bits.Uint64(), nil
	}
	return bits, nil
}

// fpValue decodes a floating-point literal to float64.
func (b *Backend) fpValue(ast C.Z3_ast, declKind C.Z3_decl_kind) (float64, error) {
	raw := b.ctx.raw

	switch declKind {
	case C.Z3_OP_FPA_PLUS_ZERO:
		return 0, nil
	case C.Z3_OP_FPA_MINUS_ZERO:
		return math.Copysign(0, -1), nil
	case C.Z3_OP_FPA_PLUS_INF:
		return math.Inf(1), nil
	case C.Z3_OP_FPA_MINUS_INF:
		return math.Inf(-1), nil
	case C.Z3_OP_FPA_NAN:
		return math.NaN(), nil
	}

	var sign C.int
	if !C.Z3_fpa_get_numeral_sign(raw, ast, &sign) {
		return 0, b.ctx.err("Z3_fpa_get_numeral_sign")
	}

	sort := C.Z3_get_sort(raw, ast)
	ebits := uint(C.Z3_fpa_get_ebits(raw, sort))
	sbits := uint(C.Z3_fpa_get_sbits(raw, sort))

	// The fixed-size accessors overflow on wide sorts; those go through the
	// string forms instead.
	if sbits > 64 || ebits > 63 {
		return b.fpValueWide(ast, sign, sbits)
	}

	var sig C.uint64_t
	if !C.Z3_fpa_get_numeral_significand_uint64(raw, ast, &sig) {
		return 0, b.ctx.err("Z3_fpa_get_numeral_significand_uint64")
	}
	var exp C.int64_t
	if !C.Z3_fpa_get_numeral_exponent_int64(raw, ast, &exp, false) {
		return 0, b.ctx.err("Z3_fpa_get_numeral_exponent_int64")
	}

	// significand includes the hidden bit; scale it into [1, 2).
	value := math.Ldexp(float64(sig), int(exp)-int(sbits-1))
	if sign != 0 {
		value = -value
	}
	return value, nil
}

// fpValueWide decodes a floating-point literal whose components do not fit
// the fixed-size accessors, rounding the result to float64.
func (b *Backend) fpValueWide(ast C.Z3_ast, sign C.int, sbits uint) (float64, error) {
	raw := b.ctx.raw

	sigText := C.GoString(C.Z3_fpa_get_numeral_significand_string(raw, ast))
	if err := b.ctx.err("Z3_fpa_get_numeral_significand_string"); err != nil {
		return 0, err
	}
	expText := C.GoString(C.Z3_fpa_get_numeral_exponent_string(raw, ast, false))
	if err := b.ctx.err("Z3_fpa_get_numeral_exponent_string"); err != nil {
		return 0, err
	}

	// The significand string is a decimal real in [0, 2); the unbiased
	// exponent applies to it directly.
	sig, _, perr := big.ParseFloat(sigText, 10, sbits+8, big.ToNearestEven)
	if perr != nil {
		return 0, &solvent.BackendError{Msg: fmt.Sprintf("unparsable significand %q", sigText), Err: solvent.ErrMalformedLiteral}
	}
	exp, err := strconv.ParseInt(expText, 10, 64)
	if err != nil {
		return 0, &solvent.BackendError{Msg: fmt.Sprintf("unparsable exponent %q", expText), Err: solvent.ErrMalformedLiteral}
	}

	value, _ := new(big.Float).SetMantExp(sig, int(exp)).Float64()
	if sign != 0 {
		value = -value
	}
	return value, nil
}

// fpSortOf reads the floating-point sort of a term.
func (b *Backend) fpSortOf(ast C.Z3_ast) solvent.FSort {
	sort := C.Z3_get_sort(b.ctx.raw, ast)
	return solvent.FSort{
		EBits: uint(C.Z3_fpa_get_ebits(b.ctx.raw, sort)),
		SBits: uint(C.Z3_fpa_get_sbits(b.ctx.raw, sort)),
	}
}

// stringValue reads a string literal, decoding the \u{NN} escapes the native
// printer emits for non-ASCII bytes.
func (b *Backend) stringValue(ast C.Z3_ast) string {
	s := C.GoString(C.Z3_get_string(b.ctx.raw, ast))
	if !strings.Contains(s, `\u{`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], `\u{`) {
			if end := strings.IndexByte(s[i:], '}'); end >= 0 {
				var r rune
				if _, err := fmt.Sscanf(s[i+3:i+end], "%x", &r); err == nil {
					sb.WriteRune(r)
					i += end + 1
					continue
				}
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}
