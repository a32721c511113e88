package solvent

// Symbol and literal constructors.

// BVS returns a fresh symbolic bitvector of the given width.
func BVS(name string, width uint) *Node { return MustNew(OpBVS, name, width) }

// BVV returns a concrete bitvector literal.
func BVV(value uint64, width uint) *Node { return MustNew(OpBVV, value, width) }

// BoolS returns a fresh symbolic boolean.
func BoolS(name string) *Node { return MustNew(OpBoolS, name) }

// BoolV returns a concrete boolean literal.
func BoolV(value bool) *Node { return MustNew(OpBoolV, value) }

// FPS returns a fresh symbolic floating-point value.
func FPS(name string, sort FSort) *Node { return MustNew(OpFPS, name, sort) }

// FPV returns a concrete floating-point literal.
func FPV(value float64, sort FSort) *Node { return MustNew(OpFPV, value, sort) }

// StringS returns a fresh symbolic string.
func StringS(name string) *Node { return MustNew(OpStringS, name) }

// StringV returns a concrete string literal.
func StringV(value string) *Node { return MustNew(OpStringV, value) }

// Bitvector operations. Operands must share a width; widths are not coerced.

func Add(args ...*Node) *Node { return MustNew(OpAdd, nodeArgs(args)...) }
func Sub(args ...*Node) *Node { return MustNew(OpSub, nodeArgs(args)...) }
func Mul(args ...*Node) *Node { return MustNew(OpMul, nodeArgs(args)...) }
func UDiv(a, b *Node) *Node { return MustNew(OpUDiv, a, b) }
func SDiv(a, b *Node) *Node { return MustNew(OpSDiv, a, b) }
func URem(a, b *Node) *Node { return MustNew(OpURem, a, b) }
func SRem(a, b *Node) *Node { return MustNew(OpSRem, a, b) }
func Neg(a *Node) *Node { return MustNew(OpNeg, a) }
func BVAnd(args ...*Node) *Node { return MustNew(OpBVAnd, nodeArgs(args)...) }
func BVOr(args ...*Node) *Node { return MustNew(OpBVOr, nodeArgs(args)...) }
func BVXor(args ...*Node) *Node { return MustNew(OpBVXor, nodeArgs(args)...) }
func BVNot(a *Node) *Node { return MustNew(OpBVNot, a) }
func ShL(a, b *Node) *Node { return MustNew(OpShL, a, b) }
func LShR(a, b *Node) *Node { return MustNew(OpLShR, a, b) }
func AShR(a, b *Node) *Node { return MustNew(OpAShR, a, b) }
func RotateLeft(a, b *Node) *Node { return MustNew(OpRotateLeft, a, b) }
func RotateRight(a, b *Node) *Node { return MustNew(OpRotateRight, a, b) }
func Reverse(a *Node) *Node { return MustNew(OpReverse, a) }
func Concat(args ...*Node) *Node { return MustNew(OpConcat, nodeArgs(args)...) }

// Extract returns bits hi..lo of a, inclusive.
func Extract(hi, lo int, a *Node) *Node { return MustNew(OpExtract, hi, lo, a) }

// ZeroExt widens a by n zero bits.
func ZeroExt(n int, a *Node) *Node { return MustNew(OpZeroExt, n, a) }

// SignExt widens a by n copies of its sign bit.
func SignExt(n int, a *Node) *Node { return MustNew(OpSignExt, n, a) }

// Repeat tiles a n times.
func Repeat(n int, a *Node) *Node { return MustNew(OpRepeat, n, a) }

// Comparisons.

func Eq(a, b *Node) *Node { return MustNew(OpEq, a, b) }
func Ne(a, b *Node) *Node { return MustNew(OpNe, a, b) }
func ULT(a, b *Node) *Node { return MustNew(OpULT, a, b) }
func ULE(a, b *Node) *Node { return MustNew(OpULE, a, b) }
func UGT(a, b *Node) *Node { return MustNew(OpUGT, a, b) }
func UGE(a, b *Node) *Node { return MustNew(OpUGE, a, b) }
func SLT(a, b *Node) *Node { return MustNew(OpSLT, a, b) }
func SLE(a, b *Node) *Node { return MustNew(OpSLE, a, b) }
func SGT(a, b *Node) *Node { return MustNew(OpSGT, a, b) }
func SGE(a, b *Node) *Node { return MustNew(OpSGE, a, b) }

// Boolean connectives.

func And(args ...*Node) *Node { return MustNew(OpAnd, nodeArgs(args)...) }
func Or(args ...*Node) *Node { return MustNew(OpOr, nodeArgs(args)...) }
func Xor(args ...*Node) *Node { return MustNew(OpXor, nodeArgs(args)...) }
func Not(a *Node) *Node { return MustNew(OpNot, a) }

// If returns the conditional select of t or f on cond. Its result sort is
// that of t.
func If(cond, t, f *Node) *Node { return MustNew(OpIf, cond, t, f) }

// Floating point.

func FPAdd(rm RoundingMode, a, b *Node) *Node { return MustNew(OpFPAdd, rm, a, b) }
func FPSub(rm RoundingMode, a, b *Node) *Node { return MustNew(OpFPSub, rm, a, b) }
func FPMul(rm RoundingMode, a, b *Node) *Node { return MustNew(OpFPMul, rm, a, b) }
func FPDiv(rm RoundingMode, a, b *Node) *Node { return MustNew(OpFPDiv, rm, a, b) }
func FPSqrt(rm RoundingMode, a *Node) *Node { return MustNew(OpFPSqrt, rm, a) }
func FPNeg(a *Node) *Node { return MustNew(OpFPNeg, a) }
func FPAbs(a *Node) *Node { return MustNew(OpFPAbs, a) }
func FPLT(a, b *Node) *Node { return MustNew(OpFPLT, a, b) }
func FPLE(a, b *Node) *Node { return MustNew(OpFPLE, a, b) }
func FPGT(a, b *Node) *Node { return MustNew(OpFPGT, a, b) }
func FPGE(a, b *Node) *Node { return MustNew(OpFPGE, a, b) }
func FPEq(a, b *Node) *Node { return MustNew(OpFPEq, a, b) }
func FPIsNaN(a *Node) *Node { return MustNew(OpFPIsNaN, a) }
func FPIsInf(a *Node) *Node { return MustNew(OpFPIsInf, a) }

// FPToFP converts a floating-point or signed bitvector value to the given
// sort under the given rounding mode.
func FPToFP(rm RoundingMode, a *Node, sort FSort) *Node {
	return MustNew(OpFPToFP, rm, a, sort)
}

// FPFromIEEEBV reinterprets a bitvector as a floating-point value of the
// given sort. The widths must agree.
func FPFromIEEEBV(a *Node, sort FSort) *Node { return MustNew(OpFPToFP, a, sort) }

// FPToFPUnsigned is FPToFP for unsigned bitvector sources.
func FPToFPUnsigned(rm RoundingMode, a *Node, sort FSort) *Node {
	return MustNew(OpFPToFPUnsigned, rm, a, sort)
}

// FPToSBV converts a floating-point value to a signed bitvector of the
// given width under the given rounding mode.
func FPToSBV(rm RoundingMode, a *Node, width uint) *Node {
	return MustNew(OpFPToSBV, rm, a, width)
}

// FPToUBV is FPToSBV for unsigned bitvectors.
func FPToUBV(rm RoundingMode, a *Node, width uint) *Node {
	return MustNew(OpFPToUBV, rm, a, width)
}

// FPToIEEEBV reinterprets a floating-point value as its IEEE-754 bits.
func FPToIEEEBV(a *Node) *Node { return MustNew(OpFPToIEEEBV, a) }

// Strings.

func StrConcat(args ...*Node) *Node { return MustNew(OpStrConcat, nodeArgs(args)...) }
func StrLen(s *Node) *Node { return MustNew(OpStrLen, s) }
func StrContains(s, sub *Node) *Node { return MustNew(OpStrContains, s, sub) }
func StrPrefixOf(prefix, s *Node) *Node { return MustNew(OpStrPrefixOf, prefix, s) }
func StrSuffixOf(suffix, s *Node) *Node { return MustNew(OpStrSuffixOf, suffix, s) }

// StrSubstr returns count bytes of s starting at start; both indexes are
// 64-bit bitvectors.
func StrSubstr(start, count, s *Node) *Node { return MustNew(OpStrSubstr, start, count, s) }

// StrReplace replaces the first occurrence of old in s with new.
func StrReplace(s, old, new *Node) *Node { return MustNew(OpStrReplace, s, old, new) }

// StrIndexOf returns the index of the first occurrence of sub in s at or
// after offset, as a 64-bit bitvector.
func StrIndexOf(s, sub, offset *Node) *Node { return MustNew(OpStrIndexOf, s, sub, offset) }

// StrToInt parses s as a decimal integer into a 64-bit bitvector.
func StrToInt(s *Node) *Node { return MustNew(OpStrToInt, s) }

// IntToStr renders a 64-bit bitvector as a decimal string.
func IntToStr(a *Node) *Node { return MustNew(OpIntToStr, a) }

func nodeArgs(nodes []*Node) []any {
	args := make([]any, len(nodes))
	for i, n := range nodes {
		args[i] = n
	}
	return args
}
