package z3

/*
#include <z3.h>
*/
import "C"

import (
	"github.com/solventlabs/solvent"
)

// opOfDeclKind maps a native declaration kind to an operation tag. Kinds
// whose tag depends on context (parameterized extensions, conversions whose
// tag depends on the result sort) are handled directly in the abstraction
// walk and do not appear here.
func opOfDeclKind(kind C.Z3_decl_kind) (solvent.Op, bool) {
	switch kind {
	case C.Z3_OP_TRUE, C.Z3_OP_FALSE:
		return solvent.OpBoolV, true
	case C.Z3_OP_AND:
		return solvent.OpAnd, true
	case C.Z3_OP_OR:
		return solvent.OpOr, true
	case C.Z3_OP_XOR:
		return solvent.OpXor, true
	case C.Z3_OP_NOT:
		return solvent.OpNot, true
	case C.Z3_OP_EQ:
		return solvent.OpEq, true
	case C.Z3_OP_DISTINCT:
		return solvent.OpNe, true
	case C.Z3_OP_ITE:
		return solvent.OpIf, true

	case C.Z3_OP_BADD:
		return solvent.OpAdd, true
	case C.Z3_OP_BSUB:
		return solvent.OpSub, true
	case C.Z3_OP_BMUL:
		return solvent.OpMul, true
	case C.Z3_OP_BUDIV, C.Z3_OP_BUDIV_I:
		return solvent.OpUDiv, true
	case C.Z3_OP_BSDIV, C.Z3_OP_BSDIV_I:
		return solvent.OpSDiv, true
	case C.Z3_OP_BUREM, C.Z3_OP_BUREM_I:
		return solvent.OpURem, true
	case C.Z3_OP_BSREM, C.Z3_OP_BSREM_I:
		return solvent.OpSRem, true
	case C.Z3_OP_BNEG:
		return solvent.OpNeg, true
	case C.Z3_OP_BAND:
		return solvent.OpBVAnd, true
	case C.Z3_OP_BOR:
		return solvent.OpBVOr, true
	case C.Z3_OP_BXOR:
		return solvent.OpBVXor, true
	case C.Z3_OP_BNOT:
		return solvent.OpBVNot, true
	case C.Z3_OP_BSHL:
		return solvent.OpShL, true
	case C.Z3_OP_BLSHR:
		return solvent.OpLShR, true
	case C.Z3_OP_BASHR:
		return solvent.OpAShR, true
	case C.Z3_OP_EXT_ROTATE_LEFT:
		return solvent.OpRotateLeft, true
	case C.Z3_OP_EXT_ROTATE_RIGHT:
		return solvent.OpRotateRight, true
	case C.Z3_OP_CONCAT:
		return solvent.OpConcat, true

	case C.Z3_OP_ULT:
		return solvent.OpULT, true
	case C.Z3_OP_ULEQ:
		return solvent.OpULE, true
	case C.Z3_OP_UGT:
		return solvent.OpUGT, true
	case C.Z3_OP_UGEQ:
		return solvent.OpUGE, true
	case C.Z3_OP_SLT:
		return solvent.OpSLT, true
	case C.Z3_OP_SLEQ:
		return solvent.OpSLE, true
	case C.Z3_OP_SGT:
		return solvent.OpSGT, true
	case C.Z3_OP_SGEQ:
		return solvent.OpSGE, true

	case C.Z3_OP_FPA_ADD:
		return solvent.OpFPAdd, true
	case C.Z3_OP_FPA_SUB:
		return solvent.OpFPSub, true
	case C.Z3_OP_FPA_MUL:
		return solvent.OpFPMul, true
	case C.Z3_OP_FPA_DIV:
		return solvent.OpFPDiv, true
	case C.Z3_OP_FPA_SQRT:
		return solvent.OpFPSqrt, true
	case C.Z3_OP_FPA_NEG:
		return solvent.OpFPNeg, true
	case C.Z3_OP_FPA_ABS:
		return solvent.OpFPAbs, true
	case C.Z3_OP_FPA_LT:
		return solvent.OpFPLT, true
	case C.Z3_OP_FPA_LE:
		return solvent.OpFPLE, true
	case C.Z3_OP_FPA_GT:
		return solvent.OpFPGT, true
	case C.Z3_OP_FPA_GE:
		return solvent.OpFPGE, true
	case C.Z3_OP_FPA_EQ:
		return solvent.OpFPEq, true
	case C.Z3_OP_FPA_IS_NAN:
		return solvent.OpFPIsNaN, true
	case C.Z3_OP_FPA_IS_INF:
		return solvent.OpFPIsInf, true
	case C.Z3_OP_FPA_TO_IEEE_BV:
		return solvent.OpFPToIEEEBV, true

	case C.Z3_OP_SEQ_CONCAT:
		return solvent.OpStrConcat, true
	case C.Z3_OP_SEQ_EXTRACT:
		return solvent.OpStrSubstr, true
	case C.Z3_OP_SEQ_LENGTH:
		return solvent.OpStrLen, true
	case C.Z3_OP_SEQ_REPLACE:
		return solvent.OpStrReplace, true
	case C.Z3_OP_SEQ_CONTAINS:
		return solvent.OpStrContains, true
	case C.Z3_OP_SEQ_PREFIX:
		return solvent.OpStrPrefixOf, true
	case C.Z3_OP_SEQ_SUFFIX:
		return solvent.OpStrSuffixOf, true
	case C.Z3_OP_SEQ_INDEX:
		return solvent.OpStrIndexOf, true
	case C.Z3_OP_STR_TO_INT:
		return solvent.OpStrToInt, true
	case C.Z3_OP_INT_TO_STR:
		return solvent.OpIntToStr, true
	}
	return "", false
}
