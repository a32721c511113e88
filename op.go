package solvent

// Op is the operation tag of an expression node.
type Op string

// Symbol and literal constructors.
const (
	OpBVS     Op = "BVS"
	OpBVV     Op = "BVV"
	OpBoolS   Op = "BoolS"
	OpBoolV   Op = "BoolV"
	OpFPS     Op = "FPS"
	OpFPV     Op = "FPV"
	OpStringS Op = "StringS"
	OpStringV Op = "StringV"
)

// Bitvector operations.
const (
	OpAdd         Op = "Add"
	OpSub         Op = "Sub"
	OpMul         Op = "Mul"
	OpUDiv        Op = "UDiv"
	OpSDiv        Op = "SDiv"
	OpURem        Op = "URem"
	OpSRem        Op = "SRem"
	OpNeg         Op = "Neg"
	OpBVAnd       Op = "BVAnd"
	OpBVOr        Op = "BVOr"
	OpBVXor       Op = "BVXor"
	OpBVNot       Op = "BVNot"
	OpShL         Op = "ShL"
	OpLShR        Op = "LShR"
	OpAShR        Op = "AShR"
	OpRotateLeft  Op = "RotateLeft"
	OpRotateRight Op = "RotateRight"
	OpReverse     Op = "Reverse"
	OpRepeat      Op = "Repeat"
	OpConcat      Op = "Concat"
	OpExtract     Op = "Extract"
	OpZeroExt     Op = "ZeroExt"
	OpSignExt     Op = "SignExt"
)

// Boolean operations. If is the one polymorphic operator: its result sort is
// that of its second argument, not derivable from its own declaration.
const (
	OpAnd Op = "And"
	OpOr  Op = "Or"
	OpXor Op = "Xor"
	OpNot Op = "Not"
	OpEq  Op = "Eq"
	OpNe  Op = "Ne"
	OpULT Op = "ULT"
	OpULE Op = "ULE"
	OpUGT Op = "UGT"
	OpUGE Op = "UGE"
	OpSLT Op = "SLT"
	OpSLE Op = "SLE"
	OpSGT Op = "SGT"
	OpSGE Op = "SGE"
	OpIf  Op = "If"
)

// Floating-point operations.
const (
	OpFPAdd          Op = "FPAdd"
	OpFPSub          Op = "FPSub"
	OpFPMul          Op = "FPMul"
	OpFPDiv          Op = "FPDiv"
	OpFPSqrt         Op = "FPSqrt"
	OpFPNeg          Op = "FPNeg"
	OpFPAbs          Op = "FPAbs"
	OpFPLT           Op = "FPLT"
	OpFPLE           Op = "FPLE"
	OpFPGT           Op = "FPGT"
	OpFPGE           Op = "FPGE"
	OpFPEq           Op = "FPEq"
	OpFPIsNaN        Op = "FPIsNaN"
	OpFPIsInf        Op = "FPIsInf"
	OpFPToFP         Op = "FPToFP"
	OpFPToFPUnsigned Op = "FPToFPUnsigned"
	OpFPToSBV        Op = "FPToSBV"
	OpFPToUBV        Op = "FPToUBV"
	OpFPToIEEEBV     Op = "FPToIEEEBV"
)

// String operations.
const (
	OpStrConcat   Op = "StrConcat"
	OpStrSubstr   Op = "StrSubstr"
	OpStrLen      Op = "StrLen"
	OpStrReplace  Op = "StrReplace"
	OpStrContains Op = "StrContains"
	OpStrPrefixOf Op = "StrPrefixOf"
	OpStrSuffixOf Op = "StrSuffixOf"
	OpStrIndexOf  Op = "StrIndexOf"
	OpStrToInt    Op = "StrToInt"
	OpIntToStr    Op = "IntToStr"
)

// Category is the result category of an operation.
type Category int

// Available categories. CategoryNone marks the polymorphic case where the
// category must be taken from an argument instead of the operator.
const (
	CategoryNone Category = iota
	CategoryBool
	CategoryBV
	CategoryFP
	CategoryString
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryBool:
		return "bool"
	case CategoryBV:
		return "bv"
	case CategoryFP:
		return "fp"
	case CategoryString:
		return "string"
	default:
		return "none"
	}
}

// opInfo describes one operation tag.
type opInfo struct {
	category    Category
	polymorphic bool // result sort comes from an argument (If only)
	reducible   bool // lowered as a left-fold of binary native calls
	symbol      bool // introduces a fresh symbolic constant
}

var opTable = map[Op]opInfo{
	OpBVS:     {category: CategoryBV, symbol: true},
	OpBVV:     {category: CategoryBV},
	OpBoolS:   {category: CategoryBool, symbol: true},
	OpBoolV:   {category: CategoryBool},
	OpFPS:     {category: CategoryFP, symbol: true},
	OpFPV:     {category: CategoryFP},
	OpStringS: {category: CategoryString, symbol: true},
	OpStringV: {category: CategoryString},

	OpAdd:         {category: CategoryBV, reducible: true},
	OpSub:         {category: CategoryBV, reducible: true},
	OpMul:         {category: CategoryBV, reducible: true},
	OpUDiv:        {category: CategoryBV},
	OpSDiv:        {category: CategoryBV},
	OpURem:        {category: CategoryBV},
	OpSRem:        {category: CategoryBV},
	OpNeg:         {category: CategoryBV},
	OpBVAnd:       {category: CategoryBV, reducible: true},
	OpBVOr:        {category: CategoryBV, reducible: true},
	OpBVXor:       {category: CategoryBV, reducible: true},
	OpBVNot:       {category: CategoryBV},
	OpShL:         {category: CategoryBV},
	OpLShR:        {category: CategoryBV},
	OpAShR:        {category: CategoryBV},
	OpRotateLeft:  {category: CategoryBV},
	OpRotateRight: {category: CategoryBV},
	OpReverse:     {category: CategoryBV},
	OpRepeat:      {category: CategoryBV},
	OpConcat:      {category: CategoryBV},
	OpExtract:     {category: CategoryBV},
	OpZeroExt:     {category: CategoryBV},
	OpSignExt:     {category: CategoryBV},

	OpAnd: {category: CategoryBool},
	OpOr:  {category: CategoryBool},
	OpXor: {category: CategoryBool},
	OpNot: {category: CategoryBool},
	OpEq:  {category: CategoryBool},
	OpNe:  {category: CategoryBool},
	OpULT: {category: CategoryBool},
	OpULE: {category: CategoryBool},
	OpUGT: {category: CategoryBool},
	OpUGE: {category: CategoryBool},
	OpSLT: {category: CategoryBool},
	OpSLE: {category: CategoryBool},
	OpSGT: {category: CategoryBool},
	OpSGE: {category: CategoryBool},
	OpIf:  {category: CategoryNone, polymorphic: true},

	OpFPAdd:          {category: CategoryFP},
	OpFPSub:          {category: CategoryFP},
	OpFPMul:          {category: CategoryFP},
	OpFPDiv:          {category: CategoryFP},
	OpFPSqrt:         {category: CategoryFP},
	OpFPNeg:          {category: CategoryFP},
	OpFPAbs:          {category: CategoryFP},
	OpFPLT:           {category: CategoryBool},
	OpFPLE:           {category: CategoryBool},
	OpFPGT:           {category: CategoryBool},
	OpFPGE:           {category: CategoryBool},
	OpFPEq:           {category: CategoryBool},
	OpFPIsNaN:        {category: CategoryBool},
	OpFPIsInf:        {category: CategoryBool},
	OpFPToFP:         {category: CategoryFP},
	OpFPToFPUnsigned: {category: CategoryFP},
	OpFPToSBV:        {category: CategoryBV},
	OpFPToUBV:        {category: CategoryBV},
	OpFPToIEEEBV:     {category: CategoryBV},

	OpStrConcat:   {category: CategoryString},
	OpStrSubstr:   {category: CategoryString},
	OpStrLen:      {category: CategoryBV},
	OpStrReplace:  {category: CategoryString},
	OpStrContains: {category: CategoryBool},
	OpStrPrefixOf: {category: CategoryBool},
	OpStrSuffixOf: {category: CategoryBool},
	OpStrIndexOf:  {category: CategoryBV},
	OpStrToInt:    {category: CategoryBV},
	OpIntToStr:    {category: CategoryString},
}

// OpInfo returns the table entry for op. An operation with no entry is an
// UnknownOperatorError; it must never be silently ignored.
func OpInfo(op Op) (Category, bool, error) {
	info, ok := opTable[op]
	if !ok {
		return CategoryNone, false, &UnknownOperatorError{Op: op}
	}
	return info.category, info.polymorphic, nil
}

// IsReducible returns true if op is lowered as a left-fold reduction over all
// of its operands.
func IsReducible(op Op) bool { return opTable[op].reducible }

// IsSymbol returns true if op introduces a fresh symbolic constant.
func IsSymbol(op Op) bool { return opTable[op].symbol }
