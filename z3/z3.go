// Package z3 implements the solvent backend contract on top of the Z3 SMT
// solver's C API.
//
// A Backend owns one native Z3 context plus the caches and the symbol
// side-table attached to it. Native contexts are not safe to share across
// threads, so a Backend belongs to the goroutine that created it; concurrent
// workers each construct their own. The only cross-backend structure is the
// process-wide context registry used for interrupt broadcast.
package z3

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unsafe"

	"github.com/solventlabs/solvent"
)

/*
#cgo LDFLAGS: -lz3
#include <z3.h>
#include <stdlib.h>
*/
import "C"

// Ensure backend implements interface.
var _ solvent.Backend = (*Backend)(nil)

// DefaultASTCacheSize is the number of abstracted terms pinned per backend
// before LRU eviction starts releasing native references.
const DefaultASTCacheSize = 10000

// EnvReuseSolvers is the environment toggle for per-backend solver reuse.
// Truthy values: "1", "true", "yes", "y" (case-insensitive).
const EnvReuseSolvers = "REUSE_SOLVER"

var globalParamsOnce sync.Once

// symbolData preserves the construction metadata of a symbolic constant that
// the native representation cannot carry.
type symbolData struct {
	args        []any
	annotations []solvent.Annotation
}

// Backend translates solvent nodes to Z3 terms and back and drives solver
// queries. It is bound to a single goroutine.
type Backend struct {
	ctx       *Context
	log       *slog.Logger
	reuse     bool
	astCache  *astCache
	convCache map[*solvent.Node]C.Z3_ast
	symData   map[string]symbolData
	tactic    C.Z3_tactic // boolean simplification pipeline, built lazily
	pooled    *Session
	solveN    int
}

// NewBackend returns a new backend with its own native context. Solver reuse
// is controlled by the REUSE_SOLVER environment variable.
func NewBackend() *Backend {
	b := &Backend{
		ctx:       NewContext(),
		log:       slog.Default().With("component", "z3"),
		reuse:     envBool(EnvReuseSolvers),
		convCache: make(map[*solvent.Node]C.Z3_ast),
		symData:   make(map[string]symbolData),
	}
	b.astCache = newASTCache(b.ctx, DefaultASTCacheSize)
	return b
}

// SetReuseSolvers overrides the environment-derived reuse setting. It must
// not be changed while a pooled session is live.
func (b *Backend) SetReuseSolvers(reuse bool) { b.reuse = reuse }

// SolveCount returns the number of native check calls issued.
func (b *Backend) SolveCount() int { return b.solveN }

// Downsize clears the forward and reverse caches and the symbol side-table,
// releasing every native reference the caches pinned.
func (b *Backend) Downsize() {
	b.log.Debug("downsizing backend caches",
		"converted", len(b.convCache), "symbols", len(b.symData))
	b.astCache.purge()
	b.convCache = make(map[*solvent.Node]C.Z3_ast)
	b.symData = make(map[string]symbolData)
}

// Close releases all caches, the pooled session if any, and the native
// context.
func (b *Backend) Close() error {
	b.Downsize()
	if b.tactic != nil {
		C.Z3_tactic_dec_ref(b.ctx.raw, b.tactic)
		b.tactic = nil
	}
	if b.pooled != nil {
		C.Z3_solver_dec_ref(b.ctx.raw, b.pooled.solver)
		b.pooled = nil
	}
	return b.ctx.Close()
}

func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// Context represents a Z3 context object used for constructing terms. Every
// live context is registered for interrupt broadcast until closed.
type Context struct {
	raw C.Z3_context
}

// NewContext returns a new registered context.
func NewContext() *Context {
	globalParamsOnce.Do(func() {
		// Makes Z3 hand back component-wise fp literals in models instead of
		// partially evaluated concat terms; both encodings are decoded during
		// model abstraction.
		name := C.CString("rewriter.hi_fp_unspecified")
		value := C.CString("true")
		C.Z3_global_param_set(name, value)
		C.free(unsafe.Pointer(name))
		C.free(unsafe.Pointer(value))
	})

	config := C.Z3_mk_config()
	defer C.Z3_del_config(config)

	raw := C.Z3_mk_context(config)
	C.Z3_set_error_handler(raw, nil)
	C.Z3_set_ast_print_mode(raw, C.Z3_PRINT_SMTLIB2_COMPLIANT)

	ctx := &Context{raw: raw}
	registerContext(ctx)
	return ctx
}

// Close deregisters the context and deletes the native context.
func (ctx *Context) Close() error {
	deregisterContext(ctx)
	C.Z3_del_context(ctx.raw)
	return nil
}

// Interrupt forces any in-flight check on this context to return unknown
// with an interruption reason.
func (ctx *Context) Interrupt() {
	C.Z3_interrupt(ctx.raw)
}

// err returns the error for the last API call. Returns nil if the last call
// was successful.
func (ctx *Context) err(op string) error {
	if code := C.Z3_get_error_code(ctx.raw); code != C.Z3_OK {
		return &Error{Code: int(code), Op: op, Message: C.GoString(C.Z3_get_error_msg(ctx.raw, code))}
	}
	return nil
}

func (ctx *Context) symbol(name string) C.Z3_symbol {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.Z3_mk_string_symbol(ctx.raw, cname)
}

func (ctx *Context) symbolString(sym C.Z3_symbol) string {
	return C.GoString(C.Z3_get_symbol_string(ctx.raw, sym))
}

func cfree(s *C.char) { C.free(unsafe.Pointer(s)) }

// astHash returns the value-identity hash of a native term: the raw pointer
// value. Z3_get_ast_hash is documented to collide far more often.
func astHash(ast C.Z3_ast) uint64 {
	return uint64(uintptr(unsafe.Pointer(ast)))
}

// Error represents an error from the Z3 API. Native failures are always
// wrapped in this type; raw Z3 exceptions never cross the package boundary.
type Error struct {
	Code    int
	Op      string
	Message string
}

// Error returns the error as a string.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Code)
}

// Possible error codes.
const (
	ErrorCodeOK = iota
	ErrorCodeSortError
	ErrorCodeIOB
	ErrorCodeInvalidArg
	ErrorCodeParserError
	ErrorCodeNoParser
	ErrorCodeInvalidPattern
	ErrorCodeMemoutFail
	ErrorCodeFileAccessError
	ErrorCodeInternalFatal
	ErrorCodeInvalidUsage
	ErrorCodeDecRefError
	ErrorCodeException
)
