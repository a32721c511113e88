package z3

/*
#include <z3.h>
*/
import "C"

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/solventlabs/solvent"
)

// Ensure session implements interface.
var _ solvent.Session = (*Session)(nil)

// trackPrefix names the fresh boolean literals used to track constraints for
// unsat cores. Tracking literals never appear in models.
const trackPrefix = "track!"

// Session wraps one incremental native solver. A session belongs to the
// backend that created it.
type Session struct {
	backend *Backend
	solver  C.Z3_solver
	depth   int
	tracked map[string]*solvent.Node
	trackN  int
	pooled  bool
}

// Solver returns a session. With solver reuse enabled the backend keeps one
// pooled native solver and resets it instead of allocating a new one.
func (b *Backend) Solver(opts solvent.SolverOptions) (solvent.Session, error) {
	raw := b.ctx.raw

	if b.reuse && b.pooled != nil {
		C.Z3_solver_reset(raw, b.pooled.solver)
		if err := b.ctx.err("Z3_solver_reset"); err != nil {
			return nil, err
		}
		b.pooled.depth = 0
		b.pooled.tracked = make(map[string]*solvent.Node)
		b.pooled.trackN = 0
		b.applyOptions(b.pooled.solver, opts)
		return b.pooled, nil
	}

	solver := C.Z3_mk_solver(raw)
	if err := b.ctx.err("Z3_mk_solver"); err != nil {
		return nil, err
	}
	C.Z3_solver_inc_ref(raw, solver)
	b.applyOptions(solver, opts)

	sess := &Session{backend: b, solver: solver, tracked: make(map[string]*solvent.Node)}
	if b.reuse {
		sess.pooled = true
		b.pooled = sess
	}
	return sess, nil
}

// applyOptions configures a solver: native keyboard-interrupt trapping is
// always disabled, then timeout and memory limits are applied. Soft timeouts
// leave the session usable after expiry but are not available on every
// solver configuration, so support is probed from the parameter descriptors.
func (b *Backend) applyOptions(solver C.Z3_solver, opts solvent.SolverOptions) {
	raw := b.ctx.raw

	params := C.Z3_mk_params(raw)
	C.Z3_params_inc_ref(raw, params)
	defer C.Z3_params_dec_ref(raw, params)

	// No goroutine owns the process main thread, so Z3's own SIGINT trap
	// would race the runtime's signal handling and swallow the signal the
	// relay in interrupt.go is waiting for. Cancellation is delivered
	// exclusively through Z3_interrupt.
	C.Z3_params_set_bool(raw, params, b.ctx.symbol("ctrl_c"), false)

	if opts.Timeout > 0 {
		ms := C.uint(opts.Timeout.Milliseconds())
		if b.supportsSoftTimeout(solver) {
			C.Z3_params_set_uint(raw, params, b.ctx.symbol("soft_timeout"), ms)
			C.Z3_params_set_uint(raw, params, b.ctx.symbol("solver2_timeout"), ms)
		} else {
			C.Z3_params_set_uint(raw, params, b.ctx.symbol("timeout"), ms)
		}
	}
	if opts.MaxMemory > 0 {
		C.Z3_params_set_uint(raw, params, b.ctx.symbol("max_memory"), C.uint(opts.MaxMemory))
	}
	C.Z3_solver_set_params(raw, solver, params)
}

func (b *Backend) supportsSoftTimeout(solver C.Z3_solver) bool {
	raw := b.ctx.raw
	descrs := C.Z3_solver_get_param_descrs(raw, solver)
	C.Z3_param_descrs_inc_ref(raw, descrs)
	defer C.Z3_param_descrs_dec_ref(raw, descrs)
	return strings.Contains(C.GoString(C.Z3_param_descrs_to_string(raw, descrs)), "soft_timeout")
}

// Assert permanently adds constraints below the current scope.
func (s *Session) Assert(constraints ...*solvent.Node) error {
	return s.backend.assertNodes(s.solver, constraints)
}

// AssertTracked adds constraints behind fresh tracking literals so they can
// be reported by UnsatCore.
func (s *Session) AssertTracked(constraints ...*solvent.Node) error {
	b := s.backend
	raw := b.ctx.raw
	for _, c := range constraints {
		ast, err := b.convert(c)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s%d", trackPrefix, s.trackN)
		s.trackN++
		lit := C.Z3_mk_const(raw, b.ctx.symbol(name), C.Z3_mk_bool_sort(raw))
		C.Z3_solver_assert_and_track(raw, s.solver, ast, lit)
		if err := b.ctx.err("Z3_solver_assert_and_track"); err != nil {
			return err
		}
		s.tracked[name] = c
	}
	return nil
}

// Push opens a scope.
func (s *Session) Push() error {
	C.Z3_solver_push(s.backend.ctx.raw, s.solver)
	if err := s.backend.ctx.err("Z3_solver_push"); err != nil {
		return err
	}
	s.depth++
	return nil
}

// Pop discards everything asserted since the matching Push.
func (s *Session) Pop() error {
	if s.depth == 0 {
		return &solvent.BackendError{Msg: "pop below scope depth zero"}
	}
	C.Z3_solver_pop(s.backend.ctx.raw, s.solver, 1)
	if err := s.backend.ctx.err("Z3_solver_pop"); err != nil {
		return err
	}
	s.depth--
	return nil
}

// Depth returns the current scope depth.
func (s *Session) Depth() int { return s.depth }

// UnsatCore returns the tracked constraints participating in the proof of
// unsatisfiability after an unsatisfiable check.
func (s *Session) UnsatCore() ([]*solvent.Node, error) {
	b := s.backend
	raw := b.ctx.raw

	core := C.Z3_solver_get_unsat_core(raw, s.solver)
	if err := b.ctx.err("Z3_solver_get_unsat_core"); err != nil {
		return nil, err
	}
	C.Z3_ast_vector_inc_ref(raw, core)
	defer C.Z3_ast_vector_dec_ref(raw, core)

	size := int(C.Z3_ast_vector_size(raw, core))
	constraints := make([]*solvent.Node, 0, size)
	for i := 0; i < size; i++ {
		lit := C.Z3_ast_vector_get(raw, core, C.uint(i))
		app := C.Z3_to_app(raw, lit)
		name := b.ctx.symbolString(C.Z3_get_decl_name(raw, C.Z3_get_app_decl(raw, app)))
		if c, ok := s.tracked[name]; ok {
			constraints = append(constraints, c)
		}
	}
	return constraints, nil
}

// Close releases the session. A pooled session is reset and retained for the
// next Solver call; the backend releases it on Close.
func (s *Session) Close() error {
	raw := s.backend.ctx.raw
	if s.pooled {
		C.Z3_solver_reset(raw, s.solver)
		s.depth = 0
		s.tracked = make(map[string]*solvent.Node)
		s.trackN = 0
		return nil
	}
	C.Z3_solver_dec_ref(raw, s.solver)
	return nil
}

func (b *Backend) session(s solvent.Session) (*Session, error) {
	sess, ok := s.(*Session)
	if !ok || sess.backend != b {
		return nil, &solvent.BackendError{Msg: "session does not belong to this backend"}
	}
	return sess, nil
}

func (b *Backend) assertNodes(solver C.Z3_solver, constraints []*solvent.Node) error {
	for _, c := range constraints {
		ast, err := b.convert(c)
		if err != nil {
			return err
		}
		C.Z3_solver_assert(b.ctx.raw, solver, ast)
		if err := b.ctx.err("Z3_solver_assert"); err != nil {
			return err
		}
	}
	return nil
}

// check runs one native check and classifies an unknown verdict by its
// reported reason.
func (b *Backend) check(solver C.Z3_solver) (bool, error) {
	b.solveN++
	switch C.Z3_solver_check(b.ctx.raw, solver) {
	case C.Z3_L_TRUE:
		return true, nil
	case C.Z3_L_FALSE:
		return false, nil
	}
	reason := C.GoString(C.Z3_solver_get_reason_unknown(b.ctx.raw, solver))
	b.log.Debug("solver returned unknown", "reason", reason, "checks", b.solveN)
	return false, classifyUnknown(reason)
}

func classifyUnknown(reason string) error {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "interrupt") || strings.Contains(r, "cancel"):
		return fmt.Errorf("%s: %w", reason, solvent.ErrSolverInterrupted)
	case strings.Contains(r, "timeout") || strings.Contains(r, "resource") || strings.Contains(r, "memory"):
		return fmt.Errorf("%s: %w", reason, solvent.ErrSolverResourceLimit)
	default:
		return fmt.Errorf("%q: %w", reason, solvent.ErrSolverUnknown)
	}
}

// Satisfiable runs one incremental check with extra layered on top of the
// session's assertions. The session's own assertion set is unchanged.
func (b *Backend) Satisfiable(extra []*solvent.Node, s solvent.Session, cb solvent.ModelCallback) (bool, error) {
	sess, err := b.session(s)
	if err != nil {
		return false, err
	}
	raw := b.ctx.raw

	if len(extra) > 0 {
		C.Z3_solver_push(raw, sess.solver)
		defer C.Z3_solver_pop(raw, sess.solver, 1)
		if err := b.assertNodes(sess.solver, extra); err != nil {
			return false, err
		}
	}

	sat, err := b.check(sess.solver)
	if err != nil || !sat {
		return false, err
	}

	if cb != nil {
		model := C.Z3_solver_get_model(raw, sess.solver)
		if err := b.ctx.err("Z3_solver_get_model"); err != nil {
			return false, err
		}
		C.Z3_model_inc_ref(raw, model)
		values, err := b.modelValues(model)
		C.Z3_model_dec_ref(raw, model)
		if err != nil {
			return false, err
		}
		cb(values)
	}
	return true, nil
}

// modelValues reads a model as a name-to-primitive map. Tracking literals
// and constants the model leaves uninterpreted are skipped; an
// interpretation with no primitive reading is an error, not a hole.
func (b *Backend) modelValues(model C.Z3_model) (solvent.Model, error) {
	raw := b.ctx.raw
	out := make(solvent.Model)
	numConsts := int(C.Z3_model_get_num_consts(raw, model))
	for i := 0; i < numConsts; i++ {
		decl := C.Z3_model_get_const_decl(raw, model, C.uint(i))
		name := b.ctx.symbolString(C.Z3_get_decl_name(raw, decl))
		if strings.HasPrefix(name, trackPrefix) {
			continue
		}
		interp := C.Z3_model_get_const_interp(raw, model, decl)
		if interp == nil {
			continue
		}
		value, err := b.abstractToPrimitive(interp)
		if err != nil {
			return nil, &solvent.BackendError{Msg: fmt.Sprintf("model value of %s", name), Err: err}
		}
		out[name] = value
	}
	return out, nil
}

// Eval enumerates up to n distinct values of expr.
func (b *Backend) Eval(expr *solvent.Node, n int, extra []*solvent.Node, s solvent.Session, cb solvent.ModelCallback) ([]any, error) {
	rows, err := b.BatchEval([]*solvent.Node{expr}, n, extra, s, cb)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row[0]
	}
	return values, nil
}

// BatchEval enumerates up to n distinct joint assignments to exprs. Each
// found assignment is blocked before the next check, so rows never repeat.
// Everything happens inside one scope; the session is left as it was.
func (b *Backend) BatchEval(exprs []*solvent.Node, n int, extra []*solvent.Node, s solvent.Session, cb solvent.ModelCallback) ([][]any, error) {
	sess, err := b.session(s)
	if err != nil {
		return nil, err
	}
	if len(exprs) == 0 || n <= 0 {
		return nil, nil
	}
	raw := b.ctx.raw

	asts := make([]C.Z3_ast, len(exprs))
	for i, expr := range exprs {
		if asts[i], err = b.convert(expr); err != nil {
			return nil, err
		}
	}

	C.Z3_solver_push(raw, sess.solver)
	defer C.Z3_solver_pop(raw, sess.solver, 1)
	if err := b.assertNodes(sess.solver, extra); err != nil {
		return nil, err
	}

	var results [][]any
	for len(results) < n {
		sat, err := b.check(sess.solver)
		if err != nil {
			return nil, err
		}
		if !sat {
			break
		}

		model := C.Z3_solver_get_model(raw, sess.solver)
		if err := b.ctx.err("Z3_solver_get_model"); err != nil {
			return nil, err
		}
		C.Z3_model_inc_ref(raw, model)

		row := make([]any, len(asts))
		blockers := make([]C.Z3_ast, len(asts))
		var evalErr error
		for i, ast := range asts {
			var value C.Z3_ast
			if !C.Z3_model_eval(raw, model, ast, true, &value) {
				evalErr = &solvent.BackendError{Msg: "model evaluation failed"}
				break
			}
			if row[i], evalErr = b.abstractToPrimitive(value); evalErr != nil {
				break
			}
			// The evaluated term is reused directly in the blocking clause,
			// so no primitive re-encoding happens.
			blockers[i] = C.Z3_mk_not(raw, C.Z3_mk_eq(raw, ast, value))
		}
		if evalErr == nil && cb != nil {
			var values solvent.Model
			if values, evalErr = b.modelValues(model); evalErr == nil {
				cb(values)
			}
		}
		C.Z3_model_dec_ref(raw, model)
		if evalErr != nil {
			return nil, evalErr
		}

		results = append(results, row)
		if len(results) == n {
			break
		}

		block := blockers[0]
		if len(blockers) > 1 {
			block = C.Z3_mk_or(raw, C.uint(len(blockers)), &blockers[0])
		}
		C.Z3_solver_assert(raw, sess.solver, block)
		if err := b.ctx.err("Z3_solver_assert"); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Min binary-searches the minimum of a bitvector expression under the
// session's constraints plus extra.
func (b *Backend) Min(expr *solvent.Node, extra []*solvent.Node, signed bool, s solvent.Session, cb solvent.ModelCallback) (uint64, error) {
	return b.extremum(expr, extra, signed, false, s, cb)
}

// Max is Min for the maximum.
func (b *Backend) Max(expr *solvent.Node, extra []*solvent.Node, signed bool, s solvent.Session, cb solvent.ModelCallback) (uint64, error) {
	return b.extremum(expr, extra, signed, true, s, cb)
}

// extremum narrows [lo, hi] by halving: each probe asks whether a value at
// or beyond the midpoint exists, so the search needs one check per bit of
// width plus a final confirming check that also drives the model callback.
func (b *Backend) extremum(expr *solvent.Node, extra []*solvent.Node, signed, max bool, s solvent.Session, cb solvent.ModelCallback) (uint64, error) {
	sess, err := b.session(s)
	if err != nil {
		return 0, err
	}
	if expr.Category() != solvent.CategoryBV {
		return 0, &solvent.BackendError{Msg: fmt.Sprintf("extremum of %s expression", expr.Category())}
	}
	raw := b.ctx.raw
	width := expr.Length

	ast, err := b.convert(expr)
	if err != nil {
		return 0, err
	}

	one := big.NewInt(1)
	lo, hi := new(big.Int), new(big.Int)
	if signed {
		lo.Neg(new(big.Int).Lsh(one, width-1))
		hi.Sub(new(big.Int).Lsh(one, width-1), one)
	} else {
		hi.Sub(new(big.Int).Lsh(one, width), one)
	}

	C.Z3_solver_push(raw, sess.solver)
	defer C.Z3_solver_pop(raw, sess.solver, 1)
	if err := b.assertNodes(sess.solver, extra); err != nil {
		return 0, err
	}

	probe := func(bound *big.Int, upper bool) (bool, error) {
		boundAst, err := b.boundNumeral(bound, width)
		if err != nil {
			return false, err
		}
		var cond C.Z3_ast
		switch {
		case upper && signed:
			cond = C.Z3_mk_bvsle(raw, ast, boundAst)
		case upper:
			cond = C.Z3_mk_bvule(raw, ast, boundAst)
		case signed:
			cond = C.Z3_mk_bvsge(raw, ast, boundAst)
		default:
			cond = C.Z3_mk_bvuge(raw, ast, boundAst)
		}

		C.Z3_solver_push(raw, sess.solver)
		C.Z3_solver_assert(raw, sess.solver, cond)
		sat, err := b.check(sess.solver)
		C.Z3_solver_pop(raw, sess.solver, 1)
		return sat, err
	}

	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		if max {
			mid.Add(mid, one)
		}
		mid.Rsh(mid, 1)

		sat, err := probe(mid, !max)
		if err != nil {
			return 0, err
		}
		switch {
		case sat && max:
			lo = mid
		case sat:
			hi = mid
		case max:
			hi = mid.Sub(mid, one)
		default:
			lo = mid.Add(mid, one)
		}
	}

	// Confirm the candidate; an unsatisfiable confirmation means the session
	// itself was unsatisfiable.
	boundAst, err := b.boundNumeral(lo, width)
	if err != nil {
		return 0, err
	}
	C.Z3_solver_push(raw, sess.solver)
	C.Z3_solver_assert(raw, sess.solver, C.Z3_mk_eq(raw, ast, boundAst))
	sat, err := b.check(sess.solver)
	if err == nil && sat && cb != nil {
		model := C.Z3_solver_get_model(raw, sess.solver)
		if modelErr := b.ctx.err("Z3_solver_get_model"); modelErr == nil {
			C.Z3_model_inc_ref(raw, model)
			var values solvent.Model
			if values, err = b.modelValues(model); err == nil {
				cb(values)
			}
			C.Z3_model_dec_ref(raw, model)
		}
	}
	C.Z3_solver_pop(raw, sess.solver, 1)
	if err != nil {
		return 0, err
	}
	if !sat {
		return 0, &solvent.BackendError{Msg: "extremum of unsatisfiable constraints"}
	}

	return truncate(lo, width), nil
}

// boundNumeral encodes a possibly negative bound as a two's-complement
// numeral of the given width.
func (b *Backend) boundNumeral(v *big.Int, width uint) (C.Z3_ast, error) {
	sort := C.Z3_mk_bv_sort(b.ctx.raw, C.uint(width))
	return b.numeralString(twosComplement(v, width), sort)
}

func twosComplement(v *big.Int, width uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), width)
	return new(big.Int).Mod(v, m)
}

func truncate(v *big.Int, width uint) uint64 {
	enc := twosComplement(v, width)
	if enc.BitLen() > 64 {
		enc = new(big.Int).And(enc, new(big.Int).SetUint64(^uint64(0)))
	}
	return enc.Uint64()
}

//
// Simplification
//

// boolTacticNames is the pipeline applied to boolean terms, in order. The
// plain simplifier alone leaves too much of the propagation to the solver.
var boolTacticNames = []string{
	"simplify",
	"propagate-ineqs",
	"propagate-values",
	"unit-subsume-simplify",
	"aig",
}

// Simplify rewrites a node with the native simplifier. Boolean terms go
// through the tactic pipeline, everything else through plain simplification.
// The result is marked fully simplified; so are the branches of a resulting
// conjunction or disjunction, since the pipeline simplified each of them.
func (b *Backend) Simplify(n *solvent.Node) (*solvent.Node, error) {
	if n.SimplifyLevel >= solvent.SimplifyFull {
		return n, nil
	}
	raw := b.ctx.raw

	ast, err := b.convert(n)
	if err != nil {
		return nil, err
	}

	var simplified C.Z3_ast
	if n.Category() == solvent.CategoryBool {
		if simplified, err = b.applyBoolTactics(ast); err != nil {
			return nil, err
		}
	} else {
		simplified = C.Z3_simplify(raw, ast)
		if err := b.ctx.err("Z3_simplify"); err != nil {
			return nil, err
		}
	}

	out, err := b.Abstract(simplified)
	if err != nil {
		return nil, err
	}
	out.MarkSimplified(solvent.SimplifyFull)
	if out.Op == solvent.OpAnd || out.Op == solvent.OpOr {
		for _, arg := range out.Args {
			if child, ok := arg.(*solvent.Node); ok {
				child.MarkSimplified(solvent.SimplifyFull)
			}
		}
	}
	return out, nil
}

func (b *Backend) boolTactic() (C.Z3_tactic, error) {
	if b.tactic != nil {
		return b.tactic, nil
	}
	raw := b.ctx.raw

	var combined C.Z3_tactic
	for _, name := range boolTacticNames {
		cname := C.CString(name)
		step := C.Z3_mk_tactic(raw, cname)
		cfree(cname)
		if err := b.ctx.err("Z3_mk_tactic"); err != nil {
			return nil, err
		}
		C.Z3_tactic_inc_ref(raw, step)

		if combined == nil {
			combined = step
			continue
		}
		next := C.Z3_tactic_and_then(raw, combined, step)
		C.Z3_tactic_inc_ref(raw, next)
		C.Z3_tactic_dec_ref(raw, combined)
		C.Z3_tactic_dec_ref(raw, step)
		combined = next
	}

	b.tactic = combined
	return combined, nil
}

func (b *Backend) applyBoolTactics(ast C.Z3_ast) (C.Z3_ast, error) {
	raw := b.ctx.raw

	tactic, err := b.boolTactic()
	if err != nil {
		return nil, err
	}

	goal := C.Z3_mk_goal(raw, false, false, false)
	C.Z3_goal_inc_ref(raw, goal)
	defer C.Z3_goal_dec_ref(raw, goal)
	C.Z3_goal_assert(raw, goal, ast)
	if err := b.ctx.err("Z3_goal_assert"); err != nil {
		return nil, err
	}

	result := C.Z3_tactic_apply(raw, tactic, goal)
	if err := b.ctx.err("Z3_tactic_apply"); err != nil {
		return nil, err
	}
	C.Z3_apply_result_inc_ref(raw, result)
	defer C.Z3_apply_result_dec_ref(raw, result)

	var parts []C.Z3_ast
	for i := 0; i < int(C.Z3_apply_result_get_num_subgoals(raw, result)); i++ {
		subgoal := C.Z3_apply_result_get_subgoal(raw, result, C.uint(i))
		for j := 0; j < int(C.Z3_goal_size(raw, subgoal)); j++ {
			parts = append(parts, C.Z3_goal_formula(raw, subgoal, C.uint(j)))
		}
	}

	switch len(parts) {
	case 0:
		return C.Z3_mk_true(raw), nil
	case 1:
		return parts[0], nil
	default:
		return C.Z3_mk_and(raw, C.uint(len(parts)), &parts[0]), nil
	}
}

// IsTrue reports whether the node simplifies to the true constant.
func (b *Backend) IsTrue(n *solvent.Node) (bool, error) {
	return b.isConst(n, C.Z3_OP_TRUE)
}

// IsFalse reports whether the node simplifies to the false constant.
func (b *Backend) IsFalse(n *solvent.Node) (bool, error) {
	return b.isConst(n, C.Z3_OP_FALSE)
}

func (b *Backend) isConst(n *solvent.Node, kind C.Z3_decl_kind) (bool, error) {
	raw := b.ctx.raw

	ast, err := b.convert(n)
	if err != nil {
		return false, err
	}
	simplified := C.Z3_simplify(raw, ast)
	if err := b.ctx.err("Z3_simplify"); err != nil {
		return false, err
	}
	if C.Z3_get_ast_kind(raw, simplified) != C.Z3_APP_AST {
		return false, nil
	}
	app := C.Z3_to_app(raw, simplified)
	return C.Z3_get_decl_kind(raw, C.Z3_get_app_decl(raw, app)) == kind, nil
}
