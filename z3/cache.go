package z3

/*
#include <z3.h>
*/
import "C"

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solventlabs/solvent"
)

// astCache memoizes abstraction results keyed by native term identity. Every
// cached term is pinned with an extra native reference so the entry stays
// valid for the cache's lifetime; eviction releases the reference.
type astCache struct {
	ctx *Context
	lru *lru.Cache[uint64, astEntry]
}

type astEntry struct {
	ast  C.Z3_ast
	node *solvent.Node
}

func newASTCache(ctx *Context, size int) *astCache {
	c := &astCache{ctx: ctx}
	c.lru, _ = lru.NewWithEvict[uint64, astEntry](size, func(_ uint64, e astEntry) {
		C.Z3_dec_ref(ctx.raw, e.ast)
	})
	return c
}

func (c *astCache) get(ast C.Z3_ast) (*solvent.Node, bool) {
	e, ok := c.lru.Get(astHash(ast))
	if !ok {
		return nil, false
	}
	return e.node, true
}

func (c *astCache) add(ast C.Z3_ast, node *solvent.Node) {
	key := astHash(ast)
	if c.lru.Contains(key) {
		return
	}
	C.Z3_inc_ref(c.ctx.raw, ast)
	c.lru.Add(key, astEntry{ast: ast, node: node})
}

// purge evicts every entry, releasing all pinned references.
func (c *astCache) purge() {
	c.lru.Purge()
}
