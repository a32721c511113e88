package z3

import (
	"os"
	"os/signal"
	"sync"
)

// registry tracks every live context so that an interrupt can be broadcast
// process-wide. Contexts deregister on Close.
var registry = struct {
	mu   sync.Mutex
	ctxs map[*Context]struct{}
}{ctxs: make(map[*Context]struct{})}

var handleOnce sync.Once

func registerContext(ctx *Context) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.ctxs[ctx] = struct{}{}
}

func deregisterContext(ctx *Context) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.ctxs, ctx)
}

// InterruptAll interrupts every live context. In-flight checks return
// unknown and are surfaced as ErrSolverInterrupted; idle contexts are
// unaffected.
func InterruptAll() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for ctx := range registry.ctxs {
		ctx.Interrupt()
	}
}

// HandleInterrupts installs a process-wide relay from the given signals
// (SIGINT by default) to InterruptAll. The relay forwards the signal to the
// default disposition after interrupting, so a second delivery still kills
// the process. Installing more than once is a no-op.
func HandleInterrupts(signals ...os.Signal) {
	handleOnce.Do(func() {
		if len(signals) == 0 {
			signals = []os.Signal{os.Interrupt}
		}
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)
		go func() {
			sig := <-ch
			InterruptAll()
			// Chain: stop relaying and re-raise so the default disposition
			// (or another handler) still sees the signal.
			signal.Stop(ch)
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				p.Signal(sig)
			}
		}()
	})
}
