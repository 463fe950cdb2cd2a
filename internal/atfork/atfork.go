// Package atfork keeps the process-wide list of fork handlers.
//
// Handlers follow pthread_atfork ordering: prepare handlers run in reverse
// registration order before the fork, parent and child handlers run in
// registration order afterwards. A Go program only reaches a forked child
// through exec, so ForkExec runs Prepare and Parent around syscall.ForkExec;
// code that forks by other means is responsible for calling Child in the
// child.
package atfork

import (
	"sync"
	"syscall"
)

// Handler is one set of fork callbacks. Any field may be nil.
type Handler struct {
	Prepare func()
	Parent  func()
	Child   func()
}

type entry struct {
	id int
	h  Handler
}

var (
	mu       sync.Mutex
	handlers []entry
	nextID   int
)

// Register adds h and returns a function that removes it again.
func Register(h Handler) (unregister func()) {
	mu.Lock()
	nextID++
	id := nextID
	handlers = append(handlers, entry{id: id, h: h})
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			for i, e := range handlers {
				if e.id == id {
					handlers = append(handlers[:i], handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// snapshot copies the handler list so callbacks run without holding mu.
func snapshot() []Handler {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Handler, len(handlers))
	for i, e := range handlers {
		out[i] = e.h
	}
	return out
}

// Prepare runs every prepare handler, most recently registered first.
func Prepare() {
	hs := snapshot()
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i].Prepare != nil {
			hs[i].Prepare()
		}
	}
}

// Parent runs every parent handler in registration order.
func Parent() {
	for _, h := range snapshot() {
		if h.Parent != nil {
			h.Parent()
		}
	}
}

// Child runs every child handler in registration order.
func Child() {
	for _, h := range snapshot() {
		if h.Child != nil {
			h.Child()
		}
	}
}

// ForkExec starts argv0 in a child process with every registered handler
// quiescing its state for the duration of the fork.
func ForkExec(argv0 string, argv []string, attr *syscall.ProcAttr) (pid int, err error) {
	Prepare()
	defer Parent()
	return syscall.ForkExec(argv0, argv, attr)
}
