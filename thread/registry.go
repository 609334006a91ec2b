package thread

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/baxromumarov/shared"
	"golang.org/x/sync/errgroup"
)

// Default is the process-wide registry used by the package-level [New] and
// [Lookup].
var Default = NewRegistry()

type key struct {
	namespace string
	name      string
}

// Registry maps (namespace, name) pairs to managed threads. Each pair owns
// exactly one record; every handle for it is a lookup into the table.
type Registry struct {
	mu      sync.Mutex
	records map[key]*record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[key]*record)}
}

// New registers the (namespace, name) pair with [Default], or attaches to it.
func New(namespace, name string, opts ...Option) (*Thread, error) {
	return Default.New(namespace, name, opts...)
}

// Lookup attaches to an existing thread in [Default].
func Lookup(namespace, name string) (*Thread, error) {
	return Default.Lookup(namespace, name)
}

// New registers the pair and returns a handle to it. If the pair already
// exists, New attaches: every option is ignored, the existing live state and
// hooks are kept, and the ignored option names are trace-logged. An empty namespace or name fails with a [shared.KindValidation]
// error.
func (g *Registry) New(namespace, name string, opts ...Option) (*Thread, error) {
	cfg := resolveConfig(opts)
	if namespace == "" || name == "" {
		return nil, shared.NewObject(nil, cfg.object...).Throw(
			shared.KindValidation, "new",
			fmt.Sprintf("namespace and name are required, got %q::%q", namespace, name), 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	k := key{namespace, name}
	if r, ok := g.records[k]; ok {
		if ignored := cfg.names(); len(ignored) > 0 {
			r.obj.Trace("attached", "ignored", strings.Join(ignored, ","))
		} else {
			r.obj.Trace("attached")
		}
		return r.handle(), nil
	}
	r := newRecord(namespace, name, cfg)
	g.records[k] = r
	r.obj.Debug("registered")
	return r.self, nil
}

// Lookup returns a handle to an existing thread. An unknown pair fails with
// a [shared.KindInvalidOperation] error.
func (g *Registry) Lookup(namespace, name string) (*Thread, error) {
	g.mu.Lock()
	r, ok := g.records[key{namespace, name}]
	g.mu.Unlock()
	if !ok {
		return nil, &shared.Error{Kind: shared.KindInvalidOperation, Op: "lookup", Message: fmt.Sprintf("no thread %s::%s", namespace, name)}
	}
	return r.handle(), nil
}

// Remove drops the pair from the table. Existing handles keep working, but
// New will create a fresh record. Removing a running or stopping thread, or
// an unknown pair, fails with a [shared.KindInvalidOperation] error.
func (g *Registry) Remove(namespace, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key{namespace, name}
	r, ok := g.records[k]
	if !ok {
		return &shared.Error{Kind: shared.KindInvalidOperation, Op: "remove", Message: fmt.Sprintf("no thread %s::%s", namespace, name)}
	}
	if st := r.status.Load(); st.IsActive() {
		return r.obj.Throw(shared.KindInvalidOperation, "remove", fmt.Sprintf("thread %s is %s", r, st), 0)
	}
	delete(g.records, k)
	return nil
}

// Threads returns a handle to every registered thread, ordered by
// namespace then name.
func (g *Registry) Threads() []*Thread {
	g.mu.Lock()
	out := make([]*Thread, 0, len(g.records))
	for _, r := range g.records {
		out = append(out, r.handle())
	}
	g.mu.Unlock()
	slices.SortFunc(out, func(a, b *Thread) int { return a.Compare(b) })
	return out
}

// Len returns the number of registered threads.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// Shutdown clears the table and stops every running thread that is not
// detached, waiting up to timeout for each. Stop failures are joined into
// the returned error.
func (g *Registry) Shutdown(timeout time.Duration) error {
	g.mu.Lock()
	records := make([]*record, 0, len(g.records))
	for _, r := range g.records {
		records = append(records, r)
	}
	clear(g.records)
	g.mu.Unlock()

	slices.SortFunc(records, func(a, b *record) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.name, b.name))
	})

	errs := make([]error, len(records))
	var eg errgroup.Group
	for i, r := range records {
		if !r.status.Load().IsActive() {
			continue
		}
		eg.Go(func() error {
			errs[i] = r.self.Stop(timeout)
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}

// handle returns a new handle sharing the record.
func (r *record) handle() *Thread {
	return &Thread{Object: r.obj, rec: r}
}
