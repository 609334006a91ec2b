package shared

// Container is the vocabulary every shared container exposes, whatever its
// internal feature set. Typed collaborators (string, array, hash, handle
// wrappers) satisfy it by embedding a [*Cell] or an [*Object].
type Container interface {
	Lock() error
	Unlock() error
	Sync(name string, fn func() error, args ...any) error
	ShareIt()
	IsShared() bool
}

// Component is a [Container] holding a value of type T.
type Component[T any] interface {
	Container
	Get() (T, error)
	Set(v T) error
	Apply(fn func(v *T) error) error
	Update(fn func(current T) T) (T, error)
}

var (
	_ Component[any]            = (*Cell[any])(nil)
	_ Component[[]any]          = (*Cell[[]any])(nil)
	_ Component[map[string]any] = (*Cell[map[string]any])(nil)
	_ Container                 = (*Object)(nil)
)
