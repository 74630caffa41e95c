package reqctx

import (
	"github.com/mizuame/searchgate/core"
)

// cell is the reset/commit surface shared by all transactional values,
// used by the request context to cascade its own reset/commit.
type cell interface {
	Name() string
	Reset()
	Commit()
}

// Transactional guards one mutable field of a request context. Reads see
// the initial value until the first mutation; Reset discards mutations;
// Commit publishes the current value through onCommit exactly once.
type Transactional[T any] struct {
	name      string
	initial   T
	current   T
	dirty     bool
	committed bool
	copyFn    func(T) T
	onCommit  func(T)
}

func NewTransactional[T any](name string, initial T, copyFn func(T) T, onCommit func(T)) *Transactional[T] {
	return &Transactional[T]{
		name:     name,
		initial:  initial,
		copyFn:   copyFn,
		onCommit: onCommit,
	}
}

func (t *Transactional[T]) Name() string {
	return t.name
}

func (t *Transactional[T]) Get() T {
	if t.dirty {
		return t.current
	}
	return t.initial
}

func (t *Transactional[T]) GetInitial() T {
	return t.initial
}

func (t *Transactional[T]) Mutate(value T) {
	t.current = value
	t.dirty = true
}

// MutateInPlace hands a mutable copy of the current value to fn and stores
// the result, so callers never alias the initial value.
func (t *Transactional[T]) MutateInPlace(fn func(T) T) {
	t.Mutate(fn(t.copyFn(t.Get())))
}

func (t *Transactional[T]) Reset() {
	t.dirty = false
}

// Commit publishes the current value. A second call is a programming
// error: the engine's control flow guarantees at most one winning block.
func (t *Transactional[T]) Commit() {
	if t.committed {
		panic(core.NewErrorDoubleCommit(t.name))
	}
	t.committed = true
	if t.onCommit != nil {
		t.onCommit(t.Get())
	}
}
