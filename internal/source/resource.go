package source

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// FetchFunc produces the value held by a Resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resource runs one fetch and remembers its outcome. A failed fetch is
// logged and leaves the zero value, so callers render "unavailable"
// instead of handling the error.
type Resource[T any] struct {
	name    string
	fetch   FetchFunc[T]
	logger  *slog.Logger
	once    sync.Once
	done    chan struct{}
	loading atomic.Bool

	data T
	err  error
}

// NewResource returns an unstarted Resource. It reports Loading until the
// fetch settles.
func NewResource[T any](logger *slog.Logger, name string, fetch FetchFunc[T]) *Resource[T] {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resource[T]{
		name:   name,
		fetch:  fetch,
		logger: logger,
		done:   make(chan struct{}),
	}
	r.loading.Store(true)
	return r
}

// Start runs the fetch in the background.
func (r *Resource[T]) Start(ctx context.Context) {
	go r.run(ctx)
}

// Load runs the fetch if it has not run yet, waits for it, and returns the
// data (the zero value on failure).
func (r *Resource[T]) Load(ctx context.Context) T {
	r.run(ctx)
	<-r.done
	return r.data
}

func (r *Resource[T]) run(ctx context.Context) {
	r.once.Do(func() {
		defer close(r.done)
		defer r.loading.Store(false)

		data, err := r.fetch(ctx)
		if err != nil {
			r.logger.Error("fetch failed", slog.String("resource", r.name), slog.Any("err", err))
			r.err = err
			return
		}
		r.data = data
	})
}

// Loading reports whether the fetch has not settled yet.
func (r *Resource[T]) Loading() bool { return r.loading.Load() }

// Done is closed once the fetch settles.
func (r *Resource[T]) Done() <-chan struct{} { return r.done }

// Data returns the fetched value, or the zero value while loading or after a failure.
func (r *Resource[T]) Data() T {
	select {
	case <-r.done:
		return r.data
	default:
		var zero T
		return zero
	}
}

// Err returns the fetch error once settled.
func (r *Resource[T]) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}
