package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// BuildFunc produces a fresh value for a Value cache.
type BuildFunc[T any] func(ctx context.Context) (T, error)

// snapshot is one built value with its build timestamp.
type snapshot[T any] struct {
	value   T
	builtAt time.Time
}

// Value caches a single value that is rebuilt wholesale once it is older
// than the TTL. Readers never lock: a rebuild swaps the snapshot pointer.
// Concurrent callers that find the value stale share one rebuild.
// It is safe for concurrent use.
type Value[T any] struct {
	ttl     time.Duration
	build   BuildFunc[T]
	current atomic.Pointer[snapshot[T]]
	group   singleflight.Group
	now     func() time.Time
}

// Option configures a Value.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Value that is built lazily on the first Get.
func New[T any](ttl time.Duration, build BuildFunc[T], opts ...Option) *Value[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Value[T]{
		ttl:   ttl,
		build: build,
		now:   o.now,
	}
}

// Get returns the cached value, rebuilding it first if it is missing or
// expired. The returned error is non-nil only for callers that took part in
// a rebuild that reported one; a value marked with Keep is still cached and
// returned alongside that error.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if s := v.current.Load(); s != nil && v.fresh(s) {
		return s.value, nil
	}
	return v.rebuild(ctx, false)
}

// Refresh rebuilds the value regardless of its age.
func (v *Value[T]) Refresh(ctx context.Context) (T, error) {
	return v.rebuild(ctx, true)
}

// Invalidate drops the cached value so the next Get rebuilds it.
func (v *Value[T]) Invalidate() {
	v.current.Store(nil)
}

// Snapshot returns the cached value and its build time without triggering
// a rebuild. ok is false when nothing has been built yet.
func (v *Value[T]) Snapshot() (value T, builtAt time.Time, ok bool) {
	s := v.current.Load()
	if s == nil {
		return value, time.Time{}, false
	}
	return s.value, s.builtAt, true
}

// TTL returns the configured time-to-live.
func (v *Value[T]) TTL() time.Duration {
	return v.ttl
}

// Stale reports whether the next Get will rebuild.
func (v *Value[T]) Stale() bool {
	s := v.current.Load()
	return s == nil || !v.fresh(s)
}

func (v *Value[T]) fresh(s *snapshot[T]) bool {
	return v.now().Sub(s.builtAt) < v.ttl
}

func (v *Value[T]) rebuild(ctx context.Context, force bool) (T, error) {
	// The shared rebuild must not die with whichever caller started it.
	buildCtx := context.WithoutCancel(ctx)

	res, err, _ := v.group.Do("build", func() (any, error) {
		if !force {
			if s := v.current.Load(); s != nil && v.fresh(s) {
				return s.value, nil
			}
		}

		value, err := v.build(buildCtx)
		if err == nil || IsKept(err) {
			v.current.Store(&snapshot[T]{value: value, builtAt: v.now()})
		}
		return value, err
	})

	value, _ := res.(T)
	return value, err
}

// keptError marks a build error whose value is still worth caching.
type keptError struct {
	err error
}

func (e *keptError) Error() string { return e.err.Error() }
func (e *keptError) Unwrap() error { return e.err }

// Keep wraps a build error so that the value returned with it is cached
// for the full TTL instead of being discarded.
func Keep(err error) error {
	if err == nil {
		return nil
	}
	return &keptError{err: err}
}

// IsKept reports whether err was produced by Keep.
func IsKept(err error) bool {
	var ke *keptError
	return errors.As(err, &ke)
}
