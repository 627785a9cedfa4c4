package cache

import (
	"context"
	"time"
)

// Cache events reported to an Observer.
const (
	EventHit   = "hit"
	EventMiss  = "miss"
	EventSet   = "set"
	EventDel   = "del"
	EventError = "error"
	EventPurge = "purge"
)

// Observer receives cache events. metrics.Metrics implements it.
type Observer interface {
	ObserveCache(store, event string)
}

// Instrumented wraps a Store and reports every operation to an Observer.
type Instrumented struct {
	store    Store
	name     string
	observer Observer
}

// Instrument wraps store. name labels the events, e.g. "sqlite".
func Instrument(store Store, name string, observer Observer) *Instrumented {
	return &Instrumented{
		store:    store,
		name:     name,
		observer: observer,
	}
}

// Unwrap returns the wrapped store.
func (i *Instrumented) Unwrap() Store {
	return i.store
}

// Get implements Store.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := i.store.Get(ctx, key)
	switch {
	case err != nil:
		i.observe(EventError)
	case found:
		i.observe(EventHit)
	default:
		i.observe(EventMiss)
	}
	return value, found, err
}

// Set implements Store.
func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := i.store.Set(ctx, key, value, ttl); err != nil {
		i.observe(EventError)
		return err
	}
	i.observe(EventSet)
	return nil
}

// Delete implements Store.
func (i *Instrumented) Delete(ctx context.Context, key string) error {
	if err := i.store.Delete(ctx, key); err != nil {
		i.observe(EventError)
		return err
	}
	i.observe(EventDel)
	return nil
}

// Purge implements Purger when the wrapped store does.
func (i *Instrumented) Purge(ctx context.Context) (int64, error) {
	n, err := Purge(ctx, i.store)
	if err != nil {
		return 0, err
	}
	i.observe(EventPurge)
	return n, nil
}

// Close implements Store.
func (i *Instrumented) Close() error {
	return i.store.Close()
}

func (i *Instrumented) observe(event string) {
	if i.observer != nil {
		i.observer.ObserveCache(i.name, event)
	}
}
