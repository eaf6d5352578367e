// Package slot implements the shared persisted store the storefront
// keeps all of its state in: named slots, each holding one JSON payload,
// with a monotonic version stamp per slot so concurrent read-modify-write
// cycles fail detectably instead of losing updates.
package slot

import (
	"context"
	"encoding/json"
	"errors"
)

// AnyVersion skips the version check on Put.
const AnyVersion int64 = -1

// ErrConflict is returned by Put when the slot version moved since the
// caller read it.
var ErrConflict = errors.New("slot version conflict")

// Store is the port for versioned slot persistence. Get returns a nil
// payload and version 0 for an absent slot. Put succeeds only when
// version matches the slot's current version (or is AnyVersion) and
// bumps the stamp by one.
type Store interface {
	Get(ctx context.Context, name string) (payload []byte, version int64, err error)
	Put(ctx context.Context, name string, payload []byte, version int64) error
}

// Collection reads and writes one slot holding a JSON array of T.
type Collection[T any] struct {
	Store Store
	Name  string
}

// Read returns the current items together with the slot version observed.
// An absent slot, or one whose payload does not parse, reads as empty:
// corrupt state is deliberately treated the same as no state instead of
// being surfaced to callers.
func (c Collection[T]) Read(ctx context.Context) ([]T, int64, error) {
	payload, ver, err := c.Store.Get(ctx, c.Name)
	if err != nil {
		return nil, 0, err
	}
	if len(payload) == 0 {
		return nil, ver, nil
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, ver, nil
	}
	return items, ver, nil
}

// Write replaces the slot content unconditionally.
func (c Collection[T]) Write(ctx context.Context, items []T) error {
	return c.put(ctx, items, AnyVersion)
}

func (c Collection[T]) put(ctx context.Context, items []T, version int64) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.Store.Put(ctx, c.Name, payload, version)
}

// updateAttempts bounds CAS retries before giving up with ErrConflict.
const updateAttempts = 5

// Update runs a read-modify-write cycle with a version check on the
// write, retrying when another writer got in between. fn returning false
// skips the write entirely. The items that ended up in the slot are
// returned.
func (c Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, bool)) ([]T, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		items, ver, err := c.Read(ctx)
		if err != nil {
			return nil, err
		}
		next, write := fn(items)
		if !write {
			return items, nil
		}
		if err := c.put(ctx, next, ver); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		return next, nil
	}
	return nil, ErrConflict
}
