// Package notify fans cart-change events out to same-process observers.
package notify

import (
	"sync"

	"github.com/example/planshop/internal/domain"
)

// Hub delivers events synchronously, in subscription order, on the
// mutating goroutine, after the underlying write has completed.
type Hub struct {
	mu        sync.RWMutex
	listeners []func(domain.CartEvent)
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn for every subsequent cart change. There is no
// unsubscribe; observers live as long as the process.
func (h *Hub) Subscribe(fn func(domain.CartEvent)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *Hub) CartChanged(ev domain.CartEvent) {
	h.mu.RLock()
	listeners := make([]func(domain.CartEvent), len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

var _ domain.CartNotifier = (*Hub)(nil)
