package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/planshop/internal/domain"
)

func TestHubDeliversSynchronouslyInOrder(t *testing.T) {
	hub := NewHub()

	var calls []string
	hub.Subscribe(func(ev domain.CartEvent) {
		calls = append(calls, "first")
		assert.Equal(t, int64(3), ev.Count)
	})
	hub.Subscribe(func(ev domain.CartEvent) {
		calls = append(calls, "second")
	})

	hub.CartChanged(domain.CartEvent{Count: 3, Items: []domain.CartLine{{ProductID: "PLN-0001", Qty: 3}}})

	// delivery happened on this goroutine, before CartChanged returned
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestHubWithoutListeners(t *testing.T) {
	hub := NewHub()
	hub.CartChanged(domain.CartEvent{Count: 1})
}
