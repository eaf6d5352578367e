package usecase

import (
	"context"
	"strconv"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
)

// Cart owns the shopper's persisted selection. Every mutator re-reads
// and re-writes the cart slot, persists the aggregate quantity to its
// own slot, notifies observers, and returns the new aggregate count.
type Cart struct {
	Lines    slot.Collection[domain.CartLine]
	Store    slot.Store
	Notifier domain.CartNotifier
}

func NewCart(store slot.Store, notifier domain.CartNotifier) *Cart {
	return &Cart{
		Lines:    slot.Collection[domain.CartLine]{Store: store, Name: domain.SlotCart},
		Store:    store,
		Notifier: notifier,
	}
}

// Items returns the current cart lines.
func (c *Cart) Items(ctx context.Context) ([]domain.CartLine, error) {
	items, _, err := c.Lines.Read(ctx)
	return items, err
}

// Add upserts a line by product id: an existing line accumulates qty, an
// absent one is inserted as given.
func (c *Cart) Add(ctx context.Context, productID string, qty int64) (int64, error) {
	items, err := c.Lines.Update(ctx, func(items []domain.CartLine) ([]domain.CartLine, bool) {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Qty += qty
				return items, true
			}
		}
		return append(items, domain.CartLine{ProductID: productID, Qty: qty}), true
	})
	if err != nil {
		return 0, err
	}
	return c.finish(ctx, items)
}

// Remove filters the line out. Removing an id that is not in the cart is
// not an error; the cart is rewritten as-is and observers still hear
// about it.
func (c *Cart) Remove(ctx context.Context, productID string) (int64, error) {
	items, err := c.Lines.Update(ctx, func(items []domain.CartLine) ([]domain.CartLine, bool) {
		kept := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		return kept, true
	})
	if err != nil {
		return 0, err
	}
	return c.finish(ctx, items)
}

// SetQty updates an existing line to max(1, qty). When the line is
// absent it is a silent no-op that returns the persisted count.
func (c *Cart) SetQty(ctx context.Context, productID string, qty int64) (int64, error) {
	if qty < 1 {
		qty = 1
	}
	found := false
	items, err := c.Lines.Update(ctx, func(items []domain.CartLine) ([]domain.CartLine, bool) {
		for i := range items {
			if items[i].ProductID == productID {
				found = true
				items[i].Qty = qty
				return items, true
			}
		}
		return items, false
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return c.Count(ctx)
	}
	return c.finish(ctx, items)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) (int64, error) {
	if err := c.Lines.Write(ctx, nil); err != nil {
		return 0, err
	}
	return c.finish(ctx, nil)
}

// Count reads the separately persisted aggregate count. Anything that
// does not parse as an integer reads as zero.
func (c *Cart) Count(ctx context.Context) (int64, error) {
	payload, _, err := c.Store.Get(ctx, domain.SlotCartCount)
	if err != nil {
		return 0, err
	}
	count, convErr := strconv.ParseInt(string(payload), 10, 64)
	if convErr != nil {
		return 0, nil
	}
	return count, nil
}

// finish persists the aggregate count to its own slot, so observers can
// read it without reconstructing the cart, then notifies synchronously.
func (c *Cart) finish(ctx context.Context, items []domain.CartLine) (int64, error) {
	var count int64
	for _, it := range items {
		count += it.Qty
	}
	payload := []byte(strconv.FormatInt(count, 10))
	if err := c.Store.Put(ctx, domain.SlotCartCount, payload, slot.AnyVersion); err != nil {
		return 0, err
	}
	if c.Notifier != nil {
		c.Notifier.CartChanged(domain.CartEvent{Count: count, Items: items})
	}
	return count, nil
}
