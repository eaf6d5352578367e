package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
)

func newCheckout(t *testing.T, policy UnresolvedLinePolicy) (*Checkout, *Catalog, *Cart, *slot.Memory) {
	t.Helper()
	store := slot.NewMemory()
	catalog := NewCatalog(store)
	cart := NewCart(store, &spyNotifier{})
	return NewCheckout(store, catalog, cart, policy), catalog, cart, store
}

// Scenario from the storefront's history: 2 × 129000 must come out as
// 258000, with the unit price snapshotted on the order line.
func TestCheckoutTotalLaw(t *testing.T) {
	ctx := context.Background()
	checkout, catalog, cart, _ := newCheckout(t, UnresolvedZero)
	require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
		{ID: "PLN-0001", Modelo: "Casa 120", Precio: 129000},
	}))
	_, err := cart.Add(ctx, "PLN-0001", 2)
	require.NoError(t, err)

	order, err := checkout.Execute(ctx, Customer{Email: "a@b.cl"})
	require.NoError(t, err)

	assert.Equal(t, int64(258000), order.Total)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(2), order.Lines[0].Qty)
	assert.Equal(t, int64(129000), order.Lines[0].UnitPrice)
	assert.Equal(t, "a@b.cl", order.Email)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "checkout must empty the cart")

	count, err := cart.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutAppendsToOrderLog(t *testing.T) {
	ctx := context.Background()
	checkout, catalog, cart, store := newCheckout(t, UnresolvedZero)
	require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
		{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
	}))

	for i := 0; i < 2; i++ {
		_, err := cart.Add(ctx, "PLN-0001", 1)
		require.NoError(t, err)
		_, err = checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
	}

	orders, err := NewOrders(store).List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.NotEqual(t, orders[0].ID, orders[1].ID)
}

func TestCheckoutEmptyCartChangesNothing(t *testing.T) {
	ctx := context.Background()
	checkout, _, _, store := newCheckout(t, UnresolvedZero)

	_, err := checkout.Execute(ctx, Customer{Email: "a@b.cl"})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	payload, ver, err := store.Get(ctx, domain.SlotOrders)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, int64(0), ver, "the order log slot must stay untouched")
}

func TestCheckoutPriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	ctx := context.Background()
	checkout, catalog, cart, store := newCheckout(t, UnresolvedZero)
	require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
		{ID: "PLN-0001", Modelo: "Casa 120", Precio: 129000},
	}))
	_, err := cart.Add(ctx, "PLN-0001", 1)
	require.NoError(t, err)

	order, err := checkout.Execute(ctx, Customer{})
	require.NoError(t, err)

	_, err = catalog.Upsert(ctx, domain.AuthoredProduct{ID: "PLN-0001", Modelo: "Casa 120", Precio: 999999})
	require.NoError(t, err)

	orders, err := NewOrders(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, int64(129000), orders[0].Lines[0].UnitPrice)
	assert.Equal(t, int64(129000), orders[0].Total)
}

func TestUnresolvedLinePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("zero prices the line at 0", func(t *testing.T) {
		checkout, catalog, cart, _ := newCheckout(t, UnresolvedZero)
		require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
			{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
		}))
		_, err := cart.Add(ctx, "PLN-0001", 1)
		require.NoError(t, err)
		_, err = cart.Add(ctx, "GHOST-1", 2)
		require.NoError(t, err)

		order, err := checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
		require.Len(t, order.Lines, 2)
		assert.Equal(t, int64(0), order.Lines[1].UnitPrice)
		assert.Equal(t, int64(100), order.Total)
	})

	t.Run("exclude drops the line", func(t *testing.T) {
		checkout, catalog, cart, _ := newCheckout(t, UnresolvedExclude)
		require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
			{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
		}))
		_, err := cart.Add(ctx, "PLN-0001", 1)
		require.NoError(t, err)
		_, err = cart.Add(ctx, "GHOST-1", 2)
		require.NoError(t, err)

		order, err := checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
		require.Len(t, order.Lines, 1)
		assert.Equal(t, "PLN-0001", order.Lines[0].ProductID)
		assert.Equal(t, int64(100), order.Total)
	})

	t.Run("exclude with nothing left fails", func(t *testing.T) {
		checkout, catalog, cart, store := newCheckout(t, UnresolvedExclude)
		require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
			{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
		}))
		_, err := cart.Add(ctx, "GHOST-1", 2)
		require.NoError(t, err)

		_, err = checkout.Execute(ctx, Customer{})
		assert.ErrorIs(t, err, domain.ErrUnresolvedLine)

		orders, err := NewOrders(store).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("fail rejects the checkout and keeps the cart", func(t *testing.T) {
		checkout, catalog, cart, store := newCheckout(t, UnresolvedFail)
		require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
			{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
		}))
		_, err := cart.Add(ctx, "PLN-0001", 1)
		require.NoError(t, err)
		_, err = cart.Add(ctx, "GHOST-1", 2)
		require.NoError(t, err)

		_, err = checkout.Execute(ctx, Customer{})
		assert.ErrorIs(t, err, domain.ErrUnresolvedLine)

		items, err := cart.Items(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		orders, err := NewOrders(store).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestCheckoutEmailResolution(t *testing.T) {
	ctx := context.Background()

	seedAndFill := func(t *testing.T) (*Checkout, *slot.Memory) {
		checkout, catalog, cart, store := newCheckout(t, UnresolvedZero)
		require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
			{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
		}))
		_, err := cart.Add(ctx, "PLN-0001", 1)
		require.NoError(t, err)
		return checkout, store
	}

	t.Run("explicit argument wins, trimmed and lowercased", func(t *testing.T) {
		checkout, store := seedAndFill(t)
		require.NoError(t, store.Put(ctx, domain.SlotSession, []byte(`{"correo":"session@site.cl"}`), slot.AnyVersion))

		order, err := checkout.Execute(ctx, Customer{Email: "  Cliente@Site.CL "})
		require.NoError(t, err)
		assert.Equal(t, "cliente@site.cl", order.Email)
	})

	t.Run("session identity as fallback", func(t *testing.T) {
		checkout, store := seedAndFill(t)
		require.NoError(t, store.Put(ctx, domain.SlotSession, []byte(`{"correo":"Session@Site.CL","rol":"usuario"}`), slot.AnyVersion))

		order, err := checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
		assert.Equal(t, "session@site.cl", order.Email)
	})

	t.Run("placeholder when nothing is known", func(t *testing.T) {
		checkout, _ := seedAndFill(t)

		order, err := checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
		assert.Equal(t, "-", order.Email)
	})

	t.Run("corrupt session reads as absent", func(t *testing.T) {
		checkout, store := seedAndFill(t)
		require.NoError(t, store.Put(ctx, domain.SlotSession, []byte("{broken"), slot.AnyVersion))

		order, err := checkout.Execute(ctx, Customer{})
		require.NoError(t, err)
		assert.Equal(t, "-", order.Email)
	})
}

func TestCheckoutConflictWhenCartMovesUnderneath(t *testing.T) {
	ctx := context.Background()
	store := slot.NewMemory()
	catalog := NewCatalog(store)
	require.NoError(t, catalog.Authored.Write(ctx, []domain.AuthoredProduct{
		{ID: "PLN-0001", Modelo: "Casa 120", Precio: 100},
	}))

	cart := NewCart(store, &spyNotifier{})
	_, err := cart.Add(ctx, "PLN-0001", 1)
	require.NoError(t, err)

	// a second writer bumps the cart between the read and the clear
	tampered := &tamperStore{Memory: store, cart: cart, ctx: ctx}
	checkout := NewCheckout(tampered, catalog, cart, UnresolvedZero)

	order, err := checkout.Execute(ctx, Customer{})
	assert.ErrorIs(t, err, slot.ErrConflict)
	assert.NotEmpty(t, order.ID, "the order was recorded before the conflict")

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, items, "the conflicting cart keeps its lines")
}

// tamperStore adds a cart line right before the order log write, so the
// version stamp taken at the start of checkout is stale by clear time.
type tamperStore struct {
	*slot.Memory
	cart     *Cart
	ctx      context.Context
	tampered bool
}

func (s *tamperStore) Put(ctx context.Context, name string, payload []byte, version int64) error {
	if name == domain.SlotOrders && !s.tampered {
		s.tampered = true
		if _, err := s.cart.Add(s.ctx, "PLN-0002", 1); err != nil {
			return err
		}
	}
	return s.Memory.Put(ctx, name, payload, version)
}
