package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
)

// UnresolvedLinePolicy decides what checkout does with a cart line whose
// product no longer resolves against the catalog, which can happen when
// the catalog changes between add-to-cart and purchase.
type UnresolvedLinePolicy string

const (
	// UnresolvedZero prices the line at 0, the storefront's historical
	// behavior.
	UnresolvedZero UnresolvedLinePolicy = "zero"
	// UnresolvedExclude drops the line from the order.
	UnresolvedExclude UnresolvedLinePolicy = "exclude"
	// UnresolvedFail rejects the whole checkout.
	UnresolvedFail UnresolvedLinePolicy = "fail"
)

// Checkout converts the cart into an immutable order record. It is the
// only writer of the order log.
type Checkout struct {
	Catalog *Catalog
	Cart    *Cart
	Orders  slot.Collection[domain.Order]
	Store   slot.Store
	Policy  UnresolvedLinePolicy

	mu sync.Mutex // serializes checkouts within this process
}

func NewCheckout(store slot.Store, catalog *Catalog, cart *Cart, policy UnresolvedLinePolicy) *Checkout {
	return &Checkout{
		Catalog: catalog,
		Cart:    cart,
		Orders:  slot.Collection[domain.Order]{Store: store, Name: domain.SlotOrders},
		Store:   store,
		Policy:  policy,
	}
}

// Customer carries the optional identity supplied by the caller.
type Customer struct {
	Email string `json:"email"`
}

// Execute builds an order from the current cart, appends it to the order
// log and clears the cart.
//
// An empty cart fails with domain.ErrEmptyCart and leaves every slot
// untouched. The final clear carries the version the cart was read at:
// if another writer changed the cart in between, the recorded order is
// returned together with slot.ErrConflict so the caller can see the cart
// kept its lines instead of silently double-charging them later.
func (e *Checkout) Execute(ctx context.Context, customer Customer) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lines, cartVersion, err := e.Cart.Lines.Read(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	catalog, err := e.Catalog.List(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	prices := make(map[string]int64, len(catalog))
	for _, p := range catalog {
		prices[p.ID] = p.Price
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	var total int64
	for _, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			switch e.Policy {
			case UnresolvedExclude:
				continue
			case UnresolvedFail:
				return domain.Order{}, domain.ErrUnresolvedLine
			default:
				price = 0
			}
		}
		orderLines = append(orderLines, domain.OrderLine{ProductID: l.ProductID, Qty: l.Qty, UnitPrice: price})
		total += l.Qty * price
	}
	if len(orderLines) == 0 {
		// exclude policy dropped every line; nothing to record
		return domain.Order{}, domain.ErrUnresolvedLine
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Email:     e.resolveEmail(ctx, customer),
		Lines:     orderLines,
		Total:     total,
		Status:    domain.StatusPending,
	}
	if _, err := e.Orders.Update(ctx, func(orders []domain.Order) ([]domain.Order, bool) {
		return append(orders, order), true
	}); err != nil {
		return domain.Order{}, errors.Wrap(err, "append order")
	}

	empty, _ := json.Marshal([]domain.CartLine{})
	if err := e.Store.Put(ctx, domain.SlotCart, empty, cartVersion); err != nil {
		return order, err
	}
	if _, err := e.Cart.finish(ctx, nil); err != nil {
		return order, err
	}
	return order, nil
}

// resolveEmail prefers the explicit argument, then the identity the auth
// collaborator left in the session slot, then the "-" placeholder. The
// value is never validated here.
func (e *Checkout) resolveEmail(ctx context.Context, customer Customer) string {
	if v := strings.ToLower(strings.TrimSpace(customer.Email)); v != "" {
		return v
	}
	payload, _, err := e.Store.Get(ctx, domain.SlotSession)
	if err == nil && len(payload) > 0 {
		var s domain.Session
		if json.Unmarshal(payload, &s) == nil && s.Correo != "" {
			return strings.ToLower(s.Correo)
		}
	}
	return "-"
}
