package usecase

import (
	"context"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
)

// Orders exposes the order log to the admin collaborator. Status is the
// only field it may change; the log is append-only otherwise.
type Orders struct {
	Log slot.Collection[domain.Order]
}

func NewOrders(store slot.Store) *Orders {
	return &Orders{Log: slot.Collection[domain.Order]{Store: store, Name: domain.SlotOrders}}
}

// List returns the full order log in append order.
func (o *Orders) List(ctx context.Context) ([]domain.Order, error) {
	orders, _, err := o.Log.Read(ctx)
	return orders, err
}

// SetStatus moves the order to one of the four known statuses.
func (o *Orders) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrBadStatus
	}
	found := false
	_, err := o.Log.Update(ctx, func(orders []domain.Order) ([]domain.Order, bool) {
		for i := range orders {
			if orders[i].ID == id {
				found = true
				orders[i].Status = status
				return orders, true
			}
		}
		return orders, false
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Delete drops the order from the log. Admin-side only; checkout never
// deletes.
func (o *Orders) Delete(ctx context.Context, id string) error {
	found := false
	_, err := o.Log.Update(ctx, func(orders []domain.Order) ([]domain.Order, bool) {
		kept := orders[:0]
		for _, ord := range orders {
			if ord.ID == id {
				found = true
				continue
			}
			kept = append(kept, ord)
		}
		return kept, found
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}
