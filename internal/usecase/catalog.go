package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
)

// Catalog unifies the seed and the admin-authored product collections
// into one normalized catalog. The seed is reflected into the authored
// collection once, and the authored side wins whenever both carry the
// same id. Nothing is cached between calls; every operation goes back to
// the slots.
type Catalog struct {
	Legacy   slot.Collection[domain.LegacyProduct]
	Authored slot.Collection[domain.AuthoredProduct]

	// Static is an optional read-only extra product list merged into the
	// view with lowest precedence.
	Static []domain.Product
}

func NewCatalog(store slot.Store) *Catalog {
	return &Catalog{
		Legacy:   slot.Collection[domain.LegacyProduct]{Store: store, Name: domain.SlotLegacyProducts},
		Authored: slot.Collection[domain.AuthoredProduct]{Store: store, Name: domain.SlotAuthoredProducts},
	}
}

func seedDefaults() []domain.LegacyProduct {
	return []domain.LegacyProduct{
		{
			ID:          "PLN-0001",
			Titulo:      "Casa moderna 120 m²",
			Precio:      129000,
			Categorias:  []string{"residencial"},
			Thumbnail:   "assets/img/planos/casa120.jpg",
			Descripcion: "Ideal para familias pequeñas.",
		},
		{
			ID:          "PLN-0002",
			Titulo:      "Casa compacta 80 m²",
			Precio:      89000,
			Categorias:  []string{"compacta"},
			Thumbnail:   "assets/img/planos/casa80.jpg",
			Descripcion: "Ideal para terrenos pequeños.",
		},
	}
}

// EnsureSeeded writes the default seed products into the legacy
// collection when both collections are empty. No-op once either side has
// data, so running it again never changes the set of ids present.
func (c *Catalog) EnsureSeeded(ctx context.Context) error {
	authored, _, err := c.Authored.Read(ctx)
	if err != nil {
		return err
	}
	if len(authored) > 0 {
		return nil
	}
	_, err = c.Legacy.Update(ctx, func(items []domain.LegacyProduct) ([]domain.LegacyProduct, bool) {
		if len(items) > 0 {
			return items, false
		}
		return seedDefaults(), true
	})
	return err
}

// Reconcile copies every legacy product whose id is absent from the
// authored collection into it, mapped to the authored schema. The merge
// is one-directional and monotonic: nothing flows back into the legacy
// collection and existing authored entries are never overwritten, so
// re-running adds nothing once the ids are present.
func (c *Catalog) Reconcile(ctx context.Context) error {
	legacy, _, err := c.Legacy.Read(ctx)
	if err != nil {
		return err
	}
	if len(legacy) == 0 {
		return nil
	}
	_, err = c.Authored.Update(ctx, func(items []domain.AuthoredProduct) ([]domain.AuthoredProduct, bool) {
		present := make(map[string]struct{}, len(items))
		for _, p := range items {
			present[p.ID] = struct{}{}
		}
		changed := false
		for _, lp := range legacy {
			if _, ok := present[lp.ID]; ok {
				continue
			}
			items = append(items, lp.ToAuthored())
			present[lp.ID] = struct{}{}
			changed = true
		}
		return items, changed
	})
	return err
}

// List seeds and reconciles, then returns the unified catalog: static
// extras first, then the legacy collection, then the authored one, later
// sources overwriting earlier entries in place on id collision. The
// result keeps insertion order; the authored side always wins.
func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	if err := c.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	if err := c.Reconcile(ctx); err != nil {
		return nil, err
	}
	legacy, _, err := c.Legacy.Read(ctx)
	if err != nil {
		return nil, err
	}
	authored, _, err := c.Authored.Read(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(c.Static)+len(legacy)+len(authored))
	index := make(map[string]int)
	put := func(p domain.Product) {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			return
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for _, p := range c.Static {
		put(staticDefaults(p))
	}
	for _, p := range legacy {
		put(p.Normalize())
	}
	for _, p := range authored {
		put(p.Normalize())
	}
	return out, nil
}

// staticDefaults fills the fallbacks for extra products supplied by the
// static collaborator, which arrive unnormalized.
func staticDefaults(p domain.Product) domain.Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Title == "" {
		p.Title = domain.FallbackTitle
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Image == "" {
		p.Image = domain.PlaceholderImage
	}
	if p.Category == "" {
		p.Category = domain.FallbackCategory
	}
	return p
}

// Upsert writes p into the authored collection, replacing the entry with
// the same id or appending. A missing id gets a generated one; the
// record as stored is returned.
func (c *Catalog) Upsert(ctx context.Context, p domain.AuthoredProduct) (domain.AuthoredProduct, error) {
	if p.ID == "" {
		p.ID = "PLN-" + uuid.NewString()
	}
	p = p.Coerce()
	_, err := c.Authored.Update(ctx, func(items []domain.AuthoredProduct) ([]domain.AuthoredProduct, bool) {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = p
				return items, true
			}
		}
		return append(items, p), true
	})
	return p, err
}

// Remove deletes id from the authored collection. No-op when absent.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	_, err := c.Authored.Update(ctx, func(items []domain.AuthoredProduct) ([]domain.AuthoredProduct, bool) {
		kept := items[:0]
		for _, p := range items {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, len(kept) != len(items)
	})
	return err
}
