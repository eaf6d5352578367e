package domain

// Slot names in the shared persisted store. Kept exactly as the
// storefront has always written them so existing data keeps resolving.
const (
	SlotLegacyProducts   = "shop_products"
	SlotAuthoredProducts = "store_products"
	SlotCart             = "shop_cart"
	SlotCartCount        = "cartCount"
	SlotOrders           = "shop_orders"
	SlotSession          = "app_session"
)

// Fallbacks applied during normalization; missing fields never surface
// to callers as empty.
const (
	FallbackTitle    = "Producto"
	FallbackCategory = "General"
	PlaceholderImage = "assets/img/planos/placeholder.jpg"
)

// Product is a normalized catalog entry. Prices are minor currency
// units and never negative.
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// LegacyProduct is the seed catalog schema, authored once as a fallback.
type LegacyProduct struct {
	ID          string   `json:"id"`
	Titulo      string   `json:"titulo"`
	Precio      int64    `json:"precio"`
	Categorias  []string `json:"categorias"`
	Thumbnail   string   `json:"thumbnail"`
	Descripcion string   `json:"descripcion"`
}

// AuthoredProduct is the admin-maintained catalog schema. It wins over
// the legacy schema whenever both carry the same id.
type AuthoredProduct struct {
	ID        string `json:"id"`
	Modelo    string `json:"modelo"`
	Precio    int64  `json:"precio"`
	Categoria string `json:"categoria"`
	Img       string `json:"img"`
}

// Normalize maps a legacy record to the canonical schema. Total: every
// missing field gets its fallback, negative prices clamp to zero.
func (p LegacyProduct) Normalize() Product {
	category := FallbackCategory
	if len(p.Categorias) > 0 && p.Categorias[0] != "" {
		category = p.Categorias[0]
	}
	return Product{
		ID:       p.ID,
		Title:    orFallback(p.Titulo, FallbackTitle),
		Price:    clampPrice(p.Precio),
		Image:    orFallback(p.Thumbnail, PlaceholderImage),
		Category: category,
	}
}

// ToAuthored maps a legacy record into the authored schema, used when
// reflecting the seed into the authored collection.
func (p LegacyProduct) ToAuthored() AuthoredProduct {
	n := p.Normalize()
	return AuthoredProduct{
		ID:        n.ID,
		Modelo:    n.Title,
		Precio:    n.Price,
		Categoria: n.Category,
		Img:       n.Image,
	}
}

// Normalize maps an authored record to the canonical schema.
func (p AuthoredProduct) Normalize() Product {
	return Product{
		ID:       p.ID,
		Title:    orFallback(p.Modelo, FallbackTitle),
		Price:    clampPrice(p.Precio),
		Image:    orFallback(p.Img, PlaceholderImage),
		Category: orFallback(p.Categoria, FallbackCategory),
	}
}

// Coerce fills the fallbacks in place, applied before an authored record
// is written so the stored collection stays total too.
func (p AuthoredProduct) Coerce() AuthoredProduct {
	p.Modelo = orFallback(p.Modelo, FallbackTitle)
	p.Precio = clampPrice(p.Precio)
	p.Categoria = orFallback(p.Categoria, FallbackCategory)
	p.Img = orFallback(p.Img, PlaceholderImage)
	return p
}

func orFallback(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func clampPrice(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
