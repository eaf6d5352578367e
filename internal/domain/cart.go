package domain

// CartLine is one (product, quantity) pair in the shopper's selection.
// At most one line exists per product id.
type CartLine struct {
	ProductID string `json:"productId"`
	Qty       int64  `json:"qty"`
}

// CartEvent is delivered to observers after every cart write.
type CartEvent struct {
	Count int64
	Items []CartLine
}

// Session is the identity record left by the auth collaborator. The core
// only ever reads it, as a checkout email fallback.
type Session struct {
	UserID string `json:"userId"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
}
