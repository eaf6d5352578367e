package domain

// CartNotifier is the port for broadcasting cart mutations. Implementors
// are invoked synchronously, after the underlying write has completed.
type CartNotifier interface {
	CartChanged(ev CartEvent)
}

// Common domain errors.
var (
	ErrNotFound       = notFoundError("not found")
	ErrEmptyCart      = validationError("cart is empty")
	ErrUnresolvedLine = validationError("cart line does not resolve against the catalog")
	ErrBadStatus      = validationError("unknown order status")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }
