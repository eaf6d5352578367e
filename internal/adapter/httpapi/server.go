package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/planshop/internal/domain"
	"github.com/example/planshop/internal/slot"
	"github.com/example/planshop/internal/usecase"
)

// Server exposes the storefront core over JSON HTTP. The page-rendering
// collaborators talk to the core through these routes; nothing here adds
// semantics of its own.
type Server struct {
	Router   *mux.Router
	Catalog  *usecase.Catalog
	Cart     *usecase.Cart
	Checkout *usecase.Checkout
	Orders   *usecase.Orders
}

func NewServer(catalog *usecase.Catalog, cart *usecase.Cart, checkout *usecase.Checkout, orders *usecase.Orders) *Server {
	s := &Server{
		Router:   mux.NewRouter(),
		Catalog:  catalog,
		Cart:     cart,
		Checkout: checkout,
		Orders:   orders,
	}
	r := s.Router
	r.HandleFunc("/api/products", s.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products", s.handleUpsertProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}", s.handleRemoveProduct).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart", s.handleGetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart", s.handleClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart/items", s.handleAddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{id}", s.handleSetQty).Methods(http.MethodPut)
	r.HandleFunc("/api/cart/items/{id}", s.handleRemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/checkout", s.handleCheckout).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", s.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/status", s.handleSetOrderStatus).Methods(http.MethodPut)
	r.HandleFunc("/api/orders/{id}", s.handleDeleteOrder).Methods(http.MethodDelete)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("web")))
	return s
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.AuthoredProduct
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	stored, err := s.Catalog.Upsert(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.Cart.Items(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.CartLine{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Qty       *int64 `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	qty := int64(1)
	if body.Qty != nil {
		qty = *body.Qty
	}
	count, err := s.Cart.Add(r.Context(), body.ProductID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleSetQty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Qty int64 `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	count, err := s.Cart.SetQty(r.Context(), mux.Vars(r)["id"], body.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	count, err := s.Cart.Remove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	count, err := s.Cart.Clear(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, countResponse{Count: count})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var customer usecase.Customer
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	order, err := s.Checkout.Execute(r.Context(), customer)
	if err != nil {
		if errors.Is(err, slot.ErrConflict) && order.ID != "" {
			// the order was recorded but the cart changed under us
			respondJSON(w, http.StatusConflict, order)
			return
		}
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := s.Orders.SetStatus(r.Context(), mux.Vars(r)["id"], body.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.Orders.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrUnresolvedLine),
		errors.Is(err, domain.ErrBadStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, slot.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
