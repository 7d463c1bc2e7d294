package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rl1809/storefront/internal/core/service"
)

type HTTPHandler struct {
	catalog *service.CatalogService
}

type ProductHTTPResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type AvailabilityHTTPResponse struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
}

func NewHTTPHandler(catalog *service.CatalogService) *HTTPHandler {
	return &HTTPHandler{catalog: catalog}
}

func (h *HTTPHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/products", h.Products)
	mux.HandleFunc("/api/products/availability", h.Availability)
	return mux
}

func (h *HTTPHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	products := h.catalog.List()
	res := make([]ProductHTTPResponse, 0, len(products))
	for _, p := range products {
		res = append(res, ProductHTTPResponse{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.String(),
			Quantity: p.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing name"})
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityHTTPResponse{
		Name:      name,
		Available: h.catalog.CheckAvailability(name),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
