package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/polancodf2024/consulta/internal/catalog"
)

// CatalogHandler serves the browsing screen's service catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// GET /catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"categories": h.catalog.Categories(),
	})
}

// GET /catalog/categories/{category}/services
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"category": category,
		"services": h.catalog.Services(category),
	})
}

// GET /catalog
func (h *CatalogHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.catalog.GroupByCategory())
}
