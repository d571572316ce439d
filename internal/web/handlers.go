package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/web/templates"
)

// maxVendorBody bounds a vendor or product JSON document.
const maxVendorBody = 1 << 20

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Batches core.BatchLimiterStatus `json:"batches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Batches: s.skus.LimiterStatus(),
	})
}

// handleIndex lists vendors as links to their SKU pages.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.vendors.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.VendorIndex(list))
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	list, err := s.vendors.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []catalog.Vendor{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	v, err := s.vendors.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSaveVendor creates or replaces a vendor: 201 when created, 200
// otherwise.
func (s *Server) handleSaveVendor(w http.ResponseWriter, r *http.Request) {
	var v catalog.Vendor
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVendorBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid json: %w", err))
		return
	}

	created, err := s.vendors.Save(r.Context(), v)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	saved, err := s.vendors.Get(r.Context(), v.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, status, saved)
}

func (s *Server) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := s.vendors.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVendorPage renders a vendor's SKUs as an HTML table.
func (s *Server) handleVendorPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, err := s.vendors.Get(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rows, err := s.skus.Export(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.SKUTable(v, rows))
}
