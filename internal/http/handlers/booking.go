package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/polancodf2024/consulta/internal/catalog"
	"github.com/polancodf2024/consulta/internal/document"
	"github.com/polancodf2024/consulta/internal/http/middleware"
	"github.com/polancodf2024/consulta/internal/scheduling"
	"github.com/polancodf2024/consulta/pkg/logging"
)

// BookingHandler runs the allocation batch and serves the resulting
// confirmation document.
type BookingHandler struct {
	allocator *scheduling.Allocator
	catalog   *catalog.Catalog
	documents *document.Cache
	logger    *logging.Logger
}

func NewBookingHandler(allocator *scheduling.Allocator, c *catalog.Catalog, docs *document.Cache, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{allocator: allocator, catalog: c, documents: docs, logger: logger}
}

type bookingRequest struct {
	RecordID    string   `json:"record_id"`
	PatientName string   `json:"patient_name"`
	Weekdays    []string `json:"weekdays"`
	Shift       string   `json:"shift"`
	Services    []string `json:"services"`
}

type bookingEntry struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceCode string `json:"service_code"`
	Service     string `json:"service"`
	Category    string `json:"category"`
}

// POST /bookings
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	weekdays, err := scheduling.ParseWeekdays(req.Weekdays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	shift, err := scheduling.ParseShift(req.Shift)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	services := make([]catalog.Service, 0, len(req.Services))
	for _, code := range req.Services {
		svc, ok := h.catalog.Resolve(code)
		if !ok {
			http.Error(w, "unknown service code: "+code, http.StatusBadRequest)
			return
		}
		services = append(services, svc)
	}

	bookings, err := h.allocator.Allocate(r.Context(), scheduling.BatchRequest{
		RecordID: req.RecordID,
		Patient:  req.PatientName,
		Weekdays: weekdays,
		Shift:    shift,
		Services: services,
	})
	if err != nil {
		h.writeAllocationError(w, err)
		return
	}

	batchID := uuid.New()
	entries := make([]document.Entry, 0, len(bookings))
	results := make([]bookingEntry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, document.Entry{
			Date:     b.Slot.DateString(),
			Time:     b.Slot.TimeString(),
			Service:  b.Service.Name,
			Category: b.Service.Category,
		})
		results = append(results, bookingEntry{
			Date:        b.Slot.DateString(),
			Time:        b.Slot.TimeString(),
			ServiceCode: b.Service.Code,
			Service:     b.Service.Name,
			Category:    b.Service.Category,
		})
	}

	doc := document.New(batchID, req.PatientName, user, entries)
	h.documents.Put(doc)

	h.logger.Info("booking batch confirmed",
		"batch_id", batchID,
		"record_id", req.RecordID,
		"bookings", len(bookings),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"batch_id":  batchID,
		"user":      user,
		"patient":   req.PatientName,
		"record_id": req.RecordID,
		"bookings":  results,
		"pages":     len(doc.Pages),
	})
}

func (h *BookingHandler) writeAllocationError(w http.ResponseWriter, err error) {
	var batchErr *scheduling.BatchError
	if errors.As(err, &batchErr) && errors.Is(err, scheduling.ErrNoAvailability) {
		// Fail-fast, no compensating transaction: bookings appended for
		// earlier services in the batch stay committed.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":     scheduling.ErrNoAvailability.Error(),
			"service":   batchErr.Service,
			"committed": batchErr.Committed,
		})
		return
	}

	switch {
	case errors.Is(err, scheduling.ErrEmptyPreference),
		errors.Is(err, scheduling.ErrNoServices),
		errors.Is(err, scheduling.ErrMissingRecordID),
		errors.Is(err, scheduling.ErrMissingPatient):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("allocation failed", "error", err)
		http.Error(w, "allocation failed", http.StatusInternalServerError)
	}
}

// GET /bookings/{batchID}/document/{page}
func (h *BookingHandler) DocumentPage(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		http.Error(w, "invalid batch id", http.StatusBadRequest)
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		http.Error(w, "invalid page number", http.StatusBadRequest)
		return
	}

	doc, ok := h.documents.Get(batchID)
	if !ok {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if page > len(doc.Pages) {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	data, err := document.RenderPage(doc, page)
	if err != nil {
		h.logger.Error("document render failed", "batch_id", batchID, "page", page, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}
