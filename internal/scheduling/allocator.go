package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/polancodf2024/consulta/internal/catalog"
	"github.com/polancodf2024/consulta/internal/observability/metrics"
	"github.com/polancodf2024/consulta/pkg/logging"
)

var schedulingTracer = otel.Tracer("consulta.internal.scheduling")

// Booking is one confirmed slot assignment. Immutable once appended to the
// ledger; never updated or deleted by this system.
type Booking struct {
	Slot     Slot
	RecordID string
	Patient  string
	Service  catalog.Service
}

// LedgerStore is the durable append target consulted for occupancy. The
// allocator holds its lock for the whole read-modify-append cycle.
type LedgerStore interface {
	Lock(ctx context.Context) error
	Unlock() error
	LoadOccupancy(ctx context.Context) (*OccupancySet, error)
	Append(ctx context.Context, b Booking) error
}

// BatchRequest is one user-initiated set of service requests.
type BatchRequest struct {
	RecordID string
	Patient  string
	Weekdays WeekdaySet
	Shift    Shift
	Services []catalog.Service
	// Start is the first candidate day; zero means today.
	Start time.Time
}

// Allocator assigns the next free slot to each requested service in input
// order, appending each booking before the next service is searched so the
// slots of one batch are pairwise distinct.
type Allocator struct {
	store   LedgerStore
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// NewAllocator constructs an allocator over the given ledger store.
func NewAllocator(store LedgerStore, logger *logging.Logger, m *metrics.BookingMetrics) *Allocator {
	if store == nil {
		panic("scheduling: ledger store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Allocator{store: store, logger: logger, metrics: m, now: time.Now}
}

func (a *Allocator) validate(req BatchRequest) error {
	if req.RecordID == "" {
		return ErrMissingRecordID
	}
	if req.Patient == "" {
		return ErrMissingPatient
	}
	if len(req.Services) == 0 {
		return ErrNoServices
	}
	if len(req.Weekdays) == 0 {
		return ErrEmptyPreference
	}
	return nil
}

// Allocate processes the batch one service at a time. On a mid-batch
// failure the bookings already appended stay committed (fail-fast, no
// compensating transaction); the returned BatchError carries the count.
func (a *Allocator) Allocate(ctx context.Context, req BatchRequest) ([]Booking, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.allocate")
	defer span.End()
	span.SetAttributes(
		attribute.String("consulta.record_id", req.RecordID),
		attribute.Int("consulta.services", len(req.Services)),
		attribute.String("consulta.shift", req.Shift.String()),
	)

	if err := a.validate(req); err != nil {
		a.metrics.ObserveFailure("invalid_request")
		span.RecordError(err)
		return nil, err
	}

	if err := a.store.Lock(ctx); err != nil {
		a.metrics.ObserveFailure("ledger_lock")
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: acquire ledger lock: %w", err)
	}
	defer a.store.Unlock()

	occupancy, err := a.store.LoadOccupancy(ctx)
	if err != nil {
		a.metrics.ObserveFailure("ledger_read")
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: load occupancy: %w", err)
	}

	start := req.Start
	if start.IsZero() {
		start = a.now()
	}

	committed := make([]Booking, 0, len(req.Services))
	for _, svc := range req.Services {
		slot, days, err := FindNextSlot(req.Weekdays, req.Shift, occupancy, start)
		if err != nil {
			a.metrics.ObserveFailure("no_availability")
			span.RecordError(err)
			return committed, &BatchError{Service: svc.Code, Committed: len(committed), Err: err}
		}

		booking := Booking{Slot: slot, RecordID: req.RecordID, Patient: req.Patient, Service: svc}
		if err := a.store.Append(ctx, booking); err != nil {
			a.metrics.ObserveFailure("ledger_append")
			span.RecordError(err)
			return committed, &BatchError{Service: svc.Code, Committed: len(committed), Err: err}
		}

		// The overlay grows before the next search so a later service in
		// this batch never sees this slot as free.
		occupancy.Add(slot)
		committed = append(committed, booking)

		a.metrics.ObserveAllocated(req.Shift.String())
		a.metrics.ObserveSearchDays(days)
		a.logger.Info("slot allocated",
			"record_id", req.RecordID,
			"service", svc.Code,
			"date", slot.DateString(),
			"time", slot.TimeString(),
			"days_scanned", days,
		)
	}

	return committed, nil
}
