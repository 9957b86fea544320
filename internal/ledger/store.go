// Package ledger persists confirmed bookings as an append-only flat file,
// one pipe-delimited record per line:
//
//	date|time|record_id|patient_name|service_code
//
// The file is the durable append target, not a query engine: occupancy is
// loaded into memory once per allocation batch.
package ledger

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/polancodf2024/consulta/internal/observability/metrics"
	"github.com/polancodf2024/consulta/internal/scheduling"
	"github.com/polancodf2024/consulta/pkg/logging"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	lockRetryDelay = 50 * time.Millisecond
)

// Store is the flat-file booking ledger. The ledger is shared across
// processes, so the read-modify-append cycle runs under an advisory file
// lock; within one process a mutex serializes batches as well.
type Store struct {
	path    string
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	mu  sync.Mutex
	flk *flock.Flock
}

// NewStore creates a store for the ledger file at path. The file itself is
// created lazily on first append.
func NewStore(path string, logger *logging.Logger, m *metrics.BookingMetrics) *Store {
	if path == "" {
		panic("ledger: path required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		path:    path,
		logger:  logger,
		metrics: m,
		flk:     flock.New(path + ".lock"),
	}
}

// Lock acquires the single-writer lock for one allocation batch.
func (s *Store) Lock(ctx context.Context) error {
	s.mu.Lock()
	ok, err := s.flk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("ledger: file lock %s: %w", s.flk.Path(), err)
	}
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("ledger: file lock %s not acquired", s.flk.Path())
	}
	return nil
}

// Unlock releases the batch lock.
func (s *Store) Unlock() error {
	err := s.flk.Unlock()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("ledger: release file lock: %w", err)
	}
	return nil
}

// LoadOccupancy scans the whole ledger into an in-memory occupancy set.
// Malformed lines are skipped with a warning, never fatal: the search must
// stay robust to partially corrupt persisted data. A missing file is an
// empty ledger.
func (s *Store) LoadOccupancy(ctx context.Context) (*scheduling.OccupancySet, error) {
	occ := scheduling.NewOccupancySet()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return occ, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		slot, ok := s.parseLine(line, lineno)
		if !ok {
			continue
		}
		occ.Add(slot)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", s.path, err)
	}

	s.logger.Debug("ledger occupancy loaded", "path", s.path, "slots", occ.Len())
	return occ, nil
}

func (s *Store) parseLine(line string, lineno int) (scheduling.Slot, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		s.warnMalformed(lineno, "field count", len(parts))
		return scheduling.Slot{}, false
	}
	day, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		s.warnMalformed(lineno, "date", parts[0])
		return scheduling.Slot{}, false
	}
	at, err := time.Parse(timeLayout, parts[1])
	if err != nil {
		s.warnMalformed(lineno, "time", parts[1])
		return scheduling.Slot{}, false
	}
	if at.Minute() != 0 {
		// Off-hour times can never collide with the hourly slot grid.
		s.warnMalformed(lineno, "off-hour time", parts[1])
		return scheduling.Slot{}, false
	}
	return scheduling.NewSlot(day, at.Hour()), true
}

func (s *Store) warnMalformed(lineno int, what string, got any) {
	s.logger.Warn("ledger: skipping malformed line",
		"path", s.path,
		"line", lineno,
		"reason", what,
		"got", got,
	)
	s.metrics.ObserveMalformedLine("ledger")
}

// Append serializes the booking and appends it; existing content is never
// rewritten or truncated. Once Append returns the booking is visible to
// every subsequent LoadOccupancy, in this process or a fresh one.
func (s *Store) Append(ctx context.Context, b scheduling.Booking) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open %s for append: %w", s.path, err)
	}
	defer f.Close()

	line := strings.Join([]string{
		b.Slot.DateString(),
		b.Slot.TimeString(),
		sanitizeField(b.RecordID),
		sanitizeField(b.Patient),
		sanitizeField(b.Service.Code),
	}, "|")
	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("ledger: append to %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ledger: sync %s: %w", s.path, err)
	}
	return nil
}

// sanitizeField keeps every written line well-formed: the field separator
// and line breaks cannot appear inside a field.
func sanitizeField(v string) string {
	v = strings.ReplaceAll(v, "|", "/")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return v
}
