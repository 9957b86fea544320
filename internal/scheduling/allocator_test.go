package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polancodf2024/consulta/internal/catalog"
)

// 2024-10-22 is a Tuesday.
var tuesday = time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	seeded    []Slot
	appended  []Booking
	locks     int
	unlocks   int
	appendErr func(call int) error
}

func (f *fakeStore) Lock(ctx context.Context) error { f.locks++; return nil }
func (f *fakeStore) Unlock() error                  { f.unlocks++; return nil }

func (f *fakeStore) LoadOccupancy(ctx context.Context) (*OccupancySet, error) {
	occ := NewOccupancySet()
	for _, s := range f.seeded {
		occ.Add(s)
	}
	return occ, nil
}

func (f *fakeStore) Append(ctx context.Context, b Booking) error {
	if f.appendErr != nil {
		if err := f.appendErr(len(f.appended)); err != nil {
			return err
		}
	}
	f.appended = append(f.appended, b)
	return nil
}

func services(codes ...string) []catalog.Service {
	out := make([]catalog.Service, 0, len(codes))
	for _, c := range codes {
		out = append(out, catalog.Service{Code: c, Name: "svc " + c, Category: "CONSULTA EXTERNA"})
	}
	return out
}

func TestAllocateFiveServicesFillOneAfternoon(t *testing.T) {
	store := &fakeStore{}
	alloc := NewAllocator(store, nil, nil)

	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-001",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "tuesday"),
		Shift:    ShiftAfternoon,
		Services: services("a", "b", "c", "d", "e"),
		Start:    tuesday,
	})
	require.NoError(t, err)
	require.Len(t, got, 5)

	seen := make(map[Slot]bool)
	for i, b := range got {
		assert.Equal(t, "2024-10-22", b.Slot.DateString(), "booking %d", i)
		assert.Equal(t, 12+i, b.Slot.Hour, "booking %d", i)
		assert.False(t, seen[b.Slot], "slot reused within batch")
		seen[b.Slot] = true
	}
	// Each booking was appended before the next search ran.
	assert.Equal(t, got, store.appended)
	assert.Equal(t, 1, store.locks)
	assert.Equal(t, 1, store.unlocks)
}

func TestAllocateSpillsToNextPreferredDay(t *testing.T) {
	store := &fakeStore{}
	alloc := NewAllocator(store, nil, nil)

	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-002",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "tuesday"),
		Shift:    ShiftAfternoon,
		Services: services("a", "b", "c", "d", "e", "f", "g"),
		Start:    tuesday,
	})
	require.NoError(t, err)
	require.Len(t, got, 7)

	// All six slots of the first Tuesday are used before the next one.
	assert.Equal(t, "2024-10-22", got[5].Slot.DateString())
	assert.Equal(t, 17, got[5].Slot.Hour)
	assert.Equal(t, "2024-10-29", got[6].Slot.DateString())
	assert.Equal(t, 12, got[6].Slot.Hour)
}

func TestAllocateSeesLedgerOccupancy(t *testing.T) {
	store := &fakeStore{seeded: []Slot{NewSlot(tuesday, 12), NewSlot(tuesday, 13)}}
	alloc := NewAllocator(store, nil, nil)

	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-003",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "tuesday"),
		Shift:    ShiftAfternoon,
		Services: services("a"),
		Start:    tuesday,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 14, got[0].Slot.Hour)
}

func TestAllocatePartialBatchStaysCommitted(t *testing.T) {
	// Every Monday morning in the horizon is taken except three hours on
	// the first Monday: only three of five services can be placed.
	store := &fakeStore{}
	day := time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)
	for i := 0; i < searchHorizonDays; i++ {
		if day.Weekday() == time.Monday {
			for h := 7; h < 13; h++ {
				if day.Equal(time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)) && h < 10 {
					continue
				}
				store.seeded = append(store.seeded, NewSlot(day, h))
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	alloc := NewAllocator(store, nil, nil)
	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-004",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "monday"),
		Shift:    ShiftMorning,
		Services: services("a", "b", "c", "d", "e"),
		Start:    time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC),
	})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.ErrorIs(t, err, ErrNoAvailability)
	assert.Equal(t, 3, batchErr.Committed)
	assert.Equal(t, "d", batchErr.Service)

	// No rollback: the three earlier bookings remain appended.
	assert.Len(t, got, 3)
	assert.Len(t, store.appended, 3)
	assert.Equal(t, 1, store.unlocks)
}

func TestAllocateAppendFailureStopsBatch(t *testing.T) {
	boom := errors.New("disk full")
	store := &fakeStore{appendErr: func(call int) error {
		if call == 2 {
			return boom
		}
		return nil
	}}

	alloc := NewAllocator(store, nil, nil)
	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-005",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "tuesday"),
		Shift:    ShiftMorning,
		Services: services("a", "b", "c", "d"),
		Start:    tuesday,
	})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, batchErr.Committed)
	assert.Len(t, got, 2)
}

func TestAllocateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  BatchRequest
		want error
	}{
		{
			name: "empty weekday preferences",
			req: BatchRequest{
				RecordID: "EXP-006", Patient: "Ana", Shift: ShiftMorning,
				Weekdays: WeekdaySet{}, Services: services("a"),
			},
			want: ErrEmptyPreference,
		},
		{
			name: "no services",
			req: BatchRequest{
				RecordID: "EXP-006", Patient: "Ana", Shift: ShiftMorning,
				Weekdays: WeekdaySet{time.Monday: {}},
			},
			want: ErrNoServices,
		},
		{
			name: "missing record id",
			req: BatchRequest{
				Patient: "Ana", Shift: ShiftMorning,
				Weekdays: WeekdaySet{time.Monday: {}}, Services: services("a"),
			},
			want: ErrMissingRecordID,
		},
		{
			name: "missing patient",
			req: BatchRequest{
				RecordID: "EXP-006", Shift: ShiftMorning,
				Weekdays: WeekdaySet{time.Monday: {}}, Services: services("a"),
			},
			want: ErrMissingPatient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			alloc := NewAllocator(store, nil, nil)
			_, err := alloc.Allocate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			// Validation happens before any ledger I/O.
			assert.Equal(t, 0, store.locks)
			assert.Empty(t, store.appended)
		})
	}
}

func TestAllocateZeroStartUsesClock(t *testing.T) {
	store := &fakeStore{}
	alloc := NewAllocator(store, nil, nil)
	alloc.now = func() time.Time { return tuesday }

	got, err := alloc.Allocate(context.Background(), BatchRequest{
		RecordID: "EXP-007",
		Patient:  "Ana López",
		Weekdays: mustWeekdays(t, "tuesday"),
		Shift:    ShiftMorning,
		Services: services("a"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-10-22", got[0].Slot.DateString())
}
