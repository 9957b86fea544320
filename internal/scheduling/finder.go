package scheduling

import "time"

// searchHorizonDays bounds the scan: two years of day advances before the
// search gives up.
const searchHorizonDays = 730

// Occupancy answers whether a slot is still free.
type Occupancy interface {
	IsFree(Slot) bool
}

// OccupancySet is the in-memory set of taken slots: the ledger contents
// plus the overlay of slots committed earlier in the current batch.
type OccupancySet struct {
	taken map[Slot]struct{}
}

// NewOccupancySet returns an empty set.
func NewOccupancySet() *OccupancySet {
	return &OccupancySet{taken: make(map[Slot]struct{})}
}

// Add marks a slot as taken.
func (o *OccupancySet) Add(s Slot) {
	o.taken[s] = struct{}{}
}

// IsFree reports whether the slot has not been taken.
func (o *OccupancySet) IsFree(s Slot) bool {
	_, taken := o.taken[s]
	return !taken
}

// Len returns the number of taken slots.
func (o *OccupancySet) Len() int {
	return len(o.taken)
}

// FindNextSlot scans forward from start (inclusive), day by day. Days whose
// weekday is not preferred are skipped whole; on matching days the shift's
// six hours are tried in increasing order and the first free one wins. Ties
// always resolve to the earliest (date, then hour) — no randomization.
//
// The second return value is the number of days scanned, for observability.
func FindNextSlot(prefs WeekdaySet, shift Shift, occupancy Occupancy, start time.Time) (Slot, int, error) {
	if len(prefs) == 0 {
		return Slot{}, 0, ErrEmptyPreference
	}

	day := startOfDay(start)
	for scanned := 0; scanned < searchHorizonDays; scanned++ {
		if prefs.Contains(day.Weekday()) {
			for h := shift.StartHour(); h < shift.StartHour()+SlotsPerShift; h++ {
				slot := Slot{Day: day, Hour: h}
				if occupancy.IsFree(slot) {
					return slot, scanned, nil
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return Slot{}, searchHorizonDays, ErrNoAvailability
}
