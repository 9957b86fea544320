package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAvailability means the search exhausted its two-year horizon.
	ErrNoAvailability = errors.New("no availability within the next two years")
	// ErrEmptyPreference means the weekday preference set is empty; the
	// search could never match a day and is rejected before any I/O.
	ErrEmptyPreference = errors.New("weekday preference set is empty")
	// ErrUnknownWeekday rejects weekday names outside Monday..Friday.
	ErrUnknownWeekday = errors.New("unknown weekday")
	// ErrUnknownShift rejects shift values other than morning/afternoon.
	ErrUnknownShift = errors.New("unknown shift")
	// ErrNoServices rejects a batch without any requested service.
	ErrNoServices = errors.New("no services requested")
	// ErrMissingRecordID rejects a batch without a patient record id.
	ErrMissingRecordID = errors.New("patient record id is required")
	// ErrMissingPatient rejects a batch without a patient name.
	ErrMissingPatient = errors.New("patient name is required")
)

// BatchError reports a batch that stopped mid-way. Bookings appended for
// earlier services stay committed; Committed says how many.
type BatchError struct {
	Service   string
	Committed int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("allocating %q after %d committed booking(s): %v", e.Service, e.Committed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
