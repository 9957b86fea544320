package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polancodf2024/consulta/internal/catalog"
	"github.com/polancodf2024/consulta/internal/scheduling"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reservations.txt")
	return NewStore(path, nil, nil), path
}

func booking(day time.Time, hour int) scheduling.Booking {
	return scheduling.Booking{
		Slot:     scheduling.NewSlot(day, hour),
		RecordID: "EXP-001",
		Patient:  "Ana López",
		Service:  catalog.Service{Code: "015008", Name: "Consulta externa, primera vez", Category: "CONSULTA EXTERNA"},
	}
}

func TestAppendRoundTrip(t *testing.T) {
	store, path := newTestStore(t)
	day := time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(context.Background(), booking(day, 7)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-21|07:00|EXP-001|Ana López|015008\n", string(data))

	occ, err := store.LoadOccupancy(context.Background())
	require.NoError(t, err)
	assert.False(t, occ.IsFree(scheduling.NewSlot(day, 7)))
	assert.True(t, occ.IsFree(scheduling.NewSlot(day, 8)))
}

func TestAppendNeverTruncates(t *testing.T) {
	store, path := newTestStore(t)
	day := time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(context.Background(), booking(day, 7)))
	require.NoError(t, store.Append(context.Background(), booking(day, 8)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2024-10-21|07:00|"))
	assert.True(t, strings.HasPrefix(lines[1], "2024-10-21|08:00|"))
}

func TestLoadOccupancySkipsMalformedLines(t *testing.T) {
	store, path := newTestStore(t)
	content := strings.Join([]string{
		"2024-10-21|07:00|EXP-001|Ana López|015008",
		"this line is corrupt",
		"2024-13-99|07:00|EXP-001|Ana López|015008",
		"2024-10-21|7am|EXP-001|Ana López|015008",
		"2024-10-21|07:30|EXP-001|Ana López|015008",
		"2024-10-21|08:00|EXP-002|Juan Pérez|015009",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	occ, err := store.LoadOccupancy(context.Background())
	require.NoError(t, err)

	day := time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)
	// The well-formed lines still count; the bad ones change nothing.
	assert.False(t, occ.IsFree(scheduling.NewSlot(day, 7)))
	assert.False(t, occ.IsFree(scheduling.NewSlot(day, 8)))
	assert.Equal(t, 2, occ.Len())
}

func TestLoadOccupancyMissingFileIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	occ, err := store.LoadOccupancy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, occ.Len())
}

func TestAppendSanitizesFields(t *testing.T) {
	store, path := newTestStore(t)
	day := time.Date(2024, 10, 21, 0, 0, 0, 0, time.UTC)
	b := booking(day, 9)
	b.Patient = "Ana|López\ninjected"

	require.NoError(t, store.Append(context.Background(), b))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Len(t, strings.Split(lines[0], "|"), 5)
}

func TestLockUnlock(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Lock(ctx))
	require.NoError(t, store.Unlock())

	// Reacquirable after release.
	require.NoError(t, store.Lock(ctx))
	require.NoError(t, store.Unlock())
}
