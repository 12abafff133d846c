package streak

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantedu/greenledger/internal/features/credits"
)

// fakeLedger serves a fixed set of entry timestamps, filtered by window.
type fakeLedger struct {
	timestamps map[uuid.UUID][]time.Time
}

func (f *fakeLedger) TimestampsByUserSince(_ context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, t := range f.timestamps[userID] {
		if !t.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

// memStore backs a real credits.Service so the test observes the actual
// streak_bonus entry.
type memStore struct {
	mu      sync.Mutex
	entries []*credits.CreditEntry
}

func (m *memStore) Append(_ context.Context, e *credits.CreditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memStore) Verify(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type allUsers struct{}

func (allUsers) Exists(context.Context, uuid.UUID) (bool, error) { return true, nil }

// daily returns one timestamp per day for n consecutive days ending the
// day before `now`, all at the given hour UTC.
func daily(now time.Time, n int, hour int) []time.Time {
	var out []time.Time
	for i := 1; i <= n; i++ {
		d := now.AddDate(0, 0, -i)
		out = append(out, time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC))
	}
	return out
}

func TestCheckStreak_SevenDistinctDaysAwardsBonus(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	student := uuid.New()

	// Activity on the 7 days ending today: day-6 … today all land inside
	// the trailing 7x24h window.
	stamps := daily(now, 6, 12)
	stamps = append(stamps, now.Add(-time.Hour)) // today
	ledger := &fakeLedger{timestamps: map[uuid.UUID][]time.Time{student: stamps}}

	store := &memStore{}
	writer := credits.NewService(store, allUsers{})
	svc := NewService(ledger, writer, 7, 7).WithClock(func() time.Time { return now })

	awarded, err := svc.CheckStreak(context.Background(), student)
	require.NoError(t, err)
	assert.True(t, awarded)

	require.Len(t, store.entries, 1, "exactly one bonus entry")
	entry := store.entries[0]
	assert.Equal(t, credits.ActivityStreakBonus, entry.ActivityKind)
	assert.Equal(t, 5, entry.Amount)
	assert.True(t, entry.IsVerified)
	assert.Equal(t, "7-day activity streak bonus!", entry.Description)
	assert.Equal(t, student, entry.UserID)
}

func TestCheckStreak_SixDaysIsNotAStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	student := uuid.New()

	ledger := &fakeLedger{timestamps: map[uuid.UUID][]time.Time{
		student: daily(now, 6, 12), // 6 distinct days, nothing today
	}}

	store := &memStore{}
	writer := credits.NewService(store, allUsers{})
	svc := NewService(ledger, writer, 7, 7).WithClock(func() time.Time { return now })

	awarded, err := svc.CheckStreak(context.Background(), student)
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Empty(t, store.entries, "no side effects below the threshold")
}

func TestCheckStreak_MultipleEntriesSameDayCountOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	student := uuid.New()

	// 14 entries but only 5 distinct days.
	var stamps []time.Time
	for _, d := range daily(now, 5, 9) {
		stamps = append(stamps, d, d.Add(time.Hour), d.Add(2*time.Hour))
	}
	ledger := &fakeLedger{timestamps: map[uuid.UUID][]time.Time{student: stamps}}

	store := &memStore{}
	writer := credits.NewService(store, allUsers{})
	svc := NewService(ledger, writer, 7, 7).WithClock(func() time.Time { return now })

	awarded, err := svc.CheckStreak(context.Background(), student)
	require.NoError(t, err)
	assert.False(t, awarded)
}

// Days are reduced in UTC: two timestamps an hour apart that straddle a
// UTC midnight are two distinct days.
func TestCheckStreak_DayReductionIsUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	student := uuid.New()

	// Five midday entries (Mar 5-9) plus a pair straddling the Mar 9 UTC
	// midnight. The pair lands on Mar 8 and Mar 9 — both duplicates, so
	// the distinct count stays at five.
	stamps := daily(now, 5, 12)
	midnight := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	stamps = append(stamps, midnight.Add(-30*time.Minute), midnight.Add(30*time.Minute))
	ledger := &fakeLedger{timestamps: map[uuid.UUID][]time.Time{student: stamps}}

	store := &memStore{}
	writer := credits.NewService(store, allUsers{})
	svc := NewService(ledger, writer, 7, 7).WithClock(func() time.Time { return now })

	awarded, err := svc.CheckStreak(context.Background(), student)
	require.NoError(t, err)
	assert.False(t, awarded)

	// Two genuinely new days (Mar 10 and Mar 4, both inside the window
	// that opens Mar 3 08:00) push the set to seven.
	ledger.timestamps[student] = append(ledger.timestamps[student],
		now.Add(-2*time.Hour),
		time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC),
	)
	awarded, err = svc.CheckStreak(context.Background(), student)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Len(t, store.entries, 1)
}
