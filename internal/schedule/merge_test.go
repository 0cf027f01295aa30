package schedule_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
)

func TestMerge_CloudWinsRegardlessOfOrder(t *testing.T) {
	cloud := synced("cloud", "2026-02-27", "10:00", "18:00")
	local := shift("local", "2026-02-27", "09:00", "17:00")

	for _, in := range [][]model.Shift{{cloud, local}, {local, cloud}} {
		got, err := schedule.Merge(in, time.UTC)
		require.NoError(t, err)
		if diff := cmp.Diff([]model.Shift{cloud}, got); diff != "" {
			t.Errorf("Merge mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestMerge_EarlierStartWinsWithinProvenance(t *testing.T) {
	late := shift("late", "2026-02-27", "12:00", "20:00")
	early := shift("early", "2026-02-27", "08:00", "16:00")

	got, err := schedule.Merge([]model.Shift{late, early}, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "early", got[0].ID)
}

func TestMerge_KeepsTouchingAndDisjointShifts(t *testing.T) {
	in := []model.Shift{
		shift("c", "2026-02-28", "09:00", "17:00"),
		shift("b", "2026-02-27", "17:00", "22:00"),
		shift("a", "2026-02-27", "09:00", "17:00"),
	}
	got, err := schedule.Merge(in, time.UTC)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestMerge_DropsContentDuplicates(t *testing.T) {
	a := shift("1", "2026-02-27", "09:00", "17:00")
	b := shift("2", "2026-02-27", "09:00", "17:00")
	got, err := schedule.Merge([]model.Shift{a, b}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []model.Shift{a}, got, "stable sort keeps the first of equal shifts")
}

func TestMerge_OvernightConflictAcrossDates(t *testing.T) {
	night := synced("night", "2026-02-27", "22:00", "06:00")
	morning := shift("morning", "2026-02-28", "05:00", "09:00")

	res, err := schedule.MergeReport([]model.Shift{morning, night}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []model.Shift{night}, res.Kept)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "morning", res.Dropped[0].Shift.ID)
	assert.Equal(t, "night", res.Dropped[0].ConflictsWith.ID)
}

func TestMerge_Idempotent(t *testing.T) {
	in := []model.Shift{
		shift("l1", "2026-02-27", "09:00", "17:00"),
		synced("c1", "2026-02-27", "13:00", "21:00"),
		shift("l2", "2026-02-27", "21:00", "23:00"),
		shift("l3", "2026-02-27", "22:00", "06:00"),
		synced("c2", "2026-02-28", "05:00", "13:00"),
		shift("l4", "2026-03-01", "08:00", "08:00"),
		shift("l5", "2026-03-01", "12:00", "14:00"),
	}
	once, err := schedule.Merge(in, time.UTC)
	require.NoError(t, err)
	twice, err := schedule.Merge(once, time.UTC)
	require.NoError(t, err)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Merge not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMerge_PairwiseNonOverlapping(t *testing.T) {
	in := []model.Shift{
		shift("1", "2026-02-27", "06:00", "14:00"),
		shift("2", "2026-02-27", "10:00", "18:00"),
		synced("3", "2026-02-27", "13:00", "22:00"),
		shift("4", "2026-02-27", "22:00", "06:00"),
		shift("5", "2026-02-28", "00:00", "04:00"),
		shift("6", "2026-02-28", "06:00", "07:00"),
	}
	got, err := schedule.Merge(in, time.UTC)
	require.NoError(t, err)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			ov, err := schedule.Overlaps(got[i], got[j], time.UTC)
			require.NoError(t, err)
			assert.False(t, ov, "%s overlaps %s", got[i].ID, got[j].ID)
		}
	}
}

func TestMerge_Deterministic(t *testing.T) {
	in := []model.Shift{
		shift("x", "2026-02-27", "09:00", "17:00"),
		shift("y", "2026-02-27", "09:00", "12:00"),
		shift("z", "2026-02-27", "09:00", "10:00"),
	}
	first, err := schedule.Merge(in, time.UTC)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := schedule.Merge(in, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "x", first[0].ID)
}

func TestMerge_EmptyInput(t *testing.T) {
	got, err := schedule.Merge(nil, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge_MalformedShiftFails(t *testing.T) {
	_, err := schedule.Merge([]model.Shift{shift("bad", "2026-02-27", "25:00", "17:00")}, time.UTC)
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
}
