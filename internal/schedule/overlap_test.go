package schedule_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/shiftsync/internal/schedule"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]string
		want bool
	}{
		{"touching boundary", [3]string{"2026-02-27", "09:00", "17:00"}, [3]string{"2026-02-27", "17:00", "20:00"}, false},
		{"partial", [3]string{"2026-02-27", "09:00", "17:00"}, [3]string{"2026-02-27", "16:00", "20:00"}, true},
		{"contained", [3]string{"2026-02-27", "09:00", "17:00"}, [3]string{"2026-02-27", "10:00", "11:00"}, true},
		{"disjoint", [3]string{"2026-02-27", "06:00", "08:00"}, [3]string{"2026-02-27", "09:00", "10:00"}, false},
		{"overnight into next day", [3]string{"2026-02-27", "22:00", "06:00"}, [3]string{"2026-02-28", "05:00", "09:00"}, true},
		{"overnight touches next day", [3]string{"2026-02-27", "22:00", "06:00"}, [3]string{"2026-02-28", "06:00", "09:00"}, false},
		{"different days", [3]string{"2026-02-27", "09:00", "17:00"}, [3]string{"2026-02-28", "09:00", "17:00"}, false},
		{"full day covers everything", [3]string{"2026-02-27", "08:00", "08:00"}, [3]string{"2026-02-28", "07:00", "07:30"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := shift("a", tt.a[0], tt.a[1], tt.a[2])
			b := shift("b", tt.b[0], tt.b[1], tt.b[2])
			got, err := schedule.Overlaps(a, b, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverlaps_SymmetricAndReflexive(t *testing.T) {
	var clocks []string
	for h := 0; h < 24; h += 3 {
		clocks = append(clocks, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	for _, as := range clocks {
		for _, ae := range clocks {
			a := shift("a", "2026-02-27", as, ae)
			self, err := schedule.Overlaps(a, a, time.UTC)
			require.NoError(t, err)
			assert.True(t, self, "%s-%s should overlap itself", as, ae)

			for _, bs := range clocks {
				for _, be := range clocks {
					b := shift("b", "2026-02-27", bs, be)
					ab, err := schedule.Overlaps(a, b, time.UTC)
					require.NoError(t, err)
					ba, err := schedule.Overlaps(b, a, time.UTC)
					require.NoError(t, err)
					if ab != ba {
						t.Fatalf("asymmetric: %s-%s vs %s-%s", as, ae, bs, be)
					}
				}
			}
		}
	}
}

func TestOverlaps_MalformedInput(t *testing.T) {
	_, err := schedule.Overlaps(shift("a", "2026-02-27", "9am", "17:00"), shift("b", "2026-02-27", "09:00", "17:00"), time.UTC)
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
}
