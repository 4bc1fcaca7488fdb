package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neighborly/internal/apperror"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestResolveExpiry(t *testing.T) {
	tests := []struct {
		duration Duration
		want     time.Duration
	}{
		{DurationOneHour, time.Hour},
		{DurationThreeHrs, 3 * time.Hour},
		{DurationSixHrs, 6 * time.Hour},
		{DurationTwelveHrs, 12 * time.Hour},
		{DurationOneDay, 24 * time.Hour},
		{DurationThreeDays, 72 * time.Hour},
		{DurationOneWeek, 168 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.duration), func(t *testing.T) {
			got, err := ResolveExpiry(tt.duration, now)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, now.Add(tt.want), *got)

			again, err := ResolveExpiry(tt.duration, now)
			require.NoError(t, err)
			assert.Equal(t, *got, *again)
		})
	}
}

func TestResolveExpiry_Permanent(t *testing.T) {
	got, err := ResolveExpiry(DurationPermanent, now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveExpiry_Unknown(t *testing.T) {
	_, err := ResolveExpiry("2 weeks", now)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidDuration, apperror.CodeOf(err))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestWindowStart(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "utc mid month",
			now:  now,
			loc:  time.UTC,
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "nil location defaults to utc",
			now:  now,
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "utc end of month is next month locally",
			now:  time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC),
			loc:  kolkata,
			want: time.Date(2026, 4, 1, 0, 0, 0, 0, kolkata),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowStart(tt.now, tt.loc)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Notice {
		return &Notice{
			Title:       "Lost cat",
			Description: "Grey cat near the park",
			Category:    "Lost & Found",
			Location:    "Koramangala",
			Radius:      5,
			Duration:    DurationOneDay,
		}
	}

	tests := []struct {
		name     string
		mutate   func(n *Notice)
		wantCode string
	}{
		{name: "valid", mutate: func(n *Notice) {}},
		{name: "urgent with expiry", mutate: func(n *Notice) { n.Urgent = true }},
		{
			name:     "urgent permanent",
			mutate:   func(n *Notice) { n.Urgent = true; n.Duration = DurationPermanent },
			wantCode: apperror.CodeUrgentPermanent,
		},
		{
			name:     "unknown duration",
			mutate:   func(n *Notice) { n.Duration = "forever" },
			wantCode: apperror.CodeInvalidDuration,
		},
		{
			name:     "unknown category",
			mutate:   func(n *Notice) { n.Category = "Politics" },
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "radius too large",
			mutate:   func(n *Notice) { n.Radius = 51 },
			wantCode: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid()
			tt.mutate(n)

			err := Validate(n)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperror.CodeOf(err))
		})
	}
}

func TestPatchApply(t *testing.T) {
	n := &Notice{Title: "Old", Duration: DurationOneDay}
	title := "New"
	same := DurationOneDay
	week := DurationOneWeek

	assert.False(t, Patch{Title: &title, Duration: &same}.Apply(n))
	assert.Equal(t, "New", n.Title)

	assert.True(t, Patch{Duration: &week}.Apply(n))
	assert.Equal(t, DurationOneWeek, n.Duration)
}
