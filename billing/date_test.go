package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contafacil/bill-engine/billing"
)

// =============================================================================
// NEXT PERIOD DATE
// =============================================================================

func TestNextPeriodDate_Frequencies(t *testing.T) {
	tests := []struct {
		name      string
		current   billing.Date
		freq      billing.Frequency
		targetDay int
		want      billing.Date
	}{
		{
			name:      "monthly advances one month",
			current:   billing.NewDate(2025, time.January, 10),
			freq:      billing.FrequencyMonthly,
			targetDay: 10,
			want:      billing.NewDate(2025, time.February, 10),
		},
		{
			name:      "monthly wraps december to january",
			current:   billing.NewDate(2025, time.December, 5),
			freq:      billing.FrequencyMonthly,
			targetDay: 5,
			want:      billing.NewDate(2026, time.January, 5),
		},
		{
			name:      "quarterly wraps across year end",
			current:   billing.NewDate(2025, time.November, 15),
			freq:      billing.FrequencyQuarterly,
			targetDay: 15,
			want:      billing.NewDate(2026, time.February, 15),
		},
		{
			name:      "semiannual wraps across year end",
			current:   billing.NewDate(2025, time.September, 20),
			freq:      billing.FrequencySemiannual,
			targetDay: 20,
			want:      billing.NewDate(2026, time.March, 20),
		},
		{
			name:      "annual keeps month, advances year",
			current:   billing.NewDate(2025, time.June, 30),
			freq:      billing.FrequencyAnnual,
			targetDay: 30,
			want:      billing.NewDate(2026, time.June, 30),
		},
		{
			name:      "day 31 clamps to february 28 in a non-leap year",
			current:   billing.NewDate(2025, time.January, 31),
			freq:      billing.FrequencyMonthly,
			targetDay: 31,
			want:      billing.NewDate(2025, time.February, 28),
		},
		{
			name:      "day 31 clamps to february 29 in a leap year",
			current:   billing.NewDate(2024, time.January, 31),
			freq:      billing.FrequencyMonthly,
			targetDay: 31,
			want:      billing.NewDate(2024, time.February, 29),
		},
		{
			name:      "clamped month recovers the target day afterwards",
			current:   billing.NewDate(2025, time.February, 28),
			freq:      billing.FrequencyMonthly,
			targetDay: 31,
			want:      billing.NewDate(2025, time.March, 31),
		},
		{
			name:      "annual clamps leap day",
			current:   billing.NewDate(2024, time.February, 29),
			freq:      billing.FrequencyAnnual,
			targetDay: 29,
			want:      billing.NewDate(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.NextPeriodDate(tt.current, tt.freq, tt.targetDay)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNextPeriodDate_DayAlwaysValid(t *testing.T) {
	// The result's day must equal min(targetDay, days in the result month)
	// for every frequency, target day and starting month.
	for _, freq := range billing.Frequencies {
		for targetDay := 1; targetDay <= 31; targetDay++ {
			for month := time.January; month <= time.December; month++ {
				current := billing.NewDate(2025, month, 1)
				got := billing.NextPeriodDate(current, freq, targetDay)

				want := targetDay
				if last := billing.DaysInMonth(got.Year(), got.Month()); want > last {
					want = last
				}
				require.Equal(t, want, got.Day(),
					"freq=%s targetDay=%d from=%s got=%s", freq, targetDay, current, got)
			}
		}
	}
}

// =============================================================================
// INITIAL DUE DATE
// =============================================================================

func TestInitialDueDate(t *testing.T) {
	tests := []struct {
		name   string
		today  billing.Date
		dueDay int
		want   billing.Date
	}{
		{
			name:   "due day still ahead this month",
			today:  billing.NewDate(2025, time.March, 5),
			dueDay: 10,
			want:   billing.NewDate(2025, time.March, 10),
		},
		{
			name:   "due day is today",
			today:  billing.NewDate(2025, time.March, 10),
			dueDay: 10,
			want:   billing.NewDate(2025, time.March, 10),
		},
		{
			name:   "due day already passed rolls to next month",
			today:  billing.NewDate(2025, time.March, 15),
			dueDay: 10,
			want:   billing.NewDate(2025, time.April, 10),
		},
		{
			name:   "roll in december lands in january",
			today:  billing.NewDate(2025, time.December, 20),
			dueDay: 10,
			want:   billing.NewDate(2026, time.January, 10),
		},
		{
			name:   "day 31 clamps in a 30-day month",
			today:  billing.NewDate(2025, time.April, 1),
			dueDay: 31,
			want:   billing.NewDate(2025, time.April, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.InitialDueDate(tt.today, tt.dueDay)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseDate(t *testing.T) {
	want := billing.NewDate(2025, time.January, 10)

	for _, raw := range []string{
		"2025-01-10",
		"2025-01-10 00:00:00",
		"2025-01-10T00:00:00",
		"10/01/2025",
	} {
		got, err := billing.ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "parsing %q: got %s", raw, got)
	}

	empty, err := billing.ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = billing.ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestParseFrequency(t *testing.T) {
	f, err := billing.ParseFrequency("mensal")
	require.NoError(t, err)
	assert.Equal(t, billing.FrequencyMonthly, f)

	// Unknown labels are an error, not a silent annual fallback.
	_, err = billing.ParseFrequency("Quinzenal")
	assert.ErrorIs(t, err, billing.ErrValidation)
}
