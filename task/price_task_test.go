package task

import (
	"testing"
	"time"

	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/types"
)

func intPtr(n int) *int { return &n }

func testFetchConfig() config.AppConfigFetch {
	return config.AppConfigFetch{
		CutoffHour:          intPtr(14),
		RefreshAfterMinutes: intPtr(120),
	}
}

func dayOf(date string, fetchedAt time.Time) types.DayPrices {
	day := types.DayPrices{Date: date, FetchedAt: fetchedAt}
	for i := 0; i < hours.IntervalsInDay(date); i++ {
		day.Hours = append(day.Hours, types.HourlyPrice{
			Hour:  hours.DateHour{Date: date, Hour: uint8(i)},
			Price: 400,
		})
	}
	return day
}

func TestFetchPlan(t *testing.T) {
	loc := hours.MarketLocation()
	at := func(hour, min int) time.Time {
		return time.Date(2025, 6, 10, hour, min, 0, 0, loc)
	}
	today := "2025-06-10"
	tomorrow := "2025-06-11"

	tests := []struct {
		name         string
		snap         pzu.Snapshot
		now          time.Time
		wantToday    bool
		wantTomorrow bool
	}{
		{
			name:      "everything missing before cutoff",
			snap:      pzu.Snapshot{},
			now:       at(9, 0),
			wantToday: true,
		},
		{
			name:         "everything missing past cutoff",
			snap:         pzu.Snapshot{},
			now:          at(14, 5),
			wantToday:    true,
			wantTomorrow: true,
		},
		{
			name: "today set, before cutoff",
			snap: pzu.Snapshot{Today: dayOf(today, at(8, 0))},
			now:  at(13, 0),
		},
		{
			name:         "today set, past cutoff, tomorrow missing",
			snap:         pzu.Snapshot{Today: dayOf(today, at(8, 0))},
			now:          at(14, 5),
			wantTomorrow: true,
		},
		{
			name: "fresh tomorrow is not re-requested",
			snap: pzu.Snapshot{
				Today:    dayOf(today, at(8, 0)),
				Tomorrow: dayOf(tomorrow, at(14, 10)),
			},
			now: at(15, 0),
		},
		{
			name: "tomorrow re-requested after the refresh window",
			snap: pzu.Snapshot{
				Today:    dayOf(today, at(8, 0)),
				Tomorrow: dayOf(tomorrow, at(14, 10)),
			},
			now:          at(18, 0),
			wantTomorrow: true,
		},
		{
			name:      "stale snapshot from yesterday",
			snap:      pzu.Snapshot{Today: dayOf("2025-06-09", at(8, 0).Add(-24*time.Hour))},
			now:       at(9, 0),
			wantToday: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotToday, gotTomorrow := fetchPlan(tt.snap, tt.now, testFetchConfig())
			if gotToday != tt.wantToday {
				t.Errorf("fetchToday = %v, want %v", gotToday, tt.wantToday)
			}
			if gotTomorrow != tt.wantTomorrow {
				t.Errorf("fetchTomorrow = %v, want %v", gotTomorrow, tt.wantTomorrow)
			}
		})
	}
}
