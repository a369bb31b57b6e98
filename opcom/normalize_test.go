package opcom

import (
	"errors"
	"math"
	"testing"
	"time"
)

func makeRecords(n int, price float64) []RawRecord {
	records := make([]RawRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, RawRecord{Interval: i, Price: price, Volume: 100})
	}
	return records
}

func TestNormalizePlainDay(t *testing.T) {
	prices, err := Normalize(makeRecords(24, 443.76), "2025-01-30")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(prices) != 24 {
		t.Fatalf("Normalize() expected 24 entries, got %d", len(prices))
	}

	for i, p := range prices {
		if p.Hour.Date != "2025-01-30" || int(p.Hour.Hour) != i {
			t.Errorf("Normalize() entry %d has hour %+v", i, p.Hour)
		}
	}

	// Strictly increasing, spaced exactly one hour.
	for i := 1; i < len(prices); i++ {
		if d := prices[i].Start().Sub(prices[i-1].Start()); d != time.Hour {
			t.Errorf("Normalize() gap between entries %d and %d is %v, expected 1h", i-1, i, d)
		}
	}

	if got := prices[0].Start().Format(time.RFC3339); got != "2025-01-30T00:00:00+02:00" {
		t.Errorf("Normalize() first entry starts at %s", got)
	}
}

func TestNormalizeSpringForwardDay(t *testing.T) {
	prices, err := Normalize(makeRecords(23, 400), "2025-03-30")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(prices) != 23 {
		t.Fatalf("Normalize() expected 23 entries, got %d", len(prices))
	}

	// No duplicate local hour-of-day on the short day.
	seen := map[int]bool{}
	for _, p := range prices {
		h := p.Hour.LocalHour()
		if seen[h] {
			t.Errorf("Normalize() duplicate local hour %d", h)
		}
		seen[h] = true
	}
	if seen[3] {
		t.Errorf("Normalize() local hour 3 should not exist on the spring-forward day")
	}

	for i := 1; i < len(prices); i++ {
		if d := prices[i].Start().Sub(prices[i-1].Start()); d != time.Hour {
			t.Errorf("Normalize() gap between entries %d and %d is %v, expected 1h", i-1, i, d)
		}
	}
}

func TestNormalizeFallBackDay(t *testing.T) {
	prices, err := Normalize(makeRecords(25, 400), "2025-10-26")
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if len(prices) != 25 {
		t.Fatalf("Normalize() expected 25 entries, got %d", len(prices))
	}

	last := prices[24].Start().Format(time.RFC3339)
	if last != "2025-10-26T23:00:00+02:00" {
		t.Errorf("Normalize() last entry starts at %s", last)
	}

	// The repeated local hour appears exactly twice.
	count := 0
	for _, p := range prices {
		if p.Hour.LocalHour() == 3 {
			count++
		}
	}
	if count != 2 {
		t.Errorf("Normalize() expected local hour 3 twice on the fall-back day, got %d", count)
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	gap := makeRecords(24, 400)
	gap[10].Interval = 12 // skip interval 11

	dup := makeRecords(24, 400)
	dup[10].Interval = 10

	nan := makeRecords(24, 400)
	nan[5].Price = math.NaN()

	tests := []struct {
		name    string
		records []RawRecord
		date    string
	}{
		{name: "too few entries", records: makeRecords(22, 400), date: "2025-01-30"},
		{name: "too many entries", records: makeRecords(26, 400), date: "2025-01-30"},
		{name: "24 entries on a 23-hour day", records: makeRecords(24, 400), date: "2025-03-30"},
		{name: "23 entries on a 24-hour day", records: makeRecords(23, 400), date: "2025-01-30"},
		{name: "gap in intervals", records: gap, date: "2025-01-30"},
		{name: "duplicate interval", records: dup, date: "2025-01-30"},
		{name: "non-numeric price", records: nan, date: "2025-01-30"},
		{name: "invalid date", records: makeRecords(24, 400), date: "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.records, tt.date)
			var normErr *NormalizeError
			if !errors.As(err, &normErr) {
				t.Errorf("Normalize() expected NormalizeError, got %v", err)
			}
		})
	}
}
