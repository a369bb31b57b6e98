package hours

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var marketLoc *time.Location

func init() {
	var err error
	marketLoc, err = time.LoadLocation("Europe/Bucharest")
	if err != nil {
		panic(fmt.Sprintf("failed to load Bucharest location: %v", err))
	}
}

func SetMarketTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	marketLoc = loc
	return nil
}

func MarketLocation() *time.Location {
	return marketLoc
}

// DateHour identifies one delivery interval of a local market day.
// Hour is the ordinal interval index within Date, not the wall-clock
// hour: a normal day has indexes 0-23, the spring-forward day 0-22 and
// the fall-back day 0-24.
type DateHour struct {
	Date string
	Hour uint8
}

func (dh DateHour) String() string {
	return fmt.Sprintf("%s %02d", dh.Date, dh.Hour)
}

// Time returns the absolute start of the interval.
func (dh DateHour) Time() time.Time {
	return dh.DayStart().Add(time.Duration(dh.Hour) * time.Hour)
}

// DayStart returns local midnight of Date.
func (dh DateHour) DayStart() time.Time {
	t, err := time.ParseInLocation(dateLayout, dh.Date, marketLoc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (dh DateHour) IsoString() string {
	return dh.Time().Format(time.RFC3339)
}

// LocalHour returns the wall-clock hour the interval starts at. On the
// fall-back day two intervals share the same local hour.
func (dh DateHour) LocalHour() int {
	return dh.Time().In(marketLoc).Hour()
}

func (dh DateHour) Add(hours int) DateHour {
	t := dh.Time().Add(time.Duration(hours) * time.Hour)
	return FromTime(t)
}

func (dh DateHour) Sub(hours int) DateHour {
	return dh.Add(-hours)
}

func (dh DateHour) Compare(other DateHour) int {
	if dh == other {
		return 0
	}
	if dh.Date < other.Date {
		return -1
	}
	if dh.Date > other.Date {
		return 1
	}
	if dh.Hour < other.Hour {
		return -1
	}
	return 1
}

func (dh DateHour) IsZero() bool {
	return dh.Date == "" && dh.Hour == 0
}

func FromTime(t time.Time) DateHour {
	if t.IsZero() {
		return DateHour{}
	}
	local := t.In(marketLoc)
	date := local.Format(dateLayout)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, marketLoc)
	return DateHour{
		Date: date,
		Hour: uint8(local.Sub(midnight) / time.Hour),
	}
}

func FromNow() DateHour {
	return FromTime(time.Now())
}

func FromMidnight() DateHour {
	return DateHour{
		Date: time.Now().In(marketLoc).Format(dateLayout),
		Hour: 0,
	}
}

func FromIso(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IntervalsInDay returns the number of delivery hours in the local
// day, 23 on the spring-forward date and 25 on the fall-back date.
func IntervalsInDay(date string) int {
	midnight, err := time.ParseInLocation(dateLayout, date, marketLoc)
	if err != nil {
		return 0
	}
	next := midnight.AddDate(0, 0, 1)
	return int(next.Sub(midnight) / time.Hour)
}

// AddDays shifts a date string by whole calendar days.
func AddDays(date string, days int) string {
	t, err := time.ParseInLocation(dateLayout, date, marketLoc)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}

func Today() string {
	return time.Now().In(marketLoc).Format(dateLayout)
}

func FormatTimeLocal(t time.Time) string {
	return t.In(marketLoc).Format("2006-01-02 15:04:05")
}
