package opcom

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/angas/rotariff-go/hours"
)

// RawRecord is one row of the hourly section of a PZU report, as
// delivered by the upstream. Interval is 1-based.
type RawRecord struct {
	Interval int
	Price    float64 // lei per MWh
	Volume   float64 // MWh
}

var delimiters = []rune{',', ';', '\t'}

// parseCSV extracts the hourly records from a PZU report. The report
// is a multi-section document; the hourly section is located by its
// header row. When the hourly section is absent the daily base price
// row (ROPEX_DAM_Base, 1-24) is replicated over the whole day, and
// when neither exists the day counts as not yet published.
func (o *Opcom) parseCSV(content string, date string) ([]RawRecord, error) {
	content = strings.TrimSpace(content)
	if len(content) < minReportSize {
		return nil, ErrNotPublished
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	sectionStart := -1
	for i, line := range lines {
		if strings.Contains(line, "Interval") && strings.Contains(line, "Pret de Inchidere") {
			sectionStart = i + 1
			break
		}
	}

	var records []RawRecord
	if sectionStart != -1 {
		records = o.parseHourlyRows(lines[sectionStart:])
	}

	if len(records) == 0 {
		records = parseBaseFallback(lines, date)
	}
	if len(records) == 0 {
		if sectionStart == -1 {
			return nil, ErrNotPublished
		}
		return nil, &ParseError{Reason: "hourly section contains no readable rows"}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Interval < records[j].Interval })
	return records, nil
}

func (o *Opcom) parseHourlyRows(lines []string) []RawRecord {
	records := make([]RawRecord, 0, 25)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row := splitRow(line)
		if len(row) < 3 {
			continue
		}
		if !strings.EqualFold(row[0], "romania") {
			continue
		}

		interval, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			o.logger.Warn("skipping unreadable interval", "row", line, "error", err)
			continue
		}
		price, err := parseDecimal(row[2])
		if err != nil {
			o.logger.Warn("skipping unreadable price", "row", line, "error", err)
			continue
		}

		volume := 0.0
		if len(row) > 3 {
			if v, err := parseDecimal(row[3]); err == nil {
				volume = v
			}
		}

		records = append(records, RawRecord{Interval: interval, Price: price, Volume: volume})
	}
	return records
}

// parseBaseFallback replicates the ROPEX_DAM_Base daily average over
// every delivery hour of the day (volume 0).
func parseBaseFallback(lines []string, date string) []RawRecord {
	var base float64
	for _, line := range lines {
		if !strings.Contains(line, "ROPEX_DAM_Base") || !strings.Contains(line, "1-24") {
			continue
		}
		row := splitRow(line)
		if len(row) < 2 {
			continue
		}
		if v, err := parseDecimal(row[1]); err == nil && v > 0 {
			base = v
			break
		}
	}
	if base == 0 {
		return nil
	}

	n := hours.IntervalsInDay(date)
	if n == 0 {
		n = 24
	}
	records := make([]RawRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, RawRecord{Interval: i, Price: base})
	}
	return records
}

// splitRow reads one report line as a CSV record, sniffing the
// delimiter. Field counts vary between report sections.
func splitRow(line string) []string {
	for _, delim := range delimiters {
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = delim
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		row, err := r.Read()
		if err != nil || len(row) < 3 {
			continue
		}
		return trimRow(row)
	}

	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	row, err := r.Read()
	if err != nil {
		return nil
	}
	return trimRow(row)
}

func trimRow(row []string) []string {
	for i, cell := range row {
		row[i] = strings.Trim(strings.TrimSpace(cell), `"`)
	}
	return row
}

// parseDecimal reads a number that may use the Romanian decimal comma.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(s, 64)
}
