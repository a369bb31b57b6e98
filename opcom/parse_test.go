package opcom

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const fullReport = `"Piata pentru ziua urmatoare - Rezultate PIP"
"Data livrare: 30/01/2025"

"Zona","Interval","Pret de Inchidere [Lei/MWh]","Volum tranzactionat [MWh]"
"Romania","1","443.76","1145.0"
"Romania","2","412,50","1098.3"
"Romania","3","398.01","1050.7"
"Romania","4","390.00","1011.2"
"Romania","5","388.15","998.6"
"Romania","6","401.22","1033.0"
"Romania","7","455.90","1190.4"
"Romania","8","512.35","1301.9"
"Romania","9","540.80","1355.2"
"Romania","10","533.17","1340.8"
"Romania","11","518.44","1322.5"
"Romania","12","505.06","1296.1"
"Romania","13","498.73","1280.0"
"Romania","14","490.12","1264.3"
"Romania","15","487.56","1259.9"
"Romania","16","495.20","1270.4"
"Romania","17","520.65","1310.6"
"Romania","18","570.38","1398.2"
"Romania","19","602.91","1449.7"
"Romania","20","588.44","1420.3"
"Romania","21","549.02","1366.8"
"Romania","22","501.77","1288.5"
"Romania","23","460.30","1201.0"
"Romania","24","430.85","1152.6"

"Indice","Pret [Lei/MWh]"
"ROPEX_DAM_Base (1-24)","492.57"`

const baseOnlyReport = `"Piata pentru ziua urmatoare - Rezultate PIP"
"Data livrare: 30/01/2025"

"Indice","Pret [Lei/MWh]"
"ROPEX_DAM_Base (1-24)","263.66"
"ROPEX_DAM_Peak (9-20)","301.20"`

func testClient() *Opcom {
	return New(slog.Default(), "https://example.test/export", "ro")
}

func TestParseCSVFullReport(t *testing.T) {
	records, err := testClient().parseCSV(fullReport, "2025-01-30")
	if err != nil {
		t.Fatalf("parseCSV() unexpected error: %v", err)
	}
	if len(records) != 24 {
		t.Fatalf("parseCSV() expected 24 records, got %d", len(records))
	}

	first := records[0]
	if first.Interval != 1 || first.Price != 443.76 || first.Volume != 1145.0 {
		t.Errorf("parseCSV() first record wrong: %+v", first)
	}

	// Decimal comma in interval 2.
	if records[1].Price != 412.50 {
		t.Errorf("parseCSV() expected decimal comma price 412.50, got %v", records[1].Price)
	}

	for i, rec := range records {
		if rec.Interval != i+1 {
			t.Errorf("parseCSV() records not sorted: position %d has interval %d", i, rec.Interval)
		}
	}
}

func TestParseCSVSemicolonDelimited(t *testing.T) {
	report := strings.Join([]string{
		`"Zona";"Interval";"Pret de Inchidere [Lei/MWh]";"Volum [MWh]"`,
		`"Romania";"1";"400,00";"1000.0"`,
		`"Romania";"2";"410,00";"1010.0"`,
		`"Romania";"3";"420,00";"1020.0"`,
	}, "\n")
	// Pad past the minimum report size.
	report += "\n" + strings.Repeat(`"filler row to reach minimum size"`, 3)

	records, err := testClient().parseCSV(report, "2025-01-30")
	if err != nil {
		t.Fatalf("parseCSV() unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("parseCSV() expected 3 records, got %d", len(records))
	}
	if records[0].Price != 400.0 {
		t.Errorf("parseCSV() expected price 400.0, got %v", records[0].Price)
	}
}

func TestParseCSVSkipsUnreadableRows(t *testing.T) {
	report := strings.Join([]string{
		`"Zona","Interval","Pret de Inchidere [Lei/MWh]","Volum [MWh]"`,
		`"Romania","1","400.00","1000.0"`,
		`"Romania","not a number","410.00","1010.0"`,
		`"Romania","3","n/a","1020.0"`,
		`"Romania","4","430.00",""`,
		`"Ungaria","5","999.99","999.9"`,
		`some stray line that is not a data row at all, padded for size`,
	}, "\n")

	records, err := testClient().parseCSV(report, "2025-01-30")
	if err != nil {
		t.Fatalf("parseCSV() unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("parseCSV() expected 2 readable records, got %d", len(records))
	}
	if records[0].Interval != 1 || records[1].Interval != 4 {
		t.Errorf("parseCSV() expected intervals 1 and 4, got %d and %d", records[0].Interval, records[1].Interval)
	}
	if records[1].Volume != 0 {
		t.Errorf("parseCSV() expected blank volume to read as 0, got %v", records[1].Volume)
	}
}

func TestParseCSVBaseFallback(t *testing.T) {
	records, err := testClient().parseCSV(baseOnlyReport, "2025-01-30")
	if err != nil {
		t.Fatalf("parseCSV() unexpected error: %v", err)
	}
	if len(records) != 24 {
		t.Fatalf("parseCSV() expected 24 fallback records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Price != 263.66 {
			t.Errorf("parseCSV() fallback interval %d expected base price 263.66, got %v", rec.Interval, rec.Price)
		}
		if rec.Volume != 0 {
			t.Errorf("parseCSV() fallback interval %d expected volume 0, got %v", rec.Interval, rec.Volume)
		}
	}
}

func TestParseCSVBaseFallbackOnShortDay(t *testing.T) {
	records, err := testClient().parseCSV(baseOnlyReport, "2025-03-30")
	if err != nil {
		t.Fatalf("parseCSV() unexpected error: %v", err)
	}
	if len(records) != 23 {
		t.Fatalf("parseCSV() expected 23 fallback records on the spring-forward day, got %d", len(records))
	}
}

func TestParseCSVNotPublished(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty body", content: ""},
		{name: "short body", content: "No data"},
		{
			name: "no hourly section and no base row",
			content: strings.Repeat(`"Piata pentru ziua urmatoare - raport indisponibil"`+"\n", 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testClient().parseCSV(tt.content, "2025-01-30")
			if !errors.Is(err, ErrNotPublished) {
				t.Errorf("parseCSV() expected ErrNotPublished, got %v", err)
			}
		})
	}
}

func TestParseCSVUnreadableSection(t *testing.T) {
	report := strings.Join([]string{
		`"Zona","Interval","Pret de Inchidere [Lei/MWh]","Volum [MWh]"`,
		`"Romania","x","y","z"`,
		`"Romania","??","!!","--"`,
		`padding padding padding padding padding padding padding padding`,
	}, "\n")

	_, err := testClient().parseCSV(report, "2025-01-30")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("parseCSV() expected ParseError, got %v", err)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{input: "443.76", expected: 443.76},
		{input: "443,76", expected: 443.76},
		{input: `"512,35"`, expected: 512.35},
		{input: " 1 234,5 ", expected: 1234.5},
		{input: "", wantErr: true},
		{input: "n/a", wantErr: true},
		{input: "1.234,56", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDecimal(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDecimal(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("parseDecimal(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.expected {
				t.Errorf("parseDecimal(%q) expected %v, got %v", tt.input, tt.expected, got)
			}
		})
	}
}
