package opcom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/types"
)

// Provenance strings carried through to the sensor attribute bundles.
const (
	Source         = "Romanian Electricity Market CSV Export"
	SourceForecast = "Romanian Electricity Market CSV Forecast"
)

const (
	refererURL    = "https://www.opcom.ro/pp/DAM/DAM_PZU.php"
	minReportSize = 100
)

// Opcom fetches day-ahead closing prices from the OPCOM PZU report
// export. One GET per delivery day, no authentication.
type Opcom struct {
	baseUrl string
	region  string
	client  *http.Client
	logger  *slog.Logger
}

func New(logger *slog.Logger, baseUrl string, region string) *Opcom {
	return &Opcom{
		baseUrl: baseUrl,
		region:  region,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// GetDayPrices fetches and normalizes the series for one local market
// day (date in 2006-01-02 form).
func (o *Opcom) GetDayPrices(ctx context.Context, date string) ([]types.HourlyPrice, error) {
	records, err := o.FetchDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return Normalize(records, date)
}

// FetchDay downloads and parses the raw hourly records for one day.
func (o *Opcom) FetchDay(ctx context.Context, date string) ([]RawRecord, error) {
	day, err := time.ParseInLocation("2006-01-02", date, hours.MarketLocation())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	url := fmt.Sprintf("%s/%s/%s", o.baseUrl, day.Format("02/01/2006"), o.region)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setBrowserHeaders(req)

	o.logger.Debug("fetching pzu report", "url", url)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pzu report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pzu report: %w", err)
	}

	content, err := decodeBody(body)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	return o.parseCSV(content, date)
}

// The export endpoint serves error pages to clients that do not look
// like the report browser UI.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/csv,application/csv,text/plain,*/*")
	req.Header.Set("Accept-Language", "ro-RO,ro;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Referer", refererURL)
}

// decodeBody turns the report bytes into text, trying UTF-8 and the
// Romanian legacy encodings in turn.
func decodeBody(body []byte) (string, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}
	if decoded, err := charmap.ISO8859_2.NewDecoder().Bytes(body); err == nil {
		return string(decoded), nil
	}
	decoded, err := charmap.Windows1250.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("undecodable response body")
	}
	return string(decoded), nil
}
