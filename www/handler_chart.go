package www

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/angas/rotariff-go/database"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/www/chartjs"
)

func NewChartHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Today and, once published, tomorrow.
		rows, err := db.GetHourlyPricesFrom(r.Context(), hours.FromMidnight())
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		today := hours.Today()
		charts := make([]chartjs.Chart, 0, 2)
		for _, day := range splitByDate(rows) {
			title := day.date
			switch day.date {
			case today:
				title = fmt.Sprintf("Today %s", day.date)
			case hours.AddDays(today, 1):
				title = fmt.Sprintf("Tomorrow %s", day.date)
			}
			charts = append(charts, dayChart(title, day.rows))
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(charts)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
			return
		}
	}
}

type chartDay struct {
	date string
	rows []database.HourlyPriceRow
}

// splitByDate groups archive rows into days, relying on the query's
// date then hour ordering.
func splitByDate(rows []database.HourlyPriceRow) []chartDay {
	var days []chartDay
	for _, row := range rows {
		if len(days) == 0 || days[len(days)-1].date != row.When.Date {
			days = append(days, chartDay{date: row.When.Date})
		}
		days[len(days)-1].rows = append(days[len(days)-1].rows, row)
	}
	return days
}

// dayChart plots one market day with the closing price on the left
// axis and the traded volume on the right.
func dayChart(title string, rows []database.HourlyPriceRow) chartjs.Chart {
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.When.Time().Format("15:04")
	}

	chart := chartjs.NewChart(title, labels)
	maxVolume := 0.0
	for i, row := range rows {
		maxVolume = max(maxVolume, row.Volume)
		chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(row.Price, 2)
		chart.Data.Datasets[1].Data[i] = chartjs.FixedFloat64(row.Volume, 2)
	}
	maxVolume = math.Ceil(maxVolume/100) * 100 // Round up to nearest hundred
	chart.Options.Scales["YAxis1"] = chart.Options.Scales["YAxis1"].
		WithTitle("Price (lei/MWh)")
	chart.Options.Scales["YAxis2"] = chart.Options.Scales["YAxis2"].
		WithTitle("Volume (MWh)").
		WithMinAndMax(0, maxVolume)

	return chart
}
