package www

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/types"
	"github.com/gorilla/sessions"
)

const flashSession = "rotariff"

type priceRow struct {
	Interval string
	Price    float64
	Volume   float64
	Current  bool
}

type pricesPage struct {
	TodayDate    string
	Today        []priceRow
	TomorrowDate string
	Tomorrow     []priceRow
	HasStats     bool
	Stats        types.PriceStatistics
	Status       string
	Fetching     bool
	Flash        string
}

func NewPricesHandler(logger *slog.Logger, store *sessions.CookieStore, data *pzu.Data, tm *TemplateManager, task func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/html")

			now := time.Now()
			snap := data.Snapshot()

			page := pricesPage{
				Status:   snap.StatusText(now),
				Fetching: data.IsFetching(),
				Flash:    popFlash(logger, store, w, r),
			}
			if today, ok := snap.TodaySet(now); ok {
				page.TodayDate = today.Date
				page.Today = priceRows(today, hours.FromTime(now))
			}
			if tomorrow, ok := snap.TomorrowSet(now); ok {
				page.TomorrowDate = tomorrow.Date
				page.Tomorrow = priceRows(tomorrow, hours.DateHour{})
			}
			if stats, ok := snap.Statistics(now); ok {
				page.HasStats = true
				page.Stats = stats
			}

			if err := tm.ExecuteToWriter("prices.html", page, w); err != nil {
				logger.Error("handling prices request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}

		case http.MethodPost:
			session, err := store.Get(r, flashSession)
			if err == nil {
				session.AddFlash("Price download requested.")
				if err := session.Save(r, w); err != nil {
					logger.Warn("saving session failed", slog.Any("error", err))
				}
			}
			go task()
			http.Redirect(w, r, "/prices", http.StatusSeeOther)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func priceRows(day types.DayPrices, current hours.DateHour) []priceRow {
	rows := make([]priceRow, 0, len(day.Hours))
	for _, hp := range day.Hours {
		start := hp.Start().In(hours.MarketLocation())
		end := hp.End().In(hours.MarketLocation())
		rows = append(rows, priceRow{
			Interval: fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04")),
			Price:    hp.Price,
			Volume:   hp.Volume,
			Current:  hp.Hour == current,
		})
	}
	return rows
}

func popFlash(logger *slog.Logger, store *sessions.CookieStore, w http.ResponseWriter, r *http.Request) string {
	session, err := store.Get(r, flashSession)
	if err != nil {
		return ""
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	if err := session.Save(r, w); err != nil {
		logger.Warn("saving session failed", slog.Any("error", err))
	}

	if msg, ok := flashes[0].(string); ok {
		return msg
	}
	return ""
}
