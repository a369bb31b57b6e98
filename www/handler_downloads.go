package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/rotariff-go/database"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/pzu"
)

type downloadsPage struct {
	Status      string
	LastAttempt string
	LastSuccess string
	LastError   string
	LatestDate  string
	Entries     []database.DownloadLogRow
}

func NewDownloadsHandler(logger *slog.Logger, db *database.Database, data *pzu.Data, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html")

		limit := intInRange(r.URL, "limit", 25, 1, 500)
		entries, err := db.GetRecentDownloads(r.Context(), limit)
		if err != nil {
			logger.Error("handling downloads request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		latestDate, err := db.GetLatestPriceDate(r.Context())
		if err != nil {
			logger.Error("handling downloads request", slog.Any("error", err))
		}
		if latestDate == "" {
			latestDate = "-"
		}

		state := data.State()
		page := downloadsPage{
			Status:      state.Status.String(),
			LastAttempt: localTimeOrDash(state.LastAttempt),
			LastSuccess: localTimeOrDash(state.LastSuccess),
			LastError:   state.LastError,
			LatestDate:  latestDate,
			Entries:     entries,
		}

		if err := tm.ExecuteToWriter("downloads.html", page, w); err != nil {
			logger.Error("handling downloads request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func localTimeOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return hours.FormatTimeLocal(t)
}
