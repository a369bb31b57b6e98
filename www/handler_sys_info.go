package www

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/angas/rotariff-go/hours"
)

type SysInfo struct {
	Version   string
	GoVersion string
	NumCPU    int
	StartedAt time.Time
}

func newSysInfo(version string) SysInfo {
	return SysInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
		StartedAt: time.Now(),
	}
}

func NewSysInfoHandler(logger *slog.Logger, tm *TemplateManager, hub *Hub, sysInfo SysInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		data := struct {
			SysInfo
			StartedAtLocal string
			Uptime         string
			Goroutines     int
			AllocMiB       float64
			Clients        int
		}{
			SysInfo:        sysInfo,
			StartedAtLocal: hours.FormatTimeLocal(sysInfo.StartedAt),
			Uptime:         time.Since(sysInfo.StartedAt).Round(time.Second).String(),
			Goroutines:     runtime.NumGoroutine(),
			AllocMiB:       float64(mem.Alloc) / (1 << 20),
			Clients:        hub.ClientCount(),
		}

		if err := tm.ExecuteToWriter("sys_info.html", data, w); err != nil {
			logger.Error("handling sys_info request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
