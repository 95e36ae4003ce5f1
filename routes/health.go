package routes

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"yochan/logger"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	StartTime string            `json:"start_time"`
	Checks    map[string]string `json:"checks"`
}

// Global start time for uptime calculation
var startTime = time.Now()

// formatUptime formats a duration into days, hours, minutes, seconds
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// HealthHandler reports liveness for load balancers. It answers 503 when
// the journal database is unreachable.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Health check request: remoteAddr=%s", r.RemoteAddr)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    formatUptime(time.Since(startTime)),
		StartTime: startTime.Format("2006-01-02 15:04:05 MST"),
		Checks:    map[string]string{"storage": s.media.Backend().Name()},
	}

	status := http.StatusOK
	if s.journal != nil {
		if err := s.journal.CheckHealth(); err != nil {
			logger.Errorf("Journal health check failed: %v", err)
			response.Status = "degraded"
			response.Checks["journal"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["journal"] = "ok"
		}
	}

	writeJSON(w, status, response)
}
