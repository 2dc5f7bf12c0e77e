package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker checks database health
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// HealthStatus: flag per komponen, bentuknya flat untuk konsumsi dashboard.
type HealthStatus struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Server     bool      `json:"server"`
	Database   bool      `json:"database"`
	Classifier bool      `json:"classifier"`
	Timestamp  time.Time `json:"timestamp"`
}

// HealthHandler melaporkan kesehatan komponen. Key classifier yang tidak
// dikonfigurasi bikin status degraded (503), bukan crash; store tetap dicek
// independen.
func HealthHandler(version string, db HealthChecker, classifierConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := HealthStatus{
			Status:     "healthy",
			Version:    version,
			Server:     true,
			Classifier: classifierConfigured,
			Timestamp:  time.Now().UTC(),
		}
		if db != nil {
			health.Database = db.Check(ctx) == nil
		}

		statusCode := http.StatusOK
		if !health.Server || !health.Database || !health.Classifier {
			health.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(health)
	}
}
