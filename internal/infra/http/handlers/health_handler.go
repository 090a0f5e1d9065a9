package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck reports an error when a dependency is unusable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	Checks    map[string]HealthCheck
	Banner    string
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func NewHealthHandler(banner string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		Checks:    checks,
		Banner:    banner,
		Version:   "1.0.0",
		StartTime: time.Now(),
	}
}

// Root answers GET / with a plain banner.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.Banner))
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.Checks))
	status := "OK"
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "healthy"
	}

	resp := HealthResponse{
		Status:       status,
		Message:      "Server is running",
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status != "OK" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
