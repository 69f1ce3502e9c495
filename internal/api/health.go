package api

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Provider      string            `json:"provider"`
	Model         string            `json:"model"`
	Checks        map[string]string `json:"checks"`
}

// ProviderInfo is the part of transcribe.Provider the health check reports on.
type ProviderInfo interface {
	Name() string
	Model() string
}

type HealthHandler struct {
	provider      ProviderInfo
	keyConfigured bool
	version       string
	startTime     time.Time
}

func NewHealthHandler(provider ProviderInfo, keyConfigured bool, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		keyConfigured: keyConfigured,
		version:       version,
		startTime:     startTime,
	}
}

// ServeHTTP reports liveness. A missing API key degrades the status but
// still answers 200: the process is up and serving assets.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	if h.keyConfigured {
		checks["api_key"] = "configured"
	} else {
		checks["api_key"] = "missing"
		status = "degraded"
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Provider:      h.provider.Name(),
		Model:         h.provider.Model(),
		Checks:        checks,
	})
}
