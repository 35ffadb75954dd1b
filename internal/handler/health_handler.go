package handler

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"dataroom-server/internal/ports"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	checks map[string]ports.HealthChecker
}

// NewHealthHandler : checks - именованные зависимости (database, redis, s3)
func NewHealthHandler(checks map[string]ports.HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type healthResponse struct {
	Status     string            `json:"status" example:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// Health godoc
// @Summary Проверка, что сервис запущен
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Detailed godoc
// @Summary Проверка зависимостей
// @Description 503, если хотя бы одна зависимость не отвечает
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Components: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name].HealthCheck(ctx); err != nil {
			log.Printf("[Health] %s недоступен: %v", name, err)
			resp.Components[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}

	writeJSON(w, status, resp)
}
