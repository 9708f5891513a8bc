package api

import (
	"net/http"

	drepo "TradeBot365/internal/domain/repository"
	"TradeBot365/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports readiness of the store and the upstream stream.
type HealthHandler struct {
	store     drepo.SignalStore
	collector *usecase.SignalCollector
}

func NewHealthHandler(store drepo.SignalStore, collector *usecase.SignalCollector) *HealthHandler {
	return &HealthHandler{store: store, collector: collector}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(c echo.Context) error {
	out := map[string]string{"store": "ok", "stream": "ok"}
	code := http.StatusOK
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			out["store"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if h.collector != nil && !h.collector.IsConnected() {
		out["stream"] = "disconnected"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, out)
}

// Handlers composes route registrars into one.
type Handlers []interface{ RegisterRoutes(e *echo.Echo) }

func (hs Handlers) RegisterRoutes(e *echo.Echo) {
	for _, h := range hs {
		h.RegisterRoutes(e)
	}
}
