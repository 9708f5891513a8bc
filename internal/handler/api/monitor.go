package api

import (
	"encoding/json"
	"fmt"
	"time"

	models "TradeBot365/internal/domain/models"
	icache "TradeBot365/internal/service/cache"
	svcmetrics "TradeBot365/internal/service/metrics"
	"TradeBot365/internal/service/ratelimit"
	"TradeBot365/internal/usecase"
	xhttp "TradeBot365/pkg/http"
	xlogger "TradeBot365/pkg/logger"
	"TradeBot365/pkg/queue"

	"github.com/labstack/echo/v4"
)

// MonitorHandler exposes the error-monitoring screens over Echo.
type MonitorHandler struct {
	logger  *xlogger.Logger
	monitor *usecase.ErrorMonitor
	recon   *usecase.Reconciliation
	dir     *usecase.AccountDirectory
	queue   queue.QueueService
	limiter *ratelimit.Limiter
	cache   icache.BytesCache

	hierarchyTTL time.Duration
}

func NewMonitorHandler(
	logger *xlogger.Logger,
	monitor *usecase.ErrorMonitor,
	recon *usecase.Reconciliation,
	dir *usecase.AccountDirectory,
	q queue.QueueService,
) *MonitorHandler {
	return &MonitorHandler{
		logger:       logger,
		monitor:      monitor,
		recon:        recon,
		dir:          dir,
		queue:        q,
		limiter:      ratelimit.New(),
		cache:        icache.NewTTLCache(),
		hierarchyTTL: 30 * time.Second,
	}
}

// SetHierarchyTTL overrides the hierarchy response cache TTL.
func (h *MonitorHandler) SetHierarchyTTL(ttl time.Duration) { h.hierarchyTTL = ttl }

// SetHierarchyCache swaps the hierarchy response cache backend.
func (h *MonitorHandler) SetHierarchyCache(c icache.BytesCache) { h.cache = c }

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	svcmetrics.Register()

	g := e.Group("/api")
	g.GET("/errors", h.ListErrors)
	g.GET("/errors/unread-count", h.UnreadCount)
	g.POST("/errors/refresh", h.RefreshErrors)
	g.POST("/errors/:id/read", h.MarkRead)
	g.POST("/errors/read-all", h.MarkAllRead)
	g.POST("/errors/:id/resolve", h.Resolve)
	g.GET("/signals/:id/reconciliation", h.Reconciliation)
	g.GET("/accounts/hierarchy", h.Hierarchy)
}

func (h *MonitorHandler) allow(c echo.Context) bool {
	// 20 req/s burst 40 per client
	return h.limiter.Allow(c.RealIP(), 40, 20)
}

func (h *MonitorHandler) ListErrors(c echo.Context) error {
	start := time.Now()
	if !h.allow(c) {
		svcmetrics.MonitorErrors.WithLabelValues("errors").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}
	req := &models.ErrorListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	items, err := h.monitor.List(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("error list usecase error", xlogger.Error(err))
		svcmetrics.MonitorErrors.WithLabelValues("errors").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	svcmetrics.MonitorLatency.WithLabelValues("errors").Observe(time.Since(start).Seconds())
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *MonitorHandler) UnreadCount(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]int{"unread": h.monitor.UnreadCount()})
}

func (h *MonitorHandler) RefreshErrors(c echo.Context) error {
	req := &models.ErrorListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.monitor.Refresh(c.Request().Context(), req.Limit); err != nil {
		if err == usecase.ErrSuperseded {
			return xhttp.SuccessResponse(c, map[string]string{"status": "superseded"})
		}
		h.logger.Error("error refresh usecase error", xlogger.Error(err))
		svcmetrics.MonitorErrors.WithLabelValues("refresh").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "refreshed"})
}

func (h *MonitorHandler) MarkRead(c echo.Context) error {
	req := &models.MarkReadRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	remaining := h.monitor.MarkRead(req.SignalID)
	return xhttp.SuccessResponse(c, map[string]int{"unread": remaining})
}

func (h *MonitorHandler) MarkAllRead(c echo.Context) error {
	h.monitor.MarkAllRead()
	return xhttp.SuccessResponse(c, map[string]int{"unread": 0})
}

func (h *MonitorHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	payload := usecase.ResolvePayload{SignalID: req.SignalID, Note: req.Note}
	if err := h.queue.PublishMessage(c.Request().Context(), usecase.TypeErrorResolve, payload); err != nil {
		h.logger.Error("resolve enqueue error",
			xlogger.String("signal_id", req.SignalID), xlogger.Error(err))
		svcmetrics.MonitorErrors.WithLabelValues("resolve").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "queued"})
}

func (h *MonitorHandler) Reconciliation(c echo.Context) error {
	start := time.Now()
	req := &models.ReconciliationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.recon.Ledger(c.Request().Context(), req.SignalID)
	if err != nil {
		h.logger.Error("reconciliation usecase error",
			xlogger.String("signal_id", req.SignalID), xlogger.Error(err))
		svcmetrics.MonitorErrors.WithLabelValues("reconciliation").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	svcmetrics.MonitorLatency.WithLabelValues("reconciliation").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

func (h *MonitorHandler) Hierarchy(c echo.Context) error {
	start := time.Now()
	req := &models.HierarchyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("hierarchy:%s:%s", req.UserID, req.Live)
	if b, ok, err := h.cache.GetBytes(key); err == nil && ok {
		var tree []models.CSPAccount
		if json.Unmarshal(b, &tree) == nil {
			return xhttp.SuccessResponse(c, tree)
		}
	}

	tree, err := h.dir.Hierarchy(c.Request().Context(), req.UserID, req.Live)
	if err != nil {
		h.logger.Error("hierarchy usecase error",
			xlogger.String("user_id", req.UserID), xlogger.Error(err))
		svcmetrics.MonitorErrors.WithLabelValues("hierarchy").Inc()
		return xhttp.AppErrorResponse(c, err)
	}
	if b, err := json.Marshal(tree); err == nil {
		_ = h.cache.SetBytes(key, b, h.hierarchyTTL)
	}
	svcmetrics.MonitorLatency.WithLabelValues("hierarchy").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, tree)
}
