package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	models "SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	svccache "SectorPulse/internal/service/cache"
	apimetrics "SectorPulse/internal/service/metrics"
	"SectorPulse/internal/service/ratelimit"
	"SectorPulse/internal/usecase"
	xhttp "SectorPulse/pkg/http"
	xlogger "SectorPulse/pkg/logger"
)

const queryCacheTTL = 30 * time.Second

// RunEnqueuer hands refresh requests to the background queue.
type RunEnqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// MarketEchoHandler serves the derived return tables and run control.
type MarketEchoHandler struct {
	logger  *xlogger.Logger
	query   *usecase.MarketQuery
	runner  *usecase.PipelineRunner
	queue   RunEnqueuer
	prices  domrepo.PriceStore
	cache   svccache.BytesCache
	limiter *ratelimit.Limiter
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	query *usecase.MarketQuery,
	runner *usecase.PipelineRunner,
	queue RunEnqueuer,
	prices domrepo.PriceStore,
	cache svccache.BytesCache,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:  logger,
		query:   query,
		runner:  runner,
		queue:   queue,
		prices:  prices,
		cache:   cache,
		limiter: ratelimit.New(),
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	apimetrics.Register()
	g := e.Group("/api")
	g.GET("/returns", h.Returns)
	g.GET("/sectors", h.Sectors)
	g.POST("/runs", h.TriggerRun)
	g.GET("/health", h.Health)
}

func (h *MarketEchoHandler) Returns(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.APILatency.WithLabelValues("returns").Observe(time.Since(start).Seconds()) }()

	if !h.limiter.Allow(c.RealIP(), 20, 10) {
		return xhttp.DataResponse(c, 429, "rate limit exceeded")
	}

	req := &models.ReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Time{})

	key := fmt.Sprintf("api:returns:%s:%s:%s:%d", req.Ticker, req.From, req.To, req.Limit)
	if b := h.cached(key); b != nil {
		return c.JSONBlob(200, b)
	}

	res, err := h.query.Returns(c.Request().Context(), req.Ticker, from, to, req.Limit)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("returns").Inc()
		h.logger.Error("returns query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.store(key, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Sectors(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.APILatency.WithLabelValues("sectors").Observe(time.Since(start).Seconds()) }()

	if !h.limiter.Allow(c.RealIP(), 20, 10) {
		return xhttp.DataResponse(c, 429, "rate limit exceeded")
	}

	req := &models.SectorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Time{})

	key := fmt.Sprintf("api:sectors:%s:%s:%s:%d", req.Sector, req.From, req.To, req.Limit)
	if b := h.cached(key); b != nil {
		return c.JSONBlob(200, b)
	}

	res, err := h.query.SectorReturns(c.Request().Context(), req.Sector, from, to, req.Limit)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("sectors").Inc()
		h.logger.Error("sectors query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.store(key, res)
	return xhttp.SuccessResponse(c, res)
}

// TriggerRun requests a pipeline run. With a queue configured the run is
// enqueued and picked up by the refresh worker; otherwise it runs in the
// background directly.
func (h *MarketEchoHandler) TriggerRun(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(c.Request().Context(), usecase.RefreshJobType, usecase.RefreshPayload{Ingest: req.Ingest}); err != nil {
			apimetrics.APIErrors.WithLabelValues("runs").Inc()
			h.logger.Error("enqueue run error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.CreatedResponse(c, map[string]interface{}{"queued": true, "ingest": req.Ingest})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := h.runner.Run(ctx, req.Ingest); err != nil {
			h.logger.Error("background run error", xlogger.Error(err))
		}
	}()
	return xhttp.CreatedResponse(c, map[string]interface{}{"queued": false, "ingest": req.Ingest})
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok", "warehouse": "ok"}
	code := 200
	if err := h.prices.Health(c.Request().Context()); err != nil {
		status["status"] = "degraded"
		status["warehouse"] = err.Error()
		code = 503
	}
	return xhttp.DataResponse(c, code, status)
}

func (h *MarketEchoHandler) cached(key string) []byte {
	if h.cache == nil {
		return nil
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil || !ok {
		return nil
	}
	return b
}

// store caches the full response envelope so cached and fresh replies
// share one shape.
func (h *MarketEchoHandler) store(key string, v interface{}) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(xhttp.APIResponse{Status: 200, Message: "OK", Data: v})
	if err != nil {
		return
	}
	_ = h.cache.SetBytes(key, b, queryCacheTTL)
}
