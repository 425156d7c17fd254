package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"FinSight/internal/domain/models"
	"FinSight/internal/service/cache"
	"FinSight/internal/usecase"
	xhttp "FinSight/pkg/http"
	xlogger "FinSight/pkg/logger"
)

// AdvisorEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type AdvisorEchoHandler struct {
	logger  *xlogger.Logger
	advisor *usecase.Advisor
	cache   *cache.SourceCache
	classes map[string]models.SourceClass
}

func NewAdvisorEchoHandler(logger *xlogger.Logger, advisor *usecase.Advisor, c *cache.SourceCache, classes map[string]models.SourceClass) *AdvisorEchoHandler {
	return &AdvisorEchoHandler{logger: logger, advisor: advisor, cache: c, classes: classes}
}

func (h *AdvisorEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/analyze", h.Analyze)
	e.GET("/health", h.Health)
	e.GET("/cache-stats", h.CacheStats)
}

func (h *AdvisorEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.advisor.Analyze(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidQuery) {
			return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AdvisorEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Service: "finsight",
	})
}

func (h *AdvisorEchoHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.CacheStatsResponse{
		Sources: h.cache.Stats(h.classes),
	})
}
