package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/service"
	"github.com/mpetrov/storefront/internal/util"
)

type AnalyticsHTTP struct {
	Svc *service.AnalyticsService
}

func (h *AnalyticsHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("stats_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHTTP) RevenueByMonth(c echo.Context) error {
	ctx := c.Request().Context()
	months := util.ParseIntDefault(c.QueryParam("months"), service.DefaultRevenueMonths)

	out, err := h.Svc.RevenueByMonth(ctx, months)
	if err != nil {
		logging.FromContext(ctx).Error("revenue_by_month_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute revenue by month")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultTopProductsLimit)

	out, err := h.Svc.TopProducts(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error("top_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute top products")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHTTP) OrdersByDay(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.Svc.OrdersByDay(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("orders_by_day_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute orders by day")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHTTP) OrdersByStatus(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("orders_by_status_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute orders by status")
	}
	return c.JSON(http.StatusOK, map[string]int64{
		"pending":   stats.Pending,
		"confirmed": stats.Confirmed,
		"shipped":   stats.Shipped,
		"delivered": stats.Delivered,
		"cancelled": stats.Cancelled,
	})
}

func (h *AnalyticsHTTP) Monthly(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.monthly")

	now := time.Now()
	month := util.ParseIntDefault(c.QueryParam("month"), int(now.Month()))
	year := util.ParseIntDefault(c.QueryParam("year"), now.Year())
	if month < 1 || month > 12 {
		l.Warn("monthly_failed", "status", 400, "reason", "month out of range")
		return echo.NewHTTPError(http.StatusBadRequest, "month must be between 1 and 12")
	}

	out, err := h.Svc.Monthly(ctx, time.Month(month), year)
	if err != nil {
		l.Error("monthly_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute monthly analytics")
	}
	return c.JSON(http.StatusOK, out)
}
