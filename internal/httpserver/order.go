package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/service"
	"github.com/mpetrov/storefront/internal/transport"
	"github.com/mpetrov/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		l.Warn("order_create_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("order_get_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	order, err := h.Svc.GetOrder(ctx, uint(id))
	if err != nil {
		l.Warn("order_get_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	filter := repo.OrderFilter{
		CustomerEmail: c.QueryParam("customerEmail"),
		OrderNumber:   c.QueryParam("orderNumber"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			l.Warn("order_list_failed", "status", 400, "reason", "invalid status filter", "error", err)
			return httpError(err)
		}
		filter.Status = &status
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, filter, offset, limit)
	if err != nil {
		l.Error("order_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *OrderHTTP) PatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.patch")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("order_patch_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_patch_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateOrder(ctx, uint(id), req)
	if err != nil {
		l.Warn("order_patch_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("order_delete_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	if err := h.Svc.DeleteOrder(ctx, uint(id)); err != nil {
		l.Warn("order_delete_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
