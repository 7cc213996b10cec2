package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/service"
	"github.com/mpetrov/storefront/internal/transport"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	activeOnly := c.QueryParam("all") == ""
	reviews, err := h.Svc.List(ctx, activeOnly)
	if err != nil {
		logging.FromContext(ctx).Error("review_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list reviews")
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("review_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	review, err := h.Svc.Create(ctx, req)
	if err != nil {
		l.Warn("review_create_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHTTP) PatchReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.patch")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("review_patch_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("review_patch_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	review, err := h.Svc.Update(ctx, uint(id), req)
	if err != nil {
		l.Warn("review_patch_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, review)
}

func (h *ReviewHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("review_delete_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	if err := h.Svc.Delete(ctx, uint(id)); err != nil {
		l.Warn("review_delete_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
