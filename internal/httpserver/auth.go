package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/service"
	"github.com/mpetrov/storefront/internal/tokens"
	"github.com/mpetrov/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("login_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.SessionCookie, result.Token, "/", result.Exp))

	return c.JSON(http.StatusOK, echo.Map{
		"admin":     result.Admin,
		"expiresAt": result.Exp,
	})
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(tokens.SessionCookie)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
	}

	claims, err := h.Svc.Verify(ctx, cookie.Value)
	if err != nil {
		logging.FromContext(ctx).Warn("verify_failed", "status", 401, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"adminId": claims.Subject,
		"role":    claims.Role,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/"))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rawID, _ := c.Get("admin_id").(string)
	adminID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	if err := h.Svc.ChangePassword(ctx, uint(adminID), req.CurrentPassword, req.NewPassword); err != nil {
		l.Warn("change_password_failed", "status", statusOf(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
