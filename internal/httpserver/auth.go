package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	authmw "github.com/sunu-rekolt/marketplace/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}

	p, err := h.Svc.Register(ctx, service.RegisterInput{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
		Location:        req.Location,
		FarmSize:        req.FarmSize,
	})
	if err != nil {
		return fail(l, "register", err)
	}

	l.Info("register_success", "user_id", p.ID, "role", p.Role)
	return c.JSON(http.StatusCreated, p)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Phone, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}
	return h.session(c, res, "login_success")
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh", "invalid body", err)
	}
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			req.RefreshToken = ck.Value
		}
	}
	if req.RefreshToken == "" {
		l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "missing refresh token")
		return echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized"})
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh", err)
	}
	return h.session(c, res, "refresh_success")
}

func (h *AuthHTTP) session(c echo.Context, res *service.LoginResult, event string) error {
	c.SetCookie(createCookie(authmw.AccessCookie, res.AccessToken, res.AccessExp))
	c.SetCookie(createCookie(refreshCookie, res.RefreshToken, res.RefreshExp))

	logging.FromContext(c.Request().Context()).Info(event, "user_id", res.Profile.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":       res.AccessToken,
		"refresh_token":      res.RefreshToken,
		"access_expires_at":  res.AccessExp,
		"refresh_expires_at": res.RefreshExp,
		"profile":            res.Profile,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	userID, err := currentUser(c, l, "logout")
	if err != nil {
		return err
	}

	var req transport.RefreshRequest
	_ = c.Bind(&req)
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			req.RefreshToken = ck.Value
		}
	}

	c.SetCookie(deleteCookie(refreshCookie))
	c.SetCookie(deleteCookie(authmw.AccessCookie))
	if err := h.Svc.Logout(ctx, userID, req.RefreshToken); err != nil {
		return fail(l, "logout", err)
	}

	l.Info("logout_success", "user_id", userID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Déconnecté"})
}
