package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/internal/util"
	authmw "github.com/sunu-rekolt/marketplace/pkg/middleware/auth"
)

const refreshCookie = "refreshToken"

func createCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func deleteCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func currentUser(c echo.Context, l *slog.Logger, op string) (uuid.UUID, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn(op+"_error", "status", http.StatusUnauthorized, "reason", "no user in context", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized"})
	}
	return id, nil
}

func pathID(c echo.Context, l *slog.Logger, op, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest(l, op, name+" is not a uuid", err)
	}
	return id, nil
}

type page struct {
	page, offset, limit int
}

func pageOf(c echo.Context) page {
	p := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(p, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if p < 1 {
		p = 1
	}
	return page{page: p, offset: offset, limit: limit}
}

func paged(p page, total int64, items any) map[string]any {
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        p.page,
			"size":        p.limit,
			"total":       total,
			"total_pages": util.TotalPages(total, p.limit),
			"has_prev":    p.page > 1,
			"has_next":    int64(p.offset+p.limit) < total,
		},
	}
}
