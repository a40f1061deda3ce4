package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/util"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

type DashboardHTTP struct {
	Svc *service.DashboardService
}

func (h *DashboardHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.summary")

	farmerID, err := currentUser(c, l, "summary")
	if err != nil {
		return err
	}
	sum, err := h.Svc.Summary(ctx, farmerID)
	if err != nil {
		return fail(l, "summary", err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *DashboardHTTP) MonthlySales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.monthly_sales")

	farmerID, err := currentUser(c, l, "monthly_sales")
	if err != nil {
		return err
	}
	months := util.ParseIntDefault(c.QueryParam("months"), service.DefaultMonths)
	series, err := h.Svc.MonthlySales(ctx, farmerID, months)
	if err != nil {
		return fail(l, "monthly_sales", err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *DashboardHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.top_products")

	farmerID, err := currentUser(c, l, "top_products")
	if err != nil {
		return err
	}
	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultTopLimit)
	top, err := h.Svc.TopProducts(ctx, farmerID, limit)
	if err != nil {
		return fail(l, "top_products", err)
	}
	return c.JSON(http.StatusOK, top)
}
