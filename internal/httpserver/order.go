package httpserver

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) BuyerOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.buyer_orders")

	buyerID, err := currentUser(c, l, "buyer_orders")
	if err != nil {
		return err
	}
	p := pageOf(c)
	items, err := h.Svc.ListBuyer(ctx, buyerID, p.offset, p.limit)
	if err != nil {
		return fail(l, "buyer_orders", err)
	}
	return c.JSON(http.StatusOK, listed(p, items))
}

func (h *OrderHTTP) FarmerOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.farmer_orders")

	farmerID, err := currentUser(c, l, "farmer_orders")
	if err != nil {
		return err
	}
	p := pageOf(c)
	items, err := h.Svc.ListFarmer(ctx, farmerID, p.offset, p.limit)
	if err != nil {
		return fail(l, "farmer_orders", err)
	}
	return c.JSON(http.StatusOK, listed(p, items))
}

func listed(p page, items []service.OrderView) map[string]any {
	if items == nil {
		items = []service.OrderView{}
	}
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":     p.page,
			"size":     p.limit,
			"has_prev": p.page > 1,
			"has_next": len(items) == p.limit,
		},
	}
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c, l, "get_order")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_order", "id")
	if err != nil {
		return err
	}
	view, err := h.Svc.Get(ctx, id, userID)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *OrderHTTP) Transition(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.transition")

	userID, err := currentUser(c, l, "transition")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "transition", "id")
	if err != nil {
		return err
	}
	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "transition", "invalid body", err)
	}

	var view *service.OrderView
	if req.Action != "" {
		view, err = h.Svc.Apply(ctx, id, userID, req.Action)
	} else {
		view, err = h.Svc.Transition(ctx, id, userID, req.Status)
	}
	if err != nil {
		return fail(l, "transition", err)
	}

	l.Info("transition_success", "order_id", id, "status", view.Status)
	return c.JSON(http.StatusOK, view)
}

func (h *OrderHTTP) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.receipt")

	userID, err := currentUser(c, l, "receipt")
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "receipt", "id")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.Svc.Receipt(ctx, id, userID, &buf); err != nil {
		return fail(l, "receipt", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="recu-`+id.String()[:8]+`.pdf"`)
	l.Info("receipt_success", "order_id", id, "bytes", buf.Len())
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
