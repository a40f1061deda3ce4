package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sunu-rekolt/marketplace/internal/service"
	"github.com/sunu-rekolt/marketplace/internal/transport"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
)

const headerIdempotencyKey = "Idempotency-Key"

type CartHTTP struct {
	Svc      *service.CartService
	Checkout *service.CheckoutService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	buyerID, err := currentUser(c, l, "get_cart")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Svc.View(buyerID))
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	buyerID, err := currentUser(c, l, "add_to_cart")
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return badRequest(l, "add_to_cart", "product_id is not a uuid", err)
	}

	view, err := h.Svc.Add(ctx, buyerID, productID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "product_id", productID, "lines", view.Count)
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	buyerID, err := currentUser(c, l, "cart_quantity")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, l, "cart_quantity", "line")
	if err != nil {
		return err
	}
	var req transport.CartQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "cart_quantity", "invalid body", err)
	}

	view, err := h.Svc.SetQuantity(buyerID, lineID, req.Quantity)
	if err != nil {
		return fail(l, "cart_quantity", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Increment(c echo.Context) error {
	return h.step(c, "cart_increment", h.Svc.Increment)
}

func (h *CartHTTP) Decrement(c echo.Context) error {
	return h.step(c, "cart_decrement", h.Svc.Decrement)
}

func (h *CartHTTP) step(c echo.Context, op string, fn func(buyerID, lineID uuid.UUID) (*service.CartView, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart."+op)

	buyerID, err := currentUser(c, l, op)
	if err != nil {
		return err
	}
	lineID, err := pathID(c, l, op, "line")
	if err != nil {
		return err
	}
	view, err := fn(buyerID, lineID)
	if err != nil {
		return fail(l, op, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	buyerID, err := currentUser(c, l, "cart_remove")
	if err != nil {
		return err
	}
	lineID, err := pathID(c, l, "cart_remove", "line")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Svc.Remove(buyerID, lineID))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	buyerID, err := currentUser(c, l, "cart_clear")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Svc.Clear(buyerID))
}

// PlaceOrder turns the buyer's cart into a paid order. A repeated
// Idempotency-Key returns the order of the first attempt.
func (h *CartHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	buyerID, err := currentUser(c, l, "checkout")
	if err != nil {
		return err
	}
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout", "invalid body", err)
	}

	o, err := h.Checkout.Checkout(ctx, buyerID, service.CheckoutInput{
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDetails: req.DeliveryDetails,
		ContactPhone:    req.ContactPhone,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return fail(l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", o.ID, "total", o.Total)
	return c.JSON(http.StatusCreated, o)
}
