package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/domain/order"
	"github.com/sunu-rekolt/marketplace/internal/idempotency"
	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/pkg/events"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/metrics"
)

const (
	EventOrderCreated = "order_created"

	msgEmptyCart       = "Votre panier est vide"
	msgNoAddress       = "Veuillez entrer votre adresse de livraison"
	msgNoPhone         = "Veuillez entrer votre numéro de téléphone"
	msgNoSession       = "Vous devez être connecté pour effectuer un paiement"
	msgNoPayment       = "Veuillez choisir un moyen de paiement"
	msgPaymentDeclined = "Le paiement a échoué. Veuillez réessayer."
	msgCheckoutBusy    = "Votre commande est déjà en cours de traitement"
)

type Payment struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Amount  int64
	Method  string
	Phone   string
}

type PaymentGateway interface {
	// Charge returns the provider's reference for an approved payment.
	Charge(ctx context.Context, p Payment) (string, error)
}

// SimulatedGateway approves every payment. No mobile-money provider is
// integrated yet.
type SimulatedGateway struct{}

func (SimulatedGateway) Charge(_ context.Context, p Payment) (string, error) {
	return "SIM-" + strings.ToUpper(p.Method) + "-" + p.OrderID.String()[:8], nil
}

type CheckoutInput struct {
	DeliveryAddress string
	DeliveryDetails string
	ContactPhone    string
	PaymentMethod   string
	IdempotencyKey  string
}

type CheckoutService struct {
	Repo     *repo.GormRepo
	Carts    *cart.Sessions
	Gateway  PaymentGateway
	Idem     idempotency.Store
	Events   events.Publisher
	Notifier *NotificationService
}

// Checkout places an order from the buyer's session cart.
func (s *CheckoutService) Checkout(ctx context.Context, buyerID uuid.UUID, in CheckoutInput) (*models.Order, error) {
	var c *cart.Cart
	if buyerID != uuid.Nil {
		c, _ = s.Carts.Get(buyerID)
	}
	return s.PlaceOrder(ctx, c, buyerID, in)
}

func validateCheckout(c *cart.Cart, buyerID uuid.UUID, in CheckoutInput) error {
	switch {
	case c == nil || c.Len() == 0:
		return fail(ErrValidation, msgEmptyCart)
	case strings.TrimSpace(in.DeliveryAddress) == "":
		return fail(ErrValidation, msgNoAddress)
	case strings.TrimSpace(in.ContactPhone) == "":
		return fail(ErrValidation, msgNoPhone)
	case buyerID == uuid.Nil:
		return fail(ErrUnauthorized, msgNoSession)
	case strings.TrimSpace(in.PaymentMethod) == "":
		return fail(ErrValidation, msgNoPayment)
	}
	return nil
}

// PlaceOrder turns c into a paid order. The cart is emptied up front and
// restored if payment or the write fails. A repeated IdempotencyKey returns
// the order of the first request.
func (s *CheckoutService) PlaceOrder(ctx context.Context, c *cart.Cart, buyerID uuid.UUID, in CheckoutInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout", "buyer_id", buyerID)

	scope := "checkout:" + buyerID.String()
	key := strings.TrimSpace(in.IdempotencyKey)
	idem := key != "" && s.Idem != nil && buyerID != uuid.Nil

	// The first request emptied the cart, so a retry is answered before validation.
	if idem {
		if o, ok, err := s.replay(ctx, scope, key); err != nil || ok {
			return o, err
		}
	}
	if err := validateCheckout(c, buyerID, in); err != nil {
		return nil, err
	}

	if idem {
		locked, err := s.Idem.TryLock(ctx, scope, key)
		if err != nil {
			l.Error("checkout_error", "reason", "idempotency store", "error", err)
			return nil, err
		}
		if !locked {
			if o, ok, err := s.replay(ctx, scope, key); err != nil || ok {
				return o, err
			}
			return nil, fail(ErrConflict, msgCheckoutBusy)
		}
	}

	var created *models.Order
	err := c.Checkout(func(lines []cart.Line) error {
		o := assemble(buyerID, lines, in)

		ref, err := s.gateway().Charge(ctx, Payment{
			OrderID: o.ID, BuyerID: buyerID, Amount: o.Total, Method: o.PaymentMethod, Phone: o.ContactPhone,
		})
		if err != nil {
			return failWrap(ErrPaymentDeclined, msgPaymentDeclined, err)
		}
		o.PaymentRef = ref

		if err := s.Repo.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		created = o
		return nil
	})
	if err != nil {
		if idem {
			if rerr := s.Idem.Release(ctx, scope, key); rerr != nil {
				l.Warn("idempotency_release_error", "error", rerr)
			}
		}
		if errors.Is(err, cart.ErrEmpty) {
			return nil, failWrap(ErrValidation, msgEmptyCart, err)
		}
		l.Error("checkout_error", "reason", "order not created", "error", err)
		return nil, err
	}

	if idem {
		if err := s.Idem.Remember(ctx, scope, key, created.ID.String()); err != nil {
			l.Warn("idempotency_remember_error", "order_id", created.ID, "error", err)
		}
	}
	metrics.OrdersCreated.WithLabelValues(paymentLabel(created.PaymentMethod)).Inc()
	l.Info("order_created", "order_id", created.ID, "total", created.Total)

	s.afterCommit(ctx, created)
	return created, nil
}

func (s *CheckoutService) gateway() PaymentGateway {
	if s.Gateway == nil {
		return SimulatedGateway{}
	}
	return s.Gateway
}

func (s *CheckoutService) replay(ctx context.Context, scope, key string) (*models.Order, bool, error) {
	id, ok, err := s.Idem.Recall(ctx, scope, key)
	if err != nil || !ok {
		return nil, false, err
	}
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency value %q: %w", id, err)
	}
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func assemble(buyerID uuid.UUID, lines []cart.Line, in CheckoutInput) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, ln := range lines {
		items = append(items, models.OrderItem{
			ProductID:   ln.ProductID,
			FarmerID:    ln.FarmerID,
			ProductName: ln.Name,
			Quantity:    ln.Quantity,
			PriceAtTime: ln.Price,
		})
	}
	return &models.Order{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		Total:           order.Total(cart.Subtotal(lines)),
		Status:          order.InitialStatus,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		DeliveryDetails: strings.TrimSpace(in.DeliveryDetails),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		Items:           items,
	}
}

func paymentLabel(method string) string {
	switch method {
	case order.PaymentOrangeMoney, order.PaymentWave, order.PaymentFreeMoney:
		return method
	}
	return "other"
}

func distinctFarmers(items []models.OrderItem) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, it := range items {
		if !seen[it.FarmerID] {
			seen[it.FarmerID] = true
			out = append(out, it.FarmerID)
		}
	}
	return out
}

// afterCommit publishes the event and alerts the parties. None of it can
// fail the checkout.
func (s *CheckoutService) afterCommit(ctx context.Context, o *models.Order) {
	l := logging.FromContext(ctx).With("svc", "checkout", "order_id", o.ID)
	farmers := distinctFarmers(o.Items)

	if s.Events != nil {
		ids := make([]string, len(farmers))
		for i, f := range farmers {
			ids[i] = f.String()
		}
		ev := events.New(EventOrderCreated, map[string]any{
			"order_id":       o.ID.String(),
			"buyer_id":       o.BuyerID.String(),
			"total":          o.Total,
			"payment_method": o.PaymentMethod,
			"farmer_ids":     ids,
		})
		if err := s.Events.Publish(ctx, events.TopicOrders, o.ID.String(), ev); err != nil {
			l.Warn("publish_error", "event", EventOrderCreated, "error", err)
		}
	}

	if s.Notifier == nil {
		return
	}
	alerts := make([]models.Alert, 0, len(farmers)+1)
	for _, f := range farmers {
		var qty int
		for _, it := range o.Items {
			if it.FarmerID == f {
				qty += it.Quantity
			}
		}
		alerts = append(alerts, models.Alert{
			UserID:         f,
			ActorID:        &o.BuyerID,
			Type:           models.AlertNewOrder,
			Title:          "Nouvelle commande",
			Message:        fmt.Sprintf("Vous avez reçu une nouvelle commande (%d article(s)).", qty),
			Importance:     models.ImportanceHigh,
			RelatedOrderID: &o.ID,
		})
	}
	alerts = append(alerts, models.Alert{
		UserID:         o.BuyerID,
		Type:           models.AlertOrderPaid,
		Title:          "Paiement confirmé",
		Message:        fmt.Sprintf("Votre commande de %s a été payée avec %s.", order.FormatXOF(o.Total), order.PaymentLabel(o.PaymentMethod)),
		RelatedOrderID: &o.ID,
	})
	if err := s.Notifier.Emit(ctx, alerts...); err != nil {
		l.Warn("alert_error", "error", err)
	}
}
