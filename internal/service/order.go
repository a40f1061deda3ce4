package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/receipt"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/pkg/events"
	"github.com/sunu-rekolt/marketplace/pkg/logging"
	"github.com/sunu-rekolt/marketplace/pkg/middleware/metrics"
)

const (
	EventOrderStatusChanged = "order_status_changed"

	msgOrderNotFound     = "Commande introuvable"
	msgNotInvolved       = "Vous n'êtes pas concerné par cette commande"
	msgUnknownStatus     = "Statut de commande inconnu"
	msgUnknownAction     = "Action inconnue"
	msgInvalidTransition = "Impossible de passer la commande à ce statut"
	msgActorNotAllowed   = "Vous ne pouvez pas effectuer cette action sur cette commande"
	msgStatusMoved       = "Le statut de la commande a changé entre-temps. Veuillez actualiser."
)

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ActionView struct {
	Action string       `json:"action"`
	To     order.Status `json:"to"`
}

// OrderView is an order as one user may see it. A farmer who is not the
// buyer only gets their own lines, their subtotal and the buyer contact.
type OrderView struct {
	ID              uuid.UUID          `json:"id"`
	BuyerID         uuid.UUID          `json:"buyer_id"`
	Status          order.Status       `json:"status"`
	StatusLabel     string             `json:"status_label"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentLabel    string             `json:"payment_label"`
	PaymentRef      string             `json:"payment_ref,omitempty"`
	DeliveryAddress string             `json:"delivery_address"`
	DeliveryDetails string             `json:"delivery_details,omitempty"`
	ContactPhone    string             `json:"contact_phone"`
	Subtotal        int64              `json:"subtotal"`
	DeliveryFee     int64              `json:"delivery_fee,omitempty"`
	Total           int64              `json:"total,omitempty"`
	Items           []models.OrderItem `json:"items"`
	Actions         []ActionView       `json:"actions"`
	Buyer           *Contact           `json:"buyer,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type OrderService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Notifier *NotificationService
}

func subtotal(items []models.OrderItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Amount()
	}
	return sum
}

func linesOf(items []models.OrderItem, farmerID uuid.UUID) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.FarmerID == farmerID {
			out = append(out, it)
		}
	}
	return out
}

func actionsFor(st order.Status, rel order.Relation) []ActionView {
	ts := order.AvailableActions(st, rel)
	out := make([]ActionView, 0, len(ts))
	for _, t := range ts {
		out = append(out, ActionView{Action: string(t.Action), To: t.To})
	}
	return out
}

// viewFor builds what viewerID may see of o. buyer is only used for the
// farmer view.
func viewFor(o *models.Order, viewerID uuid.UUID, rel order.Relation, buyer *models.Profile) OrderView {
	v := OrderView{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		Status:          o.Status,
		StatusLabel:     o.Status.Label(),
		PaymentMethod:   o.PaymentMethod,
		PaymentLabel:    order.PaymentLabel(o.PaymentMethod),
		DeliveryAddress: o.DeliveryAddress,
		DeliveryDetails: o.DeliveryDetails,
		ContactPhone:    o.ContactPhone,
		Actions:         actionsFor(o.Status, rel),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if rel.Buyer {
		v.Items = o.Items
		v.Subtotal = subtotal(o.Items)
		v.DeliveryFee = o.Total - v.Subtotal
		v.Total = o.Total
		v.PaymentRef = o.PaymentRef
	} else {
		v.Items = linesOf(o.Items, viewerID)
		v.Subtotal = subtotal(v.Items)
		if buyer != nil {
			v.Buyer = &Contact{Name: buyer.FullName, Phone: buyer.Phone}
		}
	}
	if v.Items == nil {
		v.Items = []models.OrderItem{}
	}
	return v
}

func (s *OrderService) ListBuyer(ctx context.Context, buyerID uuid.UUID, offset, limit int) ([]OrderView, error) {
	orders, err := s.Repo.ListBuyerOrders(ctx, buyerID, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		rel := order.Relation{Buyer: true, Farmer: len(linesOf(orders[i].Items, buyerID)) > 0}
		out = append(out, viewFor(&orders[i], buyerID, rel, nil))
	}
	return out, nil
}

// ListFarmer returns the orders holding lines of farmerID, each reduced to
// those lines.
func (s *OrderService) ListFarmer(ctx context.Context, farmerID uuid.UUID, offset, limit int) ([]OrderView, error) {
	orders, err := s.Repo.ListFarmerOrders(ctx, farmerID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.BuyerID)
	}
	buyers, err := s.Repo.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		var b *models.Profile
		if p, ok := buyers[o.BuyerID]; ok {
			b = &p
		}
		rel := order.Relation{Buyer: o.BuyerID == farmerID, Farmer: true}
		out = append(out, viewFor(o, farmerID, rel, b))
	}
	return out, nil
}

// load returns the order and the relation of userID to it, or
// ErrNotInvolved for anyone who is neither its buyer nor one of its farmers.
func (s *OrderService) load(ctx context.Context, id, userID uuid.UUID) (*models.Order, order.Relation, *models.Profile, error) {
	o, rel, err := s.Repo.Relation(ctx, id, userID)
	if err != nil {
		return nil, rel, nil, fromRepo(err, msgOrderNotFound)
	}
	if !rel.Involved() {
		return nil, rel, nil, fail(ErrNotInvolved, msgNotInvolved)
	}
	buyer, err := s.Repo.GetProfile(ctx, o.BuyerID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, rel, nil, err
	}
	return o, rel, buyer, nil
}

func (s *OrderService) Get(ctx context.Context, id, userID uuid.UUID) (*OrderView, error) {
	o, rel, buyer, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	v := viewFor(o, userID, rel, buyer)
	return &v, nil
}

// Transition moves the order to the requested status if the table allows
// it for this user. The write only applies while the order is still in the
// status that was checked.
func (s *OrderService) Transition(ctx context.Context, id, userID uuid.UUID, target string) (*OrderView, error) {
	l := logging.FromContext(ctx).With("svc", "order.transition", "order_id", id)

	to, err := order.ParseStatus(target)
	if err != nil {
		return nil, failWrap(ErrValidation, msgUnknownStatus, err)
	}
	o, rel, buyer, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	t, err := order.Authorize(o.Status, to, rel)
	if err != nil {
		metrics.OrderTransitions.WithLabelValues(string(to), "rejected").Inc()
		if errors.Is(err, order.ErrActorNotAllowed) {
			return nil, failWrap(ErrForbidden, msgActorNotAllowed, err)
		}
		return nil, failWrap(ErrInvalidTransition, msgInvalidTransition, err)
	}

	ok, err := s.Repo.UpdateStatusIf(ctx, id, t.From, t.To)
	if err != nil {
		l.Error("transition_error", "error", err)
		return nil, err
	}
	if !ok {
		metrics.OrderTransitions.WithLabelValues(string(to), "stale").Inc()
		l.Warn("transition_stale", "from", t.From, "to", t.To)
		return nil, fail(ErrConflict, msgStatusMoved)
	}
	metrics.OrderTransitions.WithLabelValues(string(to), "applied").Inc()
	l.Info("transition_applied", "from", t.From, "to", t.To, "action", t.Action)

	o.Status = t.To
	o.UpdatedAt = time.Now().UTC()
	s.afterTransition(ctx, o, userID, t)

	v := viewFor(o, userID, rel, buyer)
	return &v, nil
}

// Apply performs the transition named by action, e.g. "mark_delivered".
func (s *OrderService) Apply(ctx context.Context, id, userID uuid.UUID, action string) (*OrderView, error) {
	t, ok := order.ByAction(order.Action(strings.TrimSpace(action)))
	if !ok {
		return nil, fail(ErrValidation, msgUnknownAction)
	}
	return s.Transition(ctx, id, userID, string(t.To))
}

func (s *OrderService) afterTransition(ctx context.Context, o *models.Order, actorID uuid.UUID, t order.Transition) {
	l := logging.FromContext(ctx).With("svc", "order.transition", "order_id", o.ID)

	if s.Events != nil {
		ev := events.New(EventOrderStatusChanged, map[string]any{
			"order_id": o.ID.String(),
			"from":     string(t.From),
			"to":       string(t.To),
			"action":   string(t.Action),
			"actor_id": actorID.String(),
		})
		if err := s.Events.Publish(ctx, events.TopicOrders, o.ID.String(), ev); err != nil {
			l.Warn("publish_error", "event", EventOrderStatusChanged, "error", err)
		}
	}
	if s.Notifier == nil {
		return
	}

	short := o.ID.String()[:8]
	var alerts []models.Alert
	switch t.To {
	case order.StatusDelivering:
		alerts = append(alerts, models.Alert{
			UserID:  o.BuyerID,
			Type:    models.AlertOrderDelivering,
			Title:   "Commande en livraison",
			Message: fmt.Sprintf("Votre commande %s est en cours de livraison.", short),
		})
	case order.StatusDelivered:
		alerts = append(alerts, models.Alert{
			UserID:  o.BuyerID,
			Type:    models.AlertOrderDelivered,
			Title:   "Commande livrée",
			Message: fmt.Sprintf("Votre commande %s a été livrée. Confirmez la réception.", short),
		})
	case order.StatusReceived:
		for _, f := range distinctFarmers(o.Items) {
			alerts = append(alerts, models.Alert{
				UserID:  f,
				Type:    models.AlertOrderReceived,
				Title:   "Réception confirmée",
				Message: fmt.Sprintf("L'acheteur a confirmé la réception de la commande %s.", short),
			})
		}
	}
	for i := range alerts {
		alerts[i].ActorID = &actorID
		alerts[i].RelatedOrderID = &o.ID
	}
	if err := s.Notifier.Emit(ctx, alerts...); err != nil {
		l.Warn("alert_error", "error", err)
	}
}

// Receipt writes the PDF receipt of what userID may see of the order.
func (s *OrderService) Receipt(ctx context.Context, id, userID uuid.UUID, w io.Writer) error {
	r, err := s.receiptFor(ctx, id, userID)
	if err != nil {
		return err
	}
	return receipt.Render(w, r)
}

func (s *OrderService) receiptFor(ctx context.Context, id, userID uuid.UUID) (receipt.Receipt, error) {
	o, rel, buyer, err := s.load(ctx, id, userID)
	if err != nil {
		return receipt.Receipt{}, err
	}
	r := receipt.Receipt{Order: o, Buyer: receipt.Party{Phone: o.ContactPhone}}
	if buyer != nil {
		r.Buyer.Name = buyer.FullName
	}
	if !rel.Buyer {
		o.Items = linesOf(o.Items, userID)
		r.FarmerCopy = true
	}
	return r, nil
}
