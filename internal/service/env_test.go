package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/domain/cart"
	"github.com/sunu-rekolt/marketplace/internal/idempotency"
	"github.com/sunu-rekolt/marketplace/internal/models"
	"github.com/sunu-rekolt/marketplace/internal/repo"
	"github.com/sunu-rekolt/marketplace/internal/repo/repotest"
	"github.com/sunu-rekolt/marketplace/pkg/events"
	"github.com/sunu-rekolt/marketplace/pkg/pushclient"
)

type fakePusher struct {
	mu   sync.Mutex
	sent []pushclient.Message
	err  error
}

func (f *fakePusher) Send(_ context.Context, msg pushclient.Message) (*pushclient.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return nil, f.err
	}
	return &pushclient.Ticket{ID: "ticket", Status: "ok"}, nil
}

type fakeStream struct {
	mu  sync.Mutex
	got map[uuid.UUID][]any
}

func (f *fakeStream) Publish(userID uuid.UUID, v any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.got == nil {
		f.got = map[uuid.UUID][]any{}
	}
	f.got[userID] = append(f.got[userID], v)
	return 1, nil
}

func (f *fakeStream) count(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got[userID])
}

type env struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	events   *events.Recorder
	push     *fakePusher
	stream   *fakeStream
	carts    *cart.Sessions
	notifier *NotificationService
	catalog  *CatalogService
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := repotest.NewDB(t)
	r := repo.New(db)
	e := &env{
		db:     db,
		repo:   r,
		events: &events.Recorder{},
		push:   &fakePusher{},
		stream: &fakeStream{},
		carts:  cart.NewSessions(),
	}
	e.notifier = &NotificationService{Repo: r, Push: e.push, Stream: e.stream}
	e.catalog = &CatalogService{Repo: r, Events: e.events, Notifier: e.notifier}
	e.cart = &CartService{Repo: r, Sessions: e.carts}
	e.checkout = &CheckoutService{
		Repo:     r,
		Carts:    e.carts,
		Gateway:  SimulatedGateway{},
		Idem:     idempotency.NewMemoryStore(time.Hour),
		Events:   e.events,
		Notifier: e.notifier,
	}
	e.orders = &OrderService{Repo: r, Events: e.events, Notifier: e.notifier}
	return e
}

func (e *env) profile(t *testing.T, role, phone string) *models.Profile {
	t.Helper()
	return repotest.NewProfile(t, e.db, role, phone)
}

func (e *env) product(t *testing.T, farmerID uuid.UUID, name string, price int64) *models.Product {
	t.Helper()
	return repotest.NewProduct(t, e.db, farmerID, name, price, true)
}

// fill puts products into the buyer's session cart.
func (e *env) fill(t *testing.T, buyerID uuid.UUID, lines map[*models.Product]int) {
	t.Helper()
	for p, qty := range lines {
		_, err := e.cart.Add(context.Background(), buyerID, p.ID, qty)
		require.NoError(t, err)
	}
}

func (e *env) alertTypes(t *testing.T, userID uuid.UUID) []string {
	t.Helper()
	alerts, err := e.repo.ListAlerts(context.Background(), userID, 100, 0)
	require.NoError(t, err)
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Type)
	}
	return out
}

func validCheckout() CheckoutInput {
	return CheckoutInput{
		DeliveryAddress: "Rue 10, Médina, Dakar",
		ContactPhone:    "77 123 45 67",
		PaymentMethod:   "orange_money",
	}
}
