package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
	"github.com/sunu-rekolt/marketplace/internal/models"
)

func TestRender_WritesPDF(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	o := &models.Order{
		ID:              id,
		Total:           3500,
		Status:          order.StatusPaid,
		PaymentMethod:   order.PaymentOrangeMoney,
		DeliveryAddress: "Sicap Liberté, Dakar",
		DeliveryDetails: "Près de la pharmacie",
		ContactPhone:    "+221771234567",
		CreatedAt:       time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductName: "Tomates", Quantity: 2, PriceAtTime: 1000},
			{ProductName: "Mangues", Quantity: 1, PriceAtTime: 500},
		},
	}

	var buf bytes.Buffer
	r := Receipt{Order: o, Buyer: Party{Name: "Aïssatou Diop"}}
	require.NoError(t, Render(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "order:"+id.String()+"|total:3500", r.QRPayload())
	assert.Len(t, r.Totals(), 3)
}

func TestRender_FarmerCopyHidesOrderTotal(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := Receipt{
		Order: &models.Order{
			ID:     id,
			Total:  4500,
			Status: order.StatusPaid,
			Items:  []models.OrderItem{{ProductName: "Oignons", Quantity: 3, PriceAtTime: 400}},
		},
		FarmerCopy: true,
	}

	assert.EqualValues(t, 1200, r.Subtotal())
	assert.Equal(t, "order:"+id.String()+"|subtotal:1200", r.QRPayload())
	assert.Equal(t, [][2]string{{"Sous-total", order.FormatXOF(1200)}}, r.Totals())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
