// Package receipt renders PDF order receipts carrying a QR code.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
	"github.com/sunu-rekolt/marketplace/internal/models"
)

type Party struct {
	Name  string
	Phone string
}

// Receipt is what gets printed for one reader of an order. A farmer copy
// holds only that farmer's lines and shows their subtotal, never the
// delivery fee or the order total.
type Receipt struct {
	Order      *models.Order
	Buyer      Party
	FarmerCopy bool
}

func (r Receipt) Subtotal() int64 {
	var n int64
	for _, it := range r.Order.Items {
		n += it.Amount()
	}
	return n
}

// QRPayload is the text encoded in the receipt's QR code.
func (r Receipt) QRPayload() string {
	if r.FarmerCopy {
		return fmt.Sprintf("order:%s|subtotal:%d", r.Order.ID, r.Subtotal())
	}
	return fmt.Sprintf("order:%s|total:%d", r.Order.ID, r.Order.Total)
}

// Totals returns the label/amount rows printed under the lines.
func (r Receipt) Totals() [][2]string {
	sub := [2]string{"Sous-total", order.FormatXOF(r.Subtotal())}
	if r.FarmerCopy {
		return [][2]string{sub}
	}
	return [][2]string{
		sub,
		{"Livraison", order.FormatXOF(order.DeliveryFee)},
		{"Total", order.FormatXOF(r.Order.Total)},
	}
}

func Render(w io.Writer, r Receipt) error {
	o := r.Order
	qrPNG, err := qrcode.Encode(r.QRPayload(), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Sunu Rekolt "+o.ID.String(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Sunu Rekolt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr("Reçu de commande"))
	pdf.Ln(12)

	info := [][2]string{
		{"Commande", o.ID.String()},
		{"Date", o.CreatedAt.Format("02/01/2006 15:04")},
		{"Statut", o.Status.Label()},
		{"Paiement", order.PaymentLabel(o.PaymentMethod)},
		{"Client", r.Buyer.Name},
		{tr("Téléphone"), o.ContactPhone},
		{"Adresse", o.DeliveryAddress},
	}
	if o.DeliveryDetails != "" {
		info = append(info, [2]string{tr("Détails"), o.DeliveryDetails})
	}
	for _, kv := range info {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(35, 6, kv[0])
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, tr(kv[1]))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 7, "Produit", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, tr("Qté"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Prix", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Montant", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(90, 7, tr(it.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, order.FormatXOF(it.PriceAtTime), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, order.FormatXOF(it.Amount()), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	for _, kv := range r.Totals() {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(145, 6, kv[0], "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(35, 6, kv[1], "", 1, "R", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}
