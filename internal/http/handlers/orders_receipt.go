package handlers

import (
	"fmt"
	"net/http"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// OwnerOrderReceipt renders a printable PDF receipt for one order.
func (h *Handler) OwnerOrderReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	order, err := h.fetchOrder(ctx, restaurantID, orderID)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	var restaurantName, currency string
	if err := h.DB.QueryRow(ctx, `select name, currency from restaurants where id = $1`, restaurantID).
		Scan(&restaurantName, &currency); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	pdf := buildReceiptPDF(restaurantName, currency, order)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, order.OrderNumber))
	if err := pdf.Output(w); err != nil {
		h.Logger.Error("receipt render failed", zap.Int64("orderId", orderID), zap.Error(err))
	}
}

func buildReceiptPDF(restaurantName, currency string, order *OrderDetail) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, restaurantName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Receipt "+order.OrderNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, order.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Order type: "+order.OrderType, "", 1, "L", false, 0, "")
	if order.TableNumber != nil {
		pdf.CellFormat(0, 5, "Table: "+*order.TableNumber, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, "Payment: "+order.PaymentMethod, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(70, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		name := item.Name
		if item.PriceOptionName != nil {
			name += " (" + *item.PriceOptionName + ")"
		}
		pdf.CellFormat(70, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%s %.2f", currency, item.TotalPrice), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	receiptTotal := func(label string, value float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(85, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%s %.2f", currency, value), "", 1, "R", false, 0, "")
	}
	receiptTotal("Subtotal", order.Subtotal, false)
	if order.TipAmount > 0 {
		receiptTotal("Tip", order.TipAmount, false)
	}
	receiptTotal("Total", order.Total, true)

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for your order!", "", 1, "C", false, 0, "")

	return pdf
}
