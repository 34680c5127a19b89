package models

import (
	"fmt"
	"time"
)

// Receipt is printed from a closed order and its transaction. It is built
// on demand and never stored.
type Receipt struct {
	Number               string        `json:"number"`
	OrderID              uint          `json:"order_id"`
	OrderReference       string        `json:"order_reference"`
	TableID              *uint         `json:"table_id,omitempty"`
	Items                []ReceiptItem `json:"items"`
	Total                int64         `json:"total"`
	PaymentMethod        string        `json:"payment_method"`
	TransactionReference string        `json:"transaction_reference"`
	PaidAt               time.Time     `json:"paid_at"`
}

type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// NewReceipt formats the receipt number as RCP/<paid date>/<transaction id>.
func NewReceipt(order *Order, txn *Transaction) *Receipt {
	r := &Receipt{
		Number:               fmt.Sprintf("RCP/%s/%06d", txn.CreatedAt.Format("20060102"), txn.ID),
		OrderID:              order.ID,
		OrderReference:       order.Reference,
		TableID:              order.TableID,
		Items:                make([]ReceiptItem, 0, len(order.LineItems)),
		Total:                txn.Amount,
		PaymentMethod:        txn.PaymentMethod,
		TransactionReference: txn.Reference,
		PaidAt:               txn.CreatedAt,
	}
	for _, item := range order.LineItems {
		r.Items = append(r.Items, ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice * item.Quantity,
		})
	}
	return r
}
