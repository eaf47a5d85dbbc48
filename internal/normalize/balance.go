package normalize

import (
	"strings"

	"github.com/arcticshore/pickups/internal/upstream"
)

// Payment-status values observed upstream are inconsistent; the unpaid
// prefixes must be checked before any paid match so that NOT_PAID is never
// misread as PAID.
var unpaidPrefixes = []string{"NOT_PAID", "UNPAID"}

// paymentBalance classifies the reservation as paid or unpaid and, when
// unpaid, resolves the outstanding amount. A non-positive computed balance
// means "no balance" (nil), not zero-owed-but-unpaid.
func paymentBalance(r upstream.Reservation) (bool, *float64) {
	if !isUnpaid(r.PaymentStatus) {
		return false, nil
	}

	if r.AmountDue != nil && *r.AmountDue > 0 {
		due := *r.AmountDue
		return true, &due
	}

	total := firstAmount(r.TotalPrice, invoiceTotal(r.Invoice))
	paid := firstAmount(r.PaidAmount, invoicePaid(r.Invoice))
	if total == nil {
		return true, nil
	}

	var paidValue float64
	if paid != nil {
		paidValue = *paid
	}
	balance := *total - paidValue
	if balance <= 0 {
		return true, nil
	}
	return true, &balance
}

func isUnpaid(status string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(status))
	for _, prefix := range unpaidPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

func invoiceTotal(inv *upstream.Invoice) *float64 {
	if inv == nil {
		return nil
	}
	if inv.TotalPrice != nil {
		return inv.TotalPrice
	}
	if inv.Total != nil {
		return inv.Total.Amount
	}
	return nil
}

func invoicePaid(inv *upstream.Invoice) *float64 {
	if inv == nil {
		return nil
	}
	if inv.PaidAmount != nil {
		return inv.PaidAmount
	}
	if inv.Paid != nil {
		return inv.Paid.Amount
	}
	return nil
}

func firstAmount(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
