package reports

import (
	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
)

// Entry is one transaction in the normalized line-item shape, classified for
// presentation.
type Entry struct {
	Transaction models.Transaction       `json:"transaction"`
	Lines       []models.TransactionLine `json:"lines"`
	MultiLine   bool                     `json:"multi_line"`
}

// Summary carries the running aggregates over the loaded set.
type Summary struct {
	SaleRevenue     decimal.Decimal `json:"sale_revenue"`
	SaleUnits       int             `json:"sale_units"`
	WithdrawalUnits int             `json:"withdrawal_units"`
}

// Build normalizes every transaction through the legacy adapter and computes
// the three running aggregates in one pass.
func Build(txs []models.Transaction) ([]Entry, Summary) {
	entries := make([]Entry, 0, len(txs))
	summary := Summary{SaleRevenue: decimal.Zero}

	for _, tx := range txs {
		lines := tx.NormalizedLines()

		switch tx.Kind {
		case models.KindSale:
			summary.SaleRevenue = summary.SaleRevenue.Add(AggregateTotal(lines, tx.Kind))
			for _, l := range lines {
				summary.SaleUnits += l.Quantity
			}
		case models.KindAuthorizedWithdrawal:
			for _, l := range lines {
				summary.WithdrawalUnits += l.Quantity
			}
		}

		entries = append(entries, Entry{
			Transaction: tx,
			Lines:       lines,
			MultiLine:   len(lines) > 1,
		})
	}

	return entries, summary
}

// FilterByKind partitions an already-loaded set; it never re-fetches.
func FilterByKind(entries []Entry, kind models.TransactionKind) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Transaction.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// RecomputeLine applies a quantity (and, for sales, price) edit and refreshes
// the line total. Withdrawal lines keep zero monetary fields.
func RecomputeLine(line models.TransactionLine, kind models.TransactionKind, quantity int, unitPrice decimal.Decimal) models.TransactionLine {
	line.Quantity = quantity
	if kind == models.KindSale {
		line.UnitPrice = unitPrice
		line.Total = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	} else {
		line.UnitPrice = decimal.Zero
		line.Total = decimal.Zero
	}
	return line
}

// AggregateTotal sums line totals for sales; withdrawals are always zero.
func AggregateTotal(lines []models.TransactionLine, kind models.TransactionKind) decimal.Decimal {
	if kind != models.KindSale {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total)
	}
	return total
}

// StockDelta is the amount to add back to the linked item after a quantity
// edit: positive returns stock, negative takes more.
func StockDelta(oldQuantity, newQuantity int) int {
	return oldQuantity - newQuantity
}
