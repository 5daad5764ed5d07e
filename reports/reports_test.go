package reports

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
)

func saleLine(name string, quantity int, unitPrice float64) models.TransactionLine {
	price := decimal.NewFromFloat(unitPrice)
	return models.TransactionLine{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: price,
		Total:     price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func TestBuild_Aggregates(t *testing.T) {
	txs := []models.Transaction{
		{
			Kind:  models.KindSale,
			Lines: []models.TransactionLine{saleLine("Widget", 3, 5), saleLine("Gadget", 2, 2.5)},
		},
		{
			Kind:  models.KindAuthorizedWithdrawal,
			Lines: []models.TransactionLine{{Name: "Widget", Quantity: 4}},
		},
		{
			Kind:  models.KindSale,
			Lines: []models.TransactionLine{saleLine("Bolt", 10, 0.5)},
		},
	}

	entries, summary := Build(txs)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].MultiLine || entries[1].MultiLine || entries[2].MultiLine {
		t.Fatalf("multi-line classification wrong: %+v", entries)
	}
	if want := decimal.NewFromInt(25); !summary.SaleRevenue.Equal(want) {
		t.Fatalf("sale revenue = %s, want %s", summary.SaleRevenue, want)
	}
	if summary.SaleUnits != 15 {
		t.Fatalf("sale units = %d, want 15", summary.SaleUnits)
	}
	if summary.WithdrawalUnits != 4 {
		t.Fatalf("withdrawal units = %d, want 4", summary.WithdrawalUnits)
	}
}

func TestBuild_NormalizesLegacyRecord(t *testing.T) {
	itemID := uint(7)
	legacy := models.Transaction{
		Kind:            models.KindSale,
		LegacyName:      "Widget",
		LegacyItemID:    &itemID,
		LegacyQuantity:  2,
		LegacyUnitPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(5), Valid: true},
	}

	entries, summary := Build([]models.Transaction{legacy})

	if len(entries) != 1 || len(entries[0].Lines) != 1 {
		t.Fatalf("expected one normalized line, got %+v", entries)
	}
	line := entries[0].Lines[0]
	if line.Name != "Widget" || line.Quantity != 2 {
		t.Fatalf("unexpected normalized line: %+v", line)
	}
	if line.Provenance != models.LineFromInventory {
		t.Fatalf("expected inventory provenance, got %s", line.Provenance)
	}
	if want := decimal.NewFromInt(10); !line.Total.Equal(want) {
		t.Fatalf("legacy line total = %s, want %s", line.Total, want)
	}
	if !summary.SaleRevenue.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("legacy revenue = %s, want 10", summary.SaleRevenue)
	}
	if entries[0].MultiLine {
		t.Fatal("legacy record must classify as single-line")
	}
}

func TestFilterByKind(t *testing.T) {
	entries, _ := Build([]models.Transaction{
		{Kind: models.KindSale, Lines: []models.TransactionLine{saleLine("A", 1, 1)}},
		{Kind: models.KindAuthorizedWithdrawal, Lines: []models.TransactionLine{{Name: "B", Quantity: 1}}},
		{Kind: models.KindSale, Lines: []models.TransactionLine{saleLine("C", 1, 1)}},
	})

	sales := FilterByKind(entries, models.KindSale)
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}
	withdrawals := FilterByKind(entries, models.KindAuthorizedWithdrawal)
	if len(withdrawals) != 1 {
		t.Fatalf("expected 1 withdrawal, got %d", len(withdrawals))
	}
}

func TestRecomputeLine(t *testing.T) {
	line := saleLine("Widget", 3, 5)

	edited := RecomputeLine(line, models.KindSale, 2, decimal.NewFromInt(6))
	if want := decimal.NewFromInt(12); !edited.Total.Equal(want) {
		t.Fatalf("sale edit total = %s, want %s", edited.Total, want)
	}

	edited = RecomputeLine(line, models.KindAuthorizedWithdrawal, 2, decimal.NewFromInt(6))
	if !edited.Total.IsZero() || !edited.UnitPrice.IsZero() {
		t.Fatalf("withdrawal edit kept monetary fields: %+v", edited)
	}
}

func TestAggregateTotal_WithdrawalAlwaysZero(t *testing.T) {
	lines := []models.TransactionLine{saleLine("A", 3, 10), saleLine("B", 1, 2)}
	if total := AggregateTotal(lines, models.KindAuthorizedWithdrawal); !total.IsZero() {
		t.Fatalf("withdrawal aggregate = %s, want 0", total)
	}
	if total := AggregateTotal(lines, models.KindSale); !total.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("sale aggregate = %s, want 32", total)
	}
}

func TestStockDelta(t *testing.T) {
	// editing 5 down to 3 returns 2 to stock; 3 up to 5 takes 2 more
	if StockDelta(5, 3) != 2 {
		t.Fatalf("StockDelta(5,3) = %d, want 2", StockDelta(5, 3))
	}
	if StockDelta(3, 5) != -2 {
		t.Fatalf("StockDelta(3,5) = %d, want -2", StockDelta(3, 5))
	}
	if StockDelta(4, 4) != 0 {
		t.Fatalf("StockDelta(4,4) = %d, want 0", StockDelta(4, 4))
	}
}
