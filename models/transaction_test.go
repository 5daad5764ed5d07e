package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizedLines_PrefersLineRows(t *testing.T) {
	tx := Transaction{
		Kind:       KindSale,
		Lines:      []TransactionLine{{Name: "Widget", Quantity: 1}},
		LegacyName: "stale inline copy",
	}
	lines := tx.NormalizedLines()
	if len(lines) != 1 || lines[0].Name != "Widget" {
		t.Fatalf("expected line rows to win, got %+v", lines)
	}
}

func TestNormalizedLines_LegacyWithdrawal(t *testing.T) {
	tx := Transaction{
		Kind:            KindAuthorizedWithdrawal,
		LegacyName:      "Widget",
		LegacyQuantity:  3,
		LegacyUnitPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(9), Valid: true},
	}
	lines := tx.NormalizedLines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if !lines[0].Total.IsZero() {
		t.Fatalf("withdrawal total = %s, want 0", lines[0].Total)
	}
	if lines[0].Provenance != LineManual {
		t.Fatalf("expected manual provenance without item id, got %s", lines[0].Provenance)
	}
}

func TestNormalizedLines_EmptyTransaction(t *testing.T) {
	tx := Transaction{Kind: KindSale}
	if lines := tx.NormalizedLines(); lines != nil {
		t.Fatalf("expected nil for empty record, got %+v", lines)
	}
}
