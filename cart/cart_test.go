package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
)

func price(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}

func TestAddLine_DuplicateItem(t *testing.T) {
	c := New()
	if err := c.AddLine(1, "Widget", price(5), 10); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := c.AddLine(1, "Widget", price(5), 10); !errors.Is(err, ErrAlreadyAdded) {
		t.Fatalf("expected ErrAlreadyAdded, got %v", err)
	}
	if len(c.Lines()) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Lines()))
	}
}

func TestAddManualLine_BlankName(t *testing.T) {
	c := New()
	err := c.AddManualLine("   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != FieldName {
		t.Fatalf("expected name field, got %s", verr.Field)
	}
}

func TestCommit_EmptyCart(t *testing.T) {
	c := New()
	if _, err := c.Commit(models.KindSale); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCommit_InvalidQuantity(t *testing.T) {
	for _, quantity := range []string{"", "0", "-2", "abc"} {
		c := New()
		c.AddLine(1, "Widget", price(5), 10)
		c.UpdateLine(0, FieldQuantity, quantity)

		_, err := c.Commit(models.KindSale)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("quantity %q: expected ValidationError, got %v", quantity, err)
		}
		if verr.Field != FieldQuantity {
			t.Fatalf("quantity %q: expected quantity field, got %s", quantity, verr.Field)
		}
	}
}

func TestCommit_BlankName(t *testing.T) {
	c := New()
	c.AddLine(1, "Widget", price(5), 10)
	c.UpdateLine(0, FieldName, "  ")
	c.UpdateLine(0, FieldQuantity, "1")

	_, err := c.Commit(models.KindSale)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != FieldName {
		t.Fatalf("expected name ValidationError, got %v", err)
	}
}

func TestCommit_StockExceeded(t *testing.T) {
	c := New()
	c.AddLine(1, "Widget", price(5), 7)
	c.UpdateLine(0, FieldQuantity, "11")

	_, err := c.Commit(models.KindSale)
	var serr *StockExceededError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StockExceededError, got %v", err)
	}
	if serr.Requested != 11 || serr.Available != 7 {
		t.Fatalf("unexpected stock error: %+v", serr)
	}
	// validation failure keeps the lines for correction
	if len(c.Lines()) != 1 {
		t.Fatalf("expected lines retained, got %d", len(c.Lines()))
	}
	if c.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", c.State())
	}
}

func TestCommit_ManualLineSkipsStockCheck(t *testing.T) {
	c := New()
	c.AddManualLine("Loose screws")
	c.UpdateLine(0, FieldQuantity, "500")
	c.UpdateLine(0, FieldPrice, "0.10")

	commit, err := c.Commit(models.KindSale)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if commit.Lines[0].Provenance != models.LineManual {
		t.Fatalf("expected manual provenance, got %s", commit.Lines[0].Provenance)
	}
	if commit.Lines[0].ItemID != nil {
		t.Fatal("manual line must not reference an item")
	}
}

func TestCommit_SaleRequiresPrice(t *testing.T) {
	for _, unitPrice := range []string{"", "-1", "abc"} {
		c := New()
		c.AddManualLine("Widget")
		c.UpdateLine(0, FieldQuantity, "1")
		c.UpdateLine(0, FieldPrice, unitPrice)

		_, err := c.Commit(models.KindSale)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != FieldPrice {
			t.Fatalf("price %q: expected price ValidationError, got %v", unitPrice, err)
		}
	}
}

func TestCommit_SaleTotals(t *testing.T) {
	c := New()
	c.AddLine(1, "Widget", price(5), 10)
	c.UpdateLine(0, FieldQuantity, "3")
	c.AddLine(2, "Gadget", price(2.5), 4)
	c.UpdateLine(1, FieldQuantity, "2")

	commit, err := c.Commit(models.KindSale)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if got := commit.Lines[0].Total.String(); got != "15" {
		t.Fatalf("line 0 total = %s, want 15", got)
	}
	if got := commit.Lines[1].Total.String(); got != "5" {
		t.Fatalf("line 1 total = %s, want 5", got)
	}
	// aggregate equals the sum of line totals
	sum := commit.Lines[0].Total.Add(commit.Lines[1].Total)
	if !commit.Total.Equal(sum) {
		t.Fatalf("aggregate %s != line sum %s", commit.Total, sum)
	}
	if !commit.MultiLine || commit.LineCount != 2 {
		t.Fatalf("expected multi-line commit of 2, got %+v", commit)
	}

	// successful commit resets the cart
	if c.State() != StateEmpty || len(c.Lines()) != 0 {
		t.Fatalf("cart not reset: state=%s lines=%d", c.State(), len(c.Lines()))
	}
}

func TestCommit_WithdrawalZeroTotals(t *testing.T) {
	c := New()
	c.AddLine(1, "Widget", price(5), 10)
	c.UpdateLine(0, FieldQuantity, "4")
	c.UpdateLine(0, FieldPrice, "99.99")

	commit, err := c.Commit(models.KindAuthorizedWithdrawal)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !commit.Total.IsZero() {
		t.Fatalf("withdrawal aggregate = %s, want 0", commit.Total)
	}
	for i, line := range commit.Lines {
		if !line.UnitPrice.IsZero() || !line.Total.IsZero() {
			t.Fatalf("line %d has monetary fields: %+v", i, line)
		}
	}
}

func TestRemoveLine_Reindexes(t *testing.T) {
	c := New()
	c.AddManualLine("A")
	c.AddManualLine("B")
	c.AddManualLine("C")

	if err := c.RemoveLine(1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	lines := c.Lines()
	if len(lines) != 2 || lines[0].Name != "A" || lines[1].Name != "C" {
		t.Fatalf("unexpected lines after remove: %+v", lines)
	}

	if err := c.RemoveLine(5); !errors.Is(err, ErrNoSuchLine) {
		t.Fatalf("expected ErrNoSuchLine, got %v", err)
	}

	c.RemoveLine(0)
	c.RemoveLine(0)
	if c.State() != StateEmpty {
		t.Fatalf("expected empty state, got %s", c.State())
	}
}

func TestUpdateLine_UnknownField(t *testing.T) {
	c := New()
	c.AddManualLine("A")
	if err := c.UpdateLine(0, Field("color"), "red"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if err := c.UpdateLine(3, FieldName, "x"); !errors.Is(err, ErrNoSuchLine) {
		t.Fatalf("expected ErrNoSuchLine, got %v", err)
	}
}
