package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/reports"
)

func tbody(t *testing.T, doc string) string {
	t.Helper()
	start := strings.Index(doc, "<tbody>")
	end := strings.Index(doc, "</tbody>")
	if start < 0 || end < 0 {
		t.Fatal("document has no tbody")
	}
	return doc[start:end]
}

func TestRenderItemsTable_RowCountMatchesInput(t *testing.T) {
	items := []models.Item{
		{Name: "Widget", SKU: "W1", Quantity: 10, Category: "Tools"},
		{Name: "Gadget", SKU: "G1", Quantity: 3},
		{Name: "Bolt", Quantity: 250},
	}

	doc := RenderItemsTable(items, "Inventory")

	if got := strings.Count(tbody(t, doc), "<tr>"); got != len(items) {
		t.Fatalf("detail rows = %d, want %d", got, len(items))
	}
	// summary row carries the total quantity
	if !strings.Contains(doc, "<td>263</td>") {
		t.Fatal("summary total quantity missing")
	}
	if !strings.Contains(doc, fmt.Sprintf("Items: %d", len(items))) {
		t.Fatal("summary item count missing")
	}
}

func TestRenderItemsTable_EscapesContent(t *testing.T) {
	items := []models.Item{{Name: "<script>alert(1)</script>", Quantity: 1}}
	doc := RenderItemsTable(items, "Inventory & Stock")

	if strings.Contains(doc, "<script>alert(1)</script>") {
		t.Fatal("item name not escaped")
	}
	if !strings.Contains(doc, "Inventory &amp; Stock") {
		t.Fatal("title not escaped")
	}
}

func TestRenderTransactionsTable_SummarySums(t *testing.T) {
	price := decimal.NewFromInt(5)
	entries := []reports.Entry{
		{
			Transaction: models.Transaction{Kind: models.KindSale},
			Lines: []models.TransactionLine{
				{Name: "Widget", Quantity: 3, UnitPrice: price, Total: price.Mul(decimal.NewFromInt(3))},
				{Name: "Gadget", Quantity: 1, UnitPrice: price, Total: price},
			},
		},
		{
			Transaction: models.Transaction{Kind: models.KindAuthorizedWithdrawal},
			Lines:       []models.TransactionLine{{Name: "Widget", Quantity: 2}},
		},
	}

	doc := RenderTransactionsTable(entries, "Transactions")

	// one detail row per line across all entries
	if got := strings.Count(tbody(t, doc), "<tr>"); got != 3 {
		t.Fatalf("detail rows = %d, want 3", got)
	}
	if !strings.Contains(doc, "Transactions: 2") {
		t.Fatal("summary transaction count missing")
	}
	// revenue counts the sale only; units count everything
	if !strings.Contains(doc, "<td>20.00</td>") {
		t.Fatal("summary revenue missing")
	}
	if !strings.Contains(doc, "<td>6</td>") {
		t.Fatal("summary unit count missing")
	}
}

func TestRenderTransactionsTable_Empty(t *testing.T) {
	doc := RenderTransactionsTable(nil, "Transactions")
	if got := strings.Count(tbody(t, doc), "<tr>"); got != 0 {
		t.Fatalf("detail rows = %d, want 0", got)
	}
	if !strings.Contains(doc, "Transactions: 0") {
		t.Fatal("summary count missing")
	}
}
