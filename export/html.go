// Package export renders inventory and transaction view models to a
// self-contained HTML document for the print/share facility. Pure string
// building, no I/O.
package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/reports"
)

const docStyle = `
  @page { size: A4; margin: 12mm; }
  body { font-family: Arial, Helvetica, sans-serif; padding: 20px; margin: 0; }
  h1 { text-align: center; margin-bottom: 10px; }
  small { display: block; text-align: center; margin-bottom: 20px; color: #555; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
  th { background-color: #f2f2f2; text-align: center; }
  tfoot td { font-weight: bold; background-color: #fafafa; }
`

// RenderItemsTable builds the inventory export document: header, summary row
// with item count and total quantity, one detail row per item.
func RenderItemsTable(items []models.Item, title string) string {
	var rows strings.Builder
	totalQuantity := 0
	for i, item := range items {
		totalQuantity += item.Quantity
		purchase := ""
		if item.PurchasePrice.Valid {
			purchase = item.PurchasePrice.Decimal.StringFixed(2)
		}
		fmt.Fprintf(&rows, `
      <tr>
        <td>%d</td>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
        <td>%d</td>
        <td>%s</td>
        <td>%s</td>
      </tr>`,
			i+1,
			html.EscapeString(item.SKU),
			html.EscapeString(item.Name),
			html.EscapeString(item.Category),
			item.Quantity,
			purchase,
			item.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	return document(title, fmt.Sprintf(`
        <table>
          <thead>
            <tr>
              <th>#</th>
              <th>SKU</th>
              <th>NAME</th>
              <th>CATEGORY</th>
              <th>QUANTITY</th>
              <th>PURCHASE PRICE</th>
              <th>CREATED</th>
            </tr>
          </thead>
          <tbody>%s
          </tbody>
          <tfoot>
            <tr>
              <td colspan="4">Items: %d</td>
              <td>%d</td>
              <td colspan="2"></td>
            </tr>
          </tfoot>
        </table>`,
		rows.String(), len(items), totalQuantity))
}

// RenderTransactionsTable builds the transactions export: one row per line
// item across all entries, with a summary row carrying the transaction
// count, total units and sale revenue.
func RenderTransactionsTable(entries []reports.Entry, title string) string {
	var rows strings.Builder
	totalUnits := 0
	revenue := decimal.Zero

	for _, entry := range entries {
		tx := entry.Transaction
		if tx.Kind == models.KindSale {
			revenue = revenue.Add(reports.AggregateTotal(entry.Lines, tx.Kind))
		}
		for _, line := range entry.Lines {
			totalUnits += line.Quantity
			fmt.Fprintf(&rows, `
      <tr>
        <td>%s</td>
        <td>%s</td>
        <td>%s</td>
        <td>%d</td>
        <td>%s</td>
        <td>%s</td>
      </tr>`,
				tx.OccurredAt.Format("2006-01-02 15:04"),
				html.EscapeString(string(tx.Kind)),
				html.EscapeString(line.Name),
				line.Quantity,
				line.UnitPrice.StringFixed(2),
				line.Total.StringFixed(2),
			)
		}
	}

	return document(title, fmt.Sprintf(`
        <table>
          <thead>
            <tr>
              <th>DATE</th>
              <th>KIND</th>
              <th>PRODUCT</th>
              <th>QUANTITY</th>
              <th>UNIT PRICE</th>
              <th>TOTAL</th>
            </tr>
          </thead>
          <tbody>%s
          </tbody>
          <tfoot>
            <tr>
              <td colspan="3">Transactions: %d</td>
              <td>%d</td>
              <td></td>
              <td>%s</td>
            </tr>
          </tfoot>
        </table>`,
		rows.String(), len(entries), totalUnits, revenue.StringFixed(2)))
}

func document(title, body string) string {
	return fmt.Sprintf(`<html>
      <head>
        <meta charset="utf-8" />
        <style>%s</style>
      </head>
      <body>
        <h1>%s</h1>
        <small>Generated: %s</small>%s
      </body>
    </html>`,
		docStyle, html.EscapeString(title), time.Now().Format("2006-01-02 15:04"), body)
}
