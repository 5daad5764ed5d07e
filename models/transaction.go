package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindSale                 TransactionKind = "Sale"
	KindAuthorizedWithdrawal TransactionKind = "AuthorizedWithdrawal"
)

type LineProvenance string

const (
	LineFromInventory LineProvenance = "Inventory"
	LineManual        LineProvenance = "Manual"
)

// Transaction is a recorded sale or authorized withdrawal. Total is only
// meaningful for the Sale kind; withdrawals carry zero monetary fields.
type Transaction struct {
	gorm.Model
	OwnerID    uint              `json:"owner_id" gorm:"not null;index"`
	Kind       TransactionKind   `json:"kind" gorm:"not null;index"`
	OccurredAt time.Time         `json:"occurred_at" gorm:"index"`
	Lines      []TransactionLine `json:"lines" gorm:"foreignKey:TransactionID"`
	Total      decimal.Decimal   `json:"total" gorm:"type:decimal(20,4);default:0"`
	LineCount  int               `json:"line_count"`
	MultiLine  bool              `json:"multi_line"`

	// Inline columns used by early records that predate the line table.
	// New records never set them; readers go through NormalizedLines.
	LegacyName      string              `json:"-" gorm:"column:legacy_name"`
	LegacyItemID    *uint               `json:"-" gorm:"column:legacy_item_id"`
	LegacyQuantity  int                 `json:"-" gorm:"column:legacy_quantity"`
	LegacyUnitPrice decimal.NullDecimal `json:"-" gorm:"column:legacy_unit_price;type:decimal(20,4)"`
}

// TransactionLine is one product entry within a transaction. ItemID is nil
// for manually typed, non-inventory lines.
type TransactionLine struct {
	gorm.Model
	TransactionID uint            `json:"transaction_id" gorm:"not null;index"`
	ItemID        *uint           `json:"item_id"`
	Name          string          `json:"name" gorm:"not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(20,4);default:0"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(20,4);default:0"`
	Provenance    LineProvenance  `json:"provenance"`
}

// NormalizedLines returns the transaction's lines, promoting a legacy inline
// record (no line rows) to a single-element slice. This is the one place the
// old shape is handled; everything downstream sees the line-item form.
func (t *Transaction) NormalizedLines() []TransactionLine {
	if len(t.Lines) > 0 {
		return t.Lines
	}
	if t.LegacyName == "" && t.LegacyQuantity == 0 {
		return nil
	}

	unitPrice := decimal.Zero
	if t.LegacyUnitPrice.Valid {
		unitPrice = t.LegacyUnitPrice.Decimal
	}
	total := decimal.Zero
	if t.Kind == KindSale {
		total = unitPrice.Mul(decimal.NewFromInt(int64(t.LegacyQuantity)))
	}

	provenance := LineManual
	if t.LegacyItemID != nil {
		provenance = LineFromInventory
	}

	return []TransactionLine{{
		TransactionID: t.ID,
		ItemID:        t.LegacyItemID,
		Name:          t.LegacyName,
		Quantity:      t.LegacyQuantity,
		UnitPrice:     unitPrice,
		Total:         total,
		Provenance:    provenance,
	}}
}
