package models

import (
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Item is one inventory entry. SKU uniqueness is per owner and enforced by a
// pre-write check in the controller, not by a database constraint.
type Item struct {
	gorm.Model
	OwnerID       uint                `json:"owner_id" gorm:"not null;index"`
	Name          string              `json:"name" gorm:"not null"`
	Category      string              `json:"category"`
	Quantity      int                 `json:"quantity" gorm:"default:0"`
	PurchasePrice decimal.NullDecimal `json:"purchase_price" gorm:"type:decimal(20,4)"`
	SalePrice     decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(20,4)"`
	SKU           string              `json:"sku" gorm:"index"`
	Description   string              `json:"description"`
}
