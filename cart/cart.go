package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventgo/inventapp/models"
)

// Cart holds an in-progress multi-line sale or withdrawal. Nothing is
// persisted until Commit; line quantity and price stay free text until then.
type Cart struct {
	state State
	lines []Line
}

type State string

const (
	StateEmpty      State = "empty"
	StateBuilding   State = "building"
	StateValidating State = "validating"
	StateCommitting State = "committing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

type Field string

const (
	FieldName     Field = "name"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
)

var (
	ErrAlreadyAdded = errors.New("item already in cart")
	ErrEmptyCart    = errors.New("cart has no lines")
	ErrNoSuchLine   = errors.New("no such line")
)

// ValidationError blocks the whole commit; no partial writes happen.
type ValidationError struct {
	Line   int
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: invalid %s: %s", e.Line, e.Field, e.Reason)
}

// StockExceededError reports a requested quantity above the stock captured
// when the line was added. The check is against that captured value, not a
// re-read at commit time.
type StockExceededError struct {
	Line      int
	Name      string
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("line %d (%s): requested %d exceeds available stock %d",
		e.Line, e.Name, e.Requested, e.Available)
}

// Line is one pending entry. ItemID is nil for manually typed products.
type Line struct {
	ID        string `json:"id"`
	ItemID    *uint  `json:"item_id"`
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Available int    `json:"available"`
}

// CommittedLine is a validated line with computed totals.
type CommittedLine struct {
	ItemID     *uint
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	Total      decimal.Decimal
	Provenance models.LineProvenance
}

// Commit is the validated cart ready to persist as one transaction record.
type Commit struct {
	Kind      models.TransactionKind
	Lines     []CommittedLine
	Total     decimal.Decimal
	LineCount int
	MultiLine bool
}

func New() *Cart {
	return &Cart{state: StateEmpty}
}

func (c *Cart) State() State {
	return c.state
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// AddLine appends an inventory-backed line, capturing the item's available
// quantity and defaulting the unit price to its sale price.
func (c *Cart) AddLine(itemID uint, name string, salePrice decimal.NullDecimal, available int) error {
	for _, l := range c.lines {
		if l.ItemID != nil && *l.ItemID == itemID {
			return ErrAlreadyAdded
		}
	}

	price := ""
	if salePrice.Valid {
		price = salePrice.Decimal.String()
	}

	id := itemID
	c.lines = append(c.lines, Line{
		ID:        uuid.NewString(),
		ItemID:    &id,
		Name:      name,
		UnitPrice: price,
		Available: available,
	})
	c.state = StateBuilding
	return nil
}

// AddManualLine appends a free-text line with no inventory reference.
func (c *Cart) AddManualLine(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Line: len(c.lines), Field: FieldName, Reason: "name is required"}
	}
	c.lines = append(c.lines, Line{
		ID:   uuid.NewString(),
		Name: name,
	})
	c.state = StateBuilding
	return nil
}

// UpdateLine mutates one field as free text; nothing is validated until
// Commit.
func (c *Cart) UpdateLine(index int, field Field, value string) error {
	if index < 0 || index >= len(c.lines) {
		return ErrNoSuchLine
	}
	switch field {
	case FieldName:
		c.lines[index].Name = value
	case FieldQuantity:
		c.lines[index].Quantity = value
	case FieldPrice:
		c.lines[index].UnitPrice = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	c.state = StateBuilding
	return nil
}

// RemoveLine removes and re-indexes. Confirmation is the caller's concern.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrNoSuchLine
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	if len(c.lines) == 0 {
		c.state = StateEmpty
	}
	return nil
}

// Commit validates every line and computes per-line and aggregate totals.
// Any validation failure blocks the whole commit and leaves the lines in
// place for correction. On success the cart resets to empty.
func (c *Cart) Commit(kind models.TransactionKind) (*Commit, error) {
	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}

	c.state = StateValidating

	committed := make([]CommittedLine, 0, len(c.lines))
	total := decimal.Zero

	for i, line := range c.lines {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			c.state = StateFailed
			return nil, &ValidationError{Line: i, Field: FieldName, Reason: "name is required"}
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(line.Quantity))
		if err != nil || quantity <= 0 {
			c.state = StateFailed
			return nil, &ValidationError{Line: i, Field: FieldQuantity, Reason: "quantity must be a positive integer"}
		}

		if line.ItemID != nil && quantity > line.Available {
			c.state = StateFailed
			return nil, &StockExceededError{Line: i, Name: name, Requested: quantity, Available: line.Available}
		}

		unitPrice := decimal.Zero
		if kind == models.KindSale {
			unitPrice, err = decimal.NewFromString(strings.TrimSpace(line.UnitPrice))
			if err != nil || unitPrice.IsNegative() {
				c.state = StateFailed
				return nil, &ValidationError{Line: i, Field: FieldPrice, Reason: "price must be a non-negative number"}
			}
		}

		lineTotal := decimal.Zero
		if kind == models.KindSale {
			lineTotal = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
		total = total.Add(lineTotal)

		provenance := models.LineManual
		if line.ItemID != nil {
			provenance = models.LineFromInventory
		}

		committed = append(committed, CommittedLine{
			ItemID:     line.ItemID,
			Name:       name,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			Total:      lineTotal,
			Provenance: provenance,
		})
	}

	if kind != models.KindSale {
		total = decimal.Zero
	}

	c.state = StateCommitting

	result := &Commit{
		Kind:      kind,
		Lines:     committed,
		Total:     total,
		LineCount: len(committed),
		MultiLine: len(committed) > 1,
	}

	c.lines = nil
	c.state = StateEmpty

	return result, nil
}
