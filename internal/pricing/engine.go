package pricing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/apperrors"
)

// ItemKind distinguishes a performed service from a consumed part.
type ItemKind string

const (
	ItemKindService ItemKind = "service"
	ItemKindPart    ItemKind = "part"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == ItemKindService || k == ItemKindPart
}

// LineItem is one billable unit on an order. LineTotal is derived from
// Quantity and UnitPrice and is recomputed on every mutation; callers never
// observe a stale value.
type LineItem struct {
	ID             string          `json:"id"`
	Kind           ItemKind        `json:"kind"`
	Description    string          `json:"description"`
	AdditionalInfo string          `json:"additional_info,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// Patch is a partial line-item update. Nil fields are left unchanged.
type Patch struct {
	Kind           *ItemKind
	Description    *string
	AdditionalInfo *string
	ProductID      *string
	Quantity       *int
	UnitPrice      *decimal.Decimal
}

// Input carries everything ComputeTotals needs: the current item set and the
// order-level discount fields. Item order is preserved for display but does
// not affect totals.
type Input struct {
	Items              []LineItem      `json:"items"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Result is the pricing breakdown for an order.
type Result struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	EffectiveDiscount decimal.Decimal `json:"effective_discount"`
	Total             decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals computes subtotal, effective discount and total from the
// given input. It is pure and idempotent.
//
// The subtotal is the sum of quantity*unitPrice over all items, kept at full
// precision per line and rounded half-to-even to 2 decimal places at the
// final sum only. A positive discount percentage takes precedence over the
// flat discount amount; the amount is still stored and displayed as entered,
// it just does not participate in the total. The total floors at zero: an
// effective discount larger than the subtotal is clamped, not an error.
func ComputeTotals(in Input) (Result, error) {
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(oneHundred) {
		return Result{}, apperrors.NewValidationError("discount_percentage", "must be between 0 and 100")
	}
	if in.DiscountAmount.IsNegative() {
		return Result{}, apperrors.NewValidationError("discount_amount", "cannot be negative")
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		// Items normally enter through Draft.AddItem, but re-check here in
		// case they were constructed elsewhere.
		if item.Quantity <= 0 {
			return Result{}, apperrors.NewValidationError("quantity", "must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return Result{}, apperrors.NewValidationError("unit_price", "cannot be negative")
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.RoundBank(2)

	var effectiveDiscount decimal.Decimal
	if in.DiscountPercentage.IsPositive() {
		effectiveDiscount = subtotal.Mul(in.DiscountPercentage).Div(oneHundred).RoundBank(2)
	} else {
		effectiveDiscount = in.DiscountAmount
	}
	if effectiveDiscount.GreaterThan(subtotal) {
		effectiveDiscount = subtotal
	}

	return Result{
		Subtotal:          subtotal,
		EffectiveDiscount: effectiveDiscount,
		Total:             subtotal.Sub(effectiveDiscount),
	}, nil
}

// Draft is the mutable line-item collection of an order being edited. It is
// owned by a single editing session and is not safe for concurrent use.
type Draft struct {
	items []LineItem
}

// NewDraft creates an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// NewDraftFromItems creates a draft seeded with existing items, recomputing
// every line total so no stale derived value survives loading.
func NewDraftFromItems(items []LineItem) *Draft {
	d := &Draft{items: make([]LineItem, len(items))}
	copy(d.items, items)
	for i := range d.items {
		d.items[i].LineTotal = lineTotal(d.items[i].Quantity, d.items[i].UnitPrice)
	}
	return d
}

// Items returns the draft's items in entry order.
func (d *Draft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of items in the draft.
func (d *Draft) Len() int {
	return len(d.items)
}

// AddItem validates and appends a new line item, assigning it a unique id.
// On validation failure nothing is added.
func (d *Draft) AddItem(kind ItemKind, description string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	if err := validateItemFields(kind, description, quantity, unitPrice); err != nil {
		return LineItem{}, err
	}

	item := LineItem{
		ID:          uuid.NewString(),
		Kind:        kind,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   lineTotal(quantity, unitPrice),
	}
	d.items = append(d.items, item)
	return item, nil
}

// UpdateItem applies a partial update to the item with the given id and
// recomputes its line total in the same operation. The prior state is kept
// untouched on any failure.
func (d *Draft) UpdateItem(id string, patch Patch) (LineItem, error) {
	idx := d.indexOf(id)
	if idx < 0 {
		return LineItem{}, apperrors.ErrNotFound
	}

	updated := d.items[idx]
	if patch.Kind != nil {
		updated.Kind = *patch.Kind
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.AdditionalInfo != nil {
		updated.AdditionalInfo = *patch.AdditionalInfo
	}
	if patch.ProductID != nil {
		updated.ProductID = *patch.ProductID
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		updated.UnitPrice = *patch.UnitPrice
	}

	if err := validateItemFields(updated.Kind, updated.Description, updated.Quantity, updated.UnitPrice); err != nil {
		return LineItem{}, err
	}

	updated.LineTotal = lineTotal(updated.Quantity, updated.UnitPrice)
	d.items[idx] = updated
	return updated, nil
}

// RemoveItem removes the item with the given id. A missing id is an error,
// not a silent no-op: the caller surfaces it differently from success.
func (d *Draft) RemoveItem(id string) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return apperrors.ErrNotFound
	}
	d.items = append(d.items[:idx], d.items[idx+1:]...)
	return nil
}

func (d *Draft) indexOf(id string) int {
	for i := range d.items {
		if d.items[i].ID == id {
			return i
		}
	}
	return -1
}

func lineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func validateItemFields(kind ItemKind, description string, quantity int, unitPrice decimal.Decimal) error {
	if !kind.Valid() {
		return apperrors.NewValidationError("kind", "must be service or part")
	}
	if strings.TrimSpace(description) == "" {
		return apperrors.NewValidationError("description", "is required")
	}
	if quantity < 1 {
		return apperrors.NewValidationError("quantity", "must be at least 1")
	}
	if unitPrice.IsNegative() {
		return apperrors.NewValidationError("unit_price", "cannot be negative")
	}
	return nil
}
