package products

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Field tracks whether a JSON key was present and whether it was null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Present marks the field as supplied with value v.
func Present[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null marks the field as explicitly cleared.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// NewCategory asks for a category to be created alongside the product.
type NewCategory struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// CreateInput is the full product payload.
type CreateInput struct {
	Name         string           `json:"name"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	CategoryID   *int64           `json:"categoryId"`
	Category     *NewCategory     `json:"category"`
	Description  *string          `json:"description"`
	Attributes   json.RawMessage  `json:"attributes"`
	ImageURLs    []string         `json:"imageUrls"`
}

// PatchInput carries only the keys the caller supplied. ImageURLs replaces the list;
// KeepImageURLs keeps a subset and is followed by any uploaded images.
type PatchInput struct {
	Name          Field[string]          `json:"name"`
	CostPrice     Field[decimal.Decimal] `json:"costPrice"`
	SellingPrice  Field[decimal.Decimal] `json:"sellingPrice"`
	CategoryID    Field[int64]           `json:"categoryId"`
	Description   Field[string]          `json:"description"`
	Attributes    Field[json.RawMessage] `json:"attributes"`
	ImageURLs     Field[[]string]        `json:"imageUrls"`
	KeepImageURLs Field[[]string]        `json:"keepImageUrls"`
}

// HasFieldChanges reports whether any non-image key was supplied.
func (p PatchInput) HasFieldChanges() bool {
	return p.Name.Set || p.CostPrice.Set || p.SellingPrice.Set ||
		p.CategoryID.Set || p.Description.Set || p.Attributes.Set
}

// HasImageChanges reports whether the image list is being replaced or trimmed.
func (p PatchInput) HasImageChanges() bool {
	return p.ImageURLs.Set || p.KeepImageURLs.Set
}

// ImageUpload is one uploaded file.
type ImageUpload struct {
	Filename string
	Data     []byte
}
