package products

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/types"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.New(1, 10)

// candidate is the full post-write product state.
type candidate struct {
	Name         string
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	CategoryID   *int64
	Category     *NewCategory
	Description  *string
	Attributes   types.Attributes
	ImageURLs    []string

	// AttributesIssue is set when the raw attributes could not be parsed.
	AttributesIssue string

	// PendingUploads counts files that will be appended to ImageURLs once stored.
	PendingUploads int
	MaxImages      int
}

// validate checks every product rule and reports all of the failures.
func (c *candidate) validate() error {
	var issues []string

	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		issues = append(issues, "Name is required")
	}

	issues = append(issues, checkPrice("costPrice", c.CostPrice)...)
	issues = append(issues, checkPrice("sellingPrice", c.SellingPrice)...)
	if c.CostPrice != nil && c.SellingPrice != nil && c.SellingPrice.LessThan(*c.CostPrice) {
		issues = append(issues, "Selling price should be ≥ cost price")
	}

	if c.CategoryID != nil && *c.CategoryID <= 0 {
		issues = append(issues, "categoryId must be a positive integer")
	}
	if c.Category != nil {
		c.Category.Name = strings.TrimSpace(c.Category.Name)
		if c.Category.Name == "" {
			issues = append(issues, "Category name is required")
		}
		if c.Category.ParentID != nil && *c.Category.ParentID <= 0 {
			issues = append(issues, "parentId must be a positive integer")
		}
	}
	if c.CategoryID != nil && c.Category != nil {
		issues = append(issues, "Provide either categoryId or category, not both")
	}

	total := len(c.ImageURLs) + c.PendingUploads
	if total == 0 {
		issues = append(issues, "imageUrls must be a non-empty array")
	}
	if c.MaxImages > 0 && total > c.MaxImages {
		issues = append(issues, fmt.Sprintf("A product can hold at most %d images", c.MaxImages))
	}
	for _, u := range c.ImageURLs {
		if strings.TrimSpace(u) == "" {
			issues = append(issues, "imageUrls must contain non-empty strings")
			break
		}
	}

	if c.AttributesIssue != "" {
		issues = append(issues, c.AttributesIssue)
	}

	c.Description = normalizeDescription(c.Description)

	if len(issues) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, issues[0]).WithDetails(map[string]any{"issues": issues})
	}
	return nil
}

func checkPrice(field string, v *decimal.Decimal) []string {
	if v == nil {
		return []string{field + " must be a number"}
	}
	if v.IsNegative() {
		return []string{field + " must be 0 or more"}
	}
	if v.GreaterThanOrEqual(maxPrice) {
		return []string{field + " is too large"}
	}
	return nil
}

func normalizeDescription(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// parseAttributes accepts a JSON object or null. A non-empty issue reports why
// the value was rejected.
func parseAttributes(raw json.RawMessage) (types.Attributes, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ""
	}
	if trimmed[0] != '{' {
		return nil, "attributes must be an object (JSON) or null"
	}
	var attrs types.Attributes
	if err := json.Unmarshal(trimmed, &attrs); err != nil {
		return nil, "Invalid attributes JSON"
	}
	return attrs, ""
}

func roundPrice(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return v.Round(2)
}
