package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/backoffice/internal/categories"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/types"
	"gorm.io/gorm"
)

const productNotFound = "Product not found"

// Service manages a company's product catalog.
type Service interface {
	List(ctx context.Context, companyID int64) ([]ProductDTO, error)
	Get(ctx context.Context, companyID, id int64) (*ProductDTO, error)
	Create(ctx context.Context, userID, companyID int64, input CreateInput, uploads []ImageUpload) (*ProductDTO, error)
	Patch(ctx context.Context, companyID, id int64, input PatchInput, uploads []ImageUpload) (*ProductDTO, error)
	Delete(ctx context.Context, companyID, id int64) (*DeletedProduct, error)
}

type service struct {
	db         db.TxRunner
	repo       *Repository
	categories *categories.Repository
	images     ImageUploader
	logg       *logger.Logger
	maxImages  int
}

// ServiceParams bundles the dependencies required to build a products service.
// Images may be nil; uploads are then rejected with a dependency error.
// Logger is optional and only reports image cleanup failures.
type ServiceParams struct {
	DB            db.TxRunner
	Repo          *Repository
	Categories    *categories.Repository
	Images        ImageUploader
	Logger        *logger.Logger
	MaxImageCount int
}

// NewService constructs a products service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{
		db:         params.DB,
		repo:       params.Repo,
		categories: params.Categories,
		images:     params.Images,
		logg:       params.Logger,
		maxImages:  params.MaxImageCount,
	}, nil
}

func (s *service) List(ctx context.Context, companyID int64) ([]ProductDTO, error) {
	rows, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, companyID, id int64) (*ProductDTO, error) {
	product, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, userID, companyID int64, input CreateInput, uploads []ImageUpload) (*ProductDTO, error) {
	attrs, attrsIssue := parseAttributes(input.Attributes)
	c := candidate{
		Name:            input.Name,
		CostPrice:       input.CostPrice,
		SellingPrice:    input.SellingPrice,
		CategoryID:      input.CategoryID,
		Category:        input.Category,
		Description:     input.Description,
		Attributes:      attrs,
		AttributesIssue: attrsIssue,
		ImageURLs:       input.ImageURLs,
		PendingUploads:  len(uploads),
		MaxImages:       s.maxImages,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, c.CategoryID); err != nil {
		return nil, err
	}
	if c.Category != nil && c.Category.ParentID != nil {
		if err := s.ensureCategory(ctx, c.Category.ParentID); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.storeImages(ctx, companyID, uploads)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:            c.Name,
		CostPrice:       roundPrice(c.CostPrice),
		SellingPrice:    roundPrice(c.SellingPrice),
		CategoryID:      c.CategoryID,
		Attributes:      c.Attributes,
		Description:     c.Description,
		ImageURLs:       types.StringList(append(append([]string{}, c.ImageURLs...), imageURLs(uploaded)...)),
		CompanyID:       companyID,
		CreatedByUserID: &userID,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if c.Category != nil {
			category, err := s.categories.WithTx(tx).Create(ctx, c.Category.Name, c.Category.ParentID)
			if err != nil {
				return err
			}
			product.CategoryID = &category.ID
		}
		return s.repo.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		s.discardImages(ctx, uploaded)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	return s.Get(ctx, companyID, product.ID)
}

func (s *service) Patch(ctx context.Context, companyID, id int64, input PatchInput, uploads []ImageUpload) (*ProductDTO, error) {
	if !input.HasFieldChanges() && !input.HasImageChanges() && len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No fields to update")
	}

	existing, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	c := candidate{
		Name:           existing.Name,
		CostPrice:      &existing.CostPrice,
		SellingPrice:   &existing.SellingPrice,
		CategoryID:     existing.CategoryID,
		Description:    existing.Description,
		Attributes:     existing.Attributes,
		ImageURLs:      append([]string{}, existing.ImageURLs...),
		PendingUploads: len(uploads),
		MaxImages:      s.maxImages,
	}
	columns := map[string]any{}

	if input.Name.Set {
		c.Name = ""
		if input.Name.Value != nil {
			c.Name = *input.Name.Value
		}
		columns["name"] = nil
	}
	if input.CostPrice.Set {
		c.CostPrice = input.CostPrice.Value
		columns["cost_price"] = nil
	}
	if input.SellingPrice.Set {
		c.SellingPrice = input.SellingPrice.Value
		columns["selling_price"] = nil
	}
	if input.CategoryID.Set {
		c.CategoryID = input.CategoryID.Value
		columns["category_id"] = nil
	}
	if input.Description.Set {
		c.Description = input.Description.Value
		columns["description"] = nil
	}
	if input.Attributes.Set {
		var raw []byte
		if input.Attributes.Value != nil {
			raw = *input.Attributes.Value
		}
		c.Attributes, c.AttributesIssue = parseAttributes(raw)
		columns["attributes"] = nil
	}
	switch {
	case input.ImageURLs.Set:
		c.ImageURLs = nil
		if input.ImageURLs.Value != nil {
			c.ImageURLs = *input.ImageURLs.Value
		}
	case input.KeepImageURLs.Set:
		var keep []string
		if input.KeepImageURLs.Value != nil {
			keep = *input.KeepImageURLs.Value
		}
		c.ImageURLs = retainImages(existing.ImageURLs, keep)
	}
	if input.HasImageChanges() || len(uploads) > 0 {
		columns["image_urls"] = nil
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	if input.CategoryID.Set {
		if err := s.ensureCategory(ctx, c.CategoryID); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.storeImages(ctx, companyID, uploads)
	if err != nil {
		return nil, err
	}
	c.ImageURLs = append(c.ImageURLs, imageURLs(uploaded)...)

	for col := range columns {
		switch col {
		case "name":
			columns[col] = c.Name
		case "cost_price":
			columns[col] = roundPrice(c.CostPrice)
		case "selling_price":
			columns[col] = roundPrice(c.SellingPrice)
		case "category_id":
			columns[col] = c.CategoryID
		case "description":
			columns[col] = c.Description
		case "attributes":
			columns[col] = c.Attributes
		case "image_urls":
			columns[col] = types.StringList(c.ImageURLs)
		}
	}

	if err := s.repo.UpdateColumns(ctx, companyID, id, columns); err != nil {
		s.discardImages(ctx, uploaded)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	if _, ok := columns["image_urls"]; ok {
		s.releaseImages(ctx, droppedImages(existing.ImageURLs, c.ImageURLs))
	}
	return s.Get(ctx, companyID, id)
}

func (s *service) Delete(ctx context.Context, companyID, id int64) (*DeletedProduct, error) {
	existing, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count product orders")
	}
	if orders > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete product with existing orders.").
			WithDetails(map[string]any{"orders": orders})
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteWithDependents(ctx, companyID, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	s.releaseImages(ctx, existing.ImageURLs)
	return &DeletedProduct{ID: existing.ID, Name: existing.Name}, nil
}

func (s *service) load(ctx context.Context, companyID, id int64) (*models.Product, error) {
	product, err := s.repo.FindInCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ensureCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Category %d does not exist", *id))
	}
	return nil
}

// retainImages keeps the entries of keep that the product already has, in keep order.
func retainImages(current []string, keep []string) []string {
	have := make(map[string]struct{}, len(current))
	for _, u := range current {
		have[u] = struct{}{}
	}
	out := make([]string, 0, len(keep))
	for _, u := range keep {
		if _, ok := have[u]; ok {
			out = append(out, u)
		}
	}
	return out
}

// droppedImages returns the entries of before that after no longer holds.
func droppedImages(before, after []string) []string {
	kept := make(map[string]struct{}, len(after))
	for _, u := range after {
		kept[u] = struct{}{}
	}
	var dropped []string
	for _, u := range before {
		if _, ok := kept[u]; !ok {
			dropped = append(dropped, u)
		}
	}
	return dropped
}
