package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/backoffice/internal/categories"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeUploader struct {
	uploads []string
	types   []string
	deleted []string
	failAt  int
}

func (f *fakeUploader) ObjectName(companyID int64, filename string) string {
	return fmt.Sprintf("products/%d/%d-%s", companyID, len(f.uploads), filename)
}

func (f *fakeUploader) Upload(_ context.Context, object, contentType string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	if f.failAt > 0 && len(f.uploads)+1 == f.failAt {
		return "", errors.New("bucket unavailable")
	}
	f.uploads = append(f.uploads, object)
	f.types = append(f.types, contentType)
	return "https://cdn.test/" + object, nil
}

func (f *fakeUploader) Delete(_ context.Context, object string) error {
	f.deleted = append(f.deleted, object)
	return nil
}

func (f *fakeUploader) ObjectFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, "https://cdn.test/")
}

func newTestService(t *testing.T, uploader ImageUploader) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	params := ServiceParams{
		DB:            db.NewFromConn(conn),
		Repo:          NewRepository(conn),
		Categories:    categories.NewRepository(conn),
		MaxImageCount: 3,
	}
	if uploader != nil {
		params.Images = uploader
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc, conn
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validInput() CreateInput {
	return CreateInput{
		Name:         "  Lamp ",
		CostPrice:    dec("10.005"),
		SellingPrice: dec("12.50"),
		Attributes:   json.RawMessage(`{"color":"red"}`),
		ImageURLs:    []string{"https://img.test/lamp.png"},
	}
}

func TestCreatePersistsNormalizedProduct(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	desc := "   "
	input := validInput()
	input.Description = &desc
	got, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
	require.NoError(t, err)

	require.Equal(t, "Lamp", got.Name)
	require.Equal(t, "10.01", got.CostPrice.StringFixed(2))
	require.Nil(t, got.Description)
	require.Equal(t, "red", got.Attributes["color"])
	require.Equal(t, tenant.Company.ID, got.CompanyID)
	require.NotNil(t, got.CreatedByUserID)
	require.Equal(t, tenant.Owner.ID, *got.CreatedByUserID)
}

func TestCreateValidationRules(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	cases := map[string]struct {
		mutate  func(*CreateInput)
		message string
	}{
		"missing name":       {func(in *CreateInput) { in.Name = " " }, "Name is required"},
		"selling below":      {func(in *CreateInput) { in.SellingPrice = dec("9") }, "Selling price should be ≥ cost price"},
		"negative cost":      {func(in *CreateInput) { in.CostPrice = dec("-1") }, "costPrice must be 0 or more"},
		"missing price":      {func(in *CreateInput) { in.SellingPrice = nil }, "sellingPrice must be a number"},
		"no images":          {func(in *CreateInput) { in.ImageURLs = nil }, "imageUrls must be a non-empty array"},
		"blank image":        {func(in *CreateInput) { in.ImageURLs = []string{"ok", " "} }, "imageUrls must contain non-empty strings"},
		"array attributes":   {func(in *CreateInput) { in.Attributes = json.RawMessage(`[1]`) }, "attributes must be an object (JSON) or null"},
		"too many images":    {func(in *CreateInput) { in.ImageURLs = []string{"a", "b", "c", "d"} }, "A product can hold at most 3 images"},
		"category xor":       {func(in *CreateInput) { id := int64(1); in.CategoryID = &id; in.Category = &NewCategory{Name: "x"} }, "Provide either categoryId or category, not both"},
		"blank new category": {func(in *CreateInput) { in.Category = &NewCategory{Name: " "} }, "Category name is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			require.Contains(t, pkgerrors.As(err).Details().(map[string]any)["issues"].([]string), tc.message)
		})
	}
}

func TestCreateReportsAttributeIssuesWithOtherRules(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	input.Attributes = json.RawMessage(`[1]`)
	input.SellingPrice = dec("1")
	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	issues := pkgerrors.As(err).Details().(map[string]any)["issues"].([]string)
	require.ElementsMatch(t, []string{
		"Selling price should be ≥ cost price",
		"attributes must be an object (JSON) or null",
	}, issues)
}

func TestPatchAttributeIssueHasIssuesDetails(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	raw := json.RawMessage(`"red"`)
	_, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{Attributes: Present(raw)}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, []string{"attributes must be an object (JSON) or null"}, pkgerrors.As(err).Details().(map[string]any)["issues"])
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	id := int64(999)
	input.CategoryID = &id
	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "Category 999 does not exist", pkgerrors.As(err).Message())
}

func TestCreateWithNewCategoryIsAtomic(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	input.Category = &NewCategory{Name: "Lighting"}
	got, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	require.Equal(t, "Lighting", got.Category.Name)
	require.Equal(t, got.Category.ID, *got.CategoryID)

	missingParent := int64(404)
	input.Category = &NewCategory{Name: "Orphan", ParentID: &missingParent}
	_, err = svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var categoriesCount, productsCount int64
	require.NoError(t, conn.Model(&models.Category{}).Count(&categoriesCount).Error)
	require.NoError(t, conn.Model(&models.Product{}).Count(&productsCount).Error)
	require.EqualValues(t, 1, categoriesCount)
	require.EqualValues(t, 1, productsCount)
}

func TestCreateUploadsImages(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	input.ImageURLs = nil
	got, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, []ImageUpload{{Filename: "a.png", Data: pngBytes}})
	require.NoError(t, err)
	require.Len(t, got.ImageURLs, 1)
	require.Equal(t, "https://cdn.test/"+uploader.uploads[0], got.ImageURLs[0])
	require.Equal(t, []string{"image/png"}, uploader.types)
}

func TestCreateRemovesUploadsWhenInsertFails(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")
	require.NoError(t, conn.Migrator().DropTable(&models.Product{}))

	input := validInput()
	input.ImageURLs = nil
	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, []ImageUpload{{Filename: "a.png", Data: pngBytes}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)
	require.Len(t, uploader.uploads, 1)
	require.Equal(t, uploader.uploads, uploader.deleted)
}

func TestCreateRemovesEarlierUploadsWhenOneFails(t *testing.T) {
	uploader := &fakeUploader{failAt: 2}
	svc, conn := newTestService(t, uploader)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, input, []ImageUpload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "b.png", Data: pngBytes},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
	require.Equal(t, uploader.uploads, uploader.deleted)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateRejectsNonImageUpload(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, validInput(), []ImageUpload{{Filename: "a.txt", Data: []byte("hello world")}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Empty(t, uploader.uploads)
}

func TestCreateUploadWithoutStorage(t *testing.T) {
	svc, conn := newTestService(t, nil)
	tenant := dbtest.MustCreateTenant(t, conn, "acme")

	_, err := svc.Create(context.Background(), tenant.Owner.ID, tenant.Company.ID, validInput(), []ImageUpload{{Filename: "a.png", Data: pngBytes}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGetIsScopedToCompany(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	globex := dbtest.MustCreateTenant(t, conn, "globex")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	_, err := svc.Get(context.Background(), globex.Company.ID, product.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(context.Background(), acme.Company.ID, product.ID+100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	list, err := svc.List(context.Background(), globex.Company.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListOrdersByID(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	first := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "a")
	second := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "b")

	list, err := svc.List(context.Background(), acme.Company.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
}

func TestPatchRejectsEmptyChangeSet(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	_, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "No fields to update", pkgerrors.As(err).Message())
}

func TestPatchRevalidatesMergedPrices(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	_, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		SellingPrice: Present(decimal.NewFromInt(5)),
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "Selling price should be ≥ cost price", pkgerrors.As(err).Message())

	got, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		CostPrice: Present(decimal.NewFromInt(12)),
	}, nil)
	require.NoError(t, err)
	require.True(t, got.CostPrice.Equal(decimal.NewFromInt(12)))
	require.True(t, got.SellingPrice.Equal(decimal.NewFromInt(15)))
	require.Equal(t, "lamp", got.Name)
}

func TestPatchClearsAndReplacesFields(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	got, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		Description: Present("a bright lamp"),
		Attributes:  Present(json.RawMessage(`{"watts":60}`)),
		ImageURLs:   Present([]string{"https://img.test/new.png"}),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "a bright lamp", *got.Description)
	require.EqualValues(t, 60, got.Attributes["watts"])
	require.Equal(t, []string{"https://img.test/new.png"}, got.ImageURLs)

	got, err = svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		Description: Null[string](),
		Attributes:  Null[json.RawMessage](),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, got.Description)
	require.Nil(t, got.Attributes)

	_, err = svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		ImageURLs: Present([]string{}),
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		Name: Null[string](),
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPatchKeepsImagesAndAppendsUploads(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")
	existing := product.ImageURLs[0]

	got, err := svc.Patch(context.Background(), acme.Company.ID, product.ID, PatchInput{
		KeepImageURLs: Present([]string{existing, "https://elsewhere.test/x.png"}),
	}, []ImageUpload{{Filename: "b.png", Data: pngBytes}})
	require.NoError(t, err)
	require.Len(t, got.ImageURLs, 2)
	require.Equal(t, existing, got.ImageURLs[0])
	require.Equal(t, "https://cdn.test/"+uploader.uploads[0], got.ImageURLs[1])
}

func TestPatchReleasesDroppedImages(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	acme := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	input.ImageURLs = []string{"https://img.test/external.png"}
	created, err := svc.Create(context.Background(), acme.Owner.ID, acme.Company.ID, input, []ImageUpload{{Filename: "a.png", Data: pngBytes}})
	require.NoError(t, err)
	require.Len(t, created.ImageURLs, 2)

	_, err = svc.Patch(context.Background(), acme.Company.ID, created.ID, PatchInput{
		KeepImageURLs: Present([]string{"https://img.test/external.png"}),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, uploader.uploads, uploader.deleted)
}

func TestPatchForeignProductIsNotFound(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	globex := dbtest.MustCreateTenant(t, conn, "globex")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	_, err := svc.Patch(context.Background(), globex.Company.ID, product.ID, PatchInput{Name: Present("stolen")}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, product.ID).Error)
	require.Equal(t, "lamp", reloaded.Name)
}

func TestDeleteRefusesProductsWithOrders(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")
	customer := dbtest.MustCreateCustomer(t, conn, "ann", "north")
	dbtest.MustCreateOrders(t, conn, customer.ID, product.ID, 1, false)

	_, err := svc.Delete(context.Background(), acme.Company.ID, product.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "Cannot delete product with existing orders.", pkgerrors.As(err).Message())
}

func TestDeleteRemovesDependents(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")
	customer := dbtest.MustCreateCustomer(t, conn, "ann", "north")
	dbtest.MustCreateInventory(t, conn, product.ID, 4)
	dbtest.MustCreateReview(t, conn, customer.ID, product.ID, 5, "great")

	deleted, err := svc.Delete(context.Background(), acme.Company.ID, product.ID)
	require.NoError(t, err)
	require.Equal(t, &DeletedProduct{ID: product.ID, Name: "lamp"}, deleted)

	var inventory, reviews, products int64
	require.NoError(t, conn.Model(&models.Inventory{}).Count(&inventory).Error)
	require.NoError(t, conn.Model(&models.Review{}).Count(&reviews).Error)
	require.NoError(t, conn.Model(&models.Product{}).Count(&products).Error)
	require.Zero(t, inventory)
	require.Zero(t, reviews)
	require.Zero(t, products)
}

func TestDeleteReleasesStoredImages(t *testing.T) {
	uploader := &fakeUploader{}
	svc, conn := newTestService(t, uploader)
	acme := dbtest.MustCreateTenant(t, conn, "acme")

	input := validInput()
	created, err := svc.Create(context.Background(), acme.Owner.ID, acme.Company.ID, input, []ImageUpload{{Filename: "a.png", Data: pngBytes}})
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), acme.Company.ID, created.ID)
	require.NoError(t, err)
	require.Equal(t, uploader.uploads, uploader.deleted)
}

func TestDeleteForeignProductIsNotFound(t *testing.T) {
	svc, conn := newTestService(t, nil)
	acme := dbtest.MustCreateTenant(t, conn, "acme")
	globex := dbtest.MustCreateTenant(t, conn, "globex")
	product := dbtest.MustCreateProduct(t, conn, acme.Company.ID, acme.Owner.ID, "lamp")

	_, err := svc.Delete(context.Background(), globex.Company.ID, product.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
