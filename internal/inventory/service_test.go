package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/angelmondragon/backoffice/internal/orders"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	registry *prometheus.Registry
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	registry := prometheus.NewRegistry()
	logs := &bytes.Buffer{}
	svc, err := NewService(ServiceParams{
		DB:      db.NewFromConn(conn),
		Repo:    NewRepository(conn),
		Orders:  orders.NewRepository(conn),
		Metrics: metrics.NewInventoryMetrics(registry),
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: logs}),
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, registry: registry, logs: logs}
}

func line(productID int64, inStock int) UpdateItem {
	return UpdateItem{
		ProductID: json.Number(strconv.FormatInt(productID, 10)),
		InStock:   json.Number(strconv.Itoa(inStock)),
	}
}

func stockOf(t *testing.T, conn *gorm.DB, productID int64) (int, bool) {
	t.Helper()
	var row models.Inventory
	err := conn.Where("product_id = ?", productID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false
	}
	require.NoError(t, err)
	return row.InStock, true
}

func TestBulkUpdateRejectsEmptyAndOversize(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")

	_, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))
	assert.Equal(t, "No updates provided", pkgerrors.As(err).Message())

	batch := make([]UpdateItem, DefaultMaxItems+1)
	for i := range batch {
		batch[i] = line(widget.ID, i)
	}
	_, err = f.svc.BulkUpdate(context.Background(), acme.Company.ID, batch)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))
	assert.Equal(t, "Too many updates. Max is 500", pkgerrors.As(err).Message())
	_, found := stockOf(t, f.conn, widget.ID)
	assert.False(t, found)

	got, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, batch[:DefaultMaxItems])
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	stock, _ := stockOf(t, f.conn, widget.ID)
	assert.Equal(t, DefaultMaxItems-1, stock)
	assert.Equal(t, 1.0, counterValue(t, f.registry, metrics.OutcomeApplied))

	assert.Equal(t, 2.0, counterValue(t, f.registry, metrics.OutcomeRejected))
}

func counterValue(t *testing.T, registry *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "inventory_bulk_updates_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBulkUpdateRejectsMalformedLines(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	id := json.Number(strconv.FormatInt(widget.ID, 10))

	cases := map[string]UpdateItem{
		"fractional stock":  {ProductID: id, InStock: "1.5"},
		"negative stock":    {ProductID: id, InStock: "-1"},
		"stock above int32": {ProductID: id, InStock: "2147483648"},
		"missing stock":     {ProductID: id},
		"zero id":           {ProductID: "0", InStock: "1"},
		"fractional id":     {ProductID: "1.2", InStock: "1"},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, []UpdateItem{line(widget.ID, 3), item})
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest), "got %v", err)
			_, found := stockOf(t, f.conn, widget.ID)
			assert.False(t, found)
		})
	}
}

func TestBulkUpdateLastOccurrenceWins(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	gadget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "gadget")

	got, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, []UpdateItem{
		line(widget.ID, 1), line(gadget.ID, 4), line(widget.ID, 9),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)

	stock, _ := stockOf(t, f.conn, widget.ID)
	assert.Equal(t, 9, stock)
	stock, _ = stockOf(t, f.conn, gadget.ID)
	assert.Equal(t, 4, stock)
}

func TestBulkUpdateAcceptsNumericStrings(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")

	var items []UpdateItem
	body := []byte(`[{"productId":"` + strconv.FormatInt(widget.ID, 10) + `","inStock":"7"}]`)
	require.NoError(t, json.Unmarshal(body, &items))

	_, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, items)
	require.NoError(t, err)
	stock, _ := stockOf(t, f.conn, widget.ID)
	assert.Equal(t, 7, stock)
}

func TestBulkUpdateReportsEveryUnknownProduct(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	globex := dbtest.MustCreateTenant(t, f.conn, "globex")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	foreign := dbtest.MustCreateProduct(t, f.conn, globex.Company.ID, globex.Owner.ID, "foreign")

	_, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, []UpdateItem{
		line(widget.ID, 1), line(foreign.ID, 2), line(9999, 3),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, []int64{foreign.ID, 9999}, details["invalidProductIds"])

	_, found := stockOf(t, f.conn, widget.ID)
	assert.False(t, found)
	_, found = stockOf(t, f.conn, foreign.ID)
	assert.False(t, found)
}

func TestBulkUpdateEnforcesReservedFloor(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	gadget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "gadget")
	customer := dbtest.MustCreateCustomer(t, f.conn, "ann", "north")
	dbtest.MustCreateInventory(t, f.conn, widget.ID, 5)
	dbtest.MustCreateOrders(t, f.conn, customer.ID, widget.ID, 3, false)
	dbtest.MustCreateOrders(t, f.conn, customer.ID, widget.ID, 2, true)
	dbtest.MustCreateOrders(t, f.conn, customer.ID, gadget.ID, 1, false)

	_, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, []UpdateItem{line(widget.ID, 2), line(gadget.ID, 0)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, []BelowReserved{
		{ProductID: widget.ID, InStock: 2, ReservedCount: 3},
		{ProductID: gadget.ID, InStock: 0, ReservedCount: 1},
	}, details["invalid"])

	stock, _ := stockOf(t, f.conn, widget.ID)
	assert.Equal(t, 5, stock)

	got, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, []UpdateItem{line(widget.ID, 3)})
	require.NoError(t, err)
	require.Len(t, got.Updated, 1)
	assert.Equal(t, 3, got.Updated[0].InStock)
}

func TestBulkUpdateUpdatesThenInsertsAndIsRepeatable(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	gadget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "gadget")
	dbtest.MustCreateInventory(t, f.conn, gadget.ID, 1)

	batch := []UpdateItem{line(widget.ID, 4), line(gadget.ID, 6)}
	first, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, batch)
	require.NoError(t, err)
	require.Equal(t, 2, first.Count)
	assert.Equal(t, gadget.ID, first.Updated[0].ProductID)
	assert.Equal(t, widget.ID, first.Updated[1].ProductID)

	second, err := f.svc.BulkUpdate(context.Background(), acme.Company.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)

	var rows []models.Inventory
	require.NoError(t, f.conn.Order("product_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].InStock)
	assert.Equal(t, 6, rows[1].InStock)
	assert.Contains(t, f.logs.String(), "inventory bulk update applied")
}

func TestGetHidesForeignInventory(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	globex := dbtest.MustCreateTenant(t, f.conn, "globex")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	bare := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "bare")
	dbtest.MustCreateInventory(t, f.conn, widget.ID, 8)

	got, err := f.svc.Get(context.Background(), acme.Company.ID, widget.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.InStock)

	got, err = f.svc.Get(context.Background(), globex.Company.ID, widget.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.Get(context.Background(), acme.Company.ID, bare.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAndTotal(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.MustCreateTenant(t, f.conn, "acme")
	globex := dbtest.MustCreateTenant(t, f.conn, "globex")
	widget := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "widget")
	bare := dbtest.MustCreateProduct(t, f.conn, acme.Company.ID, acme.Owner.ID, "bare")
	foreign := dbtest.MustCreateProduct(t, f.conn, globex.Company.ID, globex.Owner.ID, "foreign")
	customer := dbtest.MustCreateCustomer(t, f.conn, "ann", "north")
	dbtest.MustCreateInventory(t, f.conn, widget.ID, 8)
	dbtest.MustCreateInventory(t, f.conn, foreign.ID, 100)
	dbtest.MustCreateOrders(t, f.conn, customer.ID, widget.ID, 2, false)

	items, err := f.svc.List(context.Background(), acme.Company.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, widget.ID, items[0].Product.ID)
	require.NotNil(t, items[0].Inventory)
	assert.Equal(t, 8, items[0].Inventory.InStock)
	assert.EqualValues(t, 2, items[0].ReservedCount)
	assert.Equal(t, bare.ID, items[1].Product.ID)
	assert.Nil(t, items[1].Inventory)
	assert.Zero(t, items[1].ReservedCount)

	total, err := f.svc.Total(context.Background(), acme.Company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)
}
