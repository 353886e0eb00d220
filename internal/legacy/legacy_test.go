package legacy_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/legacy"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/report"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/repository/memrepo"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/pkg/validator"
)

const export = `{
  "products": [
    {"id": "1700000000001", "name": "Sugar", "price": 1000},
    {"id": "1700000000002", "name": "Salt", "price": "500.5"},
    {"id": "1700000000003", "name": "", "price": 10},
    {"id": "1700000000004", "name": "Oil", "price": "cheap"}
  ],
  "sales": [
    {"id": "s1", "productId": "1700000000001", "quantity": "3", "date": "2024-02-01T09:30:00.000Z"},
    {"id": "s2", "productId": "1700000000002", "quantity": 2, "date": "2024-02-02"},
    {"id": "s3", "productId": "gone", "quantity": 1, "date": ""},
    {"id": "s4", "productId": "1700000000001", "quantity": 0, "date": "2024-02-03"},
    {"id": "s5", "productId": "1700000000001", "quantity": 1, "date": "yesterday"}
  ]
}`

func TestDecode(t *testing.T) {
	exp, err := legacy.Decode(strings.NewReader(export), nil)
	require.NoError(t, err)

	assert.Len(t, exp.Products, 3)
	assert.Len(t, exp.Sales, 4)
	assert.Equal(t, 2, exp.Invalid)

	assert.True(t, decimal.RequireFromString("500.5").Equal(exp.Products[1].Price))
	assert.Equal(t, 3, exp.Sales[0].Quantity)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), exp.Sales[0].Date)
	assert.Equal(t, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), exp.Sales[1].Date)
	assert.True(t, exp.Sales[2].Date.IsZero())

	_, err = legacy.Decode(strings.NewReader(`[`), nil)
	assert.Error(t, err)
}

func TestDecodeLocalDates(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	doc := `{"products": [], "sales": [
		{"id": "s1", "productId": "p", "quantity": 1, "date": "2024-02-01T09:30:00"},
		{"id": "s2", "productId": "p", "quantity": 1, "date": "2024-02-02"},
		{"id": "s3", "productId": "p", "quantity": 1, "date": "2024-02-03T10:00:00Z"}
	]}`

	exp, err := legacy.Decode(strings.NewReader(doc), jakarta)
	require.NoError(t, err)
	require.Len(t, exp.Sales, 3)

	assert.Equal(t, time.Date(2024, 2, 1, 2, 30, 0, 0, time.UTC), exp.Sales[0].Date)
	assert.Equal(t, time.Date(2024, 2, 1, 17, 0, 0, 0, time.UTC), exp.Sales[1].Date)
	assert.Equal(t, time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC), exp.Sales[2].Date)
}

func TestImporterRun(t *testing.T) {
	ctx := context.Background()
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	logger := log.Discard()
	products := memrepo.NewProducts()
	sales := memrepo.NewSales()
	outbox := memrepo.NewOutboxMsgs()
	catalog := service.NewCatalogService(logger, memrepo.DB{}, v, products, outbox, cache.Noop{})
	ledger := service.NewLedgerService(logger, memrepo.DB{}, v, sales, outbox, cache.Noop{})

	exp, err := legacy.Decode(strings.NewReader(export), nil)
	require.NoError(t, err)

	res, err := legacy.NewImporter(logger, catalog, ledger).Run(ctx, exp)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Products)
	assert.Equal(t, 3, res.Sales)
	assert.Equal(t, 4, res.Skipped)
	require.Contains(t, res.IDs, "1700000000001")

	stored, err := sales.ListSales(ctx, repository.ListSalesParams{})
	require.NoError(t, err)
	require.Len(t, stored, 3)

	byQuantity := map[int]string{}
	for _, s := range stored {
		byQuantity[s.Quantity] = s.ProductID
	}
	assert.Equal(t, res.IDs["1700000000001"].String(), byQuantity[3])
	assert.Equal(t, res.IDs["1700000000002"].String(), byQuantity[2])
	assert.Equal(t, "gone", byQuantity[1])

	allProducts, err := products.ListAllProducts(ctx)
	require.NoError(t, err)
	summary := report.Summarize(allProducts, stored)
	assert.True(t, decimal.RequireFromString("4001").Equal(summary.TotalRevenue))

	overview, err := service.NewDashboardService(config.Dashboard{}, logger, products, sales, cache.Noop{}).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.SaleCount)
}

func TestImporterStopsOnStoreError(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	logger := log.Discard()
	products := memrepo.NewProducts()
	products.FailWith(errors.New("connection refused"))
	outbox := memrepo.NewOutboxMsgs()

	imp := legacy.NewImporter(logger,
		service.NewCatalogService(logger, memrepo.DB{}, v, products, outbox, cache.Noop{}),
		service.NewLedgerService(logger, memrepo.DB{}, v, memrepo.NewSales(), outbox, cache.Noop{}),
	)

	_, err = imp.Run(context.Background(), legacy.Export{
		Products: []legacy.Product{{ID: "1", Name: "Tea", Price: decimal.NewFromInt(2)}},
	})
	assert.ErrorContains(t, err, "add product 1")
}
