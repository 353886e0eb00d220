package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/event"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/report"
	"github.com/namjco/sales-tracker/internal/repository/memrepo"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/pkg/ptr"
	"github.com/namjco/sales-tracker/pkg/validator"
)

type fixture struct {
	products  *memrepo.Products
	sales     *memrepo.Sales
	outbox    *memrepo.OutboxMsgs
	cache     *cache.Memory
	catalog   service.CatalogService
	ledger    service.LedgerService
	dashboard service.DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	f := &fixture{
		products: memrepo.NewProducts(),
		sales:    memrepo.NewSales(),
		outbox:   memrepo.NewOutboxMsgs(),
		cache:    cache.NewMemory(),
	}
	logger := log.Discard()
	f.catalog = service.NewCatalogService(logger, memrepo.DB{}, v, f.products, f.outbox, f.cache)
	f.ledger = service.NewLedgerService(logger, memrepo.DB{}, v, f.sales, f.outbox, f.cache)
	f.dashboard = service.NewDashboardService(config.Dashboard{Currency: "UGX"}, logger, f.products, f.sales, f.cache)
	return f
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	var verrs govalidator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

func TestCatalogAddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should add product and write outbox message", func(t *testing.T) {
		f := newFixture(t)

		product, err := f.catalog.AddProduct(ctx, service.CreateProductParams{
			Name:  "  Sugar ",
			Price: decimal.RequireFromString("1000"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Sugar", product.Name)
		assert.True(t, decimal.NewFromInt(1000).Equal(product.Price))
		assert.EqualValues(t, 7, product.ID.Version())
		assert.False(t, product.CreatedAt.IsZero())

		products, err := f.catalog.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, product.ID, products[0].ID)

		msgs := f.outbox.All()
		require.Len(t, msgs, 1)
		assert.Equal(t, event.TopicProductCreated, msgs[0].Topic)
		require.NotNil(t, msgs[0].PartitionKey)
		assert.Equal(t, product.ID.String(), *msgs[0].PartitionKey)

		var ev event.ProductCreatedEvent
		require.NoError(t, json.Unmarshal(msgs[0].Payload, &ev))
		assert.Equal(t, product.ID.String(), ev.ProductID)
		assert.Equal(t, "Sugar", ev.Name)
		assert.True(t, product.Price.Equal(ev.Price))
	})

	t.Run("Should put each new product at the front of the list", func(t *testing.T) {
		f := newFixture(t)

		for i, name := range []string{"Sugar", "Salt", "Oil"} {
			product, err := f.catalog.AddProduct(ctx, service.CreateProductParams{
				Name:  name,
				Price: decimal.NewFromInt(int64(10 * (i + 1))),
			})
			require.NoError(t, err)

			products, err := f.catalog.ListProducts(ctx)
			require.NoError(t, err)
			require.Len(t, products, i+1)
			assert.Equal(t, product.ID, products[0].ID)
			assert.Equal(t, name, products[0].Name)
		}
	})

	t.Run("Should keep supplied creation time", func(t *testing.T) {
		f := newFixture(t)
		at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		product, err := f.catalog.AddProduct(ctx, service.CreateProductParams{
			Name:      "Salt",
			Price:     decimal.RequireFromString("12.5"),
			CreatedAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, at, product.CreatedAt)
	})

	t.Run("Should reject invalid input and leave catalog unchanged", func(t *testing.T) {
		f := newFixture(t)

		tests := []struct {
			name   string
			params service.CreateProductParams
			field  string
		}{
			{"empty name", service.CreateProductParams{Name: "", Price: decimal.NewFromInt(1)}, "name"},
			{"blank name", service.CreateProductParams{Name: "   ", Price: decimal.NewFromInt(1)}, "name"},
			{"zero price", service.CreateProductParams{Name: "Tea", Price: decimal.Zero}, "price"},
			{"negative price", service.CreateProductParams{Name: "Tea", Price: decimal.NewFromInt(-3)}, "price"},
			{"price rounding to zero", service.CreateProductParams{Name: "Tea", Price: decimal.RequireFromString("0.001")}, "price"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.catalog.AddProduct(ctx, tt.params)
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ValidationErr)
				assert.Contains(t, fieldErrors(t, err), tt.field)
			})
		}

		products, err := f.catalog.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.Empty(t, f.outbox.All())
	})

	t.Run("Should classify store failure", func(t *testing.T) {
		f := newFixture(t)
		f.products.FailWith(errors.New("connection refused"))

		_, err := f.catalog.AddProduct(ctx, service.CreateProductParams{Name: "Tea", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, apperr.StoreErr)

		_, err = f.catalog.ListProducts(ctx)
		assert.ErrorIs(t, err, apperr.StoreErr)
	})
}

func TestLedgerAddSale(t *testing.T) {
	ctx := context.Background()

	t.Run("Should add sale without checking the product", func(t *testing.T) {
		f := newFixture(t)

		sale, err := f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: "missing-product", Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, "missing-product", sale.ProductID)
		assert.Equal(t, 4, sale.Quantity)

		msgs := f.outbox.All()
		require.Len(t, msgs, 1)
		assert.Equal(t, event.TopicSaleRecorded, msgs[0].Topic)
		assert.Equal(t, "missing-product", *msgs[0].PartitionKey)

		var ev event.SaleRecordedEvent
		require.NoError(t, json.Unmarshal(msgs[0].Payload, &ev))
		assert.Equal(t, sale.ID.String(), ev.SaleID)
		assert.Equal(t, 4, ev.Quantity)
	})

	t.Run("Should reject invalid input", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: " ", Quantity: 0})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, map[string]string{"productId": "notblank", "quantity": "gte"}, fieldErrors(t, err))

		sales, err := f.ledger.ListSales(ctx, service.ListSalesParams{})
		require.NoError(t, err)
		assert.Empty(t, sales)
	})

	t.Run("Should classify store failure", func(t *testing.T) {
		f := newFixture(t)
		f.outbox.FailWith(errors.New("disk full"))

		_, err := f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: "p", Quantity: 1})
		assert.ErrorIs(t, err, apperr.StoreErr)
	})
}

func TestLedgerListSales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "a"} {
		_, err := f.ledger.AddSale(ctx, service.CreateSaleParams{
			ProductID: id,
			Quantity:  i + 1,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	t.Run("Should list newest first", func(t *testing.T) {
		sales, err := f.ledger.ListSales(ctx, service.ListSalesParams{})
		require.NoError(t, err)
		require.Len(t, sales, 3)
		assert.Equal(t, 3, sales[0].Quantity)
		assert.Equal(t, 1, sales[2].Quantity)
	})

	t.Run("Should filter and limit", func(t *testing.T) {
		sales, err := f.ledger.ListSales(ctx, service.ListSalesParams{ProductID: ptr.New("a"), Limit: ptr.New(1)})
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, 3, sales[0].Quantity)
	})

	t.Run("Should reject non-positive limit", func(t *testing.T) {
		_, err := f.ledger.ListSales(ctx, service.ListSalesParams{Limit: ptr.New(0)})
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Should summarize with unresolved sales valued at zero", func(t *testing.T) {
		f := newFixture(t)

		sugar, err := f.catalog.AddProduct(ctx, service.CreateProductParams{Name: "Sugar", Price: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		_, err = f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: sugar.ID.String(), Quantity: 3})
		require.NoError(t, err)
		_, err = f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: "gone", Quantity: 5})
		require.NoError(t, err)

		overview, err := f.dashboard.Overview(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(3000).Equal(overview.TotalRevenue))
		assert.Equal(t, 1, overview.ProductCount)
		assert.Equal(t, 2, overview.SaleCount)
		assert.EqualValues(t, 8, overview.UnitsSold)
		assert.Equal(t, "UGX", overview.Currency)

		lines, err := f.dashboard.SaleLines(ctx)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, report.UnknownProductName, lines[0].ProductName)
		assert.True(t, lines[0].LineValue.IsZero())
		assert.Equal(t, "Sugar", lines[1].ProductName)

		totals, err := f.dashboard.ProductTotals(ctx)
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, sugar.ID.String(), totals[0].ProductID)
		assert.True(t, decimal.NewFromInt(3000).Equal(totals[0].Revenue))
	})

	t.Run("Should serve cached summary until a write invalidates it", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.dashboard.Overview(ctx)
		require.NoError(t, err)
		assert.Zero(t, first.SaleCount)

		_, ok, err := f.cache.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = f.ledger.AddSale(ctx, service.CreateSaleParams{ProductID: "p", Quantity: 1})
		require.NoError(t, err)

		_, ok, err = f.cache.GetSummary(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		second, err := f.dashboard.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, second.SaleCount)
	})

	t.Run("Should surface store failure", func(t *testing.T) {
		f := newFixture(t)
		f.sales.FailWith(errors.New("timeout"))

		_, err := f.dashboard.Overview(ctx)
		assert.ErrorIs(t, err, apperr.StoreErr)

		_, err = f.dashboard.SaleLines(ctx)
		assert.ErrorIs(t, err, apperr.StoreErr)
	})
}
