// Package report computes dashboard figures from products and sales.
//
// Every function is pure. A sale whose product id does not resolve is valued
// at zero and labelled UnknownProductName; it still counts as a sale.
package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/internal/model"
)

// UnknownProductName labels sales whose product cannot be resolved.
const UnknownProductName = "Unknown Product"

// Summary holds the dashboard totals.
type Summary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	ProductCount int             `json:"product_count"`
	SaleCount    int             `json:"sale_count"`
	UnitsSold    int64           `json:"units_sold"`
}

// SaleLine is one sale with its resolved product.
type SaleLine struct {
	Sale        model.Sale
	ProductName string
	UnitPrice   decimal.Decimal
	LineValue   decimal.Decimal
	Resolved    bool
}

// ProductTotal aggregates the sales of one product id.
type ProductTotal struct {
	ProductID   string
	ProductName string
	UnitsSold   int64
	Revenue     decimal.Decimal
	Resolved    bool
}

// Index resolves product ids. When ids repeat, the first product wins.
type Index map[string]model.Product

func NewIndex(products []model.Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		key := p.ID.String()
		if _, ok := idx[key]; ok {
			continue
		}
		idx[key] = p
	}
	return idx
}

// Resolve looks up the product a sale refers to.
func (idx Index) Resolve(productID string) (model.Product, bool) {
	p, ok := idx[productID]
	return p, ok
}

// ResolvedPrice is the unit price of the sale's product, or zero when unresolved.
func (idx Index) ResolvedPrice(sale model.Sale) decimal.Decimal {
	p, ok := idx.Resolve(sale.ProductID)
	if !ok {
		return decimal.Zero
	}
	return p.Price
}

// LineValue is price × quantity for one sale.
func (idx Index) LineValue(sale model.Sale) decimal.Decimal {
	return idx.ResolvedPrice(sale).Mul(decimal.NewFromInt(int64(sale.Quantity)))
}

// ProductName is the resolved product name or UnknownProductName.
func (idx Index) ProductName(sale model.Sale) string {
	p, ok := idx.Resolve(sale.ProductID)
	if !ok {
		return UnknownProductName
	}
	return p.Name
}

func TotalRevenue(products []model.Product, sales []model.Sale) decimal.Decimal {
	return totalRevenue(NewIndex(products), sales)
}

func ProductCount(products []model.Product) int {
	return len(products)
}

func SaleCount(sales []model.Sale) int {
	return len(sales)
}

func LineValue(sale model.Sale, products []model.Product) decimal.Decimal {
	return NewIndex(products).LineValue(sale)
}

func ProductName(sale model.Sale, products []model.Product) string {
	return NewIndex(products).ProductName(sale)
}

// Summarize computes all dashboard totals in one pass over sales.
func Summarize(products []model.Product, sales []model.Sale) Summary {
	idx := NewIndex(products)

	summary := Summary{
		TotalRevenue: totalRevenue(idx, sales),
		ProductCount: ProductCount(products),
		SaleCount:    SaleCount(sales),
	}
	for _, s := range sales {
		summary.UnitsSold += int64(s.Quantity)
	}

	return summary
}

// Lines resolves every sale, preserving the order of sales.
func Lines(products []model.Product, sales []model.Sale) []SaleLine {
	idx := NewIndex(products)

	lines := make([]SaleLine, 0, len(sales))
	for _, s := range sales {
		p, ok := idx.Resolve(s.ProductID)
		line := SaleLine{
			Sale:        s,
			ProductName: UnknownProductName,
			UnitPrice:   decimal.Zero,
			Resolved:    ok,
		}
		if ok {
			line.ProductName = p.Name
			line.UnitPrice = p.Price
		}
		line.LineValue = line.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
		lines = append(lines, line)
	}

	return lines
}

// ByProduct groups sales per product id, highest revenue first. Products
// without sales are omitted.
func ByProduct(products []model.Product, sales []model.Sale) []ProductTotal {
	idx := NewIndex(products)

	byID := map[string]*ProductTotal{}
	order := []string{}
	for _, s := range sales {
		t, ok := byID[s.ProductID]
		if !ok {
			p, resolved := idx.Resolve(s.ProductID)
			t = &ProductTotal{
				ProductID:   s.ProductID,
				ProductName: UnknownProductName,
				Revenue:     decimal.Zero,
				Resolved:    resolved,
			}
			if resolved {
				t.ProductName = p.Name
			}
			byID[s.ProductID] = t
			order = append(order, s.ProductID)
		}
		t.UnitsSold += int64(s.Quantity)
		t.Revenue = t.Revenue.Add(idx.LineValue(s))
	}

	totals := make([]ProductTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, *byID[id])
	}
	slices.SortStableFunc(totals, func(a, b ProductTotal) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	return totals
}

func totalRevenue(idx Index, sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(idx.LineValue(s))
	}
	return total
}
