// Package legacy imports data saved by the browser-only version of the
// tracker, which kept products and sales in local storage.
package legacy

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/pkg/lenient"
)

// Export is a decoded local-storage dump. Rows that could not be decoded are
// counted in Invalid and left out.
type Export struct {
	Products []Product
	Sales    []Sale
	Invalid  int
}

// Product is a local-storage product. ID is only meaningful inside the export.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Sale is a local-storage sale. A zero Date means the time of import.
type Sale struct {
	ID        string
	ProductID string
	Quantity  int
	Date      time.Time
}

type rawExport struct {
	Products []json.RawMessage `json:"products"`
	Sales    []json.RawMessage `json:"sales"`
}

type rawProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type rawSale struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Quantity  lenient.Int `json:"quantity"`
	Date      string      `json:"date"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Decode reads an export. Only a malformed document is an error; a row with
// a bad price, quantity or date is counted as invalid. Dates without a zone
// offset are read in loc, or UTC when loc is nil.
func Decode(r io.Reader, loc *time.Location) (Export, error) {
	if loc == nil {
		loc = time.UTC
	}

	var raw rawExport
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Export{}, fmt.Errorf("decode export: %w", err)
	}

	var exp Export
	for _, msg := range raw.Products {
		var p rawProduct
		if err := json.Unmarshal(msg, &p); err != nil {
			exp.Invalid++
			continue
		}
		exp.Products = append(exp.Products, Product(p))
	}

	for _, msg := range raw.Sales {
		var s rawSale
		if err := json.Unmarshal(msg, &s); err != nil {
			exp.Invalid++
			continue
		}

		date, err := parseDate(s.Date, loc)
		if err != nil {
			exp.Invalid++
			continue
		}

		exp.Sales = append(exp.Sales, Sale{
			ID:        s.ID,
			ProductID: s.ProductID,
			Quantity:  s.Quantity.Value,
			Date:      date,
		})
	}

	return exp, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
