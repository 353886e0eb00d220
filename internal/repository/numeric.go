package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var errNonFiniteNumeric = errors.New("numeric is null, NaN or infinite")

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Decimal{}, errNonFiniteNumeric
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
