// Package service holds the catalog, ledger and dashboard use cases.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/pkg/validator"
)

// now is the creation timestamp for new records, at the precision Postgres stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func validate(v validator.Validator, params any) error {
	if err := v.Validate(params); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	return nil
}

// invalidateSummary drops the cached dashboard summary after a committed
// write. Failures only cost freshness until the TTL expires.
func invalidateSummary(ctx context.Context, logger *slog.Logger, summaryCache cache.SummaryCache) {
	if err := summaryCache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "error invalidating dashboard summary", slog.Any("error", err))
	}
}
