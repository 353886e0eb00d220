// Package cache stores the computed dashboard summary between writes.
package cache

import (
	"context"
	"sync"

	"github.com/namjco/sales-tracker/internal/report"
)

// SummaryCache holds at most one dashboard summary. A miss is reported
// through the bool result, not an error.
type SummaryCache interface {
	GetSummary(ctx context.Context) (report.Summary, bool, error)
	SetSummary(ctx context.Context, summary report.Summary) error
	Invalidate(ctx context.Context) error
}

type CleanupFunc func()

var (
	_ SummaryCache = Noop{}
	_ SummaryCache = (*Memory)(nil)
)

// Noop never stores anything.
type Noop struct{}

func (Noop) GetSummary(context.Context) (report.Summary, bool, error) {
	return report.Summary{}, false, nil
}

func (Noop) SetSummary(context.Context, report.Summary) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }

// Memory keeps the summary in process. It does not expire.
type Memory struct {
	mu      sync.Mutex
	summary *report.Summary
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) GetSummary(context.Context) (report.Summary, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.summary == nil {
		return report.Summary{}, false, nil
	}
	return *m.summary, true, nil
}

func (m *Memory) SetSummary(_ context.Context, summary report.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary = &summary
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary = nil
	return nil
}
