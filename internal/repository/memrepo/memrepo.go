// Package memrepo holds in-memory record stores with the same contracts as
// the Postgres repositories.
package memrepo

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/storage/db"
)

// ErrRawSQL is returned by DB for any raw query.
var ErrRawSQL = errors.New("memrepo: raw SQL is not supported")

var _ db.DB = (*DB)(nil)

// DB satisfies db.DB so services can open transactions. Transactions run
// the callback directly; there is no rollback.
type DB struct{}

func (DB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrRawSQL
}

func (DB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, ErrRawSQL
}

func (DB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

func (d DB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(d)
}

func (DB) IsHealthy(context.Context) (bool, error) {
	return true, nil
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrRawSQL }

// failer makes every call of a store return a fixed error once set.
type failer struct {
	mu  sync.Mutex
	err error
}

// FailWith makes subsequent calls return err. A nil err restores normal behaviour.
func (f *failer) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *failer) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

var _ repository.ProductRepository = (*Products)(nil)

type Products struct {
	failer
	mu    sync.Mutex
	items []model.Product
}

func NewProducts() *Products {
	return &Products{}
}

func (r *Products) WithDB(db.DB) repository.ProductRepository {
	return r
}

func (r *Products) CreateProduct(_ context.Context, product model.Product) error {
	if err := r.failure(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, product)
	return nil
}

func (r *Products) ListAllProducts(context.Context) ([]model.Product, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	items := slices.Clone(r.items)
	r.mu.Unlock()

	slices.SortStableFunc(items, func(a, b model.Product) int {
		return newestFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
	if items == nil {
		items = []model.Product{}
	}
	return items, nil
}

var _ repository.SaleRepository = (*Sales)(nil)

type Sales struct {
	failer
	mu    sync.Mutex
	items []model.Sale
}

func NewSales() *Sales {
	return &Sales{}
}

func (r *Sales) WithDB(db.DB) repository.SaleRepository {
	return r
}

func (r *Sales) CreateSale(_ context.Context, sale model.Sale) error {
	if err := r.failure(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, sale)
	return nil
}

func (r *Sales) ListSales(_ context.Context, params repository.ListSalesParams) ([]model.Sale, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	items := make([]model.Sale, 0, len(r.items))
	for _, s := range r.items {
		if params.ProductID != nil && s.ProductID != *params.ProductID {
			continue
		}
		items = append(items, s)
	}
	r.mu.Unlock()

	slices.SortStableFunc(items, func(a, b model.Sale) int {
		return newestFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return items, nil
}

var _ repository.OutboxMsgRepository = (*OutboxMsgs)(nil)

// OutboxMsg is a stored outbox row.
type OutboxMsg struct {
	repository.CreateOutboxMsgParams
	ID        uuid.UUID
	Processed bool
	Error     *string
}

type OutboxMsgs struct {
	failer
	mu    sync.Mutex
	items []*OutboxMsg
}

func NewOutboxMsgs() *OutboxMsgs {
	return &OutboxMsgs{}
}

func (r *OutboxMsgs) WithDB(db.DB) repository.OutboxMsgRepository {
	return r
}

func (r *OutboxMsgs) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	if err := r.failure(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, &OutboxMsg{CreateOutboxMsgParams: params, ID: uuid.New()})
	return nil
}

func (r *OutboxMsgs) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	results := []repository.ListUnprocessedOutboxMsgsResult{}
	for _, m := range r.items {
		if m.Processed {
			continue
		}
		if int32(len(results)) >= params.BatchSize {
			break
		}
		results = append(results, repository.ListUnprocessedOutboxMsgsResult{
			ID:           m.ID,
			Topic:        m.Topic,
			Headers:      m.Headers,
			Payload:      m.Payload,
			PartitionKey: m.PartitionKey,
		})
	}
	return results, nil
}

func (r *OutboxMsgs) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	if err := r.failure(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range params.Items {
		for _, m := range r.items {
			if m.ID == item.ID {
				m.Processed = true
				m.Error = item.Error
			}
		}
	}
	return nil
}

// All returns a snapshot of every stored message in insertion order.
func (r *OutboxMsgs) All() []OutboxMsg {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]OutboxMsg, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out
}

func newestFirst(aNanos, bNanos int64, aID, bID uuid.UUID) int {
	switch {
	case aNanos > bNanos:
		return -1
	case aNanos < bNanos:
		return 1
	default:
		return bytes.Compare(bID[:], aID[:])
	}
}
