package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/memstore"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id int64, status domain.Status, lines ...domain.Line) *domain.Order {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	placed := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:          id,
		Status:      status,
		TotalAmount: total,
		Items:       lines,
		PlacedAt:    placed,
		UpdatedAt:   placed,
	}
}

func line(itemID int64, name string, qty int, price int64) domain.Line {
	return domain.Line{InventoryItemID: itemID, Name: name, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func TestCheck_AllLinesSatisfiable(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Tomato Seedling", QuantityOnHand: 15, ReorderLevel: 5})
	checker := usecase.NewAvailabilityChecker(store.Ledger())

	order := newOrder(1, domain.StatusPending, line(1, "Tomato Seedling", 10, 12))

	avail, err := checker.Check(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, avail.Available)
	assert.Empty(t, avail.Issues)
}

func TestCheck_InsufficientStockIssueFormat(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Tomato Seedling", QuantityOnHand: 4})
	checker := usecase.NewAvailabilityChecker(store.Ledger())

	order := newOrder(1, domain.StatusPending, line(1, "Tomato Seedling", 10, 12))

	avail, err := checker.Check(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	require.Len(t, avail.Issues, 1)
	assert.Equal(t, "Tomato Seedling: Insufficient stock (Available: 4, Required: 10)", avail.Issues[0].String())
}

func TestCheck_MissingEntryIssueFormat(t *testing.T) {
	store := memstore.New()
	checker := usecase.NewAvailabilityChecker(store.Ledger())

	order := newOrder(1, domain.StatusPending, line(99, "Ghost Orchid", 2, 80))

	avail, err := checker.Check(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	require.Len(t, avail.Issues, 1)
	assert.Equal(t, "Ghost Orchid: Not found in inventory", avail.Issues[0].String())
}

func TestCheck_ReportsEveryUnsatisfiableLine(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Tomato Seedling", QuantityOnHand: 3})
	store.PutEntry(&domain.StockEntry{ID: 2, Name: "Basil", QuantityOnHand: 50})
	checker := usecase.NewAvailabilityChecker(store.Ledger())

	order := newOrder(1, domain.StatusPending,
		line(1, "Tomato Seedling", 10, 12),
		line(2, "Basil", 5, 3),
		line(7, "Ghost Orchid", 1, 80),
	)

	avail, err := checker.Check(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	require.Len(t, avail.Issues, 2)
	assert.Equal(t, "Tomato Seedling: Insufficient stock (Available: 3, Required: 10)", avail.Issues[0].String())
	assert.Equal(t, "Ghost Orchid: Not found in inventory", avail.Issues[1].String())
}

func TestCheck_DoesNotMutateLedger(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Tomato Seedling", QuantityOnHand: 15})
	checker := usecase.NewAvailabilityChecker(store.Ledger())

	order := newOrder(1, domain.StatusPending, line(1, "Tomato Seedling", 10, 12))

	for i := 0; i < 5; i++ {
		_, err := checker.Check(context.Background(), order)
		require.NoError(t, err)
	}
	entry, err := store.GetEntry(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 15, entry.QuantityOnHand)
}
