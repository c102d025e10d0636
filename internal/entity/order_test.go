package domain_test

import (
	"testing"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range domain.AllStatuses {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, domain.Status("shipped").Valid())
	assert.False(t, domain.Status("").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, domain.StatusControlled.Terminal())
	assert.True(t, domain.StatusCancelled.Terminal())
	assert.False(t, domain.StatusPending.Terminal())
	assert.False(t, domain.StatusApproved.Terminal())
	assert.False(t, domain.StatusPreparing.Terminal())
	assert.False(t, domain.StatusDelivered.Terminal())
}

func TestCanTransition_CancelledReachableFromNonTerminal(t *testing.T) {
	for _, from := range domain.AllStatuses {
		got := domain.CanTransition(from, domain.StatusCancelled)
		if from.Terminal() {
			assert.False(t, got, string(from))
		} else {
			assert.True(t, got, string(from))
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, to := range domain.AllStatuses {
		assert.False(t, domain.CanTransition(domain.StatusControlled, to), string(to))
		assert.False(t, domain.CanTransition(domain.StatusCancelled, to), string(to))
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, domain.CanTransition(domain.StatusPending, domain.Status("shipped")))
	assert.False(t, domain.CanTransition(domain.Status(""), domain.StatusApproved))
}

func TestOrder_Validate(t *testing.T) {
	o := &domain.Order{
		Status:      domain.StatusPending,
		TotalAmount: decimal.NewFromInt(120),
		Items: []domain.Line{
			{InventoryItemID: 1, Name: "Tomato Seedling", Quantity: 10, UnitPrice: decimal.NewFromInt(12)},
		},
	}
	assert.NoError(t, o.Validate())

	empty := &domain.Order{Status: domain.StatusPending, TotalAmount: decimal.NewFromInt(1)}
	assert.ErrorIs(t, empty.Validate(), domain.ErrEmptyOrder)

	bad := &domain.Order{
		TotalAmount: decimal.NewFromInt(1),
		Items:       []domain.Line{{InventoryItemID: 1, Name: "Fern", Quantity: 0}},
	}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidLine)

	negative := &domain.Order{
		TotalAmount: decimal.NewFromInt(-5),
		Items:       []domain.Line{{InventoryItemID: 1, Name: "Fern", Quantity: 1}},
	}
	assert.ErrorIs(t, negative.Validate(), domain.ErrNegativeAmount)
}

func TestOrder_LargeOrder(t *testing.T) {
	threshold := decimal.NewFromInt(3000)

	small := &domain.Order{TotalAmount: decimal.NewFromInt(2999)}
	assert.False(t, small.LargeOrder(threshold))

	exact := &domain.Order{TotalAmount: decimal.NewFromInt(3000)}
	assert.True(t, exact.LargeOrder(threshold))

	big := &domain.Order{TotalAmount: decimal.NewFromFloat(3000.01)}
	assert.True(t, big.LargeOrder(threshold))
}

func TestOrder_StockConsumed(t *testing.T) {
	assert.False(t, (&domain.Order{Status: domain.StatusPending}).StockConsumed())
	assert.True(t, (&domain.Order{Status: domain.StatusApproved}).StockConsumed())
	assert.True(t, (&domain.Order{Status: domain.StatusPreparing}).StockConsumed())
	assert.True(t, (&domain.Order{Status: domain.StatusDelivered}).StockConsumed())
	assert.True(t, (&domain.Order{Status: domain.StatusControlled}).StockConsumed())
	assert.False(t, (&domain.Order{Status: domain.StatusCancelled}).StockConsumed())
}
