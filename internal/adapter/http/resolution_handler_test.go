package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apihttp "github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/http"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/memstore"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenIdem struct{ err error }

func (b *brokenIdem) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return false, b.err
}

func (b *brokenIdem) Remember(ctx context.Context, scope, key, value string) error {
	return b.err
}

func (b *brokenIdem) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	return "", false, b.err
}

type nopCourier struct{}

func (nopCourier) SendGiftInstruction(ctx context.Context, msg usecase.GiftInstructionMsg) error {
	return nil
}

func newRemedyRouter(store *memstore.Store, idem usecase.IdempotencyStore) *gin.Engine {
	threshold := decimal.NewFromInt(3000)
	checker := usecase.NewAvailabilityChecker(store.Ledger())
	tr := usecase.NewTransition(store, checker, store)
	res := usecase.NewResolution(store, checker, tr, store.Plants(), nopCourier{}, threshold)

	oh := apihttp.NewOrderHandler(store, tr, res, threshold)
	rh := apihttp.NewResolutionHandler(res, store, idem, oh)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/orders/:id/remedy", rh.Remedy)
	return r
}

func seedPendingOrder(store *memstore.Store, id int64) {
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Fern", QuantityOnHand: 10})
	store.PutOrder(&domain.Order{
		ID:          id,
		Status:      domain.StatusPending,
		TotalAmount: decimal.NewFromInt(18),
		Items: []domain.Line{
			{InventoryItemID: 1, Name: "Fern", Quantity: 2, UnitPrice: decimal.NewFromInt(9)},
		},
		PlacedAt:  time.Now(),
		UpdatedAt: time.Now(),
	})
}

// An unreachable idempotency store must not read as a replay: the remedy is
// still applied instead of silently skipped.
func TestRemedy_IdempotencyStoreDownStillApplies(t *testing.T) {
	store := memstore.New()
	seedPendingOrder(store, 7)
	router := newRemedyRouter(store, &brokenIdem{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/7/remedy", strings.NewReader(`{"kind":"cancel"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
}
