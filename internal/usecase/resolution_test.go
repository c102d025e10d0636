package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/memstore"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourier struct {
	sent []usecase.GiftInstructionMsg
	fail error
}

func (f *fakeCourier) SendGiftInstruction(ctx context.Context, msg usecase.GiftInstructionMsg) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newResolution(store *memstore.Store, courier *fakeCourier) *usecase.Resolution {
	checker := usecase.NewAvailabilityChecker(store.Ledger())
	tr := usecase.NewTransition(store, checker, store).WithClock(func() time.Time { return fixedNow })
	return usecase.NewResolution(store, checker, tr, store.Plants(), courier, decimal.NewFromInt(3000)).
		WithClock(func() time.Time { return fixedNow })
}

func TestClassify_ProblemReasons(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Fern", QuantityOnHand: 10})
	res := newResolution(store, &fakeCourier{})

	clean := newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9))
	p, err := res.Classify(context.Background(), clean)
	require.NoError(t, err)
	assert.Empty(t, p.Reasons)

	complained := newOrder(2, domain.StatusPending, line(1, "Fern", 2, 9))
	complained.Complaint = "wilted on arrival"
	p, err = res.Classify(context.Background(), complained)
	require.NoError(t, err)
	assert.Equal(t, []string{"complaint"}, p.Reasons)

	delayed := newOrder(3, domain.StatusPending, line(1, "Fern", 2, 9))
	delayed.DelayReason = "supplier strike"
	p, err = res.Classify(context.Background(), delayed)
	require.NoError(t, err)
	assert.Equal(t, []string{"delay"}, p.Reasons)

	cancelled := newOrder(4, domain.StatusCancelled, line(1, "Fern", 2, 9))
	p, err = res.Classify(context.Background(), cancelled)
	require.NoError(t, err)
	assert.Equal(t, []string{"cancelled"}, p.Reasons)

	short := newOrder(5, domain.StatusPending, line(1, "Fern", 99, 9))
	p, err = res.Classify(context.Background(), short)
	require.NoError(t, err)
	assert.Equal(t, []string{"stock"}, p.Reasons)
	require.Len(t, p.StockIssues, 1)
}

func TestClassify_LargeOrderFlag(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Olive Tree", QuantityOnHand: 100})
	res := newResolution(store, &fakeCourier{})

	big := newOrder(1, domain.StatusPending, line(1, "Olive Tree", 10, 350))
	p, err := res.Classify(context.Background(), big)
	require.NoError(t, err)
	assert.True(t, p.LargeOrder)

	small := newOrder(2, domain.StatusPending, line(1, "Olive Tree", 1, 350))
	p, err = res.Classify(context.Background(), small)
	require.NoError(t, err)
	assert.False(t, p.LargeOrder)
}

func TestProblemOrders_OnlyFlaggedOrders(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Fern", QuantityOnHand: 10})
	clean := newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9))
	flagged := newOrder(2, domain.StatusPending, line(1, "Fern", 2, 9))
	flagged.Complaint = "wrong pot size"
	store.PutOrder(clean)
	store.PutOrder(flagged)
	res := newResolution(store, &fakeCourier{})

	problems, err := res.ProblemOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, int64(2), problems[0].Order.ID)
}

func TestResolve_DiscountMath(t *testing.T) {
	store := memstore.New()
	order := newOrder(1, domain.StatusPending, line(1, "Olive Tree", 4, 300))
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1200)))
	store.PutOrder(order)
	res := newResolution(store, &fakeCourier{})

	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1,
		Kind:    usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{
			Mode:               usecase.CompensationDiscount,
			DiscountPercentage: decimal.NewFromInt(25),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Order.TotalAmount.Equal(decimal.NewFromInt(900)),
		"got %s", out.Order.TotalAmount)
	assert.Equal(t, fixedNow, out.Order.UpdatedAt)

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestResolve_DiscountBounds(t *testing.T) {
	store := memstore.New()
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Olive Tree", 4, 300)))
	res := newResolution(store, &fakeCourier{})

	for _, pct := range []int64{0, -10, 150} {
		_, err := res.Resolve(context.Background(), usecase.RemedyRequest{
			OrderID: 1,
			Kind:    usecase.RemedyCompensate,
			Compensation: &usecase.CompensationParams{
				Mode:               usecase.CompensationDiscount,
				DiscountPercentage: decimal.NewFromInt(pct),
			},
		})
		var ve *usecase.ValidationError
		require.ErrorAs(t, err, &ve, "pct=%d", pct)
	}

	// 100 is the inclusive upper bound.
	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1,
		Kind:    usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{
			Mode:               usecase.CompensationDiscount,
			DiscountPercentage: decimal.NewFromInt(100),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Order.TotalAmount.IsZero())
}

func TestResolve_DiscountRoundsToCurrencyPrecision(t *testing.T) {
	store := memstore.New()
	order := newOrder(1, domain.StatusPending, line(1, "Fern", 1, 100))
	store.PutOrder(order)
	res := newResolution(store, &fakeCourier{})

	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1,
		Kind:    usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{
			Mode:               usecase.CompensationDiscount,
			DiscountPercentage: decimal.RequireFromString("33.333"),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Order.TotalAmount.Equal(decimal.RequireFromString("66.67")),
		"got %s", out.Order.TotalAmount)
}

type noteFailStore struct {
	*memstore.Store
}

func (s *noteFailStore) SetCompensationNote(ctx context.Context, id int64, note string, at time.Time) error {
	return errors.New("connection reset")
}

func TestResolve_DiscountNoteWriteFailureSurfaces(t *testing.T) {
	store := memstore.New()
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Fern", 2, 600)))

	checker := usecase.NewAvailabilityChecker(store.Ledger())
	tr := usecase.NewTransition(store, checker, store).WithClock(func() time.Time { return fixedNow })
	res := usecase.NewResolution(&noteFailStore{store}, checker, tr, store.Plants(), &fakeCourier{}, decimal.NewFromInt(3000)).
		WithClock(func() time.Time { return fixedNow })

	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1,
		Kind:    usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{
			Mode:               usecase.CompensationDiscount,
			DiscountPercentage: decimal.NewFromInt(25),
		},
	})
	var terr *usecase.TransientError
	require.ErrorAs(t, err, &terr)
}

func TestResolve_PostponeValidation(t *testing.T) {
	store := memstore.New()
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{})

	// missing date
	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{OrderID: 1, Kind: usecase.RemedyPostpone})
	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)

	// past date
	past := fixedNow.AddDate(0, 0, -1)
	_, err = res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyPostpone, NewDeliveryDate: &past,
	})
	require.ErrorAs(t, err, &ve)
}

func TestResolve_PostponeChangesOnlyDeliveryFields(t *testing.T) {
	store := memstore.New()
	order := newOrder(1, domain.StatusPreparing, line(1, "Fern", 2, 9))
	store.PutOrder(order)
	res := newResolution(store, &fakeCourier{})

	future := fixedNow.AddDate(0, 0, 7)
	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyPostpone, NewDeliveryDate: &future, DelayNote: "frost warning",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Order.DeliveryDate)
	assert.True(t, out.Order.DeliveryDate.Equal(future))
	assert.Equal(t, "frost warning", out.Order.DelayReason)
	assert.Equal(t, domain.StatusPreparing, out.Order.Status)
	assert.True(t, out.Order.TotalAmount.Equal(order.TotalAmount))
}

func TestResolve_PostponeAcceptsToday(t *testing.T) {
	store := memstore.New()
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{})

	today := fixedNow
	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyPostpone, NewDeliveryDate: &today,
	})
	require.NoError(t, err)
}

func TestResolve_GiftPublishesInstruction(t *testing.T) {
	store := memstore.New()
	store.PutPlant(&domain.Plant{ID: 7, Name: "Lavender"})
	store.PutOrder(newOrder(1, domain.StatusDelivered, line(1, "Fern", 2, 9)))
	courier := &fakeCourier{}
	res := newResolution(store, courier)

	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1,
		Kind:    usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{
			Mode: usecase.CompensationGift, PlantID: 7, Quantity: 2,
		},
	})
	require.NoError(t, err)
	require.Len(t, courier.sent, 1)
	assert.Equal(t, int64(1), courier.sent[0].OrderID)
	assert.Equal(t, "Lavender", courier.sent[0].PlantName)
	assert.Equal(t, 2, courier.sent[0].Quantity)
	assert.NotEmpty(t, courier.sent[0].InstructionID)
	assert.Equal(t, "gift: 2 x Lavender", out.Order.CompensationNote)

	// Gift never touches lines, billing, or the ledger.
	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.True(t, stored.TotalAmount.Equal(out.Order.TotalAmount))
}

func TestResolve_GiftValidation(t *testing.T) {
	store := memstore.New()
	store.PutPlant(&domain.Plant{ID: 7, Name: "Lavender"})
	store.PutOrder(newOrder(1, domain.StatusDelivered, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{})

	// unknown plant
	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{Mode: usecase.CompensationGift, PlantID: 404, Quantity: 1},
	})
	var nf *usecase.NotFoundError
	require.ErrorAs(t, err, &nf)

	// non-positive quantity
	_, err = res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{Mode: usecase.CompensationGift, PlantID: 7, Quantity: 0},
	})
	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestResolve_GiftCourierFailureIsTransient(t *testing.T) {
	store := memstore.New()
	store.PutPlant(&domain.Plant{ID: 7, Name: "Lavender"})
	store.PutOrder(newOrder(1, domain.StatusDelivered, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{fail: errors.New("broker down")})

	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{
		OrderID: 1, Kind: usecase.RemedyCompensate,
		Compensation: &usecase.CompensationParams{Mode: usecase.CompensationGift, PlantID: 7, Quantity: 1},
	})
	var tr *usecase.TransientError
	require.ErrorAs(t, err, &tr)
}

func TestResolve_CancelRemedy(t *testing.T) {
	store := memstore.New()
	store.PutEntry(&domain.StockEntry{ID: 1, Name: "Fern", QuantityOnHand: 10})
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{})

	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{OrderID: 1, Kind: usecase.RemedyCancel})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, out.Order.Status)

	// Idempotent: cancelling again is a no-op success.
	out, err = res.Resolve(context.Background(), usecase.RemedyRequest{OrderID: 1, Kind: usecase.RemedyCancel})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, out.Order.Status)
}

func TestResolve_ModifyIsDelegated(t *testing.T) {
	store := memstore.New()
	order := newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9))
	store.PutOrder(order)
	res := newResolution(store, &fakeCourier{})

	out, err := res.Resolve(context.Background(), usecase.RemedyRequest{OrderID: 1, Kind: usecase.RemedyModify})
	require.NoError(t, err)
	assert.True(t, out.Delegated)

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, order.UpdatedAt, stored.UpdatedAt)
}

func TestResolve_UnknownRemedy(t *testing.T) {
	store := memstore.New()
	store.PutOrder(newOrder(1, domain.StatusPending, line(1, "Fern", 2, 9)))
	res := newResolution(store, &fakeCourier{})

	_, err := res.Resolve(context.Background(), usecase.RemedyRequest{OrderID: 1, Kind: "refund"})
	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
}
