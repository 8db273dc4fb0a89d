package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/entity"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendPriceAlert(ctx context.Context, alert *entity.PriceAlert) bool {
	return m.Called(ctx, alert).Bool(0)
}

func (m *mockSender) SendWelcomeEmail(ctx context.Context, welcome *entity.WelcomeEmail) bool {
	return m.Called(ctx, welcome).Bool(0)
}

func watch(id, userID, shoeID string, threshold *float64) *entity.WatchlistEntry {
	return &entity.WatchlistEntry{
		ID:       id,
		User:     entity.User{ID: userID, Email: userID + "@example.com"},
		Shoe:     entity.Shoe{ID: shoeID, Brand: "Nike", Model: "Pegasus 40", Slug: "nike-pegasus-40"},
		Discount: threshold,
	}
}

func observe(store *memStore, shoeID string, price float64, discount *float64, at time.Time) {
	store.prices = append(store.prices, &entity.PriceObservation{
		ID:                 store.id("price"),
		ShoeID:             shoeID,
		RetailerID:         "sportsshoes",
		Price:              &price,
		DiscountPercentage: discount,
		ObservedAt:         at,
	})
}

func TestMatchAndNotify_Threshold(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	observe(store, "below", 80.16, PtrTo(19.9), now)
	observe(store, "at", 80, PtrTo(20.0), now)
	store.watchlists = []*entity.WatchlistEntry{
		watch("w1", "u1", "below", PtrTo(20.0)),
		watch("w2", "u1", "at", PtrTo(20.0)),
	}

	sender := &mockSender{}
	sender.On("SendPriceAlert", mock.Anything, mock.MatchedBy(func(a *entity.PriceAlert) bool {
		return a.Shoe.ID == "at"
	})).Return(true).Once()

	m := NewAlertMatcher(memWatchlists{store}, memPrices{store}, sender, 10, "https://app.example/")
	summary, err := m.MatchAndNotify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.AlertSummary{Sent: 1, Skipped: 0}, summary)
	sender.AssertExpectations(t)
}

func TestMatchAndNotify_AlertPayload(t *testing.T) {
	store := newMemStore()
	observe(store, "shoe-1", 70, PtrTo(30.0), time.Now().Add(-48*time.Hour))
	observe(store, "shoe-1", 75, PtrTo(25.0), time.Now())
	store.watchlists = []*entity.WatchlistEntry{watch("w1", "u1", "shoe-1", nil)}

	var got *entity.PriceAlert
	sender := &mockSender{}
	sender.On("SendPriceAlert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(*entity.PriceAlert)
	}).Return(true)

	m := NewAlertMatcher(memWatchlists{store}, memPrices{store}, sender, 0, "https://app.example/")
	summary, err := m.MatchAndNotify(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Sent)

	require.NotNil(t, got)
	assert.InDelta(t, 75, got.CurrentPrice, 0.001, "latest observation is used")
	assert.InDelta(t, 100, got.OriginalPrice, 0.001, "original price inferred from the discount")
	assert.InDelta(t, 25, got.DiscountPercentage, 0.001)
	assert.InDelta(t, DefaultDiscountThreshold, got.UserDiscountThreshold, 0.001)
	assert.Equal(t, "https://app.example/shoes/nike-pegasus-40", got.ProductURL)
	assert.Equal(t, "Various", got.Size)
	assert.Equal(t, "Various", got.Color)
	assert.Equal(t, "u1@example.com", got.User.Email)
}

func TestMatchAndNotify_SkipsAndFailures(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	observe(store, "discounted", 50, PtrTo(50.0), now)
	observe(store, "no-discount", 50, nil, now)
	store.failLatest["broken"] = errors.New("connection reset")
	store.prefs["muted"] = &entity.NotificationPreference{UserID: "muted", EmailEnabled: PtrTo(false)}
	store.prefs["loud"] = &entity.NotificationPreference{UserID: "loud", EmailEnabled: PtrTo(true)}
	store.watchlists = []*entity.WatchlistEntry{
		watch("w1", "muted", "discounted", nil),
		watch("w2", "loud", "no-discount", nil),
		watch("w3", "loud", "never-seen", nil),
		watch("w4", "loud", "broken", nil),
		watch("w5", "loud", "discounted", nil),
		watch("w6", "nopref", "discounted", nil),
	}

	sender := &mockSender{}
	sender.On("SendPriceAlert", mock.Anything, mock.MatchedBy(func(a *entity.PriceAlert) bool {
		return a.User.ID == "loud"
	})).Return(false).Once()
	sender.On("SendPriceAlert", mock.Anything, mock.MatchedBy(func(a *entity.PriceAlert) bool {
		return a.User.ID == "nopref"
	})).Return(true).Once()

	m := NewAlertMatcher(memWatchlists{store}, memPrices{store}, sender, 10, "https://app.example")
	summary, err := m.MatchAndNotify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.AlertSummary{Sent: 1, Skipped: 1}, summary)
	sender.AssertExpectations(t)
}

func TestMatchAndNotify_RepeatsEveryRun(t *testing.T) {
	store := newMemStore()
	observe(store, "shoe-1", 50, PtrTo(50.0), time.Now())
	store.watchlists = []*entity.WatchlistEntry{watch("w1", "u1", "shoe-1", PtrTo(20.0))}

	sender := &mockSender{}
	sender.On("SendPriceAlert", mock.Anything, mock.Anything).Return(true).Twice()

	m := NewAlertMatcher(memWatchlists{store}, memPrices{store}, sender, 10, "https://app.example")
	for i := 0; i < 2; i++ {
		summary, err := m.MatchAndNotify(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Sent)
	}
	sender.AssertExpectations(t)
}
