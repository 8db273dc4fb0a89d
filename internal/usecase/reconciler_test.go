package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/entity"
)

func newTestReconciler(t *testing.T) (*Reconciler, *memStore, *clock) {
	t.Helper()
	store := newMemStore()
	store.retailers["sportsshoes"] = &entity.RetailerState{ID: "sportsshoes", Enabled: true}
	store.retailers["runnersworld"] = &entity.RetailerState{ID: "runnersworld", Enabled: true}
	clk := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	return NewReconciler(memShoes{store}, memPrices{store}, memRetailers{store}, clk.Now), store, clk
}

func TestReconcile_DailyCheapest(t *testing.T) {
	r, store, clk := newTestReconciler(t)
	ctx := context.Background()

	for i, price := range []float64{12.00, 15.00, 9.99, 11.00} {
		clk.Set(time.Date(2024, 5, 10, 9+i, 0, 0, 0, time.UTC))
		saved, err := r.Reconcile(ctx, []entity.ScrapedProduct{scraped("Hoka Clifton 9", price, "https://x/clifton")}, "sportsshoes")
		require.NoError(t, err)
		assert.Equal(t, 1, saved)
	}

	require.Len(t, store.shoes, 1)
	shoe := store.shoeBySlug("hoka-clifton-9")
	require.NotNil(t, shoe)

	rows := memPrices{store}.forShoe(shoe.ID)
	require.Len(t, rows, 1)
	assert.InDelta(t, 9.99, *rows[0].Price, 0.0001)

	clk.Set(time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC))
	_, err := r.Reconcile(ctx, []entity.ScrapedProduct{scraped("Hoka Clifton 9", 20.00, "https://x/clifton")}, "sportsshoes")
	require.NoError(t, err)

	rows = memPrices{store}.forShoe(shoe.ID)
	require.Len(t, rows, 2, "a new calendar day starts a new row")
	assert.InDelta(t, 9.99, *rows[0].Price, 0.0001)
	assert.InDelta(t, 20.00, *rows[1].Price, 0.0001)
}

func TestReconcile_Idempotent(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	batch := []entity.ScrapedProduct{
		scraped("Nike Pegasus 40", 89.99, "https://x/pegasus"),
		scraped("Brooks Ghost 15", 99.99, "https://x/ghost"),
	}

	first, err := r.Reconcile(ctx, batch, "sportsshoes")
	require.NoError(t, err)
	second, err := r.Reconcile(ctx, batch, "sportsshoes")
	require.NoError(t, err)

	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second, "update path still counts as saved")
	assert.Len(t, store.shoes, 2)
	assert.Len(t, store.prices, 2)
}

func TestReconcile_ValidityGate(t *testing.T) {
	r, store, _ := newTestReconciler(t)

	saved, err := r.Reconcile(context.Background(), []entity.ScrapedProduct{
		scraped("Nike Pegasus 40", 89.99, ""),
		scraped("Brooks Ghost 15", 0, "https://x/ghost"),
		scraped("Mystery Runner", 50, "https://x/mystery"),
	}, "sportsshoes")
	require.NoError(t, err)

	assert.Equal(t, 1, saved)
	require.Len(t, store.shoes, 1)
	assert.NotNil(t, store.shoeBySlug("mystery-runner"), "unknown brand is still a brand")
}

func TestReconcile_FirstSlugWins(t *testing.T) {
	r, store, _ := newTestReconciler(t)

	saved, err := r.Reconcile(context.Background(), []entity.ScrapedProduct{
		scraped("Saucony Endorphin Speed 4", 120, "https://x/a"),
		scraped("Saucony Endorphin Speed 4 Running Shoes", 80, "https://x/b"),
	}, "sportsshoes")
	require.NoError(t, err)

	assert.Equal(t, 1, saved)
	require.Len(t, store.prices, 1)
	assert.InDelta(t, 120, *store.prices[0].Price, 0.0001)
	assert.Equal(t, "https://x/a", store.prices[0].ProductURL)
}

func TestReconcile_SlugCollisionMergesShoes(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()

	a := scraped("New Balance 1080", 150, "https://a/1080")
	b := a
	b.Brand = "Unknown"
	b.ProductURL = "https://b/1080"

	_, err := r.Reconcile(ctx, []entity.ScrapedProduct{a}, "sportsshoes")
	require.NoError(t, err)
	_, err = r.Reconcile(ctx, []entity.ScrapedProduct{b}, "runnersworld")
	require.NoError(t, err)

	require.Len(t, store.shoes, 1)
	assert.Equal(t, "New Balance", store.shoeBySlug("new-balance-1080").Brand)
	assert.Len(t, store.prices, 2, "one ledger row per retailer")
}

func TestReconcile_PerProductFailure(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	store.failCreateSlug = "asics-novablast-4"

	saved, err := r.Reconcile(context.Background(), []entity.ScrapedProduct{
		scraped("Asics Novablast 4", 110, "https://x/nova"),
		scraped("Asics Gel Nimbus 26", 140, "https://x/nimbus"),
	}, "sportsshoes")
	require.NoError(t, err)

	assert.Equal(t, 1, saved)
	assert.Len(t, store.prices, 1)
}

func TestReconcile_UpdatesShoeAndRetailer(t *testing.T) {
	r, store, clk := newTestReconciler(t)
	ctx := context.Background()

	p := scraped("Nike Pegasus 40", 89.99, "https://x/pegasus")
	p.OriginalPrice = PtrTo(129.99)
	_, err := r.Reconcile(ctx, []entity.ScrapedProduct{p}, "sportsshoes")
	require.NoError(t, err)

	shoe := store.shoeBySlug("nike-pegasus-40")
	require.NotNil(t, shoe)
	assert.InDelta(t, 129.99, shoe.ListPrice, 0.0001, "list price is the original price")
	assert.Equal(t, "Nike", shoe.Brand)
	assert.Equal(t, "Pegasus 40", shoe.Model)

	later := clk.Now().Add(2 * time.Hour)
	clk.Set(later)
	p.OriginalPrice = nil
	p.Price = 119.99
	_, err = r.Reconcile(ctx, []entity.ScrapedProduct{p}, "sportsshoes")
	require.NoError(t, err)

	assert.InDelta(t, 119.99, store.shoeBySlug("nike-pegasus-40").ListPrice, 0.0001)
	require.NotNil(t, store.retailers["sportsshoes"].LastScraped)
	assert.True(t, later.Equal(*store.retailers["sportsshoes"].LastScraped))
}

func TestReconcile_Empty(t *testing.T) {
	r, store, _ := newTestReconciler(t)

	saved, err := r.Reconcile(context.Background(), nil, "sportsshoes")
	require.NoError(t, err)
	assert.Zero(t, saved)
	assert.Nil(t, store.retailers["sportsshoes"].LastScraped)
}
