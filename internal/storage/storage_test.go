package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/offer-scraper/internal/domain"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func sampleOffer(id string) *domain.Offer {
	o := domain.NewOffer()
	o.OfferID = id
	o.SellerID = "seller-1"
	o.Price = 45900
	o.Mileage = 150000
	o.ProductionYear = "2015"
	o.EngineCapacity = "1598"
	o.Power = "NULL"
	return o
}

func TestSQLiteCampaignAndOffers(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	first, err := store.CreateCampaign(ctx, domain.Otomoto, "scraper")
	require.NoError(t, err)
	second, err := store.CreateCampaign(ctx, domain.Otomoto, "scraper")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, store.SaveOffer(ctx, first, sampleOffer("A1")))
	cheap := sampleOffer("A2")
	cheap.Price = 0
	cheap.Anomalies = "price"
	require.NoError(t, store.SaveOffer(ctx, first, cheap))

	offers, err := store.Offers(ctx, first)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "A1", offers[0].OfferID)
	assert.Equal(t, int64(150000), offers[0].Mileage)
	assert.Equal(t, "price", offers[1].Anomalies)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Campaigns)
	assert.Equal(t, int64(2), stats.Offers)
	assert.Equal(t, int64(1), stats.Portals)
	require.NotNil(t, stats.MaxPrice)
	assert.Equal(t, int64(45900), *stats.MaxPrice)
	require.NotNil(t, stats.MinYear)
	assert.Equal(t, int64(2015), *stats.MinYear)
}

func TestSQLiteRejectsDuplicateAndIncomplete(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	id, err := store.CreateCampaign(ctx, domain.Olx, "scraper")
	require.NoError(t, err)

	require.NoError(t, store.SaveOffer(ctx, id, sampleOffer("X")))
	err = store.SaveOffer(ctx, id, sampleOffer("X"))
	assert.True(t, errors.Is(err, domain.ErrDuplicateOffer), err)

	noSeller := sampleOffer("Y")
	noSeller.SellerID = domain.Null
	err = store.SaveOffer(ctx, id, noSeller)
	assert.True(t, errors.Is(err, domain.ErrMissingRequired), err)
}

func TestSQLiteEmptyStats(t *testing.T) {
	stats, err := openTestDB(t).Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Offers)
	assert.Nil(t, stats.MinPrice)
}

func TestOfferArgsMapsNullSentinel(t *testing.T) {
	args := offerArgs(7, sampleOffer("Z"))
	require.Len(t, args, len(offerColumns))

	assert.Equal(t, int64(7), args[0])
	assert.Nil(t, args[3].(*string), "seller_name")
	assert.Equal(t, int64(2015), *args[11].(*int64), "production_year")
	assert.Nil(t, args[14].(*int64), "power")
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir(), zaptest.NewLogger(t))

	require.NoError(t, store.Store(ctx, "offers/olx", "offer_2.html", "<b>two</b>"))
	require.NoError(t, store.Store(ctx, "offers/olx", "offer_1.html", "<b>one</b>"))

	names, err := store.List(ctx, "offers/olx")
	require.NoError(t, err)
	assert.Equal(t, []string{"offer_1.html", "offer_2.html"}, names)

	doc, err := store.Load(ctx, "offers/olx", "offer_2.html")
	require.NoError(t, err)
	assert.Equal(t, "<b>two</b>", doc)

	_, err = store.Load(ctx, "offers/olx", "offer_3.html")
	assert.Error(t, err)
}
