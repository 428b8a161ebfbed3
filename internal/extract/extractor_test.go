package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/offer-scraper/internal/domain"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func extractFixture(t *testing.T, p domain.Portal, document string) (*domain.Offer, error) {
	t.Helper()
	e, err := New(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	return e.Extract(document)
}

func TestExtractAllegro(t *testing.T) {
	got, err := extractFixture(t, domain.Allegro, fixture(t, "allegro_offer.html"))
	require.NoError(t, err)

	want := &domain.Offer{
		OfferID:        "8123456789",
		SellerID:       "40211",
		SellerName:     "AutoKomis",
		Price:          45900,
		Currency:       "PLN",
		Brand:          "Ford",
		Type:           "Focus",
		Model:          "Mk3",
		BodyStyle:      "Kombi",
		ProductionYear: "2013",
		Mileage:        150000,
		EngineCapacity: "1596",
		Power:          "115",
		FuelType:       "Diesel",
		Color:          "Czarny",
		Drivetrain:     "na przednie koła",
		SeatCount:      domain.Null,
		Country:        "Niemcy",
		Damaged:        domain.No,
		RawLocation:    "Warszawa, woj. mazowieckie",
		City:           "Warszawa",
		Region:         "mazowieckie",
		Title:          "Ford Focus Mk3 1.6 TDCi",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("allegro offer mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractOlx(t *testing.T) {
	got, err := extractFixture(t, domain.Olx, fixture(t, "olx_offer.html"))
	require.NoError(t, err)

	want := &domain.Offer{
		OfferID:        "551234567",
		SellerID:       "qW3rT",
		SellerName:     "Marek",
		Price:          32500,
		Currency:       "PLN",
		Brand:          "Ford",
		Type:           "Focus",
		Model:          "",
		BodyStyle:      "Hatchback",
		ProductionYear: "2014",
		Mileage:        98500,
		EngineCapacity: "1596",
		Power:          domain.Null,
		FuelType:       "Benzyna",
		Color:          "Srebrny",
		Drivetrain:     "Manualna",
		SeatCount:      domain.Null,
		Country:        "Polska",
		Damaged:        "Nieuszkodzony",
		RawLocation:    "Kraków, woj. małopolskie",
		City:           "Kraków",
		Region:         "małopolskie",
		Title:          "Ford Focus 1.6 benzyna 2014",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("olx offer mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractOtomoto(t *testing.T) {
	got, err := extractFixture(t, domain.Otomoto, fixture(t, "otomoto_offer.html"))
	require.NoError(t, err)

	want := &domain.Offer{
		OfferID:        "6071234567",
		SellerID:       "7781",
		SellerName:     "Auto Handel Nowak",
		Price:          54900,
		Currency:       "PLN",
		Brand:          "Ford",
		Type:           "Focus",
		Model:          "Mk3 (2010-2018)",
		BodyStyle:      "Kombi",
		ProductionYear: "2015",
		Mileage:        187000,
		EngineCapacity: "1997",
		Power:          "150",
		FuelType:       "Diesel",
		Color:          "Niebieski",
		Drivetrain:     "Na przednie koła",
		SeatCount:      "5",
		Country:        "Belgia",
		Damaged:        domain.No,
		RawLocation:    "Poznań, woj. wielkopolskie",
		City:           "Poznań",
		Region:         "wielkopolskie",
		Title:          "Ford Focus III 2.0 TDCi Titanium",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("otomoto offer mismatch (-want +got):\n%s", diff)
	}
}

func TestOtomotoAccidentFreeInversion(t *testing.T) {
	doc := fixture(t, "otomoto_offer.html")
	accidentFree := `<span class="offer-params__label">Bezwypadkowy</span><div class="offer-params__value">Tak</div>`

	tests := []struct {
		name        string
		replacement string
		want        string
	}{
		{"accident free", accidentFree, domain.No},
		{"not accident free", strings.Replace(accidentFree, "Tak", "Nie", 1), domain.Yes},
		{"label missing", "", domain.Null},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractFixture(t, domain.Otomoto, strings.Replace(doc, accidentFree, tt.replacement, 1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Damaged)
		})
	}
}

func TestExtractAutoscout24(t *testing.T) {
	got, err := extractFixture(t, domain.AutoScout24, fixture(t, "autoscout24_offer.html"))
	require.NoError(t, err)

	want := &domain.Offer{
		OfferID:        "5c1d2e3f-0000-4a4b-9c9d-112233445566",
		SellerID:       "Hans Müller",
		SellerName:     "Hans Müller",
		Price:          12500,
		Currency:       "EUR",
		Brand:          "Ford",
		Type:           "Focus",
		Model:          "",
		BodyStyle:      "Kombi",
		ProductionYear: "2013",
		Mileage:        142000,
		EngineCapacity: "1560",
		Power:          "115",
		FuelType:       "Diesel",
		Color:          "Szary",
		Drivetrain:     "",
		SeatCount:      domain.Null,
		Country:        "DE",
		Damaged:        domain.Null,
		RawLocation:    "Köln DE",
		City:           "Köln",
		Region:         "",
		Title:          "Ford Focus 1.6 TDCi Trend",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("autoscout24 offer mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoscout24SellerFallback(t *testing.T) {
	doc := fixture(t, "autoscout24_offer.html")

	company := strings.Replace(doc, `<div class="cldt-vendor-contact-box">`,
		`<div class="cldt-vendor-contact-box"><span data-item-name="vendor-company-name"> Auto Import GmbH </span>`, 1)
	got, err := extractFixture(t, domain.AutoScout24, company)
	require.NoError(t, err)
	assert.Equal(t, "Auto Import GmbH", got.SellerName)

	anonymous := strings.Replace(doc, `<span data-item-name="vendor-private-seller-title">Hans Müller</span>`, "", 1)
	got, err = extractFixture(t, domain.AutoScout24, anonymous)
	require.NoError(t, err)
	assert.Equal(t, domain.Null, got.SellerName)
	assert.Equal(t, domain.Null, got.SellerID)
}

func TestAutoscout24MissingMileageLeftAlone(t *testing.T) {
	doc := strings.Replace(fixture(t, "autoscout24_offer.html"), `"stmil":142000,`, "", 1)
	got, err := extractFixture(t, domain.AutoScout24, doc)
	require.NoError(t, err)
	assert.Zero(t, got.Mileage)
	assert.Empty(t, got.Anomalies)
}

func TestExtractStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		portal  domain.Portal
		fixture string
		remove  string
	}{
		{"allegro price", domain.Allegro, "allegro_offer.html", `<meta itemprop="price" content="45900.00">`},
		{"allegro data layer", domain.Allegro, "allegro_offer.html", `"idItem":"8123456789",`},
		{"olx tracking script", domain.Olx, "olx_offer.html", `var trackingData`},
		{"olx offer id", domain.Olx, "olx_offer.html", `"ad_id":"551234567",`},
		{"otomoto ninja script", domain.Otomoto, "otomoto_offer.html", `window.ninjaPV = `},
		{"otomoto price", domain.Otomoto, "otomoto_offer.html", `"ad_price":"54 900",`},
		{"autoscout24 targeting", domain.AutoScout24, "autoscout24_offer.html", `style="display:none;"`},
		{"autoscout24 guid", domain.AutoScout24, "autoscout24_offer.html", `data-classified-guid=" 5c1d2e3f-0000-4a4b-9c9d-112233445566 "`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fixture(t, tt.fixture)
			require.Contains(t, doc, tt.remove)

			_, err := extractFixture(t, tt.portal, strings.Replace(doc, tt.remove, "", 1))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStructural)
		})
	}
}

func TestMissingParametersContainerIsTolerated(t *testing.T) {
	doc := strings.Replace(fixture(t, "olx_offer.html"), "details fixed marginbott20 margintop5 full", "details", 1)
	got, err := extractFixture(t, domain.Olx, doc)
	require.NoError(t, err)

	assert.Equal(t, domain.Null, got.Color)
	assert.Equal(t, domain.Null, got.Brand)
	assert.Equal(t, int64(32500), got.Price)
	// Only the numeric mileage field is audited; missing descriptive labels are not.
	assert.Equal(t, "mileage", got.Anomalies)
	assert.Zero(t, got.Mileage)
}

func TestNewUnknownPortal(t *testing.T) {
	_, err := New(domain.Portal(42), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, domain.ErrUnknownPortal)
}
