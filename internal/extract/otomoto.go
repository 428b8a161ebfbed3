package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

const accidentFreeLabel = "Bezwypadkowy"

var otomotoParameters = labelTable{
	labelTag: "span",
	valueSel: "div",
	fields: []labelField{
		{"Kolor", setColor},
		{"Kraj pochodzenia", setCountry},
		{"Liczba miejsc", setSeatCount},
		{"Moc", setPower},
		{"Napęd", setDrivetrain},
		{"Pojemność skokowa", setEngineCapacity},
		{"Przebieg", setMileage},
		{"Rodzaj paliwa", setFuelType},
		{"Rok produkcji", setProductionYear},
		{accidentFreeLabel, setDamaged},
		{"Typ", setBodyStyle},
		{"Marka pojazdu", setBrand},
		{"Model pojazdu", setType},
		{"Wersja", setModel},
	},
}

const ninjaMarker = "window.ninjaPV = {"

type otomotoExtractor struct {
	logger *zap.Logger
}

func (e *otomotoExtractor) Extract(document string) (*domain.Offer, error) {
	doc, err := parse(document)
	if err != nil {
		return nil, err
	}

	offer := domain.NewOffer()
	// The portal asks "accident-free?" while the offer records "damaged?".
	otomotoParameters.fill(doc.Find("#parameters"), offer, e.logger, func(label, value string) string {
		if label == accidentFreeLabel {
			return domain.InvertYesNo(value)
		}
		return value
	})

	script, ok := scriptContaining(doc, func(s string) bool { return strings.Contains(s, ninjaMarker) })
	if !ok {
		return nil, domain.Structural("ninjaPV script")
	}
	pv, err := decodeBlob(script, ninjaMarker)
	if err != nil {
		return nil, err
	}

	price, err := pv.require("ad_price")
	if err != nil {
		return nil, err
	}
	offer.SetRawPrice(price)
	if offer.OfferID, err = pv.require("ad_id"); err != nil {
		return nil, err
	}
	offer.Currency = pv.getOr("price_currency")
	offer.SellerID = pv.getOr("seller_id")

	offer.City = pv.getOr("city_name")
	offer.Region = pv.getOr("region_name")
	offer.RawLocation = offer.City + ", woj. " + offer.Region

	if name := doc.Find(".seller-box__seller-name").First(); name.Length() > 0 {
		offer.SellerName = strings.TrimSpace(strings.ReplaceAll(name.Text(), "\n", ""))
	}
	offer.Title = adTitle(document)

	Normalize(offer, e.logger)
	return offer, nil
}

// adTitle reads the headline from the inline `var ad_title='...';` assignment.
func adTitle(document string) string {
	start := strings.Index(document, "var ad_title=")
	if start < 0 {
		return domain.Null
	}
	open := strings.IndexByte(document[start:], '\'')
	if open < 0 {
		return domain.Null
	}
	rest := document[start+open+1:]
	end := strings.Index(rest, "';")
	if end < 0 {
		return domain.Null
	}
	return strings.TrimSpace(rest[:end])
}
