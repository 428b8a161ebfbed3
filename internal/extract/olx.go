package extract

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

// Olx files the gearbox under the drivetrain field and the model under type.
var olxParameters = labelTable{
	labelTag: "th",
	valueSel: "td.value",
	fields: []labelField{
		{"Kolor", setColor},
		{"Kraj pochodzenia", setCountry},
		{"Liczba miejsc", setSeatCount},
		{"Moc silnika", setPower},
		{"Skrzynia biegów", setDrivetrain},
		{"Poj. silnika", setEngineCapacity},
		{"Przebieg", setMileage},
		{"Paliwo", setFuelType},
		{"Rok produkcji", setProductionYear},
		{"Stan techniczny", setDamaged},
		{"Typ nadwozia", setBodyStyle},
		{"Marka", setBrand},
		{"Model", setType},
	},
}

var olxTrackingScript = regexp.MustCompile(`var trackingData.*siteUrl`)

type olxExtractor struct {
	logger *zap.Logger
}

func (e *olxExtractor) Extract(document string) (*domain.Offer, error) {
	doc, err := parse(document)
	if err != nil {
		return nil, err
	}

	offer := domain.NewOffer()
	offer.Model = ""
	olxParameters.fill(doc.Find(".details.fixed.marginbott20.margintop5.full"), offer, e.logger, nil)

	script, ok := scriptContaining(doc, olxTrackingScript.MatchString)
	if !ok {
		return nil, domain.Structural("trackingData script")
	}
	tracking, err := decodeBlob(script, `{"$config"`)
	if err != nil {
		return nil, err
	}
	page, ok := tracking.object("pageView")
	if !ok {
		return nil, domain.Structural("pageView")
	}

	price, err := page.require("ad_price")
	if err != nil {
		return nil, err
	}
	offer.SetRawPrice(price)
	if offer.OfferID, err = page.require("ad_id"); err != nil {
		return nil, err
	}
	offer.Currency = page.getOr("price_currency")
	offer.SellerID = page.getOr("seller_id")

	offer.City = page.getOr("city_name")
	offer.Region = page.getOr("region_name")
	offer.RawLocation = offer.City + ", woj. " + offer.Region

	offer.SellerName = textOr(doc.Selection, ".block.brkword.xx-large")
	offer.Title = textOr(doc.Selection, ".offer-titlebox h1")

	Normalize(offer, e.logger)
	return offer, nil
}
