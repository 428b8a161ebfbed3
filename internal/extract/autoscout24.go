package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

var autoscout24Details = labelTable{
	labelTag: "dt",
	valueSel: "dd",
	fields: []labelField{
		{"Kolor zewnętrzny", setColor},
		{"Typ nadwozia", setBodyStyle},
		{"Miejsca siedzące", setSeatCount},
	},
}

type autoscout24Extractor struct {
	logger *zap.Logger
}

// Extract reads an Autoscout24 detail page. Prices are always quoted in euro
// and the seller has no separate id, so the seller name doubles as one.
func (e *autoscout24Extractor) Extract(document string) (*domain.Offer, error) {
	doc, err := parse(document)
	if err != nil {
		return nil, err
	}

	targeting := doc.Find(`s24-ad-targeting[style="display:none;"]`).First()
	if targeting.Length() == 0 {
		return nil, domain.Structural("s24-ad-targeting")
	}
	params, err := decodeBlob(targeting.Text(), "")
	if err != nil {
		return nil, err
	}

	offer := domain.NewOffer()
	price, err := params.require("cost")
	if err != nil {
		return nil, err
	}
	offer.SetRawPrice(price)
	offer.Currency = "EUR"
	offer.FuelType = fuelName(params.getOr("fuel"))

	offer.Power, _ = params.get("sthp")
	offer.EngineCapacity, _ = params.get("stccm")
	if mileage, ok := params.get("stmil"); ok {
		offer.SetRawMileage(mileage)
	}
	offer.ProductionYear = params.getOr("styea")
	offer.Brand = params.getOr("stmak")
	offer.Type = params.getOr("stmod")

	autoscout24Details.fill(doc.Find(".cldt-categorized-data.cldt-data-section.sc-pull-right").First(), offer, e.logger,
		func(_, value string) string { return strings.TrimSpace(strings.ReplaceAll(value, "\n", "")) })

	guid, ok := doc.Find(".btn-watchlist.cldt-action-icon").First().Attr("data-classified-guid")
	if !ok || strings.TrimSpace(guid) == "" {
		return nil, domain.Structural("data-classified-guid")
	}
	offer.OfferID = strings.TrimSpace(guid)

	offer.SellerName = e.sellerName(doc)
	offer.SellerID = offer.SellerName

	city := vendorItem(doc, "vendor-contact-city")
	country := vendorItem(doc, "vendor-contact-country")
	offer.RawLocation = city + " " + country
	offer.City = city
	// The page has no origin-country parameter; the seller's contact country stands in for it.
	offer.Country = country
	offer.Region = ""

	offer.Title = textOr(doc.Selection, `div[data-type="title"]`)
	offer.Drivetrain = ""
	offer.Model = ""

	Normalize(offer, e.logger)
	return offer, nil
}

func (e *autoscout24Extractor) sellerName(doc *goquery.Document) string {
	for _, item := range []string{"vendor-company-name", "vendor-private-seller-title"} {
		if s := doc.Find(`[data-item-name="` + item + `"]`).First(); s.Length() > 0 {
			return strings.TrimSpace(s.Text())
		}
		e.logger.Debug("seller selector not found", zap.String("item", item))
	}
	return domain.Null
}

func vendorItem(doc *goquery.Document, item string) string {
	return strings.TrimSpace(doc.Find(`[data-item-name="` + item + `"]`).First().Text())
}

// fuelName maps the first letter of the fuel code to a display name.
func fuelName(code string) string {
	switch {
	case strings.HasPrefix(code, "D"):
		return "Diesel"
	case strings.HasPrefix(code, "B"):
		return "Benzyna"
	}
	return domain.Null
}
