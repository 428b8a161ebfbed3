package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

var allegroParameters = labelTable{
	labelTag: "div",
	suffix:   ":",
	valueSel: "div",
	fields: []labelField{
		{"Kolor", setColor},
		{"Kraj pochodzenia", setCountry},
		{"Liczba miejsc", setSeatCount},
		{"Moc", setPower},
		{"Napęd", setDrivetrain},
		{"Pojemność silnika", setEngineCapacity},
		{"Przebieg", setMileage},
		{"Rodzaj paliwa", setFuelType},
		{"Rok produkcji", setProductionYear},
		{"Uszkodzony", setDamaged},
		{"Nadwozie", setBodyStyle},
	},
}

type allegroExtractor struct {
	logger *zap.Logger
}

func (e *allegroExtractor) Extract(document string) (*domain.Offer, error) {
	doc, err := parse(document)
	if err != nil {
		return nil, err
	}

	offer := domain.NewOffer()
	allegroParameters.fill(doc.Find(`[data-box-name="Parameters"]`), offer, e.logger, nil)

	price, ok := doc.Find(`[itemprop="price"]`).First().Attr("content")
	if !ok {
		return nil, domain.Structural(`itemprop="price"`)
	}
	offer.SetRawPrice(price)
	offer.Currency = doc.Find(`[itemprop="priceCurrency"]`).First().AttrOr("content", domain.Null)

	dataLayer := doc.Find(`[content="index, follow"]`).First().NextAllFiltered("script").First()
	if dataLayer.Length() == 0 {
		return nil, domain.Structural("dataLayer script")
	}
	data, err := decodeBlob(dataLayer.Text(), "")
	if err != nil {
		return nil, err
	}

	// headNavigation is a breadcrumb: ...|...|...|brand|type|model|...
	if nav, ok := data.get("headNavigation"); ok {
		crumbs := strings.Split(nav, "|")
		if len(crumbs) > 5 {
			offer.Brand, offer.Type, offer.Model = crumbs[3], crumbs[4], crumbs[5]
		}
	}

	if offer.OfferID, err = data.require("idItem"); err != nil {
		return nil, err
	}
	offer.Title = data.getOr("offerName")
	offer.SellerName = data.getOr("sellerName")
	offer.SellerID = data.getOr("sellerId")

	e.location(doc, offer)

	Normalize(offer, e.logger)
	return offer, nil
}

func (e *allegroExtractor) location(doc *goquery.Document, offer *domain.Offer) {
	loc := doc.Find(`[data-analytics-interaction-value="LocationShow"]`).First()
	if loc.Length() == 0 {
		loc = doc.Find(`[data-analytics-interaction-value="locationShow"]`).First()
	}
	if loc.Length() == 0 {
		e.logger.Debug("location not found")
		return
	}

	offer.RawLocation = strings.TrimSpace(loc.Text())
	city, region, found := strings.Cut(offer.RawLocation, ", woj. ")
	offer.City = city
	if found {
		offer.Region = region
	}
}
