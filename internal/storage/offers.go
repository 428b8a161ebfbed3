package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/offer-scraper/internal/domain"
)

// offerColumns is the column order used by both sinks when inserting offers.
var offerColumns = []string{
	"campaign_id", "offer_id", "seller_id", "seller_name", "title",
	"price", "currency", "brand", "type", "model", "body_style",
	"production_year", "mileage", "engine_capacity", "power", "fuel_type",
	"color", "drivetrain", "seat_count", "country", "damaged",
	"raw_location", "city", "region", "anomalies",
}

func insertOfferSQL(placeholder func(i int) string) string {
	marks := make([]string, len(offerColumns))
	for i := range offerColumns {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO offers (%s) VALUES (%s)",
		strings.Join(offerColumns, ", "), strings.Join(marks, ", "))
}

func offerArgs(campaignID int64, o *domain.Offer) []any {
	return []any{
		campaignID, o.OfferID, o.SellerID, text(o.SellerName), text(o.Title),
		o.Price, text(o.Currency), text(o.Brand), text(o.Type), text(o.Model), text(o.BodyStyle),
		integer(o.ProductionYear), o.Mileage, integer(o.EngineCapacity), integer(o.Power), text(o.FuelType),
		text(o.Color), text(o.Drivetrain), integer(o.SeatCount), text(o.Country), text(o.Damaged),
		text(o.RawLocation), text(o.City), text(o.Region), o.Anomalies,
	}
}

func validateOffer(o *domain.Offer) error {
	if missing(o.OfferID) {
		return fmt.Errorf("%w: offer_id", domain.ErrMissingRequired)
	}
	if missing(o.SellerID) {
		return fmt.Errorf("%w: seller_id for offer %s", domain.ErrMissingRequired, o.OfferID)
	}
	return nil
}

func missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == domain.Null
}

// text maps the Null sentinel to SQL NULL.
func text(s string) *string {
	if s == domain.Null {
		return nil
	}
	return &s
}

// integer stores numeric-as-string fields as integers, NULL when not numeric.
func integer(s string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
