package extract

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

const (
	anomalyPrice   = "price"
	anomalyMileage = "mileage"
)

var (
	spaceStripper  = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")
	engineStripper = strings.NewReplacer("CM3", "", "CM³", "", " ", "", "\u00a0", "")
	powerStripper  = strings.NewReplacer("KM", "", " ", "", "\u00a0", "")
)

// Normalize coerces the raw price and mileage into integers and strips units
// from engine capacity and power. It runs once per offer, after extraction.
func Normalize(o *domain.Offer, logger *zap.Logger) {
	var anomalies []string

	if o.RawPrice != nil {
		price, ok := parseAmount(*o.RawPrice)
		if !ok {
			logger.Info("price not numeric", zap.String("offer_id", o.OfferID), zap.String("raw", *o.RawPrice))
			anomalies = append(anomalies, anomalyPrice)
		}
		o.Price = price
		o.RawPrice = nil
	}

	if o.RawMileage != nil {
		raw := strings.ReplaceAll(strings.ToUpper(spaceStripper.Replace(*o.RawMileage)), "KM", "")
		mileage, ok := parseAmount(raw)
		if !ok {
			logger.Info("mileage not numeric", zap.String("offer_id", o.OfferID), zap.String("raw", *o.RawMileage))
			anomalies = append(anomalies, anomalyMileage)
		}
		o.Mileage = mileage
		o.RawMileage = nil
	}

	// Engine capacity and power are not tracked as anomalies even when the
	// stripped text is not numeric; only price and mileage are audited.
	o.EngineCapacity = engineStripper.Replace(strings.ToUpper(o.EngineCapacity))
	o.Power = powerStripper.Replace(strings.ToUpper(o.Power))

	o.Anomalies = strings.Join(anomalies, ", ")
}

// parseAmount parses a decimal amount with optional grouping spaces and a
// decimal comma, truncating the fraction. It returns 0, false on failure.
func parseAmount(raw string) (int64, bool) {
	s := strings.ReplaceAll(spaceStripper.Replace(raw), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
