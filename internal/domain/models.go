package domain

import (
	"fmt"
	"strings"
)

// Null marks a descriptive field whose label could not be found in the source document.
const Null = "NULL"

// Portal identifies one of the supported vehicle marketplaces.
type Portal int

const (
	Allegro Portal = iota + 1
	Olx
	Otomoto
	AutoScout24
)

// Portals lists every supported marketplace in a stable order.
var Portals = []Portal{Allegro, Olx, Otomoto, AutoScout24}

// Key is the lowercase identifier used in configuration and on the command line.
func (p Portal) Key() string {
	switch p {
	case Allegro:
		return "allegro"
	case Olx:
		return "olx"
	case Otomoto:
		return "otomoto"
	case AutoScout24:
		return "autoscout24"
	}
	return "unknown"
}

// String returns the display name stored in the portals table.
func (p Portal) String() string {
	switch p {
	case Allegro:
		return "Allegro"
	case Olx:
		return "Olx"
	case Otomoto:
		return "Otomoto"
	case AutoScout24:
		return "Autoscout24"
	}
	return "Unknown"
}

// ParsePortal resolves a portal from its key or display name, case-insensitively.
func ParsePortal(s string) (Portal, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Portals {
		if p.Key() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPortal, s)
}

// Offer is a single vehicle offer extracted from a detail document.
//
// Descriptive fields hold the text found in the document, or Null when the
// label was absent. Price and Mileage are only meaningful after normalization
// has consumed RawPrice and RawMileage.
type Offer struct {
	OfferID    string
	SellerID   string
	SellerName string

	Price    int64
	Currency string

	Brand          string
	Type           string
	Model          string
	BodyStyle      string
	ProductionYear string
	Mileage        int64
	EngineCapacity string
	Power          string
	FuelType       string
	Color          string
	Drivetrain     string
	SeatCount      string
	Country        string
	Damaged        string

	RawLocation string
	City        string
	Region      string

	Title     string
	Anomalies string

	// RawPrice and RawMileage hold textual source values awaiting normalization.
	// nil means the source supplied nothing textual and the numeric field is left alone.
	RawPrice   *string
	RawMileage *string
}

// NewOffer returns an offer with every descriptive field set to Null.
func NewOffer() *Offer {
	return &Offer{
		OfferID:        Null,
		SellerID:       Null,
		SellerName:     Null,
		Currency:       Null,
		Brand:          Null,
		Type:           Null,
		Model:          Null,
		BodyStyle:      Null,
		ProductionYear: Null,
		EngineCapacity: Null,
		Power:          Null,
		FuelType:       Null,
		Color:          Null,
		Drivetrain:     Null,
		SeatCount:      Null,
		Country:        Null,
		Damaged:        Null,
		RawLocation:    Null,
		City:           Null,
		Region:         Null,
		Title:          Null,
	}
}

func (o *Offer) SetRawPrice(v string) {
	o.RawPrice = &v
}

func (o *Offer) SetRawMileage(v string) {
	o.RawMileage = &v
}

// AnomalyFields splits Anomalies back into field names.
func (o *Offer) AnomalyFields() []string {
	if o.Anomalies == "" {
		return nil
	}
	return strings.Split(o.Anomalies, ", ")
}

// Yes/no values as used by the portals' condition labels.
const (
	Yes = "Tak"
	No  = "Nie"
)

// InvertYesNo flips a yes/no answer; anything else, including Null, is returned unchanged.
func InvertYesNo(v string) string {
	switch v {
	case Yes:
		return No
	case No:
		return Yes
	}
	return v
}

// Stats summarizes the stored offers.
type Stats struct {
	Campaigns  int64  `json:"campaigns"`
	Offers     int64  `json:"offers"`
	Portals    int64  `json:"portals"`
	MinYear    *int64 `json:"min_production_year,omitempty"`
	MaxYear    *int64 `json:"max_production_year,omitempty"`
	MinPrice   *int64 `json:"min_price,omitempty"`
	MaxPrice   *int64 `json:"max_price,omitempty"`
	MinMileage *int64 `json:"min_mileage,omitempty"`
	MaxMileage *int64 `json:"max_mileage,omitempty"`
}

// CampaignRequest is the payload for starting a campaign over the API.
type CampaignRequest struct {
	Portal   string `json:"portal"`
	Category string `json:"category"`
	Quota    int    `json:"quota"`
	YearFrom int    `json:"year_from"`
	YearTo   int    `json:"year_to"`
}

// Report describes the outcome of processing one category.
type Report struct {
	Portal   Portal
	Category string
	Links    int
	Stored   int
	// Aborted is the error that stopped the batch early, if any.
	Aborted error
}
