package extract

import "github.com/user/offer-scraper/internal/domain"

func setColor(o *domain.Offer, v string)          { o.Color = v }
func setCountry(o *domain.Offer, v string)        { o.Country = v }
func setSeatCount(o *domain.Offer, v string)      { o.SeatCount = v }
func setPower(o *domain.Offer, v string)          { o.Power = v }
func setDrivetrain(o *domain.Offer, v string)     { o.Drivetrain = v }
func setEngineCapacity(o *domain.Offer, v string) { o.EngineCapacity = v }
func setMileage(o *domain.Offer, v string)        { o.SetRawMileage(v) }
func setFuelType(o *domain.Offer, v string)       { o.FuelType = v }
func setProductionYear(o *domain.Offer, v string) { o.ProductionYear = v }
func setDamaged(o *domain.Offer, v string)        { o.Damaged = v }
func setBodyStyle(o *domain.Offer, v string)      { o.BodyStyle = v }
func setBrand(o *domain.Offer, v string)          { o.Brand = v }
func setType(o *domain.Offer, v string)           { o.Type = v }
func setModel(o *domain.Offer, v string)          { o.Model = v }
