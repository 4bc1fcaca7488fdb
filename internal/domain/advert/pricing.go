// internal/domain/advert/pricing.go

package advert

import (
	"neighborly/internal/apperror"
)

const (
	// UnitRate is the price of one locality for one hour
	UnitRate = 2.5

	MaxHours = 24
	MaxDays  = 30

	localityDiscountThreshold = 5
	localityDiscount          = 20
	durationDiscountDays      = 2
	durationDiscount          = 30
)

// CalculatePricing prices a run over the given localities. Discount tiers do
// not stack; the locality tier wins when both apply.
func CalculatePricing(localities []string, hours, days int) (Pricing, error) {
	return CalculatePricingAt(UnitRate, localities, hours, days)
}

// CalculatePricingAt is CalculatePricing with a configurable unit rate
func CalculatePricingAt(rate float64, localities []string, hours, days int) (Pricing, error) {
	if err := ValidateDuration(Duration{Hours: hours, Days: days}); err != nil {
		return Pricing{}, err
	}
	unique := UniqueLocalities(localities)
	if len(unique) == 0 {
		return Pricing{}, apperror.Validation(apperror.CodeInvalidPricingInput, "At least one locality is required")
	}

	totalHours := hours + days*24
	base := float64(len(unique)) * float64(totalHours) * rate

	p := Pricing{BasePrice: base}
	switch {
	case len(unique) >= localityDiscountThreshold:
		p.Discount = localityDiscount
		p.DiscountReason = "5+ locations"
	case days >= durationDiscountDays:
		p.Discount = durationDiscount
		p.DiscountReason = "2+ day duration"
	}
	p.FinalPrice = base - base*p.Discount/100
	return p, nil
}

// ValidateDuration checks the hour and day ranges
func ValidateDuration(d Duration) error {
	if d.Hours < 0 || d.Hours > MaxHours {
		return apperror.Validation(apperror.CodeInvalidPricingInput, "Hours must be between 0 and 24")
	}
	if d.Days < 0 || d.Days > MaxDays {
		return apperror.Validation(apperror.CodeInvalidPricingInput, "Days must be between 0 and 30")
	}
	if d.Hours == 0 && d.Days == 0 {
		return apperror.Validation(apperror.CodeInvalidPricingInput, "Duration must be at least 1 hour")
	}
	return nil
}

// UniqueLocalities drops blanks and duplicates, keeping first-seen order
func UniqueLocalities(localities []string) []string {
	seen := make(map[string]struct{}, len(localities))
	out := make([]string, 0, len(localities))
	for _, l := range localities {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
