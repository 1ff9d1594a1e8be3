package domain

import "strings"

// pricingAliases maps lowercased raw catalog values to pricing classes.
// The source CSV is user-submitted and inconsistent; anything not listed
// here normalizes to Unknown.
var pricingAliases = map[string]Pricing{
	"free":                PricingFree,
	"free tool":           PricingFree,
	"open source":         PricingFree,
	"freemium":            PricingFreemium,
	"free + paid":         PricingFreemium,
	"free trial":          PricingFreemium,
	"paid":                PricingPaid,
	"premium":             PricingPaid,
	"subscription":        PricingPaid,
	"contact for pricing": PricingPaid,
	"unknown":             PricingUnknown,
	"not specified":       PricingUnknown,
}

// ParsePricing normalizes a raw pricing value to one of the four pricing
// classes. It never returns a value outside the enum.
func ParsePricing(raw string) Pricing {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return PricingUnknown
	}
	if p, ok := pricingAliases[s]; ok {
		return p
	}
	return PricingUnknown
}
