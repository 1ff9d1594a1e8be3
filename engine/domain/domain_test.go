package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParsePricing(t *testing.T) {
	cases := []struct {
		raw  string
		want Pricing
	}{
		{"Free", PricingFree},
		{"free", PricingFree},
		{" FREE ", PricingFree},
		{"Open Source", PricingFree},
		{"Freemium", PricingFreemium},
		{"Free Trial", PricingFreemium},
		{"Paid", PricingPaid},
		{"Contact for Pricing", PricingPaid},
		{"Subscription", PricingPaid},
		{"", PricingUnknown},
		{"Not Specified", PricingUnknown},
		{"$$$ best deal $$$", PricingUnknown},
	}
	for _, c := range cases {
		if got := ParsePricing(c.raw); got != c.want {
			t.Errorf("ParsePricing(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestParsePricing_AlwaysInEnum(t *testing.T) {
	for _, raw := range []string{"", "garbage", "FREE", "freemium", "pay-as-you-go", "n/a"} {
		if p := ParsePricing(raw); !ValidPricings[p] {
			t.Errorf("ParsePricing(%q) = %q, outside the enum", raw, p)
		}
	}
}

func TestParseFilter_Dedup(t *testing.T) {
	f := ParseFilter([]string{"Free", "free", "Paid"})
	if len(f) != 2 {
		t.Fatalf("expected 2 entries, got %v", f)
	}
	if !f.Contains(PricingFree) || !f.Contains(PricingPaid) {
		t.Errorf("filter missing expected classes: %v", f)
	}
	if f.Contains(PricingFreemium) {
		t.Error("filter should not contain Freemium")
	}
}

func TestPricingFilter_EmptyAllowsAll(t *testing.T) {
	var f PricingFilter
	for p := range ValidPricings {
		if !f.Contains(p) {
			t.Errorf("empty filter should allow %q", p)
		}
	}
}

func TestValidateRecord(t *testing.T) {
	ok := ToolRecord{Name: "ToolA", Pricing: PricingFree}
	if err := ValidateRecord(ok); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	noName := ToolRecord{Name: "  ", Pricing: PricingFree}
	if err := ValidateRecord(noName); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty name, got %v", err)
	}

	badPricing := ToolRecord{Name: "ToolA", Pricing: Pricing("cheap")}
	if err := ValidateRecord(badPricing); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for out-of-enum pricing, got %v", err)
	}
}

func TestValidateDocument(t *testing.T) {
	doc := Document{
		ID:   "abc",
		Text: "Tool Name: ToolA",
		Meta: DocMeta{Name: "ToolA", Pricing: PricingFree},
	}
	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	doc.Meta.Pricing = ""
	if err := ValidateDocument(doc); err == nil {
		t.Error("expected error for empty pricing")
	}
}

func TestValidateQuestion(t *testing.T) {
	if err := ValidateQuestion("best free image tools"); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}
	if err := ValidateQuestion("   "); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for blank question, got %v", err)
	}
	if err := ValidateQuestion(strings.Repeat("x", 5000)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for oversized question, got %v", err)
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	err := NewValidationError("field", "value", ErrInvalidArgument)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("ValidationError should unwrap to its sentinel")
	}
	if !strings.Contains(err.Error(), "field") {
		t.Errorf("error text should mention the field: %s", err.Error())
	}
}
