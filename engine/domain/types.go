// Package domain defines the catalog domain types, the error taxonomy, and
// validation shared by the ingestion and query pipelines. It is the
// validation gate at pipeline entry points.
package domain

// Pricing classifies how a tool is monetised.
type Pricing string

const (
	PricingFree     Pricing = "Free"
	PricingFreemium Pricing = "Freemium"
	PricingPaid     Pricing = "Paid"
	PricingUnknown  Pricing = "Unknown"
)

// ValidPricings is the set of recognised pricing classes.
var ValidPricings = map[Pricing]bool{
	PricingFree: true, PricingFreemium: true,
	PricingPaid: true, PricingUnknown: true,
}

// ToolRecord is one row of the source catalog. Immutable once loaded; its
// lifecycle ends at ingestion, when it becomes a Document.
type ToolRecord struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	PrimaryTask  string   `json:"primary_task"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	YearFounded  int      `json:"year_founded,omitempty"` // 0 when absent
	Country      string   `json:"country,omitempty"`
	Website      string   `json:"website"`
	Pricing      Pricing  `json:"pricing"`
}

// DocMeta is the fixed-shape metadata carried with every indexed document.
// A struct rather than a map so malformed keys cannot leak into query-time
// filtering.
type DocMeta struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	PrimaryTask string  `json:"primary_task"`
	Pricing     Pricing `json:"pricing"`
	Website     string  `json:"website"`
	Country     string  `json:"country,omitempty"`
}

// Document is the rendered, embeddable representation of exactly one
// ToolRecord. Never mutated after ingestion.
type Document struct {
	ID   string  `json:"id"`
	Text string  `json:"text"`
	Meta DocMeta `json:"meta"`
}

// PricingFilter is the set of pricing classes a query is restricted to.
// An empty filter means no restriction.
type PricingFilter []Pricing

// Empty reports whether the filter imposes no restriction.
func (f PricingFilter) Empty() bool { return len(f) == 0 }

// Contains reports whether p is allowed by the filter.
func (f PricingFilter) Contains(p Pricing) bool {
	if f.Empty() {
		return true
	}
	for _, v := range f {
		if v == p {
			return true
		}
	}
	return false
}

// ParseFilter normalizes raw filter values into a deduplicated
// PricingFilter restricted to the enum.
func ParseFilter(raw []string) PricingFilter {
	var out PricingFilter
	seen := map[Pricing]bool{}
	for _, r := range raw {
		p := ParsePricing(r)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
