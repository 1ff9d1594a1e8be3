package taxonomy

import (
	"testing"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
)

func TestFromDocument(t *testing.T) {
	doc := domain.Document{
		ID: "doc-1",
		Meta: domain.DocMeta{
			Name:     "ToolA",
			Category: "Image",
			Pricing:  domain.PricingFree,
			Website:  "https://toola.example",
		},
	}
	tool := FromDocument(doc)
	if tool.ID != "doc-1" || tool.Name != "ToolA" || tool.Category != "Image" || tool.Pricing != "Free" {
		t.Errorf("unexpected projection: %+v", tool)
	}
}

func TestToolProps_RoundTrip(t *testing.T) {
	tool := Tool{
		ID:       "doc-1",
		Name:     "ToolA",
		Category: "Image",
		Industry: "Media",
		Pricing:  "Free",
		Website:  "https://toola.example",
	}
	props := toolToProps(tool)
	props["id"] = tool.ID
	got := toolFromProps(props)
	if got != tool {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tool)
	}
}

func TestToolFromProps_IgnoresWrongTypes(t *testing.T) {
	got := toolFromProps(map[string]any{"name": 42, "category": "Image"})
	if got.Name != "" || got.Category != "Image" {
		t.Errorf("unexpected tool: %+v", got)
	}
}
