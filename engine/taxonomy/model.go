package taxonomy

import "github.com/AdvisorAI/advisor-mvp/engine/domain"

// Tool is a catalog entry as stored in the graph.
type Tool struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Industry string `json:"industry,omitempty"`
	Pricing  string `json:"pricing,omitempty"`
	Website  string `json:"website,omitempty"`
}

// FromDocument projects an indexed document into its graph node.
func FromDocument(doc domain.Document) Tool {
	return Tool{
		ID:       doc.ID,
		Name:     doc.Meta.Name,
		Category: doc.Meta.Category,
		Pricing:  string(doc.Meta.Pricing),
		Website:  doc.Meta.Website,
	}
}

func toolToProps(t Tool) map[string]any {
	return map[string]any{
		"name":     t.Name,
		"category": t.Category,
		"industry": t.Industry,
		"pricing":  t.Pricing,
		"website":  t.Website,
	}
}

func toolFromProps(props map[string]any) Tool {
	get := func(key string) string {
		if v, ok := props[key].(string); ok {
			return v
		}
		return ""
	}
	return Tool{
		ID:       get("id"),
		Name:     get("name"),
		Category: get("category"),
		Industry: get("industry"),
		Pricing:  get("pricing"),
		Website:  get("website"),
	}
}
