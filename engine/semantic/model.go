package semantic

import (
	pb "github.com/qdrant/go-client/qdrant"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
)

// VectorRecord is one embedded document destined for the index.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Doc       domain.Document
}

// Hit is one similarity-search match.
type Hit struct {
	Doc   domain.Document `json:"doc"`
	Score float32         `json:"score"`
}

// Payload keys. The payload is built from the fixed-shape DocMeta, so these
// are the only keys that ever appear on a point.
const (
	keyContent     = "content"
	keyName        = "name"
	keyCategory    = "category"
	keyPrimaryTask = "primary_task"
	keyPricing     = "pricing"
	keyWebsite     = "website"
	keyCountry     = "country"
)

func str(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// payloadFromDoc flattens a Document into a Qdrant payload.
func payloadFromDoc(doc domain.Document) map[string]*pb.Value {
	return map[string]*pb.Value{
		keyContent:     str(doc.Text),
		keyName:        str(doc.Meta.Name),
		keyCategory:    str(doc.Meta.Category),
		keyPrimaryTask: str(doc.Meta.PrimaryTask),
		keyPricing:     str(string(doc.Meta.Pricing)),
		keyWebsite:     str(doc.Meta.Website),
		keyCountry:     str(doc.Meta.Country),
	}
}

// docFromPayload rebuilds a Document from a point's payload. Pricing goes
// back through ParsePricing so a hand-edited payload can never smuggle an
// out-of-enum value into query results.
func docFromPayload(id string, payload map[string]*pb.Value) domain.Document {
	get := func(key string) string { return payload[key].GetStringValue() }
	return domain.Document{
		ID:   id,
		Text: get(keyContent),
		Meta: domain.DocMeta{
			Name:        get(keyName),
			Category:    get(keyCategory),
			PrimaryTask: get(keyPrimaryTask),
			Pricing:     domain.ParsePricing(get(keyPricing)),
			Website:     get(keyWebsite),
			Country:     get(keyCountry),
		},
	}
}

// pricingFilter builds the hard pre-filter restricting candidates to the
// allowed pricing classes before similarity ranking. Nil when the filter
// is empty.
func pricingFilter(filter domain.PricingFilter) *pb.Filter {
	if filter.Empty() {
		return nil
	}
	classes := make([]string, len(filter))
	for i, p := range filter {
		classes[i] = string(p)
	}
	return &pb.Filter{
		Must: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: keyPricing,
					Match: &pb.Match{
						MatchValue: &pb.Match_Keywords{
							Keywords: &pb.RepeatedStrings{Strings: classes},
						},
					},
				},
			},
		}},
	}
}
