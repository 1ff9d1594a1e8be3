package catalog

import (
	"fmt"
	"strings"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/google/uuid"
)

// Render converts a ToolRecord into the Document stored in the vector
// index: a human-readable composite text plus fixed-shape metadata used
// for filtering and citation.
func Render(rec domain.ToolRecord) domain.Document {
	var b strings.Builder
	section := func(label, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	section("Tool Name", rec.Name)
	section("Category", rec.Category)
	section("Primary Task", rec.PrimaryTask)
	section("Description", rec.Description)
	section("Keywords", strings.Join(rec.Keywords, ", "))
	section("Technologies", strings.Join(rec.Technologies, ", "))
	section("Industry", rec.Industry)
	section("Pricing", string(rec.Pricing))
	section("Country", rec.Country)
	if rec.YearFounded > 0 {
		section("Year Founded", fmt.Sprintf("%d", rec.YearFounded))
	}
	section("Website", rec.Website)

	return domain.Document{
		ID:   DocID(rec),
		Text: b.String(),
		Meta: domain.DocMeta{
			Name:        rec.Name,
			Category:    rec.Category,
			PrimaryTask: rec.PrimaryTask,
			Pricing:     rec.Pricing,
			Website:     rec.Website,
			Country:     rec.Country,
		},
	}
}

// RenderAll renders every record in order.
func RenderAll(records []domain.ToolRecord) []domain.Document {
	docs := make([]domain.Document, len(records))
	for i, rec := range records {
		docs[i] = Render(rec)
	}
	return docs
}

// DocID derives a deterministic document ID from the tool's identity, so
// reingesting the same catalog produces the same point IDs and rebuilds
// are idempotent.
func DocID(rec domain.ToolRecord) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec.Name+"|"+rec.Website)).String()
}
