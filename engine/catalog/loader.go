// Package catalog loads the AI tool catalog from its CSV export and renders
// each row into an embeddable document.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
)

// Column headers as they appear in the source CSV. Header names are exact;
// the file is UTF-8.
const (
	colName         = "Name"
	colCategory     = "Category"
	colPrimaryTask  = "Primary Task"
	colDescription  = "Short Description"
	colKeywords     = "Keywords"
	colTechnologies = "Technologies"
	colIndustry     = "Industry"
	colYearFounded  = "Year Founded"
	colCountry      = "Country"
	colWebsite      = "Website"
	colPricing      = "Pricing Model"
)

// requiredColumns must be present for the file to be usable at all.
var requiredColumns = []string{colName, colDescription}

// Load reads the catalog CSV at path. Rows without a Name are skipped, rows
// are deduplicated by name+website, and pricing values are normalized into
// the enum. A missing file or missing required column reports
// domain.ErrDataLoad.
func Load(path string) ([]domain.ToolRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDataLoad, path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses catalog CSV content from r. See Load.
func Read(r io.Reader) ([]domain.ToolRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as empty

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDataLoad, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrDataLoad, req)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []domain.ToolRecord
	seen := make(map[string]bool)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", domain.ErrDataLoad, err)
		}

		name := field(row, colName)
		if name == "" {
			continue
		}

		rec := domain.ToolRecord{
			Name:         name,
			Category:     field(row, colCategory),
			PrimaryTask:  field(row, colPrimaryTask),
			Description:  field(row, colDescription),
			Keywords:     splitList(field(row, colKeywords)),
			Technologies: splitList(field(row, colTechnologies)),
			Industry:     field(row, colIndustry),
			YearFounded:  parseYear(field(row, colYearFounded)),
			Country:      field(row, colCountry),
			Website:      field(row, colWebsite),
			Pricing:      domain.ParsePricing(field(row, colPricing)),
		}

		key := rec.Name + "|" + rec.Website
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", domain.ErrDataLoad)
	}
	return records, nil
}

// splitList splits a comma-separated cell into trimmed, non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseYear returns 0 for anything that is not a plausible year.
func parseYear(s string) int {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2100 {
		return 0
	}
	return y
}
