package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names expected in a knowledge-base workbook.
const (
	sheetConcepts      = "Concepts"
	sheetRelationships = "Relationships"
)

// LoadXLSX reads a knowledge-base definition from a clinician-authored
// workbook. The Concepts sheet has columns id, name, type, category,
// severity, aliases (semicolon-separated, in rank order), description; the
// Relationships sheet has source, target, type, weight, evidence,
// description. Row one of each sheet is a header and is skipped.
func LoadXLSX(path string) (Definition, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var def Definition

	conceptRows, err := f.GetRows(sheetConcepts)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: missing %q sheet", ErrInvalidDefinition, sheetConcepts)
	}
	for i, row := range conceptRows {
		if i == 0 || len(row) == 0 {
			continue
		}
		c := Concept{
			ID:          cell(row, 0),
			Name:        cell(row, 1),
			Type:        cell(row, 2),
			Category:    cell(row, 3),
			Severity:    cell(row, 4),
			Description: cell(row, 6),
		}
		if aliases := cell(row, 5); aliases != "" {
			for _, a := range strings.Split(aliases, ";") {
				if a = strings.TrimSpace(a); a != "" {
					c.Aliases = append(c.Aliases, a)
				}
			}
		}
		def.Concepts = append(def.Concepts, c)
	}

	relRows, err := f.GetRows(sheetRelationships)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: missing %q sheet", ErrInvalidDefinition, sheetRelationships)
	}
	for i, row := range relRows {
		if i == 0 || len(row) == 0 {
			continue
		}
		weight, err := strconv.ParseFloat(cell(row, 3), 64)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: relationship row %d has non-numeric weight %q", ErrInvalidDefinition, i+1, cell(row, 3))
		}
		def.Relationships = append(def.Relationships, Relationship{
			Source:      cell(row, 0),
			Target:      cell(row, 1),
			Type:        cell(row, 2),
			Weight:      weight,
			Evidence:    cell(row, 4),
			Description: cell(row, 5),
		})
	}

	return def, nil
}

// cell returns the trimmed value at index i, or "" when the row is short
// (excelize omits trailing empty cells).
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
