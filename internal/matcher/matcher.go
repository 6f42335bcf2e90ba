// Package matcher validates that generated report text conforms to the
// canonical section structure expected by its template. It is pure:
// the same report text and synonym table always produce the same result.
package matcher

import (
	"fmt"
	"time"

	"github.com/harusame/templight/internal/parser"
)

// scorePerSection is the score contribution of each matched canonical
// section.
const scorePerSection = 0.25

// validThreshold is the minimum score a report must reach to count as
// structurally valid. With a 0.25 step size this requires at least 3 of
// the 4 canonical sections. The constant differs from the parser's 0.75
// completeness threshold on purpose; both come from the production
// scoring rules and are numerically equivalent in effect.
const validThreshold = 0.7

// StructuralValidation is the outcome of validating one report against
// the canonical section list.
type StructuralValidation struct {
	TemplateName string    `json:"template_name"`
	Score        float64   `json:"score"`
	Matches      []string  `json:"matches"`
	Issues       []string  `json:"issues"`
	Valid        bool      `json:"valid"`
	ValidatedAt  time.Time `json:"validated_at"`
}

// ValidateStructure checks reportText for each required canonical
// section, accepting any heading whose title contains the canonical name
// or one of its synonyms. Empty report text short-circuits to an invalid
// result with a single issue.
func ValidateStructure(reportText, templateName string, requiredSections []string, synonyms parser.SynonymTable) *StructuralValidation {
	validation := &StructuralValidation{
		TemplateName: templateName,
		Matches:      make([]string, 0, len(requiredSections)),
		Issues:       make([]string, 0),
		ValidatedAt:  time.Now(),
	}

	if reportText == "" {
		validation.Issues = append(validation.Issues, "Report content is empty")
		return validation
	}

	titles := parser.ExtractHeadingTitles(reportText)

	for _, required := range requiredSections {
		matched := ""
		for _, title := range titles {
			if parser.TitleMatches(title, required, synonyms) {
				matched = title
				break
			}
		}
		if matched != "" {
			validation.Matches = append(validation.Matches,
				fmt.Sprintf("Section %q matched by heading %q", required, matched))
			validation.Score += scorePerSection
		} else {
			validation.Issues = append(validation.Issues,
				fmt.Sprintf("Missing required section: %s", required))
		}
	}

	validation.Valid = validation.Score >= validThreshold
	return validation
}
