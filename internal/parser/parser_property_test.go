//go:build property

package parser

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestParseStructureProperties validates invariants of the structure parser
func TestParseStructureProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4217)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Property: parsing is total and the score is always one of the five
	// discrete values
	properties.Property("completeness score is discrete", prop.ForAll(
		func(raw string) bool {
			s := ParseStructure(raw)
			switch s.CompletenessScore {
			case 0, 0.25, 0.5, 0.75, 1.0:
				return s.IsComplete == (s.CompletenessScore >= 0.75)
			}
			return false
		},
		gen.AnyString(),
	))

	// Property: section count never exceeds line count and line numbers
	// are strictly increasing
	properties.Property("sections are ordered by line number", prop.ForAll(
		func(raw string) bool {
			s := ParseStructure(raw)
			if len(s.Sections) > strings.Count(raw, "\n")+1 {
				return false
			}
			for i := 1; i < len(s.Sections); i++ {
				if s.Sections[i].LineNumber <= s.Sections[i-1].LineNumber {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	// Property: parsing the same input twice yields the same outline
	properties.Property("parsing is deterministic", prop.ForAll(
		func(raw string) bool {
			a := ParseStructure(raw)
			b := ParseStructure(raw)
			if len(a.Sections) != len(b.Sections) || a.CompletenessScore != b.CompletenessScore {
				return false
			}
			for i := range a.Sections {
				if a.Sections[i] != b.Sections[i] {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
