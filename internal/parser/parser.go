// Package parser extracts the structural outline of a prompt-template
// document: an optional leading metadata block, the heading outline,
// inline requirement references, and a completeness score over the four
// canonical report sections.
//
// Parsing is total: malformed lines are skipped, never rejected. The
// same document always yields the same TemplateStructure.
package parser

import (
	"strings"
)

// metadataDelimiter opens and closes the optional leading metadata block.
const metadataDelimiter = "---"

// requirementToken marks an inline requirement reference; the text after
// the token is collected verbatim.
const requirementToken = "要件:"

// Section is one heading in the document outline.
type Section struct {
	Level      int    `json:"level"`
	Title      string `json:"title"`
	LineNumber int    `json:"line_number"`
}

// TemplateStructure is the derived outline of a template document.
// It is immutable once computed; the store replaces it wholesale on reload.
type TemplateStructure struct {
	Metadata        map[string]string `json:"metadata"`
	HasMetadata     bool              `json:"has_metadata"`
	Sections        []Section         `json:"sections"`
	RequirementTags []string          `json:"requirement_tags"`

	HasExecutiveSummary bool `json:"has_executive_summary"`
	HasBenefits         bool `json:"has_benefits"`
	HasRisks            bool `json:"has_risks"`
	HasEvidence         bool `json:"has_evidence"`

	// CompletenessScore is the fraction of the four canonical sections
	// present, always one of 0, 0.25, 0.5, 0.75, 1.
	CompletenessScore float64 `json:"completeness_score"`
	IsComplete        bool    `json:"is_complete"`
}

// ParseStructure parses raw template text into its structural outline.
// It never fails; empty or heading-free input yields an empty outline
// with a zero completeness score.
func ParseStructure(rawText string) *TemplateStructure {
	structure := &TemplateStructure{
		Metadata:        make(map[string]string),
		Sections:        make([]Section, 0),
		RequirementTags: make([]string, 0),
	}

	lines := strings.Split(rawText, "\n")
	body := lines
	offset := 0

	if len(lines) > 0 && strings.TrimRight(lines[0], "\r") == metadataDelimiter {
		consumed := parseMetadata(lines[1:], structure)
		if consumed >= 0 {
			structure.HasMetadata = true
			offset = consumed + 2 // opening and closing delimiters
			body = lines[offset:]
		}
	}

	for i, line := range body {
		line = strings.TrimRight(line, "\r")
		lineNumber := offset + i + 1

		if level, title, ok := parseHeading(line); ok {
			structure.Sections = append(structure.Sections, Section{
				Level:      level,
				Title:      title,
				LineNumber: lineNumber,
			})
		}

		if idx := strings.Index(line, requirementToken); idx >= 0 {
			tag := strings.TrimSpace(line[idx+len(requirementToken):])
			if tag != "" {
				structure.RequirementTags = append(structure.RequirementTags, tag)
			}
		}
	}

	titles := make([]string, len(structure.Sections))
	for i, s := range structure.Sections {
		titles[i] = s.Title
	}

	structure.HasExecutiveSummary = anyTitleMatches(titles, SectionExecutiveSummary)
	structure.HasBenefits = anyTitleMatches(titles, SectionBenefits)
	structure.HasRisks = anyTitleMatches(titles, SectionRisks)
	structure.HasEvidence = anyTitleMatches(titles, SectionEvidence)

	present := 0
	for _, ok := range []bool{
		structure.HasExecutiveSummary,
		structure.HasBenefits,
		structure.HasRisks,
		structure.HasEvidence,
	} {
		if ok {
			present++
		}
	}
	structure.CompletenessScore = float64(present) / 4.0
	structure.IsComplete = structure.CompletenessScore >= 0.75

	return structure
}

// parseMetadata consumes key: value lines until the closing delimiter and
// returns the number of lines consumed between the delimiters, or -1 if
// the block never closes (in which case no metadata is recorded).
func parseMetadata(lines []string, structure *TemplateStructure) int {
	collected := make(map[string]string)

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == metadataDelimiter {
			for k, v := range collected {
				structure.Metadata[k] = v
			}
			return i
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		collected[key] = unquote(strings.TrimSpace(value))
	}

	return -1
}

// parseHeading reports whether the line is a heading and returns its
// marker run length and trimmed title.
func parseHeading(line string) (level int, title string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	for level < len(line) && line[level] == '#' {
		level++
	}
	return level, strings.TrimSpace(line[level:]), true
}

// unquote strips one layer of matching surrounding quotes from a value.
func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
