package parser

import (
	"strings"

	"golang.org/x/text/width"
)

// The four canonical report sections every generated report is expected
// to contain.
const (
	SectionExecutiveSummary = "Executive Summary"
	SectionBenefits         = "Benefits"
	SectionRisks            = "Risks"
	SectionEvidence         = "Evidence"
)

// CanonicalSections lists the canonical sections in report order.
func CanonicalSections() []string {
	return []string{
		SectionExecutiveSummary,
		SectionBenefits,
		SectionRisks,
		SectionEvidence,
	}
}

// SynonymTable maps a canonical section name to the localized or
// alternate title substrings accepted as a match for it.
type SynonymTable map[string][]string

// DefaultSynonyms returns the built-in synonym table covering the
// Japanese and English forms seen in production report templates.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		SectionExecutiveSummary: {"概要", "サマリー", "要約", "overview", "summary"},
		SectionBenefits:         {"メリット", "利点", "効果", "benefit", "advantage"},
		SectionRisks:            {"リスク", "懸念", "デメリット", "risk", "concern"},
		SectionEvidence:         {"エビデンス", "根拠", "データ", "実績", "evidence", "data"},
	}
}

// Merge overlays other onto the table, replacing the synonym list of any
// canonical name present in other. The receiver is not modified.
func (t SynonymTable) Merge(other SynonymTable) SynonymTable {
	merged := make(SynonymTable, len(t))
	for name, syns := range t {
		merged[name] = append([]string(nil), syns...)
	}
	for name, syns := range other {
		merged[name] = append([]string(nil), syns...)
	}
	return merged
}

// TitleMatches reports whether a section title matches the canonical
// name or any of its synonyms. Matching is substring-based and
// case-insensitive; full-width and half-width forms are folded so that
// ｻﾏﾘｰ and サマリー compare equal.
func TitleMatches(title, canonical string, synonyms SynonymTable) bool {
	folded := normalizeTitle(title)
	if strings.Contains(folded, normalizeTitle(canonical)) {
		return true
	}
	for _, syn := range synonyms[canonical] {
		if strings.Contains(folded, normalizeTitle(syn)) {
			return true
		}
	}
	return false
}

func anyTitleMatches(titles []string, canonical string) bool {
	synonyms := DefaultSynonyms()
	for _, title := range titles {
		if TitleMatches(title, canonical, synonyms) {
			return true
		}
	}
	return false
}

func normalizeTitle(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// ExtractHeadingTitles returns the titles of all heading-marked lines in
// document order. Levels and line numbers are discarded; this is the
// shared heading-detection rule used for report validation.
func ExtractHeadingTitles(text string) []string {
	titles := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if _, title, ok := parseHeading(line); ok && title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
