// Package engine is the top-level entry point of the validation
// pipeline. It combines the template store with the section matcher to
// produce per-request result envelopes: an ApplicationResult when a
// template is applied, and a ReportValidation when generated report
// text is checked against the canonical structure.
//
// All failure is returned inside the result envelopes; nothing panics
// or escapes across this boundary.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harusame/templight/internal/logging"
	"github.com/harusame/templight/internal/matcher"
	"github.com/harusame/templight/internal/parser"
	"github.com/harusame/templight/internal/store"
)

// successThreshold is the quality score a report must reach for
// ValidateGeneratedReport to count it as a success. An independent
// issue-count ceiling applies on top of it.
const successThreshold = 0.7

// maxIssues is the issue-count ceiling for a successful report.
const maxIssues = 2

// placeholderPattern matches {{key}} slots in template text.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// ApplicationResult is the transient outcome of applying a template:
// the rendered text ready to hand to the generation pipeline, its
// structural outline, and any placeholders left unresolved.
type ApplicationResult struct {
	TemplateName string                    `json:"template_name"`
	Success      bool                      `json:"success"`
	Error        string                    `json:"error,omitempty"`
	RenderedText string                    `json:"rendered_text,omitempty"`
	Structure    *parser.TemplateStructure `json:"structure,omitempty"`
	Unresolved   []string                  `json:"unresolved,omitempty"`
	AppliedAt    time.Time                 `json:"applied_at"`
}

// ReportValidation is the transient outcome of validating generated
// report text against the canonical section structure.
type ReportValidation struct {
	TemplateName string    `json:"template_name"`
	Success      bool      `json:"success"`
	QualityScore float64   `json:"quality_score"`
	Matches      []string  `json:"matches"`
	Issues       []string  `json:"issues"`
	ValidatedAt  time.Time `json:"validated_at"`
}

// Engine orchestrates template loading and report validation.
type Engine struct {
	store    *store.Store
	synonyms parser.SynonymTable
	required []string
	logger   logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSynonyms replaces the built-in synonym table.
func WithSynonyms(synonyms parser.SynonymTable) Option {
	return func(e *Engine) { e.synonyms = synonyms }
}

// WithLogger sets the engine logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) { e.logger = logger.WithComponent("engine") }
}

// New creates a validation engine on top of the given template store.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		synonyms: parser.DefaultSynonyms(),
		required: parser.CanonicalSections(),
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying template store for diagnostics.
func (e *Engine) Store() *store.Store {
	return e.store
}

// ApplyTemplate loads the named template, renders {{key}} placeholders
// from userData, and returns the rendered text together with the
// template's own structural outline. Load failures and empty templates
// are reported through the result, never as an error value.
func (e *Engine) ApplyTemplate(ctx context.Context, name string, userData map[string]string) ApplicationResult {
	result := ApplicationResult{
		TemplateName: name,
		AppliedAt:    time.Now(),
	}

	snap, err := e.store.Load(ctx, name)
	if err != nil {
		e.logger.Error(ctx, err, "template load failed", "template", name)
		result.Error = err.Error()
		return result
	}

	if strings.TrimSpace(snap.RawText) == "" {
		result.Error = fmt.Sprintf("template %q is empty", name)
		return result
	}

	rendered, unresolved := renderPlaceholders(snap.RawText, userData)
	result.Success = true
	result.RenderedText = rendered
	result.Structure = snap.Structure
	result.Unresolved = unresolved

	e.logger.Debug(ctx, "template applied",
		"template", name,
		"completeness", snap.Structure.CompletenessScore,
		"unresolved", len(unresolved),
	)
	return result
}

// ValidateGeneratedReport checks generated report text against the four
// canonical sections. Success requires both the quality score threshold
// and the issue-count ceiling.
func (e *Engine) ValidateGeneratedReport(ctx context.Context, reportText, name string) ReportValidation {
	sv := matcher.ValidateStructure(reportText, name, e.required, e.synonyms)

	validation := ReportValidation{
		TemplateName: name,
		QualityScore: sv.Score,
		Matches:      sv.Matches,
		Issues:       sv.Issues,
		ValidatedAt:  sv.ValidatedAt,
		Success:      sv.Score >= successThreshold && len(sv.Issues) <= maxIssues,
	}

	if !validation.Success {
		e.logger.Info(ctx, "report failed structural validation",
			"template", name,
			"score", sv.Score,
			"issues", len(sv.Issues),
		)
	}
	return validation
}

// renderPlaceholders substitutes {{key}} slots from userData and
// returns the slot names that had no value, in order of appearance.
func renderPlaceholders(text string, userData map[string]string) (string, []string) {
	var unresolved []string
	seen := make(map[string]bool)

	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(slot string) string {
		key := placeholderPattern.FindStringSubmatch(slot)[1]
		if value, ok := userData[key]; ok {
			return value
		}
		if !seen[key] {
			seen[key] = true
			unresolved = append(unresolved, key)
		}
		return slot
	})

	return rendered, unresolved
}
