package validator

import (
	"fmt"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/platform/apierr"
)

// Density bounds.
const (
	minInteractivePages     = 8
	maxInteractiveSmallDeck = 12
	smallDeckPageLimit      = 25

	minKnowledgeChecks = 5
	maxKnowledgeChecks = 10

	interactionDensityRatio = 0.4

	advisoryMinPages        = 18
	advisoryMaxPages        = 40
	advisoryMinEventWords   = 15
	advisoryMaxEventWords   = 60
	advisoryMinAvgVoiceover = 500
)

// Result is the verdict for one validation pass. Err is nil exactly when
// Valid is true; Advisories are logged by the caller, never fatal.
type Result struct {
	Valid      bool
	Err        *apierr.Error
	Metrics    content.Metrics
	Advisories []string
}

// Validate checks a page set against the structural and density rules. Pure
// and deterministic, no I/O.
func Validate(pages []content.Page, objectiveIDs []string, targetDurationMinutes int) Result {
	metrics := content.ComputeMetrics(pages)

	var structural []string
	var density []string
	var lowInteraction []string

	covered := map[string]bool{}
	for _, p := range pages {
		for _, id := range p.LearningObjectiveIDs {
			covered[id] = true
		}
	}
	for _, id := range objectiveIDs {
		if !covered[id] {
			structural = append(structural, fmt.Sprintf("objective %s is not covered by any page", id))
		}
	}

	for _, p := range pages {
		if n := len(p.Events); n < content.MinEventsPerPage || n > content.MaxEventsPerPage {
			structural = append(structural, fmt.Sprintf("page %s has %d events, must be between %d and %d",
				pageLabel(p), n, content.MinEventsPerPage, content.MaxEventsPerPage))
		}
		structural = append(structural, accessibilityIssues(p)...)
		if len(p.LearningObjectiveIDs) == 0 {
			structural = append(structural, fmt.Sprintf("page %s has no learning objective ids", pageLabel(p)))
		}
	}

	// The adaptive ceiling constrains widget pages (Interactive: types) only;
	// the floor and the density gate count the broader interaction set that
	// also includes scenario and assessment pages.
	widgets := 0
	for _, p := range pages {
		if strings.HasPrefix(string(p.PageType), "Interactive:") {
			widgets++
		}
	}

	total := metrics.TotalPages
	maxWidgets := maxInteractiveSmallDeck
	if total > smallDeckPageLimit {
		maxWidgets = content.CeilRatio(total, 0.5)
	}
	if widgets > maxWidgets {
		density = append(density, fmt.Sprintf("%d interactive widget pages exceeds the maximum of %d for %d total pages",
			widgets, maxWidgets, total))
	}
	if metrics.InteractivePages < minInteractivePages {
		density = append(density, fmt.Sprintf("%d interaction pages is below the minimum of %d",
			metrics.InteractivePages, minInteractivePages))
	}
	if metrics.KnowledgeChecks < minKnowledgeChecks || metrics.KnowledgeChecks > maxKnowledgeChecks {
		density = append(density, fmt.Sprintf("%d knowledge checks, must be between %d and %d",
			metrics.KnowledgeChecks, minKnowledgeChecks, maxKnowledgeChecks))
	}

	if required := content.CeilRatio(total, interactionDensityRatio); metrics.InteractivePages < required {
		lowInteraction = append(lowInteraction, fmt.Sprintf("%d interaction pages, density gate requires at least %d of %d",
			metrics.InteractivePages, required, total))
	}

	advisories := advisoryIssues(pages, metrics, targetDurationMinutes)

	switch {
	case len(structural) > 0:
		issues := append(structural, append(density, lowInteraction...)...)
		return Result{
			Err: apierr.New(apierr.CodeValidationFailed,
				"storyboard failed structural validation", structuralHints(), issues),
			Advisories: advisories,
		}
	case len(lowInteraction) > 0 && len(density) == 0:
		return Result{
			Err: apierr.New(apierr.CodeLowInteractionDensity,
				"interactive page density is below the required ratio", interactionHints(), lowInteraction),
			Advisories: advisories,
		}
	case len(density) > 0:
		issues := append(density, lowInteraction...)
		return Result{
			Err: apierr.New(apierr.CodeDensityFailed,
				"storyboard failed density validation", densityHints(), issues),
			Advisories: advisories,
		}
	}

	return Result{Valid: true, Metrics: metrics, Advisories: advisories}
}

func accessibilityIssues(p content.Page) []string {
	var issues []string
	acc := p.Accessibility
	if len(acc.AltText) == 0 {
		issues = append(issues, fmt.Sprintf("page %s accessibility.altText missing", pageLabel(p)))
	}
	if strings.TrimSpace(acc.KeyboardNav) == "" {
		issues = append(issues, fmt.Sprintf("page %s accessibility.keyboardNav missing", pageLabel(p)))
	}
	if strings.TrimSpace(acc.ContrastNotes) == "" {
		issues = append(issues, fmt.Sprintf("page %s accessibility.contrastNotes missing", pageLabel(p)))
	}
	if strings.TrimSpace(acc.ScreenReader) == "" {
		issues = append(issues, fmt.Sprintf("page %s accessibility.screenReader missing", pageLabel(p)))
	}
	return issues
}

func advisoryIssues(pages []content.Page, metrics content.Metrics, targetDurationMinutes int) []string {
	var advisories []string

	if metrics.TotalPages < advisoryMinPages || metrics.TotalPages > advisoryMaxPages {
		advisories = append(advisories, fmt.Sprintf("total page count %d outside the recommended %d-%d range",
			metrics.TotalPages, advisoryMinPages, advisoryMaxPages))
	}

	audioChars := 0
	for _, p := range pages {
		for i, ev := range p.Events {
			words := content.WordCount(ev.Audio)
			if words < advisoryMinEventWords || words > advisoryMaxEventWords {
				advisories = append(advisories, fmt.Sprintf("page %s event %d has %d audio words, recommended %d-%d",
					pageLabel(p), i+1, words, advisoryMinEventWords, advisoryMaxEventWords))
			}
		}
		audioChars += content.TotalAudioChars(p)
	}

	if metrics.TotalPages > 0 {
		if avg := audioChars / metrics.TotalPages; avg < advisoryMinAvgVoiceover {
			advisories = append(advisories, fmt.Sprintf("average voiceover length %d chars is below the %d soft floor",
				avg, advisoryMinAvgVoiceover))
		}
	}

	if targetDurationMinutes > 0 {
		estimated := content.EstimateDurationMinutes(pages)
		lower := float64(targetDurationMinutes) * 0.9
		upper := float64(targetDurationMinutes) * 1.1
		if estimated < lower || estimated > upper {
			advisories = append(advisories, fmt.Sprintf("estimated duration %.1f min outside %d min +/-10%%",
				estimated, targetDurationMinutes))
		}
	}

	return advisories
}

func pageLabel(p content.Page) string {
	if strings.TrimSpace(p.PageNumber) != "" {
		return p.PageNumber
	}
	if strings.TrimSpace(p.Title) != "" {
		return fmt.Sprintf("%q", p.Title)
	}
	return "(untitled)"
}

func structuralHints() []string {
	return []string{
		"Ensure every page carries 2-12 events and a complete accessibility block",
		"Ensure every learning objective is covered by at least one page",
		"Regenerate the module with the same objectives to get a fresh draft",
	}
}

func densityHints() []string {
	return []string{
		"Increase or reduce interactive pages to fit the allowed range",
		"Keep knowledge checks between 5 and 10 across the module",
		"Shorten or extend the module so page counts match the requested duration",
	}
}

func interactionHints() []string {
	return []string{
		"Convert some text pages to Click-to-Reveal, Hotspot or Drag-and-Drop interactions",
		"Add scenario pages tied to the weakest-covered objective",
		"Raise the requested interactivity level and regenerate",
	}
}
