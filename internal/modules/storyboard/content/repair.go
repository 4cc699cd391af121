package content

import (
	"fmt"
	"strings"
)

// Deterministic placeholders used by repair. Fixed strings so tests can
// assert on what was silently corrected.
const (
	PlaceholderAltText      = "Image description required"
	PlaceholderAudio        = "Narration to be provided."
	PlaceholderOST          = "On-screen text to be provided."
	PlaceholderDevNotes     = "Implementation notes to be provided."
	PlaceholderKeyboardNav  = "Tab moves focus forward, Shift+Tab backward; Enter or Space activates the focused control."
	PlaceholderContrast     = "Ensure text meets WCAG AA contrast (4.5:1) against its background."
	PlaceholderScreenReader = "All content is announced in reading order; interactive states announce their name, role and value."
)

// CoercePage converts a loosely typed model response into a Page. Tolerant by
// design: missing or mistyped fields come back zero-valued and are handled by
// RepairPage afterwards.
func CoercePage(raw map[string]any) Page {
	p := Page{
		PageNumber:           strings.TrimSpace(stringFromAny(raw["pageNumber"])),
		Title:                strings.TrimSpace(stringFromAny(raw["title"])),
		PageType:             PageType(strings.TrimSpace(stringFromAny(raw["pageType"]))),
		LearningObjectiveIDs: stringSliceFromAny(raw["learningObjectiveIds"]),
		EstimatedDurationSec: intFromAny(raw["estimatedDurationSec"], 0),
	}

	if acc, ok := raw["accessibility"].(map[string]any); ok {
		p.Accessibility = Accessibility{
			AltText:       stringSliceFromAny(acc["altText"]),
			KeyboardNav:   strings.TrimSpace(stringFromAny(acc["keyboardNav"])),
			ContrastNotes: strings.TrimSpace(stringFromAny(acc["contrastNotes"])),
			ScreenReader:  strings.TrimSpace(stringFromAny(acc["screenReader"])),
		}
	}

	if events, ok := raw["events"].([]any); ok {
		for _, item := range events {
			m, ok := item.(map[string]any)
			if !ok || m == nil {
				continue
			}
			ev := Event{
				Number:   strings.TrimSpace(stringFromAny(m["number"])),
				Audio:    strings.TrimSpace(stringFromAny(m["audio"])),
				OST:      strings.TrimSpace(stringFromAny(m["ost"])),
				DevNotes: strings.TrimSpace(stringFromAny(m["devNotes"])),
			}
			// Some models emit narration under an alternate key.
			if ev.Audio == "" {
				if alt := strings.TrimSpace(stringFromAny(m["narration"])); alt != "" {
					ev.Audio = alt
				} else if alt := strings.TrimSpace(stringFromAny(m["voiceover"])); alt != "" {
					ev.Audio = alt
				}
			}
			p.Events = append(p.Events, ev)
		}
	}

	return p
}

// RepairPage forces plan-authoritative fields back, fills placeholders and
// enforces the event count bounds. Returns a description of every repair made
// so silent coercion stays observable.
func RepairPage(p *Page, plan PagePlan) []string {
	var repairs []string

	if p.PageType != plan.PageType {
		repairs = append(repairs, fmt.Sprintf("pageType coerced from %q to %q", p.PageType, plan.PageType))
		p.PageType = plan.PageType
	}
	if p.Title == "" {
		repairs = append(repairs, fmt.Sprintf("title filled from plan (%q)", plan.Title))
		p.Title = plan.Title
	}
	if len(p.LearningObjectiveIDs) == 0 {
		ids := plan.LearningObjectiveIDs
		if len(ids) == 0 {
			ids = []string{GlobalObjectiveID}
		}
		repairs = append(repairs, fmt.Sprintf("learningObjectiveIds filled (%s)", strings.Join(ids, ",")))
		p.LearningObjectiveIDs = append([]string(nil), ids...)
	}
	if p.EstimatedDurationSec <= 0 {
		dur := plan.TargetDurationSec
		if dur <= 0 {
			dur = 60
		}
		repairs = append(repairs, fmt.Sprintf("estimatedDurationSec filled (%d)", dur))
		p.EstimatedDurationSec = dur
	}

	if len(p.Accessibility.AltText) == 0 {
		repairs = append(repairs, "accessibility.altText placeholder filled")
		p.Accessibility.AltText = []string{PlaceholderAltText}
	}
	if p.Accessibility.KeyboardNav == "" {
		repairs = append(repairs, "accessibility.keyboardNav placeholder filled")
		p.Accessibility.KeyboardNav = PlaceholderKeyboardNav
	}
	if p.Accessibility.ContrastNotes == "" {
		repairs = append(repairs, "accessibility.contrastNotes placeholder filled")
		p.Accessibility.ContrastNotes = PlaceholderContrast
	}
	if p.Accessibility.ScreenReader == "" {
		repairs = append(repairs, "accessibility.screenReader placeholder filled")
		p.Accessibility.ScreenReader = PlaceholderScreenReader
	}

	if len(p.Events) > MaxEventsPerPage {
		repairs = append(repairs, fmt.Sprintf("events truncated from %d to %d", len(p.Events), MaxEventsPerPage))
		p.Events = p.Events[:MaxEventsPerPage]
	}
	for len(p.Events) < MinEventsPerPage {
		idx := len(p.Events) + 1
		repairs = append(repairs, fmt.Sprintf("synthetic event %d appended to meet the %d-event floor", idx, MinEventsPerPage))
		p.Events = append(p.Events, Event{
			Number:   fmt.Sprintf("1.%d", idx),
			Audio:    PlaceholderAudio,
			OST:      PlaceholderOST,
			DevNotes: PlaceholderDevNotes,
		})
	}

	for i := range p.Events {
		if p.Events[i].Audio == "" && p.Events[i].OST == "" {
			repairs = append(repairs, fmt.Sprintf("event %d audio placeholder filled", i+1))
			p.Events[i].Audio = PlaceholderAudio
		}
	}

	return repairs
}

// RepairAudio substitutes non-empty text into every empty audio field, in
// order of preference devNotes then the literal placeholder. Runs during
// assembly as the last pass before the artifact is final.
func RepairAudio(p *Page) []string {
	var repairs []string
	for i := range p.Events {
		if strings.TrimSpace(p.Events[i].Audio) != "" {
			continue
		}
		if dn := strings.TrimSpace(p.Events[i].DevNotes); dn != "" {
			p.Events[i].Audio = dn
			repairs = append(repairs, fmt.Sprintf("page %s event %d audio filled from devNotes", p.PageNumber, i+1))
			continue
		}
		p.Events[i].Audio = PlaceholderAudio
		repairs = append(repairs, fmt.Sprintf("page %s event %d audio placeholder filled", p.PageNumber, i+1))
	}
	return repairs
}

func stringFromAny(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func intFromAny(v any, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

func stringSliceFromAny(v any) []string {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			s := strings.TrimSpace(stringFromAny(it))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// DedupeStrings drops blanks and duplicates while preserving first-seen
// order.
func DedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
