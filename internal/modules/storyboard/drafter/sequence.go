package drafter

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/prompts"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/platform/openai"
)

var bundlePhaseOrder = []string{"Teach", "Show", "Apply", "Check", "Reflect"}

// SequenceDrafter scripts a whole objective bundle with one free-text LLM
// call. It never returns an error; callers fall back to per-page unit
// drafting when it yields no usable pages.
type SequenceDrafter struct {
	llm  openai.Client
	log  *logger.Logger
	runs RunRecorder
}

func NewSequenceDrafter(llm openai.Client, log *logger.Logger, runs RunRecorder) *SequenceDrafter {
	return &SequenceDrafter{
		llm:  llm,
		log:  log.With("service", "SequenceDrafter"),
		runs: runs,
	}
}

// DraftSequence returns the pages it managed to script, in bundle phase
// order. The single LLM call is not retried here.
func (d *SequenceDrafter) DraftSequence(ctx context.Context, bundle content.Bundle, opts Options) []content.Page {
	prompt := prompts.BuildSequencePrompt(bundle, opts.Audience, opts.SourceMaterial)

	text, err := d.llm.GenerateText(ctx, prompts.SequenceSystem, prompt)
	if err != nil {
		d.log.Warn("Sequence draft call failed", "objective", bundle.Objective.ID, "error", err.Error())
		if d.runs != nil {
			d.runs.Record(ctx, "sequence", 1, 0, "error", []string{err.Error()}, nil)
		}
		return nil
	}

	scenes := parseScenes(text, bundlePhaseOrder)
	if len(scenes) == 0 {
		d.log.Warn("Sequence markers not found, using loose parsing", "objective", bundle.Objective.ID)
		scenes = parseScenesLoose(text, bundlePhaseOrder)
	}
	if len(scenes) == 0 {
		d.log.Warn("Sequence draft yielded no scenes", "objective", bundle.Objective.ID)
		if d.runs != nil {
			d.runs.Record(ctx, "sequence", 1, 0, "unparseable", []string{"no scenes found"}, nil)
		}
		return nil
	}

	byPhase := map[string]scene{}
	for _, sc := range scenes {
		if _, dup := byPhase[sc.Phase]; !dup {
			byPhase[sc.Phase] = sc
		}
	}

	var pages []content.Page
	for i, plan := range bundle.Pages {
		phase := phaseName(i)
		sc, ok := byPhase[phase]
		if !ok {
			continue
		}
		page := d.buildPhasePage(plan, phase, sc)
		content.RepairPage(&page, plan)
		content.ScrubPage(&page)
		pages = append(pages, page)
	}

	if d.runs != nil {
		d.runs.Record(ctx, "sequence", 1, 0, "ok", nil, map[string]any{
			"objective": bundle.Objective.ID,
			"scenes":    len(scenes),
			"pages":     len(pages),
		})
	}
	return pages
}

func phaseName(i int) string {
	if i < len(bundlePhaseOrder) {
		return bundlePhaseOrder[i]
	}
	return "Teach"
}

func (d *SequenceDrafter) buildPhasePage(plan content.PagePlan, phase string, sc scene) content.Page {
	page := content.Page{
		Title:                sc.Title,
		PageType:             plan.PageType,
		LearningObjectiveIDs: append([]string(nil), plan.LearningObjectiveIDs...),
		EstimatedDurationSec: plan.TargetDurationSec,
		Accessibility: content.Accessibility{
			AltText:       []string{content.PlaceholderAltText},
			KeyboardNav:   keyboardNavFor(phase),
			ContrastNotes: content.PlaceholderContrast,
			ScreenReader:  content.PlaceholderScreenReader,
		},
	}
	if page.Title == "" {
		page.Title = plan.Title
	}

	switch phase {
	case "Show":
		page.Events = revealEvents(sc)
	case "Apply":
		page.Events = dragDropEvents(sc)
	case "Check":
		page.Events = questionEvents(sc)
	default:
		page.Events = paragraphEvents(sc)
	}

	clampEvents(&page, sc)
	numberEvents(&page)
	return page
}

// paragraphEvents gives Teach and Reflect one audio/OST pair per narration
// paragraph.
func paragraphEvents(sc scene) []content.Event {
	paras := splitParagraphs(sc.Narration)
	var events []content.Event
	for i, para := range paras {
		ost := firstWords(para, 8)
		if i == 0 && sc.OST != "" {
			ost = sc.OST
		}
		events = append(events, content.Event{
			Audio:    para,
			OST:      ost,
			DevNotes: "Static content; advance on narration end.",
		})
	}
	return events
}

// revealEvents parses the "trigger | reveal | voiceover" table into one event
// per reveal.
func revealEvents(sc scene) []content.Event {
	rows := parsePipeRows(sc.Narration, 3)
	var events []content.Event
	for _, row := range rows {
		events = append(events, content.Event{
			Audio:    row[2],
			OST:      row[1],
			DevNotes: fmt.Sprintf("Click-to-reveal trigger: %s. Reveal plays voiceover once. icon:reveal", row[0]),
		})
	}
	return events
}

// dragDropEvents parses the "item | drop zone" table, synthesizing feedback
// narration per pairing.
func dragDropEvents(sc scene) []content.Event {
	rows := parsePipeRows(sc.Narration, 2)
	var events []content.Event
	for _, row := range rows {
		events = append(events, content.Event{
			Audio:    fmt.Sprintf("Correct. %s belongs in %s.", row[0], row[1]),
			OST:      row[0],
			DevNotes: fmt.Sprintf("Drag %q onto %q. Snap back on wrong drop with a retry hint. icon:dragdrop", row[0], row[1]),
		})
	}
	return events
}

// questionEvents builds one event per numbered question block.
func questionEvents(sc scene) []content.Event {
	blocks := parseQuestionBlocks(sc.Narration)
	var events []content.Event
	for _, q := range blocks {
		ost := q.Stem
		if len(q.Options) > 0 {
			ost = q.Stem + "\n" + strings.Join(q.Options, "\n")
		}
		notes := fmt.Sprintf("Correct answer: %s.", q.Correct)
		if q.FeedbackCorrect != "" {
			notes += " On correct: " + q.FeedbackCorrect
		}
		if q.FeedbackIncorrect != "" {
			notes += " On incorrect: " + q.FeedbackIncorrect
		}
		events = append(events, content.Event{
			Audio:    q.Stem,
			OST:      ost,
			DevNotes: notes,
		})
	}
	return events
}

// clampEvents pads to the floor and trims to the ceiling, reusing scene text
// for synthesized filler.
func clampEvents(page *content.Page, sc scene) {
	if len(page.Events) > content.MaxEventsPerPage {
		page.Events = page.Events[:content.MaxEventsPerPage]
	}
	for len(page.Events) < content.MinEventsPerPage {
		audio := strings.TrimSpace(sc.Narration)
		if audio == "" {
			audio = content.PlaceholderAudio
		}
		ost := sc.OST
		if ost == "" {
			ost = firstWords(audio, 8)
		}
		page.Events = append(page.Events, content.Event{
			Audio:    audio,
			OST:      ost,
			DevNotes: content.PlaceholderDevNotes,
		})
	}
}

func numberEvents(page *content.Page) {
	for i := range page.Events {
		page.Events[i].Number = fmt.Sprintf("1.%d", i+1)
	}
}

// keyboardNavFor returns the templated keyboard interaction contract per
// phase; this is never model-derived.
func keyboardNavFor(phase string) string {
	switch phase {
	case "Show":
		return "Tab cycles through reveal triggers in reading order; Enter or Space opens the focused reveal; Escape closes it and returns focus to the trigger."
	case "Apply":
		return "Tab reaches each draggable item; Space picks up the focused item; arrow keys move between drop zones; Space drops; Escape cancels the drag and restores the item."
	case "Check":
		return "Tab moves through answer options; arrow keys move within the option group; Space selects; Enter submits and moves focus to the feedback region."
	default:
		return "Tab moves through content regions in reading order; no interactive controls on this page."
	}
}
