package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
)

// Version tags every generation run so prompt changes are traceable in run
// records.
const Version = "storyboard-v1"

// Maximum source material characters embedded in any single prompt.
const maxSourceExcerptChars = 3000

// Sequence-draft text protocol. The drafter's parser and these builders must
// agree on the exact markers.
const (
	SceneHeaderPrefix = "=== SCENE:"
	SceneHeaderSuffix = "==="
	LabelTitle        = "TITLE:"
	LabelOST          = "ON-SCREEN TEXT:"
	LabelNarration    = "NARRATION:"
)

// SceneHeader renders the delimiter line for one bundle phase.
func SceneHeader(phase string) string {
	return fmt.Sprintf("%s %s %s", SceneHeaderPrefix, phase, SceneHeaderSuffix)
}

const DraftSystem = `You are an expert eLearning storyboard writer. You produce a single storyboard page as strict JSON matching the provided schema. Narration is spoken aloud by a professional voice artist: write natural, active-voice sentences. On-screen text is short and never repeats the narration verbatim. Never address the learner about this conversation, the generation process, or yourself.`

const SequenceSystem = `You are an expert eLearning storyboard writer. You script a five-scene learning sequence as plain text using the exact scene markers and field labels you are given. Follow the per-scene format precisely; do not add commentary outside the scenes.`

const EditSystem = `You are an eLearning quality editor. You receive one storyboard page as JSON and return the same JSON shape with improved content. Tighten narration into active voice, complete all four accessibility fields, complete interaction details (trigger, behaviour, feedback, reset) in devNotes for interactive and scenario pages, and remove on-screen text that duplicates narration. Never change pageNumber, title, pageType or learningObjectiveIds.`

// SourceExcerpt truncates source material to the per-prompt budget on a word
// boundary.
func SourceExcerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxSourceExcerptChars {
		return s
	}
	cut := s[:maxSourceExcerptChars]
	if idx := strings.LastIndex(cut, " "); idx > maxSourceExcerptChars/2 {
		cut = cut[:idx]
	}
	return cut
}

// BuildDraftPrompt assembles the user prompt for a single page draft.
// feedback carries validation errors from prior attempts so the model can fix
// them instead of repeating.
func BuildDraftPrompt(plan content.PagePlan, audience string, constraints []string, source string, feedback []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Draft one storyboard page.\n\n")
	fmt.Fprintf(&b, "Page type: %s\n", plan.PageType)
	fmt.Fprintf(&b, "Title: %s\n", plan.Title)
	fmt.Fprintf(&b, "Learning objective ids: %s\n", strings.Join(plan.LearningObjectiveIDs, ", "))
	if plan.ObjectiveText != "" {
		fmt.Fprintf(&b, "Learning objective: %s\n", plan.ObjectiveText)
	}
	if plan.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", plan.Context)
	}
	if audience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", audience)
	}
	fmt.Fprintf(&b, "Target duration: %d seconds\n", plan.TargetDurationSec)

	b.WriteString("\nStructural requirements:\n")
	fmt.Fprintf(&b, "- Between %d and %d events; each event has number, audio, ost, devNotes.\n",
		content.MinEventsPerPage, content.MaxEventsPerPage)
	fmt.Fprintf(&b, "- Narration totals at least %d characters across events (about 150 words per minute).\n",
		content.MinVoiceoverChars(plan.TargetDurationSec))
	fmt.Fprintf(&b, "- On-screen text totals at least %d characters (about 50 words per minute) and must not duplicate narration.\n",
		content.MinOSTChars(plan.TargetDurationSec))
	b.WriteString("- Aim for 15-60 audio words per event.\n")
	b.WriteString("- The accessibility block needs altText (one entry per image), keyboardNav with an explicit tab order and key bindings, contrastNotes and screenReader.\n")
	fmt.Fprintf(&b, "- pageType must be exactly %q.\n", string(plan.PageType))
	b.WriteString("- devNotes may reference icons as icon:<token>.\n")

	if len(constraints) > 0 {
		b.WriteString("\nConstraints:\n")
		for _, c := range constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if excerpt := mergedExcerpt(plan.SourceExcerpt, source); excerpt != "" {
		b.WriteString("\nSource material (excerpt):\n")
		b.WriteString(excerpt)
		b.WriteString("\n")
	}

	if len(feedback) > 0 {
		b.WriteString("\nThe previous attempt failed validation. Fix these issues:\n")
		for _, f := range feedback {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	return b.String()
}

// BuildExpandPrompt asks for more narration on an already drafted page.
func BuildExpandPrompt(plan content.PagePlan, page content.Page, minVoiceoverChars int, currentChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The storyboard page below has %d characters of narration; it needs at least %d.\n", currentChars, minVoiceoverChars)
	b.WriteString("Expand the audio of existing events with concrete detail, examples and transitions. Keep every field, the event count and the page structure unchanged except for richer audio and, where helpful, ost. Return the full page JSON.\n\n")
	b.WriteString(mustJSON(page))
	return b.String()
}

// BuildSequencePrompt requests all five phase scenes for one objective bundle
// as delimited free text.
func BuildSequencePrompt(bundle content.Bundle, audience string, source string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Script a five-scene learning sequence for this objective:\n%s\n\n", bundle.Objective.Text)
	if audience != "" {
		fmt.Fprintf(&b, "Audience: %s\n\n", audience)
	}

	b.WriteString("Produce exactly five scenes, in order, each introduced by its marker line:\n")
	for _, plan := range bundle.Pages {
		phase := phaseOf(plan)
		fmt.Fprintf(&b, "\n%s\n", SceneHeader(phase))
		fmt.Fprintf(&b, "%s <scene title>\n", LabelTitle)
		switch phase {
		case "Show":
			fmt.Fprintf(&b, "%s <one or two short lines>\n", LabelOST)
			fmt.Fprintf(&b, "%s then a table, one row per reveal:\ntrigger | reveal | voiceover\n", LabelNarration)
		case "Apply":
			fmt.Fprintf(&b, "%s <instructions for the drag-and-drop activity>\n", LabelOST)
			fmt.Fprintf(&b, "%s then a table, one row per draggable:\nitem | drop zone\n", LabelNarration)
		case "Check":
			fmt.Fprintf(&b, "%s <short intro line>\n", LabelOST)
			fmt.Fprintf(&b, "%s then numbered questions:\nQuestion 1: <stem>\nA) <option>\nB) <option>\nC) <option>\nCorrect: <letter>\nFeedback correct: <text>\nFeedback incorrect: <text>\n", LabelNarration)
		default:
			fmt.Fprintf(&b, "%s <short on-screen text>\n", LabelOST)
			fmt.Fprintf(&b, "%s <two to four spoken paragraphs separated by blank lines>\n", LabelNarration)
		}
	}

	if excerpt := SourceExcerpt(source); excerpt != "" {
		b.WriteString("\nGround the content in this source material:\n")
		b.WriteString(excerpt)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildEditPrompt embeds the full page for refinement.
func BuildEditPrompt(page content.Page) string {
	var b strings.Builder
	b.WriteString("Refine this storyboard page. Return the complete page JSON.\n\n")
	b.WriteString(mustJSON(page))
	return b.String()
}

func phaseOf(plan content.PagePlan) string {
	title := plan.Title
	if idx := strings.Index(title, ":"); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	switch plan.PageType {
	case content.PageClickToReveal:
		return "Show"
	case content.PageDragAndDrop:
		return "Apply"
	case content.PageAssessmentMCQ, content.PageAssessmentMRQ:
		return "Check"
	default:
		return "Teach"
	}
}

func mergedExcerpt(planExcerpt, source string) string {
	if strings.TrimSpace(planExcerpt) != "" {
		return SourceExcerpt(planExcerpt)
	}
	return SourceExcerpt(source)
}

func mustJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
