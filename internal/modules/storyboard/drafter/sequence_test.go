package drafter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
)

func testBundle() content.Bundle {
	obj := content.Objective{ID: "lo-1", Text: "Identify hazards"}
	return content.Bundle{
		Objective: obj,
		Pages: []content.PagePlan{
			{PageType: content.PageTextImage, Title: "Teach: Identify hazards", LearningObjectiveIDs: []string{obj.ID}, TargetDurationSec: 90},
			{PageType: content.PageClickToReveal, Title: "Show: Identify hazards", LearningObjectiveIDs: []string{obj.ID}, TargetDurationSec: 60},
			{PageType: content.PageDragAndDrop, Title: "Apply: Identify hazards", LearningObjectiveIDs: []string{obj.ID}, TargetDurationSec: 120},
			{PageType: content.PageAssessmentMCQ, Title: "Check: Identify hazards", LearningObjectiveIDs: []string{obj.ID}, TargetDurationSec: 90},
			{PageType: content.PageTextImage, Title: "Reflect: Identify hazards", LearningObjectiveIDs: []string{obj.ID}, TargetDurationSec: 60},
		},
	}
}

const sequenceScript = `=== SCENE: Teach ===
TITLE: Understanding Hazards
ON-SCREEN TEXT: Spot the hazard before it spots you
NARRATION: Every workplace hides hazards in plain sight, from trailing cables to stacked pallets.

Learning to see them takes deliberate practice, so we will walk the floor together.

=== SCENE: Show ===
TITLE: Reveal the Risks
ON-SCREEN TEXT: Click each area of the warehouse
NARRATION:
trigger | reveal | voiceover
Forklift zone | High traffic crossing | Watch for forklifts crossing the pedestrian lane here.
Loading dock | Wet surfaces | Docks stay wet after deliveries, so tread carefully.

=== SCENE: Apply ===
TITLE: Sort the Safety Items
ON-SCREEN TEXT: Drag each item where it belongs
NARRATION:
item | drop zone
Hard hat | PPE station
Spill kit | Cleanup cabinet

=== SCENE: Check ===
TITLE: Quick Knowledge Check
ON-SCREEN TEXT: Answer both questions
NARRATION:
Question 1: What do you do first when you spot a hazard?
A) Ignore it if it looks minor
B) Report it through the safety channel
C) Take a photo for later
Correct: B
Feedback correct: Right, reporting always comes first.
Feedback incorrect: Not quite, reporting always comes first.
Question 2: Who owns workplace safety?
A) Managers only
B) Everyone on site
Correct: B

=== SCENE: Reflect ===
TITLE: Reflect on Your Site
ON-SCREEN TEXT: Think about your own floor
NARRATION: Picture your own work area and the routes you walk every day.

Write down one hazard you will report this week.
`

func TestDraftSequenceBuildsAllFivePages(t *testing.T) {
	llm := &fakeLLM{text: sequenceScript}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	if len(pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(pages))
	}

	wantTypes := []content.PageType{
		content.PageTextImage,
		content.PageClickToReveal,
		content.PageDragAndDrop,
		content.PageAssessmentMCQ,
		content.PageTextImage,
	}
	for i, p := range pages {
		if p.PageType != wantTypes[i] {
			t.Fatalf("page %d: expected type %q, got %q", i, wantTypes[i], p.PageType)
		}
		if len(p.Events) < content.MinEventsPerPage || len(p.Events) > content.MaxEventsPerPage {
			t.Fatalf("page %d: event count %d out of bounds", i, len(p.Events))
		}
		if len(p.LearningObjectiveIDs) != 1 || p.LearningObjectiveIDs[0] != "lo-1" {
			t.Fatalf("page %d: expected lo-1 tag, got %v", i, p.LearningObjectiveIDs)
		}
	}

	if pages[0].Title != "Understanding Hazards" {
		t.Fatalf("expected scene title, got %q", pages[0].Title)
	}
}

func TestDraftSequenceTeachSplitsParagraphs(t *testing.T) {
	llm := &fakeLLM{text: sequenceScript}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	teach := pages[0]

	if len(teach.Events) != 2 {
		t.Fatalf("expected one event per paragraph, got %d", len(teach.Events))
	}
	if !strings.Contains(teach.Events[0].Audio, "hides hazards in plain sight") {
		t.Fatalf("unexpected first paragraph audio: %q", teach.Events[0].Audio)
	}
	if teach.Events[0].OST != "Spot the hazard before it spots you" {
		t.Fatalf("expected scene OST on first event, got %q", teach.Events[0].OST)
	}
}

func TestDraftSequenceShowParsesRevealTable(t *testing.T) {
	llm := &fakeLLM{text: sequenceScript}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	show := pages[1]

	if len(show.Events) != 2 {
		t.Fatalf("expected 2 reveal events, got %d", len(show.Events))
	}
	if show.Events[0].OST != "High traffic crossing" {
		t.Fatalf("expected reveal text as ost, got %q", show.Events[0].OST)
	}
	if !strings.Contains(show.Events[0].Audio, "forklifts crossing") {
		t.Fatalf("expected voiceover column as audio, got %q", show.Events[0].Audio)
	}
	if !strings.Contains(show.Events[0].DevNotes, "Forklift zone") {
		t.Fatalf("expected trigger in devNotes, got %q", show.Events[0].DevNotes)
	}
	if !strings.Contains(show.Accessibility.KeyboardNav, "reveal") {
		t.Fatalf("expected reveal keyboard contract, got %q", show.Accessibility.KeyboardNav)
	}
}

func TestDraftSequenceApplySynthesizesFeedback(t *testing.T) {
	llm := &fakeLLM{text: sequenceScript}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	apply := pages[2]

	if len(apply.Events) != 2 {
		t.Fatalf("expected 2 drag events, got %d", len(apply.Events))
	}
	if apply.Events[0].Audio != "Correct. Hard hat belongs in PPE station." {
		t.Fatalf("unexpected synthesized feedback: %q", apply.Events[0].Audio)
	}
	if !strings.Contains(apply.Accessibility.KeyboardNav, "Space picks up") {
		t.Fatalf("expected drag keyboard contract, got %q", apply.Accessibility.KeyboardNav)
	}
}

func TestDraftSequenceCheckParsesQuestions(t *testing.T) {
	llm := &fakeLLM{text: sequenceScript}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	check := pages[3]

	if len(check.Events) != 2 {
		t.Fatalf("expected one event per question, got %d", len(check.Events))
	}
	if !strings.Contains(check.Events[0].OST, "B) Report it through the safety channel") {
		t.Fatalf("expected options in ost, got %q", check.Events[0].OST)
	}
	if !strings.Contains(check.Events[0].DevNotes, "Correct answer: B.") {
		t.Fatalf("expected correct answer in devNotes, got %q", check.Events[0].DevNotes)
	}
	if !strings.Contains(check.Events[0].DevNotes, "reporting always comes first") {
		t.Fatalf("expected feedback in devNotes, got %q", check.Events[0].DevNotes)
	}
}

func TestDraftSequencePadsToEventFloor(t *testing.T) {
	script := "=== SCENE: Teach ===\n" +
		"TITLE: Short Scene\n" +
		"ON-SCREEN TEXT: One line\n" +
		"NARRATION: A single short paragraph only.\n"
	llm := &fakeLLM{text: script}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	if len(pages) != 1 {
		t.Fatalf("expected only the teach page, got %d", len(pages))
	}
	if len(pages[0].Events) != content.MinEventsPerPage {
		t.Fatalf("expected padding to %d events, got %d", content.MinEventsPerPage, len(pages[0].Events))
	}
}

func TestDraftSequenceLooseFallbackParsing(t *testing.T) {
	script := "Teach\n" +
		"TITLE: Loose Teach\n" +
		"NARRATION: First paragraph of content here.\n\nSecond paragraph of content here.\n" +
		"Show\n" +
		"TITLE: Loose Show\n" +
		"NARRATION:\n" +
		"trigger | reveal | voiceover\n" +
		"Zone A | Detail A | Narrated detail about zone A.\n" +
		"Zone B | Detail B | Narrated detail about zone B.\n"
	llm := &fakeLLM{text: script}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	pages := d.DraftSequence(context.Background(), testBundle(), Options{})
	if len(pages) != 2 {
		t.Fatalf("expected teach and show pages from loose parsing, got %d", len(pages))
	}
	if pages[0].Title != "Loose Teach" || pages[1].Title != "Loose Show" {
		t.Fatalf("unexpected titles: %q, %q", pages[0].Title, pages[1].Title)
	}
}

func TestDraftSequenceReturnsNilOnCallFailure(t *testing.T) {
	llm := &fakeLLM{textErr: errors.New("gateway down")}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	if pages := d.DraftSequence(context.Background(), testBundle(), Options{}); pages != nil {
		t.Fatalf("expected nil pages on call failure, got %d", len(pages))
	}
}

func TestDraftSequenceReturnsNilOnUnparseableText(t *testing.T) {
	llm := &fakeLLM{text: "Nothing resembling the scene protocol at all."}
	d := NewSequenceDrafter(llm, testLogger(t), nil)

	if pages := d.DraftSequence(context.Background(), testBundle(), Options{}); pages != nil {
		t.Fatalf("expected nil pages for unparseable text, got %d", len(pages))
	}
}
