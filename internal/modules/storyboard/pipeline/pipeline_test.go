package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/drafter"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/editor"
	"github.com/yungbote/storyboard-backend/internal/platform/apierr"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
)

// fakeLLM serves every stage of a run: GenerateText feeds the sequence
// drafter, GenerateJSON feeds unit drafting and editing. Safe for the
// pipeline's concurrent callers.
type fakeLLM struct {
	mu        sync.Mutex
	jsonErr   error
	textErr   error
	jsonCalls int
	textCalls int
}

const sequenceScript = `=== SCENE: Teach ===
TITLE: Understanding the Topic
ON-SCREEN TEXT: Key ideas at a glance
NARRATION: This opening narration explains the core idea of the objective in learner-friendly language with a concrete example.

A second paragraph builds on the first with an example drawn from the learner's daily work.

=== SCENE: Show ===
TITLE: See It In Action
ON-SCREEN TEXT: Click each area to explore
NARRATION:
trigger | reveal | voiceover
First area | First detail | The first reveal explains what happens in this part of the process.
Second area | Second detail | The second reveal explains the next part of the process.

=== SCENE: Apply ===
TITLE: Try It Yourself
ON-SCREEN TEXT: Drag each item where it belongs
NARRATION:
item | drop zone
First item | First zone
Second item | Second zone

=== SCENE: Check ===
TITLE: Check Your Understanding
ON-SCREEN TEXT: Answer the questions
NARRATION:
Question 1: Which option describes the correct first step?
A) The incorrect option
B) The correct option
Correct: B
Feedback correct: Right, that is the correct first step.
Feedback incorrect: Not quite, review the first reveal.
Question 2: What should happen next?
A) The correct option
B) The incorrect option
Correct: A

=== SCENE: Reflect ===
TITLE: Reflect and Connect
ON-SCREEN TEXT: Relate this to your own work
NARRATION: Think about how this objective shows up in your own role during a normal week.

Write down one concrete change you will make after this module.
`

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.jsonCalls++
	err := f.jsonErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	audio := strings.Repeat("Narrated sentence for the learner. ", 29)[:1000]
	event := func(n string) map[string]any {
		return map[string]any{"number": n, "audio": audio, "ost": "Key point on screen", "devNotes": "Static."}
	}
	return map[string]any{
		"pageNumber":           "",
		"title":                "Drafted Page",
		"pageType":             "Text + Image",
		"learningObjectiveIds": []any{},
		"estimatedDurationSec": float64(0),
		"accessibility": map[string]any{
			"altText":       []any{"Diagram supporting the narration"},
			"keyboardNav":   "Tab moves through content in reading order.",
			"contrastNotes": "AA contrast throughout.",
			"screenReader":  "Announced in reading order.",
		},
		"events": []any{event("1.1"), event("1.2")},
	}, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.textCalls++
	err := f.textErr
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return sequenceScript, nil
}

type progressEvent struct {
	stage  string
	status string
}

type fakeProgress struct {
	mu     sync.Mutex
	events []progressEvent
}

func (f *fakeProgress) Publish(ctx context.Context, runID, stage, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, progressEvent{stage: stage, status: status})
}

func (f *fakeProgress) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, ev := range f.events {
		out = append(out, ev.stage)
	}
	return out
}

// panickyProgress blows up on the first publish only, so the failure event
// emitted by the recovery path still goes through.
type panickyProgress struct {
	mu    sync.Mutex
	fired bool
}

func (p *panickyProgress) Publish(ctx context.Context, runID, stage, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.fired {
		p.fired = true
		panic("progress channel gone")
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func testOrchestrator(t *testing.T, llm *fakeLLM, progress ProgressPublisher) *Orchestrator {
	t.Helper()
	log := testLogger(t)
	unit := drafter.NewUnitDrafter(llm, log, nil)
	sequence := drafter.NewSequenceDrafter(llm, log, nil)
	edit := editor.NewQualityEditor(llm, log)
	return NewOrchestrator(unit, sequence, edit, progress, log)
}

func testRequest() content.GenerationRequest {
	return content.GenerationRequest{
		ModuleTitle:        "Workplace Safety",
		LearningObjectives: []string{"Identify hazards", "Report incidents"},
		Audience:           "Warehouse staff",
		Duration:           20,
		Level:              2,
	}
}

func TestRunHappyPath(t *testing.T) {
	llm := &fakeLLM{}
	progress := &fakeProgress{}
	o := testOrchestrator(t, llm, progress)

	res := o.Run(context.Background(), testRequest())

	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if res.Storyboard == nil {
		t.Fatalf("expected a storyboard")
	}
	// 1 launch + 2 bundles of 5 + 2 scenario arcs of 4 + 5 checks + 1 summary.
	if len(res.Storyboard.Pages) != 25 {
		t.Fatalf("expected 25 pages, got %d", len(res.Storyboard.Pages))
	}
	for i, p := range res.Storyboard.Pages {
		want := fmt.Sprintf("p%02d", i+1)
		if p.PageNumber != want {
			t.Fatalf("page %d: expected %s, got %s", i, want, p.PageNumber)
		}
	}
	if len(res.Storyboard.TOC) != 25 {
		t.Fatalf("expected 25 TOC entries, got %d", len(res.Storyboard.TOC))
	}
	if res.Metadata.TotalPages != 25 {
		t.Fatalf("expected metadata for 25 pages, got %d", res.Metadata.TotalPages)
	}
	// 2 bundle Check pages plus 5 standalone assessment pages.
	if res.Metadata.KnowledgeChecks != 7 {
		t.Fatalf("expected 7 knowledge checks, got %d", res.Metadata.KnowledgeChecks)
	}
	if res.Err != nil {
		t.Fatalf("success result must carry no error, got %v", res.Err)
	}
}

func TestRunPublishesStageTransitions(t *testing.T) {
	llm := &fakeLLM{}
	progress := &fakeProgress{}
	o := testOrchestrator(t, llm, progress)

	res := o.Run(context.Background(), testRequest())
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}

	want := []string{
		StagePlanning, StagePlanning,
		StageDrafting, StageDrafting,
		StageValidatingDraft, StageValidatingDraft,
		StageEditing, StageEditing,
		StageValidatingEdit, StageValidatingEdit,
		StageAssembling, StageAssembling,
		StageValidatingFinal,
		StageSucceeded,
	}
	got := progress.stages()
	if len(got) != len(want) {
		t.Fatalf("expected %d stage events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected stage %s, got %s", i, want[i], got[i])
		}
	}
}

// guttingEditor strips every page down to a single event, making the edited
// set structurally invalid while the pre-edit set stays valid.
type guttingEditor struct{}

func (guttingEditor) EditPages(ctx context.Context, pages []content.Page) []content.Page {
	out := make([]content.Page, len(pages))
	copy(out, pages)
	for i := range out {
		out[i].Events = out[i].Events[:1]
	}
	return out
}

func TestRunEditGateRevertsToPreEditPages(t *testing.T) {
	llm := &fakeLLM{}
	progress := &fakeProgress{}
	log := testLogger(t)
	o := NewOrchestrator(
		drafter.NewUnitDrafter(llm, log, nil),
		drafter.NewSequenceDrafter(llm, log, nil),
		guttingEditor{},
		progress,
		log,
	)

	res := o.Run(context.Background(), testRequest())

	// A bad edit reverts to the pre-edit pages instead of failing the run.
	if !res.Success {
		t.Fatalf("expected the run to survive an invalid edit, got %v", res.Err)
	}
	if len(res.Storyboard.Pages) != 25 {
		t.Fatalf("expected 25 pages, got %d", len(res.Storyboard.Pages))
	}
	for _, p := range res.Storyboard.Pages {
		if len(p.Events) < content.MinEventsPerPage {
			t.Fatalf("page %s kept the gutted edit (%d events); expected the pre-edit page", p.PageNumber, len(p.Events))
		}
	}
	for _, s := range progress.stages() {
		if s == StageFailed {
			t.Fatalf("revert must not emit a failed event, got %v", progress.stages())
		}
	}
}

func TestRunRejectsEmptyObjectives(t *testing.T) {
	o := testOrchestrator(t, &fakeLLM{}, nil)

	res := o.Run(context.Background(), content.GenerationRequest{ModuleTitle: "M"})

	if res.Success {
		t.Fatalf("expected failure for empty objectives")
	}
	if res.Err == nil || res.Err.Code != apierr.CodeGenerationError {
		t.Fatalf("expected GENERATION_ERROR, got %v", res.Err)
	}
	if res.Storyboard != nil {
		t.Fatalf("failure result must carry no storyboard")
	}
}

func TestRunDraftGateSurfacesValidatorError(t *testing.T) {
	// Six objectives plan 6 bundle checks plus 9 standalone checks, over the
	// maximum of 10, so the first validation gate must fail the run with the
	// validator's own error rather than a generic one.
	llm := &fakeLLM{}
	progress := &fakeProgress{}
	o := testOrchestrator(t, llm, progress)

	req := testRequest()
	req.LearningObjectives = []string{
		"Objective one", "Objective two", "Objective three",
		"Objective four", "Objective five", "Objective six",
	}

	res := o.Run(context.Background(), req)

	if res.Success {
		t.Fatalf("expected the draft gate to fail the run")
	}
	if res.Err == nil || res.Err.Code != apierr.CodeDensityFailed {
		t.Fatalf("expected DENSITY_FAILED from the draft gate, got %v", res.Err)
	}
	stages := progress.stages()
	if len(stages) == 0 || stages[len(stages)-1] != StageFailed {
		t.Fatalf("expected a terminal failed event, got %v", stages)
	}
	for _, s := range stages {
		if s == StageEditing {
			t.Fatalf("an invalid draft must never reach editing")
		}
	}
}

func TestRunFailsWhenDraftingExhaustsRetries(t *testing.T) {
	llm := &fakeLLM{
		jsonErr: errors.New("upstream unavailable"),
		textErr: errors.New("upstream unavailable"),
	}
	progress := &fakeProgress{}
	o := testOrchestrator(t, llm, progress)

	res := o.Run(context.Background(), testRequest())

	if res.Success {
		t.Fatalf("expected failure when every draft call errors")
	}
	if res.Err == nil || res.Err.Code != apierr.CodeGenerationError {
		t.Fatalf("expected GENERATION_ERROR, got %v", res.Err)
	}
	stages := progress.stages()
	if len(stages) == 0 || stages[len(stages)-1] != StageFailed {
		t.Fatalf("expected a terminal failed event, got %v", stages)
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	o := testOrchestrator(t, &fakeLLM{}, &panickyProgress{})

	res := o.Run(context.Background(), testRequest())

	if res.Success {
		t.Fatalf("expected failure after panic")
	}
	if res.Err == nil || res.Err.Code != apierr.CodeGenerationError {
		t.Fatalf("expected GENERATION_ERROR after panic, got %v", res.Err)
	}
	if res.RunID == "" {
		t.Fatalf("expected the run id to survive the panic")
	}
}
