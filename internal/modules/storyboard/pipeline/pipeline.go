package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/assembler"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/drafter"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/planner"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/validator"
	"github.com/yungbote/storyboard-backend/internal/platform/apierr"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
)

// Pipeline stages, in transition order.
const (
	StagePlanning        = "planning"
	StageDrafting        = "drafting"
	StageValidatingDraft = "validating_draft"
	StageEditing         = "editing"
	StageValidatingEdit  = "validating_edit"
	StageAssembling      = "assembling"
	StageValidatingFinal = "validating_final"
	StageSucceeded       = "succeeded"
	StageFailed          = "failed"
)

// Non-bundle pages draft through a bounded worker pool of this size.
const draftConcurrency = 3

// ProgressPublisher receives a stage transition event per state change.
// Publishing is best-effort; a nil publisher disables progress reporting.
type ProgressPublisher interface {
	Publish(ctx context.Context, runID string, stage string, status string)
}

// PageEditor runs the quality pass over drafted pages. Implementations are
// best-effort and must return one page per input page, in order.
type PageEditor interface {
	EditPages(ctx context.Context, pages []content.Page) []content.Page
}

// Result is the pipeline outcome: exactly one of Storyboard or Err is set.
type Result struct {
	RunID      string
	Success    bool
	Storyboard *content.Storyboard
	Metadata   content.Metrics
	Err        *apierr.Error
}

// Orchestrator sequences the five stages and is the only component with
// authority to halt the run.
type Orchestrator struct {
	unit     *drafter.UnitDrafter
	sequence *drafter.SequenceDrafter
	editor   PageEditor
	progress ProgressPublisher
	log      *logger.Logger
}

func NewOrchestrator(unit *drafter.UnitDrafter, sequence *drafter.SequenceDrafter, edit PageEditor, progress ProgressPublisher, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		unit:     unit,
		sequence: sequence,
		editor:   edit,
		progress: progress,
		log:      log.With("service", "PipelineOrchestrator"),
	}
}

// Run executes the full pipeline for one request. The caller always receives
// either a complete storyboard or a structured error, never both.
func (o *Orchestrator) Run(ctx context.Context, req content.GenerationRequest) (result Result) {
	runID := uuid.NewString()
	result.RunID = runID
	log := o.log.With("run_id", runID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Pipeline panicked", "panic", fmt.Sprint(r))
			o.publish(ctx, runID, StageFailed, "panic")
			result = Result{RunID: runID, Err: apierr.Generation(fmt.Errorf("%v", r))}
		}
	}()

	req.Normalize()
	if req.ModuleTitle == "" || len(req.LearningObjectives) == 0 {
		return Result{RunID: runID, Err: apierr.Generation(errors.New("moduleTitle and at least one learning objective are required"))}
	}

	ctx = content.WithRunID(ctx, runID)

	o.publish(ctx, runID, StagePlanning, "started")
	plan := planner.Plan(req)
	log.Info("Module planned",
		"objectives", len(plan.Objectives),
		"planned_pages", plan.PlannedPageCount(),
		"knowledge_checks", plan.Assessment.TotalChecks,
	)
	o.publish(ctx, runID, StagePlanning, "completed")

	o.publish(ctx, runID, StageDrafting, "started")
	pages, err := o.draft(ctx, plan, req)
	if err != nil {
		log.Error("Drafting failed", "error", err.Error())
		o.publish(ctx, runID, StageFailed, "drafting")
		return Result{RunID: runID, Err: apierr.Generation(err)}
	}
	log.Info("Module drafted", "pages", len(pages))
	o.publish(ctx, runID, StageDrafting, "completed")

	objectiveIDs := make([]string, 0, len(plan.Objectives))
	for _, obj := range plan.Objectives {
		objectiveIDs = append(objectiveIDs, obj.ID)
	}

	// First validation gate is hard: an invalid draft is never edited.
	o.publish(ctx, runID, StageValidatingDraft, "started")
	res := validator.Validate(pages, objectiveIDs, req.Duration)
	o.logAdvisories(log, StageValidatingDraft, res.Advisories)
	if !res.Valid {
		log.Error("Draft validation failed", "code", res.Err.Code, "violations", len(res.Err.Violations))
		o.publish(ctx, runID, StageFailed, StageValidatingDraft)
		return Result{RunID: runID, Err: res.Err}
	}
	o.publish(ctx, runID, StageValidatingDraft, "completed")

	o.publish(ctx, runID, StageEditing, "started")
	edited := o.editor.EditPages(ctx, pages)
	o.publish(ctx, runID, StageEditing, "completed")

	// Second gate is advisory: an invalid edit reverts to the pre-edit pages
	// instead of failing the run.
	o.publish(ctx, runID, StageValidatingEdit, "started")
	editRes := validator.Validate(edited, objectiveIDs, req.Duration)
	o.logAdvisories(log, StageValidatingEdit, editRes.Advisories)
	final := edited
	if !editRes.Valid {
		log.Warn("Post-edit validation failed, reverting to pre-edit pages", "code", editRes.Err.Code)
		final = pages
	}
	o.publish(ctx, runID, StageValidatingEdit, "completed")

	o.publish(ctx, runID, StageAssembling, "started")
	sb, repairs := assembler.Assemble(req.ModuleTitle, final)
	if len(repairs) > 0 {
		log.Info("Assembly repairs applied", "repairs", strings.Join(repairs, "; "))
	}
	o.publish(ctx, runID, StageAssembling, "completed")

	o.publish(ctx, runID, StageValidatingFinal, "started")
	finalRes := validator.Validate(sb.Pages, objectiveIDs, req.Duration)
	o.logAdvisories(log, StageValidatingFinal, finalRes.Advisories)
	if !finalRes.Valid {
		log.Error("Final validation failed", "code", finalRes.Err.Code, "violations", len(finalRes.Err.Violations))
		o.publish(ctx, runID, StageFailed, StageValidatingFinal)
		return Result{RunID: runID, Err: finalRes.Err}
	}
	o.publish(ctx, runID, StageSucceeded, "completed")

	log.Info("Storyboard generated",
		"pages", finalRes.Metrics.TotalPages,
		"interactive_pages", finalRes.Metrics.InteractivePages,
		"knowledge_checks", finalRes.Metrics.KnowledgeChecks,
		"total_duration_sec", finalRes.Metrics.TotalDuration,
	)

	return Result{
		RunID:      runID,
		Success:    true,
		Storyboard: &sb,
		Metadata:   finalRes.Metrics,
	}
}

// draft runs stage 2: one sequence call per objective bundle in parallel,
// and a bounded pool for every other planned page. Page order is launch,
// bundles, scenarios, knowledge checks, summary.
func (o *Orchestrator) draft(ctx context.Context, plan content.ModulePlan, req content.GenerationRequest) ([]content.Page, error) {
	opts := drafter.Options{
		Audience:       req.Audience,
		Constraints:    req.Constraints,
		SourceMaterial: req.SourceMaterial,
	}

	bundlePages := make([][]content.Page, len(plan.Bundles))
	soloPlans := make([]content.PagePlan, 0, 2+8+len(plan.AssessmentPages))
	soloPlans = append(soloPlans, plan.Launch)
	for _, arc := range plan.Scenarios {
		soloPlans = append(soloPlans, arc.Pages...)
	}
	soloPlans = append(soloPlans, plan.AssessmentPages...)
	soloPlans = append(soloPlans, plan.Summary)
	soloPages := make([]content.Page, len(soloPlans))

	bundles, bctx := errgroup.WithContext(ctx)
	for i := range plan.Bundles {
		i := i
		bundles.Go(func() error {
			pages, err := o.draftBundle(bctx, plan.Bundles[i], opts)
			if err != nil {
				return err
			}
			bundlePages[i] = pages
			return nil
		})
	}

	solo, sctx := errgroup.WithContext(ctx)
	solo.SetLimit(draftConcurrency)
	for i := range soloPlans {
		i := i
		solo.Go(func() error {
			page, err := o.unit.DraftPage(sctx, soloPlans[i], opts)
			if err != nil {
				return err
			}
			soloPages[i] = page
			return nil
		})
	}

	if err := bundles.Wait(); err != nil {
		return nil, err
	}
	if err := solo.Wait(); err != nil {
		return nil, err
	}

	// Reassemble in plan order.
	pages := make([]content.Page, 0, plan.PlannedPageCount())
	pages = append(pages, soloPages[0]) // launch
	for _, bp := range bundlePages {
		pages = append(pages, bp...)
	}
	pages = append(pages, soloPages[1:]...)
	return pages, nil
}

// draftBundle tries the single sequence call first and unit-drafts whatever
// phases it failed to script. The whole-bundle fallback is the zero-scene
// case; unit-draft exhaustion is fatal like any other drafting failure.
func (o *Orchestrator) draftBundle(ctx context.Context, bundle content.Bundle, opts drafter.Options) ([]content.Page, error) {
	drafted := o.sequence.DraftSequence(ctx, bundle, opts)

	byType := map[content.PageType][]content.Page{}
	for _, p := range drafted {
		byType[p.PageType] = append(byType[p.PageType], p)
	}

	pages := make([]content.Page, 0, len(bundle.Pages))
	for _, plan := range bundle.Pages {
		if queue := byType[plan.PageType]; len(queue) > 0 {
			pages = append(pages, queue[0])
			byType[plan.PageType] = queue[1:]
			continue
		}
		page, err := o.unit.DraftPage(ctx, plan, opts)
		if err != nil {
			return nil, fmt.Errorf("bundle %s page %q: %w", bundle.Objective.ID, plan.Title, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (o *Orchestrator) publish(ctx context.Context, runID, stage, status string) {
	if o.progress == nil {
		return
	}
	o.progress.Publish(ctx, runID, stage, status)
}

func (o *Orchestrator) logAdvisories(log *logger.Logger, stage string, advisories []string) {
	for _, a := range advisories {
		log.Warn("Validation advisory", "stage", stage, "advisory", a)
	}
}
