package planner

import (
	"reflect"
	"testing"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
)

func TestPlanTwoObjectives(t *testing.T) {
	req := content.GenerationRequest{
		ModuleTitle:        "Safety Training",
		LearningObjectives: []string{"Identify hazards", "Report incidents"},
		Duration:           20,
		Level:              2,
	}
	req.Normalize()

	plan := Plan(req)

	if len(plan.Bundles) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(plan.Bundles))
	}
	for _, b := range plan.Bundles {
		if len(b.Pages) != 5 {
			t.Fatalf("bundle %s expected 5 pages, got %d", b.Objective.ID, len(b.Pages))
		}
	}
	if len(plan.Scenarios) != 2 {
		t.Fatalf("expected 2 scenario arcs, got %d", len(plan.Scenarios))
	}
	for _, arc := range plan.Scenarios {
		if len(arc.Pages) != 4 {
			t.Fatalf("scenario for %s expected 4 pages, got %d", arc.Objective.ID, len(arc.Pages))
		}
	}
	if plan.Scenarios[0].Objective.ID != "lo-1" || plan.Scenarios[1].Objective.ID != "lo-2" {
		t.Fatalf("scenario arcs should map to lo-1 and lo-2, got %s and %s",
			plan.Scenarios[0].Objective.ID, plan.Scenarios[1].Objective.ID)
	}
	if plan.Assessment.TotalChecks != 5 {
		t.Fatalf("expected 5 knowledge checks (clamp(ceil(2*1.5),5,10)), got %d", plan.Assessment.TotalChecks)
	}
	// remainder goes to the earliest objective
	if plan.Assessment.PerObjective["lo-1"] != 3 || plan.Assessment.PerObjective["lo-2"] != 2 {
		t.Fatalf("expected 3/2 distribution, got %v", plan.Assessment.PerObjective)
	}
	if len(plan.AssessmentPages) != 5 {
		t.Fatalf("expected 5 assessment pages, got %d", len(plan.AssessmentPages))
	}
	if got := plan.PlannedPageCount(); got != 25 {
		t.Fatalf("expected planned page count 25 (10 bundle + 8 scenario + 5 KC + 2), got %d", got)
	}
}

func TestPlanBundlePhaseOrder(t *testing.T) {
	req := content.GenerationRequest{ModuleTitle: "M", LearningObjectives: []string{"Only objective"}}
	req.Normalize()

	plan := Plan(req)
	pages := plan.Bundles[0].Pages

	wantTypes := []content.PageType{
		content.PageTextImage,
		content.PageClickToReveal,
		content.PageDragAndDrop,
		content.PageAssessmentMCQ,
		content.PageTextImage,
	}
	wantDurations := []int{90, 60, 120, 90, 60}
	for i, p := range pages {
		if p.PageType != wantTypes[i] {
			t.Fatalf("phase %d: expected type %q, got %q", i, wantTypes[i], p.PageType)
		}
		if p.TargetDurationSec != wantDurations[i] {
			t.Fatalf("phase %d: expected duration %d, got %d", i, wantDurations[i], p.TargetDurationSec)
		}
		if len(p.LearningObjectiveIDs) != 1 || p.LearningObjectiveIDs[0] != "lo-1" {
			t.Fatalf("phase %d: expected lo-1 tag, got %v", i, p.LearningObjectiveIDs)
		}
	}
}

func TestPlanSingleObjectiveBoundary(t *testing.T) {
	req := content.GenerationRequest{ModuleTitle: "M", LearningObjectives: []string{"Only objective"}}
	req.Normalize()

	plan := Plan(req)

	if len(plan.Scenarios) != 2 {
		t.Fatalf("expected 2 scenario arcs for a single objective, got %d", len(plan.Scenarios))
	}
	if plan.Scenarios[0].Objective.ID != "lo-1" || plan.Scenarios[1].Objective.ID != "lo-1" {
		t.Fatalf("both arcs must target the only objective, got %s and %s",
			plan.Scenarios[0].Objective.ID, plan.Scenarios[1].Objective.ID)
	}
	if plan.Assessment.TotalChecks != 5 {
		t.Fatalf("expected knowledge checks clamped to 5, got %d", plan.Assessment.TotalChecks)
	}
	if plan.Assessment.PerObjective["lo-1"] != 5 {
		t.Fatalf("expected all 5 checks on lo-1, got %v", plan.Assessment.PerObjective)
	}
}

func TestPlanLaunchAndSummaryTagging(t *testing.T) {
	req := content.GenerationRequest{ModuleTitle: "M", LearningObjectives: []string{"A", "B"}}
	req.Normalize()

	plan := Plan(req)

	if plan.Launch.PageType != content.PageCourseLaunch {
		t.Fatalf("launch page type: got %q", plan.Launch.PageType)
	}
	if len(plan.Launch.LearningObjectiveIDs) != 1 || plan.Launch.LearningObjectiveIDs[0] != content.GlobalObjectiveID {
		t.Fatalf("launch should carry the GLOBAL sentinel, got %v", plan.Launch.LearningObjectiveIDs)
	}
	if plan.Summary.PageType != content.PageSummary {
		t.Fatalf("summary page type: got %q", plan.Summary.PageType)
	}
	if !reflect.DeepEqual(plan.Summary.LearningObjectiveIDs, []string{"lo-1", "lo-2"}) {
		t.Fatalf("summary should reference every objective, got %v", plan.Summary.LearningObjectiveIDs)
	}
}

func TestPlanDeterminism(t *testing.T) {
	req := content.GenerationRequest{
		ModuleTitle:        "Safety Training",
		LearningObjectives: []string{"Identify hazards", "Report incidents", "Escalate risks"},
		Audience:           "Warehouse staff",
		Duration:           30,
		Level:              3,
	}
	req.Normalize()

	a := Plan(req)
	b := Plan(req)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("planner must be deterministic for identical inputs")
	}
}
