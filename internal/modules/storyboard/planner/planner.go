package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
)

// Bundle phase layout: page type and target duration for each of the five
// phases, in fixed order.
var bundlePhases = []struct {
	Phase    string
	PageType content.PageType
	Duration int
}{
	{"Teach", content.PageTextImage, 90},
	{"Show", content.PageClickToReveal, 60},
	{"Apply", content.PageDragAndDrop, 120},
	{"Check", content.PageAssessmentMCQ, 90},
	{"Reflect", content.PageTextImage, 60},
}

var scenarioPhases = []struct {
	Phase    string
	PageType content.PageType
	Duration int
}{
	{"Setup", content.PageScenarioSetup, 60},
	{"Decision", content.PageScenarioDecision, 90},
	{"Consequence", content.PageScenarioConsequence, 60},
	{"Debrief", content.PageScenarioDebrief, 60},
}

const (
	minKnowledgeChecks = 5
	maxKnowledgeChecks = 10
)

// Plan expands the request into a concrete page plan. Pure and deterministic:
// no LLM calls, and the knowledge-check remainder always lands on the
// earliest objectives.
func Plan(req content.GenerationRequest) content.ModulePlan {
	objectives := make([]content.Objective, 0, len(req.LearningObjectives))
	for i, text := range req.LearningObjectives {
		objectives = append(objectives, content.Objective{
			ID:   fmt.Sprintf("lo-%d", i+1),
			Text: strings.TrimSpace(text),
		})
	}

	plan := content.ModulePlan{
		ModuleTitle:     req.ModuleTitle,
		DurationMinutes: req.Duration,
		Level:           req.Level,
		Objectives:      objectives,
	}

	plan.Launch = content.PagePlan{
		PageType:             content.PageCourseLaunch,
		Title:                "Welcome to " + req.ModuleTitle,
		LearningObjectiveIDs: []string{content.GlobalObjectiveID},
		TargetDurationSec:    60,
		Context:              launchContext(req, objectives),
	}

	for _, obj := range objectives {
		bundle := content.Bundle{Objective: obj}
		for _, phase := range bundlePhases {
			bundle.Pages = append(bundle.Pages, content.PagePlan{
				PageType:             phase.PageType,
				Title:                fmt.Sprintf("%s: %s", phase.Phase, shortText(obj.Text)),
				LearningObjectiveIDs: []string{obj.ID},
				TargetDurationSec:    phase.Duration,
				ObjectiveText:        obj.Text,
				Context:              fmt.Sprintf("%s phase of the learning bundle for this objective.", phase.Phase),
			})
		}
		plan.Bundles = append(plan.Bundles, bundle)
	}

	// Two scenario arcs, anchored to the first and second objective. With a
	// single objective both arcs point at it.
	if len(objectives) > 0 {
		first := objectives[0]
		second := first
		if len(objectives) > 1 {
			second = objectives[1]
		}
		plan.Scenarios = []content.ScenarioArc{
			scenarioArc(1, first),
			scenarioArc(2, second),
		}
	}

	plan.Assessment = assessmentPlan(objectives)
	plan.AssessmentPages = assessmentPages(plan.Assessment, objectives)

	plan.Summary = content.PagePlan{
		PageType:             content.PageSummary,
		Title:                "Summary and Key Takeaways",
		LearningObjectiveIDs: objectiveIDs(objectives),
		TargetDurationSec:    90,
		Context:              "Recap every objective and close the module.",
	}

	return plan
}

func scenarioArc(n int, obj content.Objective) content.ScenarioArc {
	arc := content.ScenarioArc{Objective: obj}
	for _, phase := range scenarioPhases {
		arc.Pages = append(arc.Pages, content.PagePlan{
			PageType:             phase.PageType,
			Title:                fmt.Sprintf("Scenario %d %s: %s", n, phase.Phase, shortText(obj.Text)),
			LearningObjectiveIDs: []string{obj.ID},
			TargetDurationSec:    phase.Duration,
			ObjectiveText:        obj.Text,
			Context:              fmt.Sprintf("%s beat of a branching workplace scenario grounded in this objective.", phase.Phase),
		})
	}
	return arc
}

func assessmentPlan(objectives []content.Objective) content.AssessmentPlan {
	n := len(objectives)
	total := int(math.Ceil(float64(n) * 1.5))
	if total < minKnowledgeChecks {
		total = minKnowledgeChecks
	}
	if total > maxKnowledgeChecks {
		total = maxKnowledgeChecks
	}

	per := map[string]int{}
	if n > 0 {
		base := total / n
		rem := total % n
		for i, obj := range objectives {
			per[obj.ID] = base
			if i < rem {
				per[obj.ID]++
			}
		}
	}
	return content.AssessmentPlan{TotalChecks: total, PerObjective: per}
}

func assessmentPages(plan content.AssessmentPlan, objectives []content.Objective) []content.PagePlan {
	var pages []content.PagePlan
	seq := 0
	for _, obj := range objectives {
		for i := 0; i < plan.PerObjective[obj.ID]; i++ {
			seq++
			pageType := content.PageAssessmentMCQ
			if seq%2 == 0 {
				pageType = content.PageAssessmentMRQ
			}
			pages = append(pages, content.PagePlan{
				PageType:             pageType,
				Title:                fmt.Sprintf("Knowledge Check %d", seq),
				LearningObjectiveIDs: []string{obj.ID},
				TargetDurationSec:    90,
				ObjectiveText:        obj.Text,
				Context:              "Standalone knowledge check verifying this objective.",
			})
		}
	}
	return pages
}

func objectiveIDs(objectives []content.Objective) []string {
	if len(objectives) == 0 {
		return []string{content.GlobalObjectiveID}
	}
	ids := make([]string, 0, len(objectives))
	for _, obj := range objectives {
		ids = append(ids, obj.ID)
	}
	return ids
}

func launchContext(req content.GenerationRequest, objectives []content.Objective) string {
	var b strings.Builder
	b.WriteString("Course launch page introducing the module")
	if req.Audience != "" {
		b.WriteString(" for ")
		b.WriteString(req.Audience)
	}
	b.WriteString(". Objectives: ")
	for i, obj := range objectives {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(obj.Text)
	}
	return b.String()
}

func shortText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 60 {
		return s
	}
	cut := s[:60]
	if idx := strings.LastIndex(cut, " "); idx > 20 {
		cut = cut[:idx]
	}
	return cut
}
