package content

import "strings"

// GlobalObjectiveID tags pages that serve the module as a whole (launch,
// summary) rather than a specific learning objective.
const GlobalObjectiveID = "GLOBAL"

// PageType is the closed page type vocabulary. Authoritative from the plan;
// drafting never invents values outside this set.
type PageType string

const (
	PageCourseLaunch        PageType = "Course Launch"
	PageTextImage           PageType = "Text + Image"
	PageTextVideo           PageType = "Text + Video"
	PageClickToReveal       PageType = "Interactive: Click-to-Reveal"
	PageTimeline            PageType = "Interactive: Timeline"
	PageHotspot             PageType = "Interactive: Hotspot"
	PageDragAndDrop         PageType = "Interactive: Drag-and-Drop"
	PageScenarioSetup       PageType = "Scenario: Setup"
	PageScenarioDecision    PageType = "Scenario: Decision"
	PageScenarioConsequence PageType = "Scenario: Consequence"
	PageScenarioDebrief     PageType = "Scenario: Debrief"
	PageAssessmentMCQ       PageType = "Assessment: MCQ"
	PageAssessmentMRQ       PageType = "Assessment: MRQ"
	PageSummary             PageType = "Summary"
)

var allPageTypes = []PageType{
	PageCourseLaunch, PageTextImage, PageTextVideo,
	PageClickToReveal, PageTimeline, PageHotspot, PageDragAndDrop,
	PageScenarioSetup, PageScenarioDecision, PageScenarioConsequence, PageScenarioDebrief,
	PageAssessmentMCQ, PageAssessmentMRQ, PageSummary,
}

func (t PageType) Valid() bool {
	for _, pt := range allPageTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Interactive reports whether a page counts toward the interaction-density
// gate. Scenario and assessment pages count as interactions.
func (t PageType) Interactive() bool {
	s := string(t)
	return strings.HasPrefix(s, "Interactive:") ||
		strings.HasPrefix(s, "Scenario:") ||
		strings.HasPrefix(s, "Assessment:")
}

func (t PageType) Scenario() bool {
	return strings.HasPrefix(string(t), "Scenario:")
}

func (t PageType) KnowledgeCheck() bool {
	return t == PageAssessmentMCQ || t == PageAssessmentMRQ
}

// Event is one row of the four-column page structure.
type Event struct {
	Number   string `json:"number"`
	Audio    string `json:"audio"`
	OST      string `json:"ost"`
	DevNotes string `json:"devNotes"`
}

// Accessibility is mandatory on every page; all four fields must be present.
type Accessibility struct {
	AltText       []string `json:"altText"`
	KeyboardNav   string   `json:"keyboardNav"`
	ContrastNotes string   `json:"contrastNotes"`
	ScreenReader  string   `json:"screenReader"`
}

// Page bounds enforced at drafting and assembly.
const (
	MinEventsPerPage = 2
	MaxEventsPerPage = 12
)

type Page struct {
	PageNumber           string        `json:"pageNumber"`
	Title                string        `json:"title"`
	PageType             PageType      `json:"pageType"`
	LearningObjectiveIDs []string      `json:"learningObjectiveIds"`
	EstimatedDurationSec int           `json:"estimatedDurationSec"`
	Accessibility        Accessibility `json:"accessibility"`
	Events               []Event       `json:"events"`
}

// PagePlan is the drafting specification for one page. Produced by the
// planner, consumed by the drafters, never persisted past the run.
type PagePlan struct {
	PageType             PageType `json:"pageType"`
	Title                string   `json:"title"`
	LearningObjectiveIDs []string `json:"learningObjectiveIds"`
	TargetDurationSec    int      `json:"targetDurationSec"`
	ObjectiveText        string   `json:"objectiveText,omitempty"`
	Context              string   `json:"context,omitempty"`
	SourceExcerpt        string   `json:"sourceExcerpt,omitempty"`
}

// Objective ids are positional (lo-1, lo-2, ...) and must stay stable for the
// whole run; downstream stages correlate by id, not text.
type Objective struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Bundle holds the five phase pages (Teach/Show/Apply/Check/Reflect) planned
// for one objective.
type Bundle struct {
	Objective Objective  `json:"objective"`
	Pages     []PagePlan `json:"pages"`
}

// ScenarioArc holds the four arc pages (Setup/Decision/Consequence/Debrief).
type ScenarioArc struct {
	Objective Objective  `json:"objective"`
	Pages     []PagePlan `json:"pages"`
}

type AssessmentPlan struct {
	TotalChecks  int            `json:"totalChecks"`
	PerObjective map[string]int `json:"perObjective"`
}

type ModulePlan struct {
	ModuleTitle     string         `json:"moduleTitle"`
	DurationMinutes int            `json:"durationMinutes"`
	Level           int            `json:"level"`
	Objectives      []Objective    `json:"objectives"`
	Launch          PagePlan       `json:"launch"`
	Bundles         []Bundle       `json:"bundles"`
	Scenarios       []ScenarioArc  `json:"scenarios"`
	Assessment      AssessmentPlan `json:"assessment"`
	AssessmentPages []PagePlan     `json:"assessmentPages"`
	Summary         PagePlan       `json:"summary"`
}

// PlannedPageCount is advisory; the drafted page count may differ.
func (p ModulePlan) PlannedPageCount() int {
	n := 2 // launch + summary
	for _, b := range p.Bundles {
		n += len(b.Pages)
	}
	for _, s := range p.Scenarios {
		n += len(s.Pages)
	}
	n += len(p.AssessmentPages)
	return n
}

type TOCEntry struct {
	PageNumber string `json:"pageNumber"`
	Title      string `json:"title"`
}

type AssetManifest struct {
	Images []string `json:"images"`
	Icons  []string `json:"icons"`
}

// Storyboard is the final artifact handed to persistence and rendering.
type Storyboard struct {
	ModuleTitle string        `json:"moduleTitle"`
	TOC         []TOCEntry    `json:"toc"`
	Pages       []Page        `json:"pages"`
	Assets      AssetManifest `json:"assets"`
}

// Metrics is the snapshot surfaced to the caller on success.
type Metrics struct {
	TotalPages       int `json:"totalPages"`
	InteractivePages int `json:"interactivePages"`
	KnowledgeChecks  int `json:"knowledgeChecks"`
	TotalDuration    int `json:"totalDuration"`
	Scenarios        int `json:"scenarios"`
}

// GenerationRequest is the pipeline entry contract consumed from the HTTP
// layer.
type GenerationRequest struct {
	ModuleTitle        string   `json:"moduleTitle"`
	LearningObjectives []string `json:"learningObjectives"`
	Audience           string   `json:"audience,omitempty"`
	Duration           int      `json:"duration,omitempty"`
	Constraints        []string `json:"constraints,omitempty"`
	SourceMaterial     string   `json:"sourceMaterial,omitempty"`
	Level              int      `json:"level,omitempty"`
}

// Normalize applies the contract defaults in place.
func (r *GenerationRequest) Normalize() {
	r.ModuleTitle = strings.TrimSpace(r.ModuleTitle)
	if r.Duration <= 0 {
		r.Duration = 20
	}
	if r.Level < 1 || r.Level > 4 {
		r.Level = 2
	}
	objectives := make([]string, 0, len(r.LearningObjectives))
	for _, o := range r.LearningObjectives {
		o = strings.TrimSpace(o)
		if o != "" {
			objectives = append(objectives, o)
		}
	}
	r.LearningObjectives = objectives
}
