package drafter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/prompts"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/platform/openai"
)

const (
	maxDraftAttempts     = 3
	maxExpansionAttempts = 3
	pageDraftBudget      = 3 * time.Minute

	// An expansion attempt is only accepted if it grows narration by more
	// than this many characters over the previous best.
	expansionGainFloor = 50

	// Pages below the full narration target are still accepted at 85% of it.
	acceptanceRatio = 0.85

	pageSchemaName = "storyboard_page"
)

// Options carries the request-level drafting context shared by every page.
type Options struct {
	Audience       string
	Constraints    []string
	SourceMaterial string
}

// RunRecorder receives one row per LLM attempt. Recording is best-effort;
// implementations must never fail the caller.
type RunRecorder interface {
	Record(ctx context.Context, stage string, attempt int, latencyMs int64, status string, errs []string, metrics map[string]any)
}

// DraftFailure is raised only when all structural attempts are exhausted.
// Length shortfalls never produce it.
type DraftFailure struct {
	PageTitle string
	Attempts  int
	Err       error
}

func (e *DraftFailure) Error() string {
	return fmt.Sprintf("draft failed for page %q after %d attempts: %v", e.PageTitle, e.Attempts, e.Err)
}

func (e *DraftFailure) Unwrap() error { return e.Err }

// UnitDrafter drafts one page per call, with structural retries and a
// narration length-expansion loop.
type UnitDrafter struct {
	llm  openai.Client
	log  *logger.Logger
	runs RunRecorder

	sleep func(time.Duration)
	now   func() time.Time
}

func NewUnitDrafter(llm openai.Client, log *logger.Logger, runs RunRecorder) *UnitDrafter {
	return &UnitDrafter{
		llm:   llm,
		log:   log.With("service", "UnitDrafter"),
		runs:  runs,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// DraftPage drafts the page described by plan. It returns a usable page or a
// DraftFailure after exhausting structural retries.
func (d *UnitDrafter) DraftPage(ctx context.Context, plan content.PagePlan, opts Options) (content.Page, error) {
	started := d.now()
	deadline := started.Add(pageDraftBudget)

	page, err := d.draftStructural(ctx, plan, opts)
	if err != nil {
		return content.Page{}, err
	}

	page = d.expand(ctx, plan, page, deadline)
	d.backfillOST(&page, plan)

	return page, nil
}

func (d *UnitDrafter) draftStructural(ctx context.Context, plan content.PagePlan, opts Options) (content.Page, error) {
	var lastErrors []string
	var lastErr error

	for attempt := 1; attempt <= maxDraftAttempts; attempt++ {
		if ctx.Err() != nil {
			return content.Page{}, &DraftFailure{PageTitle: plan.Title, Attempts: attempt - 1, Err: ctx.Err()}
		}
		if attempt > 1 {
			d.sleep(time.Duration(attempt-1) * time.Second)
		}

		prompt := prompts.BuildDraftPrompt(plan, opts.Audience, opts.Constraints, opts.SourceMaterial, lastErrors)

		callStart := d.now()
		raw, err := d.llm.GenerateJSON(ctx, prompts.DraftSystem, prompt, pageSchemaName, prompts.PageSchema())
		latency := d.now().Sub(callStart).Milliseconds()

		if err != nil {
			lastErr = err
			lastErrors = []string{err.Error()}
			d.record(ctx, "draft", attempt, latency, "error", lastErrors, nil)
			d.log.Warn("Page draft attempt failed", "page", plan.Title, "attempt", attempt, "error", err.Error())
			continue
		}

		if issues := missingRequiredFields(raw); len(issues) > 0 {
			lastErr = fmt.Errorf("draft response missing required fields: %s", strings.Join(issues, ", "))
			lastErrors = issues
			d.record(ctx, "draft", attempt, latency, "invalid", issues, nil)
			d.log.Warn("Page draft attempt invalid", "page", plan.Title, "attempt", attempt, "issues", strings.Join(issues, "; "))
			continue
		}

		page := content.CoercePage(raw)
		repairs := content.RepairPage(&page, plan)
		repairs = append(repairs, content.ScrubPage(&page)...)
		if len(repairs) > 0 {
			d.log.Debug("Page draft repaired", "page", plan.Title, "repairs", strings.Join(repairs, "; "))
		}
		d.record(ctx, "draft", attempt, latency, "ok", nil, map[string]any{
			"events":      len(page.Events),
			"audio_chars": content.TotalAudioChars(page),
			"repairs":     repairs,
		})
		return page, nil
	}

	return content.Page{}, &DraftFailure{PageTitle: plan.Title, Attempts: maxDraftAttempts, Err: lastErr}
}

// expand grows narration toward the duration-derived target. Attempts are
// sequential, bounded by count, the wall-clock budget and a
// diminishing-returns guard.
func (d *UnitDrafter) expand(ctx context.Context, plan content.PagePlan, page content.Page, deadline time.Time) content.Page {
	target := content.MinVoiceoverChars(plan.TargetDurationSec)
	best := page
	bestChars := content.TotalAudioChars(best)

	for attempt := 1; attempt <= maxExpansionAttempts && bestChars < target; attempt++ {
		if ctx.Err() != nil || d.now().After(deadline) {
			d.log.Warn("Expansion budget exhausted", "page", plan.Title, "audio_chars", bestChars, "target", target)
			break
		}

		prompt := prompts.BuildExpandPrompt(plan, best, target, bestChars)
		callStart := d.now()
		raw, err := d.llm.GenerateJSON(ctx, prompts.DraftSystem, prompt, pageSchemaName, prompts.PageSchema())
		latency := d.now().Sub(callStart).Milliseconds()

		if err != nil {
			d.record(ctx, "expand", attempt, latency, "error", []string{err.Error()}, nil)
			d.log.Warn("Expansion attempt failed", "page", plan.Title, "attempt", attempt, "error", err.Error())
			continue
		}

		candidate := content.CoercePage(raw)
		content.RepairPage(&candidate, plan)
		content.ScrubPage(&candidate)

		candChars := content.TotalAudioChars(candidate)
		d.record(ctx, "expand", attempt, latency, "ok", nil, map[string]any{
			"audio_chars": candChars,
			"target":      target,
		})

		if candChars <= bestChars+expansionGainFloor {
			d.log.Debug("Expansion stalled, stopping early", "page", plan.Title, "attempt", attempt,
				"audio_chars", candChars, "best", bestChars)
			break
		}
		best = candidate
		bestChars = candChars
	}

	if bestChars < int(float64(target)*acceptanceRatio) {
		d.log.Warn("Page accepted below narration target", "page", plan.Title,
			"audio_chars", bestChars, "target", target)
	}
	return best
}

// backfillOST is a single mechanical pass: events whose on-screen text falls
// under their share of the OST target get a short excerpt of their narration
// appended.
func (d *UnitDrafter) backfillOST(page *content.Page, plan content.PagePlan) {
	if len(page.Events) == 0 {
		return
	}
	share := content.MinOSTChars(plan.TargetDurationSec) / len(page.Events)
	for i := range page.Events {
		ev := &page.Events[i]
		if len(strings.TrimSpace(ev.OST)) >= share {
			continue
		}
		excerpt := firstWords(ev.Audio, 10)
		if excerpt == "" {
			continue
		}
		if strings.TrimSpace(ev.OST) == "" {
			ev.OST = excerpt
		} else {
			ev.OST = strings.TrimSpace(ev.OST) + " " + excerpt
		}
	}
}

func missingRequiredFields(raw map[string]any) []string {
	var issues []string
	if s, _ := raw["title"].(string); strings.TrimSpace(s) == "" {
		issues = append(issues, "title missing")
	}
	if s, _ := raw["pageType"].(string); strings.TrimSpace(s) == "" {
		issues = append(issues, "pageType missing")
	}
	events, ok := raw["events"].([]any)
	if !ok || len(events) == 0 {
		issues = append(issues, "events array missing or empty")
	}
	return issues
}

func (d *UnitDrafter) record(ctx context.Context, stage string, attempt int, latencyMs int64, status string, errs []string, metrics map[string]any) {
	if d.runs == nil {
		return
	}
	d.runs.Record(ctx, stage, attempt, latencyMs, status, errs, metrics)
}
