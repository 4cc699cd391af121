package editor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/prompts"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/platform/openai"
)

const (
	editConcurrency = 3
	pageSchemaName  = "storyboard_page"
)

// QualityEditor refines drafted pages in place. Best-effort by contract: any
// failure returns the original page unchanged, and editing a whole set never
// fails the caller.
type QualityEditor struct {
	llm openai.Client
	log *logger.Logger
}

func NewQualityEditor(llm openai.Client, log *logger.Logger) *QualityEditor {
	return &QualityEditor{
		llm: llm,
		log: log.With("service", "QualityEditor"),
	}
}

// EditPage runs one refinement call and merges the result. On any failure
// the original page comes back untouched.
func (e *QualityEditor) EditPage(ctx context.Context, page content.Page) content.Page {
	prompt := prompts.BuildEditPrompt(page)

	raw, err := e.llm.GenerateJSON(ctx, prompts.EditSystem, prompt, pageSchemaName, prompts.PageSchema())
	if err != nil {
		e.log.Warn("Page edit failed, keeping original", "page", page.Title, "error", err.Error())
		return page
	}

	edited := content.CoercePage(raw)
	merged, ok := merge(page, edited)
	if !ok {
		e.log.Warn("Page edit rejected, keeping original", "page", page.Title)
		return page
	}
	content.ScrubPage(&merged)
	return merged
}

// EditPages edits every page with a bounded worker pool and reassembles
// results in the original order.
func (e *QualityEditor) EditPages(ctx context.Context, pages []content.Page) []content.Page {
	out := make([]content.Page, len(pages))
	copy(out, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(editConcurrency)
	for i := range pages {
		i := i
		g.Go(func() error {
			out[i] = e.EditPage(gctx, pages[i])
			return nil
		})
	}
	// Workers never return errors; edits are swallowed per page.
	_ = g.Wait()
	return out
}

// merge applies the stage's overwrite policy: identity fields stay with the
// original no matter what the model returned, and the edit is rejected
// outright when its event list breaks the structural bounds.
func merge(original, edited content.Page) (content.Page, bool) {
	if len(edited.Events) < content.MinEventsPerPage || len(edited.Events) > content.MaxEventsPerPage {
		return original, false
	}

	merged := original
	merged.Events = edited.Events

	if edited.EstimatedDurationSec > 0 {
		merged.EstimatedDurationSec = edited.EstimatedDurationSec
	}
	if len(edited.Accessibility.AltText) > 0 {
		merged.Accessibility.AltText = edited.Accessibility.AltText
	}
	if edited.Accessibility.KeyboardNav != "" {
		merged.Accessibility.KeyboardNav = edited.Accessibility.KeyboardNav
	}
	if edited.Accessibility.ContrastNotes != "" {
		merged.Accessibility.ContrastNotes = edited.Accessibility.ContrastNotes
	}
	if edited.Accessibility.ScreenReader != "" {
		merged.Accessibility.ScreenReader = edited.Accessibility.ScreenReader
	}

	// Identity fields are never model-controlled.
	merged.PageNumber = original.PageNumber
	merged.Title = original.Title
	merged.PageType = original.PageType
	merged.LearningObjectiveIDs = original.LearningObjectiveIDs

	return merged, true
}
