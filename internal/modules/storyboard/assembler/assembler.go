package assembler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
)

var iconRE = regexp.MustCompile(`icon:([A-Za-z0-9_-]+)`)

// Assemble packages drafted pages into the final artifact. Pure and
// deterministic; re-assembling an already assembled storyboard is a no-op.
// The returned repair list records every audio substitution made.
func Assemble(moduleTitle string, pages []content.Page) (content.Storyboard, []string) {
	assembled := make([]content.Page, len(pages))
	var repairs []string

	for i, p := range pages {
		page := clonePage(p)
		page.PageNumber = fmt.Sprintf("p%02d", i+1)

		for j := range page.Events {
			ordinal := eventOrdinal(page.Events[j].Number, j)
			page.Events[j].Number = fmt.Sprintf("%d.%d", i+1, ordinal)
		}

		if len(page.LearningObjectiveIDs) == 0 {
			page.LearningObjectiveIDs = []string{content.GlobalObjectiveID}
			repairs = append(repairs, fmt.Sprintf("page %s learningObjectiveIds defaulted to GLOBAL", page.PageNumber))
		}

		repairs = append(repairs, content.RepairAudio(&page)...)
		assembled[i] = page
	}

	sb := content.Storyboard{
		ModuleTitle: moduleTitle,
		Pages:       assembled,
		TOC:         buildTOC(assembled),
		Assets:      buildAssets(assembled),
	}
	return sb, repairs
}

// eventOrdinal keeps the original within-page event ordinal when the event
// already carries a parseable dotted number, falling back to array position.
func eventOrdinal(number string, position int) int {
	if idx := strings.LastIndex(number, "."); idx >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(number[idx+1:])); err == nil && n > 0 {
			return n
		}
	}
	return position + 1
}

func buildTOC(pages []content.Page) []content.TOCEntry {
	toc := make([]content.TOCEntry, 0, len(pages))
	for _, p := range pages {
		toc = append(toc, content.TOCEntry{PageNumber: p.PageNumber, Title: p.Title})
	}
	return toc
}

func buildAssets(pages []content.Page) content.AssetManifest {
	var images []string
	var icons []string
	for _, p := range pages {
		images = append(images, p.Accessibility.AltText...)
		for _, ev := range p.Events {
			for _, m := range iconRE.FindAllStringSubmatch(ev.DevNotes, -1) {
				icons = append(icons, m[1])
			}
		}
	}
	return content.AssetManifest{
		Images: content.DedupeStrings(images),
		Icons:  content.DedupeStrings(icons),
	}
}

func clonePage(p content.Page) content.Page {
	out := p
	out.LearningObjectiveIDs = append([]string(nil), p.LearningObjectiveIDs...)
	out.Accessibility.AltText = append([]string(nil), p.Accessibility.AltText...)
	out.Events = append([]content.Event(nil), p.Events...)
	return out
}
