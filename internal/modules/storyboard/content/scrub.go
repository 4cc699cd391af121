package content

import (
	"fmt"
	"regexp"
	"strings"
)

// Chat-style meta phrasing that must never reach learner-facing narration.
var metaPhrases = []string{
	"let me know if",
	"let me know whether",
	"i hope this helps",
	"hope this helps",
	"as an ai",
	"as a language model",
	"here's the plan",
	"here is the plan",
	"up next",
	"next up",
	"before we dive in",
	"let's dive in",
	"lets dive in",
	"in this response",
	"in this json",
	"feel free to",
	"do you prefer",
	"any constraints",
	"if you want to go deeper",
	"if you'd like to go deeper",
	"wrap-up",
	"wrap up",
}

var multiSpaceRE = regexp.MustCompile(`\s{2,}`)

// FindMetaPhrases returns the meta phrases present in text, in list order.
func FindMetaPhrases(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	l := strings.ToLower(text)
	var hits []string
	for _, p := range metaPhrases {
		if strings.Contains(l, p) {
			hits = append(hits, p)
		}
	}
	return hits
}

// ScrubMetaPhrases removes meta phrases case-insensitively and collapses the
// whitespace left behind. Returns the cleaned text and the phrases removed.
func ScrubMetaPhrases(text string) (string, []string) {
	hits := FindMetaPhrases(text)
	if len(hits) == 0 {
		return text, nil
	}
	out := text
	for _, p := range hits {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
		out = re.ReplaceAllString(out, "")
	}
	out = multiSpaceRE.ReplaceAllString(out, " ")
	return strings.TrimSpace(out), hits
}

// ScrubPage cleans every event's audio and OST in place and reports what was
// removed.
func ScrubPage(p *Page) []string {
	var repairs []string
	for i := range p.Events {
		if cleaned, hits := ScrubMetaPhrases(p.Events[i].Audio); len(hits) > 0 {
			p.Events[i].Audio = cleaned
			repairs = append(repairs, fmt.Sprintf("event %d audio scrubbed (%d meta phrases)", i+1, len(hits)))
		}
		if cleaned, hits := ScrubMetaPhrases(p.Events[i].OST); len(hits) > 0 {
			p.Events[i].OST = cleaned
			repairs = append(repairs, fmt.Sprintf("event %d ost scrubbed (%d meta phrases)", i+1, len(hits)))
		}
	}
	return repairs
}
