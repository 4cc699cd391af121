package drafter

import (
	"regexp"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/prompts"
)

// scene is one parsed phase section of a sequence-draft response.
type scene struct {
	Phase     string
	Title     string
	OST       string
	Narration string
}

// parseScenes locates scenes by the strict marker protocol. Returns scenes in
// response order; unknown phases are dropped. A zero-length result is a
// normal outcome handled by the caller, never an error.
func parseScenes(text string, phases []string) []scene {
	lines := strings.Split(text, "\n")

	type section struct {
		phase string
		start int
	}
	var sections []section
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prompts.SceneHeaderPrefix) {
			continue
		}
		rest := strings.TrimPrefix(trimmed, prompts.SceneHeaderPrefix)
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), prompts.SceneHeaderSuffix))
		if phase := matchPhase(rest, phases); phase != "" {
			sections = append(sections, section{phase: phase, start: i + 1})
		}
	}

	var scenes []scene
	for i, sec := range sections {
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].start - 1
		}
		body := strings.Join(lines[sec.start:end], "\n")
		sc := parseLabelledScene(body)
		sc.Phase = sec.phase
		scenes = append(scenes, sc)
	}
	return scenes
}

// parseScenesLoose is the fallback parser: any line that is just a known
// phase keyword (optionally decorated) starts a section.
func parseScenesLoose(text string, phases []string) []scene {
	lines := strings.Split(text, "\n")

	type section struct {
		phase string
		start int
	}
	var sections []section
	for i, line := range lines {
		trimmed := strings.Trim(strings.TrimSpace(line), "#*=:- \t")
		if trimmed == "" || len(trimmed) > 40 {
			continue
		}
		if phase := matchPhase(trimmed, phases); phase != "" {
			sections = append(sections, section{phase: phase, start: i + 1})
		}
	}

	var scenes []scene
	seen := map[string]bool{}
	for i, sec := range sections {
		if seen[sec.phase] {
			continue
		}
		seen[sec.phase] = true
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].start - 1
		}
		body := strings.Join(lines[sec.start:end], "\n")
		sc := parseLabelledScene(body)
		sc.Phase = sec.phase
		scenes = append(scenes, sc)
	}
	return scenes
}

func matchPhase(s string, phases []string) string {
	low := strings.ToLower(strings.TrimSpace(s))
	for _, p := range phases {
		pl := strings.ToLower(p)
		if low == pl || strings.HasPrefix(low, pl+" ") || strings.HasPrefix(low, pl+":") {
			return p
		}
	}
	return ""
}

// parseLabelledScene extracts the TITLE / ON-SCREEN TEXT / NARRATION sections
// from a scene body. Unlabelled leading text falls through to narration so a
// sloppy response still yields content.
func parseLabelledScene(body string) scene {
	var sc scene
	var current *strings.Builder
	narration := &strings.Builder{}
	ost := &strings.Builder{}
	current = narration

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.HasPrefix(upper, prompts.LabelTitle):
			sc.Title = strings.TrimSpace(trimmed[len(prompts.LabelTitle):])
			current = narration
		case strings.HasPrefix(upper, prompts.LabelOST):
			ost.WriteString(strings.TrimSpace(trimmed[len(prompts.LabelOST):]))
			ost.WriteString("\n")
			current = ost
		case strings.HasPrefix(upper, prompts.LabelNarration):
			narration.WriteString(strings.TrimSpace(trimmed[len(prompts.LabelNarration):]))
			narration.WriteString("\n")
			current = narration
		default:
			current.WriteString(line)
			current.WriteString("\n")
		}
	}

	sc.OST = strings.TrimSpace(ost.String())
	sc.Narration = strings.TrimSpace(narration.String())
	return sc
}

// splitParagraphs breaks narration into blank-line separated paragraphs.
func splitParagraphs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "\n\n") {
		part = strings.TrimSpace(strings.ReplaceAll(part, "\n", " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePipeRows parses "a | b | c" table lines with at least minCols columns,
// skipping header or separator rows.
func parsePipeRows(s string, minCols int) [][]string {
	var rows [][]string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(strings.Trim(line, "|"), "|")
		if len(parts) < minCols {
			continue
		}
		cells := make([]string, 0, len(parts))
		empty := true
		for _, p := range parts {
			cell := strings.TrimSpace(p)
			if cell != "" && strings.Trim(cell, "-: ") != "" {
				empty = false
			}
			cells = append(cells, cell)
		}
		if empty || isHeaderRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func isHeaderRow(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, "|"))
	return strings.Contains(joined, "trigger") && strings.Contains(joined, "reveal") ||
		strings.Contains(joined, "item") && strings.Contains(joined, "drop zone")
}

type questionBlock struct {
	Stem              string
	Options           []string
	Correct           string
	FeedbackCorrect   string
	FeedbackIncorrect string
}

var questionRE = regexp.MustCompile(`(?im)^\s*question\s+(\d+)\s*:\s*(.*)$`)
var optionRE = regexp.MustCompile(`(?m)^\s*([A-F])[\.\)]\s+(.*)$`)

// parseQuestionBlocks splits a Check scene body into numbered questions.
func parseQuestionBlocks(s string) []questionBlock {
	locs := questionRE.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}

	var blocks []questionBlock
	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		stem := strings.TrimSpace(s[loc[4]:loc[5]])
		body := s[loc[1]:end]

		q := questionBlock{Stem: stem}
		for _, m := range optionRE.FindAllStringSubmatch(body, -1) {
			q.Options = append(q.Options, strings.TrimSpace(m[1]+") "+m[2]))
		}
		q.Correct = labelledLine(body, "Correct:")
		q.FeedbackCorrect = labelledLine(body, "Feedback correct:")
		q.FeedbackIncorrect = labelledLine(body, "Feedback incorrect:")

		if q.Stem != "" {
			blocks = append(blocks, q)
		}
	}
	return blocks
}

func labelledLine(body, label string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len(label) && strings.EqualFold(trimmed[:len(label)], label) {
			return strings.TrimSpace(trimmed[len(label):])
		}
	}
	return ""
}

// firstWords returns the first n whitespace-separated words of s.
func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ")
}
