package content

import (
	"math"
	"regexp"
	"strings"
)

var wordRE = regexp.MustCompile(`[A-Za-z0-9]+(?:'[A-Za-z0-9]+)?`)

func WordCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return len(wordRE.FindAllString(s, -1))
}

// Narration density targets. Audio aims at 150 words per minute of estimated
// page duration, on-screen text at 50; both converted to character targets at
// 5 chars per word.
const (
	audioWordsPerMinute = 150
	ostWordsPerMinute   = 50
	charsPerWord        = 5

	minVoiceoverCharsFloor = 600
	minOSTCharsFloor       = 200
)

// MinVoiceoverChars is the audio character target for a page of the given
// estimated duration. A 60s page targets max(600, 1*150*5) = 750.
func MinVoiceoverChars(durationSec int) int {
	minutes := float64(durationSec) / 60.0
	target := int(minutes * audioWordsPerMinute * charsPerWord)
	if target < minVoiceoverCharsFloor {
		return minVoiceoverCharsFloor
	}
	return target
}

func MinOSTChars(durationSec int) int {
	minutes := float64(durationSec) / 60.0
	target := int(minutes * ostWordsPerMinute * charsPerWord)
	if target < minOSTCharsFloor {
		return minOSTCharsFloor
	}
	return target
}

func TotalAudioChars(p Page) int {
	n := 0
	for _, ev := range p.Events {
		n += len(strings.TrimSpace(ev.Audio))
	}
	return n
}

func TotalOSTChars(p Page) int {
	n := 0
	for _, ev := range p.Events {
		n += len(strings.TrimSpace(ev.OST))
	}
	return n
}

// ComputeMetrics builds the caller-facing snapshot for a page set.
func ComputeMetrics(pages []Page) Metrics {
	m := Metrics{TotalPages: len(pages)}
	for _, p := range pages {
		if p.PageType.Interactive() {
			m.InteractivePages++
		}
		if p.PageType.KnowledgeCheck() {
			m.KnowledgeChecks++
		}
		if p.PageType.Scenario() {
			m.Scenarios++
		}
		m.TotalDuration += p.EstimatedDurationSec
	}
	return m
}

// EstimateDurationMinutes approximates delivery time from narration volume
// plus fixed per-page interaction overheads. OST words only count on events
// with no narration, so text is not double-counted against its voiceover.
func EstimateDurationMinutes(pages []Page) float64 {
	words := 0
	interactive := 0
	scenario := 0
	for _, p := range pages {
		for _, ev := range p.Events {
			words += WordCount(ev.Audio)
			if strings.TrimSpace(ev.Audio) == "" {
				words += WordCount(ev.OST)
			}
		}
		if p.PageType.Scenario() {
			scenario++
		} else if p.PageType.Interactive() {
			interactive++
		}
	}
	return float64(words)/130.0 + float64(interactive)*1.5 + float64(scenario)*2.0
}

// CeilRatio returns ceil(total * ratio) as an int.
func CeilRatio(total int, ratio float64) int {
	return int(math.Ceil(float64(total) * ratio))
}
