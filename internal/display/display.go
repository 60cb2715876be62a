// Package display provides human-readable names and number formats.
//
// Rule: code is for machines, words are for humans. Use these functions in
// CLI output and markdown reports; keep raw codes in JSON and map keys.
package display

import (
	"fmt"
	"math"
	"time"
)

// --- Outcomes ---

var outcomes = map[string]string{
	"pass":  "Passed",
	"fail":  "Failed",
	"error": "Errored",
	"skip":  "Skipped",
}

// Outcome returns the human-readable name for an outcome code.
// Unknown codes are returned as-is.
func Outcome(code string) string {
	if name, ok := outcomes[code]; ok {
		return name
	}
	return code
}

var outcomeGlyphs = map[string]string{
	"pass":  "✓",
	"fail":  "✗",
	"error": "!",
	"skip":  "-",
}

// OutcomeStrip renders a window of outcomes as a compact glyph strip,
// oldest first, e.g. "✓✓✗✓".
func OutcomeStrip(codes []string) string {
	b := make([]byte, 0, len(codes)*3)
	for _, c := range codes {
		g, ok := outcomeGlyphs[c]
		if !ok {
			g = "?"
		}
		b = append(b, g...)
	}
	return string(b)
}

// --- Quadrants ---

var quadrants = map[string]string{
	"requirement": "Requirement",
	"temporal":    "Temporal",
	"interface":   "Interface",
	"risk":        "Risk",
}

// Quadrant returns the human-readable name for a coverage quadrant.
func Quadrant(code string) string {
	if name, ok := quadrants[code]; ok {
		return name
	}
	return code
}

// --- Numbers ---

// Percent renders a ratio in [0,1] as a whole percentage ("85%"). Non-finite
// values render as an em dash.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// Score renders a flakiness score with one decimal ("66.7%").
func Score(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// --- Time ---

// TimeAgo renders how long before now t was: "5 mins ago", "1 hour ago".
func TimeAgo(t, now time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return plural(mins, "min") + " ago"
	}
	hrs := mins / 60
	if hrs < 24 {
		return plural(hrs, "hour") + " ago"
	}
	return plural(hrs/24, "day") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
