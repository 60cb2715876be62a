package report

import (
	"fmt"
	"html"
	"math"
)

const (
	BadgeGreen = "#4ade80"
	BadgeRed   = "#ef4444"
)

// Badge renders a flat shields-style SVG with a fixed 65px label cell.
func Badge(label, value, color string) string {
	if color == "" {
		color = BadgeGreen
	}
	width := 100 + max(len(value)*7, 40)
	valueWidth := width - 65
	valueX := 65 + float64(valueWidth)/2
	label, value = html.EscapeString(label), html.EscapeString(value)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="20" role="img" aria-label="%[2]s: %[3]s">
  <linearGradient id="s" x2="0" y2="100%%">
    <stop offset="0" stop-color="#fff" stop-opacity=".7"/>
    <stop offset=".1" stop-opacity=".1"/>
  </linearGradient>
  <mask id="m">
    <rect width="%[1]d" height="20" rx="3" fill="#fff"/>
  </mask>
  <g mask="url(#m)">
    <rect width="65" height="20" fill="#555"/>
    <rect x="65" width="%[4]d" height="20" fill="%[5]s"/>
    <rect width="%[1]d" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">
    <text x="33" y="15">%[2]s</text>
    <text x="%[6]g" y="15">%[3]s</text>
  </g>
</svg>`, width, label, value, valueWidth, color, valueX)
}

// CoverageBadge renders "requirement% / temporal%" as a coverage badge.
func CoverageBadge(requirement, temporal float64) string {
	value := fmt.Sprintf("%d%% / %d%%", pct(requirement), pct(temporal))
	return Badge("coverage", value, BadgeGreen)
}

// ErrorBadge is served when coverage cannot be determined.
func ErrorBadge() string {
	return Badge("coverage", "error", BadgeRed)
}

func pct(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v * 100))
}
