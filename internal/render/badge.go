package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/codelens/codelens/internal/pipeline"
)

const repoURL = "https://github.com/codelens/codelens"

// BadgeInfo contains the generated badge URL and markdown.
type BadgeInfo struct {
	URL      string
	Markdown string
}

// GenerateBadge builds a shields.io badge from the codebase health score,
// grounded on the teacher's GenerateBadge (tier -> color mapping), with the
// score-tier label swapped for the continuous health score this spec scores.
func GenerateBadge(result *pipeline.Result) BadgeInfo {
	if result == nil || result.Field == nil {
		return BadgeInfo{}
	}

	health := result.Field.Global.CodebaseHealth
	message := fmt.Sprintf("health %.2f", health)
	encoded := encodeBadgeText(message)
	badgeURL := fmt.Sprintf("https://img.shields.io/badge/codelens-%s-%s", encoded, healthToColor(health))
	markdown := fmt.Sprintf("[![codelens](%s)](%s)", badgeURL, repoURL)

	return BadgeInfo{URL: badgeURL, Markdown: markdown}
}

// RenderBadge prints the shields.io badge markdown to w.
func RenderBadge(w io.Writer, result *pipeline.Result) {
	badge := GenerateBadge(result)
	if badge.Markdown == "" {
		return
	}
	fmt.Fprintln(w, badge.Markdown)
}

func encodeBadgeText(s string) string {
	escaped := strings.ReplaceAll(s, "-", "--")
	return url.PathEscape(escaped)
}

func healthToColor(health float64) string {
	switch {
	case health >= 0.7:
		return "green"
	case health >= 0.4:
		return "yellow"
	default:
		return "red"
	}
}
