// Package overlay computes and renders the semi-transparent caption band
// drawn over the bottom of preview images. Layout is pure arithmetic over
// the input text and canvas size; rasterization lives in render.go.
package overlay

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxLinesPerBlock = 2
	lineSpacing      = 1.4
	bandPadding      = 15
	minBandHeight    = 90
	bottomMargin     = 20

	minHeadlineSize = 14
	maxHeadlineSize = 44
	minBodySize     = 10
	maxBodySize     = 28
)

// Spec describes one computed overlay: the wrapped text lines, the chosen
// font sizes, and the band geometry. It is a deterministic function of the
// input text and canvas dimensions.
type Spec struct {
	Width  int
	Height int

	HeadlineLines []string
	BodyLines     []string
	HeadlineSize  int
	BodySize      int

	Padding    int
	BandHeight int
	BandTop    int
}

// Compute lays out the caption band for the given headline and description
// on a width x height canvas. The description contributes only its first
// sentence; each block wraps to at most two lines.
func Compute(headline, description string, width, height int) Spec {
	headlineText := StripBold(strings.TrimSpace(headline))
	bodyText := FirstSentence(description)

	// Font sizes scale with the canvas (22px/14px at the 800px reference),
	// clamped so narrow canvases stay legible and wide ones stay subtle.
	headlineSize := clamp(width*22/800, minHeadlineSize, maxHeadlineSize)
	bodySize := clamp(width*14/800, minBodySize, maxBodySize)

	// Characters-per-line budgets scale with width alone: roughly width/20
	// headline characters and width/10 body characters fit on a line.
	headlineBudget := maxInt(width/20, 12)
	bodyBudget := maxInt(width/10, 20)

	headlineLines := wrap(headlineText, headlineBudget, maxLinesPerBlock)
	bodyLines := wrap(bodyText, bodyBudget, maxLinesPerBlock)

	bandHeight := 2*bandPadding +
		blockHeight(len(headlineLines), headlineSize) +
		blockHeight(len(bodyLines), bodySize)
	if bandHeight < minBandHeight {
		bandHeight = minBandHeight
	}

	bandTop := height - bandHeight - bottomMargin
	if bandTop < 0 {
		bandTop = 0
	}

	return Spec{
		Width:         width,
		Height:        height,
		HeadlineLines: headlineLines,
		BodyLines:     bodyLines,
		HeadlineSize:  headlineSize,
		BodySize:      bodySize,
		Padding:       bandPadding,
		BandHeight:    bandHeight,
		BandTop:       bandTop,
	}
}

// HeadlineBaselines returns the y offset of each headline baseline relative
// to the band top.
func (s Spec) HeadlineBaselines() []int {
	baselines := make([]int, len(s.HeadlineLines))
	for i := range s.HeadlineLines {
		baselines[i] = s.Padding + s.HeadlineSize + i*lineHeight(s.HeadlineSize)
	}
	return baselines
}

// BodyBaselines returns the y offset of each body baseline relative to the
// band top, below the headline block.
func (s Spec) BodyBaselines() []int {
	offset := s.Padding + blockHeight(len(s.HeadlineLines), s.HeadlineSize)
	baselines := make([]int, len(s.BodyLines))
	for i := range s.BodyLines {
		baselines[i] = offset + s.BodySize + i*lineHeight(s.BodySize)
	}
	return baselines
}

// SVG renders the band as a standalone SVG document, with all text escaped
// for markup embedding. Used when a client asks for a vector overlay.
func (s Spec) SVG() string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, s.Width, s.BandHeight)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="#000000" opacity="0.7"/>`, s.Width, s.BandHeight)

	for i, y := range s.HeadlineBaselines() {
		fmt.Fprintf(&b,
			`<text x="%d" y="%d" style="font-family: 'Arial Black', Gadget, sans-serif; font-size: %dpx; font-weight: 900;" fill="#FFFFFF">%s</text>`,
			s.Padding, y, s.HeadlineSize, EscapeMarkup(s.HeadlineLines[i]))
	}
	for i, y := range s.BodyBaselines() {
		fmt.Fprintf(&b,
			`<text x="%d" y="%d" style="font-family: Arial, sans-serif; font-size: %dpx;" fill="#DDDDDD">%s</text>`,
			s.Padding, y, s.BodySize, EscapeMarkup(s.BodyLines[i]))
	}

	b.WriteString(`</svg>`)
	return b.String()
}

var boldMarkers = regexp.MustCompile(`^\*\*|\*\*$`)

// StripBold removes leading/trailing markdown bold markers, which models
// love to wrap headlines in.
func StripBold(s string) string {
	return boldMarkers.ReplaceAllString(s, "")
}

// FirstSentence cuts the description at the first sentence terminator and
// re-appends a period. Only this much of the description is rendered.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s) + "."
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// EscapeMarkup escapes text for safe embedding in an XML/SVG overlay.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// wrap greedily packs words into lines of at most budget characters. Lines
// beyond maxLines are dropped silently, not reported.
func wrap(text string, budget, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := make([]string, 0, maxLines)
	current := words[0]

	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) > budget {
			lines = append(lines, current)
			if len(lines) == maxLines {
				return lines
			}
			current = word
			continue
		}
		current += " " + word
	}

	return append(lines, current)
}

func blockHeight(lines, fontSize int) int {
	return lines * lineHeight(fontSize)
}

func lineHeight(fontSize int) int {
	return int(math.Ceil(float64(fontSize) * lineSpacing))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
