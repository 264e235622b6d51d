package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longHeadline = "An Extremely Long Headline About Modular Synthesizer Firmware Updates That Cannot Possibly Fit On A Single Line Of Any Reasonable Canvas"

func TestComputeLineCap(t *testing.T) {
	spec := Compute(longHeadline, "Short description.", 800, 800)

	assert.Len(t, spec.HeadlineLines, 2, "headline must truncate to two lines")
	assert.LessOrEqual(t, len(spec.BodyLines), 2)
}

func TestComputeBodyLineCap(t *testing.T) {
	desc := strings.Repeat("word ", 200) + "end."
	spec := Compute("Title", desc, 400, 400)

	assert.LessOrEqual(t, len(spec.BodyLines), 2)
}

func TestComputeBandNeverAboveCanvas(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"square", 800, 800},
		{"short canvas", 800, 100},
		{"tiny canvas", 200, 50},
		{"band taller than image", 1200, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := Compute(longHeadline, strings.Repeat("lorem ipsum ", 30)+".", tc.width, tc.height)
			assert.GreaterOrEqual(t, spec.BandTop, 0)
		})
	}
}

func TestComputeMinimumBandHeight(t *testing.T) {
	spec := Compute("Hi", "Ok.", 800, 800)

	assert.GreaterOrEqual(t, spec.BandHeight, minBandHeight,
		"short captions still get a legible plate")
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute("**Big News**", "First. Second. Third.", 800, 800)
	b := Compute("**Big News**", "First. Second. Third.", 800, 800)

	assert.Equal(t, a, b)
}

func TestComputeStripsBoldAndCutsSentence(t *testing.T) {
	spec := Compute("**Loud Headline**", "Only this matters! Everything else is noise.", 800, 800)

	require.NotEmpty(t, spec.HeadlineLines)
	assert.Equal(t, "Loud Headline", spec.HeadlineLines[0])
	require.NotEmpty(t, spec.BodyLines)
	assert.Equal(t, "Only this matters.", spec.BodyLines[0])
}

func TestFirstSentence(t *testing.T) {
	cases := map[string]string{
		"One. Two.":           "One.",
		"Really? Yes.":        "Really.",
		"Surprise! More":      "Surprise.",
		"no terminator":       "no terminator.",
		"  padded. trailing ": "padded.",
	}

	for in, want := range cases {
		assert.Equal(t, want, FirstSentence(in), "input %q", in)
	}
}

func TestStripBold(t *testing.T) {
	assert.Equal(t, "Headline", StripBold("**Headline**"))
	assert.Equal(t, "Headline", StripBold("Headline"))
	assert.Equal(t, "Mid**dle", StripBold("Mid**dle"), "only edge markers are stripped")
}

func TestEscapeMarkup(t *testing.T) {
	assert.Equal(t,
		"&lt;b&gt;Tom &amp; Jerry&apos;s &quot;hits&quot;&lt;/b&gt;",
		EscapeMarkup(`<b>Tom & Jerry's "hits"</b>`))
}

func TestSVGEscapesText(t *testing.T) {
	spec := Compute("Tom & Jerry", "Loud <remix>.", 800, 800)
	svg := spec.SVG()

	assert.Contains(t, svg, "Tom &amp; Jerry")
	assert.Contains(t, svg, "&lt;remix&gt;")
	assert.NotContains(t, svg, "<remix>")
}

func TestWrapBudget(t *testing.T) {
	lines := wrap("alpha beta gamma delta", 11, 4)

	require.Equal(t, []string{"alpha beta", "gamma delta"}, lines)
}

func TestWrapSingleOverlongWord(t *testing.T) {
	lines := wrap("supercalifragilistic", 5, 2)

	require.Equal(t, []string{"supercalifragilistic"}, lines,
		"a single word longer than the budget still gets one line")
}

func TestWrapEmpty(t *testing.T) {
	assert.Empty(t, wrap("   ", 10, 2))
}
