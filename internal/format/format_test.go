package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlainParagraph(t *testing.T) {
	assert.Equal(t, "<p>Hello world</p>", Format("Hello world"))
	assert.Equal(t, "<p>Hello world</p>"+DefaultFooter.HTML(), WithFooter(Format("Hello world")))
}

func TestFormatEmptyInput(t *testing.T) {
	assert.Equal(t, "<p></p>", Format(""))
}

func TestFormatCitations(t *testing.T) {
	raw := "Body text.\n\n**Citations**\n[1] Source A, available at https://example.com/a\n[2] Source B"

	want := `<p>Body text.</p><p>` +
		`<div class="citations-section"><strong class="section-heading">Citations</strong>` +
		"\n" + `<p>[1] Source A, available at <a href="https://example.com/a" target="_blank" rel="noopener noreferrer" class="citation-link">https://example.com/a</a>` +
		"\n" + `<p>[2] Source B</p></div></p>`

	got := Format(raw)
	assert.Equal(t, want, got)
	assert.Contains(t, got, "<p>Body text.</p>")
	assert.Equal(t, 2, strings.Count(got, "<p>["))
}

func TestFormatListGrouping(t *testing.T) {
	got := Format("- one\n- two\n- three")
	assert.Equal(t, "<ul><li>one</li><li>two</li><li>three</li></ul>", got)
	assert.Equal(t, 1, strings.Count(got, "<ul>"))
	assert.NotContains(t, got, "<p>")
}

func TestFormatListBetweenParagraphs(t *testing.T) {
	got := Format("Intro\n- one\n- two\n\nOutro")
	assert.Equal(t, "<p>Intro</p><ul><li>one</li><li>two</li></ul><p>Outro</p>", got)
}

func TestFormatSeparatorsStripped(t *testing.T) {
	got := Format("Part one\n\n---\n\nPart two")
	assert.NotContains(t, got, "---")
	assert.Contains(t, got, "<p>Part one</p>")
	assert.Contains(t, got, "<p>Part two</p>")

	assert.Equal(t, "<p>ab</p>", Format("a-----b"))
}

func TestFormatSeparatorDoesNotBecomeListItem(t *testing.T) {
	got := Format("Top\n---\nBottom")
	assert.NotContains(t, got, "<li>")
}

func TestFormatHeadingsAndEmphasis(t *testing.T) {
	got := Format("This is *important* and **Bold**")
	assert.Equal(t, "<p>This is <em>important</em> and <strong class='section-heading'>Bold</strong></p>", got)
}

func TestFormatNeverPanics(t *testing.T) {
	inputs := []string{
		"**Citations**",
		"**Citations**\n[1]",
		"***",
		"*",
		"-",
		"\n\n\n\n",
		"<script>alert(1)</script>",
		"a **Citations** b **Citations** c",
	}
	for _, in := range inputs {
		require.NotPanics(t, func() { _ = Format(in) }, "input %q", in)
	}
}

func TestFormatDoesNotEscape(t *testing.T) {
	assert.Equal(t, "<p><b>raw</b></p>", Format("<b>raw</b>"))
}

func TestStripSeparators(t *testing.T) {
	assert.Equal(t, "a--b", StripSeparators("a--b"))
	assert.Equal(t, "ab", StripSeparators("a---b"))
	assert.Equal(t, "x\n\ny", StripSeparators("x\n------\ny"))
}

func TestCitationsWithoutMarker(t *testing.T) {
	in := "No sources here [1] available at https://example.com"
	assert.Equal(t, in, Citations(in))
}

func TestCitationsClosesFinalBlock(t *testing.T) {
	got := Citations("Body**Citations**\n[1] A")
	assert.Equal(t, `Body<div class="citations-section"><strong class="section-heading">Citations</strong>`+"\n"+`<p>[1] A</p></div>`, got)
}

func TestCitationsKeepsExistingClose(t *testing.T) {
	got := Citations("Body**Citations**[1] A</p>")
	assert.True(t, strings.HasSuffix(got, "[1] A</p></div>"))
	assert.NotContains(t, got, "</p></p>")
}

func TestCitationsOnlyFirstSegment(t *testing.T) {
	got := Citations("a**Citations**b**Citations**c")
	assert.Equal(t, `a<div class="citations-section"><strong class="section-heading">Citations</strong>b</p></div>`, got)
}

func TestCitationsLinkStopsAtWhitespace(t *testing.T) {
	got := Citations("**Citations**\n[1] Doc, available at https://example.com/x y")
	assert.Contains(t, got, `<a href="https://example.com/x" target="_blank" rel="noopener noreferrer" class="citation-link">https://example.com/x</a> y`)
}

func TestHeadings(t *testing.T) {
	got := Headings("**A** and **B**")
	assert.Equal(t, "<strong class='section-heading'>A</strong> and <strong class='section-heading'>B</strong>", got)
}

func TestEmphasisDependsOnHeadingsFirst(t *testing.T) {
	// Without the heading pass, a bold run is mangled into emphasis.
	assert.Equal(t, "*<em>x</em>*", Emphasis("**x**"))
	assert.Equal(t, "<strong class='section-heading'>x</strong>", Emphasis(Headings("**x**")))
}

func TestListItems(t *testing.T) {
	assert.Equal(t, "<li>a</li><li>b</li>", ListItems("- a\n- b"))
	assert.Equal(t, "intro<li>a</li>\ntail", ListItems("intro\n- a\ntail"))
}

func TestGroupLists(t *testing.T) {
	got := GroupLists("<li>a</li><li>b</li>x<li>c</li>")
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>x<ul><li>c</li></ul>", got)
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, "a</p><p>b", Paragraphs("a\n\nb"))
	assert.Equal(t, "a\nb", Paragraphs("a\nb"))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "<p>text</p>", Wrap("text"))
	assert.Equal(t, "<ul><li>a</li></ul><p>b</p>", Wrap("<ul><li>a</li></ul> <p>b"))
}

func TestPassesOrder(t *testing.T) {
	require.Len(t, Passes, 8)
	in := "Intro **Head**\n- *x*"
	got := in
	for _, p := range Passes {
		got = p(got)
	}
	assert.Equal(t, Format(in), got)
}

func TestFooter(t *testing.T) {
	f := Footer{Href: "https://example.com/tip", ImageSrc: "/img.png", Alt: "Tip"}
	assert.Equal(t, `<p>x</p><div class="support-message"><a href="https://example.com/tip" target="_blank"><img src="/img.png" alt="Tip"></a></div>`, f.Append("<p>x</p>"))
	assert.Equal(t, "<p>x</p>", Footer{}.Append("<p>x</p>"))
}
