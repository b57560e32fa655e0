// Package format turns a raw, loosely Markdown-flavored answer into an HTML
// fragment for the answer widget.
//
// The transform is a fixed sequence of string-to-string passes. Each pass
// assumes the shape produced by the one before it, so the order in Passes is
// part of the contract. The output is not escaped or validated: hostile or
// oddly nested input produces oddly nested markup rather than an error.
package format

import (
	"regexp"
	"strings"
)

// CitationsMarker separates the answer body from its citation list.
const CitationsMarker = "**Citations**"

// Pass is a single ordered rewrite step.
type Pass func(string) string

// Passes lists every rewrite step in the order Format applies them.
var Passes = []Pass{
	StripSeparators,
	Citations,
	Headings,
	Emphasis,
	ListItems,
	GroupLists,
	Paragraphs,
	Wrap,
}

var (
	separatorRe   = regexp.MustCompile(`-{3,}`)
	availableAtRe = regexp.MustCompile(`(available at )(https?://[^\s\n]+)`)
	citationNumRe = regexp.MustCompile(`\[(\d+)\]`)
	boldRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*]+)\*`)
	listItemRe    = regexp.MustCompile(`(?:^|\n)-\s*([^\n]*)`)
	listRunRe     = regexp.MustCompile(`(<li>.*?</li>(?:\s*<li>.*?</li>)*)`)
	listParaRe    = regexp.MustCompile(`</ul>\s*<p>`)
	emptyBeforeRe = regexp.MustCompile(`<p>\s*</p><ul>`)
	emptyAfterRe  = regexp.MustCompile(`</ul><p>\s*</p>`)
)

// Format runs every pass over raw. It never fails.
func Format(raw string) string {
	text := raw
	for _, pass := range Passes {
		text = pass(text)
	}
	return text
}

// StripSeparators removes runs of three or more dashes.
func StripSeparators(text string) string {
	return separatorRe.ReplaceAllString(text, "")
}

// Citations rewrites the part of text after CitationsMarker into a citations
// container. Links that follow "available at " become anchors that open in a
// new browsing context, and each [n] starts a new block. Only the segment
// between the first and second marker is kept as citation content.
func Citations(text string) string {
	if !strings.Contains(text, CitationsMarker) {
		return text
	}

	parts := strings.Split(text, CitationsMarker)
	mainContent := parts[0]
	citationContent := parts[1]

	citationContent = availableAtRe.ReplaceAllString(citationContent,
		`${1}<a href="${2}" target="_blank" rel="noopener noreferrer" class="citation-link">${2}</a>`)

	citationContent = citationNumRe.ReplaceAllString(citationContent, `<p>[${1}]`)

	if !strings.HasSuffix(citationContent, "</p>") {
		citationContent += "</p>"
	}

	return mainContent +
		`<div class="citations-section">` +
		`<strong class="section-heading">Citations</strong>` +
		citationContent +
		`</div>`
}

// Headings turns **span** into a bold section heading.
func Headings(text string) string {
	return boldRe.ReplaceAllString(text, "<strong class='section-heading'>${1}</strong>")
}

// Emphasis turns *span* into <em>.
func Emphasis(text string) string {
	return italicRe.ReplaceAllString(text, "<em>${1}</em>")
}

// ListItems turns every line that starts with a dash into an <li>. The
// newline in front of the item is consumed, so consecutive items end up
// adjacent.
func ListItems(text string) string {
	return listItemRe.ReplaceAllString(text, "<li>${1}</li>")
}

// GroupLists wraps each run of adjacent <li> elements in one <ul>.
func GroupLists(text string) string {
	return listRunRe.ReplaceAllString(text, "<ul>${1}</ul>")
}

// Paragraphs turns blank-line boundaries into paragraph boundaries.
func Paragraphs(text string) string {
	return strings.ReplaceAll(text, "\n\n", "</p><p>")
}

// Wrap drops paragraph openings that directly follow a list and wraps the
// whole body in a paragraph. Lists are then lifted out of the paragraph they
// landed in: the paragraph is closed before <ul> and reopened after </ul>,
// and the empty paragraphs this leaves at either edge of a list are removed.
func Wrap(text string) string {
	text = listParaRe.ReplaceAllString(text, "</ul>")
	text = "<p>" + text + "</p>"
	text = strings.ReplaceAll(text, "<ul>", "</p><ul>")
	text = strings.ReplaceAll(text, "</ul>", "</ul><p>")
	text = emptyBeforeRe.ReplaceAllString(text, "<ul>")
	return emptyAfterRe.ReplaceAllString(text, "</ul>")
}
