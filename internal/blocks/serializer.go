package blocks

import (
	"fmt"
	"strings"
)

// ToMarkdown renders a block sequence back to Markdown text. The output
// is semantically equivalent to the input of FromMarkdown but not
// byte-identical: prose delimiters normalize to **/*, and ordered list
// labels renumber from 1 for each contiguous ordered run.
func ToMarkdown(bs []Block) string {
	var lines []string
	ordinal := 0

	for i, b := range bs {
		if i == 0 || bs[i-1].Kind != KindListItem || !bs[i-1].Ordered {
			ordinal = 0
		}

		switch b.Kind {
		case KindHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			lines = append(lines, strings.Repeat("#", level)+" "+renderInline(b.Text))

		case KindCode:
			lines = append(lines, "```"+b.Language)
			lines = append(lines, b.Code...)
			lines = append(lines, "```")

		case KindRule:
			lines = append(lines, "---")

		case KindEmbed:
			lines = append(lines, "![["+b.TargetID+"]]")

		case KindListItem:
			if b.Ordered {
				ordinal++
				lines = append(lines, fmt.Sprintf("%d. %s", ordinal, renderInline(b.Text)))
			} else {
				lines = append(lines, "- "+renderInline(b.Text))
			}
			// A blank line closes the run only once it actually ends.
			if !nextIsSameList(bs, i) {
				lines = append(lines, "")
			}
			continue

		case KindQuote:
			for _, l := range b.Lines {
				lines = append(lines, "> "+renderInline(l))
			}

		case KindText:
			for _, l := range b.Lines {
				lines = append(lines, renderInline(l))
			}
		}

		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// nextIsSameList reports whether the block after index i continues the
// same list run (list item of the same ordered/unordered kind).
func nextIsSameList(bs []Block, i int) bool {
	if i+1 >= len(bs) {
		return false
	}
	next := bs[i+1]
	return next.Kind == KindListItem && next.Ordered == bs[i].Ordered
}
