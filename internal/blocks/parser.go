package blocks

import (
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6}) (.+)$`)
	orderedRe = regexp.MustCompile(`^\d+\. (.+)$`)
	embedRe   = regexp.MustCompile(`^!\[\[(.+)\]\]$`)
)

// FromMarkdown parses Markdown text into an ordered block sequence.
// Parsing is total: every input maps to some sequence and no error is
// ever returned. An unterminated code fence is closed implicitly at end
// of input with whatever lines were buffered.
func FromMarkdown(text string) []Block {
	var out []Block

	var (
		inCode    bool
		codeLang  string
		codeLines []string
		para      [][]Inline
		quote     [][]Inline
	)

	flushPara := func() {
		if para != nil {
			out = append(out, NewText(para))
			para = nil
		}
	}
	flushQuote := func() {
		if quote != nil {
			out = append(out, NewQuote(quote))
			quote = nil
		}
	}
	flushAll := func() {
		flushPara()
		flushQuote()
	}

	for _, line := range strings.Split(text, "\n") {
		if inCode {
			// Inside a fence only the closing-fence check applies.
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				out = append(out, NewCode(codeLang, codeLines))
				inCode, codeLang, codeLines = false, "", nil
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}

		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			flushAll()
			inCode = true
			codeLang = strings.TrimSpace(trimmed[3:])

		case headingRe.MatchString(trimmed):
			flushAll()
			m := headingRe.FindStringSubmatch(trimmed)
			out = append(out, NewHeading(len(m[1]), ParseInline(m[2])))

		case trimmed == "---" || trimmed == "***":
			flushAll()
			out = append(out, NewRule())

		case embedTarget(trimmed) != "":
			flushAll()
			out = append(out, NewEmbed(embedTarget(trimmed)))

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushAll()
			out = append(out, NewListItem(false, ParseInline(trimmed[2:])))

		case orderedRe.MatchString(trimmed):
			flushAll()
			m := orderedRe.FindStringSubmatch(trimmed)
			out = append(out, NewListItem(true, ParseInline(m[1])))

		case strings.HasPrefix(trimmed, "> "):
			flushPara()
			quote = append(quote, ParseInline(trimmed[2:]))

		case trimmed == "":
			flushAll()

		default:
			flushQuote()
			para = append(para, ParseInline(trimmed))
		}
	}

	if inCode {
		out = append(out, NewCode(codeLang, codeLines))
	}
	flushAll()

	return out
}

// embedTarget returns the target id of a block-level embed line
// (exactly `![[id]]`), or "" when the line is not a well-formed embed.
func embedTarget(trimmed string) string {
	m := embedRe.FindStringSubmatch(trimmed)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
