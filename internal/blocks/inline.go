package blocks

import "strings"

// ParseInline tokenizes one line of text into plain/bold/italic runs and
// link tokens. Matching is leftmost, single pass, no nesting: a link
// marker wins at its position, then a double-asterisk bold pair, then a
// single-asterisk italic pair. Anything that fails to terminate degrades
// to literal text; the function never fails.
//
// Link markers use the wikilink dialect: [[target]] or [[target|display]].
func ParseInline(line string) []Inline {
	var out []Inline
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Inline{Kind: InlinePlain, Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(line) {
		rest := line[i:]

		if strings.HasPrefix(rest, "[[") {
			if end := strings.Index(rest[2:], "]]"); end >= 0 {
				target, display := splitLinkMarker(rest[2 : 2+end])
				if target != "" {
					flush()
					out = append(out, Inline{Kind: InlineLink, TargetID: target, DisplayText: display})
					i += 2 + end + 2
					continue
				}
				// Empty target: keep the whole marker verbatim.
				plain.WriteString(rest[:2+end+2])
				i += 2 + end + 2
				continue
			}
			// Unterminated marker: the brackets are literal text.
			plain.WriteString("[[")
			i += 2
			continue
		}

		if strings.HasPrefix(rest, "**") {
			if end := strings.Index(rest[2:], "**"); end > 0 {
				flush()
				out = append(out, Inline{Kind: InlineBold, Text: rest[2 : 2+end]})
				i += 2 + end + 2
				continue
			}
			// No closing pair: both asterisks are literal, keep scanning
			// so a later *...* can still match.
			plain.WriteString("**")
			i += 2
			continue
		}

		if rest[0] == '*' {
			if end := strings.Index(rest[1:], "*"); end > 0 {
				flush()
				out = append(out, Inline{Kind: InlineItalic, Text: rest[1 : 1+end]})
				i += 1 + end + 1
				continue
			}
			plain.WriteByte('*')
			i++
			continue
		}

		plain.WriteByte(line[i])
		i++
	}

	flush()
	return out
}

// splitLinkMarker splits the inner text of a [[...]] marker into target
// and display text. Without an explicit |display the target doubles as
// the display text.
func splitLinkMarker(inner string) (target, display string) {
	if idx := strings.Index(inner, "|"); idx >= 0 {
		target = strings.TrimSpace(inner[:idx])
		display = strings.TrimSpace(inner[idx+1:])
		if display == "" {
			display = target
		}
		return target, display
	}
	target = strings.TrimSpace(inner)
	return target, target
}

// renderInline is the inverse of ParseInline. Link tokens round-trip
// exactly; bold/italic delimiters normalize to ** and *.
func renderInline(tokens []Inline) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case InlineBold:
			b.WriteString("**")
			b.WriteString(tok.Text)
			b.WriteString("**")
		case InlineItalic:
			b.WriteString("*")
			b.WriteString(tok.Text)
			b.WriteString("*")
		case InlineLink:
			b.WriteString("[[")
			b.WriteString(tok.TargetID)
			if tok.DisplayText != "" && tok.DisplayText != tok.TargetID {
				b.WriteString("|")
				b.WriteString(tok.DisplayText)
			}
			b.WriteString("]]")
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}
