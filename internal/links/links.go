// Package links derives link relations from a block sequence and appends
// new links without disturbing existing content. Relations are never
// stored; they are recomputed on demand.
package links

import "github.com/starford/ansuz/internal/blocks"

// Relation is a directed edge from a source object to a target object,
// extracted from the source's content.
type Relation struct {
	SourceID    string `json:"source_id"`
	TargetID    string `json:"target_id"`
	DisplayText string `json:"display_text,omitempty"`
	Embed       bool   `json:"is_embed"`
}

// Extract scans the block sequence for inline link tokens and embed
// blocks and returns one relation per occurrence, in content order.
// It is a pure function of its input: discovering backlinks requires
// the caller to run it over every candidate object.
func Extract(bs []blocks.Block, sourceID string) []Relation {
	var out []Relation

	addToken := func(tok blocks.Inline) {
		if tok.Kind == blocks.InlineLink && tok.TargetID != "" {
			out = append(out, Relation{
				SourceID:    sourceID,
				TargetID:    tok.TargetID,
				DisplayText: tok.DisplayText,
			})
		}
	}

	for _, b := range bs {
		switch b.Kind {
		case blocks.KindHeading, blocks.KindListItem:
			for _, tok := range b.Text {
				addToken(tok)
			}
		case blocks.KindText, blocks.KindQuote:
			for _, line := range b.Lines {
				for _, tok := range line {
					addToken(tok)
				}
			}
		case blocks.KindEmbed:
			if b.TargetID != "" {
				out = append(out, Relation{
					SourceID: sourceID,
					TargetID: b.TargetID,
					Embed:    true,
				})
			}
		}
	}

	return out
}

// Add returns a new block sequence with a link to targetID appended.
// Existing blocks are never mutated or removed.
//
// With asEmbed=false the link token lands at the end of the last text
// block (a new text block is created when none exists), separated from
// existing tokens by a single space. With asEmbed=true a new embed
// block is appended instead.
func Add(bs []blocks.Block, targetID, displayText string, asEmbed bool) []blocks.Block {
	out := make([]blocks.Block, len(bs))
	copy(out, bs)

	if asEmbed {
		return append(out, blocks.NewEmbed(targetID))
	}

	token := blocks.Inline{
		Kind:        blocks.InlineLink,
		TargetID:    targetID,
		DisplayText: displayText,
	}

	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Kind != blocks.KindText {
			continue
		}
		out[i] = appendToken(out[i], token)
		return out
	}

	return append(out, blocks.NewText([][]blocks.Inline{{token}}))
}

// appendToken returns a copy of a text block with the token appended to
// its last line, leaving the original's line slices untouched.
func appendToken(b blocks.Block, token blocks.Inline) blocks.Block {
	lines := make([][]blocks.Inline, len(b.Lines))
	copy(lines, b.Lines)

	if len(lines) == 0 {
		lines = append(lines, []blocks.Inline{token})
	} else {
		last := lines[len(lines)-1]
		merged := make([]blocks.Inline, 0, len(last)+2)
		merged = append(merged, last...)
		if len(last) > 0 {
			merged = append(merged, blocks.Inline{Kind: blocks.InlinePlain, Text: " "})
		}
		merged = append(merged, token)
		lines[len(lines)-1] = merged
	}

	b.Lines = lines
	return b
}
