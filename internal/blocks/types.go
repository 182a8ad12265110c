// Package blocks implements the bidirectional codec between Markdown text
// and the typed block representation used by the content store.
package blocks

import "github.com/google/uuid"

// Kind discriminates block variants on the wire.
type Kind string

// Block kinds.
const (
	KindHeading  Kind = "heading"
	KindText     Kind = "text"
	KindCode     Kind = "code"
	KindListItem Kind = "list_item"
	KindQuote    Kind = "quote"
	KindRule     Kind = "rule"
	KindEmbed    Kind = "embed"
)

// InlineKind discriminates inline token variants.
type InlineKind string

// Inline token kinds.
const (
	InlinePlain  InlineKind = "plain"
	InlineBold   InlineKind = "bold"
	InlineItalic InlineKind = "italic"
	InlineLink   InlineKind = "link"
)

// Inline is one formatted span within a line of text. Plain, bold, and
// italic tokens carry Text; link tokens carry TargetID and DisplayText.
type Inline struct {
	Kind        InlineKind `json:"kind"`
	Text        string     `json:"text,omitempty"`
	TargetID    string     `json:"target_id,omitempty"`
	DisplayText string     `json:"display_text,omitempty"`
}

// Block is one structural unit of content. Kind selects which payload
// fields are meaningful:
//
//	heading    Level, Text
//	text       Lines
//	code       Language, Code
//	list_item  Ordered, Text
//	quote      Lines
//	rule       (no payload)
//	embed      TargetID
//
// ID is generated, never derived from content, and is stable across
// serialize/parse cycles on the store side.
type Block struct {
	ID       string     `json:"id"`
	Kind     Kind       `json:"kind"`
	Level    int        `json:"level,omitempty"`
	Text     []Inline   `json:"text,omitempty"`
	Lines    [][]Inline `json:"lines,omitempty"`
	Language string     `json:"language,omitempty"`
	Code     []string   `json:"code,omitempty"`
	Ordered  bool       `json:"ordered,omitempty"`
	TargetID string     `json:"target_id,omitempty"`
}

// NewID generates a fresh block identifier.
func NewID() string {
	return uuid.NewString()
}

// NewHeading creates a heading block. Level is clamped to 1..6.
func NewHeading(level int, text []Inline) Block {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Block{ID: NewID(), Kind: KindHeading, Level: level, Text: text}
}

// NewText creates a paragraph block from pre-parsed lines.
func NewText(lines [][]Inline) Block {
	return Block{ID: NewID(), Kind: KindText, Lines: lines}
}

// NewCode creates a fenced code block with raw, unparsed lines.
func NewCode(language string, code []string) Block {
	return Block{ID: NewID(), Kind: KindCode, Language: language, Code: code}
}

// NewListItem creates a single list item block.
func NewListItem(ordered bool, text []Inline) Block {
	return Block{ID: NewID(), Kind: KindListItem, Ordered: ordered, Text: text}
}

// NewQuote creates a blockquote from pre-parsed lines.
func NewQuote(lines [][]Inline) Block {
	return Block{ID: NewID(), Kind: KindQuote, Lines: lines}
}

// NewRule creates a horizontal rule block.
func NewRule() Block {
	return Block{ID: NewID(), Kind: KindRule}
}

// NewEmbed creates a block-level embed of another content object.
func NewEmbed(targetID string) Block {
	return Block{ID: NewID(), Kind: KindEmbed, TargetID: targetID}
}
