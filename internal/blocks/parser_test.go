package blocks

import (
	"fmt"
	"strings"
	"testing"
)

func kinds(bs []Block) []Kind {
	out := make([]Kind, len(bs))
	for i, b := range bs {
		out[i] = b.Kind
	}
	return out
}

func plainText(seq []Inline) string {
	var b strings.Builder
	for _, t := range seq {
		b.WriteString(t.Text)
	}
	return b.String()
}

func TestFromMarkdown_HeadingLevels(t *testing.T) {
	for n := 1; n <= 6; n++ {
		input := strings.Repeat("#", n) + " title"
		bs := FromMarkdown(input)
		if len(bs) != 1 || bs[0].Kind != KindHeading {
			t.Fatalf("level %d: blocks = %v", n, kinds(bs))
		}
		if bs[0].Level != n {
			t.Errorf("level = %d, want %d", bs[0].Level, n)
		}
		if plainText(bs[0].Text) != "title" {
			t.Errorf("text = %q", plainText(bs[0].Text))
		}
	}
}

func TestFromMarkdown_NotAHeading(t *testing.T) {
	for _, input := range []string{"#no space", "####### seven", "# "} {
		bs := FromMarkdown(input)
		if len(bs) != 1 || bs[0].Kind != KindText {
			t.Errorf("%q: blocks = %v, want single text block", input, kinds(bs))
		}
	}
}

func TestFromMarkdown_HorizontalRule(t *testing.T) {
	for _, input := range []string{"---", "***"} {
		bs := FromMarkdown(input)
		if len(bs) != 1 || bs[0].Kind != KindRule {
			t.Errorf("%q: blocks = %v", input, kinds(bs))
		}
	}
	// Longer dash runs are prose, not rules.
	bs := FromMarkdown("----")
	if len(bs) != 1 || bs[0].Kind != KindText {
		t.Errorf("----: blocks = %v", kinds(bs))
	}
}

func TestFromMarkdown_CodeFence(t *testing.T) {
	input := "```go\nfunc main() {}\n\n\t// *not inline parsed*\n```\nafter"
	bs := FromMarkdown(input)
	if len(bs) != 2 {
		t.Fatalf("blocks = %v", kinds(bs))
	}
	code := bs[0]
	if code.Kind != KindCode || code.Language != "go" {
		t.Fatalf("code block = %+v", code)
	}
	want := []string{"func main() {}", "", "\t// *not inline parsed*"}
	if len(code.Code) != len(want) {
		t.Fatalf("code lines = %q", code.Code)
	}
	for i := range want {
		if code.Code[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, code.Code[i], want[i])
		}
	}
	if bs[1].Kind != KindText {
		t.Errorf("trailing block = %v", bs[1].Kind)
	}
}

func TestFromMarkdown_UnterminatedCodeFence(t *testing.T) {
	input := "```python\nprint('hi')\nprint('bye')"
	bs := FromMarkdown(input)
	if len(bs) != 1 || bs[0].Kind != KindCode {
		t.Fatalf("blocks = %v, want one code block", kinds(bs))
	}
	if bs[0].Language != "python" || len(bs[0].Code) != 2 {
		t.Errorf("block = %+v", bs[0])
	}
}

func TestFromMarkdown_Lists(t *testing.T) {
	input := "- one\n- two\n1. first\n2. second\n* star"
	bs := FromMarkdown(input)
	if len(bs) != 5 {
		t.Fatalf("blocks = %v", kinds(bs))
	}
	wantOrdered := []bool{false, false, true, true, false}
	for i, b := range bs {
		if b.Kind != KindListItem {
			t.Fatalf("block %d kind = %v", i, b.Kind)
		}
		if b.Ordered != wantOrdered[i] {
			t.Errorf("block %d ordered = %v, want %v", i, b.Ordered, wantOrdered[i])
		}
	}
}

func TestFromMarkdown_QuoteMerging(t *testing.T) {
	input := "> first\n> second\n\n> third"
	bs := FromMarkdown(input)
	if len(bs) != 2 {
		t.Fatalf("blocks = %v, want two quote blocks", kinds(bs))
	}
	if bs[0].Kind != KindQuote || len(bs[0].Lines) != 2 {
		t.Errorf("first quote = %+v", bs[0])
	}
	if bs[1].Kind != KindQuote || len(bs[1].Lines) != 1 {
		t.Errorf("second quote = %+v", bs[1])
	}
}

func TestFromMarkdown_ParagraphMerging(t *testing.T) {
	input := "line one\nline two\n\nline three"
	bs := FromMarkdown(input)
	if len(bs) != 2 {
		t.Fatalf("blocks = %v, want two text blocks", kinds(bs))
	}
	if len(bs[0].Lines) != 2 {
		t.Errorf("first paragraph has %d lines, want 2", len(bs[0].Lines))
	}
	if plainText(bs[0].Lines[0]) != "line one" || plainText(bs[0].Lines[1]) != "line two" {
		t.Errorf("first paragraph lines = %+v", bs[0].Lines)
	}
}

func TestFromMarkdown_Embed(t *testing.T) {
	bs := FromMarkdown("before\n![[target-id]]\nafter")
	if len(bs) != 3 {
		t.Fatalf("blocks = %v", kinds(bs))
	}
	if bs[1].Kind != KindEmbed || bs[1].TargetID != "target-id" {
		t.Errorf("embed block = %+v", bs[1])
	}
}

func TestFromMarkdown_BlockOrderAndIDs(t *testing.T) {
	input := "# h\n\ntext\n\n---"
	bs := FromMarkdown(input)
	if len(bs) != 3 {
		t.Fatalf("blocks = %v", kinds(bs))
	}
	seen := make(map[string]struct{})
	for _, b := range bs {
		if b.ID == "" {
			t.Error("block without id")
		}
		if _, dup := seen[b.ID]; dup {
			t.Errorf("duplicate block id %s", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
}

func TestFromMarkdown_Empty(t *testing.T) {
	for _, input := range []string{"", "\n", "\n\n\n"} {
		if bs := FromMarkdown(input); len(bs) != 0 {
			t.Errorf("FromMarkdown(%q) = %v, want empty", input, kinds(bs))
		}
	}
}

func TestFromMarkdown_MixedDocument(t *testing.T) {
	input := strings.Join([]string{
		"# Title",
		"",
		"Intro paragraph with [[other-id|a link]].",
		"",
		"- item",
		"1. numbered",
		"",
		"> quoted",
		"",
		"```",
		"raw",
		"```",
		"",
		"---",
		"![[embedded-id]]",
	}, "\n")

	bs := FromMarkdown(input)
	want := []Kind{KindHeading, KindText, KindListItem, KindListItem, KindQuote, KindCode, KindRule, KindEmbed}
	if fmt.Sprint(kinds(bs)) != fmt.Sprint(want) {
		t.Errorf("kinds = %v, want %v", kinds(bs), want)
	}
}
