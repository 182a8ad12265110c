package links

import (
	"testing"

	"github.com/starford/ansuz/internal/blocks"
)

func TestExtract_AllBlockKinds(t *testing.T) {
	doc := "# Head [[h-id]]\n\nBody [[b-id|shown]].\n\n- item [[l-id]]\n\n> quote [[q-id]]\n\n![[e-id]]"
	rels := Extract(blocks.FromMarkdown(doc), "src")

	if len(rels) != 5 {
		t.Fatalf("relations = %+v, want 5", rels)
	}
	wantTargets := []string{"h-id", "b-id", "l-id", "q-id", "e-id"}
	for i, r := range rels {
		if r.SourceID != "src" {
			t.Errorf("relation %d source = %q", i, r.SourceID)
		}
		if r.TargetID != wantTargets[i] {
			t.Errorf("relation %d target = %q, want %q", i, r.TargetID, wantTargets[i])
		}
	}
	if rels[1].DisplayText != "shown" {
		t.Errorf("display = %q, want %q", rels[1].DisplayText, "shown")
	}
	if !rels[4].Embed || rels[4].DisplayText != "" {
		t.Errorf("embed relation = %+v", rels[4])
	}
	for _, r := range rels[:4] {
		if r.Embed {
			t.Errorf("inline relation flagged as embed: %+v", r)
		}
	}
}

func TestExtract_NoLinks(t *testing.T) {
	rels := Extract(blocks.FromMarkdown("plain text\n\n```\n[[not-a-link]]\n```"), "src")
	if len(rels) != 0 {
		t.Errorf("relations = %+v, want none (code is raw)", rels)
	}
}

func TestAdd_InlineAppendsToLastTextBlock(t *testing.T) {
	orig := blocks.FromMarkdown("first paragraph\n\nsecond paragraph")
	got := Add(orig, "T", "See", false)

	if len(got) != len(orig) {
		t.Fatalf("block count changed: %d -> %d", len(orig), len(got))
	}
	rels := Extract(got, "src")
	if len(rels) != 1 || rels[0].TargetID != "T" || rels[0].DisplayText != "See" || rels[0].Embed {
		t.Fatalf("relations = %+v", rels)
	}
	// Original sequence untouched.
	if len(Extract(orig, "src")) != 0 {
		t.Error("Add mutated its input")
	}
	// Landed in the last text block with a separating space.
	last := got[len(got)-1]
	line := last.Lines[len(last.Lines)-1]
	if line[len(line)-1].Kind != blocks.InlineLink {
		t.Errorf("last token = %+v", line[len(line)-1])
	}
	if line[len(line)-2].Text != " " {
		t.Errorf("separator token = %+v", line[len(line)-2])
	}
}

func TestAdd_InlineCreatesTextBlockWhenNoneExists(t *testing.T) {
	orig := blocks.FromMarkdown("```\ncode only\n```")
	got := Add(orig, "T", "See", false)

	if len(got) != len(orig)+1 {
		t.Fatalf("block count = %d, want %d", len(got), len(orig)+1)
	}
	added := got[len(got)-1]
	if added.Kind != blocks.KindText {
		t.Fatalf("added block kind = %v", added.Kind)
	}
	rels := Extract(got, "src")
	if len(rels) != 1 || rels[0].TargetID != "T" {
		t.Errorf("relations = %+v", rels)
	}
}

func TestAdd_Embed(t *testing.T) {
	orig := blocks.FromMarkdown("some text")
	got := Add(orig, "T", "", true)

	if len(got) != len(orig)+1 {
		t.Fatalf("block count = %d", len(got))
	}
	rels := Extract(got, "src")
	if len(rels) != 1 || !rels[0].Embed || rels[0].TargetID != "T" {
		t.Fatalf("relations = %+v", rels)
	}
	// No inline link token appears in any text block.
	for _, b := range got {
		if b.Kind != blocks.KindText {
			continue
		}
		for _, line := range b.Lines {
			for _, tok := range line {
				if tok.Kind == blocks.InlineLink {
					t.Errorf("unexpected inline link token: %+v", tok)
				}
			}
		}
	}
}

func TestAdd_RoundTripThroughMarkdown(t *testing.T) {
	bs := Add(blocks.FromMarkdown("intro"), "target-7", "the target", false)
	reparsed := blocks.FromMarkdown(blocks.ToMarkdown(bs))
	rels := Extract(reparsed, "src")
	if len(rels) != 1 || rels[0].TargetID != "target-7" || rels[0].DisplayText != "the target" {
		t.Errorf("relations after round trip = %+v", rels)
	}
}
