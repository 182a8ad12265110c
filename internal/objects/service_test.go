package objects

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestDB(t))
}

func TestCreateAndGet(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", "# My Note\n\nWith [[other|a link]].")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created object has no id")
	}
	if created.Title != "My Note" {
		t.Errorf("title = %q", created.Title)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Markdown != created.Markdown || len(got.Blocks) != 2 {
		t.Errorf("detail = %+v", got)
	}
}

func TestCreate_ExplicitIDConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "fixed", "content"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, "fixed", "other")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdate_ChecksumConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "obj", "v1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, "obj", "v2", created.Checksum); err != nil {
		t.Fatalf("Update with matching checksum: %v", err)
	}
	_, err = svc.Update(ctx, "obj", "v3", created.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	// Empty ifMatch skips the check.
	if _, err := svc.Update(ctx, "obj", "v4", ""); err != nil {
		t.Errorf("Update without ifMatch: %v", err)
	}
}

func TestAddLink_InlineAndEmbed(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "target", "# Target Title"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "source", "some intro"); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.AddLink(ctx, "source", "target", "", false)
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	rels, err := svc.Links(ctx, "source")
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if len(rels) != 1 || rels[0].TargetID != "target" || rels[0].Embed {
		t.Fatalf("relations = %+v", rels)
	}
	// Display text falls back to the target's title.
	if rels[0].DisplayText != "Target Title" {
		t.Errorf("display = %q", rels[0].DisplayText)
	}
	if detail.Markdown == "" {
		t.Error("markdown not re-rendered")
	}

	if _, err := svc.AddLink(ctx, "source", "embedded", "", true); err != nil {
		t.Fatalf("AddLink embed: %v", err)
	}
	rels, _ = svc.Links(ctx, "source")
	if len(rels) != 2 || !rels[1].Embed {
		t.Errorf("relations = %+v", rels)
	}

	bl, err := svc.Backlinks(ctx, "target")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 1 || bl[0] != "source" {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestAddLink_MissingSource(t *testing.T) {
	svc := testService(t)
	_, err := svc.AddLink(context.Background(), "nope", "t", "", false)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTraverseAndSummary(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for id, md := range map[string]string{
		"a": "[[b]]",
		"b": "[[c]]",
		"c": "done",
	} {
		if _, err := svc.Create(ctx, id, md); err != nil {
			t.Fatal(err)
		}
	}

	res, err := svc.Traverse(ctx, "a", 5, graph.DirectionOutgoing)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if len(res.Nodes) != 3 {
		t.Errorf("nodes = %+v", res.Nodes)
	}

	sum, err := svc.GraphSummary(ctx, "a", 5, graph.DirectionOutgoing)
	if err != nil {
		t.Fatalf("GraphSummary: %v", err)
	}
	if sum.TotalNodes != 3 || sum.MaxDepthReached != 2 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestTraverse_UnknownStart(t *testing.T) {
	svc := testService(t)
	_, err := svc.Traverse(context.Background(), "ghost", 2, graph.DirectionBoth)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTraverse_InvalidArgsSurface(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, "a", "x"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Traverse(ctx, "a", -1, graph.DirectionBoth); !errors.Is(err, graph.ErrInvalidDepth) {
		t.Errorf("err = %v, want ErrInvalidDepth", err)
	}
	if _, err := svc.Traverse(ctx, "a", 2, graph.Direction("up")); !errors.Is(err, graph.ErrUnknownDirection) {
		t.Errorf("err = %v, want ErrUnknownDirection", err)
	}
}

func TestOnChange_NotifiesMutations(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	var events []string
	svc.OnChange(func(kind, id string) { events = append(events, kind+" "+id) })

	if _, err := svc.Create(ctx, "a", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "b", "# B"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddLink(ctx, "a", "b", "", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, "a", "second", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	want := []string{"created a", "created b", "updated a", "updated a", "deleted a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestOnChange_FailedMutationsSilent(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "a", "x"); err != nil {
		t.Fatal(err)
	}

	fired := 0
	svc.OnChange(func(kind, id string) { fired++ })

	if _, err := svc.Create(ctx, "a", "dup"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Update(ctx, "ghost", "x", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.Delete(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}
