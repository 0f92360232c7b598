package anchor

import (
	"errors"
	"testing"

	"github.com/beevik/etree"

	"docxcomments/internal/doc"
	"docxcomments/internal/xmlutil"
)

// tagsOf flattens a paragraph's child element tags, resolving runs to
// either "r" or "ref" when they carry a commentReference.
func tagsOf(p doc.Paragraph) []string {
	var out []string
	for _, el := range p.Element().ChildElements() {
		tag := el.Tag
		if tag == "r" && xmlutil.Child(el, "commentReference") != nil {
			tag = "ref"
		}
		out = append(out, tag)
	}
	return out
}

func equalTags(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func newParagraph(t *testing.T, runs ...string) (*doc.Document, doc.Paragraph) {
	t.Helper()
	d := doc.New()
	p := d.AddParagraph("")
	for _, r := range runs {
		p.AddRun(r)
	}
	return d, p
}

func TestAddAnchorsRangeSelection(t *testing.T) {
	tests := []struct {
		name     string
		startRun int
		endRun   int
		want     []string
	}{
		{
			name:     "full range",
			startRun: 0, endRun: -1,
			want: []string{"commentRangeStart", "r", "r", "r", "commentRangeEnd", "ref"},
		},
		{
			name:     "middle run only",
			startRun: 1, endRun: 1,
			want: []string{"r", "commentRangeStart", "r", "commentRangeEnd", "ref", "r"},
		},
		{
			name:     "start out of range falls back to zero",
			startRun: 9, endRun: 0,
			want: []string{"commentRangeStart", "r", "commentRangeEnd", "ref", "r", "r"},
		},
		{
			name:     "end before start falls back to last",
			startRun: 2, endRun: 0,
			want: []string{"r", "r", "commentRangeStart", "r", "commentRangeEnd", "ref"},
		},
		{
			name:     "end out of range falls back to last",
			startRun: 0, endRun: 12,
			want: []string{"commentRangeStart", "r", "r", "r", "commentRangeEnd", "ref"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, p := newParagraph(t, "one", "two", "three")
			New(d).AddAnchors(p, "1000000001", tt.startRun, tt.endRun)
			if got := tagsOf(p); !equalTags(got, tt.want) {
				t.Errorf("layout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddAnchorsEmptyParagraph(t *testing.T) {
	d, p := newParagraph(t)
	New(d).AddAnchors(p, "1000000001", 0, -1)
	want := []string{"commentRangeStart", "commentRangeEnd", "ref"}
	if got := tagsOf(p); !equalTags(got, want) {
		t.Errorf("layout = %v, want %v", got, want)
	}
}

func TestAddAnchorsEmptyParagraphAfterProperties(t *testing.T) {
	d, p := newParagraph(t)
	p.Element().InsertChildAt(0, etree.NewElement("w:pPr"))
	New(d).AddAnchors(p, "1000000001", 0, -1)
	want := []string{"pPr", "commentRangeStart", "commentRangeEnd", "ref"}
	if got := tagsOf(p); !equalTags(got, want) {
		t.Errorf("layout = %v, want %v", got, want)
	}
}

func TestAddAnchorsAtCommentStacksMarkers(t *testing.T) {
	d, p := newParagraph(t, "anchored text")
	e := New(d)
	e.AddAnchors(p, "1000000001", 0, -1)
	if err := e.AddAnchorsAtComment("1000000001", "1000000002"); err != nil {
		t.Fatalf("stack second: %v", err)
	}
	if err := e.AddAnchorsAtComment("1000000001", "1000000003"); err != nil {
		t.Fatalf("stack third: %v", err)
	}
	// All range ends must precede all reference runs.
	want := []string{
		"commentRangeStart", "commentRangeStart", "commentRangeStart",
		"r",
		"commentRangeEnd", "commentRangeEnd", "commentRangeEnd",
		"ref", "ref", "ref",
	}
	if got := tagsOf(p); !equalTags(got, want) {
		t.Errorf("layout = %v, want %v", got, want)
	}
}

func TestAddAnchorsAtCommentMissing(t *testing.T) {
	d, _ := newParagraph(t, "text")
	err := New(d).AddAnchorsAtComment("1999999999", "1000000002")
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("err = %v, want ErrAnchorNotFound", err)
	}
}

func TestRemoveAnchors(t *testing.T) {
	d, p := newParagraph(t, "one", "two")
	e := New(d)
	e.AddAnchors(p, "1000000001", 0, -1)
	e.RemoveAnchors("1000000001")
	want := []string{"r", "r"}
	if got := tagsOf(p); !equalTags(got, want) {
		t.Errorf("layout after removal = %v, want %v", got, want)
	}
}

func TestRemoveAnchorsKeepsSharedRun(t *testing.T) {
	d, p := newParagraph(t, "one")
	e := New(d)
	e.AddAnchors(p, "1000000001", 0, -1)

	// Give the reference run a second child so only the marker may go.
	_, _, ref := e.findAnchorElements("1000000001")
	if ref == nil {
		t.Fatalf("reference run missing")
	}
	ref.CreateElement("w:t").SetText("kept")

	e.RemoveAnchors("1000000001")
	runs := p.Runs()
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (text run plus stripped reference run)", len(runs))
	}
	for _, run := range runs {
		if xmlutil.Child(run, "commentReference") != nil {
			t.Errorf("commentReference survived removal")
		}
	}
}

func TestFindParagraphWithComment(t *testing.T) {
	d := doc.New()
	d.AddParagraph("first")
	target := d.AddParagraph("second")
	e := New(d)
	e.AddAnchors(target, "1000000001", 0, -1)

	found, err := e.FindParagraphWithComment("1000000001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Element() != target.Element() {
		t.Errorf("found wrong paragraph: %q", found.Text())
	}

	if _, err := e.FindParagraphWithComment("1999999999"); !errors.Is(err, ErrAnchorNotFound) {
		t.Errorf("missing comment err = %v, want ErrAnchorNotFound", err)
	}
}
