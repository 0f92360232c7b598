package parts

import (
	"errors"
	"strings"
	"testing"

	"docxcomments/internal/opc"
)

func newWordPackage(t *testing.T) *opc.Package {
	t.Helper()
	pkg := opc.NewPackage()
	pkg.SetPart("word/document.xml", []byte(`<w:document xmlns:w="`+opc.NSW+`"><w:body/></w:document>`))
	if _, err := pkg.AddRelationship("", opc.RelTypeOfficeDocument, "word/document.xml"); err != nil {
		t.Fatalf("add document relationship: %v", err)
	}
	return pkg
}

func TestPartCreatedLazilyWithRegistration(t *testing.T) {
	pkg := newWordPackage(t)
	cp := NewCommentsPart(pkg, "word/document.xml")
	if pkg.Part("word/comments.xml") != nil {
		t.Fatalf("part exists before first use")
	}
	if err := cp.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if pkg.Part("word/comments.xml") == nil {
		t.Fatalf("ensure did not create the part")
	}
	found, err := pkg.PartByRelType("word/document.xml", opc.RelTypeComments)
	if err != nil || found == nil {
		t.Fatalf("relationship not registered: part=%v err=%v", found, err)
	}
	ct := string(pkg.Part("[Content_Types].xml").Data)
	if !strings.Contains(ct, opc.CTComments) {
		t.Errorf("content type override missing")
	}
}

func TestCommentsAddAndList(t *testing.T) {
	pkg := newWordPackage(t)
	cp := NewCommentsPart(pkg, "word/document.xml")
	rsid := func() string { return "00AB12CD" }
	err := cp.Add(NewComment{
		CommentID: "1234567890",
		ParaID:    "11111111",
		TextID:    "22222222",
		Text:      "needs a source",
		Author:    "Reviewer One",
		Initials:  "RO",
		Date:      "2026-08-23T10:00:00Z",
	}, rsid)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	entries, err := cp.Comments()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != "1234567890" || e.Author != "Reviewer One" || e.Initials != "RO" {
		t.Errorf("entry header = %+v", e)
	}
	if e.Text != "needs a source" {
		t.Errorf("text = %q", e.Text)
	}
	if len(e.ParaIDs) != 1 || e.ParaIDs[0] != "11111111" {
		t.Errorf("paraIDs = %v", e.ParaIDs)
	}
}

func TestCommentsRemoveReturnsParaIDs(t *testing.T) {
	pkg := newWordPackage(t)
	cp := NewCommentsPart(pkg, "word/document.xml")
	rsid := func() string { return "00AB12CD" }
	if err := cp.Add(NewComment{CommentID: "1", ParaID: "AAAA0001", TextID: "BBBB0001", Text: "x", Author: "A", Date: "2026-08-23T10:00:00Z"}, rsid); err != nil {
		t.Fatalf("add: %v", err)
	}
	paraIDs, err := cp.Remove("1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(paraIDs) != 1 || paraIDs[0] != "AAAA0001" {
		t.Errorf("paraIDs = %v", paraIDs)
	}
	if _, err := cp.Remove("1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestExtendedReplyRowInsertedAfterParent(t *testing.T) {
	pkg := newWordPackage(t)
	ep := NewExtendedPart(pkg, "word/document.xml")
	for _, paraID := range []string{"R0000001", "R0000002"} {
		if err := ep.Add(paraID, "", false); err != nil {
			t.Fatalf("add root %s: %v", paraID, err)
		}
	}
	if err := ep.Add("C0000001", "R0000001", false); err != nil {
		t.Fatalf("add reply: %v", err)
	}
	data := string(pkg.Part("word/commentsExtended.xml").Data)
	if strings.Index(data, "C0000001") > strings.Index(data, "R0000002") {
		t.Errorf("reply row not adjacent to its parent:\n%s", data)
	}
	rows, err := ep.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if rows["C0000001"].ParentParaID != "R0000001" {
		t.Errorf("parent link = %q", rows["C0000001"].ParentParaID)
	}
}

func TestExtendedSetDone(t *testing.T) {
	pkg := newWordPackage(t)
	ep := NewExtendedPart(pkg, "word/document.xml")
	if err := ep.Add("R0000001", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ep.SetDone("R0000001", true); err != nil {
		t.Fatalf("set done: %v", err)
	}
	rows, _ := ep.GetAll()
	if !rows["R0000001"].Done {
		t.Errorf("done flag not set")
	}
	if err := ep.SetDone("MISSING0", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row err = %v, want ErrNotFound", err)
	}
}

func TestExtensibleNeverOverwritesDate(t *testing.T) {
	pkg := newWordPackage(t)
	xp := NewExtensiblePart(pkg, "word/document.xml")
	if err := xp.AddOrUpdate("D0000001", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := xp.AddOrUpdate("D0000001", "2030-12-31T00:00:00Z"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	dates, _ := xp.GetAll()
	if dates["D0000001"] != "2026-01-01T00:00:00Z" {
		t.Errorf("date overwritten: %s", dates["D0000001"])
	}
}

func TestExtensibleBackfillsEmptyDate(t *testing.T) {
	pkg := newWordPackage(t)
	xp := NewExtensiblePart(pkg, "word/document.xml")
	if err := xp.AddOrUpdate("D0000001", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := xp.AddOrUpdate("D0000001", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	dates, _ := xp.GetAll()
	if dates["D0000001"] != "2026-01-01T00:00:00Z" {
		t.Errorf("empty date not backfilled: %q", dates["D0000001"])
	}
}

func TestIDsRemoveReturnsDurable(t *testing.T) {
	pkg := newWordPackage(t)
	ip := NewIDsPart(pkg, "word/document.xml")
	if err := ip.Add("P0000001", "D0000001"); err != nil {
		t.Fatalf("add: %v", err)
	}
	durable, existed, err := ip.Remove("P0000001")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !existed || durable != "D0000001" {
		t.Errorf("remove = (%q, %v)", durable, existed)
	}
	if _, existed, _ := ip.Remove("P0000001"); existed {
		t.Errorf("second remove reported a row")
	}
}

func TestPeopleValidation(t *testing.T) {
	tests := []struct {
		name    string
		person  Person
		wantErr error
	}{
		{"valid plain", Person{Author: "A"}, nil},
		{"valid presence", Person{Author: "A", ProviderID: "AD", UserID: "u1"}, nil},
		{"empty author", Person{}, ErrEmptyAuthor},
		{"provider without user", Person{Author: "A", ProviderID: "AD"}, ErrInvalidPresence},
		{"user without provider", Person{Author: "A", UserID: "u1"}, ErrInvalidPresence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.person.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPeopleEnsureAndList(t *testing.T) {
	pkg := newWordPackage(t)
	pp := NewPeoplePart(pkg, "word/document.xml")

	people, err := pp.List()
	if err != nil {
		t.Fatalf("list on absent part: %v", err)
	}
	if len(people) != 0 {
		t.Fatalf("absent part listed %d people", len(people))
	}
	if pkg.Part("word/people.xml") != nil {
		t.Fatalf("listing materialized the part")
	}

	if _, err := pp.Ensure("Reviewer One", nil); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p, err := pp.Ensure("Reviewer One", &Presence{ProviderID: "AD", UserID: "S-1-5-21"})
	if err != nil {
		t.Fatalf("ensure with presence: %v", err)
	}
	if !p.HasPresence() || p.ProviderID != "AD" {
		t.Errorf("presence not recorded: %+v", p)
	}
	people, _ = pp.List()
	if len(people) != 1 {
		t.Errorf("ensure duplicated the person: %d entries", len(people))
	}

	if _, err := pp.Get("Nobody"); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("missing person err = %v, want ErrPersonNotFound", err)
	}
}

func TestPeopleMergeFrom(t *testing.T) {
	pkgA := newWordPackage(t)
	ppA := NewPeoplePart(pkgA, "word/document.xml")
	if _, err := ppA.Ensure("Shared", nil); err != nil {
		t.Fatalf("seed a: %v", err)
	}

	pkgB := newWordPackage(t)
	ppB := NewPeoplePart(pkgB, "word/document.xml")
	for _, name := range []string{"Shared", "Only B"} {
		if _, err := ppB.Ensure(name, &Presence{ProviderID: "AD", UserID: "u-" + name}); err != nil {
			t.Fatalf("seed b %s: %v", name, err)
		}
	}

	added, err := ppA.MergeFrom(ppB, false)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(added) != 1 || added[0].Author != "Only B" {
		t.Fatalf("added = %+v, want just Only B", added)
	}
	if added[0].HasPresence() {
		t.Errorf("presence copied despite includePresence=false")
	}
}

func TestEnsureParagraphIDs(t *testing.T) {
	pkg := newWordPackage(t)
	data := `<w:comments xmlns:w="` + opc.NSW + `" xmlns:w14="` + opc.NSW14 + `">` +
		`<w:comment w:id="7" w:author="Legacy" w:date="2026-08-23T10:00:00Z">` +
		`<w:p><w:r><w:t>old style</w:t></w:r></w:p>` +
		`</w:comment></w:comments>`
	if _, err := pkg.CreatePart("word/document.xml", "word/comments.xml",
		opc.RelTypeComments, opc.CTComments, []byte(data)); err != nil {
		t.Fatalf("seed part: %v", err)
	}
	cp := NewCommentsPart(pkg, "word/document.xml")
	next := 0
	newID := func() string { next++; return []string{"AAAA0001", "AAAA0002"}[next-1] }

	changed, err := cp.EnsureParagraphIDs(newID)
	if err != nil {
		t.Fatalf("ensure ids: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change on the legacy comment")
	}
	entries, _ := cp.Comments()
	if len(entries[0].ParaIDs) != 1 || entries[0].ParaIDs[0] != "AAAA0001" {
		t.Errorf("paraIDs = %v", entries[0].ParaIDs)
	}

	changed, err = cp.EnsureParagraphIDs(newID)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if changed {
		t.Errorf("second pass reported changes")
	}
}
