package comments

import (
	"errors"
	"path/filepath"
	"testing"

	"docxcomments/internal/doc"
	"docxcomments/internal/parts"
)

// saveIdentityDoc writes a document whose people registry holds the
// given names and returns its path.
func saveIdentityDoc(t *testing.T, names ...string) string {
	t.Helper()
	d := doc.New()
	pp := parts.NewPeoplePart(d.Package(), d.DocumentPartName())
	for _, name := range names {
		if _, err := pp.Ensure(name, &parts.Presence{ProviderID: "AD", UserID: "u-" + name}); err != nil {
			t.Fatalf("seed person %s: %v", name, err)
		}
	}
	path := filepath.Join(t.TempDir(), "identity.docx")
	if err := d.SaveFile(path); err != nil {
		t.Fatalf("save identity doc: %v", err)
	}
	return path
}

func noSystemUser() (string, string) { return "", "" }

func TestDefaultAuthorFromIdentityDoc(t *testing.T) {
	_, m := newTestManager(t, "text")
	path := saveIdentityDoc(t, "Doc Person")

	p, _, err := m.DefaultAuthor(&IdentityOptions{SourcePath: path, SystemUser: noSystemUser})
	if err != nil {
		t.Fatalf("default author: %v", err)
	}
	if p.Author != "Doc Person" {
		t.Errorf("author = %q", p.Author)
	}
	if p.HasPresence() {
		t.Errorf("presence leaked without IncludePresence")
	}

	p, _, err = m.DefaultAuthor(&IdentityOptions{SourcePath: path, IncludePresence: true, SystemUser: noSystemUser})
	if err != nil {
		t.Fatalf("default author with presence: %v", err)
	}
	if p.UserID != "u-Doc Person" {
		t.Errorf("presence = %+v", p)
	}
}

func TestDefaultAuthorAmbiguousDocFallsThrough(t *testing.T) {
	_, m := newTestManager(t, "text")
	path := saveIdentityDoc(t, "First Person", "Second Person")

	p, initials, err := m.DefaultAuthor(&IdentityOptions{
		SourcePath: path,
		Strict:     true,
		SystemUser: func() (string, string) { return "OS Person", "OS" },
	})
	if err != nil {
		t.Fatalf("default author: %v", err)
	}
	if p.Author != "OS Person" || initials != "OS" {
		t.Errorf("fallback = %q/%q, want the system user", p.Author, initials)
	}
}

func TestDefaultAuthorStrictMissingDoc(t *testing.T) {
	_, m := newTestManager(t, "text")
	_, _, err := m.DefaultAuthor(&IdentityOptions{
		SourcePath: filepath.Join(t.TempDir(), "nope.docx"),
		Strict:     true,
		SystemUser: func() (string, string) { return "OS Person", "OS" },
	})
	if err == nil {
		t.Fatalf("strict mode accepted a missing identity document")
	}
}

func TestDefaultAuthorSystemUser(t *testing.T) {
	_, m := newTestManager(t, "text")
	p, initials, err := m.DefaultAuthor(&IdentityOptions{
		SystemUser: func() (string, string) { return "OS Person", "OS" },
	})
	if err != nil {
		t.Fatalf("default author: %v", err)
	}
	if p.Author != "OS Person" || initials != "OS" {
		t.Errorf("got %q/%q", p.Author, initials)
	}
}

func TestDefaultAuthorCoreProperties(t *testing.T) {
	d, m := newTestManager(t, "text")
	if err := d.SetCoreAuthor("Core Person"); err != nil {
		t.Fatalf("set author: %v", err)
	}
	p, _, err := m.DefaultAuthor(&IdentityOptions{SystemUser: noSystemUser})
	if err != nil {
		t.Fatalf("default author: %v", err)
	}
	if p.Author != "Core Person" {
		t.Errorf("author = %q, want Core Person", p.Author)
	}
}

func TestDefaultAuthorNoSource(t *testing.T) {
	_, m := newTestManager(t, "text")
	_, _, err := m.DefaultAuthor(&IdentityOptions{SystemUser: noSystemUser})
	if !errors.Is(err, ErrNoAuthor) {
		t.Fatalf("err = %v, want ErrNoAuthor", err)
	}
}
