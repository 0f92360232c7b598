package doc

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDocumentRoundTrip(t *testing.T) {
	d := New()
	d.AddParagraph("first paragraph")
	d.AddParagraph("second paragraph")

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	reopened, err := OpenReader(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	paras := reopened.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if got := paras[1].Text(); got != "second paragraph" {
		t.Errorf("paragraph text = %q, want %q", got, "second paragraph")
	}
}

func TestSaveFileAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.docx")
	d := New()
	d.AddParagraph("on disk")
	if err := d.SaveFile(path); err != nil {
		t.Fatalf("save file: %v", err)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := len(reopened.Paragraphs()); got != 1 {
		t.Fatalf("got %d paragraphs, want 1", got)
	}
}

func TestAddParagraphKeepsSectPrLast(t *testing.T) {
	d := New()
	d.AddParagraph("before section properties")

	body := d.BodyRoot().ChildElements()[0]
	children := body.ChildElements()
	if got := children[len(children)-1].Tag; got != "sectPr" {
		t.Errorf("last body child = %s, want sectPr", got)
	}
}

func TestCoreAuthor(t *testing.T) {
	d := New()
	if got := d.CoreAuthor(); got != "" {
		t.Fatalf("new document author = %q, want empty", got)
	}
	if err := d.SetCoreAuthor("Pat Writer"); err != nil {
		t.Fatalf("set author: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	reopened, err := OpenReader(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.CoreAuthor(); got != "Pat Writer" {
		t.Errorf("reopened author = %q, want Pat Writer", got)
	}
}

func TestRunTextPreservesWhitespace(t *testing.T) {
	d := New()
	p := d.AddParagraph("")
	p.AddRun("leading space ")

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	part := d.Package().Part(d.DocumentPartName())
	if !strings.Contains(string(part.Data), `xml:space="preserve"`) {
		t.Errorf("run with trailing space should carry xml:space=preserve")
	}
	reopened, err := OpenReader(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Paragraphs()[0].Text(); got != "leading space " {
		t.Errorf("text = %q, want %q", got, "leading space ")
	}
}
