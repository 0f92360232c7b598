package doc

import (
	"strings"

	"github.com/beevik/etree"

	"docxcomments/internal/xmlutil"
)

// Paragraph is a w:p element anywhere in the document.
type Paragraph struct {
	d  *Document
	el *etree.Element
}

// Element returns the underlying w:p element.
func (p Paragraph) Element() *etree.Element { return p.el }

// IsZero reports whether the paragraph is unset.
func (p Paragraph) IsZero() bool { return p.el == nil }

// Runs returns the paragraph's direct child runs in document order.
func (p Paragraph) Runs() []*etree.Element {
	return xmlutil.Children(p.el, "r")
}

// AddRun appends a text run to the paragraph.
func (p Paragraph) AddRun(text string) {
	run := etree.NewElement("w:r")
	t := run.CreateElement("w:t")
	if text != strings.TrimSpace(text) {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(text)
	p.el.AddChild(run)
}

// Text concatenates the literal text of every run in the paragraph.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, t := range xmlutil.FindAll(p.el, "t") {
		b.WriteString(t.Text())
	}
	return b.String()
}

// AddParagraph appends a paragraph to the document body, before the
// trailing section properties when present.
func (d *Document) AddParagraph(text string) Paragraph {
	body := xmlutil.Child(d.BodyRoot(), "body")
	pEl := etree.NewElement("w:p")
	if sectPr := xmlutil.Child(body, "sectPr"); sectPr != nil {
		xmlutil.InsertBefore(sectPr, pEl)
	} else {
		body.AddChild(pEl)
	}
	para := Paragraph{d: d, el: pEl}
	if text != "" {
		para.AddRun(text)
	}
	return para
}

// Paragraphs enumerates every paragraph reachable for commenting:
// body (including tables), then headers/footers, then footnotes and
// endnotes. Parts that do not exist are skipped.
func (d *Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, root := range d.AnchorRoots() {
		for _, el := range xmlutil.FindAll(root, "p") {
			out = append(out, Paragraph{d: d, el: el})
		}
	}
	return out
}

// ParagraphFor wraps an existing w:p element.
func (d *Document) ParagraphFor(el *etree.Element) Paragraph {
	return Paragraph{d: d, el: el}
}
