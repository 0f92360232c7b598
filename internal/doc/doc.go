// Package doc is a minimal WordprocessingML document model: enough of
// the body, header/footer and note parts to enumerate paragraphs and
// runs, plus core-properties access. It deliberately implements no
// formatting model.
package doc

import (
	"fmt"
	"io"
	"path"

	"github.com/beevik/etree"

	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

const (
	defaultDocumentName = "word/document.xml"
	defaultCoreName     = "docProps/core.xml"

	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
)

// Document wraps an OPC package and caches the parsed XML trees of the
// parts it has touched. Cached trees are flushed back into the package
// on save.
type Document struct {
	pkg     *opc.Package
	trees   map[string]*etree.Document
	docName string
}

// New creates a blank in-memory document: one empty body, core
// properties, and the package plumbing Word expects.
func New() *Document {
	pkg := opc.NewPackage()

	body := etree.NewDocument()
	body.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := body.CreateElement("w:document")
	root.CreateAttr("xmlns:w", opc.NSW)
	root.CreateAttr("xmlns:w14", opc.NSW14)
	root.CreateAttr("xmlns:r", opc.NSR)
	root.CreateAttr("xmlns:mc", opc.NSMC)
	root.CreateAttr("mc:Ignorable", "w14")
	root.CreateElement("w:body").CreateElement("w:sectPr")
	bodyData, _ := body.WriteToBytes()
	pkg.SetPart(defaultDocumentName, bodyData)

	core := etree.NewDocument()
	core.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	coreRoot := core.CreateElement("cp:coreProperties")
	coreRoot.CreateAttr("xmlns:cp", nsCP)
	coreRoot.CreateAttr("xmlns:dc", nsDC)
	coreRoot.CreateAttr("xmlns:dcterms", nsDCTerms)
	coreRoot.CreateElement("dc:creator")
	coreRoot.CreateElement("cp:lastModifiedBy")
	coreData, _ := core.WriteToBytes()
	pkg.SetPart(defaultCoreName, coreData)

	_ = pkg.EnsureOverride(defaultDocumentName, opc.CTDocument)
	_ = pkg.EnsureOverride(defaultCoreName, opc.CTCoreProps)
	_, _ = pkg.AddRelationship("", opc.RelTypeOfficeDocument, defaultDocumentName)
	_, _ = pkg.AddRelationship("", opc.RelTypeCoreProps, defaultCoreName)

	return wrap(pkg)
}

// Open reads a document from a .docx file.
func Open(filename string) (*Document, error) {
	pkg, err := opc.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	return fromPackage(pkg)
}

// OpenReader reads a document from .docx bytes.
func OpenReader(data []byte) (*Document, error) {
	pkg, err := opc.OpenReader(data)
	if err != nil {
		return nil, err
	}
	return fromPackage(pkg)
}

func fromPackage(pkg *opc.Package) (*Document, error) {
	d := wrap(pkg)
	if pkg.Part(d.docName) == nil {
		return nil, fmt.Errorf("package has no %s part", d.docName)
	}
	return d, nil
}

func wrap(pkg *opc.Package) *Document {
	d := &Document{pkg: pkg, trees: make(map[string]*etree.Document), docName: defaultDocumentName}
	if rels, err := pkg.Relationships(""); err == nil {
		for _, rel := range rels {
			if rel.Type == opc.RelTypeOfficeDocument {
				d.docName = rel.Target
			}
		}
	}
	return d
}

// Package exposes the underlying container for part adapters.
func (d *Document) Package() *opc.Package { return d.pkg }

// DocumentPartName returns the main document part name.
func (d *Document) DocumentPartName() string { return d.docName }

// tree returns the cached parse of a part, loading it on first use.
func (d *Document) tree(name string) *etree.Document {
	if t, ok := d.trees[name]; ok {
		return t
	}
	part := d.pkg.Part(name)
	if part == nil {
		return nil
	}
	t := etree.NewDocument()
	if err := t.ReadFromBytes(part.Data); err != nil {
		return nil
	}
	d.trees[name] = t
	return t
}

// flush serializes every cached tree back into its package part.
func (d *Document) flush() error {
	for name, t := range d.trees {
		data, err := t.WriteToBytes()
		if err != nil {
			return fmt.Errorf("serialize %s: %w", name, err)
		}
		d.pkg.SetPart(name, data)
	}
	return nil
}

// Save writes the document as a .docx archive.
func (d *Document) Save(w io.Writer) error {
	if err := d.flush(); err != nil {
		return err
	}
	return d.pkg.Save(w)
}

// SaveFile writes the document to a .docx file.
func (d *Document) SaveFile(filename string) error {
	if err := d.flush(); err != nil {
		return err
	}
	return d.pkg.SaveFile(filename)
}

// BodyRoot returns the root element of the main document part.
func (d *Document) BodyRoot() *etree.Element {
	t := d.tree(d.docName)
	if t == nil {
		return nil
	}
	return t.Root()
}

// AnchorRoots yields the XML roots that can hold comment anchors: the
// body, any referenced headers and footers, and the footnote/endnote
// parts. Absent parts are never created.
func (d *Document) AnchorRoots() []*etree.Element {
	var roots []*etree.Element
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		if t := d.tree(name); t != nil && t.Root() != nil {
			roots = append(roots, t.Root())
		}
	}

	add(d.docName)
	body := d.BodyRoot()
	if body == nil {
		return roots
	}

	relTargets := map[string]string{}
	if rels, err := d.pkg.Relationships(d.docName); err == nil {
		for _, rel := range rels {
			relTargets[rel.ID] = d.resolve(rel.Target)
		}
	}
	for _, sectPr := range xmlutil.FindAll(body, "sectPr") {
		for _, tag := range []string{"headerReference", "footerReference"} {
			for _, ref := range xmlutil.Children(sectPr, tag) {
				add(relTargets[xmlutil.Attr(ref, "id")])
			}
		}
	}
	for _, relType := range []string{opc.RelTypeFootnotes, opc.RelTypeEndnotes} {
		if part, err := d.pkg.PartByRelType(d.docName, relType); err == nil && part != nil {
			add(part.Name)
		}
	}
	return roots
}

func (d *Document) resolve(target string) string {
	if target == "" {
		return ""
	}
	if target[0] == '/' {
		return target[1:]
	}
	dir, _ := path.Split(d.docName)
	return path.Clean(dir + target)
}

// corePart returns the parsed core-properties tree, or nil.
func (d *Document) corePart() (string, *etree.Document) {
	name := defaultCoreName
	if part, err := d.pkg.PartByRelType("", opc.RelTypeCoreProps); err == nil && part != nil {
		name = part.Name
	}
	return name, d.tree(name)
}

func (d *Document) coreField(local string) string {
	_, t := d.corePart()
	if t == nil || t.Root() == nil {
		return ""
	}
	if el := xmlutil.Child(t.Root(), local); el != nil {
		return el.Text()
	}
	return ""
}

// CoreAuthor returns the dc:creator core property.
func (d *Document) CoreAuthor() string { return d.coreField("creator") }

// CoreLastModifiedBy returns the cp:lastModifiedBy core property.
func (d *Document) CoreLastModifiedBy() string { return d.coreField("lastModifiedBy") }

// SetCoreAuthor sets dc:creator and persists the part immediately.
func (d *Document) SetCoreAuthor(name string) error {
	partName, t := d.corePart()
	if t == nil || t.Root() == nil {
		return fmt.Errorf("document has no core-properties part")
	}
	el := xmlutil.Child(t.Root(), "creator")
	if el == nil {
		el = t.Root().CreateElement("dc:creator")
	}
	el.SetText(name)
	data, err := t.WriteToBytes()
	if err != nil {
		return err
	}
	d.pkg.SetPart(partName, data)
	return nil
}
