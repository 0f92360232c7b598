// Package opc implements the minimal slice of the Open Packaging
// Conventions a Word document needs: a zip of parts, per-part
// relationship files and the [Content_Types].xml index.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"

	contentTypesName = "[Content_Types].xml"
)

// Part is a single file inside the package. Data is the serialized
// part content; adapters parse and rewrite it on every mutation.
type Part struct {
	Name        string
	ContentType string
	Data        []byte
}

// Package is an in-memory OPC container.
type Package struct {
	parts map[string]*Part
	order []string
}

// NewPackage returns an empty package with a content-types index.
func NewPackage() *Package {
	p := &Package{parts: make(map[string]*Part)}
	ct := etree.NewDocument()
	ct.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := ct.CreateElement("Types")
	root.CreateAttr("xmlns", nsContentTypes)
	def := root.CreateElement("Default")
	def.CreateAttr("Extension", "rels")
	def.CreateAttr("ContentType", "application/vnd.openxmlformats-package.relationships+xml")
	def = root.CreateElement("Default")
	def.CreateAttr("Extension", "xml")
	def.CreateAttr("ContentType", "application/xml")
	data, _ := ct.WriteToBytes()
	p.SetPart(contentTypesName, data)
	return p
}

// OpenReader reads a package from zip bytes.
func OpenReader(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	p := &Package{parts: make(map[string]*Part)}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		p.SetPart(f.Name, content)
	}
	p.fillContentTypes()
	return p, nil
}

// OpenFile reads a package from a file on disk.
func OpenFile(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return OpenReader(data)
}

// Save writes the package as a zip archive.
func (p *Package) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range p.order {
		part := p.parts[name]
		fw, err := zw.Create(part.Name)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	return zw.Close()
}

// SaveFile writes the package to a file on disk.
func (p *Package) SaveFile(filename string) error {
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// Part returns the named part, or nil if absent.
func (p *Package) Part(name string) *Part {
	return p.parts[strings.TrimPrefix(name, "/")]
}

// SetPart creates or replaces a part's raw content.
func (p *Package) SetPart(name string, data []byte) *Part {
	name = strings.TrimPrefix(name, "/")
	part, ok := p.parts[name]
	if !ok {
		part = &Part{Name: name}
		p.parts[name] = part
		p.order = append(p.order, name)
	}
	part.Data = data
	return part
}

// PartNames returns all part names in save order.
func (p *Package) PartNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Relationship is one entry of a part's .rels file.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

func relsName(sourceName string) string {
	if sourceName == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(sourceName)
	return dir + "_rels/" + base + ".rels"
}

// Relationships lists the relationships declared by the named source
// part. A missing .rels part yields an empty list.
func (p *Package) Relationships(sourceName string) ([]Relationship, error) {
	part := p.Part(relsName(sourceName))
	if part == nil {
		return nil, nil
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(part.Data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", part.Name, err)
	}
	root := tree.Root()
	if root == nil {
		return nil, nil
	}
	var rels []Relationship
	for _, el := range root.ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		rels = append(rels, Relationship{
			ID:     el.SelectAttrValue("Id", ""),
			Type:   el.SelectAttrValue("Type", ""),
			Target: el.SelectAttrValue("Target", ""),
		})
	}
	return rels, nil
}

// resolveTarget resolves a relationship target against its source part.
func resolveTarget(sourceName, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	dir, _ := path.Split(sourceName)
	return path.Clean(dir + target)
}

// PartByRelType returns the first part the source relates to with the
// given relationship type, or nil when no such relationship exists.
func (p *Package) PartByRelType(sourceName, relType string) (*Part, error) {
	rels, err := p.Relationships(sourceName)
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		if rel.Type != relType {
			continue
		}
		if part := p.Part(resolveTarget(sourceName, rel.Target)); part != nil {
			return part, nil
		}
	}
	return nil, nil
}

// AddRelationship registers a relationship on the source part's .rels
// file, creating the file if needed, and returns the new rId.
func (p *Package) AddRelationship(sourceName, relType, target string) (string, error) {
	name := relsName(sourceName)
	tree := etree.NewDocument()
	part := p.Part(name)
	if part != nil {
		if err := tree.ReadFromBytes(part.Data); err != nil {
			return "", fmt.Errorf("parse %s: %w", name, err)
		}
	}
	root := tree.Root()
	if root == nil {
		tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root = tree.CreateElement("Relationships")
		root.CreateAttr("xmlns", nsRelationships)
	}
	maxID := 0
	for _, el := range root.ChildElements() {
		id := el.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	id := "rId" + strconv.Itoa(maxID+1)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	data, err := tree.WriteToBytes()
	if err != nil {
		return "", err
	}
	p.SetPart(name, data)
	return id, nil
}

// EnsureOverride records the part's content type in [Content_Types].xml.
func (p *Package) EnsureOverride(partName, contentType string) error {
	partName = "/" + strings.TrimPrefix(partName, "/")
	part := p.Part(contentTypesName)
	tree := etree.NewDocument()
	if part != nil {
		if err := tree.ReadFromBytes(part.Data); err != nil {
			return fmt.Errorf("parse content types: %w", err)
		}
	}
	root := tree.Root()
	if root == nil {
		tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root = tree.CreateElement("Types")
		root.CreateAttr("xmlns", nsContentTypes)
	}
	for _, el := range root.ChildElements() {
		if el.Tag == "Override" && el.SelectAttrValue("PartName", "") == partName {
			el.CreateAttr("ContentType", contentType)
			return p.writeContentTypes(tree, partName, contentType)
		}
	}
	ov := root.CreateElement("Override")
	ov.CreateAttr("PartName", partName)
	ov.CreateAttr("ContentType", contentType)
	return p.writeContentTypes(tree, partName, contentType)
}

func (p *Package) writeContentTypes(tree *etree.Document, partName, contentType string) error {
	data, err := tree.WriteToBytes()
	if err != nil {
		return err
	}
	p.SetPart(contentTypesName, data)
	if part := p.Part(partName); part != nil {
		part.ContentType = contentType
	}
	return nil
}

// CreatePart adds a new part with its content type override and a
// relationship from the source part.
func (p *Package) CreatePart(sourceName, partName, relType, contentType string, data []byte) (*Part, error) {
	part := p.SetPart(partName, data)
	part.ContentType = contentType
	if err := p.EnsureOverride(partName, contentType); err != nil {
		return nil, err
	}
	target := relTarget(sourceName, partName)
	if _, err := p.AddRelationship(sourceName, relType, target); err != nil {
		return nil, err
	}
	return part, nil
}

// relTarget renders partName relative to the source part's directory.
func relTarget(sourceName, partName string) string {
	dir, _ := path.Split(sourceName)
	if dir != "" && strings.HasPrefix(partName, dir) {
		return strings.TrimPrefix(partName, dir)
	}
	return "/" + partName
}

// fillContentTypes back-fills Part.ContentType from the index on open.
func (p *Package) fillContentTypes() {
	part := p.Part(contentTypesName)
	if part == nil {
		return
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(part.Data); err != nil {
		return
	}
	root := tree.Root()
	if root == nil {
		return
	}
	defaults := map[string]string{}
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "Default":
			defaults[strings.ToLower(el.SelectAttrValue("Extension", ""))] = el.SelectAttrValue("ContentType", "")
		case "Override":
			if target := p.Part(el.SelectAttrValue("PartName", "")); target != nil {
				target.ContentType = el.SelectAttrValue("ContentType", "")
			}
		}
	}
	for _, name := range p.order {
		target := p.parts[name]
		if target.ContentType == "" {
			ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
			target.ContentType = defaults[ext]
		}
	}
}
