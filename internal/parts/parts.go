// Package parts adapts the five comment metadata parts (comments.xml,
// commentsExtended.xml, commentsIds.xml, commentsExtensible.xml and
// people.xml) as small typed tables over their XML trees. Every
// mutating operation persists back into the package immediately.
package parts

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"docxcomments/internal/opc"
)

// ErrNotFound indicates a table row keyed by the given identifier does
// not exist.
var ErrNotFound = errors.New("entry not found")

// table is the shared backing-part plumbing: lazy part creation with
// relationship and content-type registration, parse caching, and
// immediate write-back.
type table struct {
	pkg         *opc.Package
	sourceName  string
	partName    string
	relType     string
	contentType string
	rootTag     string
	nsAttrs     [][2]string
	ignorable   string

	resolved string
	tree     *etree.Document
}

func newTable(pkg *opc.Package, sourceName, partName, relType, contentType, rootTag, ignorable string, nsAttrs [][2]string) *table {
	return &table{
		pkg:         pkg,
		sourceName:  sourceName,
		partName:    partName,
		relType:     relType,
		contentType: contentType,
		rootTag:     rootTag,
		nsAttrs:     nsAttrs,
		ignorable:   ignorable,
	}
}

// root returns the table's XML root, creating the backing part (and
// registering its relationship and content type) when absent.
func (t *table) root() (*etree.Element, error) {
	if t.tree != nil {
		return t.tree.Root(), nil
	}
	part, err := t.pkg.PartByRelType(t.sourceName, t.relType)
	if err != nil {
		return nil, err
	}
	if part == nil {
		// Some producers ship the part without a relationship.
		part = t.pkg.Part(t.partName)
	}
	if part == nil {
		data, err := t.emptyPart()
		if err != nil {
			return nil, err
		}
		part, err = t.pkg.CreatePart(t.sourceName, t.partName, t.relType, t.contentType, data)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", t.partName, err)
		}
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(part.Data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", part.Name, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("parse %s: no root element", part.Name)
	}
	t.resolved = part.Name
	t.tree = tree
	return tree.Root(), nil
}

func (t *table) emptyPart() ([]byte, error) {
	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := tree.CreateElement(t.rootTag)
	for _, ns := range t.nsAttrs {
		root.CreateAttr(ns[0], ns[1])
	}
	if t.ignorable != "" {
		root.CreateAttr("mc:Ignorable", t.ignorable)
	}
	return tree.WriteToBytes()
}

// rootRO returns the root without materializing an absent part.
func (t *table) rootRO() (*etree.Element, error) {
	if t.tree != nil {
		return t.tree.Root(), nil
	}
	part, err := t.pkg.PartByRelType(t.sourceName, t.relType)
	if err != nil {
		return nil, err
	}
	if part == nil {
		part = t.pkg.Part(t.partName)
	}
	if part == nil {
		return nil, nil
	}
	return t.root()
}

// save writes the cached tree back into the package part.
func (t *table) save() error {
	if t.tree == nil {
		return nil
	}
	data, err := t.tree.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", t.resolved, err)
	}
	t.pkg.SetPart(t.resolved, data)
	return nil
}
