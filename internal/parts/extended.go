package parts

import (
	"fmt"

	"github.com/beevik/etree"

	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

// ThreadRow is one w15:commentEx entry: the threading and resolution
// state of a comment paragraph.
type ThreadRow struct {
	ParentParaID string
	Done         bool
}

// ExtendedPart adapts word/commentsExtended.xml.
type ExtendedPart struct {
	t *table
}

// NewExtendedPart returns the adapter, creating the part lazily.
func NewExtendedPart(pkg *opc.Package, sourceName string) *ExtendedPart {
	return &ExtendedPart{t: newTable(pkg, sourceName,
		"word/commentsExtended.xml", opc.RelTypeCommentsExtended, opc.CTCommentsExtended,
		"w15:commentsEx", "w15",
		[][2]string{
			{"xmlns:mc", opc.NSMC},
			{"xmlns:w15", opc.NSW15},
		})}
}

// Ensure materializes the backing part.
func (e *ExtendedPart) Ensure() error {
	_, err := e.t.root()
	return err
}

// GetAll returns the full paraId -> row map.
func (e *ExtendedPart) GetAll() (map[string]ThreadRow, error) {
	root, err := e.t.root()
	if err != nil {
		return nil, err
	}
	out := make(map[string]ThreadRow)
	for _, el := range xmlutil.Children(root, "commentEx") {
		paraID := xmlutil.Attr(el, "paraId")
		if paraID == "" {
			continue
		}
		out[paraID] = ThreadRow{
			ParentParaID: xmlutil.Attr(el, "paraIdParent"),
			Done:         xmlutil.Attr(el, "done") == "1",
		}
	}
	return out, nil
}

// Add appends a row. A reply row is inserted immediately after its
// parent's row when the parent is present, so related entries stay
// physically adjacent; otherwise it is appended.
func (e *ExtendedPart) Add(paraID, parentParaID string, done bool) error {
	root, err := e.t.root()
	if err != nil {
		return err
	}
	el := e.newRow(paraID, parentParaID, done)
	inserted := false
	if parentParaID != "" {
		for _, existing := range xmlutil.Children(root, "commentEx") {
			if xmlutil.Attr(existing, "paraId") == parentParaID {
				xmlutil.InsertAfter(existing, el)
				inserted = true
				break
			}
		}
	}
	if !inserted {
		root.AddChild(el)
	}
	return e.t.save()
}

func (e *ExtendedPart) newRow(paraID, parentParaID string, done bool) *etree.Element {
	el := etree.NewElement("w15:commentEx")
	el.CreateAttr("w15:paraId", paraID)
	el.CreateAttr("w15:done", boolFlag(done))
	if parentParaID != "" {
		el.CreateAttr("w15:paraIdParent", parentParaID)
	}
	return el
}

// SetDone flips the resolved flag, failing when no row exists.
func (e *ExtendedPart) SetDone(paraID string, done bool) error {
	root, err := e.t.root()
	if err != nil {
		return err
	}
	for _, el := range xmlutil.Children(root, "commentEx") {
		if xmlutil.Attr(el, "paraId") == paraID {
			xmlutil.RemoveAttr(el, "done")
			el.CreateAttr("w15:done", boolFlag(done))
			return e.t.save()
		}
	}
	return fmt.Errorf("threading row %s: %w", paraID, ErrNotFound)
}

// SetParent rewrites (or clears, with "") the parent link and reports
// whether a row was updated.
func (e *ExtendedPart) SetParent(paraID, parentParaID string) (bool, error) {
	root, err := e.t.root()
	if err != nil {
		return false, err
	}
	for _, el := range xmlutil.Children(root, "commentEx") {
		if xmlutil.Attr(el, "paraId") != paraID {
			continue
		}
		xmlutil.RemoveAttr(el, "paraIdParent")
		if parentParaID != "" {
			el.CreateAttr("w15:paraIdParent", parentParaID)
		}
		return true, e.t.save()
	}
	return false, nil
}

// Remove deletes the row and reports whether it existed.
func (e *ExtendedPart) Remove(paraID string) (bool, error) {
	root, err := e.t.root()
	if err != nil {
		return false, err
	}
	for _, el := range xmlutil.Children(root, "commentEx") {
		if xmlutil.Attr(el, "paraId") == paraID {
			xmlutil.Detach(el)
			return true, e.t.save()
		}
	}
	return false, nil
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
