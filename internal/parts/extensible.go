package parts

import (
	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

// ExtensiblePart adapts word/commentsExtensible.xml: one row per
// durable identity with an optional UTC creation date.
type ExtensiblePart struct {
	t *table
}

// NewExtensiblePart returns the adapter, creating the part lazily.
func NewExtensiblePart(pkg *opc.Package, sourceName string) *ExtensiblePart {
	return &ExtensiblePart{t: newTable(pkg, sourceName,
		"word/commentsExtensible.xml", opc.RelTypeCommentsExtensible, opc.CTCommentsExtensible,
		"w16cex:commentsExtensible", "w16cex",
		[][2]string{
			{"xmlns:mc", opc.NSMC},
			{"xmlns:w16cex", opc.NSW16CEX},
		})}
}

// Ensure materializes the backing part.
func (x *ExtensiblePart) Ensure() error {
	_, err := x.t.root()
	return err
}

// GetAll returns durableId -> dateUtc ("" when the row has no date).
func (x *ExtensiblePart) GetAll() (map[string]string, error) {
	root, err := x.t.root()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, el := range xmlutil.Children(root, "commentExtensible") {
		if durableID := xmlutil.Attr(el, "durableId"); durableID != "" {
			out[durableID] = xmlutil.Attr(el, "dateUtc")
		}
	}
	return out, nil
}

// AddOrUpdate creates the row when absent. An existing row only gains
// a dateUtc when it has none; a populated date is never overwritten.
func (x *ExtensiblePart) AddOrUpdate(durableID, dateUTC string) error {
	root, err := x.t.root()
	if err != nil {
		return err
	}
	for _, el := range xmlutil.Children(root, "commentExtensible") {
		if xmlutil.Attr(el, "durableId") != durableID {
			continue
		}
		if dateUTC != "" && xmlutil.Attr(el, "dateUtc") == "" {
			el.CreateAttr("w16cex:dateUtc", dateUTC)
			return x.t.save()
		}
		return nil
	}
	el := root.CreateElement("w16cex:commentExtensible")
	el.CreateAttr("w16cex:durableId", durableID)
	if dateUTC != "" {
		el.CreateAttr("w16cex:dateUtc", dateUTC)
	}
	return x.t.save()
}

// Remove deletes the row and reports whether it existed.
func (x *ExtensiblePart) Remove(durableID string) (bool, error) {
	root, err := x.t.root()
	if err != nil {
		return false, err
	}
	for _, el := range xmlutil.Children(root, "commentExtensible") {
		if xmlutil.Attr(el, "durableId") == durableID {
			xmlutil.Detach(el)
			return true, x.t.save()
		}
	}
	return false, nil
}
