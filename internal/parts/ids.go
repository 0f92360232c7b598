package parts

import (
	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

// IDsPart adapts word/commentsIds.xml: paraId -> durableId.
type IDsPart struct {
	t *table
}

// NewIDsPart returns the adapter, creating the part lazily.
func NewIDsPart(pkg *opc.Package, sourceName string) *IDsPart {
	return &IDsPart{t: newTable(pkg, sourceName,
		"word/commentsIds.xml", opc.RelTypeCommentsIDs, opc.CTCommentsIDs,
		"w16cid:commentsIds", "w16cid",
		[][2]string{
			{"xmlns:mc", opc.NSMC},
			{"xmlns:w16cid", opc.NSW16CID},
		})}
}

// Ensure materializes the backing part.
func (i *IDsPart) Ensure() error {
	_, err := i.t.root()
	return err
}

// GetAll returns the full paraId -> durableId map.
func (i *IDsPart) GetAll() (map[string]string, error) {
	root, err := i.t.root()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, el := range xmlutil.Children(root, "commentId") {
		paraID := xmlutil.Attr(el, "paraId")
		durableID := xmlutil.Attr(el, "durableId")
		if paraID != "" && durableID != "" {
			out[paraID] = durableID
		}
	}
	return out, nil
}

// Add appends a row.
func (i *IDsPart) Add(paraID, durableID string) error {
	root, err := i.t.root()
	if err != nil {
		return err
	}
	el := root.CreateElement("w16cid:commentId")
	el.CreateAttr("w16cid:paraId", paraID)
	el.CreateAttr("w16cid:durableId", durableID)
	return i.t.save()
}

// Remove deletes the row for paraID, returning the durableId it held.
func (i *IDsPart) Remove(paraID string) (string, bool, error) {
	root, err := i.t.root()
	if err != nil {
		return "", false, err
	}
	for _, el := range xmlutil.Children(root, "commentId") {
		if xmlutil.Attr(el, "paraId") == paraID {
			durableID := xmlutil.Attr(el, "durableId")
			xmlutil.Detach(el)
			return durableID, true, i.t.save()
		}
	}
	return "", false, nil
}
