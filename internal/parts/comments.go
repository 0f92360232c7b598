package parts

import (
	"fmt"
	"strings"

	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

// CommentEntry is one w:comment row of comments.xml. ParaIDs lists the
// paraId of every body paragraph inside the comment, in order.
type CommentEntry struct {
	ID       string
	Author   string
	Initials string
	Date     string
	Text     string
	ParaIDs  []string
}

// NewComment carries the fields of a comment row to be written.
type NewComment struct {
	CommentID string
	ParaID    string
	TextID    string
	Text      string
	Author    string
	Initials  string
	Date      string
}

// CommentsPart adapts word/comments.xml.
type CommentsPart struct {
	t *table
}

// NewCommentsPart returns the adapter, creating the part lazily.
func NewCommentsPart(pkg *opc.Package, sourceName string) *CommentsPart {
	return &CommentsPart{t: newTable(pkg, sourceName,
		"word/comments.xml", opc.RelTypeComments, opc.CTComments,
		"w:comments", "w14 w15",
		[][2]string{
			{"xmlns:w", opc.NSW},
			{"xmlns:w14", opc.NSW14},
			{"xmlns:w15", opc.NSW15},
			{"xmlns:mc", opc.NSMC},
		})}
}

// Ensure materializes the backing part.
func (c *CommentsPart) Ensure() error {
	_, err := c.t.root()
	return err
}

// Comments lists every comment row.
func (c *CommentsPart) Comments() ([]CommentEntry, error) {
	root, err := c.t.root()
	if err != nil {
		return nil, err
	}
	var out []CommentEntry
	for _, el := range xmlutil.Children(root, "comment") {
		entry := CommentEntry{
			ID:       xmlutil.Attr(el, "id"),
			Author:   xmlutil.Attr(el, "author"),
			Initials: xmlutil.Attr(el, "initials"),
			Date:     xmlutil.Attr(el, "date"),
		}
		var text strings.Builder
		for _, t := range xmlutil.FindAll(el, "t") {
			text.WriteString(t.Text())
		}
		entry.Text = text.String()
		for _, p := range xmlutil.Children(el, "p") {
			if paraID := xmlutil.Attr(p, "paraId"); paraID != "" {
				entry.ParaIDs = append(entry.ParaIDs, paraID)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// Add appends a comment row with one CommentText-styled paragraph.
func (c *CommentsPart) Add(nc NewComment, rsid func() string) error {
	root, err := c.t.root()
	if err != nil {
		return err
	}
	el := root.CreateElement("w:comment")
	el.CreateAttr("w:id", nc.CommentID)
	el.CreateAttr("w:author", nc.Author)
	if nc.Initials != "" {
		el.CreateAttr("w:initials", nc.Initials)
	}
	el.CreateAttr("w:date", nc.Date)

	para := el.CreateElement("w:p")
	para.CreateAttr("w:rsidR", rsid())
	para.CreateAttr("w:rsidRDefault", rsid())
	para.CreateAttr("w14:paraId", nc.ParaID)
	para.CreateAttr("w14:textId", nc.TextID)

	pPr := para.CreateElement("w:pPr")
	pPr.CreateElement("w:pStyle").CreateAttr("w:val", "CommentText")

	refRun := para.CreateElement("w:r")
	rPr := refRun.CreateElement("w:rPr")
	rPr.CreateElement("w:rStyle").CreateAttr("w:val", "CommentReference")
	refRun.CreateElement("w:annotationRef")

	textRun := para.CreateElement("w:r")
	textRun.CreateAttr("w:rsidRPr", rsid())
	t := textRun.CreateElement("w:t")
	if nc.Text != strings.TrimSpace(nc.Text) {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(nc.Text)

	return c.t.save()
}

// Remove deletes the comment row and returns the paraIds that were
// attached to it.
func (c *CommentsPart) Remove(commentID string) ([]string, error) {
	root, err := c.t.root()
	if err != nil {
		return nil, err
	}
	for _, el := range xmlutil.Children(root, "comment") {
		if xmlutil.Attr(el, "id") != commentID {
			continue
		}
		var paraIDs []string
		for _, p := range xmlutil.Children(el, "p") {
			if paraID := xmlutil.Attr(p, "paraId"); paraID != "" {
				paraIDs = append(paraIDs, paraID)
			}
		}
		xmlutil.Detach(el)
		if err := c.t.save(); err != nil {
			return nil, err
		}
		return paraIDs, nil
	}
	return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
}

// EnsureParagraphIDs assigns paraId/textId pairs to comment paragraphs
// that lack them, and reports whether anything changed.
func (c *CommentsPart) EnsureParagraphIDs(newID func() string) (bool, error) {
	root, err := c.t.root()
	if err != nil {
		return false, err
	}
	changed := false
	for _, el := range xmlutil.Children(root, "comment") {
		for _, p := range xmlutil.Children(el, "p") {
			if xmlutil.Attr(p, "paraId") == "" {
				p.CreateAttr("w14:paraId", newID())
				changed = true
			}
			if xmlutil.Attr(p, "textId") == "" {
				p.CreateAttr("w14:textId", newID())
				changed = true
			}
		}
	}
	if !changed {
		return false, nil
	}
	return true, c.t.save()
}
