// Package anchor places and removes the marker triad that binds a
// comment to a text range: commentRangeStart before the first run,
// commentRangeEnd after the last run, and a reference run carrying
// commentReference immediately after the range end.
package anchor

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"docxcomments/internal/doc"
	"docxcomments/internal/xmlutil"
)

// ErrAnchorNotFound indicates the expected anchor group is missing
// from every reachable part of the document.
var ErrAnchorNotFound = errors.New("comment anchors not found")

// Engine performs anchor surgery on one document.
type Engine struct {
	doc *doc.Document
}

// New returns an engine bound to the document.
func New(d *doc.Document) *Engine {
	return &Engine{doc: d}
}

func newRangeStart(commentID string) *etree.Element {
	el := etree.NewElement("w:commentRangeStart")
	el.CreateAttr("w:id", commentID)
	return el
}

func newRangeEnd(commentID string) *etree.Element {
	el := etree.NewElement("w:commentRangeEnd")
	el.CreateAttr("w:id", commentID)
	return el
}

func newReferenceRun(commentID string) *etree.Element {
	run := etree.NewElement("w:r")
	ref := run.CreateElement("w:commentReference")
	ref.CreateAttr("w:id", commentID)
	return run
}

// AddAnchors wraps the paragraph's runs [startRun, endRun] in a marker
// triad. Out-of-range start falls back to 0; a negative or
// out-of-range end falls back to the last run. A paragraph without
// runs receives the triad directly, after its paragraph properties.
func (e *Engine) AddAnchors(p doc.Paragraph, commentID string, startRun, endRun int) {
	runs := p.Runs()
	if len(runs) == 0 {
		e.addToEmptyParagraph(p.Element(), commentID)
		return
	}

	if startRun < 0 || startRun >= len(runs) {
		startRun = 0
	}
	if endRun < startRun || endRun >= len(runs) {
		endRun = len(runs) - 1
	}

	rangeEnd := newRangeEnd(commentID)
	xmlutil.InsertBefore(runs[startRun], newRangeStart(commentID))
	xmlutil.InsertAfter(runs[endRun], rangeEnd)
	xmlutil.InsertAfter(rangeEnd, newReferenceRun(commentID))
}

func (e *Engine) addToEmptyParagraph(paraEl *etree.Element, commentID string) {
	rangeStart := newRangeStart(commentID)
	if pPr := xmlutil.Child(paraEl, "pPr"); pPr != nil {
		xmlutil.InsertAfter(pPr, rangeStart)
	} else {
		paraEl.InsertChildAt(0, rangeStart)
	}
	rangeEnd := newRangeEnd(commentID)
	xmlutil.InsertAfter(rangeStart, rangeEnd)
	xmlutil.InsertAfter(rangeEnd, newReferenceRun(commentID))
}

// AddAnchorsAtComment anchors a new comment at the same location as an
// existing one. Each new marker is inserted after the last consecutive
// marker of its own kind, so stacked comments keep all range ends
// ahead of all reference runs.
func (e *Engine) AddAnchorsAtComment(parentCommentID, newCommentID string) error {
	parentStart, parentEnd, _ := e.findAnchorElements(parentCommentID)
	if parentStart == nil || parentEnd == nil {
		return fmt.Errorf("%w: comment %s", ErrAnchorNotFound, parentCommentID)
	}

	insertStartAfter := parentStart
	for sib := xmlutil.NextSibling(insertStartAfter); sib != nil && sib.Tag == "commentRangeStart"; sib = xmlutil.NextSibling(sib) {
		insertStartAfter = sib
	}
	xmlutil.InsertAfter(insertStartAfter, newRangeStart(newCommentID))

	insertEndAfter := parentEnd
	for sib := xmlutil.NextSibling(insertEndAfter); sib != nil && sib.Tag == "commentRangeEnd"; sib = xmlutil.NextSibling(sib) {
		insertEndAfter = sib
	}
	newEnd := newRangeEnd(newCommentID)
	xmlutil.InsertAfter(insertEndAfter, newEnd)

	insertRefAfter := newEnd
	for sib := xmlutil.NextSibling(insertRefAfter); sib != nil && isReferenceRun(sib); sib = xmlutil.NextSibling(sib) {
		insertRefAfter = sib
	}
	xmlutil.InsertAfter(insertRefAfter, newReferenceRun(newCommentID))
	return nil
}

func isReferenceRun(el *etree.Element) bool {
	return el.Tag == "r" && xmlutil.Child(el, "commentReference") != nil
}

// FindParagraphWithComment returns the paragraph that structurally
// contains the comment's range start.
func (e *Engine) FindParagraphWithComment(commentID string) (doc.Paragraph, error) {
	rangeStart, _, _ := e.findAnchorElements(commentID)
	if rangeStart == nil {
		return doc.Paragraph{}, fmt.Errorf("%w: comment %s", ErrAnchorNotFound, commentID)
	}
	for el := rangeStart.Parent(); el != nil; el = el.Parent() {
		if el.Tag == "p" {
			return e.doc.ParagraphFor(el), nil
		}
	}
	return doc.Paragraph{}, fmt.Errorf("%w: comment %s has no enclosing paragraph", ErrAnchorNotFound, commentID)
}

// RemoveAnchors deletes every marker for the comment across all
// reachable roots. The reference run is removed whole only when the
// reference marker is its sole child.
func (e *Engine) RemoveAnchors(commentID string) {
	for _, root := range e.doc.AnchorRoots() {
		for _, tag := range []string{"commentRangeStart", "commentRangeEnd"} {
			for _, el := range xmlutil.FindAll(root, tag) {
				if xmlutil.Attr(el, "id") == commentID {
					xmlutil.Detach(el)
				}
			}
		}
		for _, ref := range xmlutil.FindAll(root, "commentReference") {
			if xmlutil.Attr(ref, "id") != commentID {
				continue
			}
			run := ref.Parent()
			if run != nil && run.Tag == "r" && len(run.ChildElements()) == 1 {
				xmlutil.Detach(run)
			} else {
				xmlutil.Detach(ref)
			}
		}
	}
}

// findAnchorElements locates the start/end/reference triad for a
// comment, searching every anchor root.
func (e *Engine) findAnchorElements(commentID string) (start, end, ref *etree.Element) {
	for _, root := range e.doc.AnchorRoots() {
		start = firstWithID(root, "commentRangeStart", commentID)
		end = firstWithID(root, "commentRangeEnd", commentID)
		if start == nil || end == nil {
			continue
		}
		ref = firstWithID(root, "commentReference", commentID)
		return start, end, ref
	}
	return nil, nil, nil
}

func firstWithID(root *etree.Element, tag, commentID string) *etree.Element {
	for _, el := range xmlutil.FindAll(root, tag) {
		if xmlutil.Attr(el, "id") == commentID {
			return el
		}
	}
	return nil
}
