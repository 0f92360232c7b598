// Package xmlutil provides local-name helpers over etree elements.
// OOXML producers vary their namespace prefixes, so element and
// attribute matching is done on local names only; writes always use
// the conventional prefixes.
package xmlutil

import "github.com/beevik/etree"

// Attr returns the value of the attribute with the given local name,
// or "" if absent.
func Attr(el *etree.Element, local string) string {
	for _, a := range el.Attr {
		if a.Key == local {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether an attribute with the local name exists.
func HasAttr(el *etree.Element, local string) bool {
	for _, a := range el.Attr {
		if a.Key == local {
			return true
		}
	}
	return false
}

// RemoveAttr deletes the attribute with the given local name.
func RemoveAttr(el *etree.Element, local string) bool {
	for _, a := range el.Attr {
		if a.Key == local {
			key := a.Key
			if a.Space != "" {
				key = a.Space + ":" + a.Key
			}
			el.RemoveAttr(key)
			return true
		}
	}
	return false
}

// Child returns the first child element with the given local tag.
func Child(el *etree.Element, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			return c
		}
	}
	return nil
}

// Children returns all child elements with the given local tag.
func Children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns all descendants of root with the given local tag, in
// document order.
func FindAll(root *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// NextSibling returns the element immediately following el under the
// same parent, or nil.
func NextSibling(el *etree.Element) *etree.Element {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	idx := el.Index()
	children := parent.Child
	for i := idx + 1; i < len(children); i++ {
		if next, ok := children[i].(*etree.Element); ok {
			return next
		}
	}
	return nil
}

// InsertBefore places el immediately before ref under ref's parent.
func InsertBefore(ref, el *etree.Element) {
	ref.Parent().InsertChildAt(ref.Index(), el)
}

// InsertAfter places el immediately after ref under ref's parent.
func InsertAfter(ref, el *etree.Element) {
	ref.Parent().InsertChildAt(ref.Index()+1, el)
}

// Detach removes el from its parent.
func Detach(el *etree.Element) {
	if parent := el.Parent(); parent != nil {
		parent.RemoveChild(el)
	}
}
