package parts

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"docxcomments/internal/opc"
	"docxcomments/internal/xmlutil"
)

var (
	// ErrPersonNotFound indicates no people.xml entry matches the name.
	ErrPersonNotFound = errors.New("person not found")
	// ErrInvalidPresence indicates a presence pair with only one half.
	ErrInvalidPresence = errors.New("presence requires both provider id and user id")
	// ErrEmptyAuthor indicates an empty author name.
	ErrEmptyAuthor = errors.New("author name must not be empty")
)

// Person is one named-identity record from word/people.xml. The
// presence pair is both-or-neither.
type Person struct {
	Author     string
	ProviderID string
	UserID     string
}

// HasPresence reports whether the record carries a presence pair.
func (p Person) HasPresence() bool {
	return p.ProviderID != "" && p.UserID != ""
}

// Validate rejects empty names and half presence pairs.
func (p Person) Validate() error {
	if p.Author == "" {
		return ErrEmptyAuthor
	}
	if (p.ProviderID == "") != (p.UserID == "") {
		return ErrInvalidPresence
	}
	return nil
}

// Presence is the optional identity-provider descriptor of a person.
type Presence struct {
	ProviderID string
	UserID     string
}

// PeoplePart adapts word/people.xml.
type PeoplePart struct {
	t *table
}

// NewPeoplePart returns the adapter, creating the part lazily.
func NewPeoplePart(pkg *opc.Package, sourceName string) *PeoplePart {
	return &PeoplePart{t: newTable(pkg, sourceName,
		"word/people.xml", opc.RelTypePeople, opc.CTPeople,
		"w15:people", "w15",
		[][2]string{
			{"xmlns:mc", opc.NSMC},
			{"xmlns:w15", opc.NSW15},
		})}
}

// ensure materializes the backing part.
func (pp *PeoplePart) ensure() error {
	_, err := pp.t.root()
	return err
}

// List returns all identity records. An absent people part yields an
// empty list without creating the part.
func (pp *PeoplePart) List() ([]Person, error) {
	root, err := pp.t.rootRO()
	if err != nil || root == nil {
		return nil, err
	}
	var out []Person
	for _, el := range xmlutil.Children(root, "person") {
		p := Person{Author: xmlutil.Attr(el, "author")}
		if presence := xmlutil.Child(el, "presenceInfo"); presence != nil {
			p.ProviderID = xmlutil.Attr(presence, "providerId")
			p.UserID = xmlutil.Attr(presence, "userId")
		}
		out = append(out, p)
	}
	return out, nil
}

// Get returns the record for the author name.
func (pp *PeoplePart) Get(author string) (Person, error) {
	people, err := pp.List()
	if err != nil {
		return Person{}, err
	}
	for _, p := range people {
		if p.Author == author {
			return p, nil
		}
	}
	return Person{}, fmt.Errorf("person %q: %w", author, ErrPersonNotFound)
}

// Ensure idempotently creates the record and, when presence is given,
// sets or overwrites its presence descriptor.
func (pp *PeoplePart) Ensure(author string, presence *Presence) (Person, error) {
	if author == "" {
		return Person{}, ErrEmptyAuthor
	}
	if presence != nil && (presence.ProviderID == "" || presence.UserID == "") {
		return Person{}, ErrInvalidPresence
	}
	root, err := pp.t.root()
	if err != nil {
		return Person{}, err
	}
	var el = findPerson(root, author)
	if el == nil {
		el = root.CreateElement("w15:person")
		el.CreateAttr("w15:author", author)
	}
	if presence != nil {
		info := xmlutil.Child(el, "presenceInfo")
		if info == nil {
			info = el.CreateElement("w15:presenceInfo")
		}
		xmlutil.RemoveAttr(info, "providerId")
		xmlutil.RemoveAttr(info, "userId")
		info.CreateAttr("w15:providerId", presence.ProviderID)
		info.CreateAttr("w15:userId", presence.UserID)
	}
	if err := pp.t.save(); err != nil {
		return Person{}, err
	}
	return pp.Get(author)
}

// MergeFrom copies every record from other whose author name is not
// already present, optionally carrying presence, and returns the
// records added.
func (pp *PeoplePart) MergeFrom(other *PeoplePart, includePresence bool) ([]Person, error) {
	existing, err := pp.List()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Author] = true
	}
	incoming, err := other.List()
	if err != nil {
		return nil, err
	}
	var added []Person
	for _, p := range incoming {
		if p.Author == "" || known[p.Author] {
			continue
		}
		var presence *Presence
		if includePresence && p.HasPresence() {
			presence = &Presence{ProviderID: p.ProviderID, UserID: p.UserID}
		}
		ensured, err := pp.Ensure(p.Author, presence)
		if err != nil {
			return nil, err
		}
		known[p.Author] = true
		added = append(added, ensured)
	}
	return added, nil
}

func findPerson(root *etree.Element, author string) *etree.Element {
	for _, el := range xmlutil.Children(root, "person") {
		if xmlutil.Attr(el, "author") == author {
			return el
		}
	}
	return nil
}
