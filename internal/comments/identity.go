package comments

import (
	"errors"
	"fmt"
	"log"
	"os"

	"docxcomments/internal/doc"
	"docxcomments/internal/parts"
)

var (
	// ErrNoAuthor indicates no identity source could produce a name.
	ErrNoAuthor = errors.New("no author identity available")
	// ErrAmbiguousSource indicates an identity document that names more
	// than one person.
	ErrAmbiguousSource = errors.New("identity document names multiple people")
)

// EnvAuthorDoc names a document whose people registry supplies the
// default author identity.
const EnvAuthorDoc = "DOCX_COMMENTS_AUTHOR_DOCX"

// SystemUserFunc returns the operating-system user name and initials,
// both empty when the platform has no Office identity.
type SystemUserFunc func() (name, initials string)

// IdentityOptions tunes DefaultAuthor.
type IdentityOptions struct {
	// SourcePath overrides the EnvAuthorDoc identity document.
	SourcePath string
	// IncludePresence carries the identity document's presence pair
	// into the returned person.
	IncludePresence bool
	// Strict turns an unusable identity document into a hard error
	// instead of falling through to the next source.
	Strict bool
	// SystemUser overrides the platform lookup.
	SystemUser SystemUserFunc
}

// DefaultAuthor resolves the author to sign new comments with. Sources
// are tried in order: an identity document's people registry, the
// operating-system Office profile, and finally the document's own core
// properties. An identity document naming several people is ambiguous
// and only triggers a warning; resolution falls through.
func (m *Manager) DefaultAuthor(opts *IdentityOptions) (Person, string, error) {
	if opts == nil {
		opts = &IdentityOptions{}
	}

	sourcePath := opts.SourcePath
	if sourcePath == "" {
		sourcePath = os.Getenv(EnvAuthorDoc)
	}
	if sourcePath != "" {
		p, err := personFromIdentityDoc(sourcePath, opts.IncludePresence)
		switch {
		case err == nil:
			return p, "", nil
		case errors.Is(err, ErrAmbiguousSource):
			log.Printf("WARNING: identity document %s: %v", sourcePath, err)
		case opts.Strict:
			return Person{}, "", fmt.Errorf("identity document %s: %w", sourcePath, err)
		default:
			log.Printf("WARNING: identity document %s: %v", sourcePath, err)
		}
	}

	lookup := opts.SystemUser
	if lookup == nil {
		lookup = systemUser
	}
	if name, initials := lookup(); name != "" {
		return Person{Author: name}, initials, nil
	}

	name, initials, err := m.DocumentAuthor()
	if err != nil {
		return Person{}, "", err
	}
	if name != "" {
		return Person{Author: name}, initials, nil
	}
	return Person{}, "", ErrNoAuthor
}

// personFromIdentityDoc reads the people registry of another document
// and requires it to name exactly one person.
func personFromIdentityDoc(path string, includePresence bool) (Person, error) {
	d, err := doc.Open(path)
	if err != nil {
		return Person{}, err
	}
	people, err := parts.NewPeoplePart(d.Package(), d.DocumentPartName()).List()
	if err != nil {
		return Person{}, err
	}
	switch len(people) {
	case 0:
		return Person{}, fmt.Errorf("no people registry entries: %w", ErrNoAuthor)
	case 1:
		p := people[0]
		if !includePresence {
			p.ProviderID, p.UserID = "", ""
		}
		return p, nil
	default:
		return Person{}, ErrAmbiguousSource
	}
}
