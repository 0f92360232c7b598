package comments

import (
	"errors"
	"fmt"
	"time"

	"docxcomments/internal/anchor"
	"docxcomments/internal/doc"
	"docxcomments/internal/parts"
	"docxcomments/internal/util"
)

// Manager orchestrates the anchor engine, the four metadata tables and
// the people registry for one document. It holds long-lived adapters;
// callers must serialize access to a document externally.
type Manager struct {
	doc        *doc.Document
	anchors    *anchor.Engine
	comments   *parts.CommentsPart
	extended   *parts.ExtendedPart
	ids        *parts.IDsPart
	extensible *parts.ExtensiblePart
	people     *parts.PeoplePart

	now          func() time.Time
	newCommentID func() string
	newHexID     func() string
}

// New binds a manager to the document, materializing the four comment
// metadata parts so later operations never race part creation.
func New(d *doc.Document) (*Manager, error) {
	pkg := d.Package()
	source := d.DocumentPartName()
	m := &Manager{
		doc:          d,
		anchors:      anchor.New(d),
		comments:     parts.NewCommentsPart(pkg, source),
		extended:     parts.NewExtendedPart(pkg, source),
		ids:          parts.NewIDsPart(pkg, source),
		extensible:   parts.NewExtensiblePart(pkg, source),
		people:       parts.NewPeoplePart(pkg, source),
		now:          time.Now,
		newCommentID: util.NewCommentID,
		newHexID:     util.NewHexID,
	}
	for _, ensure := range []func() error{
		m.comments.Ensure, m.extended.Ensure, m.ids.Ensure, m.extensible.Ensure,
	} {
		if err := ensure(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddOptions carries the optional arguments of AddComment.
type AddOptions struct {
	Initials string
	// StartRun and EndRun select the anchored run range. A negative
	// EndRun anchors through the last run.
	StartRun int
	EndRun   int
	// Link requests a people.xml entry for the author. Its name must
	// equal the comment author's.
	Link *Person
}

// ReplyOptions carries the optional arguments of ReplyToComment.
type ReplyOptions struct {
	Initials string
	Link     *Person
}

// AddComment creates a new root comment anchored to the paragraph and
// returns its comment ID.
func (m *Manager) AddComment(p doc.Paragraph, text string, author Person, opts *AddOptions) (string, error) {
	if opts == nil {
		opts = &AddOptions{EndRun: -1}
	}
	link, err := m.validateAuthor(author, opts.Link)
	if err != nil {
		return "", err
	}

	commentID := m.newCommentID()
	paraID := m.newHexID()
	textID := m.newHexID()
	durableID := m.newHexID()
	created := m.now()

	if err := m.ensureLinkedPerson(link); err != nil {
		return "", err
	}
	if err := m.comments.Add(parts.NewComment{
		CommentID: commentID,
		ParaID:    paraID,
		TextID:    textID,
		Text:      text,
		Author:    author.Author,
		Initials:  opts.Initials,
		Date:      formatLocal(created),
	}, m.newHexID); err != nil {
		return "", err
	}
	m.anchors.AddAnchors(p, commentID, opts.StartRun, opts.EndRun)
	if err := m.extended.Add(paraID, "", false); err != nil {
		return "", err
	}
	if err := m.ids.Add(paraID, durableID); err != nil {
		return "", err
	}
	if err := m.extensible.AddOrUpdate(durableID, formatUTC(created)); err != nil {
		return "", err
	}
	return commentID, nil
}

// ReplyToComment creates a reply anchored at the thread root's
// location. Whatever comment the reply targets, the stored parent is
// the root of that chain; Word's UI only models root and reply.
func (m *Manager) ReplyToComment(parentCommentID, text string, author Person, opts *ReplyOptions) (string, error) {
	if opts == nil {
		opts = &ReplyOptions{}
	}
	link, err := m.validateAuthor(author, opts.Link)
	if err != nil {
		return "", err
	}

	parent, ok, err := m.findByCommentID(parentCommentID)
	if err != nil {
		return "", err
	}
	if !ok || parent.ParaID == "" {
		// Legacy documents may lack the id metadata; backfill once.
		if err := m.MigrateCommentMetadata(); err != nil {
			return "", err
		}
		parent, ok, err = m.findByCommentID(parentCommentID)
		if err != nil {
			return "", err
		}
		if !ok || parent.ParaID == "" {
			return "", fmt.Errorf("parent comment %s: %w", parentCommentID, ErrNotFound)
		}
	}

	threading, err := m.extended.GetAll()
	if err != nil {
		return "", err
	}
	if _, exists := threading[parent.ParaID]; !exists {
		if err := m.extended.Add(parent.ParaID, "", false); err != nil {
			return "", err
		}
		threading[parent.ParaID] = parts.ThreadRow{}
	}
	rootParaID := walkRoot(threading, parent.ParaID)
	if _, exists := threading[rootParaID]; !exists {
		if err := m.extended.Add(rootParaID, "", false); err != nil {
			return "", err
		}
	}

	anchorTargetID := parentCommentID
	if rootParaID != parent.ParaID {
		if root, found, err := m.findByParaID(rootParaID); err != nil {
			return "", err
		} else if found {
			anchorTargetID = root.CommentID
		}
	}

	commentID := m.newCommentID()
	paraID := m.newHexID()
	textID := m.newHexID()
	durableID := m.newHexID()
	created := m.now()

	if err := m.ensureLinkedPerson(link); err != nil {
		return "", err
	}
	if err := m.comments.Add(parts.NewComment{
		CommentID: commentID,
		ParaID:    paraID,
		TextID:    textID,
		Text:      text,
		Author:    author.Author,
		Initials:  opts.Initials,
		Date:      formatLocal(created),
	}, m.newHexID); err != nil {
		return "", err
	}
	if err := m.anchors.AddAnchorsAtComment(anchorTargetID, commentID); err != nil {
		return "", err
	}
	if err := m.extended.Add(paraID, rootParaID, false); err != nil {
		return "", err
	}
	if err := m.ids.Add(paraID, durableID); err != nil {
		return "", err
	}
	if err := m.extensible.AddOrUpdate(durableID, formatUTC(created)); err != nil {
		return "", err
	}
	return commentID, nil
}

// ResolveComment marks the comment done.
func (m *Manager) ResolveComment(commentID string) error {
	return m.SetCommentResolved(commentID, true)
}

// UnresolveComment clears the done flag.
func (m *Manager) UnresolveComment(commentID string) error {
	return m.SetCommentResolved(commentID, false)
}

// SetCommentResolved flips the threading row's done flag. A comment
// without a threading row is reported as not found, never silently
// skipped.
func (m *Manager) SetCommentResolved(commentID string, resolved bool) error {
	c, ok, err := m.findByCommentID(commentID)
	if err != nil {
		return err
	}
	if !ok || c.ParaID == "" {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	if err := m.extended.SetDone(c.ParaID, resolved); err != nil {
		if errors.Is(err, parts.ErrNotFound) {
			return fmt.Errorf("comment %s has no threading row: %w", commentID, ErrNotFound)
		}
		return fmt.Errorf("comment %s: %w", commentID, err)
	}
	return nil
}

// ListComments joins the comments table with threading and durable ids
// on each comment's primary paraId.
func (m *Manager) ListComments() ([]Comment, error) {
	entries, err := m.comments.Comments()
	if err != nil {
		return nil, err
	}
	threading, err := m.extended.GetAll()
	if err != nil {
		return nil, err
	}
	durables, err := m.ids.GetAll()
	if err != nil {
		return nil, err
	}
	var out []Comment
	for _, e := range entries {
		primary := choosePrimary(e.ParaIDs, threading, durables)
		row := threading[primary]
		ts, _ := parseDate(e.Date)
		out = append(out, Comment{
			CommentID:    e.ID,
			ParaID:       primary,
			Text:         e.Text,
			Author:       e.Author,
			Initials:     e.Initials,
			Timestamp:    ts,
			ParentParaID: row.ParentParaID,
			Resolved:     row.Done,
			DurableID:    durables[primary],
		})
	}
	return out, nil
}

// CommentThreads groups comments by the root of their parent chain.
// The walk is cycle-guarded; a cycle's breaking point acts as root.
func (m *Manager) CommentThreads() ([]Thread, error) {
	all, err := m.ListComments()
	if err != nil {
		return nil, err
	}
	threading, err := m.extended.GetAll()
	if err != nil {
		return nil, err
	}

	var keys []string
	groups := make(map[string][]Comment)
	for _, c := range all {
		key := c.CommentID
		if c.ParaID != "" {
			key = walkRoot(threading, c.ParaID)
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], c)
	}

	var threads []Thread
	for _, key := range keys {
		members := groups[key]
		rootIdx := 0
		for i, c := range members {
			if c.ParaID == key {
				rootIdx = i
				break
			}
		}
		t := Thread{Root: members[rootIdx]}
		for i, c := range members {
			if i != rootIdx {
				t.Replies = append(t.Replies, c)
			}
		}
		sortByTimestamp(t.Replies)
		threads = append(threads, t)
	}
	return threads, nil
}

// Authors maps every commenting author to their initials, preferring
// the first non-empty initials seen.
func (m *Manager) Authors() (map[string]string, error) {
	all, err := m.ListComments()
	if err != nil {
		return nil, err
	}
	authors := make(map[string]string)
	for _, c := range all {
		if c.Author == "" {
			continue
		}
		if existing, seen := authors[c.Author]; !seen {
			authors[c.Author] = c.Initials
		} else if existing == "" && c.Initials != "" {
			authors[c.Author] = c.Initials
		}
	}
	return authors, nil
}

// DocumentAuthor returns the document owner from core properties and
// any initials recovered from that author's existing comments.
func (m *Manager) DocumentAuthor() (string, string, error) {
	name := m.doc.CoreAuthor()
	if name == "" {
		name = m.doc.CoreLastModifiedBy()
	}
	initials, err := m.initialsForAuthor(name)
	if err != nil {
		return "", "", err
	}
	return name, initials, nil
}

func (m *Manager) initialsForAuthor(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	all, err := m.ListComments()
	if err != nil {
		return "", err
	}
	for _, c := range all {
		if c.Author == name && c.Initials != "" {
			return c.Initials, nil
		}
	}
	return "", nil
}

// People lists the people.xml registry.
func (m *Manager) People() ([]Person, error) { return m.people.List() }

// GetPerson returns one registry record by author name.
func (m *Manager) GetPerson(author string) (Person, error) { return m.people.Get(author) }

// EnsurePerson idempotently creates or updates a registry record.
func (m *Manager) EnsurePerson(author string, presence *Presence) (Person, error) {
	return m.people.Ensure(author, presence)
}

// MergePeopleFrom copies unknown identity records from another
// document's registry, never overwriting existing names.
func (m *Manager) MergePeopleFrom(source *doc.Document, includePresence bool) ([]Person, error) {
	other := parts.NewPeoplePart(source.Package(), source.DocumentPartName())
	return m.people.MergeFrom(other, includePresence)
}

// validateAuthor rejects malformed author records before any mutation
// and resolves the effective identity link: an explicit link wins,
// otherwise an author carrying presence links itself.
func (m *Manager) validateAuthor(author Person, link *Person) (*Person, error) {
	if err := author.Validate(); err != nil {
		return nil, err
	}
	if link != nil {
		if err := link.Validate(); err != nil {
			return nil, err
		}
		if link.Author != author.Author {
			return nil, fmt.Errorf("link %q vs author %q: %w", link.Author, author.Author, ErrAuthorMismatch)
		}
		return link, nil
	}
	if author.HasPresence() {
		return &author, nil
	}
	return nil, nil
}

func (m *Manager) ensureLinkedPerson(link *Person) error {
	if link == nil {
		return nil
	}
	var presence *Presence
	if link.HasPresence() {
		presence = &Presence{ProviderID: link.ProviderID, UserID: link.UserID}
	}
	_, err := m.people.Ensure(link.Author, presence)
	return err
}

func (m *Manager) findByCommentID(commentID string) (Comment, bool, error) {
	all, err := m.ListComments()
	if err != nil {
		return Comment{}, false, err
	}
	for _, c := range all {
		if c.CommentID == commentID {
			return c, true, nil
		}
	}
	return Comment{}, false, nil
}

func (m *Manager) findByParaID(paraID string) (Comment, bool, error) {
	all, err := m.ListComments()
	if err != nil {
		return Comment{}, false, err
	}
	for _, c := range all {
		if c.ParaID == paraID {
			return c, true, nil
		}
	}
	return Comment{}, false, nil
}

// walkRoot follows parent links to the thread root. A paraId revisited
// during the walk halts it; the walk never loops.
func walkRoot(threading map[string]parts.ThreadRow, paraID string) string {
	seen := map[string]bool{paraID: true}
	cur := paraID
	for {
		row, ok := threading[cur]
		if !ok || row.ParentParaID == "" {
			return cur
		}
		if seen[row.ParentParaID] {
			return cur
		}
		cur = row.ParentParaID
		seen[cur] = true
	}
}

// choosePrimary picks a comment's join key among its paragraph ids:
// one the threading table already knows, else one the durable-id table
// knows, else the last paragraph's id.
func choosePrimary(paraIDs []string, threading map[string]parts.ThreadRow, durables map[string]string) string {
	if len(paraIDs) == 0 {
		return ""
	}
	for _, id := range paraIDs {
		if _, ok := threading[id]; ok {
			return id
		}
	}
	for _, id := range paraIDs {
		if _, ok := durables[id]; ok {
			return id
		}
	}
	return paraIDs[len(paraIDs)-1]
}
