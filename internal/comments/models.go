// Package comments is the comment lifecycle manager: it keeps the
// document body anchors and the four comment metadata parts mutually
// consistent through add, reply, resolve, move and delete operations,
// and can backfill metadata for documents authored elsewhere.
package comments

import (
	"errors"
	"sort"
	"time"

	"docxcomments/internal/parts"
)

var (
	// ErrNotFound indicates an unknown comment identifier.
	ErrNotFound = errors.New("comment not found")
	// ErrAuthorMismatch indicates a linked identity record whose name
	// differs from the comment's author.
	ErrAuthorMismatch = errors.New("linked person must match comment author")

	// Validation sentinels re-exported from the parts package so
	// callers match them without a second import.
	ErrEmptyAuthor     = parts.ErrEmptyAuthor
	ErrInvalidPresence = parts.ErrInvalidPresence
)

// Person is a named-identity record; see parts.Person.
type Person = parts.Person

// Presence is an identity-provider descriptor; see parts.Presence.
type Presence = parts.Presence

// Comment is one annotation joined across the metadata parts.
type Comment struct {
	CommentID    string
	ParaID       string
	Text         string
	Author       string
	Initials     string
	Timestamp    time.Time // zero when the date is absent or unparseable
	ParentParaID string
	Resolved     bool
	DurableID    string
}

// IsReply reports whether the comment has a parent link.
func (c Comment) IsReply() bool { return c.ParentParaID != "" }

// Thread is one root comment with its flattened replies, sorted by
// timestamp ascending; missing timestamps sort first.
type Thread struct {
	Root    Comment
	Replies []Comment
}

// Resolved reports the thread state, which is the root's flag.
func (t Thread) Resolved() bool { return t.Root.Resolved }

// ReplyCount returns the number of replies.
func (t Thread) ReplyCount() int { return len(t.Replies) }

// All returns the root followed by its replies.
func (t Thread) All() []Comment {
	out := make([]Comment, 0, len(t.Replies)+1)
	out = append(out, t.Root)
	return append(out, t.Replies...)
}

func sortByTimestamp(cs []Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Timestamp.Before(cs[j].Timestamp)
	})
}

const (
	// comments.xml dates are written with the local offset so Word
	// shows the author's wall-clock time.
	dateLayoutLocal = "2006-01-02T15:04:05-07:00"
	// commentsExtensible.xml dates are always Z-terminated UTC.
	dateLayoutUTC = "2006-01-02T15:04:05Z"
)

// parseDate accepts both the Z form and the local-offset form, plus a
// bare timestamp (interpreted as UTC). Times are normalized to UTC.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), true
	}
	if ts, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

func formatLocal(t time.Time) string { return t.Format(dateLayoutLocal) }

func formatUTC(t time.Time) string { return t.UTC().Format(dateLayoutUTC) }
