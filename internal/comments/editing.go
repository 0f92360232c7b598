package comments

import (
	"fmt"

	"docxcomments/internal/doc"
)

// DeleteComment removes one comment: its anchors, its comments.xml row
// and its rows in the three metadata tables. Replies of a deleted
// parent are detached rather than deleted; the orphan sweep afterwards
// clears their dangling parent links.
func (m *Manager) DeleteComment(commentID string) error {
	// Backfill first so the tables actually contain the rows we are
	// about to remove.
	if err := m.MigrateCommentMetadata(); err != nil {
		return err
	}
	paraIDs, err := m.comments.Remove(commentID)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	m.anchors.RemoveAnchors(commentID)
	for _, paraID := range paraIDs {
		if err := m.removeMetadataRows(paraID); err != nil {
			return err
		}
	}
	return m.sweepOrphans()
}

// DeleteThread removes the seed comment's whole thread, root and
// replies alike.
func (m *Manager) DeleteThread(commentID string) error {
	if err := m.MigrateCommentMetadata(); err != nil {
		return err
	}
	seed, ok, err := m.findByCommentID(commentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	threading, err := m.extended.GetAll()
	if err != nil {
		return err
	}
	rootParaID := seed.ParaID
	if rootParaID != "" {
		rootParaID = walkRoot(threading, seed.ParaID)
	}

	all, err := m.ListComments()
	if err != nil {
		return err
	}
	for _, c := range all {
		inThread := c.CommentID == commentID
		if !inThread && c.ParaID != "" && rootParaID != "" {
			inThread = walkRoot(threading, c.ParaID) == rootParaID
		}
		if !inThread {
			continue
		}
		paraIDs, err := m.comments.Remove(c.CommentID)
		if err != nil {
			return fmt.Errorf("delete comment %s: %w", c.CommentID, err)
		}
		m.anchors.RemoveAnchors(c.CommentID)
		for _, paraID := range paraIDs {
			if err := m.removeMetadataRows(paraID); err != nil {
				return err
			}
		}
	}
	return m.sweepOrphans()
}

// MoveComment re-anchors a comment to another paragraph. Metadata rows
// are untouched; only the body markers move. A negative endRun anchors
// through the paragraph's last run.
func (m *Manager) MoveComment(commentID string, target doc.Paragraph, startRun, endRun int) error {
	if _, ok, err := m.findByCommentID(commentID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	m.anchors.RemoveAnchors(commentID)
	m.anchors.AddAnchors(target, commentID, startRun, endRun)
	return nil
}

// MoveThread re-anchors a whole thread: the root moves to the target
// paragraph and every reply stacks back onto the root's new location.
func (m *Manager) MoveThread(commentID string, target doc.Paragraph, startRun, endRun int) error {
	seed, ok, err := m.findByCommentID(commentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	threads, err := m.CommentThreads()
	if err != nil {
		return err
	}
	var members []Comment
	for _, t := range threads {
		for _, c := range t.All() {
			if c.CommentID == seed.CommentID {
				members = t.All()
				break
			}
		}
		if members != nil {
			break
		}
	}
	if members == nil {
		members = []Comment{seed}
	}

	for _, c := range members {
		m.anchors.RemoveAnchors(c.CommentID)
	}
	m.anchors.AddAnchors(target, members[0].CommentID, startRun, endRun)
	for _, c := range members[1:] {
		if err := m.anchors.AddAnchorsAtComment(members[0].CommentID, c.CommentID); err != nil {
			return err
		}
	}
	return nil
}

// removeMetadataRows deletes the paragraph's threading and durable-id
// rows and, when the durable id is released, its extensible row.
func (m *Manager) removeMetadataRows(paraID string) error {
	if _, err := m.extended.Remove(paraID); err != nil {
		return err
	}
	durableID, existed, err := m.ids.Remove(paraID)
	if err != nil {
		return err
	}
	if existed && durableID != "" {
		if _, err := m.extensible.Remove(durableID); err != nil {
			return err
		}
	}
	return nil
}

// sweepOrphans deletes metadata rows whose comment paragraph no longer
// exists and clears parent links that point at removed rows.
func (m *Manager) sweepOrphans() error {
	entries, err := m.comments.Comments()
	if err != nil {
		return err
	}
	live := make(map[string]bool)
	for _, e := range entries {
		for _, id := range e.ParaIDs {
			live[id] = true
		}
	}

	threading, err := m.extended.GetAll()
	if err != nil {
		return err
	}
	for paraID := range threading {
		if !live[paraID] {
			if _, err := m.extended.Remove(paraID); err != nil {
				return err
			}
			delete(threading, paraID)
		}
	}

	durables, err := m.ids.GetAll()
	if err != nil {
		return err
	}
	referenced := make(map[string]bool)
	for paraID, durableID := range durables {
		if !live[paraID] {
			if _, _, err := m.ids.Remove(paraID); err != nil {
				return err
			}
			continue
		}
		referenced[durableID] = true
	}

	extensible, err := m.extensible.GetAll()
	if err != nil {
		return err
	}
	for durableID := range extensible {
		if !referenced[durableID] {
			if _, err := m.extensible.Remove(durableID); err != nil {
				return err
			}
		}
	}

	// Detach rows whose parent disappeared with the sweep.
	for paraID, row := range threading {
		if row.ParentParaID == "" {
			continue
		}
		if _, ok := threading[row.ParentParaID]; !ok {
			if _, err := m.extended.SetParent(paraID, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
