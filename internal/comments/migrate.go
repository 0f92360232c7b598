package comments

import "docxcomments/internal/parts"

// MigrateCommentMetadata backfills the metadata tables for documents
// produced by writers that only emit comments.xml: every comment
// paragraph gets a paraId/textId pair, every comment gets a threading
// row, a durable id and an extensible row. Running it on a complete
// document changes nothing.
func (m *Manager) MigrateCommentMetadata() error {
	if _, err := m.comments.EnsureParagraphIDs(m.newHexID); err != nil {
		return err
	}
	entries, err := m.comments.Comments()
	if err != nil {
		return err
	}
	threading, err := m.extended.GetAll()
	if err != nil {
		return err
	}
	durables, err := m.ids.GetAll()
	if err != nil {
		return err
	}
	for _, e := range entries {
		paraID := choosePrimary(e.ParaIDs, threading, durables)
		if paraID == "" {
			continue
		}
		if _, ok := threading[paraID]; !ok {
			if err := m.extended.Add(paraID, "", false); err != nil {
				return err
			}
			threading[paraID] = parts.ThreadRow{}
		}
		durableID, ok := durables[paraID]
		if !ok {
			durableID = m.newHexID()
			if err := m.ids.Add(paraID, durableID); err != nil {
				return err
			}
			durables[paraID] = durableID
		}
		date := ""
		if ts, ok := parseDate(e.Date); ok {
			date = formatUTC(ts)
		}
		if err := m.extensible.AddOrUpdate(durableID, date); err != nil {
			return err
		}
	}
	return nil
}
