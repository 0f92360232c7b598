package comments

import (
	"os"
	"path/filepath"

	"howett.net/plist"
)

// meContact mirrors the fields of Office's MeContact.plist.
type meContact struct {
	Name     string `plist:"Name"`
	Initials string `plist:"Initials"`
}

// systemUser reads the Office identity from the shared group
// container. Missing or unreadable plists yield empty strings.
func systemUser() (string, string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	path := filepath.Join(home, "Library", "Group Containers",
		"UBF8T346G9.Office", "MeContact.plist")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	var contact meContact
	if _, err := plist.Unmarshal(data, &contact); err != nil {
		return "", ""
	}
	return contact.Name, contact.Initials
}
