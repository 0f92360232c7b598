//go:build !darwin && !windows

package comments

// systemUser has no Office identity store to consult on this platform.
func systemUser() (string, string) { return "", "" }
