package comments

import "golang.org/x/sys/windows/registry"

var userInfoKeys = []string{
	`Software\Microsoft\Office\Common\UserInfo`,
	`Software\Microsoft\Office\16.0\Common\UserInfo`,
}

// systemUser reads the Office identity from the per-user registry
// hive. Missing keys yield empty strings.
func systemUser() (string, string) {
	for _, path := range userInfoKeys {
		k, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		name, _, nameErr := k.GetStringValue("UserName")
		initials, _, _ := k.GetStringValue("UserInitials")
		k.Close()
		if nameErr == nil && name != "" {
			return name, initials
		}
	}
	return "", ""
}
