package config

import (
	"os"
)

type Config struct {
	// AuthorDoc names a document whose people registry supplies the
	// default commenting identity.
	AuthorDoc string
	Author    string
	Initials  string
}

func Load() Config {
	return Config{
		AuthorDoc: getenv("DOCX_COMMENTS_AUTHOR_DOCX", ""),
		Author:    getenv("DOCX_COMMENTS_AUTHOR", ""),
		Initials:  getenv("DOCX_COMMENTS_INITIALS", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
