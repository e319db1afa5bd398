package models

// Generation modes. Greenfield turns replace the workspace with a full
// scaffold; modification turns patch it.
const (
	ModeGreenfield   = "greenfield"
	ModeModification = "modification"
)

// Target platforms.
const (
	PlatformWeb     = "web"
	PlatformMobile  = "mobile"
	PlatformDesktop = "desktop"
)

// SupportedLanguages is the enumerated set of target languages the prompt
// protocol carries idiomatic rules for.
var SupportedLanguages = []string{
	"typescript",
	"javascript",
	"python",
	"go",
	"rust",
	"java",
}

// IsSupportedLanguage reports whether lang is in the enumerated set.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
