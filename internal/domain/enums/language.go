package enums

import "strings"

type Language string

const (
	LanguageBangla  Language = "bangla"
	LanguageHindi   Language = "hindi"
	LanguageEnglish Language = "english"
	LanguageUnset   Language = ""
)

func ParseLanguage(raw string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LanguageBangla:
		return LanguageBangla, true
	case LanguageHindi:
		return LanguageHindi, true
	case LanguageEnglish:
		return LanguageEnglish, true
	default:
		return LanguageUnset, false
	}
}

// OrDefault falls back to English when the actor never selected a language.
func (l Language) OrDefault() Language {
	if l == LanguageUnset {
		return LanguageEnglish
	}
	return l
}
