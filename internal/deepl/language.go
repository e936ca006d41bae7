package deepl

import (
	"fmt"
	"strings"
)

// Language is a DeepL language code as sent on the wire.
type Language string

const (
	German     Language = "de"
	Spanish    Language = "es"
	English    Language = "en"
	French     Language = "fr"
	Italian    Language = "it"
	Japanese   Language = "ja"
	Dutch      Language = "nl"
	Portuguese Language = "pt-br"
	Russian    Language = "ru"
)

var languages = map[string]Language{
	"de":    German,
	"es":    Spanish,
	"en":    English,
	"fr":    French,
	"it":    Italian,
	"ja":    Japanese,
	"nl":    Dutch,
	"pt":    Portuguese,
	"pt-br": Portuguese,
	"ru":    Russian,
}

// ParseLanguage accepts a case-insensitive language code. "pt" is an alias
// for "pt-br".
func ParseLanguage(s string) (Language, error) {
	if l, ok := languages[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

func (l Language) String() string { return string(l) }

// Base drops the regional variant, e.g. "pt-br" becomes "pt". Glossaries
// are registered per base language.
func (l Language) Base() string {
	code, _, _ := strings.Cut(string(l), "-")
	return code
}

// Formality controls the register of the translation.
type Formality int

const (
	FormalityDefault Formality = iota
	FormalityFormal
	FormalityInformal
)

// ParseFormality accepts "default", "formal" or "informal". An empty string
// is the default.
func ParseFormality(s string) (Formality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return FormalityDefault, nil
	case "formal":
		return FormalityFormal, nil
	case "informal":
		return FormalityInformal, nil
	}
	return FormalityDefault, fmt.Errorf("unsupported formality %q", s)
}

// Param returns the value of the formality request parameter.
func (f Formality) Param() string {
	switch f {
	case FormalityFormal:
		return "prefer_more"
	case FormalityInformal:
		return "prefer_less"
	}
	return "default"
}

func (f Formality) String() string {
	switch f {
	case FormalityFormal:
		return "formal"
	case FormalityInformal:
		return "informal"
	}
	return "default"
}
