package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var english = display.English.Languages()

// Normalize converts a language code or English language name to its ISO 639-1
// base code. Returns empty string for unrecognized input.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		// Accept full English names ("khmer") the way chat users type them.
		var ok bool
		tag, ok = matchByName(code)
		if !ok {
			return ""
		}
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// DisplayName returns the English display name for a language code, or empty
// string when the code is unrecognized.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if normalized == "" {
		return ""
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return ""
	}
	return english.Name(tag)
}

func matchByName(name string) (language.Tag, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tag := range displayableTags {
		if strings.ToLower(english.Name(tag)) == name {
			return tag, true
		}
	}
	return language.Und, false
}

// displayableTags bounds the name lookup to languages a subtitle workflow
// plausibly encounters; code lookups go through language.Parse and are not
// limited to this set.
var displayableTags = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Japanese,
	language.Korean,
	language.Chinese,
	language.Russian,
	language.Arabic,
	language.Hindi,
	language.Dutch,
	language.Polish,
	language.Swedish,
	language.Thai,
	language.Vietnamese,
	language.Khmer,
}
