package config

import "github.com/lithammer/fuzzysearch/fuzzy"

// Languages is the list of target languages offered by the tool. The list is
// advisory: any non-empty language name is accepted by the translator, these
// are just the names shown by --list-languages.
var Languages = []string{
	"Dutch", "German", "English", "Spanish", "French", "Italian", "Portuguese",
	"Russian", "Chinese (Simplified)", "Chinese (Traditional)", "Japanese",
	"Korean", "Arabic", "Hindi", "Bengali", "Urdu", "Turkish",
	"Polish", "Czech", "Hungarian", "Romanian", "Bulgarian",
	"Greek", "Hebrew", "Thai", "Vietnamese", "Indonesian",
	"Malay", "Tagalog", "Swahili", "Amharic", "Yoruba",
}

// KnownLanguage reports whether name is in the advisory language list.
func KnownLanguage(name string) bool {
	for _, l := range Languages {
		if l == name {
			return true
		}
	}
	return false
}

// ClosestLanguage returns the best fuzzy match for name from the advisory
// list, or an empty string when nothing comes close.
func ClosestLanguage(name string) string {
	matches := fuzzy.RankFindNormalizedFold(name, Languages)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	return best.Target
}
