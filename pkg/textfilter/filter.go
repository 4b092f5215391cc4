package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps profanity to family-friendly alternatives. The keys
// double as the filter's word list.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"boobs":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"jesus christ": "jeez",
	"christ":       "crikey",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
}

// ProfanityFilter handles filtering and replacement of profanity in
// narrated prose.
type ProfanityFilter struct {
	words   []string
	regexes map[string]*regexp.Regexp
}

// NewProfanityFilter creates a new profanity filter.
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{
		words:   make([]string, 0, len(replacements)),
		regexes: make(map[string]*regexp.Regexp),
	}

	for word := range replacements {
		pf.words = append(pf.words, word)
	}
	// Longest words first, so compounds and phrases are replaced before
	// the shorter words they contain.
	sort.Slice(pf.words, func(i, j int) bool {
		if len(pf.words[i]) != len(pf.words[j]) {
			return len(pf.words[i]) > len(pf.words[j])
		}
		return pf.words[i] < pf.words[j]
	})

	for _, word := range pf.words {
		// Match simple plurals too ("hells", "bastards").
		pattern := `\b` + regexp.QuoteMeta(word) + `s?\b`
		pf.regexes[word] = regexp.MustCompile(`(?i)` + pattern)
	}

	return pf
}

// FilterText replaces profanity in the input text with family-friendly
// alternatives.
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for _, word := range pf.words {
		regex := pf.regexes[word]
		replacement := replacements[word]
		wordLen := len(word)
		result = regex.ReplaceAllStringFunc(result, func(match string) string {
			rep := replacement
			if len(match) == wordLen+1 {
				// Plural form matched; pluralize the replacement.
				rep += "s"
			}
			return preserveCase(match, rep)
		})
	}
	return result
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	// All uppercase
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}

	// All lowercase
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	// Title case (first letter uppercase, rest lowercase)
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case - try to preserve the pattern character by character
	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)
	replacementRunes := []rune(replacement)

	for i, r := range replacementRunes {
		if i < len(originalRunes) {
			if unicode.IsUpper(originalRunes[i]) {
				result = append(result, unicode.ToUpper(r))
			} else {
				result = append(result, unicode.ToLower(r))
			}
		} else {
			// If replacement is longer, use lowercase for extra characters
			result = append(result, unicode.ToLower(r))
		}
	}

	return string(result)
}

// ContainsProfanity checks if the text contains any profanity
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, word := range pf.words {
		if pf.regexes[word].MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldFilterContent determines if content should be filtered based on rating
func ShouldFilterContent(rating string) bool {
	rating = strings.ToUpper(strings.TrimSpace(rating))
	switch rating {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
