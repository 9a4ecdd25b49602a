package law

import "slices"

// Audience tiers. The first entry is the default.
var audiences = []string{
	"Layperson (in simple terms)",
	"Law Student (with details and concepts)",
	"Legal Professional (technical, with citations)",
}

// Query focuses. The first entry is the default.
var focuses = []string{
	DefaultFocus,
	"Filing Procedure",
	"Key Elements / Ingredients",
	"Punishments / Remedies",
}

// Output languages. The first entry is the default.
var languages = []string{
	English,
	Telugu,
}

// DefaultFocus asks for a general explanation with no emphasis.
const DefaultFocus = "General Explanation"

// Output language names.
const (
	English = "English"
	Telugu  = "Telugu"
)

// DefaultLocale is used for languages without a dedicated locale.
const DefaultLocale = "en-US"

var localeCodes = map[string]string{
	English: "en-US",
	Telugu:  "te-IN",
}

// Audiences returns the audience tiers in display order.
func Audiences() []string { return slices.Clone(audiences) }

// Focuses returns the query focuses in display order.
func Focuses() []string { return slices.Clone(focuses) }

// Languages returns the output languages in display order.
func Languages() []string { return slices.Clone(languages) }

// DefaultAudience returns the audience selected on a fresh session.
func DefaultAudience() string { return audiences[0] }

// IsAudience reports whether s is a known audience tier.
func IsAudience(s string) bool { return slices.Contains(audiences, s) }

// IsFocus reports whether s is a known query focus.
func IsFocus(s string) bool { return slices.Contains(focuses, s) }

// IsLanguage reports whether s is a supported output language.
func IsLanguage(s string) bool { return slices.Contains(languages, s) }

// Locale returns the BCP 47 locale used for speech in the given output
// language, falling back to DefaultLocale.
func Locale(language string) string {
	if code, ok := localeCodes[language]; ok {
		return code
	}
	return DefaultLocale
}
