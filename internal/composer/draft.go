package composer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const paragraphBreak = "\n\n"

// ComposeDraft appends the prompt and the chosen candidate to draft and
// capitalizes the first character of every line of the result.
func ComposeDraft(draft, prompt, candidate string) string {
	var text string
	if draft == "" {
		text = prompt + paragraphBreak + candidate
	} else {
		text = draft + paragraphBreak + prompt + paragraphBreak + candidate
	}
	return CapitalizeLines(text)
}

// CapitalizeLines upper-cases the first character of each "\n"-separated line.
// The rest of each line is untouched and empty lines stay empty.
func CapitalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = capitalizeFirst(line)
	}
	return strings.Join(lines, "\n")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	// Full case mapping: a single rune may expand (ß -> SS).
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}
