// Package textcheck holds the text-side guards: content canonicalization
// for dedupe, obfuscation-resistant profanity matching, and link spam
// detection.
package textcheck

import (
	"strings"
	"unicode"
)

// Canonicalize reduces submitted text to a comparable form: lowercase,
// letters/digits/whitespace only, single spaces, trimmed. Two inputs that
// canonicalize equal are treated as the same content by the dedupe check.
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// leetMap substitutes the common digit/symbol stand-ins for letters.
var leetMap = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a', '5': 's',
	'7': 't', '8': 'b', '9': 'g',
	'@': 'a', '$': 's', '!': 'i', '+': 't', '|': 'i',
	'(': 'c', '<': 'c',
}

// accentFold maps the accented letters seen in evasion attempts onto
// their base letter. Deliberately small; full Unicode folding is not the
// goal.
var accentFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y',
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
		return true
	}
	return false
}

// normalize runs the evasion-stripping pipeline over a whole string:
// lowercase, drop zero-width characters, drop the punctuation used to
// split words (. - _ * #), fold accents, substitute leet characters,
// stitch single-letter spacing back together, and cap repeated letters
// at two.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if isInvisible(r) {
			continue
		}
		switch r {
		case '.', '-', '_', '*', '#':
			continue
		}
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if sub, ok := leetMap[r]; ok {
			r = sub
		}
		b.WriteRune(r)
	}
	return collapseRepeats(joinSpacedLetters(b.String()), 2)
}

// joinSpacedLetters merges runs of two or more single-character words so
// "f u c k" style spacing collapses into one word.
func joinSpacedLetters(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); {
		j := i
		for j < len(fields) && len([]rune(fields[j])) == 1 {
			j++
		}
		if j-i >= 2 {
			out = append(out, strings.Join(fields[i:j], ""))
			i = j
			continue
		}
		out = append(out, fields[i])
		i++
	}
	return strings.Join(out, " ")
}

// collapseRepeats caps runs of the same rune at max occurrences.
func collapseRepeats(s string, max int) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run <= max {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isTokenRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune("@$!+|(<'", r)
}

// tokenize splits a string into word-like runs of letters, digits and
// the symbols that commonly stand in for letters.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isTokenRune(r)
	})
}

// letterStrict strips everything but letters and flattens repeated runs
// to a single occurrence, giving the loosest comparable form of a
// candidate.
func letterStrict(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return collapseRepeats(b.String(), 1)
}

const (
	maxWindowTokens = 6
	maxWindowLen    = 20
)

// candidates builds the set of strings the profanity matcher inspects:
// raw tokens, normalized tokens, short windows of consecutive normalized
// tokens (to catch spacing and punctuation insertion), and the fully
// concatenated normalized text, each also in a letter-strict and an
// l-to-i look-alike variant.
func candidates(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	add := func(c string) {
		if c == "" {
			return
		}
		set[c] = struct{}{}
		if ls := letterStrict(c); ls != "" {
			set[ls] = struct{}{}
		}
		if li := strings.ReplaceAll(c, "l", "i"); li != c {
			set[li] = struct{}{}
		}
	}

	for _, t := range tokenize(raw) {
		add(t)
	}

	norm := normalize(raw)
	normTokens := tokenize(norm)
	for _, t := range normTokens {
		add(t)
	}
	for i := range normTokens {
		for n := 2; n <= maxWindowTokens && i+n <= len(normTokens); n++ {
			joined := strings.Join(normTokens[i:i+n], "")
			if len(joined) > maxWindowLen {
				break
			}
			add(joined)
		}
	}
	add(strings.Join(normTokens, ""))

	return set
}
