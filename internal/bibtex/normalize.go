// Package bibtex turns raw BibTeX exports into publication drafts.
package bibtex

import (
	"sort"
	"strings"
)

// accent pairs a LaTeX accent command with the letters it produces.
type accent struct {
	command string            // e.g. `'` for \'e, `c` for \c{c}
	letters map[string]string // base letter -> accented rune
}

// accents lists the supported accent commands. Order is significant only in
// that it fixes the generated rule table, which keeps Normalize deterministic.
var accents = []accent{
	{"'", map[string]string{"E": "É", "e": "é"}},
	{"`", map[string]string{"E": "È", "e": "è", "A": "À", "a": "à"}},
	{"^", map[string]string{"E": "Ê", "e": "ê", "A": "Â", "a": "â", "O": "Ô", "o": "ô", "U": "Û", "u": "û", "I": "Î", "i": "î"}},
	{`"`, map[string]string{"E": "Ë", "e": "ë", "A": "Ä", "a": "ä", "U": "Ü", "u": "ü", "I": "Ï", "i": "ï"}},
	{"~", map[string]string{"O": "Õ", "o": "õ"}},
	{"c", map[string]string{"C": "Ç", "c": "ç"}},
}

// accentedLetters is the set of non-ASCII letters that survive normalization.
const accentedLetters = "ÉéÈèÊêËëÀàÂâÄäÔôÕõÛûÜüÎîÏïÇç"

// allowedPunctuation lists the ASCII punctuation (plus ’) that survives normalization.
const allowedPunctuation = "@,{}=()[]’:!?_-./\\;'\"^"

// Decoded \& and {\string#} are held as private-use marks through the
// allow-list pass, so a literal & or # in the input is still replaced.
const (
	ampMark  = '\uE000'
	hashMark = '\uE001'
)

// replacementRune stands in for every character outside the allow-list.
const replacementRune = '?'

var normalizer = buildNormalizer()

// buildNormalizer expands the accent table into the ordered pattern list
// {\'e}, \'{e}, \'e for every letter, followed by the symbol rules.
func buildNormalizer() *strings.Replacer {
	var pairs []string
	for _, a := range accents {
		for _, base := range sortedKeys(a.letters) {
			out := a.letters[base]
			if a.command == "c" {
				// \c needs a separator before a bare letter.
				pairs = append(pairs,
					`{\c `+base+`}`, out,
					`{\c{`+base+`}}`, out,
					`\c{`+base+`}`, out,
					`\c `+base, out,
				)
				continue
			}
			pairs = append(pairs,
				`{\`+a.command+base+`}`, out,
				`\`+a.command+`{`+base+`}`, out,
				`\`+a.command+base, out,
			)
			if base == "i" {
				// Dotless i is the usual spelling under ^ and ".
				pairs = append(pairs,
					`{\`+a.command+`\i}`, out,
					`\`+a.command+`{\i}`, out,
				)
			}
		}
	}
	pairs = append(pairs,
		`{\string#}`, string(hashMark),
		`\&`, string(ampMark),
	)
	return strings.NewReplacer(pairs...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize rewrites LaTeX accent escapes to Unicode and replaces every
// character outside the allow-list with '?'. It never fails: unsupported
// encodings are lossy.
func Normalize(text string) string {
	text = normalizer.Replace(strings.Map(clearMarks, text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == ampMark:
			b.WriteByte('&')
		case r == hashMark:
			b.WriteByte('#')
		case isAllowed(r):
			b.WriteRune(r)
		default:
			b.WriteRune(replacementRune)
		}
	}
	return b.String()
}

// clearMarks replaces marks already present in the input.
func clearMarks(r rune) rune {
	if r == ampMark || r == hashMark {
		return replacementRune
	}
	return r
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
		return true
	}
	return strings.ContainsRune(accentedLetters, r) ||
		strings.ContainsRune(allowedPunctuation, r)
}
