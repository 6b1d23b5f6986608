package author

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/pubdb/internal/reference"
)

// Rule identifies which equivalence rule matched a name to a known author.
type Rule int

const (
	NoMatch Rule = iota
	// RuleExact: first and last names equal, case-insensitive.
	RuleExact
	// RuleSwapped: first and last names equal once swapped, case-insensitive.
	RuleSwapped
	// RuleAbbreviated: abbreviated first name ("J.") sharing its initial with
	// the known first name, last names identical.
	RuleAbbreviated
	// RuleAbbreviatedSwapped: RuleAbbreviated with first and last swapped.
	RuleAbbreviatedSwapped
)

var ruleNames = map[Rule]string{
	NoMatch:                "none",
	RuleExact:              "exact",
	RuleSwapped:            "swapped",
	RuleAbbreviated:        "abbreviated",
	RuleAbbreviatedSwapped: "abbreviated-swapped",
}

func (r Rule) String() string {
	return ruleNames[r]
}

// rules lists the equivalence rules in priority order.
var rules = []Rule{RuleExact, RuleSwapped, RuleAbbreviated, RuleAbbreviatedSwapped}

// Satisfies reports whether name n matches author a under rule r.
func (n Name) Satisfies(r Rule, a reference.Author) bool {
	switch r {
	case RuleExact:
		return strings.EqualFold(n.First, a.First) && strings.EqualFold(n.Last, a.Last)
	case RuleSwapped:
		return strings.EqualFold(n.First, a.Last) && strings.EqualFold(n.Last, a.First)
	case RuleAbbreviated:
		return isAbbreviated(n.First) && sameInitial(n.First, a.First) && n.Last == a.Last
	case RuleAbbreviatedSwapped:
		return isAbbreviated(n.Last) && sameInitial(n.Last, a.First) && n.First == a.Last
	}
	return false
}

// Match returns the first rule under which n matches a, or NoMatch.
func (n Name) Match(a reference.Author) Rule {
	for _, r := range rules {
		if n.Satisfies(r, a) {
			return r
		}
	}
	return NoMatch
}

func isAbbreviated(s string) bool {
	return strings.Contains(s, ".")
}

// sameInitial compares the first letters of two names, case-insensitive.
func sameInitial(a, b string) bool {
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	if ra == utf8.RuneError || rb == utf8.RuneError {
		return false
	}
	return unicode.ToLower(ra) == unicode.ToLower(rb)
}
