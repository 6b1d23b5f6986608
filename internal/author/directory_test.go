package author

import (
	"testing"

	"github.com/matsen/pubdb/internal/reference"
)

func TestNameMatch(t *testing.T) {
	known := reference.Author{ID: 1, First: "John", Last: "Doe"}

	tests := []struct {
		input string
		want  Rule
	}{
		{"Doe, John", RuleExact},
		{"doe, JOHN", RuleExact},
		{"John Doe", RuleExact},
		{"John, Doe", RuleSwapped},
		{"Doe, J.", RuleAbbreviated},
		{"J. Doe", RuleAbbreviated},
		{"J., Doe", RuleAbbreviatedSwapped},
		{"Doe, Jane", NoMatch},
		{"Doe, K.", NoMatch},
		{"doe, J.", NoMatch}, // abbreviated rules compare last names exactly
		{"Roe, John", NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseName(tt.input).Match(known)
			if got != tt.want {
				t.Errorf("ParseName(%q).Match() = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirectory_ResolveSameAuthor(t *testing.T) {
	dir := NewDirectory([]reference.Author{
		{ID: 7, First: "John", Last: "Doe"},
	})

	for _, input := range []string{"Doe, John", "John, Doe", "Doe, J.", "J., Doe"} {
		t.Run(input, func(t *testing.T) {
			a, _, ok := dir.Resolve(ParseName(input))
			if !ok {
				t.Fatalf("Resolve(%q) found no author", input)
			}
			if a.ID != 7 {
				t.Errorf("Resolve(%q) = author %d, want 7", input, a.ID)
			}
		})
	}

	if _, _, ok := dir.Resolve(ParseName("Doe, Jane")); ok {
		t.Error("Resolve(Doe, Jane) should not match John Doe")
	}
}

func TestDirectory_RulePriority(t *testing.T) {
	// The abbreviated rule would match author 1 first, but the exact rule on
	// author 2 has priority.
	dir := NewDirectory([]reference.Author{
		{ID: 1, First: "Jack", Last: "Doe"},
		{ID: 2, First: "J.", Last: "Doe"},
	})

	a, rule, ok := dir.Resolve(Name{First: "J.", Last: "Doe"})
	if !ok || a.ID != 2 || rule != RuleExact {
		t.Errorf("Resolve() = (%d, %v, %v), want (2, exact, true)", a.ID, rule, ok)
	}
}

func TestDirectory_FirstAuthorWinsTies(t *testing.T) {
	dir := NewDirectory([]reference.Author{
		{ID: 3, First: "Ann", Last: "Lee"},
		{ID: 4, First: "ann", Last: "lee"},
	})

	a, _, ok := dir.Resolve(Name{First: "ANN", Last: "LEE"})
	if !ok || a.ID != 3 {
		t.Errorf("Resolve() = %d, want 3", a.ID)
	}
}

func TestDirectory_AddMakesAuthorVisible(t *testing.T) {
	dir := NewDirectory(nil)
	n := Name{First: "Jane", Last: "Roe"}

	if _, _, ok := dir.Resolve(n); ok {
		t.Fatal("empty directory should not resolve")
	}

	dir.Add(reference.Author{ID: 9, First: "Jane", Last: "Roe"})
	if dir.Len() != 1 {
		t.Errorf("Len() = %d, want 1", dir.Len())
	}

	a, rule, ok := dir.Resolve(Name{First: "J.", Last: "Roe"})
	if !ok || a.ID != 9 || rule != RuleAbbreviated {
		t.Errorf("Resolve() = (%d, %v, %v), want (9, abbreviated, true)", a.ID, rule, ok)
	}
}

func TestRuleString(t *testing.T) {
	if RuleAbbreviatedSwapped.String() != "abbreviated-swapped" {
		t.Errorf("String() = %q", RuleAbbreviatedSwapped.String())
	}
	if NoMatch.String() != "none" {
		t.Errorf("String() = %q", NoMatch.String())
	}
}
