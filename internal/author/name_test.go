package author

import (
	"reflect"
	"testing"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Name
	}{
		{
			name:  "comma format: Last, First",
			input: "Doe, John",
			want:  Name{First: "John", Last: "Doe"},
		},
		{
			name:  "space format: First Last",
			input: "John Doe",
			want:  Name{First: "John", Last: "Doe"},
		},
		{
			name:  "middle initial stays with first name",
			input: "John M. Doe",
			want:  Name{First: "John M.", Last: "Doe"},
		},
		{
			name:  "only first comma splits",
			input: "Doe, Jr., John",
			want:  Name{First: "Jr., John", Last: "Doe"},
		},
		{
			name:  "single word is last name",
			input: "Plato",
			want:  Name{Last: "Plato"},
		},
		{
			name:  "escaped apostrophe",
			input: `O\'Brien, Pat`,
			want:  Name{First: "Pat", Last: "O'Brien"},
		},
		{
			name:  "surrounding whitespace",
			input: "   Roe ,  Jane  ",
			want:  Name{First: "Jane", Last: "Roe"},
		},
		{
			name:  "empty string",
			input: "",
			want:  Name{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseName(tt.input)
			if got != tt.want {
				t.Errorf("ParseName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Name
	}{
		{
			name:  "two authors",
			input: "Doe, John and Roe, Jane",
			want:  []Name{{First: "John", Last: "Doe"}, {First: "Jane", Last: "Roe"}},
		},
		{
			name:  "line break inside field",
			input: "Doe, John and\n    Jane Roe",
			want:  []Name{{First: "John", Last: "Doe"}, {First: "Jane", Last: "Roe"}},
		},
		{
			name:  "and inside a name is not a separator",
			input: "Anderson, Sandra",
			want:  []Name{{First: "Sandra", Last: "Anderson"}},
		},
		{
			name:  "empty field",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
