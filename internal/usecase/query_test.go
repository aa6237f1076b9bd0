package usecase

import "testing"

func TestNormalizeQuery(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only spaces", input: "   ", want: ""},
		{name: "trims", input: "  camry ", want: "camry"},
		{name: "collapses inner whitespace", input: "Toyota \t  Camry", want: "Toyota Camry"},
		{name: "keeps case", input: "RAV4", want: "RAV4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeQuery(tc.input); got != tc.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestQueryLength(t *testing.T) {
	testCases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},
		{" a ", 1},
		{"ab", 2},
		{"é", 1},
		{"Škoda", 5},
	}

	for _, tc := range testCases {
		if got := QueryLength(tc.input); got != tc.want {
			t.Errorf("QueryLength(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
