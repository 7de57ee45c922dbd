package domain

import "testing"

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Bonjour", "bonjour"},
		{"trim", "  chat  ", "chat"},
		{"compress spaces", "pomme  de   terre", "pomme de terre"},
		{"diacritics preserved", "Être", "être"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLowerFirst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Absent", "absent"},
		{"absent", "absent"},
		{"Être", "être"},
		{"à", "à"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LowerFirst(tt.input); got != tt.want {
			t.Errorf("LowerFirst(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFoldDiacritics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"être", "etre"},
		{"âge", "age"},
		{"garçon", "garcon"},
		{"œuf", "oeuf"},
		{"no accents", "no accents"},
	}

	for _, tt := range tests {
		if got := FoldDiacritics(tt.input); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
