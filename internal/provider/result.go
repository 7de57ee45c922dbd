package provider

// LexicalEntry is one grammatical reading of a word form as reported by the
// lexicon: its category plus the gender that category carries, if any.
type LexicalEntry struct {
	Category string // grammatical category, e.g. "NOM", "VER", "ADJ"
	Gender   string // "m", "f", or empty when the category carries no gender
}
