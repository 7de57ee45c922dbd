// Package lexique loads a Lexique-383-style tab-separated word-form table
// into an in-memory index for exact-form gender lookups.
//
// The table carries one row per (word form, grammatical category) reading;
// the columns of interest are 'ortho' (the word form, diacritics intact),
// 'cgram' (the category) and 'genre' ('m', 'f', or empty). Lookups are keyed
// by the exact stored form — a query missing its diacritics will not match.
package lexique

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heartmarshall/lexicheck/internal/domain"
	"github.com/heartmarshall/lexicheck/internal/provider"
)

// Lexicon is an in-memory word form → readings index.
type Lexicon struct {
	index map[string][]provider.LexicalEntry
}

// Load reads the lexicon table at path.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer f.Close()

	lex, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", path, err)
	}
	return lex, nil
}

// LoadReader parses a tab-separated lexicon table. The first line is a
// header naming the columns; 'ortho', 'cgram' and 'genre' are required.
func LoadReader(r io.Reader) (*Lexicon, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("lexicon is empty")
	}

	header := strings.Split(scanner.Text(), "\t")
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	orthoIdx, ok := cols["ortho"]
	if !ok {
		return nil, fmt.Errorf("lexicon header missing 'ortho' column")
	}
	cgramIdx, ok := cols["cgram"]
	if !ok {
		return nil, fmt.Errorf("lexicon header missing 'cgram' column")
	}
	genreIdx, ok := cols["genre"]
	if !ok {
		return nil, fmt.Errorf("lexicon header missing 'genre' column")
	}

	index := make(map[string][]provider.LexicalEntry)
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= orthoIdx || len(fields) <= cgramIdx || len(fields) <= genreIdx {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d",
				line, max(orthoIdx, cgramIdx, genreIdx)+1, len(fields))
		}
		ortho := strings.TrimSpace(fields[orthoIdx])
		if ortho == "" {
			continue
		}
		index[ortho] = append(index[ortho], provider.LexicalEntry{
			Category: strings.TrimSpace(fields[cgramIdx]),
			Gender:   strings.TrimSpace(fields[genreIdx]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	return &Lexicon{index: index}, nil
}

// Size returns the number of distinct word forms in the index.
func (l *Lexicon) Size() int { return len(l.index) }

// Lookup returns every reading stored for the exact word form, or
// domain.ErrNotFound when the form is absent.
func (l *Lexicon) Lookup(_ context.Context, word string) ([]provider.LexicalEntry, error) {
	entries, ok := l.index[word]
	if !ok {
		return nil, fmt.Errorf("word %q: %w", word, domain.ErrNotFound)
	}
	return entries, nil
}
