package lexicon

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Decode parses one lexicon document.
func Decode(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if lex.ID == "" {
		return nil, fmt.Errorf("lexicon is missing an id")
	}
	if len(lex.Defs) == 0 {
		return nil, fmt.Errorf("lexicon %s has no defs", lex.ID)
	}
	return &lex, nil
}

// LoadDir loads every *.json lexicon under dir, recursively. File order
// does not matter; the catalog is keyed by namespace id.
func LoadDir(dir string) ([]*Lexicon, error) {
	var lexicons []*Lexicon
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read lexicon file %s: %w", path, err)
		}
		lex, err := Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		lexicons = append(lexicons, lex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lexicons, nil
}
