package mode

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tedit/internal/config/loader"
	"github.com/dshills/tedit/internal/syntax/lexer"
	"github.com/dshills/tedit/internal/syntax/nfa"
)

// TokenDef is one token class of a Definition.
type TokenDef struct {
	Name    string `toml:"name" yaml:"name"`
	Pattern string `toml:"pattern" yaml:"pattern"`
	Style   string `toml:"style,omitempty" yaml:"style,omitempty"`
}

// Definition is the file form of a mode:
//
//	name = "todo"
//	files = ["*.todo"]
//	skip = ["space"]
//
//	[[tokens]]
//	name = "date"
//	pattern = "\\d\\d\\d\\d-\\d\\d-\\d\\d"
//	style = "fg:yellow bold"
type Definition struct {
	Name   string     `toml:"name" yaml:"name"`
	Word   string     `toml:"word,omitempty" yaml:"word,omitempty"`
	Files  []string   `toml:"files,omitempty" yaml:"files,omitempty"`
	Style  string     `toml:"style,omitempty" yaml:"style,omitempty"`
	Tokens []TokenDef `toml:"tokens" yaml:"tokens"`
	Skip   []string   `toml:"skip,omitempty" yaml:"skip,omitempty"`
}

// ReadDefinition decodes a definition file. The format follows the file
// extension.
func ReadDefinition(path string) (Definition, error) {
	var def Definition
	format := loader.DetectFormat(path)
	if format == loader.FormatUnknown {
		return def, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}
	err = loader.Unmarshal(format, path, data, &def)
	return def, err
}

// Compile builds a Mode. Token kinds are numbered in declaration order.
func (d Definition) Compile() (*Mode, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidMode)
	}
	if len(d.Tokens) == 0 {
		return nil, fmt.Errorf("%w %s: no tokens", ErrInvalidMode, d.Name)
	}

	m := &Mode{
		Name:      d.Name,
		WordChars: d.Word,
		Files:     append([]string(nil), d.Files...),
		Styles:    make(map[nfa.Kind]tcell.Style),
	}
	if m.WordChars == "" {
		m.WordChars = "_"
	}

	var err error
	if m.DefaultStyle, err = ParseStyle(d.Style); err != nil {
		return nil, fmt.Errorf("mode %s: %w", d.Name, err)
	}

	defs := make([]lexer.Def, len(d.Tokens))
	kinds := make(map[string]nfa.Kind, len(d.Tokens))
	for i, t := range d.Tokens {
		if t.Name == "" {
			return nil, fmt.Errorf("%w %s: token %d has no name", ErrInvalidMode, d.Name, i)
		}
		if _, dup := kinds[t.Name]; dup {
			return nil, fmt.Errorf("%w %s: duplicate token %q", ErrInvalidMode, d.Name, t.Name)
		}
		kind := nfa.Kind(i)
		kinds[t.Name] = kind
		defs[i] = lexer.Def{Kind: kind, Name: t.Name, Pattern: t.Pattern}
		if t.Style != "" {
			s, err := ParseStyle(t.Style)
			if err != nil {
				return nil, fmt.Errorf("mode %s token %s: %w", d.Name, t.Name, err)
			}
			m.Styles[kind] = s
		}
	}

	for _, name := range d.Skip {
		k, ok := kinds[name]
		if !ok {
			return nil, fmt.Errorf("%w %s: skip names unknown token %q", ErrInvalidMode, d.Name, name)
		}
		m.Skip = append(m.Skip, k)
	}

	if m.Lexer, err = lexer.New(defs...); err != nil {
		return nil, fmt.Errorf("mode %s: %w", d.Name, err)
	}
	return m, nil
}
