package mode

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tedit/internal/syntax/grammar"
	"github.com/dshills/tedit/internal/syntax/nfa"
)

var textMode = Definition{
	Name:  "text",
	Files: []string{"*.txt", "*.md"},
	Tokens: []TokenDef{
		{Name: "word", Pattern: `\w+`},
		{Name: "space", Pattern: `\s+`},
		{Name: "newline", Pattern: `\n`},
		{Name: "punct", Pattern: `[^\w\s]`},
	},
	Skip: []string{"space", "newline"},
}

var sourceMode = Definition{
	Name:  "source",
	Files: []string{"*.c", "*.h", "*.cc", "*.cpp", "*.hpp"},
	Tokens: []TokenDef{
		{Name: "comment", Pattern: `//[^\n]*`, Style: "fg:gray italic"},
		{Name: "block-comment", Pattern: `/\*([^*]|\*+[^*/])*\*+/`, Style: "fg:gray italic"},
		{Name: "string", Pattern: `"([^"\\\n]|\\.)*"`, Style: "fg:green"},
		{Name: "char", Pattern: `'([^'\\\n]|\\.)+'`, Style: "fg:green"},
		{Name: "number", Pattern: `(0[xX][0-9a-fA-F]+)|(\d+(\.\d+)?([eE][+-]?\d+)?)`, Style: "fg:fuchsia"},
		{Name: "keyword", Pattern: `if|else|for|while|do|return|switch|case|default|break|continue|struct|enum|const|static`, Style: "fg:yellow bold"},
		{Name: "ident", Pattern: `[a-zA-Z_]\w*`},
		{Name: "space", Pattern: `\s+`},
		{Name: "newline", Pattern: `\n`},
		{Name: "punct", Pattern: `[^\w\s]`},
	},
	Skip: []string{"space", "newline", "comment", "block-comment"},
}

type terminal struct {
	name, pattern, style string
}

type rule struct {
	name string
	expr grammar.Expr
}

// grammarMode builds a mode whose lexer comes from a grammar.
func grammarMode(name, word string, files []string, terms []terminal, rules []rule, start string, skip ...string) (*Mode, error) {
	b := grammar.NewBuilder()
	for _, t := range terms {
		if err := b.Terminal(t.name, t.pattern); err != nil {
			return nil, err
		}
	}
	for _, r := range rules {
		if err := b.Rule(r.name, r.expr); err != nil {
			return nil, err
		}
	}
	b.Start(start)
	b.Skip(skip...)
	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("mode %s: %w", name, err)
	}

	m := &Mode{
		Name:      name,
		WordChars: word,
		Files:     files,
		Lexer:     g.Lexer(),
		Grammar:   g,
		Skip:      g.Skip(),
		Styles:    make(map[nfa.Kind]tcell.Style),
	}
	for i, t := range terms {
		if t.style == "" {
			continue
		}
		s, err := ParseStyle(t.style)
		if err != nil {
			return nil, fmt.Errorf("mode %s token %s: %w", name, t.name, err)
		}
		m.Styles[nfa.Kind(i)] = s
	}
	return m, nil
}

// TodoMode parses todo lists:
//
//	# comment
//	2024-01-05 [Work] [Home] "optional note"
//	x-x-x 09:30:00 [Someday]
//
// Unknown date or time fields are written as x.
func TodoMode() (*Mode, error) {
	terms := []terminal{
		{"Comment", `# [^\r\n]+`, "fg:gray"},
		{"Name", `\[[^\[\]]+\]`, "fg:aqua bold"},
		{"Date", `(x|(\d\d\d\d))-(x|(\d\d))-(x|(\d\d)) ((x|(\d\d)):(x|(\d\d)):(x|(\d\d)))?`, "fg:yellow"},
		{"String", `"[^"]*"`, "fg:green"},
		{"Newline", `\n`, ""},
		{"Space", `\s+`, ""},
	}
	rules := []rule{
		{"file", grammar.Star(grammar.Alt(grammar.Ref("entry"), grammar.Tok("Comment"), grammar.Tok("Newline")))},
		{"entry", grammar.Seq(
			grammar.Tok("Date"),
			grammar.Plus(grammar.Tok("Name")),
			grammar.Opt(grammar.Tok("String")),
			grammar.Tok("Newline"),
		)},
	}
	return grammarMode("todo", "_-", []string{"*.todo"}, terms, rules, "file", "Space")
}

// LedgerMode parses account declarations and transactions:
//
//	account Expenses:Food
//	  description groceries and eating out
//	  alias food
//
//	2024/01/05 weekly shop
//	  Expenses:Food  42.50
//	  Assets:Checking
func LedgerMode() (*Mode, error) {
	terms := []terminal{
		{"Comment", `[#;][^\n]*`, "fg:gray"},
		{"Date", `\d\d\d\d/\d\d?/\d\d?`, "fg:yellow"},
		{"Account", `account`, "fg:aqua bold"},
		{"Directive", `description|alias`, "fg:aqua"},
		{"Amount", `-?\d+(\.\d+)?`, "fg:fuchsia"},
		{"Name", `[^\s\n#;]+`, ""},
		{"Newline", `\n`, ""},
		{"Space", `\s+`, ""},
	}
	words := grammar.Plus(grammar.Alt(grammar.Tok("Name"), grammar.Tok("Amount"), grammar.Tok("Directive")))
	rules := []rule{
		{"file", grammar.Star(grammar.Alt(
			grammar.Ref("account"),
			grammar.Ref("transaction"),
			grammar.Tok("Newline"),
		))},
		{"account", grammar.Seq(
			grammar.Tok("Account"), grammar.Tok("Name"), grammar.Tok("Newline"),
			grammar.Star(grammar.Ref("account-info")),
		)},
		{"account-info", grammar.Seq(grammar.Tok("Directive"), words, grammar.Tok("Newline"))},
		{"transaction", grammar.Seq(
			grammar.Tok("Date"), words, grammar.Tok("Newline"),
			grammar.Plus(grammar.Ref("posting")),
		)},
		{"posting", grammar.Seq(grammar.Tok("Name"), grammar.Opt(grammar.Tok("Amount")), grammar.Tok("Newline"))},
	}
	return grammarMode("ledger", "_:", []string{"*.ledger", "*.journal"}, terms, rules, "file", "Space", "Comment")
}

// RegisterBuiltins adds text, source, todo and ledger. Modes that fail to
// build are logged and skipped; the first error is returned.
func (r *Registry) RegisterBuiltins() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	keep(r.Register(textMode))
	keep(r.Register(sourceMode))
	for _, build := range []func() (*Mode, error){TodoMode, LedgerMode} {
		m, err := build()
		if err != nil {
			r.log.Warn("builtin mode: %v", err)
			keep(err)
			continue
		}
		keep(r.Add(m))
	}
	return first
}
