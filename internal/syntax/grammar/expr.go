package grammar

type exprOp uint8

const (
	opTok exprOp = iota
	opRef
	opSeq
	opAlt
	opStar
	opPlus
	opOpt
)

func (o exprOp) String() string {
	switch o {
	case opTok:
		return "Tok"
	case opRef:
		return "Ref"
	case opSeq:
		return "Seq"
	case opAlt:
		return "Alt"
	case opStar:
		return "Star"
	case opPlus:
		return "Plus"
	case opOpt:
		return "Opt"
	default:
		return "?"
	}
}

// Expr is the right-hand side of a rule. Build it with Tok, Ref, Seq, Alt,
// Star, Plus and Opt.
type Expr struct {
	op    exprOp
	name  string
	items []Expr
}

// Tok matches one token of the named terminal.
func Tok(name string) Expr { return Expr{op: opTok, name: name} }

// Ref matches the named rule.
func Ref(name string) Expr { return Expr{op: opRef, name: name} }

// Seq matches items in order. An empty Seq matches nothing and succeeds.
func Seq(items ...Expr) Expr { return Expr{op: opSeq, items: items} }

// Alt tries items in order and takes the first that matches.
func Alt(items ...Expr) Expr { return Expr{op: opAlt, items: items} }

// Star matches e zero or more times.
func Star(e Expr) Expr { return Expr{op: opStar, items: []Expr{e}} }

// Plus matches e one or more times.
func Plus(e Expr) Expr { return Expr{op: opPlus, items: []Expr{e}} }

// Opt matches e zero or one time.
func Opt(e Expr) Expr { return Expr{op: opOpt, items: []Expr{e}} }

// term is a resolved Expr. sym is a terminal kind for opTok and a rule
// index for opRef.
type term struct {
	op    exprOp
	sym   int
	items []*term
}
