package ast

import "github.com/aledsdavies/pyscript/internal/token"

// Terse node constructors, handy for hand-written tests, mirroring the
// builder-helper idiom of constructing AST fixtures without a parser.

func Num(tok token.Token, v interface{}) *Literal { return &Literal{Node{tok}, v} }

func Str(tok token.Token, v string) *Literal { return &Literal{Node{tok}, v} }

func Bool(tok token.Token, v bool) *Literal { return &Literal{Node{tok}, v} }

func NoneLit(tok token.Token) *Literal { return &Literal{Node{tok}, nil} }

func Id(tok token.Token, name string) *Identifier { return &Identifier{Node{tok}, name} }

func Bin(tok token.Token, op token.Kind, l, r Expr) *Binary {
	return &Binary{Node{tok}, op, l, r}
}

func Call1(tok token.Token, callee Expr, args ...Expr) *Call {
	return &Call{Node{tok}, callee, args, nil}
}

func ExprStatement(tok token.Token, x Expr) *ExprStmt { return &ExprStmt{Node{tok}, x} }
