// Package parser builds a typed AST from a token stream via recursive
// descent with precedence climbing for expressions, recovering from syntax
// errors by synchronizing to the next safe statement boundary.
package parser

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/token"
)

// Error is a single reported syntax error with a boxed, compiler-style
// rendering: a position header, the source line, and a caret under the
// offending column.
type Error struct {
	Line    int
	Column  int
	Message string
	Boxed   string
}

func (e *Error) Error() string { return e.Boxed }

// Parser consumes a complete token slice and produces statements, reporting
// (not necessarily aborting on) each syntax error it recovers from.
type Parser struct {
	source string
	tokens []token.Token
	pos    int
	errors []*Error
}

// New constructs a Parser over a pre-lexed token stream. source is the
// original text, used only to render boxed diagnostics.
func New(source string, tokens []token.Token) *Parser {
	return &Parser{source: source, tokens: tokens}
}

// Parse consumes the full token stream and returns the resulting Program
// along with every syntax error encountered (empty if none). Parsing
// continues past recoverable errors so all of them can be reported in one
// pass; the caller decides whether to evaluate a Program that came back
// alongside errors.
func (p *Parser) Parse() (*ast.Program, []*Error) {
	prog := &ast.Program{}
	for !p.isAtEnd() {
		if p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	return prog, p.errors
}

// ---- token cursor helpers ----

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) isAtEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) check(k token.Kind) bool { return !p.isAtEnd() && p.current().Kind == k }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, message string) (token.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return token.Token{}, p.formatError(message, p.current())
}

func (p *Parser) addError(err error) {
	if e, ok := err.(*Error); ok {
		p.errors = append(p.errors, e)
	}
}

// formatError renders a boxed diagnostic pointing at tok. The first line
// carries the "[line L, col C] ... near 'lexeme'" shape the embedding API
// promises to error callbacks; the source excerpt and caret follow.
func (p *Parser) formatError(message string, tok token.Token) *Error {
	var b strings.Builder
	fmt.Fprintf(&b, "[line %d, col %d] syntax error: %s near '%s'\n", tok.Line, tok.Column, message, tok.Lexeme)
	lines := strings.Split(p.source, "\n")
	if tok.Line >= 1 && tok.Line <= len(lines) {
		srcLine := lines[tok.Line-1]
		fmt.Fprintf(&b, "  %d | %s\n", tok.Line, srcLine)
		gutter := len(fmt.Sprintf("%d", tok.Line))
		pad := strings.Repeat(" ", gutter+3+max0(tok.Column-1))
		fmt.Fprintf(&b, "%s^\n", pad)
	}
	return &Error{Line: tok.Line, Column: tok.Column, Message: message, Boxed: b.String()}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// synchronize discards tokens until the next safe resynchronization point:
// a NEWLINE at the current nesting, or the next statement-starting keyword.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.pos > 0 && p.previous().Kind == token.NEWLINE {
			return
		}
		switch p.current().Kind {
		case token.IF, token.WHILE, token.FOR, token.DEF, token.CLASS,
			token.RETURN, token.TRY, token.RAISE, token.PASS, token.BREAK, token.CONTINUE:
			return
		}
		p.advance()
	}
}

// ---- statements ----

func (p *Parser) parseStatement() ast.Stmt {
	stmt, err := p.statement()
	if err != nil {
		p.addError(err)
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch p.current().Kind {
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.FOR:
		return p.forStatement()
	case token.DEF:
		return p.funcDef()
	case token.CLASS:
		return p.classDef()
	case token.RETURN:
		return p.returnStatement()
	case token.PASS:
		tok := p.advance()
		return p.finishSimple(&ast.Pass{Node: ast.Node{Tok: tok}})
	case token.BREAK:
		tok := p.advance()
		return p.finishSimple(&ast.Break{Node: ast.Node{Tok: tok}})
	case token.CONTINUE:
		tok := p.advance()
		return p.finishSimple(&ast.Continue{Node: ast.Node{Tok: tok}})
	case token.GLOBAL:
		return p.globalStatement()
	case token.NONLOCAL:
		return p.nonlocalStatement()
	case token.TRY:
		return p.tryStatement()
	case token.RAISE:
		return p.raiseStatement()
	default:
		return p.simpleStatementLine()
	}
}

// finishSimple consumes the optional NEWLINE terminator after a
// zero-payload statement like pass/break/continue; ';' and EOF are left
// for the enclosing statement loops.
func (p *Parser) finishSimple(s ast.Stmt) (ast.Stmt, error) {
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return s, nil
}

func (p *Parser) simpleStatementLine() (ast.Stmt, error) {
	tok := p.current()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.check(token.COMMA) {
		expr, err = p.finishBareTuple(expr, tok)
		if err != nil {
			return nil, err
		}
	}
	stmt := &ast.ExprStmt{Node: ast.Node{Tok: tok}, X: expr}
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return stmt, nil
}

// finishBareTuple handles the unparenthesized tuple form "a, b, c" at
// statement level. When the already-parsed expression is an assignment, the
// trailing elements extend its right-hand side ("x = 1, 2" binds x to the
// tuple (1, 2)), otherwise the whole expression becomes a tuple literal.
func (p *Parser) finishBareTuple(first ast.Expr, tok token.Token) (ast.Expr, error) {
	var elems []ast.Expr
	for p.match(token.COMMA) {
		if p.check(token.NEWLINE) || p.check(token.SEMICOLON) || p.isAtEnd() {
			break
		}
		e, err := p.orExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	tuple := func(head ast.Expr) *ast.TupleLiteral {
		return &ast.TupleLiteral{Node: ast.Node{Tok: tok}, Elements: append([]ast.Expr{head}, elems...)}
	}
	switch a := first.(type) {
	case *ast.Assignment:
		a.Value = tuple(a.Value)
		return a, nil
	case *ast.AugAssignment:
		a.Value = tuple(a.Value)
		return a, nil
	default:
		return tuple(first), nil
	}
}

// parseSuite handles the common `: <simple-stmt> NEWLINE | : NEWLINE INDENT
// stmt* DEDENT` shape after a compound-statement header.
func (p *Parser) parseSuite() (*ast.Block, error) {
	if _, err := p.consume(token.COLON, "expected ':'"); err != nil {
		return nil, err
	}
	if p.check(token.NEWLINE) {
		// Blank and comment-only lines before the block also lex to
		// NEWLINE tokens, so skip the whole run before requiring INDENT.
		for p.check(token.NEWLINE) {
			p.advance()
		}
		if _, err := p.consume(token.INDENT, "expected an indented block"); err != nil {
			return nil, err
		}
		var stmts []ast.Stmt
		for !p.check(token.DEDENT) && !p.isAtEnd() {
			if p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
				p.advance()
				continue
			}
			if s := p.parseStatement(); s != nil {
				stmts = append(stmts, s)
			}
		}
		if _, err := p.consume(token.DEDENT, "expected dedent to close block"); err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	}
	// single-line suite: one or more simple statements separated by ';'
	var stmts []ast.Stmt
	for {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if !p.match(token.SEMICOLON) {
			break
		}
		if p.check(token.NEWLINE) || p.isAtEnd() {
			break
		}
	}
	return &ast.Block{Stmts: stmts}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	tok := p.advance()
	var branches []ast.IfBranch
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	branches = append(branches, ast.IfBranch{Cond: cond, Body: body})
	for p.check(token.ELIF) {
		p.advance()
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		b, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Cond: c, Body: b})
	}
	if p.check(token.ELSE) {
		p.advance()
		b, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Cond: nil, Body: b})
	}
	return &ast.If{Node: ast.Node{Tok: tok}, Branches: branches}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	tok := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &ast.While{Node: ast.Node{Tok: tok}, Cond: cond, Body: body}, nil
}

func (p *Parser) forStatement() (ast.Stmt, error) {
	tok := p.advance()
	var targets []string
	for {
		name, err := p.consume(token.IDENT, "expected loop variable name")
		if err != nil {
			return nil, err
		}
		targets = append(targets, name.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.IN, "expected 'in'"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &ast.For{Node: ast.Node{Tok: tok}, Targets: targets, Iter: iter, Body: body}, nil
}

func (p *Parser) paramList() (*ast.Params, error) {
	if _, err := p.consume(token.LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	params := &ast.Params{}
	for !p.check(token.RPAREN) {
		if p.match(token.STARSTAR) {
			name, err := p.consume(token.IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params.KwArgs = name.Lexeme
		} else if p.match(token.STAR) {
			name, err := p.consume(token.IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params.VarArgs = name.Lexeme
		} else {
			name, err := p.consume(token.IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			if p.match(token.ASSIGN) {
				def, err := p.expression()
				if err != nil {
					return nil, err
				}
				params.Optional = append(params.Optional, ast.OptionalParam{Name: name.Lexeme, Default: def})
			} else {
				params.Required = append(params.Required, name.Lexeme)
			}
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) funcDef() (ast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENT, "expected function name")
	if err != nil {
		return nil, err
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Node: ast.Node{Tok: tok}, Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) classDef() (ast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENT, "expected class name")
	if err != nil {
		return nil, err
	}
	super := ""
	if p.match(token.LPAREN) {
		if !p.check(token.RPAREN) {
			s, err := p.consume(token.IDENT, "expected superclass name")
			if err != nil {
				return nil, err
			}
			super = s.Lexeme
		}
		if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.COLON, "expected ':'"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.NEWLINE, "expected newline before class body"); err != nil {
		return nil, err
	}
	for p.check(token.NEWLINE) {
		p.advance()
	}
	if _, err := p.consume(token.INDENT, "expected indented class body"); err != nil {
		return nil, err
	}
	var methods []*ast.FuncDef
	for !p.check(token.DEDENT) && !p.isAtEnd() {
		if p.check(token.NEWLINE) {
			p.advance()
			continue
		}
		if p.check(token.PASS) {
			p.advance()
			if p.check(token.NEWLINE) {
				p.advance()
			}
			continue
		}
		if !p.check(token.DEF) {
			return nil, p.formatError("expected method definition in class body", p.current())
		}
		m, err := p.funcDef()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m.(*ast.FuncDef))
	}
	if _, err := p.consume(token.DEDENT, "expected dedent to close class body"); err != nil {
		return nil, err
	}
	return &ast.ClassDef{Node: ast.Node{Tok: tok}, Name: name.Lexeme, Superclass: super, Methods: methods}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	tok := p.advance()
	var val ast.Expr
	if !p.check(token.NEWLINE) && !p.check(token.SEMICOLON) && !p.isAtEnd() {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.check(token.COMMA) {
			v, err = p.finishBareTuple(v, tok)
			if err != nil {
				return nil, err
			}
		}
		val = v
	}
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return &ast.Return{Node: ast.Node{Tok: tok}, Value: val}, nil
}

func (p *Parser) globalStatement() (ast.Stmt, error) {
	tok := p.advance()
	var names []string
	for {
		n, err := p.consume(token.IDENT, "expected identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, n.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return &ast.Global{Node: ast.Node{Tok: tok}, Names: names}, nil
}

func (p *Parser) nonlocalStatement() (ast.Stmt, error) {
	tok := p.advance()
	var names []string
	for {
		n, err := p.consume(token.IDENT, "expected identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, n.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return &ast.Nonlocal{Node: ast.Node{Tok: tok}, Names: names}, nil
}

func (p *Parser) tryStatement() (ast.Stmt, error) {
	tok := p.advance()
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	t := &ast.Try{Node: ast.Node{Tok: tok}, Body: body}
	for p.check(token.EXCEPT) {
		p.advance()
		clause := ast.ExceptClause{}
		if !p.check(token.COLON) {
			typeName, err := p.consume(token.IDENT, "expected exception type name")
			if err != nil {
				return nil, err
			}
			clause.Type = &typeName.Lexeme
			if p.match(token.AS) {
				asName, err := p.consume(token.IDENT, "expected bound name")
				if err != nil {
					return nil, err
				}
				clause.As = asName.Lexeme
			}
		}
		b, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		clause.Body = b
		t.Excepts = append(t.Excepts, clause)
	}
	if p.check(token.ELSE) {
		p.advance()
		b, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		t.Else = b
	}
	if p.check(token.FINALLY) {
		p.advance()
		b, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		t.Finally = b
	}
	if len(t.Excepts) == 0 && t.Finally == nil {
		return nil, p.formatError("expected 'except' or 'finally' block", p.current())
	}
	return t, nil
}

func (p *Parser) raiseStatement() (ast.Stmt, error) {
	tok := p.advance()
	var val ast.Expr
	if !p.check(token.NEWLINE) && !p.isAtEnd() {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		val = v
	}
	if p.check(token.NEWLINE) {
		p.advance()
	}
	return &ast.Raise{Node: ast.Node{Tok: tok}, Value: val}, nil
}

