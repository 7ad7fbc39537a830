package parser

import (
	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/token"
)

// expression is the top-level entry point. Precedence, loosest first:
// assignment < or < and < not < comparisons < bitwise | ^ & < shifts <
// additive < multiplicative < unary < power < call/index/attribute <
// primary.
func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	left, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if p.check(token.ASSIGN) {
		tok := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		target, err := p.toAssignTarget(left, tok)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Node: ast.Node{Tok: tok}, Target: target, Value: value}, nil
	}
	if augOp, ok := augOps[p.current().Kind]; ok {
		tok := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		target, err := p.toAssignTarget(left, tok)
		if err != nil {
			return nil, err
		}
		return &ast.AugAssignment{Node: ast.Node{Tok: tok}, Op: augOp, Target: target, Value: value}, nil
	}
	return left, nil
}

var augOps = map[token.Kind]token.Kind{
	token.PLUSEQ: token.PLUS, token.MINUSEQ: token.MINUS, token.STAREQ: token.STAR,
	token.STARSTAREQ: token.STARSTAR, token.SLASHEQ: token.SLASH,
	token.SLASHSLASHEQ: token.SLASHSLASH, token.PERCENTEQ: token.PERCENT,
	token.AMPEQ: token.AMP, token.PIPEEQ: token.PIPE, token.CARETEQ: token.CARET,
	token.LSHIFTEQ: token.LSHIFT, token.RSHIFTEQ: token.RSHIFT,
}

// toAssignTarget validates that an assignment/augmented-assignment target is
// one of identifier, index expression, or attribute expression.
func (p *Parser) toAssignTarget(e ast.Expr, tok token.Token) (ast.Expr, error) {
	switch e.(type) {
	case *ast.Identifier, *ast.IndexGet, *ast.AttributeGet:
		return e, nil
	default:
		return nil, p.formatError("invalid assignment target", tok)
	}
}

func (p *Parser) orExpr() (ast.Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.check(token.OR) {
		tok := p.advance()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Node: ast.Node{Tok: tok}, Op: token.OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) andExpr() (ast.Expr, error) {
	left, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.check(token.AND) {
		tok := p.advance()
		right, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Node: ast.Node{Tok: tok}, Op: token.AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) notExpr() (ast.Expr, error) {
	if p.check(token.NOT) {
		tok := p.advance()
		operand, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Node: ast.Node{Tok: tok}, Op: token.NOT, Operand: operand}, nil
	}
	return p.comparison()
}

var comparisonOps = map[token.Kind]bool{
	token.LT: true, token.LTE: true, token.GT: true, token.GTE: true,
	token.EQ: true, token.NEQ: true, token.IN: true,
}

func (p *Parser) comparison() (ast.Expr, error) {
	first, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	var operands []ast.Expr
	var ops []token.Kind
	operands = append(operands, first)
	tok := p.current()
	for {
		op := p.current().Kind
		isNotIn := op == token.NOT && p.peekIs(1, token.IN)
		if !comparisonOps[op] && !isNotIn && !(op == token.IS) {
			break
		}
		if isNotIn {
			p.advance()
			p.advance()
			op = token.NotIn
		} else if op == token.IS {
			p.advance()
			if p.check(token.NOT) {
				p.advance()
				op = token.IsNot
			}
		} else {
			p.advance()
		}
		right, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
		ops = append(ops, op)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return &ast.Comparison{Node: ast.Node{Tok: tok}, Operands: operands, Ops: ops}, nil
}

func (p *Parser) peekIs(offset int, k token.Kind) bool {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return false
	}
	return p.tokens[idx].Kind == k
}

func (p *Parser) bitOr() (ast.Expr, error) {
	left, err := p.bitXor()
	if err != nil {
		return nil, err
	}
	for p.check(token.PIPE) {
		tok := p.advance()
		right, err := p.bitXor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: token.PIPE, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) bitXor() (ast.Expr, error) {
	left, err := p.bitAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.CARET) {
		tok := p.advance()
		right, err := p.bitAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: token.CARET, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) bitAnd() (ast.Expr, error) {
	left, err := p.shift()
	if err != nil {
		return nil, err
	}
	for p.check(token.AMP) {
		tok := p.advance()
		right, err := p.shift()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: token.AMP, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) shift() (ast.Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(token.LSHIFT) || p.check(token.RSHIFT) {
		tok := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: tok.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) additive() (ast.Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		tok := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: tok.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.SLASHSLASH) || p.check(token.PERCENT) {
		tok := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Node: ast.Node{Tok: tok}, Op: tok.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.check(token.PLUS) || p.check(token.MINUS) || p.check(token.TILDE) {
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Node: ast.Node{Tok: tok}, Op: tok.Kind, Operand: operand}, nil
	}
	return p.power()
}

func (p *Parser) power() (ast.Expr, error) {
	left, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.check(token.STARSTAR) {
		tok := p.advance()
		right, err := p.unary() // right-associative: binds another unary/power chain
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Node: ast.Node{Tok: tok}, Op: token.STARSTAR, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.LPAREN):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.check(token.DOT):
			tok := p.advance()
			name, err := p.consume(token.IDENT, "expected attribute name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.AttributeGet{Node: ast.Node{Tok: tok}, Receiver: expr, Name: name.Lexeme}
		case p.check(token.LBRACKET):
			expr, err = p.finishIndexOrSlice(expr)
			if err != nil {
				return nil, err
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	tok := p.advance() // '('
	call := &ast.Call{Node: ast.Node{Tok: tok}, Callee: callee}
	for !p.check(token.RPAREN) {
		if p.check(token.IDENT) && p.peekIs(1, token.ASSIGN) {
			name := p.advance()
			p.advance() // '='
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			call.KwArgs = append(call.KwArgs, ast.KwArg{Name: name.Lexeme, Value: v})
		} else {
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) finishIndexOrSlice(receiver ast.Expr) (ast.Expr, error) {
	tok := p.advance() // '['
	var start, stop, step ast.Expr
	var err error
	isSlice := false

	if !p.check(token.COLON) {
		start, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if p.check(token.COLON) {
		isSlice = true
		p.advance()
		if !p.check(token.COLON) && !p.check(token.RBRACKET) {
			stop, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		if p.check(token.COLON) {
			p.advance()
			if !p.check(token.RBRACKET) {
				step, err = p.expression()
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']'"); err != nil {
		return nil, err
	}
	if isSlice {
		return &ast.Slice{Node: ast.Node{Tok: tok}, Receiver: receiver, Start: start, Stop: stop, Step: step}, nil
	}
	return &ast.IndexGet{Node: ast.Node{Tok: tok}, Receiver: receiver, Index: start}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.current()
	switch tok.Kind {
	case token.INT:
		p.advance()
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: tok.IntValue}, nil
	case token.FLOAT:
		p.advance()
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: tok.FloatValue}, nil
	case token.STRING:
		p.advance()
		s := tok.StringValue
		for p.check(token.STRING) {
			s += p.advance().StringValue
		}
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: s}, nil
	case token.FSTRING:
		p.advance()
		return p.convertFString(tok)
	case token.TRUE:
		p.advance()
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: false}, nil
	case token.NONE:
		p.advance()
		return &ast.Literal{Node: ast.Node{Tok: tok}, Value: nil}, nil
	case token.IDENT:
		if tok.Lexeme == "super" && p.peekIs(1, token.LPAREN) {
			return p.superLookup()
		}
		p.advance()
		return &ast.Identifier{Node: ast.Node{Tok: tok}, Name: tok.Lexeme}, nil
	case token.LAMBDA:
		return p.lambda()
	case token.LPAREN:
		return p.parenOrTuple()
	case token.LBRACKET:
		return p.listOrComprehension()
	case token.LBRACE:
		return p.setOrDictOrComprehension()
	default:
		return nil, p.formatError("expected expression", tok)
	}
}

func (p *Parser) superLookup() (ast.Expr, error) {
	tok := p.advance() // 'super' ident
	if _, err := p.consume(token.LPAREN, "expected '(' after 'super'"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after 'super('"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.DOT, "expected '.' after 'super()'"); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENT, "expected method name after 'super().'")
	if err != nil {
		return nil, err
	}
	return &ast.SuperLookup{Node: ast.Node{Tok: tok}, Method: name.Lexeme}, nil
}

func (p *Parser) lambda() (ast.Expr, error) {
	tok := p.advance()
	params := &ast.Params{}
	for !p.check(token.COLON) {
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
	if _, err := p.consume(token.COLON, "expected ':' after lambda parameters"); err != nil {
		return nil, err
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Node: ast.Node{Tok: tok}, Params: params, Body: body}, nil
}

func (p *Parser) parenOrTuple() (ast.Expr, error) {
	tok := p.advance()
	if p.check(token.RPAREN) {
		p.advance()
		return &ast.TupleLiteral{Node: ast.Node{Tok: tok}}, nil
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.check(token.COMMA) {
		elems := []ast.Expr{first}
		for p.match(token.COMMA) {
			if p.check(token.RPAREN) {
				break
			}
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
			return nil, err
		}
		return &ast.TupleLiteral{Node: ast.Node{Tok: tok}, Elements: elems}, nil
	}
	if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) forClauses() ([]ast.ForClause, error) {
	var clauses []ast.ForClause
	for p.check(token.FOR) {
		p.advance()
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
		iter, err := p.orExpr()
		if err != nil {
			return nil, err
		}
		clause := ast.ForClause{Targets: targets, Iter: iter}
		for p.check(token.IF) {
			p.advance()
			cond, err := p.orExpr()
			if err != nil {
				return nil, err
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func (p *Parser) listOrComprehension() (ast.Expr, error) {
	tok := p.advance()
	if p.check(token.RBRACKET) {
		p.advance()
		return &ast.ListLiteral{Node: ast.Node{Tok: tok}}, nil
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.check(token.FOR) {
		clauses, err := p.forClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RBRACKET, "expected ']'"); err != nil {
			return nil, err
		}
		return &ast.Comprehension{Node: ast.Node{Tok: tok}, Kind: ast.ListComp, Element: first, Clauses: clauses}, nil
	}
	elems := []ast.Expr{first}
	for p.match(token.COMMA) {
		if p.check(token.RBRACKET) {
			break
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.consume(token.RBRACKET, "expected ']'"); err != nil {
		return nil, err
	}
	return &ast.ListLiteral{Node: ast.Node{Tok: tok}, Elements: elems}, nil
}

func (p *Parser) setOrDictOrComprehension() (ast.Expr, error) {
	tok := p.advance()
	if p.check(token.RBRACE) {
		p.advance()
		return &ast.DictLiteral{Node: ast.Node{Tok: tok}}, nil
	}
	firstKey, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.check(token.COLON) {
		p.advance()
		firstVal, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.check(token.FOR) {
			clauses, err := p.forClauses()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACE, "expected '}'"); err != nil {
				return nil, err
			}
			return &ast.Comprehension{Node: ast.Node{Tok: tok}, Kind: ast.DictComp, Element: firstKey, Value: firstVal, Clauses: clauses}, nil
		}
		entries := []ast.DictEntry{{Key: firstKey, Value: firstVal}}
		for p.match(token.COMMA) {
			if p.check(token.RBRACE) {
				break
			}
			k, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON, "expected ':' in dict literal"); err != nil {
				return nil, err
			}
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.DictEntry{Key: k, Value: v})
		}
		if _, err := p.consume(token.RBRACE, "expected '}'"); err != nil {
			return nil, err
		}
		return &ast.DictLiteral{Node: ast.Node{Tok: tok}, Entries: entries}, nil
	}
	if p.check(token.FOR) {
		clauses, err := p.forClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RBRACE, "expected '}'"); err != nil {
			return nil, err
		}
		return &ast.Comprehension{Node: ast.Node{Tok: tok}, Kind: ast.SetComp, Element: firstKey, Clauses: clauses}, nil
	}
	elems := []ast.Expr{firstKey}
	for p.match(token.COMMA) {
		if p.check(token.RBRACE) {
			break
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.consume(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return &ast.SetLiteral{Node: ast.Node{Tok: tok}, Elements: elems}, nil
}

// convertFString recursively parses each embedded-expression fragment's
// token slice (already lexed by the Lexer's f-string handling) into an
// Expr, producing the evaluator-facing ast.FString node.
func (p *Parser) convertFString(tok token.Token) (ast.Expr, error) {
	fs := &ast.FString{Node: ast.Node{Tok: tok}}
	for _, part := range tok.FStringParts {
		if !part.IsExpr {
			fs.Parts = append(fs.Parts, ast.FStringPart{Text: part.Text})
			continue
		}
		sub := New("", part.Expr)
		expr, err := sub.expression()
		if err != nil {
			return nil, err
		}
		fs.Parts = append(fs.Parts, ast.FStringPart{IsExpr: true, Expr: expr, Spec: part.Spec})
	}
	return fs, nil
}
