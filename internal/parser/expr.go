package parser

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/token"
)

// infixOp describes one infix operator's precedence-climbing entry:
// its AST operator tag, binding power, and associativity.
type infixOp struct {
	op       ast.BinaryOp
	prec     int
	rightAsc bool
}

// infixTable holds the ten infix levels of the Pratt table: assignment
// (level 1, lowest, right-associative) through multiplicative (level 10,
// highest infix binding power);
// unary prefix and postfix/call/cast bind tighter still and are handled
// outside this table by parsePrefix/parsePostfix.
var infixTable = map[token.Kind]infixOp{
	token.ASSIGN:     {ast.BinAssign, 1, true},
	token.PLUS_EQ:    {ast.BinAddAssign, 1, true},
	token.MINUS_EQ:   {ast.BinSubAssign, 1, true},
	token.STAR_EQ:    {ast.BinMulAssign, 1, true},
	token.SLASH_EQ:   {ast.BinDivAssign, 1, true},
	token.PERCENT_EQ: {ast.BinModAssign, 1, true},
	token.AMP_EQ:     {ast.BinAndAssign, 1, true},
	token.PIPE_EQ:    {ast.BinOrAssign, 1, true},
	token.CARET_EQ:   {ast.BinXorAssign, 1, true},
	token.SHL_EQ:     {ast.BinShlAssign, 1, true},
	token.SHR_EQ:     {ast.BinShrAssign, 1, true},

	token.OROR:   {ast.BinLogOr, 2, false},
	token.ANDAND: {ast.BinLogAnd, 3, false},

	token.EQEQ: {ast.BinEq, 4, false},
	token.NE:   {ast.BinNe, 4, false},
	token.LT:   {ast.BinLt, 4, false},
	token.GT:   {ast.BinGt, 4, false},
	token.LE:   {ast.BinLe, 4, false},
	token.GE:   {ast.BinGe, 4, false},

	token.PIPE:  {ast.BinOr, 5, false},
	token.CARET: {ast.BinXor, 6, false},
	token.AMP:   {ast.BinAnd, 7, false},

	token.SHL: {ast.BinShl, 8, false},
	token.SHR: {ast.BinShr, 8, false},

	token.PLUS:  {ast.BinAdd, 9, false},
	token.MINUS: {ast.BinSub, 9, false},

	token.STAR:    {ast.BinMul, 10, false},
	token.SLASH:   {ast.BinDiv, 10, false},
	token.PERCENT: {ast.BinMod, 10, false},
}

// parseExpr parses an expression whose outermost infix operator binds
// at least as tightly as minPrec, via precedence climbing. Note that
// "&&" reaching this loop is unambiguously the infix logical-and:
// parsePrefix (called for every operand, including the first) is the
// only place "&&" is read as a double-reference borrow, so the two
// readings never compete for the same token occurrence.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		info, ok := infixTable[p.cur.Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		pos := p.cur.Pos
		p.advance()
		next := info.prec + 1
		if info.rightAsc {
			next = info.prec
		}
		right := p.parseExpr(next)
		left = ast.NewBinaryExpr(pos, info.op, left, right)
	}
}

// parseExprNoStruct parses an expression with bare struct literals
// disallowed at the top level, used for if/while/for's condition so the
// construct's opening brace is never misread as a struct literal body.
func (p *Parser) parseExprNoStruct(minPrec int) ast.Expr {
	saved := p.noStruct
	p.noStruct = true
	e := p.parseExpr(minPrec)
	p.noStruct = saved
	return e
}

// parsePrefix parses a unary prefix operator chain bottoming out at a
// postfix-decorated primary expression.
func (p *Parser) parsePrefix() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.MINUS:
		p.advance()
		return ast.NewUnaryExpr(pos, ast.UnaryNeg, p.parsePrefix())
	case token.BANG:
		p.advance()
		return ast.NewUnaryExpr(pos, ast.UnaryNot, p.parsePrefix())
	case token.AMP:
		p.advance()
		mut := false
		if p.cur.Kind == token.MUT {
			p.advance()
			mut = true
		}
		op := ast.UnaryRef
		if mut {
			op = ast.UnaryRefMut
		}
		return ast.NewUnaryExpr(pos, op, p.parsePrefix())
	case token.ANDAND:
		// Prefix position: "&&x" is a reference to a reference, not
		// logical-and applied to nothing — the infix reading only ever
		// applies once parseExpr already holds a left operand.
		p.advance()
		mut := false
		if p.cur.Kind == token.MUT {
			p.advance()
			mut = true
		}
		op := ast.UnaryDoubleRef
		if mut {
			op = ast.UnaryDoubleRefMut
		}
		return ast.NewUnaryExpr(pos, op, p.parsePrefix())
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any chain of
// field access, indexing, calls, and "as" casts.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		pos := p.cur.Pos
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			if p.cur.Kind == token.LITERAL && p.cur.Scalar != nil {
				field := p.cur.Text
				p.advance()
				expr = ast.NewFieldAccessExpr(pos, expr, field)
				continue
			}
			field, _ := p.expectIdent()
			expr = ast.NewFieldAccessExpr(pos, expr, field)
		case token.LPAREN:
			saved := p.noStruct
			p.noStruct = false
			p.advance()
			var args []ast.Expr
			for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
				args = append(args, p.parseExpr(1))
				if p.cur.Kind == token.COMMA {
					p.advance()
					continue
				}
				break
			}
			p.expect(token.RPAREN)
			p.noStruct = saved
			expr = ast.NewCallExpr(pos, expr, args)
		case token.LBRACKET:
			saved := p.noStruct
			p.noStruct = false
			p.advance()
			idx := p.parseExpr(1)
			p.expect(token.RBRACKET)
			p.noStruct = saved
			expr = ast.NewIndexExpr(pos, expr, idx)
		case token.AS:
			p.advance()
			ty := p.parseType()
			expr = ast.NewCastExpr(pos, expr, ty)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		if !p.noStruct && p.cur.Kind == token.LBRACE {
			return p.parseStructExprFields(pos, name)
		}
		return ast.NewIdentifier(pos, name)
	case token.LITERAL:
		sc := p.cur.Scalar
		p.advance()
		return ast.NewLiteral(pos, sc)
	case token.LPAREN:
		// "(" is an unambiguous delimiter: a struct literal inside it is
		// never mistaken for a following block, so the ban lifts here —
		// this is the escape hatch a condition uses to contain one.
		saved := p.noStruct
		p.noStruct = false
		p.advance()
		if p.cur.Kind == token.RPAREN {
			p.advance()
			p.noStruct = saved
			return ast.NewTupleExpr(pos, nil)
		}
		first := p.parseExpr(1)
		if p.cur.Kind == token.COMMA {
			elems := []ast.Expr{first}
			for p.cur.Kind == token.COMMA {
				p.advance()
				if p.cur.Kind == token.RPAREN {
					break
				}
				elems = append(elems, p.parseExpr(1))
			}
			p.expect(token.RPAREN)
			p.noStruct = saved
			return ast.NewTupleExpr(pos, elems)
		}
		p.expect(token.RPAREN)
		p.noStruct = saved
		return ast.NewParenExpr(pos, first)
	case token.LBRACKET:
		saved := p.noStruct
		p.noStruct = false
		p.advance()
		if p.cur.Kind == token.RBRACKET {
			p.advance()
			p.noStruct = saved
			return ast.NewArrayExpr(pos, nil, nil, nil)
		}
		first := p.parseExpr(1)
		if p.cur.Kind == token.SEMI {
			p.advance()
			count := p.parseExpr(1)
			p.expect(token.RBRACKET)
			p.noStruct = saved
			return ast.NewArrayExpr(pos, nil, first, count)
		}
		elems := []ast.Expr{first}
		for p.cur.Kind == token.COMMA {
			p.advance()
			if p.cur.Kind == token.RBRACKET {
				break
			}
			elems = append(elems, p.parseExpr(1))
		}
		p.expect(token.RBRACKET)
		p.noStruct = saved
		return ast.NewArrayExpr(pos, elems, nil, nil)
	case token.LBRACE:
		return p.parseBlockExpr()
	case token.IF:
		return p.parseIfExpr()
	case token.WHILE:
		return p.parseWhileExpr()
	case token.FOR:
		return p.parseForExpr()
	case token.LOOP:
		p.advance()
		return ast.NewLoopExpr(pos, p.parseBlockExpr())
	case token.BREAK:
		p.advance()
		var val ast.Expr
		if p.canStartExpr() {
			val = p.parseExpr(1)
		}
		return ast.NewBreakExpr(pos, val)
	case token.CONTINUE:
		p.advance()
		return ast.NewContinueExpr(pos)
	case token.RETURN:
		p.advance()
		var val ast.Expr
		if p.canStartExpr() {
			val = p.parseExpr(1)
		}
		return ast.NewReturnExpr(pos, val)
	default:
		p.errorf("expected an expression, found %s", p.cur.Kind)
		p.advance()
		return ast.NewIdentifier(pos, "<error>")
	}
}

// canStartExpr reports whether cur could begin an expression, used to
// decide whether "break"/"return" carry a value or stand alone.
func (p *Parser) canStartExpr() bool {
	switch p.cur.Kind {
	case token.SEMI, token.RBRACE, token.EOF, token.COMMA, token.RPAREN, token.RBRACKET:
		return false
	}
	return true
}

func (p *Parser) parseIfExpr() *ast.IfExpr {
	pos := p.cur.Pos
	p.advance() // if
	cond := p.parseExprNoStruct(1)
	then := p.parseBlockExpr()
	var els ast.Expr
	if p.cur.Kind == token.ELSE {
		p.advance()
		if p.cur.Kind == token.IF {
			els = p.parseIfExpr()
		} else {
			els = p.parseBlockExpr()
		}
	}
	return ast.NewIfExpr(pos, cond, then, els)
}

func (p *Parser) parseWhileExpr() *ast.WhileExpr {
	pos := p.cur.Pos
	p.advance() // while
	cond := p.parseExprNoStruct(1)
	body := p.parseBlockExpr()
	return ast.NewWhileExpr(pos, cond, body)
}

func (p *Parser) parseForExpr() *ast.ForExpr {
	pos := p.cur.Pos
	p.advance() // for
	pat := p.parsePattern()
	p.expect(token.IN)
	iterable := p.parseExprNoStruct(1)
	body := p.parseBlockExpr()
	return ast.NewForExpr(pos, pat, iterable, body)
}

func (p *Parser) parseStructExprFields(pos token.Position, name string) ast.Expr {
	p.advance() // {
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()
	var fields []ast.StructExprField
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		fname, _ := p.expectIdent()
		var val ast.Expr
		if p.cur.Kind == token.COLON {
			p.advance()
			val = p.parseExpr(1)
		} else {
			val = ast.NewIdentifier(p.cur.Pos, fname)
		}
		fields = append(fields, ast.StructExprField{Name: fname, Value: val})
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewStructExpr(pos, name, fields, nil)
}
