package parser

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/token"
)

// blockLikeExpr reports whether e is one of the expression forms the
// grammar allows as a statement without a trailing semicolon when
// another statement follows (if/while/for/loop/block), mirroring how a
// brace-terminated expression needs no separator in the source grammar.
func blockLikeExpr(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IfExpr, *ast.WhileExpr, *ast.ForExpr, *ast.LoopExpr, *ast.BlockExpr:
		return true
	}
	return false
}

// parseBlockExpr parses a brace-delimited statement sequence. The final
// statement, if it is an expression with no trailing semicolon, becomes
// the block's tail value; every other statement is discarded for value
// purposes (it still runs for effect).
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	pos := p.cur.Pos
	p.expect(token.LBRACE)

	// Past the opening brace, a nested "Ident { ... }" can never be
	// confused with the enclosing construct's own body, so the
	// struct-literal ban (if any is active from an enclosing condition)
	// does not apply to anything inside this block.
	savedNoStruct := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = savedNoStruct }()

	var stmts []ast.Stmt
	var tail ast.Expr

	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.SEMI {
			sp := p.cur.Pos
			p.advance()
			stmts = append(stmts, &ast.EmptyStmt{Pos: sp})
			continue
		}
		if p.cur.Kind == token.LET {
			stmts = append(stmts, p.parseLetStmt())
			continue
		}

		ep := p.cur.Pos
		expr := p.parseExpr(1)
		if p.cur.Kind == token.SEMI {
			p.advance()
			stmts = append(stmts, &ast.ExprStmt{Expr: expr, HasSemi: true, Pos: ep})
			continue
		}
		if p.cur.Kind == token.RBRACE {
			tail = expr
			break
		}
		if blockLikeExpr(expr) {
			stmts = append(stmts, &ast.ExprStmt{Expr: expr, HasSemi: false, Pos: ep})
			continue
		}
		p.errorf("expected ';' after expression statement, found %s", p.cur.Kind)
		stmts = append(stmts, &ast.ExprStmt{Expr: expr, HasSemi: false, Pos: ep})
	}
	p.expect(token.RBRACE)
	return ast.NewBlockExpr(pos, stmts, tail)
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	pos := p.cur.Pos
	p.advance() // let
	pat := p.parsePattern()
	var ty ast.TypeNode
	if p.cur.Kind == token.COLON {
		p.advance()
		ty = p.parseType()
	}
	var val ast.Expr
	if p.cur.Kind == token.ASSIGN {
		p.advance()
		val = p.parseExpr(1)
	}
	p.expect(token.SEMI)
	return &ast.LetStmt{Pattern: pat, Type: ty, Value: val, Pos: pos}
}
