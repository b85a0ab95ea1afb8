package parser

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/token"
)

// parsePattern parses a destructuring pattern: "_", an optionally-mut
// identifier binding, a tuple pattern, or a struct pattern.
func (p *Parser) parsePattern() ast.Pattern {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.MUT:
		p.advance()
		name, _ := p.expectIdent()
		return ast.NewIdentPattern(pos, name, true)
	case token.LPAREN:
		p.advance()
		var elems []ast.Pattern
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			elems = append(elems, p.parsePattern())
			if p.cur.Kind == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		return ast.NewTuplePattern(pos, elems)
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		if name == "_" {
			return ast.NewWildcardPattern(pos)
		}
		if p.cur.Kind == token.LBRACE {
			return p.parseStructPatternFields(pos, name)
		}
		return ast.NewIdentPattern(pos, name, false)
	default:
		p.errorf("expected a pattern, found %s", p.cur.Kind)
		p.advance()
		return ast.NewWildcardPattern(pos)
	}
}

func (p *Parser) parseStructPatternFields(pos token.Position, name string) ast.Pattern {
	p.advance() // {
	var fields []ast.StructPatternField
	rest := false
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.DOTDOT {
			p.advance()
			rest = true
			break
		}
		fname, _ := p.expectIdent()
		var sub ast.Pattern
		if p.cur.Kind == token.COLON {
			p.advance()
			sub = p.parsePattern()
		}
		fields = append(fields, ast.StructPatternField{Name: fname, Pattern: sub})
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewStructPattern(pos, name, fields, rest)
}
