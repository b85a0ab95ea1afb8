// Package parser builds an *ast.File from a token stream using
// recursive descent for items/statements/patterns/types and precedence
// climbing (a Pratt parser) for expressions, following the teacher's
// yparse package shape but generalized to the expression-oriented
// grammar: almost everything here is an Expr, and if/while/for/loop/
// block all nest as expressions rather than only as statements.
package parser

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/lexer"
	"github.com/gmofishsauce/emberc/internal/token"
)

// Parser holds one token of lookahead (cur) over a Lexer and reports
// syntax errors to a diag.Sink instead of aborting: a malformed
// construct is skipped past and parsing resumes at the next item or
// statement boundary, the same "collect, don't abort" policy the lexer
// and analyzer follow.
type Parser struct {
	lx   *lexer.Lexer
	sink *diag.Sink
	cur  token.Token

	// noStruct forbids a bare "Ident { ... }" from being parsed as a
	// struct literal; set while parsing the condition of if/while/for so
	// that the opening brace of the loop/if body is never swallowed as a
	// struct literal's fields.
	noStruct bool
}

// New returns a Parser positioned on the first token of lx.
func New(lx *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{lx: lx, sink: sink}
	p.advance()
	return p
}

// advance consumes the current token and loads the next one, silently
// absorbing any ERROR tokens the lexer produces along the way by
// reporting each as a Lexical diagnostic and continuing the scan.
func (p *Parser) advance() {
	for {
		tk := p.lx.Next()
		if tk.Kind == token.ERROR {
			p.sink.Report(diag.Lexical, tk.Pos, "%s", tk.ErrText)
			continue
		}
		p.cur = tk
		return
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.sink.Report(diag.Syntax, p.cur.Pos, format, args...)
}

// expect consumes cur if it has kind k, reporting a diagnostic and
// leaving cur in place otherwise.
func (p *Parser) expect(k token.Kind) bool {
	if p.cur.Kind == k {
		p.advance()
		return true
	}
	p.errorf("expected %s, found %s", k, p.cur.Kind)
	return false
}

func (p *Parser) expectIdent() (string, bool) {
	if p.cur.Kind != token.IDENT {
		p.errorf("expected identifier, found %s", p.cur.Kind)
		return "", false
	}
	name := p.cur.Text
	p.advance()
	return name, true
}

// Parse consumes the entire token stream and returns the translation
// unit's item list.
func (p *Parser) Parse() *ast.File {
	f := &ast.File{}
	for p.cur.Kind != token.EOF {
		item := p.parseItem()
		if item != nil {
			f.Items = append(f.Items, item)
		}
	}
	return f
}

func (p *Parser) parseItem() ast.Item {
	switch p.cur.Kind {
	case token.FN:
		return p.parseFunction()
	case token.STRUCT:
		return p.parseStructDecl()
	case token.CONST:
		return p.parseConstItem()
	default:
		p.errorf("expected an item (fn, struct or const), found %s", p.cur.Kind)
		p.advance()
		return nil
	}
}

func (p *Parser) parseFunction() *ast.Function {
	pos := p.cur.Pos
	p.advance() // fn
	name, _ := p.expectIdent()
	p.expect(token.LPAREN)
	var params []ast.Param
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		pp := p.cur.Pos
		pname, _ := p.expectIdent()
		p.expect(token.COLON)
		pty := p.parseType()
		params = append(params, ast.Param{Name: pname, Type: pty, Pos: pp})
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	var ret ast.TypeNode
	if p.cur.Kind == token.ARROW {
		p.advance()
		ret = p.parseType()
	}
	body := p.parseBlockExpr()
	return &ast.Function{Name: name, Params: params, ReturnType: ret, Body: body, Pos: pos}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.cur.Pos
	p.advance() // struct
	name, _ := p.expectIdent()
	switch p.cur.Kind {
	case token.LBRACE:
		p.advance()
		var fields []ast.FieldDecl
		for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
			fp := p.cur.Pos
			fname, _ := p.expectIdent()
			p.expect(token.COLON)
			fty := p.parseType()
			fields = append(fields, ast.FieldDecl{Name: fname, Type: fty, Pos: fp})
			if p.cur.Kind == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACE)
		return &ast.StructDecl{Name: name, Shape: ast.NamedStruct, Fields: fields, Pos: pos}
	case token.LPAREN:
		p.advance()
		var elems []ast.TypeNode
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseType())
			if p.cur.Kind == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		p.expect(token.SEMI)
		return &ast.StructDecl{Name: name, Shape: ast.TupleStructShape, TupleTypes: elems, Pos: pos}
	default:
		p.expect(token.SEMI)
		return &ast.StructDecl{Name: name, Shape: ast.UnitStruct, Pos: pos}
	}
}

func (p *Parser) parseConstItem() *ast.ConstItem {
	pos := p.cur.Pos
	p.advance() // const
	name, _ := p.expectIdent()
	p.expect(token.COLON)
	ty := p.parseType()
	p.expect(token.ASSIGN)
	val := p.parseExpr(1)
	p.expect(token.SEMI)
	return &ast.ConstItem{Name: name, Type: ty, Value: val, Pos: pos}
}

// parseType parses a type annotation: identifiers, tuples, references
// and arrays.
func (p *Parser) parseType() ast.TypeNode {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.AMP:
		p.advance()
		mut := false
		if p.cur.Kind == token.MUT {
			p.advance()
			mut = true
		}
		return ast.NewReferenceType(pos, mut, p.parseType())
	case token.ANDAND:
		// "&&T" / "&&mut T": a reference to a reference, the prefix-type
		// reading of "&&" — see the prefix-vs-infix split in parsePrefix.
		p.advance()
		mut := false
		if p.cur.Kind == token.MUT {
			p.advance()
			mut = true
		}
		inner := ast.NewReferenceType(pos, mut, p.parseType())
		return ast.NewReferenceType(pos, false, inner)
	case token.LPAREN:
		p.advance()
		var elems []ast.TypeNode
		for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseType())
			if p.cur.Kind == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		return ast.NewTupleType(pos, elems)
	case token.LBRACKET:
		p.advance()
		elem := p.parseType()
		p.expect(token.SEMI)
		length := p.parseExpr(1)
		p.expect(token.RBRACKET)
		return ast.NewArrayType(pos, elem, length)
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		return ast.NewIdentifierType(pos, name)
	default:
		p.errorf("expected a type, found %s", p.cur.Kind)
		p.advance()
		return ast.NewIdentifierType(pos, "<error>")
	}
}
