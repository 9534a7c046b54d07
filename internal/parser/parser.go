// Package parser turns a factor string into a validated factor.Node tree,
// recursive-descent over internal/lexer's token stream. Arity and kind
// checking happen here, at construction time, so a successfully parsed
// tree never fails later for a shape reason.
package parser

import (
	"strconv"

	"github.com/dovahcrow/factor-expr/internal/errors"
	"github.com/dovahcrow/factor-expr/internal/factor"
	"github.com/dovahcrow/factor-expr/internal/lexer"
)

// Parser consumes a flat token stream and builds a factor.Node tree.
type Parser struct {
	source string
	tokens []lexer.Token
	pos    int
}

// Parse parses a complete factor string, rejecting any trailing content
// after the top-level expression.
func Parse(source string) (*factor.Node, error) {
	tokens := lexer.NewScanner(source).ScanTokens()
	p := &Parser{source: source, tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.TokenEOF) {
		return nil, p.errorAt("unexpected trailing content after expression", p.peek())
	}
	return root, nil
}

// ParseFactor parses a factor string into a ready-to-evaluate Factor.
func ParseFactor(source string) (*factor.Factor, error) {
	root, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return factor.NewFactorFromNode(root), nil
}

func (p *Parser) parseExpr() (*factor.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt("invalid number literal", tok)
		}
		return factor.NewLiteral(v), nil
	case lexer.TokenColon:
		p.advance()
		name, err := p.consume(lexer.TokenIdent, "expected column name after ':'")
		if err != nil {
			return nil, err
		}
		return factor.NewColumn(name.Lexeme), nil
	case lexer.TokenLParen:
		return p.parseForm()
	default:
		return nil, p.errorAt("expected a number, ':column' or '(operator ...)'", tok)
	}
}

func (p *Parser) parseForm() (*factor.Node, error) {
	p.advance() // consume '('
	opTok, err := p.consume(lexer.TokenIdent, "expected an operator name")
	if err != nil {
		return nil, err
	}
	kind, ok := factor.LookupKind(opTok.Lexeme)
	if !ok {
		return nil, p.errorAt("unknown operator "+strconv.Quote(opTok.Lexeme), opTok)
	}

	node, err := p.parseArgs(kind, opTok)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' to close "+opTok.Lexeme); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseArgs(kind factor.Kind, opTok lexer.Token) (*factor.Node, error) {
	switch kind {
	case factor.KindAdd:
		return p.binary(factor.NewAdd)
	case factor.KindSub:
		return p.binary(factor.NewSub)
	case factor.KindMul:
		return p.binary(factor.NewMul)
	case factor.KindDiv:
		return p.binary(factor.NewDiv)
	case factor.KindPow:
		return p.binary(factor.NewPow)
	case factor.KindGt:
		return p.binary(factor.NewGt)
	case factor.KindGe:
		return p.binary(factor.NewGe)
	case factor.KindLt:
		return p.binary(factor.NewLt)
	case factor.KindLe:
		return p.binary(factor.NewLe)
	case factor.KindEq:
		return p.binary(factor.NewEq)
	case factor.KindAnd:
		return p.binary(factor.NewAnd)
	case factor.KindOr:
		return p.binary(factor.NewOr)
	case factor.KindCorr:
		return p.windowedBinary(factor.NewCorr)

	case factor.KindAbs:
		return p.unary(factor.NewAbs)
	case factor.KindSign:
		return p.unary(factor.NewSign)
	case factor.KindLogAbs:
		return p.unary(factor.NewLogAbs)
	case factor.KindNot:
		return p.unary(factor.NewNot)

	case factor.KindSum:
		return p.windowedUnary(factor.NewSum)
	case factor.KindMean:
		return p.windowedUnary(factor.NewMean)
	case factor.KindMin:
		return p.windowedUnary(factor.NewMin)
	case factor.KindMax:
		return p.windowedUnary(factor.NewMax)
	case factor.KindArgMin:
		return p.windowedUnary(factor.NewArgMin)
	case factor.KindArgMax:
		return p.windowedUnary(factor.NewArgMax)
	case factor.KindStd:
		return p.windowedUnary(factor.NewStd)
	case factor.KindSkew:
		return p.windowedUnary(factor.NewSkew)
	case factor.KindRank:
		return p.windowedUnary(factor.NewRank)
	case factor.KindDelay:
		return p.windowedUnary(factor.NewDelay)
	case factor.KindLogReturn:
		return p.windowedUnary(factor.NewLogReturn)

	case factor.KindSPow:
		e, err := p.number()
		if err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return factor.NewSPow(e, x)

	case factor.KindQuantile:
		w, err := p.windowInt()
		if err != nil {
			return nil, err
		}
		q, err := p.number()
		if err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return factor.NewQuantile(w, q, x)

	case factor.KindIf:
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		b, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return factor.NewIf(cond, a, b)

	default:
		return nil, p.errorAt("unhandled operator "+opTok.Lexeme, opTok)
	}
}

func (p *Parser) binary(ctor func(a, b *factor.Node) (*factor.Node, error)) (*factor.Node, error) {
	a, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	b, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ctor(a, b)
}

func (p *Parser) unary(ctor func(x *factor.Node) (*factor.Node, error)) (*factor.Node, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ctor(x)
}

func (p *Parser) windowedUnary(ctor func(w int, x *factor.Node) (*factor.Node, error)) (*factor.Node, error) {
	w, err := p.windowInt()
	if err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ctor(w, x)
}

func (p *Parser) windowedBinary(ctor func(w int, a, b *factor.Node) (*factor.Node, error)) (*factor.Node, error) {
	w, err := p.windowInt()
	if err != nil {
		return nil, err
	}
	a, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	b, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ctor(w, a, b)
}

// windowInt parses a leading bare integer literal, required for every
// rolling operator's window argument: windows are never sub-expressions,
// since ready_offset must be known without evaluating anything.
func (p *Parser) windowInt() (int, error) {
	tok := p.peek()
	if tok.Type != lexer.TokenNumber {
		return 0, p.errorAt("expected an integer window size", tok)
	}
	p.advance()
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil || v != float64(int(v)) {
		return 0, p.errorAt("window size must be a non-negative integer", tok)
	}
	return int(v), nil
}

// number parses a leading bare numeric literal (SPow's exponent,
// Quantile's q).
func (p *Parser) number() (float64, error) {
	tok := p.peek()
	if tok.Type != lexer.TokenNumber {
		return 0, p.errorAt("expected a numeric literal", tok)
	}
	p.advance()
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, p.errorAt("invalid number literal", tok)
	}
	return v, nil
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAt(message, p.peek())
}

// errorAt builds a ParseError pinned to tok's byte offset, with a small
// context window around it for readability.
func (p *Parser) errorAt(message string, tok lexer.Token) error {
	lo := tok.Pos - 10
	if lo < 0 {
		lo = 0
	}
	hi := tok.Pos + 10
	if hi > len(p.source) {
		hi = len(p.source)
	}
	return errors.NewParseError(message, p.source[lo:hi], tok.Pos)
}
