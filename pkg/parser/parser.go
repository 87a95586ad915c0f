package parser

import (
	"errors"
	"fmt"

	"github.com/Pancakey8/lisp/pkg/ast"
	"github.com/Pancakey8/lisp/pkg/lexer"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota + 1
	UnmatchedOpenParenthesis
	NestingTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnmatchedOpenParenthesis:
		return "UnmatchedOpenParenthesis"
	case NestingTooDeep:
		return "NestingTooDeep"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error lets a kind be used as an errors.Is target.
func (k ErrorKind) Error() string {
	return "parser: " + k.String()
}

// ParseError reports the first syntax failure. Token is nil when the input
// ended before a form was complete.
type ParseError struct {
	Kind  ErrorKind
	Pos   ast.Position
	Token *lexer.Token
}

func (e *ParseError) Error() string {
	switch {
	case e.Kind == UnmatchedOpenParenthesis:
		return "unmatched '('"
	case e.Kind == NestingTooDeep:
		return fmt.Sprintf("forms nest deeper than %d levels", ast.MaxNesting)
	case e.Token == nil:
		return "unexpected end of input"
	default:
		return fmt.Sprintf("unexpected token '%s'", e.Token.Lexeme())
	}
}

func (e *ParseError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

// IsIncomplete reports whether err was caused only by input ending early, so
// that appending more text could make it parse.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return false
	}
	return parseErr.Kind == UnmatchedOpenParenthesis || (parseErr.Kind == UnexpectedToken && parseErr.Token == nil)
}

// Parser builds AST roots from a token slice with a single cursor.
type Parser struct {
	tokens []lexer.Token
	cursor int
	depth  int
	roots  []ast.Node
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() (lexer.Token, bool) {
	if p.cursor >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.cursor], true
}

func (p *Parser) next() (lexer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.cursor++
	}
	return tok, ok
}

// parseForm parses exactly one form at the cursor. end is the position used
// when the input runs out before a form starts.
func (p *Parser) parseForm(end ast.Position) (ast.Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, &ParseError{Kind: UnexpectedToken, Pos: end}
	}
	switch tok.Kind {
	case lexer.Number:
		return ast.At(ast.NewNumberLiteral(tok.Value), tok.Pos.Row, tok.Pos.Col), nil
	case lexer.String:
		return ast.At(ast.NewStringLiteral(tok.Text), tok.Pos.Row, tok.Pos.Col), nil
	case lexer.Symbol:
		return ast.At(ast.NewIdentifier(tok.Text), tok.Pos.Row, tok.Pos.Col), nil
	case lexer.Quote:
		if err := p.descend(tok); err != nil {
			return nil, err
		}
		form, err := p.parseForm(tok.Pos)
		p.depth--
		if err != nil {
			return nil, err
		}
		return ast.At(ast.NewQuote(form), tok.Pos.Row, tok.Pos.Col), nil
	case lexer.LParen:
		if err := p.descend(tok); err != nil {
			return nil, err
		}
		node, err := p.parseList(tok)
		p.depth--
		return node, err
	default:
		p.cursor--
		return nil, &ParseError{Kind: UnexpectedToken, Pos: tok.Pos, Token: &tok}
	}
}

// descend enters a list or quote opened by tok, failing once ast.MaxNesting
// levels are already open.
func (p *Parser) descend(tok lexer.Token) error {
	if p.depth >= ast.MaxNesting {
		return &ParseError{Kind: NestingTooDeep, Pos: tok.Pos, Token: &tok}
	}
	p.depth++
	return nil
}

func (p *Parser) parseList(open lexer.Token) (ast.Node, error) {
	elements := []ast.Node{}
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, &ParseError{Kind: UnmatchedOpenParenthesis, Pos: open.Pos, Token: &open}
		}
		if tok.Kind == lexer.RParen {
			p.cursor++
			break
		}
		el, err := p.parseForm(open.Pos)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) && parseErr.Kind == UnmatchedOpenParenthesis {
				// An inner list that ran off the end leaves this one open too;
				// report the earliest unclosed paren.
				parseErr.Pos = open.Pos
				parseErr.Token = &open
			}
			return nil, err
		}
		elements = append(elements, el)
	}
	return ast.At(ast.NewList(elements), open.Pos.Row, open.Pos.Col), nil
}

// ParseAll parses top-level forms until the tokens are exhausted, stopping at
// the first error.
func (p *Parser) ParseAll() ([]ast.Node, error) {
	for {
		tok, ok := p.peek()
		if !ok {
			return p.roots, nil
		}
		node, err := p.parseForm(tok.Pos)
		if err != nil {
			return nil, err
		}
		p.roots = append(p.roots, node)
	}
}

// Parse builds AST roots from tokens.
func Parse(tokens []lexer.Token) ([]ast.Node, error) {
	return New(tokens).ParseAll()
}

// ParseSource lexes and parses src. Lex errors are returned unchanged.
func ParseSource(src string) ([]ast.Node, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}
