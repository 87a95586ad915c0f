package lexer

import (
	"fmt"
	"strconv"

	"github.com/Pancakey8/lisp/pkg/ast"
)

// TokenKind identifies the lexical category of a token.
type TokenKind int

const (
	LParen TokenKind = iota
	RParen
	Quote
	Symbol
	Number
	String
)

func (k TokenKind) String() string {
	switch k {
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case Quote:
		return "Quote"
	case Symbol:
		return "Symbol"
	case Number:
		return "Number"
	case String:
		return "String"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a located lexeme. Text carries the payload of Symbol and String
// tokens; Value carries the payload of Number tokens.
type Token struct {
	Pos   ast.Position
	Kind  TokenKind
	Text  string
	Value float64
}

func (t Token) String() string {
	return fmt.Sprintf("Token[%d,%d](%s)", t.Pos.Row, t.Pos.Col, t.describe())
}

// Lexeme returns the token roughly as it appeared in the source.
func (t Token) Lexeme() string {
	switch t.Kind {
	case LParen:
		return "("
	case RParen:
		return ")"
	case Quote:
		return "'"
	case Symbol:
		return t.Text
	case Number:
		return strconv.FormatFloat(t.Value, 'f', -1, 64)
	case String:
		return `"` + t.Text + `"`
	default:
		return t.Kind.String()
	}
}

func (t Token) describe() string {
	switch t.Kind {
	case Symbol, String:
		return fmt.Sprintf("%s(%s)", t.Kind, strconv.Quote(t.Text))
	case Number:
		return fmt.Sprintf("Number(%s)", strconv.FormatFloat(t.Value, 'f', -1, 64))
	default:
		return t.Kind.String()
	}
}
