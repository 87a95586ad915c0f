package lexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Pancakey8/lisp/pkg/ast"
)

// ErrorKind classifies lexical failures.
type ErrorKind int

const (
	UnrecognizedCharacter ErrorKind = iota + 1
	UnterminatedString
)

func (k ErrorKind) String() string {
	switch k {
	case UnrecognizedCharacter:
		return "UnrecognizedCharacter"
	case UnterminatedString:
		return "UnterminatedString"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error lets a kind be used as an errors.Is target.
func (k ErrorKind) Error() string {
	return "lexer: " + k.String()
}

// LexError reports the first lexical failure. For UnterminatedString, Pos is
// the location of the opening quote.
type LexError struct {
	Kind ErrorKind
	Pos  ast.Position
	Char rune
}

func (e *LexError) Error() string {
	switch e.Kind {
	case UnrecognizedCharacter:
		return fmt.Sprintf("unrecognized character %q", e.Char)
	case UnterminatedString:
		return "unterminated string literal"
	default:
		return e.Kind.String()
	}
}

func (e *LexError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

// errTryFailed signals that no token rule matched the next character.
var errTryFailed = errors.New("lexer: no rule matched")

const symbolPunctuation = "+-*/%!^&|~<=>"

// IsSymbolChar reports whether r may appear in a symbol.
func IsSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(symbolPunctuation, r)
}

func isDecimalDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Lexer converts source text into located tokens.
type Lexer struct {
	src    []rune
	offset int
	pos    ast.Position
	tokens []Token
}

func New(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

func (l *Lexer) peek() (rune, bool) {
	if l.offset >= len(l.src) {
		return 0, false
	}
	return l.src[l.offset], true
}

func (l *Lexer) next() (rune, bool) {
	r, ok := l.peek()
	if !ok {
		return 0, false
	}
	l.offset++
	l.pos = l.pos.Advance(r)
	return r, true
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.next()
	}
}

func (l *Lexer) push(tok Token) {
	l.tokens = append(l.tokens, tok)
}

// scanOne consumes leading whitespace and at most one token.
func (l *Lexer) scanOne() error {
	l.skipWhitespace()

	r, ok := l.peek()
	if !ok {
		return nil
	}
	start := l.pos

	switch {
	case r == '(':
		l.next()
		l.push(Token{Pos: start, Kind: LParen})
	case r == ')':
		l.next()
		l.push(Token{Pos: start, Kind: RParen})
	case r == '\'':
		l.next()
		l.push(Token{Pos: start, Kind: Quote})
	case r == '"':
		return l.scanString(start)
	case isDecimalDigit(r):
		l.scanNumber(start)
	case IsSymbolChar(r):
		l.scanSymbol(start)
	default:
		return errTryFailed
	}
	return nil
}

// scanString reads raw characters up to the closing quote; there are no escapes.
func (l *Lexer) scanString(start ast.Position) error {
	l.next()
	var b strings.Builder
	for {
		r, ok := l.next()
		if !ok {
			return &LexError{Kind: UnterminatedString, Pos: start, Char: '"'}
		}
		if r == '"' {
			break
		}
		b.WriteRune(r)
	}
	l.push(Token{Pos: start, Kind: String, Text: b.String()})
	return nil
}

// scanNumber accumulates every digit, integer and fractional, into one value
// and divides by 10^(fractional digits) at the end.
func (l *Lexer) scanNumber(start ast.Position) {
	digits := 0.0
	divisor := 1.0
	for {
		r, ok := l.peek()
		if !ok || !isDecimalDigit(r) {
			break
		}
		l.next()
		digits = 10*digits + float64(r-'0')
	}
	if r, ok := l.peek(); ok && r == '.' {
		l.next()
		for {
			r, ok := l.peek()
			if !ok || !isDecimalDigit(r) {
				break
			}
			l.next()
			digits = 10*digits + float64(r-'0')
			divisor *= 10
		}
	}
	l.push(Token{Pos: start, Kind: Number, Value: digits / divisor})
}

func (l *Lexer) scanSymbol(start ast.Position) {
	var b strings.Builder
	for {
		r, ok := l.peek()
		if !ok || !IsSymbolChar(r) {
			break
		}
		l.next()
		b.WriteRune(r)
	}
	l.push(Token{Pos: start, Kind: Symbol, Text: b.String()})
}

// ScanAll runs the single-token step until the input is exhausted.
func (l *Lexer) ScanAll() ([]Token, error) {
	for {
		if _, ok := l.peek(); !ok {
			return l.tokens, nil
		}
		err := l.scanOne()
		if err == nil {
			continue
		}
		if errors.Is(err, errTryFailed) {
			r, ok := l.peek()
			if !ok {
				return l.tokens, nil
			}
			return nil, &LexError{Kind: UnrecognizedCharacter, Pos: l.pos, Char: r}
		}
		return nil, err
	}
}

// Tokenize lexes src in one call.
func Tokenize(src string) ([]Token, error) {
	return New(src).ScanAll()
}
