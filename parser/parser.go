// Package parser is the boundary between source text and the compiler.
//
// The compiler consumes a syntax tree, the comments found in the source and
// any trailing content after an __END__ line. Any implementation of Parser
// can provide these; the bundled Sexp reader builds them from the textual
// S-expression form of a tree, such as:
//
//	# use_strict: true
//	(def :greet (args) (send nil :puts (str "hi")))
package parser

import (
	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/internal/lexer"
	"github.com/rbjs-dev/rbjs/internal/token"
)

// SourceBuffer is one unit of source handed to a parser.
type SourceBuffer struct {
	Name   string
	Source string
}

// NewSourceBuffer returns a buffer for source read from the file name.
func NewSourceBuffer(name, source string) *SourceBuffer {
	return &SourceBuffer{Name: name, Source: source}
}

// Comment is a source comment, including its leading '#'.
type Comment struct {
	Text string
	Pos  token.Position
}

// Parser turns a source buffer into a syntax tree. The tree is nil for
// empty input. eof holds the content following an __END__ line.
type Parser interface {
	Tokenize(buf *SourceBuffer) (tree *ast.Node, comments []Comment, eof string, err error)
}

// Option is a configuration function for a Sexp reader.
type Option func(*Sexp)

// WithMaxDepth sets the maximum nesting depth for the reader.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Sexp) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Sexp reads the S-expression text form of a syntax tree.
type Sexp struct {
	maxDepth int
}

// NewSexp returns a reader configured with the given options.
func NewSexp(options ...Option) *Sexp {
	p := &Sexp{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse is shorthand for NewSexp().Tokenize on an unnamed buffer.
func Parse(source string) (*ast.Node, error) {
	tree, _, _, err := NewSexp().Tokenize(NewSourceBuffer("", source))
	return tree, err
}

// Tokenize implements Parser. Several top level forms are wrapped in a
// begin node.
func (p *Sexp) Tokenize(buf *SourceBuffer) (*ast.Node, []Comment, string, error) {
	l := lexer.New(buf.Source)
	l.SetFilename(buf.Name)
	r := &reader{l: l, maxDepth: p.maxDepth}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	forms, err := r.readTop()
	if err != nil {
		return nil, r.comments, "", err
	}
	var tree *ast.Node
	switch len(forms) {
	case 0:
	case 1:
		tree = forms[0]
	default:
		children := make([]any, len(forms))
		for i, f := range forms {
			children[i] = f
		}
		tree = ast.At(forms[0].Loc, ast.Begin, children...)
	}
	return tree, r.comments, l.Rest(), nil
}

type reader struct {
	l        *lexer.Lexer
	comments []Comment
	depth    int
	maxDepth int
}

// next returns the next non-comment token, collecting comments.
func (r *reader) next() (token.Token, error) {
	for {
		tok, err := r.l.Next()
		if err != nil {
			return tok, r.lexError(tok, err)
		}
		if tok.Type != token.COMMENT {
			return tok, nil
		}
		r.comments = append(r.comments, Comment{Text: tok.Literal, Pos: tok.StartPosition})
	}
}

func (r *reader) readTop() ([]*ast.Node, error) {
	var forms []*ast.Node
	for {
		tok, err := r.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case token.EOF, token.END:
			return forms, nil
		case token.LPAREN:
			node, err := r.readNode(tok)
			if err != nil {
				return nil, err
			}
			forms = append(forms, node)
		default:
			return nil, r.unexpected(tok, "expected '(' at top level")
		}
	}
}

// readNode reads the remainder of a form whose '(' was just consumed.
func (r *reader) readNode(open token.Token) (*ast.Node, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.maxDepth {
		return nil, r.syntaxError(open, codeSyntax, "maximum nesting depth of %d exceeded", r.maxDepth)
	}
	tag, err := r.next()
	if err != nil {
		return nil, err
	}
	if tag.Type != token.IDENT && tag.Type != token.NIL {
		return nil, r.unexpected(tag, "expected a node tag")
	}
	kind, ok := ast.LookupKind(tag.Literal)
	if !ok {
		return nil, r.syntaxError(tag, codeUnknownTag, "unknown node tag %q", tag.Literal)
	}
	node := ast.At(open.StartPosition, kind)
	for {
		tok, err := r.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case token.RPAREN:
			return node, nil
		case token.EOF, token.END:
			return nil, r.syntaxError(open, codeUnclosed, "unclosed '(' for %s node", kind)
		case token.LPAREN:
			child, err := r.readNode(tok)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		default:
			value, err := r.literal(tok)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, value)
		}
	}
}
