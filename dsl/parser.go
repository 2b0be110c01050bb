package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	gripLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:px|pt|mm|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Assign", Pattern: `=`},
		{Name: "Semicolon", Pattern: `;`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(gripLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root of a markup file: `doc <Name> <version> { ... }`.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'doc' @Ident"`
	Version string         `parser:"@Ident"`
	Body    *Block         `parser:"@@ Newline*"`
}

// Block is a brace-delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is either a nested node or a text literal.
type Statement struct {
	Node *NodeDecl    `parser:"  @@"`
	Text *TextLiteral `parser:"| @@"`
}

// NodeDecl declares a node: kind, attributes and an optional body.
type NodeDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Kind  string         `parser:"@Ident"`
	Attrs []*Attr        `parser:"@@*"`
	Block *Block         `parser:"@@?"`
}

// Attr is a `key=value` pair.
type Attr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident '='"`
	Value AttrValue      `parser:"@(String | Number | Color | Ident)"`
}

// TextLiteral holds a quoted string statement.
type TextLiteral struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Value AttrValue      `parser:"@String"`
}

// AttrValue unquotes string tokens on capture and keeps other tokens raw.
type AttrValue string

// Capture implements participle.Capture.
func (v *AttrValue) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("attribute value capture requires a token")
	}
	raw := values[0]
	if len(raw) >= 2 && raw[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		*v = AttrValue(unquoted)
		return nil
	}
	*v = AttrValue(raw)
	return nil
}

// Attr returns the value of the first attribute named key.
func (n *NodeDecl) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return string(a.Value), true
		}
	}
	return "", false
}

// Children returns the statements of the node body, or nil when there is none.
func (n *NodeDecl) Children() []*Statement {
	if n == nil || n.Block == nil {
		return nil
	}
	return n.Block.Statements
}

// Parse parses markup from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses markup from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
