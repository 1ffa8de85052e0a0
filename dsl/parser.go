package dsl

import (
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 支票版式描述语言示例：
//
//	checklayout Business v1 {
//	  page letter
//	  width 8.5in
//	  check 3.5in
//	  stub1 on 3.5in
//	  template "blank-check.png" opacity 0.35 fit cover
//	  field payee { x: 1in; y: 1.2in; w: 5.2in; h: 0.3in; font: 12pt; label: "Pay to" }
//	}
var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)(?:pt|mm|cm|in|px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.Unquote("String"),
	)
)

// Document is the root AST node of a check layout file.
type Document struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Name       string         `parser:"Newline* 'checklayout' @Ident"`
	Version    string         `parser:"@Ident"`
	Statements []*Statement   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Statement is one top-level declaration.
type Statement struct {
	Field    *FieldDecl    `parser:"  @@"`
	Slot     *SlotDecl     `parser:"| @@"`
	Template *TemplateDecl `parser:"| @@"`
	Setting  *Setting      `parser:"| @@"`
}

// FieldDecl sets the geometry of one field key.
type FieldDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"'field' @Ident"`
	Props []*Property    `parser:"'{' Newline* ( @@ ( ',' | ';' | Newline )* )* '}'"`
}

// SlotDecl groups per-slot field overrides for sheet mode.
type SlotDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'slot' @Ident"`
	Fields []*FieldDecl   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// TemplateDecl declares the background image.
type TemplateDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Src     string         `parser:"'template' @String"`
	Options []*Option      `parser:"@@*"`
}

// Option is a key/value pair without a colon, e.g. `opacity 0.4`.
type Option struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"@@"`
}

// Property uses colon syntax (key: value).
type Property struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Setting is a bare command such as `page letter` or `stub1 on 3in`.
type Setting struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Value       `parser:"@@*"`
}

// Value is a string, number (optionally with a unit) or identifier.
type Value struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
}

// Raw returns the textual form of the value.
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Parse parses layout content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses layout content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
