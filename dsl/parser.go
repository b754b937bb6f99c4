package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	styleLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{4}|[0-9A-Fa-f]{3})\b`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)(?:px|pt|em|ms|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "Func", Pattern: `(?:rgba?|hsla?)\([^)]*\)`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;,]`},
	})

	sheetParser = participle.MustBuild[Stylesheet](
		participle.Lexer(styleLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
	)
)

// Stylesheet is the root node of a style declaration list, e.g.
//
//	font-size: 32px; font-color: white
//	stroke-color: #000000; stroke-width: 2
type Stylesheet struct {
	Pos          lexer.Position `parser:"" json:"-"`
	Declarations []*Declaration `parser:"( ';' | Newline )* ( @@ ( ';' | Newline )* )*"`
}

// Declaration is a single `key: value` pair.
type Declaration struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Value holds the raw right-hand side of a declaration. Multiple bare words are
// kept together, so `font-family: Go Mono` yields "Go Mono".
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @(Color | Func)"`
	Words  []string       `parser:"| @Ident+"`
}

// Raw returns the value as the string a style key receives.
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	default:
		return strings.Join(v.Words, " ")
	}
}

// StringLiteral unquotes single or double quoted strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	raw := values[0]
	if strings.HasPrefix(raw, "'") {
		raw = `"` + strings.ReplaceAll(strings.Trim(raw, "'"), `"`, `\"`) + `"`
	}
	val, err := strconv.Unquote(raw)
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses style declarations from an io.Reader.
func Parse(r io.Reader) (*Stylesheet, error) {
	return sheetParser.Parse("", r)
}

// ParseString parses style declarations from a string.
func ParseString(input string) (*Stylesheet, error) {
	return sheetParser.ParseString("", input)
}

// Map flattens the declarations into key/value pairs in source order.
// Later declarations of the same key stay in the list; callers apply them in order.
func (s *Stylesheet) Map() [][2]string {
	if s == nil {
		return nil
	}
	out := make([][2]string, 0, len(s.Declarations))
	for _, d := range s.Declarations {
		out = append(out, [2]string{d.Key, d.Value.Raw()})
	}
	return out
}
