// Package sexpr implements the minimal parenthesized data syntax shared by
// the LTS pipeline's non-JSON file formats: lexicons, feature
// descriptions, decision trees, rule files, regular grammars and WFSTs.
//
// The grammar is classic Lisp: atoms are integers, floats, double-quoted
// strings, or bare symbols, and lists nest with "(" and ")". Whitespace
// separates tokens; it is otherwise insignificant.
package sexpr

import (
	"fmt"
	"strconv"
	"strings"

	lerr "github.com/nihei9/ltsc/error"
)

// Kind identifies the concrete shape of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindSymbol
	KindList
)

// Value is a single node of a parsed s-expression tree. Exactly one of the
// typed accessors below is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Int  int64
	Flt  float64
	Str  string // holds both KindString and KindSymbol text
	List []*Value
}

func Int(v int64) *Value      { return &Value{Kind: KindInt, Int: v} }
func Float(v float64) *Value  { return &Value{Kind: KindFloat, Flt: v} }
func String(v string) *Value  { return &Value{Kind: KindString, Str: v} }
func Symbol(v string) *Value  { return &Value{Kind: KindSymbol, Str: v} }
func List(vs ...*Value) *Value { return &Value{Kind: KindList, List: vs} }

// IsSymbol reports whether v is a bare symbol equal to name.
func (v *Value) IsSymbol(name string) bool {
	return v != nil && v.Kind == KindSymbol && v.Str == name
}

// Text returns the textual payload of a string or symbol atom, the decimal
// text of an integer or float atom, and the empty string for a list.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindString, KindSymbol:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	}
	return ""
}

// Go converts v into plain Go values (string, int64, float64, []any),
// matching the shape used by the end-to-end reader examples in the spec.
func (v *Value) Go() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Flt
	case KindString, KindSymbol:
		return v.Str
	case KindList:
		out := make([]any, len(v.List))
		for i, e := range v.List {
			out[i] = e.Go()
		}
		return out
	}
	return nil
}

func (v *Value) String() string {
	if v == nil {
		return "()"
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindSymbol:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return ""
}

// MagicHeader is the single-line header that, when present as the first
// non-empty line of an input, is discarded before the s-expression reader
// ever sees the remainder of the file.
const MagicHeader = "MNCL"

// StripMagicHeader removes a leading MNCL magic-header line from src, if
// present, and returns the remainder unchanged otherwise. The lexicon
// loader calls this before handing its input to Read; the reader itself
// never special-cases it.
func StripMagicHeader(src string) string {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if trimmed == "" {
		return src
	}
	nl := strings.IndexByte(trimmed, '\n')
	var first string
	if nl < 0 {
		first = trimmed
	} else {
		first = trimmed[:nl]
	}
	if strings.TrimSpace(first) != MagicHeader {
		return src
	}
	if nl < 0 {
		return ""
	}
	return trimmed[nl+1:]
}

// Read parses a single s-expression from src. Trailing content after the
// first complete expression is ignored, matching how callers use Read one
// line at a time. Read fails with lerr.KindMalformedInput on unbalanced
// parentheses or empty input.
func Read(src string) (*Value, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, err)
	}
	if len(toks) == 0 {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("empty input"))
	}
	depth := 0
	for _, tok := range toks {
		switch tok {
		case "(":
			depth++
		case ")":
			depth--
			if depth < 0 {
				return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("unbalanced parentheses: unexpected )"))
			}
		}
	}
	v, rest, err := readExpr(toks)
	if err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, err)
	}
	_ = rest
	return v, nil
}

// ReadAll parses every top-level expression present in src, one per
// logical line boundary is not assumed; expressions are read back to back
// until tokens are exhausted.
func ReadAll(src string) ([]*Value, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, lerr.New(lerr.KindMalformedInput, err)
	}
	if len(toks) == 0 {
		return nil, lerr.New(lerr.KindMalformedInput, fmt.Errorf("empty input"))
	}
	var vals []*Value
	for len(toks) > 0 {
		var v *Value
		v, toks, err = readExpr(toks)
		if err != nil {
			return nil, lerr.New(lerr.KindMalformedInput, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func readExpr(toks []string) (*Value, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("unexpected EOF while reading")
	}
	tok := toks[0]
	rest := toks[1:]
	switch tok {
	case "(":
		var items []*Value
		for {
			if len(rest) == 0 {
				return nil, nil, fmt.Errorf("unbalanced parentheses: missing )")
			}
			if rest[0] == ")" {
				rest = rest[1:]
				break
			}
			var v *Value
			var err error
			v, rest, err = readExpr(rest)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, v)
		}
		return &Value{Kind: KindList, List: items}, rest, nil
	case ")":
		return nil, nil, fmt.Errorf("unbalanced parentheses: unexpected )")
	default:
		return atom(tok), rest, nil
	}
}

func atom(tok string) *Value {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return &Value{Kind: KindString, Str: tok[1 : len(tok)-1]}
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return &Value{Kind: KindInt, Int: i}
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return &Value{Kind: KindFloat, Flt: f}
	}
	return &Value{Kind: KindSymbol, Str: tok}
}

// tokenize splits src into tokens. "(" and ")" are always their own token;
// a double-quoted run (which may contain spaces) is kept as one token;
// everything else is whitespace-separated. This is the "pad parens with
// spaces, then split on whitespace" rule from the spec, generalized to
// keep quoted strings with embedded spaces intact.
func tokenize(src string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	inString := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inString:
			cur.WriteRune(r)
			if r == '"' {
				inString = false
				flush()
			}
		case r == '"':
			flush()
			cur.WriteRune(r)
			inString = true
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inString {
		return nil, fmt.Errorf("unterminated string literal")
	}
	flush()
	return toks, nil
}
