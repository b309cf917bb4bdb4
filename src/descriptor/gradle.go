package descriptor

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// The Gradle reader understands the declarative subset of the Kotlin DSL that
// app build scripts are written in: nested blocks, assignments, calls with
// literal/path/call arguments and method chains, plus the index, cast, elvis
// and trailing-lambda forms that appear on their right-hand sides. It is not a
// Kotlin parser. Statements outside the subset (control flow, functions,
// arbitrary expressions) are skipped whole; only malformed tokens and
// unbalanced brackets are SyntaxErrors.

type token struct {
	tok  rune
	text string
	pos  scanner.Position
}

func tokenize(name string, data []byte) ([]token, error) {
	var (
		s    scanner.Scanner
		serr *SyntaxError
	)
	s.Init(strings.NewReader(string(data)))
	s.Filename = name
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.Error = func(s *scanner.Scanner, msg string) {
		if serr == nil {
			pos := s.Pos()
			serr = &SyntaxError{File: name, Line: pos.Line, Column: pos.Column, Msg: msg}
		}
	}

	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		toks = append(toks, token{tok: tok, text: s.TokenText(), pos: s.Position})
	}
	if serr != nil {
		return nil, serr
	}
	return toks, nil
}

type exprKind int

const (
	exprString exprKind = iota + 1
	exprNumber
	exprBool
	exprChain
)

// segment is one link of a method chain: a name, optionally called.
type segment struct {
	name string
	call bool
	args []expr
}

type expr struct {
	kind  exprKind
	text  string    // literal text for string/number/bool
	chain []segment // for exprChain
	line  int
}

// path joins the chain's segment names with dots.
func (e expr) path() string {
	names := make([]string, len(e.chain))
	for i, s := range e.chain {
		names[i] = s.name
	}
	return strings.Join(names, ".")
}

// last returns the final chain segment.
func (e expr) last() segment {
	if len(e.chain) == 0 {
		return segment{}
	}
	return e.chain[len(e.chain)-1]
}

type stmtKind int

const (
	stmtAssign stmtKind = iota + 1
	stmtAppend
	stmtCall
	stmtBlock
	stmtRef
)

type stmt struct {
	kind   stmtKind
	target expr // left-hand side, callee or block head
	value  expr // right-hand side for assignments
	body   []stmt
	line   int
}

// blockName returns the name a block is addressed by: the head's last segment,
// or its first string argument for getByName("x")/create("x")/named("x").
func (s stmt) blockName() string {
	last := s.target.last()
	if last.call && len(last.args) > 0 && last.args[0].kind == exprString {
		switch last.name {
		case "getByName", "create", "named", "maybeCreate", "register":
			return last.args[0].text
		}
	}
	return last.name
}

type gradleParser struct {
	name string
	toks []token
	i    int
}

func parseGradleScript(name string, data []byte) ([]stmt, error) {
	toks, err := tokenize(name, data)
	if err != nil {
		return nil, err
	}
	p := &gradleParser{name: name, toks: toks}
	return p.stmts(false)
}

func (p *gradleParser) peek() token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return token{tok: scanner.EOF}
}

func (p *gradleParser) peekAt(n int) token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return token{tok: scanner.EOF}
}

func (p *gradleParser) next() token {
	t := p.peek()
	if p.i < len(p.toks) {
		p.i++
	}
	return t
}

func (p *gradleParser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{File: p.name, Line: t.pos.Line, Column: t.pos.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *gradleParser) expect(r rune) (token, error) {
	t := p.next()
	if t.tok != r {
		return t, p.errorf(t, "expected %q, found %q", string(r), t.text)
	}
	return t, nil
}

// stmts parses statements until EOF or, inside a block, the closing brace.
func (p *gradleParser) stmts(inBlock bool) ([]stmt, error) {
	var out []stmt
	for {
		t := p.peek()
		switch {
		case t.tok == scanner.EOF:
			if inBlock {
				return nil, p.errorf(t, "unexpected end of file, missing '}'")
			}
			return out, nil
		case t.tok == '}':
			if !inBlock {
				return nil, p.errorf(t, "unexpected '}'")
			}
			p.next()
			return out, nil
		case t.tok == ';':
			p.next()
			continue
		case t.tok == '@' && p.peekAt(1).tok == scanner.Ident:
			// Annotations such as @Suppress("...") are skipped.
			p.next()
			start := p.i
			if _, err := p.chain(false); err != nil {
				p.i = start
				if err := p.skip(); err != nil {
					return nil, err
				}
			}
			continue
		}

		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, *s)
		}
	}
}

// skipped are keywords that open statements the evaluator never reads.
var skipped = map[string]bool{
	"if": true, "else": true, "when": true, "for": true, "while": true, "do": true,
	"try": true, "catch": true, "finally": true, "fun": true, "class": true,
	"object": true, "interface": true, "return": true, "throw": true, "typealias": true,
}

// stmt reads one statement. A statement outside the declarative subset is
// skipped and yields nil.
func (p *gradleParser) stmt() (*stmt, error) {
	start := p.i
	t := p.peek()
	if t.tok == scanner.Ident && !skipped[t.text] {
		s, err := p.declaration()
		if err == nil {
			return s, nil
		}
		p.i = start
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *gradleParser) declaration() (*stmt, error) {
	start := p.next()

	// Imports and the package clause run to the end of their line.
	if start.text == "import" || start.text == "package" {
		for t := p.peek(); t.tok != scanner.EOF && t.pos.Line == start.pos.Line; t = p.peek() {
			p.next()
		}
		return nil, nil
	}

	// Local declarations (val/var) are read and discarded.
	if start.text == "val" || start.text == "var" {
		if _, err := p.expect(scanner.Ident); err != nil {
			return nil, err
		}
		if p.peek().tok == ':' {
			p.next()
			if err := p.typeRef(); err != nil {
				return nil, err
			}
		}
		if p.peek().tok == '=' {
			p.next()
			if _, err := p.expr(); err != nil {
				return nil, err
			}
		}
		return nil, p.endStmt()
	}

	p.i--
	target, err := p.chain(false)
	if err != nil {
		return nil, err
	}
	s := &stmt{target: target, line: start.pos.Line}

	switch t := p.peek(); {
	case t.tok == '{':
		p.next()
		body, err := p.stmts(true)
		if err != nil {
			return nil, err
		}
		s.kind = stmtBlock
		s.body = body
		return s, nil
	case t.tok == '=':
		p.next()
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		s.kind = stmtAssign
		s.value = v
	case t.tok == '+' && p.peekAt(1).tok == '=':
		p.next()
		p.next()
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		s.kind = stmtAppend
		s.value = v
	default:
		if target.last().call {
			s.kind = stmtCall
		} else {
			s.kind = stmtRef
		}
		// Infix calls on the same line: id("x") version "1.0" apply false
		for n := p.peek(); n.tok == scanner.Ident && n.pos.Line == p.line(); n = p.peek() {
			p.next()
			if p.atStmtEnd() {
				break
			}
			if _, err := p.expr(); err != nil {
				return nil, err
			}
		}
	}
	return s, p.endStmt()
}

// line returns the line of the last consumed token.
func (p *gradleParser) line() int {
	if p.i == 0 {
		return 0
	}
	return p.toks[p.i-1].pos.Line
}

// atStmtEnd reports whether the next token starts a new statement.
func (p *gradleParser) atStmtEnd() bool {
	t := p.peek()
	switch t.tok {
	case scanner.EOF, ';', '}':
		return true
	}
	return t.pos.Line != p.line()
}

func (p *gradleParser) endStmt() error {
	if !p.atStmtEnd() {
		t := p.peek()
		return p.errorf(t, "unexpected %q after statement", t.text)
	}
	return nil
}

// skip consumes one statement without interpreting it: tokens up to the end
// of the line, carried across lines while a bracket is open or the next line
// continues the expression.
func (p *gradleParser) skip() error {
	start := p.i
	var open []token
	for {
		t := p.peek()
		if t.tok == scanner.EOF {
			if len(open) > 0 {
				o := open[len(open)-1]
				return p.errorf(o, "unclosed %q", o.text)
			}
			return nil
		}
		if len(open) == 0 && p.i > start {
			if t.tok == ';' || t.tok == '}' {
				return nil
			}
			if t.pos.Line != p.line() && !continuesLine(t) {
				return nil
			}
		}
		p.next()
		switch t.tok {
		case '(', '[', '{':
			open = append(open, t)
		case ')', ']', '}':
			if len(open) == 0 || closing[open[len(open)-1].tok] != t.tok {
				return p.errorf(t, "unexpected %q", t.text)
			}
			open = open[:len(open)-1]
		}
	}
}

var closing = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// continuesLine reports whether a token at the start of a line belongs to the
// statement on the line before: .call, ?.call, ?: fallback, else/catch/finally.
func continuesLine(t token) bool {
	switch t.tok {
	case '.', '?':
		return true
	case scanner.Ident:
		return t.text == "else" || t.text == "catch" || t.text == "finally"
	}
	return false
}

// skipBalanced consumes a bracketed group whose opening token is next.
func (p *gradleParser) skipBalanced() error {
	open := []token{p.next()}
	for len(open) > 0 {
		t := p.next()
		switch t.tok {
		case scanner.EOF:
			o := open[len(open)-1]
			return p.errorf(o, "unclosed %q", o.text)
		case '(', '[', '{':
			open = append(open, t)
		case ')', ']', '}':
			if closing[open[len(open)-1].tok] != t.tok {
				return p.errorf(t, "unexpected %q", t.text)
			}
			open = open[:len(open)-1]
		}
	}
	return nil
}

// typeRef consumes a type: a dotted name with optional type arguments and
// nullability, as in Map<String, Any>?.
func (p *gradleParser) typeRef() error {
	if _, err := p.expect(scanner.Ident); err != nil {
		return err
	}
	for p.peek().tok == '.' {
		p.next()
		if _, err := p.expect(scanner.Ident); err != nil {
			return err
		}
	}
	if p.peek().tok == '<' {
		depth := 0
		for {
			t := p.next()
			switch t.tok {
			case '<':
				depth++
			case '>':
				depth--
			case scanner.EOF:
				return p.errorf(t, "unclosed type arguments")
			}
			if depth == 0 {
				break
			}
		}
	}
	if p.peek().tok == '?' && p.peekAt(1).tok != ':' {
		p.next()
	}
	return nil
}

// expr parses a literal or method chain followed by string concatenation,
// casts (x as T, x as? T) and elvis fallbacks (x ?: y). Casts and fallbacks
// leave the expression as its left-hand side.
func (p *gradleParser) expr() (expr, error) {
	e, err := p.primary()
	if err != nil {
		return expr{}, err
	}
	for {
		t := p.peek()
		switch {
		case t.tok == '+' && p.peekAt(1).tok != '=' && t.pos.Line == p.line():
			p.next()
			rhs, err := p.primary()
			if err != nil {
				return expr{}, err
			}
			if e.kind == exprString && rhs.kind == exprString {
				e.text += rhs.text
			}
		case t.tok == scanner.Ident && t.text == "as":
			p.next()
			if p.peek().tok == '?' {
				p.next()
			}
			if err := p.typeRef(); err != nil {
				return expr{}, err
			}
		case t.tok == '?' && p.peekAt(1).tok == ':':
			p.next()
			p.next()
			if _, err := p.expr(); err != nil {
				return expr{}, err
			}
		default:
			return e, nil
		}
	}
}

func (p *gradleParser) primary() (expr, error) {
	t := p.peek()
	switch t.tok {
	case scanner.String:
		p.next()
		s, err := strconv.Unquote(t.text)
		if err != nil {
			s = strings.Trim(t.text, `"`)
		}
		return expr{kind: exprString, text: s, line: t.pos.Line}, nil
	case scanner.Int, scanner.Float:
		p.next()
		return expr{kind: exprNumber, text: t.text, line: t.pos.Line}, nil
	case '-':
		p.next()
		n := p.next()
		if n.tok != scanner.Int && n.tok != scanner.Float {
			return expr{}, p.errorf(n, "expected number after '-'")
		}
		return expr{kind: exprNumber, text: "-" + n.text, line: t.pos.Line}, nil
	case '!':
		p.next()
		return p.primary()
	case '{':
		// Lambda literal.
		if err := p.skipBalanced(); err != nil {
			return expr{}, err
		}
		return expr{line: t.pos.Line}, nil
	case scanner.Ident:
		switch t.text {
		case "true", "false":
			p.next()
			return expr{kind: exprBool, text: t.text, line: t.pos.Line}, nil
		case "throw":
			p.next()
			return p.expr()
		}
		return p.chain(true)
	case '(':
		p.next()
		e, err := p.expr()
		if err != nil {
			return expr{}, err
		}
		if _, err := p.expect(')'); err != nil {
			return expr{}, err
		}
		return e, nil
	}
	return expr{}, p.errorf(t, "unexpected %q in expression", t.text)
}

// chain parses ident(.ident | (args) | [args])* into a method chain. Index
// access reads as a get call. With lambdas set, a same-line trailing lambda
// (x?.let { ... }) is consumed; statement heads leave the brace to the block.
func (p *gradleParser) chain(lambdas bool) (expr, error) {
	first, err := p.expect(scanner.Ident)
	if err != nil {
		return expr{}, err
	}
	e := expr{kind: exprChain, line: first.pos.Line}
	e.chain = append(e.chain, segment{name: first.text})

	for {
		t := p.peek()
		switch {
		case t.tok == '(':
			p.next()
			args, err := p.args(')')
			if err != nil {
				return expr{}, err
			}
			last := &e.chain[len(e.chain)-1]
			if last.call {
				// f(a)(b): treat as a fresh anonymous call.
				e.chain = append(e.chain, segment{call: true, args: args})
			} else {
				last.call = true
				last.args = args
			}
		case t.tok == '[' && t.pos.Line == p.line():
			p.next()
			args, err := p.args(']')
			if err != nil {
				return expr{}, err
			}
			e.chain = append(e.chain, segment{name: "get", call: true, args: args})
		case t.tok == '{' && lambdas && t.pos.Line == p.line():
			if err := p.skipBalanced(); err != nil {
				return expr{}, err
			}
			e.chain[len(e.chain)-1].call = true
		case t.tok == '.':
			p.next()
			n, err := p.expect(scanner.Ident)
			if err != nil {
				return expr{}, err
			}
			e.chain = append(e.chain, segment{name: n.text})
		case t.tok == '?' && p.peekAt(1).tok == '.':
			// Safe calls (a?.b).
			p.next()
		case t.tok == '!' && p.peekAt(1).tok == '!':
			// Not-null assertions (a!!.b).
			p.next()
			p.next()
		default:
			return e, nil
		}
	}
}

// args parses a call or index argument list after the opening bracket, up to
// and including end. Named arguments (plugin = "x") keep only their value.
func (p *gradleParser) args(end rune) ([]expr, error) {
	var out []expr
	if p.peek().tok == end {
		p.next()
		return out, nil
	}
	for {
		if p.peek().tok == scanner.Ident && p.peekAt(1).tok == '=' && p.peekAt(2).tok != '=' {
			p.next()
			p.next()
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)

		t := p.next()
		switch t.tok {
		case ',':
			if p.peek().tok == end {
				p.next()
				return out, nil
			}
		case end:
			return out, nil
		default:
			return nil, p.errorf(t, "expected ',' or %q in argument list, found %q", string(end), t.text)
		}
	}
}
