// Package path implements the treeviz path expression language: parsing
// expressions like `def_.items[0]["name"]` into access steps and evaluating
// those steps against arbitrary nested values.
package path

import (
	"fmt"
	"strconv"
)

// Step is one access operation of a parsed path expression. The concrete
// variants form a closed set: AttributeStep, IndexStep and KeyStep.
type Step interface {
	fmt.Stringer
	isStep()
}

// AttributeStep accesses a named field, trying keyed access first and named
// attribute access second.
type AttributeStep struct {
	Name string
}

func (AttributeStep) isStep() {}

// String returns the step in path syntax.
func (s AttributeStep) String() string { return s.Name }

// IndexStep accesses a sequence element. Negative indices count from the end.
type IndexStep struct {
	Index int
}

func (IndexStep) isStep() {}

// String returns the step in path syntax.
func (s IndexStep) String() string { return "[" + strconv.Itoa(s.Index) + "]" }

// KeyStep accesses a mapping entry by string key.
type KeyStep struct {
	Key string
}

func (KeyStep) isStep() {}

// String returns the step in path syntax.
func (s KeyStep) String() string { return "[" + strconv.Quote(s.Key) + "]" }

// SyntaxError reports a malformed path expression together with the byte
// position where parsing failed.
type SyntaxError struct {
	Path    string
	Pos     int
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("path %q: %s at position %d", e.Path, e.Message, e.Pos)
}

// parser is a hand-written recursive descent parser with one-token lookahead.
//
// Grammar:
//
//	path      := accessor | part ('.' part)*
//	part      := identifier accessor*
//	accessor  := '[' (signed-int | quoted-string | bare-string) ']'
//	identifier := [A-Za-z_][A-Za-z0-9_]*
//
// Bracket content may carry surrounding whitespace; unquoted bracket content
// up to ']' or whitespace is treated as a string key for backward
// compatibility with older definitions.
type parser struct {
	path string
	pos  int
}

// Parse parses a path expression into its access steps. Parsing is pure and
// deterministic; identical input always yields an identical step sequence.
// A successful parse never returns an empty step list. Results are memoized
// per process, so callers must not modify the returned slice.
func Parse(text string) ([]Step, error) {
	if cached, ok := parseCache.Get(text); ok {
		return cached, nil
	}

	steps, err := parseUncached(text)
	if err != nil {
		return nil, err
	}

	parseCache.Add(text, steps)

	return steps, nil
}

func parseUncached(text string) ([]Step, error) {
	if isBlank(text) {
		return nil, &SyntaxError{Path: text, Pos: 0, Message: "path expression cannot be empty"}
	}

	p := &parser{path: text}

	return p.parse()
}

func isBlank(text string) bool {
	for _, ch := range text {
		if ch != ' ' && ch != '\t' && ch != '\n' {
			return false
		}
	}

	return true
}

func (p *parser) parse() ([]Step, error) {
	var steps []Step

	// A path may start with a bare accessor, e.g. `[0].name`.
	if p.current() == '[' {
		accessor, err := p.parseAccessor()
		if err != nil {
			return nil, err
		}

		steps = append(steps, accessor)
	} else {
		partSteps, err := p.parsePart()
		if err != nil {
			return nil, err
		}

		steps = append(steps, partSteps...)
	}

	for p.current() == '.' {
		p.pos++

		partSteps, err := p.parsePart()
		if err != nil {
			return nil, err
		}

		steps = append(steps, partSteps...)
	}

	if p.pos < len(p.path) {
		return nil, p.errorf("unexpected character %q", p.current())
	}

	if len(steps) == 0 {
		return nil, p.errorf("no valid steps found")
	}

	return steps, nil
}

func (p *parser) parsePart() ([]Step, error) {
	identifier, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	steps := []Step{AttributeStep{Name: identifier}}

	for p.current() == '[' {
		accessor, accErr := p.parseAccessor()
		if accErr != nil {
			return nil, accErr
		}

		steps = append(steps, accessor)
	}

	return steps, nil
}

func (p *parser) parseIdentifier() (string, error) {
	if !isIdentifierStart(p.current()) {
		return "", p.errorf("expected identifier, got %q", p.current())
	}

	start := p.pos

	for p.pos < len(p.path) && isIdentifierChar(p.path[p.pos]) {
		p.pos++
	}

	return p.path[start:p.pos], nil
}

func (p *parser) parseAccessor() (Step, error) {
	if err := p.consume('['); err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if p.pos >= len(p.path) {
		return nil, p.errorf("unclosed bracket")
	}

	var (
		step Step
		err  error
	)

	switch ch := p.current(); {
	case ch == '-' || isDigit(ch):
		step, err = p.parseIndex()
	case ch == '\'' || ch == '"':
		step, err = p.parseQuotedKey()
	default:
		step, err = p.parseBareKey()
	}

	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if closeErr := p.consumeBracketClose(); closeErr != nil {
		return nil, closeErr
	}

	return step, nil
}

func (p *parser) parseIndex() (Step, error) {
	start := p.pos

	if p.current() == '-' {
		p.pos++
	}

	if !isDigit(p.current()) {
		return nil, p.errorf("expected digit, got %q", p.current())
	}

	for p.pos < len(p.path) && isDigit(p.path[p.pos]) {
		p.pos++
	}

	index, err := strconv.Atoi(p.path[start:p.pos])
	if err != nil {
		return nil, &SyntaxError{Path: p.path, Pos: start, Message: "invalid index " + strconv.Quote(p.path[start:p.pos])}
	}

	return IndexStep{Index: index}, nil
}

func (p *parser) parseQuotedKey() (Step, error) {
	quote := p.current()
	openPos := p.pos
	p.pos++

	start := p.pos

	for p.pos < len(p.path) && p.path[p.pos] != quote {
		p.pos++
	}

	if p.pos >= len(p.path) {
		return nil, &SyntaxError{Path: p.path, Pos: openPos, Message: "unclosed string"}
	}

	key := p.path[start:p.pos]
	p.pos++

	return KeyStep{Key: key}, nil
}

func (p *parser) parseBareKey() (Step, error) {
	start := p.pos

	for p.pos < len(p.path) && !isBareKeyTerminator(p.path[p.pos]) {
		p.pos++
	}

	if start == p.pos {
		return nil, p.errorf("empty key in bracket")
	}

	return KeyStep{Key: p.path[start:p.pos]}, nil
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.path) && isWhitespace(p.path[p.pos]) {
		p.pos++
	}
}

// current returns the current byte, or 0 past the end of input.
func (p *parser) current() byte {
	if p.pos >= len(p.path) {
		return 0
	}

	return p.path[p.pos]
}

func (p *parser) consume(expected byte) error {
	if p.current() != expected {
		return p.errorf("expected %q, got %q", expected, p.current())
	}

	p.pos++

	return nil
}

func (p *parser) consumeBracketClose() error {
	if p.current() == ']' {
		p.pos++

		return nil
	}

	if p.pos >= len(p.path) {
		return p.errorf("unclosed bracket")
	}

	return p.errorf("expected ']', got %q", p.current())
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Path: p.path, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func isIdentifierStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierChar(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

func isBareKeyTerminator(ch byte) bool {
	return ch == ']' || isWhitespace(ch)
}
