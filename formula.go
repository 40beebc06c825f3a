package bootseq

import (
	"regexp"
	"strings"
)

// mode of operation for a group: '>' for serial-, ':' for concurrent steps.
type mode rune

// Mode definitions for step execution order.
const (
	serial   mode = '>'
	parallel mode = ':'
)

const parseErrMsg = "parse error"

// ParseError represents a problem with a sequence formula.
type ParseError struct {
	message, details string
}

// newParseError is a convenience function for creating a new ParseError.
func newParseError(details string) *ParseError {
	return &ParseError{parseErrMsg, details}
}

// Error satisfies the error interface by returning an error message with parse error details.
func (e *ParseError) Error() string {
	return e.message + ": " + e.details
}

var _ error = &ParseError{}

// A step is either a single component name or a group of sub-steps joined by one mode.
type step struct {
	name  string
	mode  mode
	steps []*step
}

// String draws the formula diagram of the step. No whitespace is present in the diagram and groups
// are wrapped in parentheses.
// Ex: "(aaa:(bbb>ccc))"
func (s *step) String() string {
	if len(s.steps) == 0 {
		return s.name
	}

	names := make([]string, len(s.steps))
	for i, st := range s.steps {
		names[i] = st.String()
	}
	return "(" + strings.Join(names, string(s.mode)) + ")"
}

// entries returns the names that begin the step: the head of a serial group, or every member of a
// parallel group.
func (s *step) entries() []string {
	if len(s.steps) == 0 {
		return []string{s.name}
	}
	if s.mode == serial {
		return s.steps[0].entries()
	}
	var out []string
	for _, st := range s.steps {
		out = append(out, st.entries()...)
	}
	return out
}

// exits returns the names that end the step: the tail of a serial group, or every member of a
// parallel group.
func (s *step) exits() []string {
	if len(s.steps) == 0 {
		return []string{s.name}
	}
	if s.mode == serial {
		return s.steps[len(s.steps)-1].exits()
	}
	var out []string
	for _, st := range s.steps {
		out = append(out, st.exits()...)
	}
	return out
}

// edges adds the dependencies implied by the step to deps: in a serial group, every entry of a step
// depends on every exit of the step before it.
func (s *step) edges(deps map[string][]string) {
	for i, st := range s.steps {
		st.edges(deps)
		if s.mode != serial || i == 0 {
			continue
		}
		prev := s.steps[i-1].exits()
		for _, name := range st.entries() {
			deps[name] = append(deps[name], prev...)
		}
	}
}

// names appends every component name of the step in order of appearance.
func (s *step) names(out []string) []string {
	if len(s.steps) == 0 {
		return append(out, s.name)
	}
	for _, st := range s.steps {
		out = st.names(out)
	}
	return out
}

// Formula is a parsed sequence formula such as "(db : cache) > api > (web : worker)". A colon joins
// components that may start concurrently; a right-arrow makes everything on its right start after
// everything on its left. Parentheses group sub-formulas.
type Formula struct {
	root *step
}

// Names returns every component name of the formula in order of appearance.
func (f Formula) Names() []string {
	if f.root == nil {
		return nil
	}
	return f.root.names(nil)
}

// Dependencies returns, per component name, the names it has to start after. Components without
// dependencies are absent from the map.
func (f Formula) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	if f.root != nil {
		f.root.edges(deps)
	}
	return deps
}

// String returns the formula without whitespace.
func (f Formula) String() string {
	if f.root == nil {
		return ""
	}
	return f.root.String()
}

var whitespace = regexp.MustCompile(`\s+`)

func unspace(seq string) string {
	return whitespace.ReplaceAllLiteralString(seq, "")
}

// ParseFormula parses a sequence formula. It returns an EmptySequenceError for an empty formula and a
// *ParseError for illegal characters, unmatched parentheses, mixed operators within one group and
// names that appear more than once.
func ParseFormula(form string) (Formula, error) {
	form = unspace(form)
	if form == "" {
		return Formula{}, EmptySequenceError(form)
	}

	p := parser{form: []rune(form)}
	root, err := p.group()
	if err != nil {
		return Formula{}, err
	}
	if p.pos < len(p.form) {
		return Formula{}, newParseError("unmatched parenthesis")
	}

	seen := make(map[string]bool)
	for _, name := range root.names(nil) {
		if seen[name] {
			return Formula{}, newParseError("duplicate service name: \"" + name + "\"")
		}
		seen[name] = true
	}

	return Formula{root: root}, nil
}

// parser is a recursive descent parser over an unspaced formula.
type parser struct {
	form []rune
	pos  int
}

// group parses terms joined by a single kind of operator, up to a closing parenthesis or the end of
// the formula. A group of one term collapses into that term.
func (p *parser) group() (*step, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}

	grp := &step{mode: serial, steps: []*step{first}}
	var op mode
	for p.pos < len(p.form) && p.form[p.pos] != ')' {
		r := mode(p.form[p.pos])
		if r != serial && r != parallel {
			return nil, newParseError("invalid character(s) in service name")
		}
		if op != 0 && r != op {
			return nil, newParseError("mixed operators in group, use parentheses")
		}
		op = r
		p.pos++

		next, err := p.term()
		if err != nil {
			return nil, err
		}
		grp.steps = append(grp.steps, next)
	}

	if len(grp.steps) == 1 {
		return first, nil
	}
	grp.mode = op
	return grp, nil
}

// term parses a single name or a parenthesized group.
func (p *parser) term() (*step, error) {
	if p.pos >= len(p.form) {
		return nil, newParseError("unexpected end of sequence")
	}

	if p.form[p.pos] == '(' {
		p.pos++
		grp, err := p.group()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.form) || p.form[p.pos] != ')' {
			return nil, newParseError("unmatched parenthesis")
		}
		p.pos++
		return grp, nil
	}

	start := p.pos
	for p.pos < len(p.form) && isNameRune(p.form[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		if r := p.form[p.pos]; r == ')' || r == ':' || r == '>' {
			return nil, newParseError("missing service name")
		}
		return nil, newParseError("invalid character(s) in service name")
	}
	return &step{name: string(p.form[start:p.pos])}, nil
}

// isNameRune allows ranges 0-9, a-z, A-Z, underscore and dash.
func isNameRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '-'
}
