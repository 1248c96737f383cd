package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports malformed domain text. It identifies the offending line.
type ParseError struct {
	// Line is the 1-based line number.
	Line int
	// Text is the raw content of the offending line.
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax: line %d (%q): %s", e.Line, e.Text, e.Reason)
}

func errorf(line int, text, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Text: text, Reason: fmt.Sprintf(format, args...)}
}

// directives is ordered so that "preneg:" is tried before "pre:".
var directives = []struct {
	kind   Kind
	prefix string
}{
	{KindPredicates, "predicates:"},
	{KindConstants, "constants:"},
	{KindInitial, "initial:"},
	{KindGoal, "goal:"},
	{KindPreNeg, "preneg:"},
	{KindPre, "pre:"},
	{KindDel, "del:"},
	{KindAdd, "add:"},
}

// blockKinds are the four lines that must follow an action header, in order.
var blockKinds = [4]Kind{KindPre, KindPreNeg, KindDel, KindAdd}

// Classify returns the Kind of line and the remainder after its directive
// prefix. For action headers the remainder is the whole trimmed line.
func Classify(line string) (Kind, string) {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if strings.TrimSpace(trimmed) == "" {
		return KindBlank, ""
	}
	if trimmed[0] == '#' {
		return KindComment, trimmed
	}
	for _, d := range directives {
		if strings.HasPrefix(trimmed, d.prefix) {
			return d.kind, strings.TrimSpace(trimmed[len(d.prefix):])
		}
	}
	if startsUpper(trimmed) {
		return KindAction, trimmed
	}
	return KindUnknown, trimmed
}

// Parse converts domain text into a Tree.
//
// Postcondition: returns a non-nil Tree or a *ParseError; malformed lines are
// never skipped.
func Parse(text string) (*Tree, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	tree := &Tree{}
	seen := make(map[string]int)

	for i := 0; i < len(lines); i++ {
		n := i + 1
		kind, rest := Classify(lines[i])
		switch kind {
		case KindBlank:
		case KindComment:
			tree.Comments = append(tree.Comments, Comment{Text: rest, Line: n})
		case KindPredicates:
			preds, err := parsePredicates(rest, n, lines[i])
			if err != nil {
				return nil, err
			}
			tree.Predicates = append(tree.Predicates, preds...)
		case KindConstants:
			consts, err := parseConstants(rest, n, lines[i])
			if err != nil {
				return nil, err
			}
			tree.Constants = append(tree.Constants, consts...)
		case KindInitial:
			preds, err := parsePredicates(rest, n, lines[i])
			if err != nil {
				return nil, err
			}
			tree.Initial = append(tree.Initial, preds...)
		case KindGoal:
			preds, err := parsePredicates(rest, n, lines[i])
			if err != nil {
				return nil, err
			}
			tree.Goal = append(tree.Goal, preds...)
		case KindAction:
			block, err := parseAction(lines, i)
			if err != nil {
				return nil, err
			}
			if prev, dup := seen[block.Name]; dup {
				return nil, errorf(n, lines[i], "action %q already declared on line %d", block.Name, prev)
			}
			seen[block.Name] = n
			tree.Actions = append(tree.Actions, block)
			i += len(blockKinds)
		case KindPre, KindPreNeg, KindDel, KindAdd:
			return nil, errorf(n, lines[i], "%s line outside an action block", kind)
		default:
			return nil, errorf(n, lines[i], "unrecognized directive")
		}
	}
	return tree, nil
}

func parseAction(lines []string, start int) (ActionBlock, error) {
	header := lines[start]
	fields := strings.Fields(header)
	block := ActionBlock{Name: fields[0], Line: start + 1}
	if !validName(block.Name) {
		return ActionBlock{}, errorf(start+1, header, "invalid action name %q", block.Name)
	}

	params := make(map[string]struct{}, len(fields)-1)
	for _, p := range fields[1:] {
		if !validName(p) || startsUpper(p) {
			return ActionBlock{}, errorf(start+1, header, "action %q: parameter %q must be a lowercase variable", block.Name, p)
		}
		if _, dup := params[p]; dup {
			return ActionBlock{}, errorf(start+1, header, "action %q: duplicate parameter %q", block.Name, p)
		}
		params[p] = struct{}{}
		block.Params = append(block.Params, p)
	}

	lists := [4]*[]Predicate{&block.Pre, &block.PreNeg, &block.Del, &block.Add}
	for j, want := range blockKinds {
		idx := start + 1 + j
		if idx >= len(lines) {
			return ActionBlock{}, errorf(start+1, header, "action %q: block has %d lines, want 5", block.Name, j+1)
		}
		kind, rest := Classify(lines[idx])
		if kind != want {
			return ActionBlock{}, errorf(idx+1, lines[idx], "action %q: expected %s line, got %s", block.Name, want, kind)
		}
		preds, err := parsePredicates(rest, idx+1, lines[idx])
		if err != nil {
			return ActionBlock{}, err
		}
		*lists[j] = preds
	}
	return block, nil
}

func parseConstants(s string, line int, raw string) ([]string, error) {
	fields := strings.Fields(s)
	for _, c := range fields {
		if !validName(c) || !startsUpper(c) {
			return nil, errorf(line, raw, "constant %q must start with an uppercase letter", c)
		}
	}
	return fields, nil
}

// parsePredicates parses a space separated list of Name(arg, arg) tokens.
func parsePredicates(s string, line int, raw string) ([]Predicate, error) {
	var out []Predicate
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, errorf(line, raw, "expected Name(args) at %q", rest)
		}
		name := rest[:open]
		if !validName(name) {
			return nil, errorf(line, raw, "invalid predicate name %q", name)
		}
		end := strings.IndexByte(rest[open:], ')')
		if end < 0 {
			return nil, errorf(line, raw, "predicate %q: unterminated argument list", name)
		}
		end += open
		terms, err := parseTerms(rest[open+1:end])
		if err != nil {
			return nil, errorf(line, raw, "predicate %q: %v", name, err)
		}
		out = append(out, Predicate{Name: name, Terms: terms, Line: line})

		rest = rest[end+1:]
		if rest != "" && !unicode.IsSpace(rune(rest[0])) {
			return nil, errorf(line, raw, "predicate %q must be followed by a space", name)
		}
		rest = strings.TrimSpace(rest)
	}
	return out, nil
}

func parseTerms(args string) ([]Term, error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil
	}
	parts := strings.Split(args, ",")
	terms := make([]Term, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if !validName(name) {
			return nil, fmt.Errorf("invalid term %q", name)
		}
		terms = append(terms, Term{Name: name, Constant: startsUpper(name)})
	}
	return terms, nil
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' || r == '#'
	})
}
