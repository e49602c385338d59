package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a single validation check. The set is closed: Required, Email,
// Pattern and Predicate.
type Rule interface {
	// Name identifies the rule in snapshots and prompts.
	Name() string
	isRule()
}

// Validator is the ordered list of rules configured on a field. A nil
// Validator means the field is optional and always valid.
type Validator []Rule

// Rules normalises rules into a Validator, dropping nil entries.
func Rules(rules ...Rule) Validator {
	out := make(Validator, 0, len(rules))
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// Names returns the rule names in order.
func (v Validator) Names() []string {
	if len(v) == 0 {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, rule := range v {
		out = append(out, rule.Name())
	}
	return out
}

// Required passes when the value is defined (see IsDefined). Tag keeps the
// keyword it was declared with; every keyword other than "email" is a
// presence check.
type Required struct {
	Tag string
}

func (r Required) Name() string {
	if r.Tag == "" {
		return TagRequired
	}
	return r.Tag
}

func (Required) isRule() {}

// Email passes when the value matches the fixed email pattern.
type Email struct{}

func (Email) Name() string { return TagEmail }

func (Email) isRule() {}

// Matcher is satisfied by *regexp.Regexp.
type Matcher interface {
	MatchString(s string) bool
}

// Pattern passes when Matcher accepts the value's string form.
type Pattern struct {
	Matcher Matcher
}

func (p Pattern) Name() string {
	if s, ok := p.Matcher.(fmt.Stringer); ok {
		return "pattern:" + s.String()
	}
	return "pattern"
}

func (Pattern) isRule() {}

// Predicate passes when the function returns true for the value.
type Predicate func(value any) bool

func (Predicate) Name() string { return "predicate" }

func (Predicate) isRule() {}

const (
	TagEmail    = "email"
	TagRequired = "required"
)

// Tag converts a keyword into a rule: "email" becomes Email, anything else
// a Required check.
func Tag(keyword string) Rule {
	if keyword == TagEmail {
		return Email{}
	}
	return Required{Tag: keyword}
}

// CompilePattern builds a Pattern rule from a regular expression.
func CompilePattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("form: compile pattern: %w", err)
	}
	return Pattern{Matcher: re}, nil
}

// MustPattern is CompilePattern that panics on invalid expressions.
func MustPattern(expr string) Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

var emailPattern = regexp.MustCompile("^[-!#$%&'*+/0-9=?A-Z^_`a-z{|}~]+(.[-!#$%&'*+/0-9=?A-Z^_`a-z{|}~]+)*@[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$")

// lineTerminators may not appear anywhere in an address.
const lineTerminators = "\n\r\u2028\u2029"

// MatchEmail reports whether s is an email address: at most 254
// characters, a local part of at most 64 characters, and the character
// classes of RFC 5321.
func MatchEmail(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 1 || n > 254 || strings.ContainsAny(s, lineTerminators) {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at < 1 || utf8.RuneCountInString(s[:at]) > 64 {
		return false
	}
	return emailPattern.MatchString(s)
}

// check evaluates one rule. Panics raised by caller supplied predicates or
// matchers are converted into a *RuleError.
func check(name string, rule Rule, value any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &RuleError{Field: name, Rule: ruleName(rule), Cause: r}
		}
	}()

	switch r := rule.(type) {
	case Email:
		return MatchEmail(stringify(value)), nil
	case Required:
		return IsDefined(value), nil
	case Predicate:
		if r == nil {
			return false, &RuleError{Field: name, Rule: r.Name(), Cause: "nil predicate"}
		}
		return r(value), nil
	case Pattern:
		if r.Matcher == nil {
			return false, &RuleError{Field: name, Rule: r.Name(), Cause: "nil matcher"}
		}
		return r.Matcher.MatchString(stringify(value)), nil
	default:
		return false, &RuleError{Field: name, Rule: ruleName(rule), Cause: fmt.Sprintf("unknown rule %T", rule)}
	}
}

func ruleName(rule Rule) string {
	if rule == nil {
		return "<nil>"
	}
	return rule.Name()
}

// stringify renders a value the way pattern rules see it. nil becomes the
// empty string.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
