package broute

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Rule is a compiled route rule: literal text interleaved with "<name>" or "<type:name>" placeholders. The
// compiled pattern is anchored at both ends and case-sensitive. A Rule is immutable and safe for
// concurrent use.
type Rule struct {
	src   string
	segs  []ruleSegment
	re    *regexp.Regexp
	names []string
}

// ruleSegment is either a literal (name is empty) or a placeholder.
type ruleSegment struct {
	literal string
	name    string
	typ     string
	frag    *regexp.Regexp // anchored, validates values during reverse construction
	group   int
}

// CompileRule parses a rule into a matcher. Placeholders resolve their type through reg. When reg is nil
// every placeholder uses [DefaultFragment] and type names are not checked. All failures are reported as a
// [*CompileError].
func CompileRule(rule string, reg *TypeRegistry) (*Rule, error) {
	segs, err := parseRule(rule)
	if err != nil {
		return nil, err
	}

	var (
		pat   strings.Builder
		seen  = make(map[string]struct{}, len(segs))
		names []string
	)

	pat.WriteString("^")

	for i, seg := range segs {
		if seg.name == "" {
			pat.WriteString(regexp.QuoteMeta(seg.literal))
			continue
		}

		if _, dup := seen[seg.name]; dup {
			return nil, &CompileError{Rule: rule, Offset: seg.group, Err: errors.Wrapf(ErrDuplicateName, "%q", seg.name)}
		}
		seen[seg.name] = struct{}{}

		frag := DefaultFragment
		if reg != nil {
			if frag, err = reg.Lookup(seg.typ); err != nil {
				return nil, &CompileError{Rule: rule, Offset: seg.group, Err: err}
			}
		}

		if segs[i].frag, err = regexp.Compile(`^(?:` + frag + `)$`); err != nil {
			return nil, &CompileError{Rule: rule, Offset: seg.group, Err: err}
		}

		pat.WriteString(`(?P<` + seg.name + `>(?:` + frag + `))`)
		names = append(names, seg.name)
	}

	pat.WriteString("$")

	re, err := regexp.Compile(pat.String())
	if err != nil {
		return nil, &CompileError{Rule: rule, Err: err}
	}

	for i := range segs {
		if segs[i].name != "" {
			segs[i].group = re.SubexpIndex(segs[i].name)
		}
	}

	return &Rule{src: rule, segs: segs, re: re, names: names}, nil
}

// MustCompileRule is like [CompileRule] but panics on error.
func MustCompileRule(rule string, reg *TypeRegistry) *Rule {
	r, err := CompileRule(rule, reg)
	if err != nil {
		panic("broute: " + err.Error())
	}

	return r
}

// parseRule splits the rule into literal and placeholder segments. The group field of placeholders
// temporarily holds the offset of the "<" for error reporting.
func parseRule(rule string) ([]ruleSegment, error) {
	var segs []ruleSegment

	rest, offset := rule, 0
	for rest != "" {
		open := strings.IndexAny(rest, "<>")
		if open < 0 {
			segs = append(segs, ruleSegment{literal: rest})
			break
		}

		if rest[open] == '>' {
			return nil, &CompileError{Rule: rule, Offset: offset + open, Err: errors.Wrap(ErrMalformedPlaceholder, "unexpected '>'")}
		}

		if open > 0 {
			segs = append(segs, ruleSegment{literal: rest[:open]})
		}

		end := strings.IndexAny(rest[open+1:], "<>")
		if end < 0 || rest[open+1+end] != '>' {
			return nil, &CompileError{Rule: rule, Offset: offset + open, Err: errors.Wrap(ErrMalformedPlaceholder, "unterminated '<'")}
		}

		typ, name, err := parsePlaceholder(rest[open+1 : open+1+end])
		if err != nil {
			return nil, &CompileError{Rule: rule, Offset: offset + open, Err: err}
		}

		segs = append(segs, ruleSegment{name: name, typ: typ, group: offset + open})

		consumed := open + 1 + end + 1
		rest, offset = rest[consumed:], offset+consumed
	}

	return segs, nil
}

// parsePlaceholder parses the text between "<" and ">".
func parsePlaceholder(tok string) (typ, name string, err error) {
	typ, name, typed := strings.Cut(tok, ":")
	if !typed {
		typ, name = DefaultType, tok
	}

	if !isIdent(name) || !isIdent(typ) {
		return "", "", errors.Wrapf(ErrMalformedPlaceholder, "<%s>", tok)
	}

	return typ, name, nil
}

// String returns the rule as it was written.
func (r *Rule) String() string { return r.src }

// Pattern returns the source of the compiled, anchored regular expression.
func (r *Rule) Pattern() string { return r.re.String() }

// Names returns the placeholder names in source order.
func (r *Rule) Names() []string { return append([]string(nil), r.names...) }

// MatchPath matches the full path against the rule and returns the captured parameters.
func (r *Rule) MatchPath(path string) (map[string]string, bool) {
	m := r.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(map[string]string, len(r.names))
	for _, seg := range r.segs {
		if seg.name != "" {
			params[seg.name] = m[seg.group]
		}
	}

	return params, true
}

// Build substitutes params into the rule's template. Every placeholder needs a value that is valid for
// its type, extra parameters are ignored.
func (r *Rule) Build(params map[string]string) (string, error) {
	var b strings.Builder
	for _, seg := range r.segs {
		if seg.name == "" {
			b.WriteString(seg.literal)
			continue
		}

		val, ok := params[seg.name]
		if !ok {
			return "", errors.Wrapf(ErrMissingParam, "%q for rule %q", seg.name, r.src)
		}

		if !seg.frag.MatchString(val) {
			return "", errors.Wrapf(ErrInvalidParam, "%q=%q is not a valid %s", seg.name, val, seg.typ)
		}

		b.WriteString(escapeParam(val))
	}

	return b.String(), nil
}

// escapeParam escapes a value for use in a path while keeping slashes readable. The router matches on
// the decoded path so both forms match the same rule.
func escapeParam(v string) string {
	return strings.ReplaceAll(url.PathEscape(v), "%2F", "/")
}
