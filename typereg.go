package broute

import (
	"regexp"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DefaultType is the type a placeholder without an explicit type resolves to.
const DefaultType = "string"

// DefaultFragment is used for every placeholder when rules are compiled without a registry.
const DefaultFragment = `\w+`

// TypeRegistry maps placeholder type names to the pattern fragment that validates and extracts the raw
// text of a parameter. It is only consulted while rules are compiled, never during dispatch.
type TypeRegistry struct {
	frags map[string]string
}

// NewTypeRegistry inits an empty registry. Note that an empty registry does not even know the
// [DefaultType], use [DefaultTypes] for a registry with the common types.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{frags: make(map[string]string)}
}

// DefaultTypes returns a registry with the commonly used placeholder types:
//
//   - string: one or more word characters (also used for "<name>")
//   - int: one or more digits
//   - float: digits, a dot and digits
//   - slug: letters, digits, underscores and dashes
//   - uuid: a canonical, hyphenated uuid
//   - path: anything, including slashes
func DefaultTypes() *TypeRegistry {
	reg := NewTypeRegistry()
	reg.MustRegister(DefaultType, DefaultFragment)
	reg.MustRegister("int", `\d+`)
	reg.MustRegister("float", `\d+\.\d+`)
	reg.MustRegister("slug", `[A-Za-z0-9_-]+`)
	reg.MustRegister("uuid", `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	reg.MustRegister("path", `.+`)

	return reg
}

// Register adds a named type. The fragment must be a valid regular expression on its own. Types cannot
// be replaced or removed once registered.
func (tr *TypeRegistry) Register(name, fragment string) error {
	if !isIdent(name) {
		return errors.Newf("invalid type name %q", name)
	}

	if _, exists := tr.frags[name]; exists {
		return errors.Newf("type %q already registered", name)
	}

	if _, err := regexp.Compile(fragment); err != nil {
		return errors.Wrapf(err, "invalid fragment for type %q", name)
	}

	tr.frags[name] = fragment

	return nil
}

// MustRegister is a convenience method that panics if registering the type fails.
func (tr *TypeRegistry) MustRegister(name, fragment string) {
	if err := tr.Register(name, fragment); err != nil {
		panic("broute: " + err.Error())
	}
}

// Lookup returns the fragment for the named type.
func (tr *TypeRegistry) Lookup(name string) (string, error) {
	frag, ok := tr.frags[name]
	if !ok {
		return "", errors.Wrapf(ErrUndefinedType, "%q, got: %v", name, tr.Names())
	}

	return frag, nil
}

// Names returns the registered type names in sorted order.
func (tr *TypeRegistry) Names() []string {
	names := lo.Keys(tr.frags)
	slices.Sort(names)

	return names
}

// isIdent reports whether s can serve as a placeholder or type name. Names end up as regexp group
// names so they are restricted to word characters not starting with a digit.
func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
