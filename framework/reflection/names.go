package reflection

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedName is returned when a type name cannot be parsed.
	ErrMalformedName = errors.New("reflection: malformed type name")

	// ErrNotOpen is returned when a closed type is used where an open
	// generic template is required.
	ErrNotOpen = errors.New("reflection: not an open generic template")

	// ErrNotClosed is returned when an open template is used as a type argument.
	ErrNotClosed = errors.New("reflection: type argument is not closed")
)

// ArityError is returned when the number of type arguments does not match the
// number of type parameters of a template.
type ArityError struct {
	Template Descriptor
	Want     int
	Got      int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return "reflection: " + e.Template.String() + " takes " + strconv.Itoa(e.Want) +
		" type argument(s), got " + strconv.Itoa(e.Got)
}

// TypeKey returns the package-qualified name of t. Generic instantiations
// keep Go's runtime naming, e.g. "example.com/coffee.BeanService[example.com/coffee.Catimor]".
func TypeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// pkgPrefix matches the import path directories in front of a package name.
var pkgPrefix = regexp.MustCompile(`(?:[A-Za-z0-9_.\-~]+/)+`)

// Shorten reduces every package path in a key to its last element.
//
//	Shorten("github.com/km-arc/go-ioc/examples/coffee.Catimor")  // "coffee.Catimor"
func Shorten(key string) string {
	return pkgPrefix.ReplaceAllString(key, "")
}

// splitGeneric splits "base[a,b]" into base and its top-level arguments.
// Unnamed composite types ("[]int", "map[string]int") are not generic.
func splitGeneric(key string) (string, []string, bool) {
	lb := strings.IndexByte(key, '[')
	if lb <= 0 || !strings.HasSuffix(key, "]") {
		return "", nil, false
	}
	base := key[:lb]
	if base == "map" || strings.HasPrefix(base, "*") || strings.ContainsAny(base, " ({") {
		return "", nil, false
	}

	inner := key[lb+1 : len(key)-1]
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth < 0 {
				return "", nil, false
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return base, args, true
}
