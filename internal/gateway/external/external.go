package external

import (
	"regexp"
	"strings"
)

// Predicate decides whether a specifier should be treated as external, i.e.
// left for the browser's import map instead of being bundled.
type Predicate func(specifier, importer string, isResolved bool) bool

// Merge combines any number of external options into one predicate that
// matches as soon as any option matches. Options may be:
//   - string: exact specifier match
//   - *regexp.Regexp: pattern match against the specifier
//   - []string, []*regexp.Regexp, []any: match if any element matches
//   - Predicate or func(string, string, bool) bool: delegated to directly
//
// Unknown option types never match. Pure and build-time only.
func Merge(options ...any) Predicate {
	return func(specifier, importer string, isResolved bool) bool {
		for _, opt := range options {
			if matchOption(opt, specifier, importer, isResolved) {
				return true
			}
		}
		return false
	}
}

func matchOption(opt any, specifier, importer string, isResolved bool) bool {
	switch v := opt.(type) {
	case nil:
		return false
	case string:
		return v == specifier
	case *regexp.Regexp:
		return v != nil && v.MatchString(specifier)
	case []string:
		for _, s := range v {
			if s == specifier {
				return true
			}
		}
	case []*regexp.Regexp:
		for _, re := range v {
			if re != nil && re.MatchString(specifier) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if matchOption(item, specifier, importer, isResolved) {
				return true
			}
		}
	case Predicate:
		return v != nil && v(specifier, importer, isResolved)
	case func(string, string, bool) bool:
		return v != nil && v(specifier, importer, isResolved)
	}
	return false
}

// BareSpecifier reports whether s is a bare module identifier: not a
// relative or absolute path and not a URL. Bare identifiers are the ones the
// browser's import map is responsible for.
func BareSpecifier(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return false
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "data:") {
		return false
	}
	return true
}

// PrefixPredicate builds a bare-identifier predicate restricted to the given
// specifier prefixes, e.g. only "@team/" packages. An empty prefix list
// accepts every bare specifier.
func PrefixPredicate(prefixes []string) func(string) bool {
	if len(prefixes) == 0 {
		return BareSpecifier
	}
	return func(s string) bool {
		if !BareSpecifier(s) {
			return false
		}
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}
