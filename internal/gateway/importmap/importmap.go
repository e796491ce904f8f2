package importmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedShape is returned for any payload whose top level is not an
// object with exactly the keys "imports" and "scopes".
var ErrMalformedShape = errors.New("import map: malformed shape")

// Entry is one specifier -> target pair. Entries keep the insertion order of
// the source JSON object; prefix resolution depends on it.
type Entry struct {
	Specifier string
	Target    string
}

type Entries []Entry

// Scope is a nested mapping applied to modules under the given URL prefix.
type Scope struct {
	Prefix  string
	Imports Entries
}

type ImportMap struct {
	Imports Entries
	Scopes  []Scope
}

// Empty returns the map a gateway starts with before any sender has posted.
func Empty() *ImportMap {
	return &ImportMap{Imports: Entries{}}
}

// Parse validates and decodes a posted import map. Validation covers the
// top-level shape only: the value must be an object containing exactly the
// two keys "imports" and "scopes"; payloads with extra keys, missing keys,
// or a non-object top level fail with ErrMalformedShape and are never
// coerced. Inner values are trusted strings and not deep-validated; entries
// whose target is not a string are dropped rather than failing the payload.
func Parse(raw []byte) (*ImportMap, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top level is null", ErrMalformedShape)
	}
	rawImports, hasImports := top["imports"]
	rawScopes, hasScopes := top["scopes"]
	if !hasImports || !hasScopes || len(top) != 2 {
		return nil, fmt.Errorf("%w: top-level keys must be exactly imports and scopes", ErrMalformedShape)
	}

	return &ImportMap{
		Imports: parseEntries(rawImports),
		Scopes:  parseScopes(rawScopes),
	}, nil
}

// parseEntries walks one JSON object with json.Decoder tokens so that key
// order survives decoding. encoding/json maps would lose it. The raw value
// comes out of an already-parsed document, so tokenizing cannot fail; a
// non-object value simply yields no entries, and a non-string target drops
// that entry.
func parseEntries(raw json.RawMessage) Entries {
	out := Entries{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return out
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return out
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := tok.(string)
		if !ok {
			return out
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		var target string
		if err := json.Unmarshal(value, &target); err != nil {
			continue
		}
		out = append(out, Entry{Specifier: key, Target: target})
	}
	return out
}

func parseScopes(raw json.RawMessage) []Scope {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	var out []Scope
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		prefix, ok := tok.(string)
		if !ok {
			return out
		}
		var nested json.RawMessage
		if err := dec.Decode(&nested); err != nil {
			return out
		}
		out = append(out, Scope{Prefix: prefix, Imports: parseEntries(nested)})
	}
	return out
}

// Resolve looks up a specifier against the imports mapping. Exact matches
// win; otherwise the FIRST key in insertion order that ends in "/" and
// prefixes the specifier wins, with the remainder appended to its target.
// This is deliberately first-match, not longest-prefix.
func (m *ImportMap) Resolve(specifier string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, e := range m.Imports {
		if e.Specifier == specifier {
			return e.Target, true
		}
	}
	for _, e := range m.Imports {
		if strings.HasSuffix(e.Specifier, "/") && strings.HasPrefix(specifier, e.Specifier) {
			return e.Target + specifier[len(e.Specifier):], true
		}
	}
	return "", false
}
