package inject

import (
	"regexp"
	"strings"
)

// importLine matches one top-level static import statement on a single line,
// with or without bindings: `import './x.js'`, `import a from "b"`,
// `import { a, b } from 'mod';`. A deliberate line-by-line heuristic for the
// one bootstrap file this transform targets; not a parser, and not to be
// generalized to arbitrary source.
var importLine = regexp.MustCompile(`^\s*import\s+(?:[^'"]+\s+from\s+)?['"][^'"]+['"];?\s*(?://.*)?$`)

// Sender splices the sender script into the dev client's bootstrap source so
// it runs before the rest of the client runtime. The sender text goes
// immediately after the LAST top-level import line; when the source has no
// import line at all it is prepended. Existing static imports are left
// untouched.
func Sender(source, sender string) string {
	lines := strings.Split(source, "\n")
	last := -1
	for i, line := range lines {
		if importLine.MatchString(line) {
			last = i
		}
	}
	if last < 0 {
		return sender + "\n" + source
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, sender)
	out = append(out, lines[last+1:]...)
	return strings.Join(out, "\n")
}
