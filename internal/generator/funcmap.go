package generator

import (
	"strings"
	"text/template"
)

// decorationDelimiter separates a stdcall symbol from its argument byte count, e.g. "Excel4v@12".
const decorationDelimiter = "@"

// Undecorate returns name with its calling-convention decoration removed: everything from
// the first "@" on is dropped. Names without "@" are returned unchanged.
func Undecorate(name string) string {
	before, _, _ := strings.Cut(name, decorationDelimiter)
	return before
}

// funcMap is installed on every artifact template.
var funcMap = template.FuncMap{
	"undecorate": Undecorate,
}
