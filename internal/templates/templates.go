// Package templates holds the sources of the text artifacts written into the working area.
package templates

import (
	"embed"
	"fmt"
	"text/template"
)

//go:embed *.tmpl
var templatesFS embed.FS

// Template names.
const (
	// Stubs renders the MASM listing with one empty PROC/ENDP pair per import.
	Stubs = "stubs.asm.tmpl"
	// Definition renders the module-definition file with the undecorated exports.
	Definition = "exports.def.tmpl"
)

// Get returns the content of the specified template file.
func Get(name string) (string, error) {
	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("template %s not found: %w", name, err)
	}
	return string(content), nil
}

// Load parses the specified template with funcMap installed.
func Load(name string, funcMap template.FuncMap) (*template.Template, error) {
	content, err := Get(name)
	if err != nil {
		return nil, err
	}
	if funcMap == nil {
		funcMap = template.FuncMap{}
	}
	return template.New(name).Funcs(funcMap).Parse(content)
}
