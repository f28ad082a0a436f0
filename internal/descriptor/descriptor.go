// Package descriptor reads import descriptor files.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xll-gen/implib/internal/errs"
	"gopkg.in/yaml.v3"
)

// DefaultArchitecture is used when the descriptor does not name one.
// It is also the only architecture that needs an intermediate object file.
const DefaultArchitecture = "x86"

// Descriptor is the import description parsed from an imports file, e.g.
//
//	{'dll_name': 'user32.dll', 'imports': ['AddClipboardFormatListener@4'], 'architecture': 'x86'}
type Descriptor struct {
	// DLLName is the logical name of the DLL the import library binds to.
	DLLName string `yaml:"dll_name"`
	// Imports lists the exported symbols, optionally carrying an @N stdcall decoration.
	Imports []string `yaml:"imports"`
	// Architecture is passed to the librarian as /machine:<Architecture>.
	Architecture string `yaml:"architecture"`
}

const (
	keyDLLName      = "dll_name"
	keyImports      = "imports"
	keyArchitecture = "architecture"
)

// Load reads, parses, defaults and validates the descriptor at path.
// Every failure is reported as an errs.KindDescriptor error.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Descriptor(path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, errs.Descriptor(path, err)
	}

	ApplyDefaults(d)

	if err := Validate(d); err != nil {
		return nil, errs.Descriptor(path, err)
	}
	return d, nil
}

// tupleValue matches a key whose value opens a parenthesized tuple, e.g. 'imports': (
var tupleValue = regexp.MustCompile(`['"]([A-Za-z_]\w*)['"]\s*:\s*\(`)

// Parse decodes a descriptor from its literal form.
// Only quoted strings, lists and a single mapping are accepted; nothing is coerced.
func Parse(data []byte) (*Descriptor, error) {
	if m := tupleValue.FindSubmatch(data); m != nil {
		return nil, fmt.Errorf("%s must be a [...] list, tuples are not supported", m[1])
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("descriptor is empty")
		}
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("descriptor is empty")
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("failed to parse descriptor: trailing content after the mapping: %w", err)
		}
		return nil, fmt.Errorf("failed to parse descriptor: trailing content after the mapping (line %d)", extra.Line)
	}

	root := doc.Content[0]
	if err := checkLiteral(root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: descriptor must be a mapping", root.Line)
	}

	var d Descriptor
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]

		key, err := stringValue(keyNode, "key")
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
		}
		seen[key] = true

		switch key {
		case keyDLLName:
			if d.DLLName, err = stringValue(valNode, key); err != nil {
				return nil, err
			}
		case keyArchitecture:
			if d.Architecture, err = stringValue(valNode, key); err != nil {
				return nil, err
			}
		case keyImports:
			if d.Imports, err = stringList(valNode, key); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("line %d: unknown key %q (allowed: %s, %s, %s)", keyNode.Line, key, keyDLLName, keyImports, keyArchitecture)
		}
	}

	if !seen[keyDLLName] {
		return nil, fmt.Errorf("missing key %q", keyDLLName)
	}
	if !seen[keyImports] {
		return nil, fmt.Errorf("missing key %q", keyImports)
	}
	return &d, nil
}

// ApplyDefaults sets default values for fields that are missing.
func ApplyDefaults(d *Descriptor) {
	if d.Architecture == "" {
		d.Architecture = DefaultArchitecture
	}
}

// Validate checks that the descriptor can be turned into artifact names and tool arguments.
// Symbol names themselves are not checked beyond being non-empty.
func Validate(d *Descriptor) error {
	if d.DLLName == "" {
		return fmt.Errorf("%s cannot be empty", keyDLLName)
	}
	if d.DLLName == "." || d.DLLName == ".." || strings.ContainsAny(d.DLLName, `/\:`) || filepath.Base(d.DLLName) != d.DLLName {
		return fmt.Errorf("%s %q must be a plain file name", keyDLLName, d.DLLName)
	}
	if strings.TrimSpace(d.Architecture) == "" {
		return fmt.Errorf("%s cannot be empty", keyArchitecture)
	}
	for i, name := range d.Imports {
		if name == "" {
			return fmt.Errorf("%s[%d] cannot be empty", keyImports, i)
		}
	}
	return nil
}

// NeedsObject reports whether the librarian needs a compiled stub object to bind
// decorated names. Only x86 mangles stdcall names with an @N suffix.
func (d *Descriptor) NeedsObject() bool {
	return d.Architecture == DefaultArchitecture
}

// BaseName returns the DLL name without its extension.
func (d *Descriptor) BaseName() string {
	return strings.TrimSuffix(d.DLLName, filepath.Ext(d.DLLName))
}

// checkLiteral rejects YAML features that have no literal-value equivalent.
func checkLiteral(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		return fmt.Errorf("line %d: aliases are not allowed", n.Line)
	}
	if n.Anchor != "" {
		return fmt.Errorf("line %d: anchors are not allowed", n.Line)
	}
	if n.Style&yaml.TaggedStyle != 0 {
		return fmt.Errorf("line %d: explicit tags are not allowed", n.Line)
	}
	for _, c := range n.Content {
		if err := checkLiteral(c); err != nil {
			return err
		}
	}
	return nil
}

// stringValue accepts only quoted scalars: bare words such as None or Bar@4 are not literals.
func stringValue(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", fmt.Errorf("line %d: %s must be a string, got %s", n.Line, what, describe(n))
	}
	if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
		return "", fmt.Errorf("line %d: %s must be a quoted string, got bare %q", n.Line, what, n.Value)
	}
	return n.Value, nil
}

func stringList(n *yaml.Node, what string) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %s must be a list of strings, got %s", n.Line, what, describe(n))
	}
	out := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		s, err := stringValue(item, fmt.Sprintf("%s[%d]", what, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return strings.TrimPrefix(n.ShortTag(), "!!")
	default:
		return "unsupported value"
	}
}
