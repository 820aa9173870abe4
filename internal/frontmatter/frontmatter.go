// Package frontmatter splits markdown documents into a `---` delimited header
// and a body, and reads the header as ordered key: value fields.
package frontmatter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes the header block.
const Delimiter = "---"

// ErrNoFrontmatter is returned when a document does not open with a header
// block or never closes it.
var ErrNoFrontmatter = errors.New("document has no frontmatter")

// Document is a markdown document split at its frontmatter delimiters.
type Document struct {
	Header string
	Body   string
	Fields Fields
}

// Split separates content into header and body. The content must start with
// the delimiter and contain it at least twice.
func Split(content string) (*Document, error) {
	if !strings.HasPrefix(content, Delimiter) {
		return nil, fmt.Errorf("%w: content does not start with %q", ErrNoFrontmatter, Delimiter)
	}
	if n := strings.Count(content, Delimiter); n < 2 {
		return nil, fmt.Errorf("%w: found %d %q delimiter(s), need 2", ErrNoFrontmatter, n, Delimiter)
	}

	// Leading delimiter produces an empty first part.
	parts := strings.SplitN(content, Delimiter, 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: header is not closed", ErrNoFrontmatter)
	}

	return &Document{
		Header: parts[1],
		Body:   parts[2],
		Fields: ParseHeader(parts[1]),
	}, nil
}

// Decode unmarshals the header as YAML into v. Decoding is strict: keys
// without a matching field in v are an error. An empty header leaves v
// untouched.
func (d *Document) Decode(v interface{}) error {
	dec := yaml.NewDecoder(strings.NewReader(d.Header))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode frontmatter: %w", err)
	}
	return nil
}

// Field is a single key: value line from a header.
type Field struct {
	Key   string
	Value string
	Line  int
}

// Fields holds header fields in document order.
type Fields []Field

// ParseHeader reads key: value pairs line by line, splitting on the first
// colon. Lines without a colon are ignored.
func ParseHeader(header string) Fields {
	var fields Fields
	for i, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields = append(fields, Field{
			Key:   key,
			Value: strings.TrimSpace(value),
			Line:  i,
		})
	}
	return fields
}

// Lookup returns the first field with the given key.
func (f Fields) Lookup(key string) (Field, bool) {
	for _, field := range f {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Has reports whether key appears in the header.
func (f Fields) Has(key string) bool {
	_, ok := f.Lookup(key)
	return ok
}

// Get returns the value for key, or "" when absent.
func (f Fields) Get(key string) string {
	field, _ := f.Lookup(key)
	return field.Value
}

// IsList reports whether the value for key uses bracketed list syntax.
func (f Fields) IsList(key string) bool {
	v := f.Get(key)
	return strings.Contains(v, "[") && strings.Contains(v, "]")
}

// List returns the items of a bracketed list value. A bare value is treated
// as a comma-separated list.
func (f Fields) List(key string) []string {
	return ParseList(f.Get(key))
}

// ParseList parses `[a, b, "c"]` or `a, b` into its trimmed, unquoted items.
func ParseList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
