// Package parser extracts structured metadata from raw Markdown content:
// YAML frontmatter, wikilinks, tags, headings, and word counts. Everything
// here is a pure function over the input text; indexing the same content
// twice yields identical results.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/halvard/synapse/internal/apperr"
)

// ValueKind discriminates the frontmatter value variants Synapse keeps for
// user-defined keys.
type ValueKind uint8

// Supported frontmatter value shapes.
const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueSequence
)

// Value is a tagged variant for a frontmatter value.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Seq  []Value
}

// Field is one user-defined frontmatter key with its value. Fields keep
// document order, so Extra is an ordered mapping.
type Field struct {
	Key   string
	Value Value
}

// Frontmatter is the parsed leading YAML block of a note. Recognized keys
// are typed; everything else lands in Extra in document order.
type Frontmatter struct {
	Title    string
	Tags     []string
	Created  string
	Modified string
	Aliases  []string
	Extra    []Field
}

// ParseFrontmatter parses the leading YAML block of content. A block must
// start at the very first byte with "---" and be closed by a line starting
// with "---"; anything else means no frontmatter. Malformed YAML returns a
// zero Frontmatter together with an error wrapping apperr.ErrParse — callers
// treat that as "no frontmatter", never as fatal.
func ParseFrontmatter(content string) (Frontmatter, error) {
	block, _, ok := splitFrontmatter(content)
	if !ok {
		return Frontmatter{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return Frontmatter{}, fmt.Errorf("parser: frontmatter yaml: %w", apperr.ErrParse)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Frontmatter{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Frontmatter{}, fmt.Errorf("parser: frontmatter is not a mapping: %w", apperr.ErrParse)
	}

	var fm Frontmatter
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]
		switch key {
		case "title":
			fm.Title = scalarString(val)
		case "tags":
			fm.Tags = stringList(val)
		case "created":
			fm.Created = scalarString(val)
		case "modified":
			fm.Modified = scalarString(val)
		case "aliases":
			fm.Aliases = stringList(val)
		default:
			fm.Extra = append(fm.Extra, Field{Key: key, Value: nodeValue(val)})
		}
	}
	return fm, nil
}

// StripFrontmatter returns the note body with any leading frontmatter block
// removed. Content without a complete block is returned unchanged.
func StripFrontmatter(content string) string {
	_, body, ok := splitFrontmatter(content)
	if !ok {
		return content
	}
	return body
}

// splitFrontmatter separates the YAML block from the body. ok is false when
// content has no complete leading "---" ... "---" block.
func splitFrontmatter(content string) (block, body string, ok bool) {
	const delim = "---"
	if !strings.HasPrefix(content, delim) {
		return "", content, false
	}
	rest := content[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		// No closing delimiter; the whole content is body.
		return "", content, false
	}
	block = rest[:idx]
	body = strings.TrimLeft(rest[idx+1+len(delim):], "\n")
	return block, body, true
}

func scalarString(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

// stringList accepts both a YAML sequence and a single scalar.
func stringList(n *yaml.Node) []string {
	var out []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case yaml.ScalarNode:
		if s := scalarString(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nodeValue(n *yaml.Node) Value {
	switch n.Kind {
	case yaml.SequenceNode:
		seq := make([]Value, 0, len(n.Content))
		for _, item := range n.Content {
			seq = append(seq, nodeValue(item))
		}
		return Value{Kind: ValueSequence, Seq: seq}
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err == nil {
				return Value{Kind: ValueBool, Bool: b}
			}
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err == nil {
				return Value{Kind: ValueNumber, Num: f}
			}
		}
		return Value{Kind: ValueString, Str: n.Value}
	default:
		// Nested mappings are flattened to their YAML text form.
		raw, err := yaml.Marshal(n)
		if err != nil {
			return Value{Kind: ValueString}
		}
		return Value{Kind: ValueString, Str: strings.TrimSpace(string(raw))}
	}
}
