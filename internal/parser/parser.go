// Package parser splits Markdown documents into YAML frontmatter and body,
// and extracts primary and secondary tags from them.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/mad/internal/apperr"
)

const delim = "---"

// Document is a parsed note. Frontmatter is nil when the text has no
// frontmatter block; Body is everything after the closing delimiter line.
type Document struct {
	Frontmatter *yaml.Node
	Body        string
}

// ParseDocument splits data into frontmatter and body. Text that does not
// start with a "---" line, or whose block is never closed, is all body.
// Invalid YAML returns an error wrapping apperr.ErrMalformedFrontmatter.
func ParseDocument(data []byte) (*Document, error) {
	text := string(data)
	block, body, ok := splitFrontmatter(text)
	if !ok {
		return &Document{Body: text}, nil
	}
	fm, err := decodeMapping(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedFrontmatter, err)
	}
	return &Document{Frontmatter: fm, Body: body}, nil
}

// Render serialises the document back to "---\n<yaml>---\n<body>".
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	if d.Frontmatter != nil {
		buf.WriteString(delim + "\n")
		if len(d.Frontmatter.Content) > 0 {
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(d.Frontmatter); err != nil {
				return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
			}
			if err := enc.Close(); err != nil {
				return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
			}
		}
		buf.WriteString(delim + "\n")
	}
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

// splitFrontmatter returns the raw YAML block and the body that follows the
// closing delimiter line.
func splitFrontmatter(text string) (block, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, " \t\r") != delim {
		return "", text, false
	}

	pos := 0
	for {
		end := strings.IndexByte(rest[pos:], '\n')
		line, next := rest[pos:], len(rest)
		if end >= 0 {
			line, next = rest[pos:pos+end], pos+end+1
		}
		if strings.TrimRight(line, " \t\r") == delim {
			return rest[:pos], rest[next:], true
		}
		if end < 0 {
			return "", text, false
		}
		pos = next
	}
}

func decodeMapping(block string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return newMapping(), nil
	}
	root := doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
		return root, nil
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return newMapping(), nil
	default:
		return nil, fmt.Errorf("frontmatter is not a key-value block (line %d)", root.Line)
	}
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// lookup returns the value node stored under key, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
