package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/starford/mad/internal/models"
)

// TagKeys is the preference order of frontmatter tag keys. The first key
// present wins; later keys are ignored.
var TagKeys = []string{"tags", "tag", "Tags", "Tag"}

const aliasesKey = "aliases"

// FrontmatterTags returns the tags declared in frontmatter. Each list element
// is an independent tag whose own "/" expresses its hierarchy. A scalar
// string value counts as a one-element list.
func (d *Document) FrontmatterTags() []models.TagPath {
	key, v := d.tagValue()
	if key == "" {
		return nil
	}
	var out []models.TagPath
	for _, s := range scalarValues(v) {
		if tag := models.ParseTagPath(s); !tag.IsZero() {
			out = append(out, tag)
		}
	}
	return out
}

// tagValue finds the first tag key holding a list or a non-null scalar.
func (d *Document) tagValue() (string, *yaml.Node) {
	for _, key := range TagKeys {
		v := lookup(d.Frontmatter, key)
		if v == nil {
			continue
		}
		switch {
		case v.Kind == yaml.SequenceNode:
			return key, v
		case v.Kind == yaml.ScalarNode && v.ShortTag() != "!!null":
			return key, v
		}
	}
	return "", nil
}

// TagList returns the first tag key in use and its scalar entries, or an
// empty key when the note declares no frontmatter tags.
func (d *Document) TagList() (key string, values []string) {
	key, v := d.tagValue()
	if key == "" {
		return "", nil
	}
	return key, scalarValues(v)
}

// Aliases returns the scalar entries of the aliases field.
func (d *Document) Aliases() []string {
	return scalarValues(lookup(d.Frontmatter, aliasesKey))
}

// AppendAlias adds entry to the aliases list, creating the frontmatter or the
// list when missing. Existing entries are never replaced; a scalar alias is
// turned into the first element of the list.
func (d *Document) AppendAlias(entry string) {
	if d.Frontmatter == nil {
		d.Frontmatter = newMapping()
	}
	item := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry}

	v := lookup(d.Frontmatter, aliasesKey)
	switch {
	case v == nil:
		d.Frontmatter.Content = append(d.Frontmatter.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: aliasesKey},
			&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{item}},
		)
	case v.Kind == yaml.SequenceNode:
		v.Content = append(v.Content, item)
	case v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null":
		*v = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{item}}
	default:
		existing := *v
		*v = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{&existing, item}}
	}
}

// SetTags replaces the value stored under key with a list of tag strings.
func (d *Document) SetTags(key string, tags []models.TagPath) {
	if d.Frontmatter == nil {
		d.Frontmatter = newMapping()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, t := range tags {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.String()})
	}
	if v := lookup(d.Frontmatter, key); v != nil {
		*v = *seq
		return
	}
	d.Frontmatter.Content = append(d.Frontmatter.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, seq)
}

// TagSequence returns the elements of the list stored under key, or
// ok=false when key is absent or does not hold a list of scalars.
func (d *Document) TagSequence(key string) (values []string, ok bool) {
	v := lookup(d.Frontmatter, key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil, false
	}
	for _, item := range v.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, false
		}
		values = append(values, item.Value)
	}
	return values, true
}

func scalarValues(v *yaml.Node) []string {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case yaml.ScalarNode:
		if v.ShortTag() == "!!null" {
			return nil
		}
		return []string{v.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind == yaml.ScalarNode && item.ShortTag() != "!!null" {
				out = append(out, item.Value)
			}
		}
		return out
	}
	return nil
}
